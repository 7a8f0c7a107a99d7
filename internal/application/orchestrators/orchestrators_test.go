package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	emailAdapter "podium/internal/adapters/email"
	"podium/internal/domain/account"
	domainSheet "podium/internal/domain/sheet"
	"podium/internal/domain/student"
)

// --- Mock sheet store ---

type mockSheetStore struct {
	tables map[string]*domainSheet.Table
}

func newMockSheetStore() *mockSheetStore {
	return &mockSheetStore{tables: make(map[string]*domainSheet.Table)}
}

func (m *mockSheetStore) withTable(t domainSheet.Table) *mockSheetStore {
	m.tables[t.Name] = &t
	return m
}

func (m *mockSheetStore) Exists(_ context.Context, name string) (bool, error) {
	_, ok := m.tables[name]
	return ok, nil
}

func (m *mockSheetStore) Create(_ context.Context, name string, headers []string) error {
	if _, ok := m.tables[name]; ok {
		return domainSheet.ErrAlreadyExists
	}
	m.tables[name] = &domainSheet.Table{Name: name, Headers: headers}
	return nil
}

func (m *mockSheetStore) Headers(_ context.Context, name string) ([]string, error) {
	t, ok := m.tables[name]
	if !ok {
		return nil, domainSheet.ErrNotFound
	}
	return t.Headers, nil
}

func (m *mockSheetStore) Append(_ context.Context, name string, row []string) error {
	t, ok := m.tables[name]
	if !ok {
		return domainSheet.ErrNotFound
	}
	t.Rows = append(t.Rows, row)
	return nil
}

func (m *mockSheetStore) ReadAll(_ context.Context, name string) (domainSheet.Table, error) {
	t, ok := m.tables[name]
	if !ok {
		return domainSheet.Table{}, domainSheet.ErrNotFound
	}
	return *t, nil
}

func (m *mockSheetStore) UpdateCell(_ context.Context, name string, rowIndex, colIndex int, value string) error {
	t, ok := m.tables[name]
	if !ok || rowIndex < 0 || rowIndex >= len(t.Rows) {
		return domainSheet.ErrNotFound
	}
	for len(t.Rows[rowIndex]) <= colIndex {
		t.Rows[rowIndex] = append(t.Rows[rowIndex], "")
	}
	t.Rows[rowIndex][colIndex] = value
	return nil
}

// --- Mock email sender ---

type mockSender struct {
	sentReqs []emailAdapter.SendRequest
	failFor  string // substring of To that triggers a send failure
}

func (m *mockSender) Send(_ context.Context, req emailAdapter.SendRequest) (emailAdapter.SendResult, error) {
	if m.failFor != "" {
		for _, to := range req.To {
			if strings.Contains(to, m.failFor) {
				return emailAdapter.SendResult{}, errors.New("provider rejected message")
			}
		}
	}
	m.sentReqs = append(m.sentReqs, req)
	return emailAdapter.SendResult{MessageID: fmt.Sprintf("mock-%d", len(m.sentReqs))}, nil
}

func (m *mockSender) SendBatch(ctx context.Context, reqs []emailAdapter.SendRequest) ([]emailAdapter.SendResult, error) {
	var results []emailAdapter.SendResult
	for _, req := range reqs {
		r, err := m.Send(ctx, req)
		if err != nil {
			return results, err
		}
		results = append(results, r)
	}
	return results, nil
}

// --- Fixtures ---

var templatesFixtureHeaders = []string{
	"SpeechType", "SheetName", "FormTitle", "SectionID", "SectionTitle",
	"QuestionID", "QuestionText", "QuestionType", "Options", "Required",
	"MinScore", "MaxScore", "ScoreCriteria", "DefaultValue",
}

func templatesFixture() domainSheet.Table {
	return domainSheet.Table{
		Name:    "Templates",
		Headers: templatesFixtureHeaders,
		Rows: [][]string{
			{"persuasive", "Persuasive Evaluations", "Persuasive Speech Evaluation", "1", "Content",
				"clarityScore", "Clarity of argument", "rubric", "", "true", "1", "5", "", ""},
			{"persuasive", "Persuasive Evaluations", "", "2", "Delivery",
				"comments", "Comments", "comment", "", "false", "", "", "", ""},
		},
	}
}

func evaluationsFixture() domainSheet.Table {
	return domainSheet.Table{
		Name:    "Persuasive Evaluations",
		Headers: []string{"Timestamp", "EvaluatorName", "PresenterName", "SpeechType", "clarityScore", "comments"},
		Rows: [][]string{
			{"2026-03-09T10:00:00Z", "Jane Doe", "John Roe", "persuasive", "4", "well argued"},
			{"2026-03-09T10:05:00Z", "Sam Poe", "John Roe", "persuasive", "5", ""},
			{"2026-03-09T10:10:00Z", "Ada Coe", "Mary Moe", "persuasive", "3", "needs pacing"},
		},
	}
}

func indexFixture() domainSheet.Table {
	return domainSheet.Table{
		Name:    "Index",
		Headers: []string{"FullName", "Email", "TeacherEmail"},
		Rows: [][]string{
			{"John Roe", "john.roe@school.example", "teacher@school.example"},
			{"Mary Moe", "", ""},
		},
	}
}

// --- SubmitEvaluation ---

func TestExecuteSubmitEvaluation_CreatesSheetOnFirstSubmission(t *testing.T) {
	sheets := newMockSheetStore().withTable(templatesFixture())
	fixedNow := time.Date(2026, 3, 9, 10, 30, 0, 0, time.UTC)

	err := ExecuteSubmitEvaluation(context.Background(), SubmitEvaluationInput{
		EvaluatorName: "Jane Doe",
		PresenterName: "John Roe",
		SpeechType:    "persuasive",
		Answers:       map[string]string{"clarityScore": "4", "comments": "solid"},
	}, SubmitEvaluationDeps{Sheets: sheets, Now: func() time.Time { return fixedNow }})
	if err != nil {
		t.Fatalf("ExecuteSubmitEvaluation: %v", err)
	}

	table, ok := sheets.tables["Persuasive Evaluations"]
	if !ok {
		t.Fatal("evaluation sheet was not created")
	}
	if len(table.Rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(table.Rows))
	}
	rec := table.Records()[0]
	if rec[domainSheet.HeaderEvaluator] != "Jane Doe" {
		t.Errorf("evaluator = %q", rec[domainSheet.HeaderEvaluator])
	}
	if rec[domainSheet.HeaderTimestamp] != "2026-03-09T10:30:00Z" {
		t.Errorf("timestamp = %q", rec[domainSheet.HeaderTimestamp])
	}
	if rec["clarityScore"] != "4" {
		t.Errorf("clarityScore = %q", rec["clarityScore"])
	}
}

func TestExecuteSubmitEvaluation_AppendsToExistingSheet(t *testing.T) {
	sheets := newMockSheetStore().withTable(templatesFixture()).withTable(evaluationsFixture())

	err := ExecuteSubmitEvaluation(context.Background(), SubmitEvaluationInput{
		EvaluatorName: "New Voice",
		PresenterName: "John Roe",
		SpeechType:    "persuasive",
		Answers:       map[string]string{"clarityScore": "2"},
	}, SubmitEvaluationDeps{Sheets: sheets})
	if err != nil {
		t.Fatalf("ExecuteSubmitEvaluation: %v", err)
	}

	table := sheets.tables["Persuasive Evaluations"]
	if len(table.Rows) != 4 {
		t.Fatalf("rows = %d, want 4", len(table.Rows))
	}
	// Row aligns with the sheet's existing headers, not the answer keys.
	last := table.Rows[len(table.Rows)-1]
	if len(last) != len(table.Headers) {
		t.Errorf("row width = %d, want %d", len(last), len(table.Headers))
	}
}

func TestExecuteSubmitEvaluation_Validation(t *testing.T) {
	sheets := newMockSheetStore().withTable(templatesFixture())

	err := ExecuteSubmitEvaluation(context.Background(), SubmitEvaluationInput{
		EvaluatorName: "  ",
		PresenterName: "John Roe",
		SpeechType:    "persuasive",
	}, SubmitEvaluationDeps{Sheets: sheets})
	if err == nil {
		t.Fatal("expected validation error for blank evaluator")
	}
}

func TestExecuteSubmitEvaluation_Notifies(t *testing.T) {
	sheets := newMockSheetStore().withTable(templatesFixture())
	sender := &mockSender{}

	err := ExecuteSubmitEvaluation(context.Background(), SubmitEvaluationInput{
		EvaluatorName: "Jane Doe",
		PresenterName: "John Roe",
		SpeechType:    "persuasive",
		Answers: map[string]string{
			"clarityScore": "4",
			"comments":     "strong <opening>",
		},
	}, SubmitEvaluationDeps{
		Sheets:       sheets,
		EmailSender:  sender,
		NotifyEmails: []string{"teacher@school.example"},
	})
	if err != nil {
		t.Fatalf("ExecuteSubmitEvaluation: %v", err)
	}
	if len(sender.sentReqs) != 1 {
		t.Fatalf("notifications = %d, want 1", len(sender.sentReqs))
	}
	sent := sender.sentReqs[0]
	if !strings.Contains(sent.Subject, "John Roe") {
		t.Errorf("subject = %q", sent.Subject)
	}
	// The notification summarizes the submitted answers, escaped.
	for _, want := range []string{"clarityScore", "4", "strong &lt;opening&gt;"} {
		if !strings.Contains(sent.HTML, want) {
			t.Errorf("html missing %q", want)
		}
	}
	if !strings.Contains(sent.Text, "comments: strong <opening>") {
		t.Errorf("text = %q, want answer line", sent.Text)
	}
}

// --- SendFeedback ---

func TestExecuteSendFeedback_PresenterWithTeacherCc(t *testing.T) {
	sheets := newMockSheetStore().
		withTable(templatesFixture()).
		withTable(evaluationsFixture()).
		withTable(indexFixture())
	sender := &mockSender{}

	err := ExecuteSendFeedback(context.Background(), SendFeedbackInput{
		SpeechType: "persuasive",
		Presenter:  "John Roe",
	}, SendFeedbackDeps{Sheets: sheets, EmailSender: sender, FromAddress: "noreply@podium.example"})
	if err != nil {
		t.Fatalf("ExecuteSendFeedback: %v", err)
	}

	if len(sender.sentReqs) != 1 {
		t.Fatalf("sent = %d, want 1", len(sender.sentReqs))
	}
	req := sender.sentReqs[0]
	if req.To[0] != "john.roe@school.example" {
		t.Errorf("To = %v", req.To)
	}
	if len(req.Cc) != 1 || req.Cc[0] != "teacher@school.example" {
		t.Errorf("Cc = %v, want teacher copy", req.Cc)
	}
	if want := "Persuasive Speech Evaluation - Feedback Summary for John Roe"; req.Subject != want {
		t.Errorf("Subject = %q, want %q", req.Subject, want)
	}
	if !strings.Contains(req.HTML, "well argued") {
		t.Error("HTML body missing aggregated comment")
	}
	if req.Text == "" {
		t.Error("plain text alternative missing")
	}
}

func TestExecuteSendFeedback_TeacherFallback(t *testing.T) {
	// Mary Moe has no email in the roster.
	sheets := newMockSheetStore().
		withTable(templatesFixture()).
		withTable(evaluationsFixture()).
		withTable(indexFixture())
	sender := &mockSender{}

	err := ExecuteSendFeedback(context.Background(), SendFeedbackInput{
		SpeechType: "persuasive",
		Presenter:  "Mary Moe",
	}, SendFeedbackDeps{Sheets: sheets, EmailSender: sender})
	if err != nil {
		t.Fatalf("ExecuteSendFeedback: %v", err)
	}

	req := sender.sentReqs[0]
	if req.To[0] != "teacher@school.example" {
		t.Errorf("To = %v, want teacher", req.To)
	}
	if len(req.Cc) != 0 {
		t.Errorf("Cc = %v, want empty", req.Cc)
	}
	if !strings.HasSuffix(req.Subject, MissingPresenterEmailNote) {
		t.Errorf("Subject = %q, want missing-email note", req.Subject)
	}
}

func TestExecuteSendFeedback_DefaultTeacherContact(t *testing.T) {
	// Roster with no presenter email and a blank teacher cell: delivery
	// goes to the default teacher contact.
	sheets := newMockSheetStore().
		withTable(templatesFixture()).
		withTable(evaluationsFixture())
	sheets.withTable(domainSheet.Table{
		Name:    "Index",
		Headers: []string{"FullName", "Email", "TeacherEmail"},
		Rows:    [][]string{{"Mary Moe", "", ""}},
	})
	sender := &mockSender{}

	err := ExecuteSendFeedback(context.Background(), SendFeedbackInput{
		SpeechType: "persuasive",
		Presenter:  "Mary Moe",
	}, SendFeedbackDeps{Sheets: sheets, EmailSender: sender})
	if err != nil {
		t.Fatalf("ExecuteSendFeedback: %v", err)
	}
	if len(sender.sentReqs) != 1 {
		t.Fatalf("sent = %d, want 1", len(sender.sentReqs))
	}
	if got := sender.sentReqs[0].To[0]; got != student.DefaultTeacherEmail {
		t.Errorf("To = %q, want default teacher contact", got)
	}
}

func TestExecuteSendFeedback_NoEvaluations(t *testing.T) {
	sheets := newMockSheetStore().withTable(templatesFixture()).withTable(indexFixture())
	sender := &mockSender{}

	err := ExecuteSendFeedback(context.Background(), SendFeedbackInput{
		SpeechType: "persuasive",
		Presenter:  "John Roe",
	}, SendFeedbackDeps{Sheets: sheets, EmailSender: sender})
	if !errors.Is(err, ErrNoEvaluations) {
		t.Errorf("error = %v, want ErrNoEvaluations", err)
	}
	if len(sender.sentReqs) != 0 {
		t.Errorf("sent = %d, want 0", len(sender.sentReqs))
	}
}

// --- SendAllFeedback ---

func TestExecuteSendAllFeedback_ContinuesPastFailures(t *testing.T) {
	sheets := newMockSheetStore().
		withTable(templatesFixture()).
		withTable(evaluationsFixture()).
		withTable(indexFixture())
	// john.roe delivery fails; Mary Moe falls back to the teacher and succeeds.
	sender := &mockSender{failFor: "john.roe"}

	result, err := ExecuteSendAllFeedback(context.Background(), SendAllFeedbackInput{
		SpeechType: "persuasive",
	}, SendFeedbackDeps{Sheets: sheets, EmailSender: sender})
	if err != nil {
		t.Fatalf("ExecuteSendAllFeedback: %v", err)
	}

	if result.SuccessCount != 1 {
		t.Errorf("SuccessCount = %d, want 1", result.SuccessCount)
	}
	if result.FailureCount != 1 {
		t.Errorf("FailureCount = %d, want 1", result.FailureCount)
	}
	if len(result.Failures) != 1 || !strings.HasPrefix(result.Failures[0], "John Roe: ") {
		t.Errorf("Failures = %v", result.Failures)
	}
}

func TestExecuteSendAllFeedback_NoSheet(t *testing.T) {
	sheets := newMockSheetStore().withTable(templatesFixture())
	sender := &mockSender{}

	result, err := ExecuteSendAllFeedback(context.Background(), SendAllFeedbackInput{
		SpeechType: "persuasive",
	}, SendFeedbackDeps{Sheets: sheets, EmailSender: sender})
	if err != nil {
		t.Fatalf("ExecuteSendAllFeedback: %v", err)
	}
	if result.SuccessCount != 0 || result.FailureCount != 0 {
		t.Errorf("result = %+v, want all zero", result)
	}
}

// --- ActiveSpeechType ---

func TestExecuteGetActiveSpeechType_SeedsDefault(t *testing.T) {
	sheets := newMockSheetStore()

	got, err := ExecuteGetActiveSpeechType(context.Background(), ActiveSpeechTypeDeps{Sheets: sheets})
	if err != nil {
		t.Fatalf("ExecuteGetActiveSpeechType: %v", err)
	}
	if got != DefaultSpeechType {
		t.Errorf("active = %q, want %q", got, DefaultSpeechType)
	}

	table, ok := sheets.tables[SettingsSheet]
	if !ok {
		t.Fatal("Settings sheet was not created")
	}
	if len(table.Rows) != 1 || table.Rows[0][0] != ActiveSpeechTypeKey {
		t.Errorf("Settings rows = %v", table.Rows)
	}
}

func TestExecuteGetActiveSpeechType_FillsBlankRowInPlace(t *testing.T) {
	sheets := newMockSheetStore().withTable(domainSheet.Table{
		Name:    SettingsSheet,
		Headers: SettingsHeaders(),
		Rows:    [][]string{{ActiveSpeechTypeKey, ""}},
	})
	deps := ActiveSpeechTypeDeps{Sheets: sheets}
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		got, err := ExecuteGetActiveSpeechType(ctx, deps)
		if err != nil {
			t.Fatalf("ExecuteGetActiveSpeechType: %v", err)
		}
		if got != DefaultSpeechType {
			t.Errorf("active = %q, want %q", got, DefaultSpeechType)
		}
	}

	table := sheets.tables[SettingsSheet]
	if len(table.Rows) != 1 {
		t.Fatalf("Settings rows = %d, want 1 (blank row filled, not shadowed)", len(table.Rows))
	}
	if table.Rows[0][1] != DefaultSpeechType {
		t.Errorf("Rows[0][1] = %q, want %q", table.Rows[0][1], DefaultSpeechType)
	}
}

func TestExecuteSetActiveSpeechType_UpdatesInPlace(t *testing.T) {
	sheets := newMockSheetStore()
	deps := ActiveSpeechTypeDeps{Sheets: sheets}
	ctx := context.Background()

	if _, err := ExecuteGetActiveSpeechType(ctx, deps); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := ExecuteSetActiveSpeechType(ctx, SetActiveSpeechTypeInput{SpeechType: "informative"}, deps); err != nil {
		t.Fatalf("ExecuteSetActiveSpeechType: %v", err)
	}

	got, err := ExecuteGetActiveSpeechType(ctx, deps)
	if err != nil {
		t.Fatalf("ExecuteGetActiveSpeechType: %v", err)
	}
	if got != "informative" {
		t.Errorf("active = %q, want informative", got)
	}
	if rows := len(sheets.tables[SettingsSheet].Rows); rows != 1 {
		t.Errorf("Settings rows = %d, want 1 (update in place, not append)", rows)
	}
}

func TestExecuteSetActiveSpeechType_Validation(t *testing.T) {
	err := ExecuteSetActiveSpeechType(context.Background(),
		SetActiveSpeechTypeInput{SpeechType: "  "},
		ActiveSpeechTypeDeps{Sheets: newMockSheetStore()})
	if err == nil {
		t.Fatal("expected error for blank speech type")
	}
}

// --- SaveTeacherEmail ---

func TestExecuteSaveTeacherEmail(t *testing.T) {
	sheets := newMockSheetStore().withTable(indexFixture())
	deps := SaveTeacherEmailDeps{Sheets: sheets}

	if err := ExecuteSaveTeacherEmail(context.Background(), SaveTeacherEmailInput{Email: "new.teacher@school.example"}, deps); err != nil {
		t.Fatalf("ExecuteSaveTeacherEmail: %v", err)
	}
	if got := sheets.tables["Index"].Rows[0][2]; got != "new.teacher@school.example" {
		t.Errorf("teacher cell = %q", got)
	}
}

func TestExecuteSaveTeacherEmail_CreatesIndex(t *testing.T) {
	sheets := newMockSheetStore()
	deps := SaveTeacherEmailDeps{Sheets: sheets}

	if err := ExecuteSaveTeacherEmail(context.Background(), SaveTeacherEmailInput{Email: "t@school.example"}, deps); err != nil {
		t.Fatalf("ExecuteSaveTeacherEmail: %v", err)
	}
	table, ok := sheets.tables["Index"]
	if !ok {
		t.Fatal("Index sheet was not created")
	}
	if table.Rows[0][2] != "t@school.example" {
		t.Errorf("teacher cell = %q", table.Rows[0][2])
	}
}

func TestExecuteSaveTeacherEmail_Validation(t *testing.T) {
	deps := SaveTeacherEmailDeps{Sheets: newMockSheetStore()}
	if err := ExecuteSaveTeacherEmail(context.Background(), SaveTeacherEmailInput{Email: "not-an-email"}, deps); err == nil {
		t.Fatal("expected error for address without '@'")
	}
}

// --- SeedAdmin ---

type mockAccountStore struct {
	accounts map[string]account.Account
}

func newMockAccountStore() *mockAccountStore {
	return &mockAccountStore{accounts: make(map[string]account.Account)}
}

func (m *mockAccountStore) GetByEmail(_ context.Context, email string) (account.Account, error) {
	a, ok := m.accounts[email]
	if !ok {
		return account.Account{}, errors.New("not found")
	}
	return a, nil
}

func (m *mockAccountStore) Save(_ context.Context, a account.Account) error {
	m.accounts[a.Email] = a
	return nil
}

func (m *mockAccountStore) Count(_ context.Context) (int, error) {
	return len(m.accounts), nil
}

func TestExecuteSeedAdmin(t *testing.T) {
	store := newMockAccountStore()
	deps := SeedAdminDeps{AccountStore: store}
	input := SeedAdminInput{Email: "admin@podium.example", Password: "bootstrap-password-1"}

	if err := ExecuteSeedAdmin(context.Background(), input, deps); err != nil {
		t.Fatalf("ExecuteSeedAdmin: %v", err)
	}

	acct, err := store.GetByEmail(context.Background(), input.Email)
	if err != nil {
		t.Fatalf("admin not saved: %v", err)
	}
	if acct.Role != account.RoleAdmin {
		t.Errorf("role = %q", acct.Role)
	}
	if err := acct.CheckPassword(input.Password); err != nil {
		t.Errorf("CheckPassword: %v", err)
	}

	// Idempotent: a second run leaves the account untouched.
	if err := ExecuteSeedAdmin(context.Background(), input, deps); err != nil {
		t.Fatalf("second ExecuteSeedAdmin: %v", err)
	}
	if n, _ := store.Count(context.Background()); n != 1 {
		t.Errorf("accounts = %d, want 1", n)
	}
}

// --- SeedTemplates ---

func TestExecuteSeedTemplates(t *testing.T) {
	sheets := newMockSheetStore()
	deps := SeedTemplatesDeps{Sheets: sheets}

	if err := ExecuteSeedTemplates(context.Background(), deps); err != nil {
		t.Fatalf("ExecuteSeedTemplates: %v", err)
	}
	if _, ok := sheets.tables["Templates"]; !ok {
		t.Error("Templates sheet not seeded")
	}
	if _, ok := sheets.tables["Index"]; !ok {
		t.Error("Index sheet not seeded")
	}

	// Idempotent: existing sheets are untouched.
	before := len(sheets.tables["Templates"].Rows)
	if err := ExecuteSeedTemplates(context.Background(), deps); err != nil {
		t.Fatalf("second ExecuteSeedTemplates: %v", err)
	}
	if after := len(sheets.tables["Templates"].Rows); after != before {
		t.Errorf("Templates rows changed on reseed: %d -> %d", before, after)
	}
}
