package web

import (
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/csrf"

	"podium/internal/application/orchestrators"
	"podium/internal/application/projections"
	"podium/internal/domain/report"
	"podium/internal/domain/schema"
)

// sendDeps builds the shared deps for feedback delivery handlers.
func sendDeps() orchestrators.SendFeedbackDeps {
	return orchestrators.SendFeedbackDeps{
		Sheets:       stores.SheetStore,
		EmailSender:  emailSender,
		FromAddress:  emailFromAddress,
		ReplyTo:      emailReplyTo,
		TeacherEmail: fallbackTeacherEmail,
	}
}

// handleDashboard handles GET /dashboard — the operator landing page.
func handleDashboard(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireOperator(w, r); !ok {
		return
	}
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	ctx := r.Context()

	active, err := orchestrators.ExecuteGetActiveSpeechType(ctx, orchestrators.ActiveSpeechTypeDeps{Sheets: stores.SheetStore})
	if err != nil {
		internalError(w, err)
		return
	}

	infos, err := projections.QueryGetSpeechTypes(ctx, projections.GetSpeechTypesDeps{Sheets: stores.SheetStore})
	if err != nil {
		var cfgErr *schema.ConfigError
		if !errors.As(err, &cfgErr) {
			internalError(w, err)
			return
		}
		infos = nil
	}

	dir, err := projections.QueryGetDirectory(ctx,
		projections.GetDirectoryQuery{FallbackTeacherEmail: fallbackTeacherEmail},
		projections.GetDirectoryDeps{Sheets: stores.SheetStore})
	if err != nil {
		internalError(w, err)
		return
	}

	presenters, err := projections.QueryGetPresenters(ctx,
		projections.GetPresentersQuery{SpeechType: active},
		projections.GetPresentersDeps{Sheets: stores.SheetStore})
	if err != nil {
		internalError(w, err)
		return
	}

	sheets, err := stores.SheetStore.List(ctx)
	if err != nil {
		internalError(w, err)
		return
	}

	renderTemplate(w, r, "dashboard.html", map[string]any{
		"ActiveSpeechType": active,
		"SpeechTypes":      infos,
		"TeacherEmail":     dir.TeacherEmail,
		"StudentCount":     len(dir.Students),
		"Presenters":       presenters,
		"Sheets":           sheets,
		"CSRFToken":        csrf.Token(r),
	})
}

// handleSetSpeechType handles POST /dashboard/speech-type.
func handleSetSpeechType(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireOperator(w, r); !ok {
		return
	}
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Form error", http.StatusBadRequest)
		return
	}

	input := orchestrators.SetActiveSpeechTypeInput{SpeechType: r.FormValue("SpeechType")}
	deps := orchestrators.ActiveSpeechTypeDeps{Sheets: stores.SheetStore}
	if err := orchestrators.ExecuteSetActiveSpeechType(r.Context(), input, deps); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// handleSaveTeacherEmail handles POST /dashboard/teacher-email.
func handleSaveTeacherEmail(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireOperator(w, r); !ok {
		return
	}
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Form error", http.StatusBadRequest)
		return
	}

	input := orchestrators.SaveTeacherEmailInput{Email: r.FormValue("TeacherEmail")}
	deps := orchestrators.SaveTeacherEmailDeps{Sheets: stores.SheetStore}
	if err := orchestrators.ExecuteSaveTeacherEmail(r.Context(), input, deps); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// handlePreviewFeedback handles GET /dashboard/preview — a presenter's
// aggregated feedback rendered as it would be emailed.
func handlePreviewFeedback(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireOperator(w, r); !ok {
		return
	}
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	ctx := r.Context()

	speechType, ok := requestedSpeechType(w, r)
	if !ok {
		return
	}
	presenter := strings.TrimSpace(r.URL.Query().Get("presenter"))
	if presenter == "" {
		http.Error(w, "missing presenter", http.StatusBadRequest)
		return
	}

	rep, err := projections.QueryGetPresenterFeedback(ctx,
		projections.GetPresenterFeedbackQuery{SpeechType: speechType, Presenter: presenter},
		projections.GetPresenterFeedbackDeps{Sheets: stores.SheetStore})
	if err != nil {
		var cfgErr *schema.ConfigError
		if errors.As(err, &cfgErr) {
			http.Error(w, cfgErr.Error(), http.StatusNotFound)
			return
		}
		internalError(w, err)
		return
	}

	html, err := report.RenderHTML(presenter, rep)
	if err != nil {
		internalError(w, err)
		return
	}

	renderTemplate(w, r, "preview.html", map[string]any{
		"Presenter":       presenter,
		"SpeechType":      speechType,
		"EvaluationCount": rep.EvaluationCount,
		"Subject":         report.Subject(rep.Title, presenter),
		"ReportHTML":      template.HTML(html),
		"CSRFToken":       csrf.Token(r),
	})
}

// handleSendFeedback handles POST /dashboard/send — email one presenter's summary.
func handleSendFeedback(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireOperator(w, r); !ok {
		return
	}
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Form error", http.StatusBadRequest)
		return
	}

	input := orchestrators.SendFeedbackInput{
		SpeechType: r.FormValue("SpeechType"),
		Presenter:  r.FormValue("Presenter"),
	}

	if err := orchestrators.ExecuteSendFeedback(r.Context(), input, sendDeps()); err != nil {
		renderTemplate(w, r, "send_result.html", map[string]any{
			"Presenter": input.Presenter,
			"Error":     err.Error(),
		})
		return
	}

	renderTemplate(w, r, "send_result.html", map[string]any{
		"Presenter":    input.Presenter,
		"SuccessCount": 1,
	})
}

// handleSendAllFeedback handles POST /dashboard/send-all — email every
// presenter with evaluations for the speech type.
func handleSendAllFeedback(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireOperator(w, r); !ok {
		return
	}
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Form error", http.StatusBadRequest)
		return
	}

	input := orchestrators.SendAllFeedbackInput{SpeechType: r.FormValue("SpeechType")}
	result, err := orchestrators.ExecuteSendAllFeedback(r.Context(), input, sendDeps())
	if err != nil {
		internalError(w, err)
		return
	}

	renderTemplate(w, r, "send_result.html", map[string]any{
		"SuccessCount": result.SuccessCount,
		"FailureCount": result.FailureCount,
		"Failures":     result.Failures,
	})
}

// handleAdminPerf handles GET /api/admin/perf — runtime performance snapshot.
func handleAdminPerf(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if perfCollector == nil {
		http.Error(w, "perf collection disabled", http.StatusServiceUnavailable)
		return
	}

	window := 15 * time.Minute
	if v := r.URL.Query().Get("minutes"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 1440 {
			window = time.Duration(n) * time.Minute
		}
	}

	snap := perfCollector.Snapshot(timeNow().Add(-window), 20)
	writeJSON(w, http.StatusOK, snap)
}
