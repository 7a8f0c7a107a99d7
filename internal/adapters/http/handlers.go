package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gorilla/csrf"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"podium/internal/adapters/http/middleware"
	"podium/internal/application/orchestrators"
	"podium/internal/application/projections"
	"podium/internal/domain/schema"
)

// timeNow is a variable for testability.
var timeNow = time.Now

// mdRenderer is a goldmark instance configured for safe HTML output.
// Raw HTML in markdown input is escaped (WithUnsafe is NOT set), preventing XSS.
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// internalError logs the real error and returns a generic message to the client.
// This prevents leaking internal details per OWASP A05.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// writeJSON writes v as a JSON response body.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// apiMessage is the envelope for evaluation API responses.
type apiMessage struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

const templatesDir = "internal/adapters/http/templates"

func renderTemplate(w http.ResponseWriter, r *http.Request, templateName string, data any) {
	sess, ok := middleware.GetSessionFromContext(r.Context())
	role := ""
	email := ""
	if ok {
		role = sess.Role
		email = sess.Email
	}

	funcMap := template.FuncMap{
		"currentRole":  func() string { return role },
		"currentEmail": func() string { return email },
		"isLoggedIn":   func() bool { return role != "" },
		"isAdmin":      func() bool { return role == "admin" },
		"csrfToken":    func() string { return csrf.Token(r) },
		"renderMarkdown": func(md string) template.HTML {
			var buf bytes.Buffer
			if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
				return template.HTML(template.HTMLEscapeString(md))
			}
			return template.HTML(buf.String())
		},
		"add": func(a, b int) int { return a + b },
		"sub": func(a, b int) int { return a - b },
		"scoreRange": func(min, max float64) []int {
			lo, hi := int(min), int(max)
			if lo < 1 {
				lo = 1
			}
			if hi < lo {
				hi = lo
			}
			s := make([]int, 0, hi-lo+1)
			for i := lo; i <= hi; i++ {
				s = append(s, i)
			}
			return s
		},
	}

	layoutPath := filepath.Join(templatesDir, "layout.html")
	pagePath := filepath.Join(templatesDir, templateName)
	tpl, err := template.New("layout.html").Funcs(funcMap).ParseFiles(layoutPath, pagePath)
	if err != nil {
		http.Error(w, "Template error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tpl.Execute(w, data); err != nil {
		http.Error(w, "Render error: "+err.Error(), http.StatusInternalServerError)
		return
	}
}

// requireOperator checks the session for a teacher or admin role.
// Returns false if the request should not proceed.
func requireOperator(w http.ResponseWriter, r *http.Request) (middleware.Session, bool) {
	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		slog.Warn("auth_denied", "path", r.URL.Path, "reason", "no session")
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return middleware.Session{}, false
	}
	if sess.Role != "admin" && sess.Role != "teacher" {
		slog.Warn("auth_denied", "path", r.URL.Path, "account_id", sess.AccountID, "role", sess.Role, "required", "teacher")
		http.Error(w, "Forbidden", http.StatusForbidden)
		return middleware.Session{}, false
	}
	return sess, true
}

// requireAdmin checks the session for admin role and returns the session.
// Returns false if the request should not proceed.
func requireAdmin(w http.ResponseWriter, r *http.Request) (middleware.Session, bool) {
	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		slog.Warn("auth_denied", "path", r.URL.Path, "reason", "no session")
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return middleware.Session{}, false
	}
	if sess.Role != "admin" {
		slog.Warn("auth_denied", "path", r.URL.Path, "account_id", sess.AccountID, "role", sess.Role, "required", "admin")
		http.Error(w, "Forbidden", http.StatusForbidden)
		return middleware.Session{}, false
	}
	return sess, true
}

// requestedSpeechType resolves the speech type for a request: explicit
// ?type= wins, otherwise the configured active type.
func requestedSpeechType(w http.ResponseWriter, r *http.Request) (string, bool) {
	if t := strings.TrimSpace(r.URL.Query().Get("type")); t != "" {
		return t, true
	}
	active, err := orchestrators.ExecuteGetActiveSpeechType(r.Context(), orchestrators.ActiveSpeechTypeDeps{Sheets: stores.SheetStore})
	if err != nil {
		internalError(w, err)
		return "", false
	}
	return active, true
}

// handleEvaluate handles GET /evaluate — the public evaluation form.
func handleEvaluate(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	speechType, ok := requestedSpeechType(w, r)
	if !ok {
		return
	}

	form, err := projections.QueryGetForm(r.Context(),
		projections.GetFormQuery{SpeechType: speechType},
		projections.GetFormDeps{Sheets: stores.SheetStore})
	var cfgErr *schema.ConfigError
	if errors.As(err, &cfgErr) {
		renderTemplate(w, r, "evaluate.html", map[string]any{
			"Error": cfgErr.Error(),
		})
		return
	}
	if err != nil {
		internalError(w, err)
		return
	}

	dir, err := projections.QueryGetDirectory(r.Context(),
		projections.GetDirectoryQuery{FallbackTeacherEmail: fallbackTeacherEmail},
		projections.GetDirectoryDeps{Sheets: stores.SheetStore})
	if err != nil {
		internalError(w, err)
		return
	}

	renderTemplate(w, r, "evaluate.html", map[string]any{
		"Form":      form,
		"Students":  dir.Students,
		"CSRFToken": csrf.Token(r),
	})
}

// evaluationRequest is the JSON body for POST /api/evaluations.
type evaluationRequest struct {
	EvaluatorName string            `json:"evaluatorName"`
	PresenterName string            `json:"presenterName"`
	SpeechType    string            `json:"speechType"`
	Answers       map[string]string `json:"answers"`
}

// handleAPIEvaluations handles POST /api/evaluations — evaluation submission.
// Public: evaluators do not sign in.
func handleAPIEvaluations(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req evaluationRequest
	if err := strictDecode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, apiMessage{Success: false, Message: "invalid request body"})
		return
	}

	speechType := strings.TrimSpace(req.SpeechType)
	if speechType == "" {
		active, err := orchestrators.ExecuteGetActiveSpeechType(r.Context(), orchestrators.ActiveSpeechTypeDeps{Sheets: stores.SheetStore})
		if err != nil {
			internalError(w, err)
			return
		}
		speechType = active
	}

	input := orchestrators.SubmitEvaluationInput{
		EvaluatorName: req.EvaluatorName,
		PresenterName: req.PresenterName,
		SpeechType:    speechType,
		Answers:       req.Answers,
	}
	deps := orchestrators.SubmitEvaluationDeps{
		Sheets:      stores.SheetStore,
		EmailSender: emailSender,
		FromAddress: emailFromAddress,
		Now:         timeNow,
	}

	if err := orchestrators.ExecuteSubmitEvaluation(r.Context(), input, deps); err != nil {
		var cfgErr *schema.ConfigError
		if errors.As(err, &cfgErr) {
			writeJSON(w, http.StatusBadRequest, apiMessage{Success: false, Message: cfgErr.Error()})
			return
		}
		writeJSON(w, http.StatusBadRequest, apiMessage{Success: false, Message: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, apiMessage{Success: true, Message: "Evaluation submitted. Thank you!"})
}

// handleAPIForm handles GET /api/form — the evaluation form schema as JSON.
func handleAPIForm(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	speechType, ok := requestedSpeechType(w, r)
	if !ok {
		return
	}

	form, err := projections.QueryGetForm(r.Context(),
		projections.GetFormQuery{SpeechType: speechType},
		projections.GetFormDeps{Sheets: stores.SheetStore})
	var cfgErr *schema.ConfigError
	if errors.As(err, &cfgErr) {
		writeJSON(w, http.StatusNotFound, apiMessage{Success: false, Message: cfgErr.Error()})
		return
	}
	if err != nil {
		internalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, form)
}

// handleAPISpeechTypes handles GET /api/speech-types.
func handleAPISpeechTypes(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	infos, err := projections.QueryGetSpeechTypes(r.Context(),
		projections.GetSpeechTypesDeps{Sheets: stores.SheetStore})
	if err != nil {
		internalError(w, err)
		return
	}

	active, err := orchestrators.ExecuteGetActiveSpeechType(r.Context(), orchestrators.ActiveSpeechTypeDeps{Sheets: stores.SheetStore})
	if err != nil {
		internalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"active":      active,
		"speechTypes": infos,
	})
}

// handleLogin handles GET (form) and POST (authenticate) for /login
func handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method == "GET" {
		// If already logged in, redirect to dashboard
		if _, ok := middleware.GetSessionFromContext(r.Context()); ok {
			http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
			return
		}
		renderTemplate(w, r, "login.html", map[string]any{
			"CSRFToken": csrf.Token(r),
		})
		return
	}

	if r.Method == "POST" {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}

		input := orchestrators.LoginInput{
			Email:    r.FormValue("Email"),
			Password: r.FormValue("Password"),
		}

		deps := orchestrators.LoginDeps{
			AccountStore: stores.AccountStore,
		}

		result, err := orchestrators.ExecuteLogin(r.Context(), input, deps)
		if err != nil {
			renderTemplate(w, r, "login.html", map[string]any{
				"CSRFToken": csrf.Token(r),
				"Error":     err.Error(),
			})
			return
		}

		// Create session
		token, err := sessions.Create(result.AccountID, result.Email, result.Role)
		if err != nil {
			http.Error(w, "Session error", http.StatusInternalServerError)
			return
		}

		middleware.SetSessionCookie(w, token)
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}

	w.WriteHeader(http.StatusMethodNotAllowed)
}

// handleLogout handles POST /logout
func handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	// Delete session
	cookie, err := r.Cookie("podium_session")
	if err == nil {
		sessions.Delete(cookie.Value)
	}

	middleware.ClearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// handleChangePassword handles GET (form) and POST (update) for /change-password
func handleChangePassword(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	if r.Method == "GET" {
		renderTemplate(w, r, "change_password.html", map[string]any{
			"CSRFToken": csrf.Token(r),
		})
		return
	}

	if r.Method == "POST" {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Form error", http.StatusBadRequest)
			return
		}

		if r.FormValue("NewPassword") != r.FormValue("ConfirmPassword") {
			renderTemplate(w, r, "change_password.html", map[string]any{
				"CSRFToken": csrf.Token(r),
				"Error":     "New passwords do not match",
			})
			return
		}

		input := orchestrators.ChangePasswordInput{
			AccountID:       session.AccountID,
			CurrentPassword: r.FormValue("CurrentPassword"),
			NewPassword:     r.FormValue("NewPassword"),
		}
		deps := orchestrators.ChangePasswordDeps{
			AccountStore: stores.AccountStore,
		}

		if err := orchestrators.ExecuteChangePassword(r.Context(), input, deps); err != nil {
			renderTemplate(w, r, "change_password.html", map[string]any{
				"CSRFToken": csrf.Token(r),
				"Error":     err.Error(),
			})
			return
		}

		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}

	w.WriteHeader(http.StatusMethodNotAllowed)
}
