package web

import "net/http"

// registerRoutes attaches every application route to the mux. Auth is
// enforced inside handlers (requireOperator / requireAdmin) so that the
// public evaluation surface and the operator surface share one mux.
func registerRoutes(mux *http.ServeMux) {
	// Public: evaluators fill forms without an account
	mux.HandleFunc("/", handleRoot)
	mux.HandleFunc("/evaluate", handleEvaluate)
	mux.HandleFunc("/api/evaluations", handleAPIEvaluations)
	mux.HandleFunc("/api/form", handleAPIForm)
	mux.HandleFunc("/api/speech-types", handleAPISpeechTypes)

	// Auth
	mux.HandleFunc("/login", handleLogin)
	mux.HandleFunc("/logout", handleLogout)
	mux.HandleFunc("/change-password", handleChangePassword)

	// Operator surface
	mux.HandleFunc("/dashboard", handleDashboard)
	mux.HandleFunc("/dashboard/speech-type", handleSetSpeechType)
	mux.HandleFunc("/dashboard/teacher-email", handleSaveTeacherEmail)
	mux.HandleFunc("/dashboard/preview", handlePreviewFeedback)
	mux.HandleFunc("/dashboard/send", handleSendFeedback)
	mux.HandleFunc("/dashboard/send-all", handleSendAllFeedback)

	// Admin-only diagnostics
	mux.HandleFunc("/api/admin/perf", handleAdminPerf)
}

// handleRoot sends visitors to the evaluation form.
func handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	http.Redirect(w, r, "/evaluate", http.StatusSeeOther)
}
