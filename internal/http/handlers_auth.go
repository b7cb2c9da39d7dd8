package http

import (
	"net/http"

	applog "burnrate/internal/log"
)

// handleLogin checks the password and sets the session cookie.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req passwordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, applog.OpLogin, err)
		return
	}
	if !s.startSession(w, r, req.Password) {
		writeJSON(w, http.StatusUnauthorized, authResponse{Authenticated: false})
		return
	}
	writeJSON(w, http.StatusOK, authResponse{Authenticated: true})
}

func (s *Server) handleAuthStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, authResponse{Authenticated: s.auth != nil && s.auth.Authenticated(r)})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if s.auth != nil {
		http.SetCookie(w, s.auth.ClearCookie())
	}
	writeJSON(w, http.StatusOK, authResponse{Authenticated: false})
}

// handleAuthenticate checks the password without starting a session.
func (s *Server) handleAuthenticate(w http.ResponseWriter, r *http.Request) {
	var req passwordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, applog.OpLogin, err)
		return
	}
	if s.auth == nil || !s.auth.CheckPassword(req.Password) {
		s.metrics.loginFailed.Add(1)
		writeJSON(w, http.StatusUnauthorized, authResponse{Authenticated: false})
		return
	}
	writeJSON(w, http.StatusOK, authResponse{Authenticated: true})
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if s.auth != nil && s.auth.Authenticated(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	s.renderLogin(w, r, http.StatusOK, "")
}

func (s *Server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := r.ParseForm(); err != nil {
		s.renderLogin(w, r, http.StatusBadRequest, "Invalid request")
		return
	}
	if !s.startSession(w, r, r.PostForm.Get("password")) {
		s.renderLogin(w, r, http.StatusUnauthorized, "Wrong password")
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleLogoutForm(w http.ResponseWriter, r *http.Request) {
	if s.auth != nil {
		http.SetCookie(w, s.auth.ClearCookie())
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// startSession sets the session cookie when password is correct.
func (s *Server) startSession(w http.ResponseWriter, r *http.Request, password string) bool {
	if s.auth == nil || !s.auth.CheckPassword(password) {
		s.metrics.loginFailed.Add(1)
		applog.FromContext(r.Context()).WarnContext(r.Context(), "Dashboard login rejected",
			applog.NewFields().
				WithOperation(applog.OpLogin).
				WithErrorType(applog.ErrorTypeAuth).
				ToSlice()...)
		return false
	}

	token, expires, err := s.auth.IssueToken()
	if err != nil {
		applog.LogError(r.Context(), "Issue session token failed", err, applog.OpLogin, nil)
		return false
	}
	http.SetCookie(w, s.auth.SessionCookie(token, expires))
	return true
}

func (s *Server) renderLogin(w http.ResponseWriter, r *http.Request, status int, msg string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if s.templates == nil {
		_, _ = w.Write([]byte(`<form method="post" action="/login"><input type="password" name="password"><button>Sign in</button></form>`))
		return
	}
	if err := s.templates.ExecuteTemplate(w, "login.html", struct{ Error string }{msg}); err != nil {
		applog.LogError(r.Context(), "Login template execution failed", err, applog.OpLogin, nil)
	}
}
