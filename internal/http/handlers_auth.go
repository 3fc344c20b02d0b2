package http

import (
	"errors"
	"net/http"
	"strings"

	"budget/internal/auth"
	applog "budget/internal/log"
)

func (s *Server) authProviderOrFail(w http.ResponseWriter) (AuthProvider, bool) {
	if s.deps.AuthProvider == nil {
		ErrorResponse(http.StatusServiceUnavailable, "Auth provider not configured").Write(w)
		return nil, false
	}
	return s.deps.AuthProvider, true
}

func decodeCredentials(w http.ResponseWriter, r *http.Request) (auth.Credentials, bool) {
	var creds auth.Credentials
	if err := decodeJSON(w, r, &creds); err != nil {
		BadRequestError("Invalid JSON body").Write(w)
		return auth.Credentials{}, false
	}
	creds.Email = strings.TrimSpace(creds.Email)
	if creds.Email == "" || creds.Password == "" {
		BadRequestError("Email and password are required").Write(w)
		return auth.Credentials{}, false
	}
	return creds, true
}

// writeProviderError passes the provider's status and sanitized message
// through; transport failures become 502.
func (s *Server) writeProviderError(w http.ResponseWriter, r *http.Request, err error, operation string) {
	var pe *auth.ProviderError
	if errors.As(err, &pe) && pe.Status >= 400 && pe.Status < 600 {
		ErrorResponse(pe.Status, pe.Message).Write(w)
		return
	}
	applog.NewStructuredLogger(applog.FromContext(r.Context())).LogError(r.Context(),
		"Auth provider request failed", err, applog.ComponentAuth, operation,
		applog.NewFields().WithErrorType(applog.ErrorTypeNetwork))
	ErrorResponse(http.StatusBadGateway, "Auth provider unavailable").Write(w)
}

func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	provider, ok := s.authProviderOrFail(w)
	if !ok {
		return
	}
	creds, ok := decodeCredentials(w, r)
	if !ok {
		return
	}

	body, err := provider.SignUp(r.Context(), creds)
	if err != nil {
		s.writeProviderError(w, r, err, applog.OpCreate)
		return
	}
	NewJSONResponse().Status(http.StatusCreated).Body(body).Write(w)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	provider, ok := s.authProviderOrFail(w)
	if !ok {
		return
	}
	creds, ok := decodeCredentials(w, r)
	if !ok {
		return
	}

	session, err := provider.Login(r.Context(), creds)
	if err != nil {
		s.writeProviderError(w, r, err, applog.OpVerify)
		return
	}
	NewJSONResponse().Body(session).Write(w)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	provider, ok := s.authProviderOrFail(w)
	if !ok {
		return
	}
	token, _ := auth.BearerToken(r)
	if err := provider.Logout(r.Context(), token); err != nil {
		s.writeProviderError(w, r, err, applog.OpDelete)
		return
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

func (s *Server) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFrom(r.Context())
	NewJSONResponse().Body(id).Write(w)
}
