package http

import (
	"net/http"

	applog "budget/internal/log"
)

const msgProfileNotFound = "Profile not found"

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := s.deps.Profiles.Get(r.Context(), ownerID(r))
	if err != nil {
		s.writeServiceError(w, r, err, msgProfileNotFound, "Failed to fetch profile", applog.OpRead)
		return
	}
	NewJSONResponse().Body(toProfileJSON(p)).Write(w)
}

func (s *Server) handleSaveProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeServiceError(w, r, err, msgProfileNotFound, "Failed to save profile", applog.OpUpdate)
		return
	}

	p, err := s.deps.Profiles.Save(r.Context(), req.profile(ownerID(r)))
	if err != nil {
		s.writeServiceError(w, r, err, msgProfileNotFound, "Failed to save profile", applog.OpUpdate)
		return
	}
	NewJSONResponse().Body(toProfileJSON(p)).Write(w)
}
