package http

import (
	"net/http"

	"github.com/devask/devask-hub/internal/application/command"
	"github.com/devask/devask-hub/internal/application/query"
	"github.com/devask/devask-hub/internal/domain/technology"
)

// ══════════════════════════════════════════════════════════════════════════════
// TECHNOLOGY (TAG) HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

type technologyRequest struct {
	Name      string `json:"name"`
	Color     string `json:"color"`
	LogoURL   string `json:"logo_url"`
	PrismLang string `json:"prism_lang"`
}

func (req technologyRequest) fields() technology.Fields {
	return technology.Fields{
		Name:      req.Name,
		Color:     req.Color,
		LogoURL:   req.LogoURL,
		PrismLang: req.PrismLang,
	}
}

// handleListTechnologies handles GET /api/v1/tags
func (s *Server) handleListTechnologies(w http.ResponseWriter, r *http.Request) {
	techs, err := s.h.listTechnologies.Handle(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, techs)
}

// handleCreateTechnology handles POST /api/v1/tags
func (s *Server) handleCreateTechnology(w http.ResponseWriter, r *http.Request) {
	var req technologyRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	result, err := s.h.createTechnology.Handle(r.Context(), command.CreateTechnologyCommand{
		Caller: callerFrom(r),
		Fields: req.fields(),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusCreated, s.h.present.Technology(result.Technology))
}

// handleGetTechnology handles GET /api/v1/tags/{id}
func (s *Server) handleGetTechnology(w http.ResponseWriter, r *http.Request) {
	dto, err := s.h.getTechnology.Handle(r.Context(), query.GetTechnologyQuery{TechnologyID: pathID(r)})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, dto)
}

// handleUpdateTechnology handles PUT /api/v1/tags/{id}
func (s *Server) handleUpdateTechnology(w http.ResponseWriter, r *http.Request) {
	var req technologyRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	result, err := s.h.updateTechnology.Handle(r.Context(), command.UpdateTechnologyCommand{
		Caller:       callerFrom(r),
		TechnologyID: pathID(r),
		Fields:       req.fields(),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, s.h.present.Technology(result.Technology))
}

// handleDeleteTechnology handles DELETE /api/v1/tags/{id}
func (s *Server) handleDeleteTechnology(w http.ResponseWriter, r *http.Request) {
	err := s.h.deleteTechnology.Handle(r.Context(), command.DeleteTechnologyCommand{
		Caller:       callerFrom(r),
		TechnologyID: pathID(r),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
