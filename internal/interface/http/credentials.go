package http

import (
	"net/http"

	"github.com/devask/devask-hub/internal/application/command"
	"github.com/devask/devask-hub/internal/application/query"
	"github.com/devask/devask-hub/internal/domain/credential"
	"github.com/devask/devask-hub/internal/domain/reputation"
	"github.com/devask/devask-hub/internal/domain/shared"
	"github.com/devask/devask-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// CREDENTIAL HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// credentialRequest carries dates as YYYY-MM-DD. A null end_date means the
// position is current.
type credentialRequest struct {
	Role        string  `json:"role"`
	Type        string  `json:"type"`
	Experience  string  `json:"experience"`
	Institution string  `json:"institution"`
	StartDate   string  `json:"start_date"`
	EndDate     *string `json:"end_date"`
}

type verifyCredentialRequest struct {
	IsVerified *bool `json:"is_verified"`
}

func (req credentialRequest) fields() (credential.Fields, error) {
	f := credential.Fields{
		Role:        req.Role,
		Type:        credential.Type(req.Type),
		Experience:  reputation.Tier(req.Experience),
		Institution: req.Institution,
	}

	if req.StartDate != "" {
		start, err := timeutil.ParseDate(req.StartDate)
		if err != nil {
			return f, shared.Invalid("credential", "Decode", "start_date must be YYYY-MM-DD")
		}
		f.StartDate = start
	}
	if req.EndDate != nil && *req.EndDate != "" {
		end, err := timeutil.ParseDate(*req.EndDate)
		if err != nil {
			return f, shared.Invalid("credential", "Decode", "end_date must be YYYY-MM-DD")
		}
		f.EndDate = &end
	}
	return f, nil
}

// credentialRequestFrom prefills a request with the stored values so a
// PATCH body only needs the fields it changes.
func credentialRequestFrom(dto *query.CredentialDTO) credentialRequest {
	return credentialRequest{
		Role:        dto.Role,
		Type:        dto.Type,
		Experience:  dto.Experience,
		Institution: dto.Institution,
		StartDate:   dto.StartDate,
		EndDate:     dto.EndDate,
	}
}

// handleCreateCredential handles POST /api/v1/credentials
func (s *Server) handleCreateCredential(w http.ResponseWriter, r *http.Request) {
	var req credentialRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	fields, err := req.fields()
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	result, err := s.h.createCredential.Handle(r.Context(), command.CreateCredentialCommand{
		Caller: callerFrom(r),
		Fields: fields,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusCreated, s.h.present.Credential(result.Credential))
}

// handleGetCredential handles GET /api/v1/credentials/{id}
func (s *Server) handleGetCredential(w http.ResponseWriter, r *http.Request) {
	dto, err := s.h.getCredential.Handle(r.Context(), query.GetCredentialQuery{CredentialID: pathID(r)})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, dto)
}

// handleEditCredential handles PATCH /api/v1/credentials/{id}
func (s *Server) handleEditCredential(w http.ResponseWriter, r *http.Request) {
	caller := callerFrom(r)
	if !caller.IsAuthenticated() {
		s.writeError(w, r, shared.ErrAuthRequired)
		return
	}

	current, err := s.h.getCredential.Handle(r.Context(), query.GetCredentialQuery{CredentialID: pathID(r)})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	req := credentialRequestFrom(current)
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	fields, err := req.fields()
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	result, err := s.h.editCredential.Handle(r.Context(), command.EditCredentialCommand{
		Caller:       caller,
		CredentialID: pathID(r),
		Fields:       fields,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, s.h.present.Credential(result.Credential))
}

// handleDeleteCredential handles DELETE /api/v1/credentials/{id}
func (s *Server) handleDeleteCredential(w http.ResponseWriter, r *http.Request) {
	err := s.h.deleteCredential.Handle(r.Context(), command.DeleteCredentialCommand{
		Caller:       callerFrom(r),
		CredentialID: pathID(r),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleVerifyCredential handles PATCH /api/v1/credentials/{id}/validate
func (s *Server) handleVerifyCredential(w http.ResponseWriter, r *http.Request) {
	var req verifyCredentialRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.IsVerified == nil {
		s.writeError(w, r, shared.Invalid("credential", "Decode", "is_verified is required"))
		return
	}

	result, err := s.h.verifyCredential.Handle(r.Context(), command.SetCredentialVerificationCommand{
		Caller:       callerFrom(r),
		CredentialID: pathID(r),
		Verified:     *req.IsVerified,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, s.h.present.Credential(result.Credential))
}
