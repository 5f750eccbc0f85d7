package http

import (
	"net/http"

	"github.com/devask/devask-hub/internal/application/command"
	"github.com/devask/devask-hub/internal/application/query"
	"github.com/devask/devask-hub/internal/domain/profile"
	"github.com/devask/devask-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// PROFILE HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

var errRegistrationDisabled = shared.NewDomainError("profile", "Register", shared.ErrForbidden, "registration is disabled")

type registerRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type updateProfileRequest struct {
	Email     *string `json:"email"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Bio       *string `json:"bio"`
	AvatarURL *string `json:"avatar_url"`
	Expertise *string `json:"expertise"`
}

// handleListProfiles handles GET /api/v1/profiles
func (s *Server) handleListProfiles(w http.ResponseWriter, r *http.Request) {
	page, err := queryPage(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	profiles, err := s.h.listProfiles.Handle(r.Context(), query.ListProfilesQuery{Page: page})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeList(w, r, page, profiles, len(profiles))
}

// handleRegisterProfile handles POST /api/v1/profiles
func (s *Server) handleRegisterProfile(w http.ResponseWriter, r *http.Request) {
	if !s.config.AllowRegistration {
		s.writeError(w, r, errRegistrationDisabled)
		return
	}

	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	result, err := s.h.registerProfile.Handle(r.Context(), command.RegisterProfileCommand{
		Username:  req.Username,
		Password:  req.Password,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusCreated, s.h.present.Profile(result.Profile))
}

// handleGetProfile handles GET /api/v1/profiles/{id}
func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	dto, err := s.h.getProfile.Handle(r.Context(), query.GetProfileQuery{
		Caller:    callerFrom(r),
		ProfileID: pathID(r),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, dto)
}

// handleUpdateProfile handles PATCH /api/v1/profiles/{id}
func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	caller := callerFrom(r)
	_, err := s.h.updateProfile.Handle(r.Context(), command.UpdateProfileCommand{
		Caller:    caller,
		ProfileID: pathID(r),
		Params: profile.UpdateParams{
			Email:     req.Email,
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Bio:       req.Bio,
			AvatarURL: req.AvatarURL,
			Expertise: req.Expertise,
		},
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	// The card was evicted by the command; this read rebuilds it with stats.
	dto, err := s.h.getProfile.Handle(r.Context(), query.GetProfileQuery{Caller: caller, ProfileID: pathID(r)})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, dto)
}

// handleDeleteProfile handles DELETE /api/v1/profiles/{id}
func (s *Server) handleDeleteProfile(w http.ResponseWriter, r *http.Request) {
	err := s.h.deleteProfile.Handle(r.Context(), command.DeleteProfileCommand{
		Caller:    callerFrom(r),
		ProfileID: pathID(r),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleReputationHistory handles GET /api/v1/profiles/{id}/reputation
func (s *Server) handleReputationHistory(w http.ResponseWriter, r *http.Request) {
	page, err := queryPage(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	entries, err := s.h.reputation.Handle(r.Context(), query.GetReputationHistoryQuery{
		ProfileID: pathID(r),
		Page:      page,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeList(w, r, page, entries, len(entries))
}
