package http

import (
	"net/http"
	"strings"

	"github.com/devask/devask-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH & STATUS HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleHealth reports every dependency check.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.deps.HealthChecker == nil {
		s.writeJSON(w, r, http.StatusOK, map[string]string{
			"status":  "healthy",
			"uptime":  s.Uptime().String(),
			"version": s.config.Version,
		})
		return
	}

	status := s.deps.HealthChecker.Check(r.Context())
	if !status.Healthy {
		s.write(w, http.StatusServiceUnavailable, JSONResponse{
			Success: false,
			Data:    status,
			Error:   &APIError{Code: "unhealthy", Message: status.Message},
			Meta:    s.meta(r),
		})
		return
	}
	s.writeJSON(w, r, http.StatusOK, status)
}

// handleReady handles the readiness probe endpoint.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.deps.HealthChecker != nil {
		if status := s.deps.HealthChecker.Check(r.Context()); !status.Healthy {
			s.writeJSONError(w, r, http.StatusServiceUnavailable, "not_ready", status.Message)
			return
		}
	}
	s.writeJSON(w, r, http.StatusOK, map[string]string{"status": "ready"})
}

// handleLive handles the liveness probe endpoint.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, map[string]string{"status": "alive"})
}

// ══════════════════════════════════════════════════════════════════════════════
// AUTHENTICATION HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

type verifyRequest struct {
	Token string `json:"token"`
}

type logoutRequest struct {
	Refresh string `json:"refresh"`
	// Access is optional; when given it stops working at once as well.
	Access string `json:"access,omitempty"`
}

func requireField(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return shared.Invalid("request", "Decode", name+" is required")
	}
	return nil
}

// handleLogin handles POST /api/v1/authentication/token
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := requireField("username", req.Username); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := requireField("password", req.Password); err != nil {
		s.writeError(w, r, err)
		return
	}

	pair, err := s.deps.Auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, pair)
}

// handleRefresh handles POST /api/v1/authentication/token/refresh
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := requireField("refresh", req.Refresh); err != nil {
		s.writeError(w, r, err)
		return
	}

	accessToken, err := s.deps.Auth.Refresh(r.Context(), req.Refresh)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, map[string]string{"access": accessToken})
}

// handleVerify handles POST /api/v1/authentication/token/verify
func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := requireField("token", req.Token); err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.deps.Auth.Verify(r.Context(), req.Token); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, map[string]bool{"valid": true})
}

// handleLogout handles POST /api/v1/authentication/logout
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	var req logoutRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := requireField("refresh", req.Refresh); err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.deps.Auth.Logout(r.Context(), req.Refresh, req.Access); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
