package http

import (
	"net/http"

	"github.com/devask/devask-hub/internal/application/command"
	"github.com/devask/devask-hub/internal/application/query"
	"github.com/devask/devask-hub/internal/domain/answer"
	"github.com/devask/devask-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ANSWER HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

type submitAnswerRequest struct {
	QuestionID string `json:"question_id"`
	Content    string `json:"content"`
}

type editAnswerRequest struct {
	Content string `json:"content"`
}

type acceptAnswerRequest struct {
	IsAccepted *bool `json:"is_accepted"`
}

type upvoteResponse struct {
	Upvoted      bool `json:"upvoted"`
	UpvotesCount int  `json:"upvotes_count"`
}

// handleSubmitAnswer handles POST /api/v1/answers
func (s *Server) handleSubmitAnswer(w http.ResponseWriter, r *http.Request) {
	var req submitAnswerRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := requireField("question_id", req.QuestionID); err != nil {
		s.writeError(w, r, err)
		return
	}

	result, err := s.h.submitAnswer.Handle(r.Context(), command.SubmitAnswerCommand{
		Caller:     callerFrom(r),
		QuestionID: req.QuestionID,
		Content:    req.Content,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeAnswer(w, r, http.StatusCreated, result.Answer)
}

// handleGetAnswer handles GET /api/v1/answers/{id}
func (s *Server) handleGetAnswer(w http.ResponseWriter, r *http.Request) {
	dto, err := s.h.getAnswer.Handle(r.Context(), query.GetAnswerQuery{AnswerID: pathID(r)})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, dto)
}

// handleEditAnswer handles PATCH /api/v1/answers/{id}
func (s *Server) handleEditAnswer(w http.ResponseWriter, r *http.Request) {
	var req editAnswerRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	result, err := s.h.editAnswer.Handle(r.Context(), command.EditAnswerCommand{
		Caller:   callerFrom(r),
		AnswerID: pathID(r),
		Content:  req.Content,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeAnswer(w, r, http.StatusOK, result.Answer)
}

// handleDeleteAnswer handles DELETE /api/v1/answers/{id}
func (s *Server) handleDeleteAnswer(w http.ResponseWriter, r *http.Request) {
	err := s.h.deleteAnswer.Handle(r.Context(), command.DeleteAnswerCommand{
		Caller:   callerFrom(r),
		AnswerID: pathID(r),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleAcceptAnswer handles PATCH /api/v1/answers/{id}/accept
//
// {"is_accepted": true} accepts, false revokes. An omitted flag accepts.
func (s *Server) handleAcceptAnswer(w http.ResponseWriter, r *http.Request) {
	req := acceptAnswerRequest{}
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	accepted := req.IsAccepted == nil || *req.IsAccepted

	result, err := s.h.acceptAnswer.Handle(r.Context(), command.SetAnswerAcceptanceCommand{
		Caller:   callerFrom(r),
		AnswerID: pathID(r),
		Accepted: accepted,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeAnswer(w, r, http.StatusOK, result.Answer)
}

// handleUpvoteAnswer handles POST /api/v1/answers/{id}/upvote
func (s *Server) handleUpvoteAnswer(w http.ResponseWriter, r *http.Request) {
	result, err := s.h.upvoteAnswer.Handle(r.Context(), command.ToggleAnswerUpvoteCommand{
		Caller:   callerFrom(r),
		AnswerID: pathID(r),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, upvoteResponse{Upvoted: result.Active, UpvotesCount: result.Count})
}

func (s *Server) writeAnswer(w http.ResponseWriter, r *http.Request, status int, a *answer.Answer) {
	if a == nil {
		s.writeError(w, r, shared.ErrAnswerNotFound)
		return
	}
	dto, err := s.h.present.Answer(r.Context(), a)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, status, dto)
}
