package http

import (
	"net/http"

	"github.com/devask/devask-hub/internal/application/command"
	"github.com/devask/devask-hub/internal/application/query"
	"github.com/devask/devask-hub/internal/domain/question"
)

// ══════════════════════════════════════════════════════════════════════════════
// QUESTION HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

type questionRequest struct {
	Title        *string   `json:"title"`
	Content      *string   `json:"content"`
	IsPublished  *bool     `json:"is_published"`
	Technologies *[]string `json:"technologies"`
}

type likeResponse struct {
	Liked      bool `json:"liked"`
	LikesCount int  `json:"likes_count"`
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

// handleListQuestions handles GET /api/v1/questions
//
// Filters: year, first_name, last_name, is_solutioned, technology, search,
// owner, limit, offset.
func (s *Server) handleListQuestions(w http.ResponseWriter, r *http.Request) {
	page, err := queryPage(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	year, err := queryInt(r, "year")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	solutioned, err := queryBool(r, "is_solutioned")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	q := r.URL.Query()
	questions, err := s.h.listQuestions.Handle(r.Context(), query.ListQuestionsQuery{
		Filter: question.Filter{
			Year:       year,
			FirstName:  q.Get("first_name"),
			LastName:   q.Get("last_name"),
			Solutioned: solutioned,
			Technology: q.Get("technology"),
			Search:     q.Get("search"),
			OwnerID:    q.Get("owner"),
			Page:       page,
		},
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeList(w, r, page, questions, len(questions))
}

// handleCreateQuestion handles POST /api/v1/questions
func (s *Server) handleCreateQuestion(w http.ResponseWriter, r *http.Request) {
	var req questionRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	result, err := s.h.createQuestion.Handle(r.Context(), command.CreateQuestionCommand{
		Caller:        callerFrom(r),
		Title:         deref(req.Title),
		Content:       deref(req.Content),
		TechnologyIDs: deref(req.Technologies),
		Unpublished:   req.IsPublished != nil && !*req.IsPublished,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeQuestion(w, r, http.StatusCreated, result.Question)
}

// handleGetQuestion handles GET /api/v1/questions/{id}
func (s *Server) handleGetQuestion(w http.ResponseWriter, r *http.Request) {
	dto, err := s.h.getQuestion.Handle(r.Context(), query.GetQuestionQuery{QuestionID: pathID(r)})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, dto)
}

// handleUpdateQuestion handles PATCH /api/v1/questions/{id}
func (s *Server) handleUpdateQuestion(w http.ResponseWriter, r *http.Request) {
	var req questionRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	result, err := s.h.updateQuestion.Handle(r.Context(), command.UpdateQuestionCommand{
		Caller:     callerFrom(r),
		QuestionID: pathID(r),
		Params: question.UpdateParams{
			Title:         req.Title,
			Content:       req.Content,
			IsPublished:   req.IsPublished,
			TechnologyIDs: req.Technologies,
		},
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeQuestion(w, r, http.StatusOK, result.Question)
}

// handleDeleteQuestion handles DELETE /api/v1/questions/{id}
func (s *Server) handleDeleteQuestion(w http.ResponseWriter, r *http.Request) {
	err := s.h.deleteQuestion.Handle(r.Context(), command.DeleteQuestionCommand{
		Caller:     callerFrom(r),
		QuestionID: pathID(r),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleLikeQuestion handles POST /api/v1/questions/{id}/likes
func (s *Server) handleLikeQuestion(w http.ResponseWriter, r *http.Request) {
	result, err := s.h.likeQuestion.Handle(r.Context(), command.ToggleQuestionLikeCommand{
		Caller:     callerFrom(r),
		QuestionID: pathID(r),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, likeResponse{Liked: result.Active, LikesCount: result.Count})
}

// handleListAnswers handles GET /api/v1/questions/{id}/answers
func (s *Server) handleListAnswers(w http.ResponseWriter, r *http.Request) {
	answers, err := s.h.listAnswers.Handle(r.Context(), query.ListAnswersQuery{QuestionID: pathID(r)})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, answers)
}

func (s *Server) writeQuestion(w http.ResponseWriter, r *http.Request, status int, q *question.Question) {
	dto, err := s.h.present.Question(r.Context(), q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, status, dto)
}
