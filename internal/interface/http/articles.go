package http

import (
	"net/http"

	"github.com/devask/devask-hub/internal/application/command"
	"github.com/devask/devask-hub/internal/application/query"
	"github.com/devask/devask-hub/internal/domain/article"
)

// ══════════════════════════════════════════════════════════════════════════════
// ARTICLE HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

type articleRequest struct {
	Title        *string   `json:"title"`
	Content      *string   `json:"content"`
	IsPublished  *bool     `json:"is_published"`
	Technologies *[]string `json:"technologies"`
}

// handleListArticles handles GET /api/v1/articles
//
// author=<id> narrows to one author; include_drafts=true adds the caller's
// own drafts when author is the caller.
func (s *Server) handleListArticles(w http.ResponseWriter, r *http.Request) {
	page, err := queryPage(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	drafts, err := queryBool(r, "include_drafts")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	articles, err := s.h.listArticles.Handle(r.Context(), query.ListArticlesQuery{
		Caller:        callerFrom(r),
		AuthorID:      r.URL.Query().Get("author"),
		IncludeDrafts: deref(drafts),
		Page:          page,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeList(w, r, page, articles, len(articles))
}

// handleCreateArticle handles POST /api/v1/articles
func (s *Server) handleCreateArticle(w http.ResponseWriter, r *http.Request) {
	var req articleRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	result, err := s.h.createArticle.Handle(r.Context(), command.CreateArticleCommand{
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
	s.writeArticle(w, r, http.StatusCreated, result.Article)
}

// handleGetArticle handles GET /api/v1/articles/{id}
func (s *Server) handleGetArticle(w http.ResponseWriter, r *http.Request) {
	dto, err := s.h.getArticle.Handle(r.Context(), query.GetArticleQuery{
		Caller:    callerFrom(r),
		ArticleID: pathID(r),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, dto)
}

// handleUpdateArticle handles PATCH /api/v1/articles/{id}
func (s *Server) handleUpdateArticle(w http.ResponseWriter, r *http.Request) {
	var req articleRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	result, err := s.h.updateArticle.Handle(r.Context(), command.UpdateArticleCommand{
		Caller:    callerFrom(r),
		ArticleID: pathID(r),
		Params: article.UpdateParams{
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
	s.writeArticle(w, r, http.StatusOK, result.Article)
}

// handleDeleteArticle handles DELETE /api/v1/articles/{id}
func (s *Server) handleDeleteArticle(w http.ResponseWriter, r *http.Request) {
	err := s.h.deleteArticle.Handle(r.Context(), command.DeleteArticleCommand{
		Caller:    callerFrom(r),
		ArticleID: pathID(r),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleLikeArticle handles POST /api/v1/articles/{id}/like
func (s *Server) handleLikeArticle(w http.ResponseWriter, r *http.Request) {
	result, err := s.h.likeArticle.Handle(r.Context(), command.ToggleArticleLikeCommand{
		Caller:    callerFrom(r),
		ArticleID: pathID(r),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, likeResponse{Liked: result.Active, LikesCount: result.Count})
}

func (s *Server) writeArticle(w http.ResponseWriter, r *http.Request, status int, a *article.Article) {
	dto, err := s.h.present.Article(r.Context(), a)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, status, dto)
}
