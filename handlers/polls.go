// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"net/http"

	"github.com/danielhkuo/encuestas/models"
	"github.com/danielhkuo/encuestas/voting"
)

// PollHandler serves the public poll pages
type PollHandler struct {
	*Env
}

func NewPollHandler(env *Env) *PollHandler {
	return &PollHandler{Env: env}
}

// IndexData feeds index.html
type IndexData struct {
	Page models.Page[models.PollSummary]
}

// DetailData feeds detail.html
type DetailData struct {
	Question     *models.Question
	Choices      []models.Choice
	TotalVotes   int
	HasVoted     bool
	VotedChoice  *models.Choice
	ErrorMessage string
}

// Index handles GET / and GET /list/
func (h *PollHandler) Index(w http.ResponseWriter, r *http.Request) {
	page, err := h.Engine.ListOpen(r.Context(), pageParam(r))
	if err != nil {
		logError(r, "failed to list polls", err)
		h.View.ServerError(w, r)
		return
	}

	h.View.Render(w, r, http.StatusOK, "index", "Open polls", IndexData{Page: page})
}

// Detail handles GET /{id}/
func (h *PollHandler) Detail(w http.ResponseWriter, r *http.Request) {
	questionID, ok := pathID(r, "id")
	if !ok {
		h.View.NotFound(w, r)
		return
	}

	q, err := h.Engine.OpenQuestion(r.Context(), questionID)
	if errors.Is(err, voting.ErrPollNotFound) || errors.Is(err, voting.ErrPollClosed) {
		h.View.NotFound(w, r)
		return
	}
	if err != nil {
		logError(r, "failed to load poll", err, "question_id", questionID)
		h.View.ServerError(w, r)
		return
	}

	h.renderDetail(w, r, http.StatusOK, q, "")
}

// renderDetail shows the voting form, or the voter's existing choice
func (h *Env) renderDetail(w http.ResponseWriter, r *http.Request, status int, q *models.Question, errMsg string) {
	ctx := r.Context()

	choices, err := h.Engine.Choices(ctx, q.ID)
	if err != nil {
		logError(r, "failed to load choices", err, "question_id", q.ID)
		h.View.ServerError(w, r)
		return
	}
	total, err := h.Engine.TotalVotes(ctx, q.ID)
	if err != nil {
		logError(r, "failed to count votes", err, "question_id", q.ID)
		h.View.ServerError(w, r)
		return
	}
	voted, votedChoice, err := h.Engine.HasVoted(ctx, q.ID, h.identity(r))
	if err != nil {
		logError(r, "failed to check prior vote", err, "question_id", q.ID)
		h.View.ServerError(w, r)
		return
	}

	h.View.Render(w, r, status, "detail", q.QuestionText, DetailData{
		Question:     q,
		Choices:      choices,
		TotalVotes:   total,
		HasVoted:     voted,
		VotedChoice:  votedChoice,
		ErrorMessage: errMsg,
	})
}

// About handles GET /about/
func (h *PollHandler) About(w http.ResponseWriter, r *http.Request) {
	h.View.Render(w, r, http.StatusOK, "about", "About", nil)
}
