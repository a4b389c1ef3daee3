// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/danielhkuo/encuestas/middleware"
	"github.com/danielhkuo/encuestas/models"
	"github.com/danielhkuo/encuestas/voting"
)

// ResultsHandler serves tallies as HTML and as JSON for live refresh
type ResultsHandler struct {
	*Env
}

func NewResultsHandler(env *Env) *ResultsHandler {
	return &ResultsHandler{Env: env}
}

// ResultsData feeds results.html
type ResultsData struct {
	Question   *models.Question
	Tally      *models.Tally
	UserChoice *models.Choice
}

// Results handles GET /{id}/results/
// Closed polls keep their results visible; scheduled ones are not found.
func (h *ResultsHandler) Results(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	questionID, ok := pathID(r, "id")
	if !ok {
		h.View.NotFound(w, r)
		return
	}

	q, err := h.Engine.PublishedQuestion(ctx, questionID)
	if errors.Is(err, voting.ErrPollNotFound) {
		h.View.NotFound(w, r)
		return
	}
	if err != nil {
		logError(r, "failed to load poll", err, "question_id", questionID)
		h.View.ServerError(w, r)
		return
	}

	tally, err := h.Engine.Tally(ctx, questionID)
	if err != nil {
		logError(r, "failed to tally poll", err, "question_id", questionID)
		h.View.ServerError(w, r)
		return
	}

	mine, err := h.Engine.VoterChoice(ctx, questionID, h.identity(r))
	if err != nil {
		logError(r, "failed to load voter choice", err, "question_id", questionID)
		h.View.ServerError(w, r)
		return
	}

	h.View.Render(w, r, http.StatusOK, "results", q.QuestionText, ResultsData{
		Question:   q,
		Tally:      tally,
		UserChoice: mine,
	})
}

// LiveResults handles GET /{id}/live-results/
func (h *ResultsHandler) LiveResults(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	questionID, ok := pathID(r, "id")
	if !ok {
		liveError(w, http.StatusNotFound, "Poll not found")
		return
	}

	q, err := h.Engine.PublishedQuestion(ctx, questionID)
	if errors.Is(err, voting.ErrPollNotFound) {
		liveError(w, http.StatusNotFound, "Poll not found")
		return
	}
	if err != nil {
		logError(r, "failed to load poll", err, "question_id", questionID)
		liveError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	tally, err := h.Engine.Tally(ctx, questionID)
	if err != nil {
		logError(r, "failed to tally poll", err, "question_id", questionID)
		liveError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	results := make(map[string]models.LiveChoiceResult, len(tally.Results))
	for _, res := range tally.Results {
		results[strconv.FormatInt(res.Choice.ID, 10)] = models.LiveChoiceResult{
			ChoiceText: res.Choice.ChoiceText,
			Votes:      res.Votes,
			Percentage: res.Percentage,
		}
	}

	w.Header().Set("Cache-Control", "no-store")
	middleware.JSONResponse(w, http.StatusOK, models.LiveResultsResponse{
		Success:      true,
		TotalVotes:   tally.TotalVotes,
		Results:      results,
		QuestionText: q.QuestionText,
		Timestamp:    tally.ComputedAt.UTC().Format(time.RFC3339Nano),
	})
}

func liveError(w http.ResponseWriter, status int, msg string) {
	middleware.JSONResponse(w, status, models.LiveResultsError{Success: false, Error: msg})
}
