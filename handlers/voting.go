// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/danielhkuo/encuestas/auth"
	"github.com/danielhkuo/encuestas/voting"
)

const noChoiceMessage = "You didn't select a choice."

// VotingHandler accepts ballots
type VotingHandler struct {
	*Env
}

func NewVotingHandler(env *Env) *VotingHandler {
	return &VotingHandler{Env: env}
}

// Vote handles POST /{id}/vote/
func (h *VotingHandler) Vote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	questionID, ok := pathID(r, "id")
	if !ok {
		h.View.NotFound(w, r)
		return
	}

	q, err := h.Engine.OpenQuestion(ctx, questionID)
	switch {
	case errors.Is(err, voting.ErrPollNotFound):
		h.View.NotFound(w, r)
		return
	case errors.Is(err, voting.ErrPollClosed):
		h.flash(w, r, auth.FlashWarning, "This poll is closed and no longer accepts votes.")
		h.View.Redirect(w, r, resultsURL(questionID))
		return
	case err != nil:
		logError(r, "failed to load poll", err, "question_id", questionID)
		h.View.ServerError(w, r)
		return
	}

	choiceID, err := strconv.ParseInt(r.PostFormValue("choice"), 10, 64)
	if err != nil {
		h.renderDetail(w, r, http.StatusOK, q, noChoiceMessage)
		return
	}

	identity := h.identity(r)
	vote, err := h.Engine.CastVote(ctx, questionID, choiceID, identity)
	switch {
	case err == nil:
		slog.Info("vote recorded", "question_id", questionID, "choice_id", vote.ChoiceID, "voter", identity.String())
		h.flash(w, r, auth.FlashSuccess, h.thanks(r, questionID, choiceID))
	case errors.Is(err, voting.ErrAlreadyVoted):
		h.flash(w, r, auth.FlashWarning, "You have already voted in this poll.")
	case errors.Is(err, voting.ErrPollClosed):
		h.flash(w, r, auth.FlashWarning, "This poll is closed and no longer accepts votes.")
	case errors.Is(err, voting.ErrPollNotFound), errors.Is(err, voting.ErrInvalidChoice):
		h.View.NotFound(w, r)
		return
	default:
		logError(r, "failed to record vote", err, "question_id", questionID, "choice_id", choiceID)
		h.View.ServerError(w, r)
		return
	}

	h.View.Redirect(w, r, resultsURL(questionID))
}

func (h *VotingHandler) thanks(r *http.Request, questionID, choiceID int64) string {
	choices, err := h.Engine.Choices(r.Context(), questionID)
	if err != nil {
		logError(r, "failed to load choices", err, "question_id", questionID)
	}
	for _, c := range choices {
		if c.ID == choiceID {
			return fmt.Sprintf("Thank you for voting! Your vote for %q has been recorded.", c.ChoiceText)
		}
	}
	return "Thank you for voting! Your vote has been recorded."
}
