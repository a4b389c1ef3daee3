// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/danielhkuo/encuestas/db"
	"github.com/danielhkuo/encuestas/models"
)

var (
	ErrPollNotFound  = errors.New("poll not found")
	ErrPollClosed    = errors.New("poll is closed")
	ErrInvalidChoice = errors.New("invalid choice")
	ErrAlreadyVoted  = errors.New("already voted")
)

// Refusal is the reason a vote was not recorded.
type Refusal string

const (
	RefusalAlreadyVoted  Refusal = "already_voted"
	RefusalPollClosed    Refusal = "poll_closed"
	RefusalInvalidChoice Refusal = "invalid_choice"
)

// RefusalOf maps a CastVote error to its refusal reason. Not-found polls
// are refused as closed. ok is false for unexpected failures.
func RefusalOf(err error) (r Refusal, ok bool) {
	switch {
	case errors.Is(err, ErrAlreadyVoted):
		return RefusalAlreadyVoted, true
	case errors.Is(err, ErrPollClosed), errors.Is(err, ErrPollNotFound):
		return RefusalPollClosed, true
	case errors.Is(err, ErrInvalidChoice):
		return RefusalInvalidChoice, true
	}
	return "", false
}

// Engine decides whether votes may be recorded and computes tallies.
// It keeps no mutable state; the database is the only shared resource and
// its uniqueness constraint is what keeps concurrent votes in line.
type Engine struct {
	conn *sql.DB
	now  func() time.Time
}

func NewEngine(conn *sql.DB) *Engine {
	return &Engine{conn: conn, now: time.Now}
}

// WithClock returns a copy of the engine that reads time from now.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	return &Engine{conn: e.conn, now: now}
}

// Now is the engine's current time in UTC.
func (e *Engine) Now() time.Time {
	return e.now().UTC()
}

const questionColumns = `id, question_text, pub_date, is_active, created_by, created_at, updated_at`

func scanQuestion(row interface{ Scan(...any) error }, q *models.Question) error {
	return row.Scan(&q.ID, &q.QuestionText, &q.PubDate, &q.IsActive, &q.CreatedBy, &q.CreatedAt, &q.UpdatedAt)
}

// GetQuestion loads a poll regardless of its state.
func (e *Engine) GetQuestion(ctx context.Context, questionID int64) (*models.Question, error) {
	var q models.Question
	err := scanQuestion(e.conn.QueryRowContext(ctx, `
		SELECT `+questionColumns+` FROM question WHERE id = $1
	`, questionID), &q)
	if err == sql.ErrNoRows {
		return nil, ErrPollNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query question: %w", err)
	}
	return &q, nil
}

// PublishedQuestion loads a poll whose publication time has passed. Polls
// scheduled for later are reported as not found.
func (e *Engine) PublishedQuestion(ctx context.Context, questionID int64) (*models.Question, error) {
	q, err := e.GetQuestion(ctx, questionID)
	if err != nil {
		return nil, err
	}
	if !q.IsPublished(e.Now()) {
		return nil, ErrPollNotFound
	}
	return q, nil
}

// OpenQuestion loads a poll that accepts votes. Scheduled polls are not
// found; published but deactivated polls are closed.
func (e *Engine) OpenQuestion(ctx context.Context, questionID int64) (*models.Question, error) {
	q, err := e.PublishedQuestion(ctx, questionID)
	if err != nil {
		return nil, err
	}
	if q.State(e.Now()) == models.StateClosed {
		return q, ErrPollClosed
	}
	return q, nil
}

// Choices returns the poll's choices in creation order.
func (e *Engine) Choices(ctx context.Context, questionID int64) ([]models.Choice, error) {
	rows, err := e.conn.QueryContext(ctx, `
		SELECT id, question_id, choice_text, created_at
		FROM choice
		WHERE question_id = $1
		ORDER BY id
	`, questionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query choices: %w", err)
	}
	defer rows.Close()

	choices := []models.Choice{}
	for rows.Next() {
		var c models.Choice
		if err := rows.Scan(&c.ID, &c.QuestionID, &c.ChoiceText, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan choice: %w", err)
		}
		choices = append(choices, c)
	}
	return choices, rows.Err()
}

func (e *Engine) choiceOf(ctx context.Context, questionID, choiceID int64) (*models.Choice, error) {
	var c models.Choice
	err := e.conn.QueryRowContext(ctx, `
		SELECT id, question_id, choice_text, created_at
		FROM choice
		WHERE id = $1 AND question_id = $2
	`, choiceID, questionID).Scan(&c.ID, &c.QuestionID, &c.ChoiceText, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrInvalidChoice
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query choice: %w", err)
	}
	return &c, nil
}

// votedChoice returns the earliest choice under the poll voted for by rows
// matching the given vote column, or nil.
func (e *Engine) votedChoice(ctx context.Context, questionID int64, column string, value any) (*models.Choice, error) {
	var c models.Choice
	err := e.conn.QueryRowContext(ctx, `
		SELECT c.id, c.question_id, c.choice_text, c.created_at
		FROM vote v
		JOIN choice c ON c.id = v.choice_id
		WHERE c.question_id = $1 AND v.`+column+` = $2
		ORDER BY v.voted_at, v.id
		LIMIT 1
	`, questionID, value).Scan(&c.ID, &c.QuestionID, &c.ChoiceText, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query votes by %s: %w", column, err)
	}
	return &c, nil
}

// HasVoted reports whether the identity already voted on the poll and for
// which choice. A user's own votes are checked first, then votes from the
// identity's IP, whoever cast them.
func (e *Engine) HasVoted(ctx context.Context, questionID int64, id Identity) (bool, *models.Choice, error) {
	if id.UserID != nil {
		c, err := e.votedChoice(ctx, questionID, "user_id", *id.UserID)
		if err != nil {
			return false, nil, err
		}
		if c != nil {
			return true, c, nil
		}
	}

	c, err := e.votedChoice(ctx, questionID, "voter_ip", id.IP)
	if err != nil {
		return false, nil, err
	}
	return c != nil, c, nil
}

// VoterChoice returns the choice recorded under the identity's own key
// (the user's vote, or an anonymous vote from the IP), or nil.
func (e *Engine) VoterChoice(ctx context.Context, questionID int64, id Identity) (*models.Choice, error) {
	return e.votedChoice(ctx, questionID, "identity_key", id.Key())
}

// CastVote records a vote for choiceID on behalf of id.
//
// The HasVoted pre-check turns the common repeat vote into ErrAlreadyVoted
// without touching the constraint; concurrent attempts that all pass it are
// settled by the UNIQUE (choice_id, identity_key) constraint and the losers
// also get ErrAlreadyVoted.
func (e *Engine) CastVote(ctx context.Context, questionID, choiceID int64, id Identity) (*models.Vote, error) {
	if _, err := e.OpenQuestion(ctx, questionID); err != nil {
		return nil, err
	}

	choice, err := e.choiceOf(ctx, questionID, choiceID)
	if err != nil {
		return nil, err
	}

	voted, _, err := e.HasVoted(ctx, questionID, id)
	if err != nil {
		return nil, err
	}
	if voted {
		return nil, ErrAlreadyVoted
	}

	vote := models.Vote{
		ChoiceID:    choice.ID,
		VoterIP:     id.IP,
		UserID:      id.UserID,
		IdentityKey: id.Key(),
		VotedAt:     e.Now(),
	}
	err = e.conn.QueryRowContext(ctx, `
		INSERT INTO vote (choice_id, voter_ip, user_id, identity_key, voted_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, vote.ChoiceID, vote.VoterIP, vote.UserID, vote.IdentityKey, vote.VotedAt).Scan(&vote.ID)

	if db.IsUniqueViolation(err) {
		slog.Info("concurrent vote lost uniqueness race", "question_id", questionID, "choice_id", choiceID, "identity", id.Key())
		return nil, ErrAlreadyVoted
	}
	if err != nil {
		return nil, fmt.Errorf("failed to insert vote: %w", err)
	}

	return &vote, nil
}
