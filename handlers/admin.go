// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/gorilla/csrf"
	"github.com/microcosm-cc/bluemonday"

	"github.com/danielhkuo/encuestas/auth"
	"github.com/danielhkuo/encuestas/middleware"
	"github.com/danielhkuo/encuestas/models"
	"github.com/danielhkuo/encuestas/voting"
)

const (
	maxQuestionText = 200
	maxChoiceText   = 200
)

// likeEscaper makes search text match literally inside a LIKE pattern
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

type staffKey struct{}

// AdminHandler is the staff-only management API
type AdminHandler struct {
	*Env
	policy *bluemonday.Policy
}

func NewAdminHandler(env *Env) *AdminHandler {
	return &AdminHandler{Env: env, policy: bluemonday.StrictPolicy()}
}

// RequireStaff rejects anonymous callers with 401 and non-staff users with 403
func (h *AdminHandler) RequireStaff(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := h.Sessions.CurrentUserID(r)
		if userID == nil {
			middleware.ErrorResponse(w, http.StatusUnauthorized, "login required")
			return
		}

		user, err := auth.GetUser(r.Context(), h.DB, *userID)
		if errors.Is(err, auth.ErrUserNotFound) {
			middleware.ErrorResponse(w, http.StatusUnauthorized, "login required")
			return
		}
		if err != nil {
			logError(r, "failed to load user", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to load user")
			return
		}
		if !user.IsStaff {
			middleware.ErrorResponse(w, http.StatusForbidden, "staff access required")
			return
		}

		// API clients echo this back on unsafe requests
		w.Header().Set("X-CSRF-Token", csrf.Token(r))
		next(w, r.WithContext(context.WithValue(r.Context(), staffKey{}, user)))
	}
}

func staffUser(ctx context.Context) *models.User {
	u, _ := ctx.Value(staffKey{}).(*models.User)
	return u
}

// clean strips markup and surrounding whitespace from admin-entered text.
// The result is stored as plain text and escaped again when rendered.
func (h *AdminHandler) clean(s string) string {
	return strings.TrimSpace(html.UnescapeString(h.policy.Sanitize(s)))
}

// ListPolls handles GET /admin/polls
// Supports ?q= (question text search), ?active=true|false and ?page=.
func (h *AdminHandler) ListPolls(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	var where []string
	var args []any
	if q := strings.TrimSpace(query.Get("q")); q != "" {
		args = append(args, "%"+likeEscaper.Replace(strings.ToLower(q))+"%")
		where = append(where, fmt.Sprintf(`LOWER(q.question_text) LIKE $%d ESCAPE '\'`, len(args)))
	}
	switch strings.ToLower(query.Get("active")) {
	case "true", "1":
		args = append(args, true)
		where = append(where, fmt.Sprintf("q.is_active = $%d", len(args)))
	case "false", "0":
		args = append(args, false)
		where = append(where, fmt.Sprintf("q.is_active = $%d", len(args)))
	}
	clause := ""
	if len(where) > 0 {
		clause = "WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := h.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM question q `+clause, args...).Scan(&total); err != nil {
		logError(r, "failed to count polls", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to list polls")
		return
	}

	number, numPages, offset := models.PageBounds(total, models.AdminPollsPerPage, pageParam(r))
	args = append(args, models.AdminPollsPerPage, offset)

	rows, err := h.DB.QueryContext(ctx, fmt.Sprintf(`
		SELECT q.id, q.question_text, q.pub_date, q.is_active, q.created_by, q.created_at, q.updated_at,
			u.username,
			(SELECT COUNT(*) FROM vote v JOIN choice c ON c.id = v.choice_id WHERE c.question_id = q.id)
		FROM question q
		LEFT JOIN users u ON u.id = q.created_by
		%s
		ORDER BY q.pub_date DESC, q.id DESC
		LIMIT $%d OFFSET $%d
	`, clause, len(args)-1, len(args)), args...)
	if err != nil {
		logError(r, "failed to query polls", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to list polls")
		return
	}
	defer rows.Close()

	now := h.Engine.Now()
	page := models.Page[models.AdminPollRow]{
		Items:      []models.AdminPollRow{},
		Number:     number,
		NumPages:   numPages,
		TotalItems: total,
	}
	for rows.Next() {
		var row models.AdminPollRow
		q := &row.Question
		if err := rows.Scan(&q.ID, &q.QuestionText, &q.PubDate, &q.IsActive, &q.CreatedBy, &q.CreatedAt, &q.UpdatedAt,
			&row.CreatedByName, &row.TotalVotes); err != nil {
			logError(r, "failed to scan poll", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to list polls")
			return
		}
		row.WasPublishedRecently = q.WasPublishedRecently(now)
		page.Items = append(page.Items, row)
	}
	if err := rows.Err(); err != nil {
		logError(r, "failed to read polls", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to list polls")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, page)
}

// CreatePoll handles POST /admin/polls
func (h *AdminHandler) CreatePoll(w http.ResponseWriter, r *http.Request) {
	var req models.CreatePollRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	text := h.clean(req.QuestionText)
	if text == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "question_text is required")
		return
	}
	if utf8.RuneCountInString(text) > maxQuestionText {
		middleware.ErrorResponse(w, http.StatusBadRequest, fmt.Sprintf("question_text must be at most %d characters", maxQuestionText))
		return
	}

	choices := make([]string, 0, len(req.Choices))
	for _, c := range req.Choices {
		c = h.clean(c)
		if c == "" {
			continue
		}
		if utf8.RuneCountInString(c) > maxChoiceText {
			middleware.ErrorResponse(w, http.StatusBadRequest, fmt.Sprintf("choices must be at most %d characters", maxChoiceText))
			return
		}
		choices = append(choices, c)
	}
	if len(choices) == 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "at least one choice is required")
		return
	}

	now := h.Engine.Now()
	q := models.Question{
		QuestionText: text,
		PubDate:      now,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if req.PubDate != nil {
		q.PubDate = req.PubDate.UTC()
	}
	if req.IsActive != nil {
		q.IsActive = *req.IsActive
	}
	if u := staffUser(r.Context()); u != nil {
		q.CreatedBy = &u.ID
	}

	resp, err := h.insertPoll(r.Context(), q, choices)
	if err != nil {
		logError(r, "failed to create poll", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create poll")
		return
	}

	slog.Info("poll created", "question_id", resp.Question.ID, "choices", len(resp.Choices))

	middleware.JSONResponse(w, http.StatusCreated, resp)
}

// insertPoll stores the question and its choices in one transaction
func (h *AdminHandler) insertPoll(ctx context.Context, q models.Question, choices []string) (*models.CreatePollResponse, error) {
	tx, err := h.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO question (question_text, pub_date, is_active, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, q.QuestionText, q.PubDate, q.IsActive, q.CreatedBy, q.CreatedAt, q.UpdatedAt).Scan(&q.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to insert question: %w", err)
	}

	resp := &models.CreatePollResponse{Question: q, Choices: make([]models.Choice, 0, len(choices))}
	for _, text := range choices {
		c := models.Choice{QuestionID: q.ID, ChoiceText: text, CreatedAt: q.CreatedAt}
		err := tx.QueryRowContext(ctx, `
			INSERT INTO choice (question_id, choice_text, created_at)
			VALUES ($1, $2, $3)
			RETURNING id
		`, c.QuestionID, c.ChoiceText, c.CreatedAt).Scan(&c.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to insert choice: %w", err)
		}
		resp.Choices = append(resp.Choices, c)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit poll: %w", err)
	}
	return resp, nil
}

// GetPoll handles GET /admin/polls/{id}
func (h *AdminHandler) GetPoll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	questionID, ok := pathID(r, "id")
	if !ok {
		middleware.ErrorResponse(w, http.StatusNotFound, "Poll not found")
		return
	}

	q, err := h.Engine.GetQuestion(ctx, questionID)
	if errors.Is(err, voting.ErrPollNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Poll not found")
		return
	}
	if err != nil {
		logError(r, "failed to load poll", err, "question_id", questionID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to load poll")
		return
	}

	tally, err := h.Engine.Tally(ctx, questionID)
	if err != nil {
		logError(r, "failed to tally poll", err, "question_id", questionID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to load poll")
		return
	}

	detail := models.AdminPollDetail{
		Question:   *q,
		Choices:    make([]models.AdminChoiceRow, 0, len(tally.Results)),
		TotalVotes: tally.TotalVotes,
	}
	for _, res := range tally.Results {
		detail.Choices = append(detail.Choices, models.AdminChoiceRow{Choice: res.Choice, Votes: res.Votes})
	}

	middleware.JSONResponse(w, http.StatusOK, detail)
}

// SetActive handles POST /admin/polls/{id}/active
func (h *AdminHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	questionID, ok := pathID(r, "id")
	if !ok {
		middleware.ErrorResponse(w, http.StatusNotFound, "Poll not found")
		return
	}

	var req models.SetActiveRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.IsActive == nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "is_active is required")
		return
	}

	result, err := h.DB.ExecContext(r.Context(), `
		UPDATE question SET is_active = $1, updated_at = $2 WHERE id = $3
	`, *req.IsActive, h.Engine.Now(), questionID)
	if err != nil {
		logError(r, "failed to update poll", err, "question_id", questionID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update poll")
		return
	}
	if n, _ := result.RowsAffected(); n == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, "Poll not found")
		return
	}

	slog.Info("poll activation changed", "question_id", questionID, "is_active", *req.IsActive)

	middleware.JSONResponse(w, http.StatusOK, map[string]any{
		"id":        questionID,
		"is_active": *req.IsActive,
	})
}

// ListVotes handles GET /admin/polls/{id}/votes
func (h *AdminHandler) ListVotes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	questionID, ok := pathID(r, "id")
	if !ok {
		middleware.ErrorResponse(w, http.StatusNotFound, "Poll not found")
		return
	}
	if _, err := h.Engine.GetQuestion(ctx, questionID); err != nil {
		if errors.Is(err, voting.ErrPollNotFound) {
			middleware.ErrorResponse(w, http.StatusNotFound, "Poll not found")
			return
		}
		logError(r, "failed to load poll", err, "question_id", questionID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to list votes")
		return
	}

	rows, err := h.DB.QueryContext(ctx, `
		SELECT v.id, v.choice_id, v.voter_ip, v.user_id, v.identity_key, v.voted_at, c.choice_text, u.username
		FROM vote v
		JOIN choice c ON c.id = v.choice_id
		LEFT JOIN users u ON u.id = v.user_id
		WHERE c.question_id = $1
		ORDER BY v.voted_at DESC, v.id DESC
	`, questionID)
	if err != nil {
		logError(r, "failed to query votes", err, "question_id", questionID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to list votes")
		return
	}
	defer rows.Close()

	votes := []models.AdminVoteRow{}
	for rows.Next() {
		var row models.AdminVoteRow
		v := &row.Vote
		if err := rows.Scan(&v.ID, &v.ChoiceID, &v.VoterIP, &v.UserID, &v.IdentityKey, &v.VotedAt,
			&row.ChoiceText, &row.Username); err != nil {
			logError(r, "failed to scan vote", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to list votes")
			return
		}
		votes = append(votes, row)
	}
	if err := rows.Err(); err != nil {
		logError(r, "failed to read votes", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to list votes")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, votes)
}

// DeleteVote handles DELETE /admin/votes/{id}
func (h *AdminHandler) DeleteVote(w http.ResponseWriter, r *http.Request) {
	voteID, ok := pathID(r, "id")
	if !ok {
		middleware.ErrorResponse(w, http.StatusNotFound, "Vote not found")
		return
	}

	result, err := h.DB.ExecContext(r.Context(), `DELETE FROM vote WHERE id = $1`, voteID)
	if err != nil {
		logError(r, "failed to delete vote", err, "vote_id", voteID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete vote")
		return
	}
	if n, _ := result.RowsAffected(); n == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, "Vote not found")
		return
	}

	slog.Info("vote deleted", "vote_id", voteID)

	w.WriteHeader(http.StatusNoContent)
}
