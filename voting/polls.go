// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import (
	"context"
	"fmt"

	"github.com/danielhkuo/encuestas/models"
)

// ListOpen returns one page of open polls, most recently published first,
// with their vote and choice counts.
func (e *Engine) ListOpen(ctx context.Context, page int) (models.Page[models.PollSummary], error) {
	now := e.Now()
	result := models.Page[models.PollSummary]{Items: []models.PollSummary{}}

	err := e.conn.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM question WHERE is_active = $1 AND pub_date <= $2
	`, true, now).Scan(&result.TotalItems)
	if err != nil {
		return result, fmt.Errorf("failed to count open questions: %w", err)
	}

	var offset int
	result.Number, result.NumPages, offset = models.PageBounds(result.TotalItems, models.PollsPerPage, page)

	rows, err := e.conn.QueryContext(ctx, `
		SELECT q.id, q.question_text, q.pub_date, q.is_active, q.created_by, q.created_at, q.updated_at,
		       (SELECT COUNT(*) FROM vote v JOIN choice c ON c.id = v.choice_id WHERE c.question_id = q.id),
		       (SELECT COUNT(*) FROM choice c WHERE c.question_id = q.id)
		FROM question q
		WHERE q.is_active = $1 AND q.pub_date <= $2
		ORDER BY q.pub_date DESC, q.id DESC
		LIMIT $3 OFFSET $4
	`, true, now, models.PollsPerPage, offset)
	if err != nil {
		return result, fmt.Errorf("failed to query open questions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var s models.PollSummary
		if err := rows.Scan(
			&s.ID, &s.QuestionText, &s.PubDate, &s.IsActive, &s.CreatedBy, &s.CreatedAt, &s.UpdatedAt,
			&s.TotalVotes, &s.ChoicesCount,
		); err != nil {
			return result, fmt.Errorf("failed to scan question: %w", err)
		}
		result.Items = append(result.Items, s)
	}

	return result, rows.Err()
}
