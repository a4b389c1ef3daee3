// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import (
	"context"
	"fmt"
	"math"

	"github.com/danielhkuo/encuestas/models"
)

// Tally counts the votes of every choice of the poll and each choice's
// share of the total. Shares are 0 while the poll has no votes and are
// rounded to one decimal place. The result is a point-in-time snapshot.
func (e *Engine) Tally(ctx context.Context, questionID int64) (*models.Tally, error) {
	rows, err := e.conn.QueryContext(ctx, `
		SELECT c.id, c.question_id, c.choice_text, c.created_at, COUNT(v.id)
		FROM choice c
		LEFT JOIN vote v ON v.choice_id = c.id
		WHERE c.question_id = $1
		GROUP BY c.id, c.question_id, c.choice_text, c.created_at
		ORDER BY c.id
	`, questionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query vote counts: %w", err)
	}
	defer rows.Close()

	tally := models.Tally{
		QuestionID: questionID,
		Results:    []models.ChoiceResult{},
		ComputedAt: e.Now(),
	}
	for rows.Next() {
		var r models.ChoiceResult
		if err := rows.Scan(&r.Choice.ID, &r.Choice.QuestionID, &r.Choice.ChoiceText, &r.Choice.CreatedAt, &r.Votes); err != nil {
			return nil, fmt.Errorf("failed to scan vote count: %w", err)
		}
		tally.TotalVotes += r.Votes
		tally.Results = append(tally.Results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read vote counts: %w", err)
	}

	for i := range tally.Results {
		tally.Results[i].Percentage = Percentage(tally.Results[i].Votes, tally.TotalVotes)
	}

	return &tally, nil
}

// Percentage is votes as a share of total, rounded to one decimal place.
func Percentage(votes, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(votes)/float64(total)*1000) / 10
}

// TotalVotes counts the votes cast across all of the poll's choices.
func (e *Engine) TotalVotes(ctx context.Context, questionID int64) (int, error) {
	var total int
	err := e.conn.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM vote v
		JOIN choice c ON c.id = v.choice_id
		WHERE c.question_id = $1
	`, questionID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to count votes: %w", err)
	}
	return total, nil
}
