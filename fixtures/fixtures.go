// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package fixtures loads demo polls.
package fixtures

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/danielhkuo/encuestas/auth"
	"github.com/danielhkuo/encuestas/models"
)

// SamplePoll is a question with its choices
type SamplePoll struct {
	QuestionText string
	Choices      []string
}

// SamplePolls is the demo data set, oldest first
var SamplePolls = []SamplePoll{
	{"¿Cuál es tu lenguaje de programación favorito?", []string{"Python", "JavaScript", "Java", "C++", "Go"}},
	{"¿Qué framework web prefieres para Python?", []string{"Django", "Flask", "FastAPI", "Pyramid"}},
	{"¿Cuál es tu sistema operativo preferido para desarrollo?", []string{"Windows", "macOS", "Linux Ubuntu", "Linux Arch", "Linux CentOS"}},
	{"¿Qué base de datos usas más frecuentemente?", []string{"PostgreSQL", "MySQL", "SQLite", "MongoDB", "Redis"}},
	{"¿Cuál es tu editor de código favorito?", []string{"VS Code", "PyCharm", "Sublime Text", "Vim", "Atom"}},
	{"¿Qué metodología de desarrollo prefieres?", []string{"Agile/Scrum", "Kanban", "Waterfall", "DevOps", "Lean"}},
	{"¿Cuál es tu horario de trabajo más productivo?", []string{
		"Temprano en la mañana (6-10 AM)",
		"Media mañana (10 AM - 12 PM)",
		"Tarde (2-6 PM)",
		"Noche (8 PM - 12 AM)",
		"Madrugada (12-6 AM)",
	}},
}

// Options control a sample data load
type Options struct {
	// Delete removes every existing poll first
	Delete bool
	// Username marks the creator; polls are created without one if the
	// user doesn't exist
	Username string
	// Now anchors the publication dates; zero means the current time
	Now time.Time
}

// Result reports what a load did
type Result struct {
	Deleted int64
	Created []models.Question
	Creator *models.User
}

// Load inserts SamplePolls. Publication dates are staggered a day apart so
// the newest poll is published at Now and every poll is open.
func Load(ctx context.Context, conn *sql.DB, opts Options) (*Result, error) {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()

	res := &Result{}
	if opts.Username != "" {
		u, err := auth.GetUserByName(ctx, conn, opts.Username)
		switch {
		case errors.Is(err, auth.ErrUserNotFound):
			slog.Warn("creator not found, polls will have no author", "username", opts.Username)
		case err != nil:
			return nil, err
		default:
			res.Creator = u
		}
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if opts.Delete {
		// Choices and votes go with their question
		result, err := tx.ExecContext(ctx, `DELETE FROM question`)
		if err != nil {
			return nil, fmt.Errorf("failed to delete polls: %w", err)
		}
		res.Deleted, _ = result.RowsAffected()
	}

	var createdBy *int64
	if res.Creator != nil {
		createdBy = &res.Creator.ID
	}

	for i, sample := range SamplePolls {
		q := models.Question{
			QuestionText: sample.QuestionText,
			PubDate:      now.AddDate(0, 0, -(len(SamplePolls) - i - 1)),
			IsActive:     true,
			CreatedBy:    createdBy,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		err := tx.QueryRowContext(ctx, `
			INSERT INTO question (question_text, pub_date, is_active, created_by, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id
		`, q.QuestionText, q.PubDate, q.IsActive, q.CreatedBy, q.CreatedAt, q.UpdatedAt).Scan(&q.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to insert question: %w", err)
		}

		for _, text := range sample.Choices {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO choice (question_id, choice_text, created_at) VALUES ($1, $2, $3)
			`, q.ID, text, now); err != nil {
				return nil, fmt.Errorf("failed to insert choice: %w", err)
			}
		}

		res.Created = append(res.Created, q)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit sample data: %w", err)
	}

	slog.Info("sample data loaded", "created", len(res.Created), "deleted", res.Deleted)
	return res, nil
}
