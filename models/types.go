package models

import "time"

// Poll lifecycle states, for voting purposes
const (
	StateScheduled = "scheduled"
	StateOpen      = "open"
	StateClosed    = "closed"
)

// Listing page sizes
const (
	PollsPerPage      = 5
	AdminPollsPerPage = 20
)

// RecentWindow is how far back a publication still counts as recent.
const RecentWindow = 24 * time.Hour

// Domain types

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // Never expose in JSON
	IsStaff      bool      `json:"is_staff"`
	CreatedAt    time.Time `json:"created_at"`
}

// Question is a poll.
type Question struct {
	ID           int64     `json:"id"`
	QuestionText string    `json:"question_text"`
	PubDate      time.Time `json:"pub_date"`
	IsActive     bool      `json:"is_active"`
	CreatedBy    *int64    `json:"created_by,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// State reports where the poll is in its voting lifecycle at now.
// An unpublished poll is scheduled even when deactivated, so that its
// existence is not revealed before pub_date.
func (q Question) State(now time.Time) string {
	if q.PubDate.After(now) {
		return StateScheduled
	}
	if !q.IsActive {
		return StateClosed
	}
	return StateOpen
}

// IsOpen reports whether the poll accepts votes at now.
func (q Question) IsOpen(now time.Time) bool {
	return q.State(now) == StateOpen
}

// IsPublished reports whether the publication time has been reached.
func (q Question) IsPublished(now time.Time) bool {
	return !q.PubDate.After(now)
}

// WasPublishedRecently reports whether the poll went out within the last
// day. Both ends of the window are inclusive.
func (q Question) WasPublishedRecently(now time.Time) bool {
	return !q.PubDate.Before(now.Add(-RecentWindow)) && !q.PubDate.After(now)
}

type Choice struct {
	ID         int64     `json:"id"`
	QuestionID int64     `json:"question_id"`
	ChoiceText string    `json:"choice_text"`
	CreatedAt  time.Time `json:"created_at"`
}

type Vote struct {
	ID          int64     `json:"id"`
	ChoiceID    int64     `json:"choice_id"`
	VoterIP     string    `json:"voter_ip"`
	UserID      *int64    `json:"user_id,omitempty"`
	IdentityKey string    `json:"-"`
	VotedAt     time.Time `json:"voted_at"`
}

// PollSummary is a listing row.
type PollSummary struct {
	Question
	TotalVotes   int `json:"total_votes"`
	ChoicesCount int `json:"choices_count"`
}

// Page is one page of a paginated listing.
type Page[T any] struct {
	Items      []T `json:"items"`
	Number     int `json:"page"`
	NumPages   int `json:"num_pages"`
	TotalItems int `json:"total_items"`
}

func (p Page[T]) HasPrevious() bool { return p.Number > 1 }
func (p Page[T]) HasNext() bool { return p.Number < p.NumPages }
func (p Page[T]) PreviousNumber() int { return p.Number - 1 }
func (p Page[T]) NextNumber() int { return p.Number + 1 }

// Tally types

type ChoiceResult struct {
	Choice     Choice  `json:"choice"`
	Votes      int     `json:"votes"`
	Percentage float64 `json:"percentage"`
}

type Tally struct {
	QuestionID int64          `json:"question_id"`
	TotalVotes int            `json:"total_votes"`
	Results    []ChoiceResult `json:"results"`
	ComputedAt time.Time      `json:"computed_at"`
}

// Response types

type LiveChoiceResult struct {
	ChoiceText string  `json:"choice_text"`
	Votes      int     `json:"votes"`
	Percentage float64 `json:"percentage"`
}

// LiveResultsResponse is polled by the results page; results is keyed by
// choice id.
type LiveResultsResponse struct {
	Success      bool                        `json:"success"`
	TotalVotes   int                         `json:"total_votes"`
	Results      map[string]LiveChoiceResult `json:"results"`
	QuestionText string                      `json:"question_text"`
	Timestamp    string                      `json:"timestamp"`
}

type LiveResultsError struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// Admin request/response types

type CreatePollRequest struct {
	QuestionText string     `json:"question_text"`
	PubDate      *time.Time `json:"pub_date,omitempty"`
	IsActive     *bool      `json:"is_active,omitempty"`
	Choices      []string   `json:"choices"`
}

type CreatePollResponse struct {
	Question Question `json:"question"`
	Choices  []Choice `json:"choices"`
}

type SetActiveRequest struct {
	IsActive *bool `json:"is_active"`
}

type AdminPollRow struct {
	Question
	CreatedByName        *string `json:"created_by_name,omitempty"`
	TotalVotes           int     `json:"total_votes"`
	WasPublishedRecently bool    `json:"was_published_recently"`
}

type AdminChoiceRow struct {
	Choice
	Votes int `json:"votes"`
}

type AdminPollDetail struct {
	Question   Question         `json:"question"`
	Choices    []AdminChoiceRow `json:"choices"`
	TotalVotes int              `json:"total_votes"`
}

type AdminVoteRow struct {
	Vote
	ChoiceText string  `json:"choice_text"`
	Username   *string `json:"username,omitempty"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
