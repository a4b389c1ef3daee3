// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines domain, page, and request/response types.

# Domain Types

  - User: account with staff flag
  - Question: a poll with pub_date and is_active
  - Choice: an answer of a question
  - Vote: one recorded vote, with the voter IP and optional user

# Poll State

Question.State derives the lifecycle from pub_date and is_active:

	StateScheduled  pub_date in the future (hidden, even if inactive)
	StateOpen       published and active
	StateClosed     published and inactive

# Listings

Page[T] is one page of a listing. PageBounds clamps the requested page
number, sending anything out of range to the last page.

# Response Types

  - Tally, ChoiceResult: vote counts and percentages
  - LiveResultsResponse, LiveResultsError: the live results JSON
  - AdminPollRow, AdminPollDetail, AdminVoteRow: management API
  - ErrorResponse: error, message
*/
package models
