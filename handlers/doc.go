// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains the HTTP request handlers.

# Handler Types

Each handler embeds the shared Env (database, config, voting engine,
sessions and views):

  - PollHandler: poll listing, detail and about pages
  - VotingHandler: vote submission
  - ResultsHandler: results page and live results JSON
  - AccountHandler: login and logout
  - AdminHandler: staff-only management API

	env := handlers.NewEnv(db, cfg)
	pollHandler := handlers.NewPollHandler(env)

# Voting Flow

	GET  /{id}/          → Detail (404 unless the poll is open)
	POST /{id}/vote/     → Vote, then 302 to /{id}/results/
	GET  /{id}/results/  → Results

A missing or non-numeric choice re-renders the form with an error. A
repeat vote or a closed poll redirects to the results with a warning
flash. An unknown poll or a choice from another poll is a 404.

# Management API

Routes under /admin require a logged in staff user (401 anonymous, 403
non-staff). Responses carry an X-CSRF-Token header to send back on
POST and DELETE requests.
*/
package handlers
