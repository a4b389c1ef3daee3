// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes.

# Route Registration

	handler := router.NewRouter(db, cfg)

The returned handler recovers from panics and checks CSRF tokens on
unsafe methods. Form posts carry the token in the csrf_token field;
API clients send the X-CSRF-Token header.

# Endpoints

Health:

	GET /health

Pages:

	GET  /                      - Open polls, 5 per page (?page=)
	GET  /list/                 - Same as /
	GET  /about/                - About page
	GET  /{id}/                 - Voting form
	POST /{id}/vote/            - Cast a vote
	GET  /{id}/results/         - Results
	GET  /{id}/live-results/    - Results as JSON

Accounts:

	GET  /accounts/login/
	POST /accounts/login/
	POST /accounts/logout/

Management (staff only):

	GET    /admin/polls              - List (?q=, ?active=, ?page=)
	POST   /admin/polls              - Create with choices
	GET    /admin/polls/{id}         - Detail with vote counts
	POST   /admin/polls/{id}/active  - Open or close
	GET    /admin/polls/{id}/votes   - Votes cast
	DELETE /admin/votes/{id}         - Remove a vote
*/
package router
