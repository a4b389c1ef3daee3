// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package voting decides whether a vote may be recorded and computes tallies.

# Identity

A voter is the logged in user when there is one, otherwise the source IP:

	id := voting.ResolveIdentity(sessions.CurrentUserID(r), middleware.GetClientIP(r))

The identity's Key ("user:<id>" or "ip:<addr>") is stored with each vote.

# Admission

CastVote refuses, in this order:

  - ErrPollNotFound: no such poll, or pub_date still in the future
  - ErrPollClosed: the poll was deactivated
  - ErrInvalidChoice: the choice is not one of the poll's
  - ErrAlreadyVoted: HasVoted found a prior vote

HasVoted looks for a vote by the user (if any) and then for any vote from
the IP. Concurrent attempts that pass that check are settled by the
UNIQUE (choice_id, identity_key) constraint; exactly one insert wins and
the rest report ErrAlreadyVoted.

The constraint covers a single choice. A user who somehow got past
HasVoted could still store a vote on a different choice of the same poll.

# Tallies

	tally, err := engine.Tally(ctx, questionID)

Counts every choice, including those with no votes. Percentages are
rounded to one decimal and are 0 when the poll has no votes.
*/
package voting
