package server

import (
	"context"
	"errors"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrPartyNotFound = errors.New("party not found")
	ErrUsernameTaken = errors.New("username already exists")
	ErrAlreadyMember = errors.New("user is already in this party")
	ErrNotAMember    = errors.New("user is not in this party")
)

// Score is a user's cumulative answer tally.
type Score struct {
	Correct   int `json:"correct"`
	Incorrect int `json:"incorrect"`
}

// UserView is the caller-facing shape of a user record.
type UserView struct {
	UserID   string `json:"userID"`
	Username string `json:"username"`
	Score    Score  `json:"score"`
	PartyID  string `json:"partyID,omitempty"`
}

// PartyMember is one entry in a party view. Score is always resolved
// live from the user record, never from a copy on the membership.
type PartyMember struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Score    Score  `json:"score"`
	JoinedAt string `json:"joinedAt"`
}

// PartyView is the caller-facing shape of a party and its members.
type PartyView struct {
	ID        string        `json:"id"`
	CreatedBy string        `json:"createdBy"`
	CreatedAt string        `json:"createdAt"`
	Members   []PartyMember `json:"members"`
}

// LeaveResult reports the outcome of leaving a party. Deleted is set
// when the departing user was the last member and the party was
// garbage-collected.
type LeaveResult struct {
	Deleted bool
	Party   *PartyView
}

type Store interface {
	// RegisterUser creates a user. With an empty requestedPartyID a new
	// party is created with the user as sole member; otherwise the user
	// joins the requested party, or ErrPartyNotFound if it doesn't exist.
	RegisterUser(ctx context.Context, username, requestedPartyID string) (UserView, PartyView, error)

	GetUser(ctx context.Context, userID string) (UserView, error)

	// ApplyAnswer atomically increments the user's correct or incorrect
	// counter and touches last_active. Concurrent calls for the same user
	// never lose an increment.
	ApplyAnswer(ctx context.Context, userID string, correct bool) (UserView, error)

	GetParty(ctx context.Context, partyID string) (PartyView, error)

	// JoinParty adds the user to the party, removing them from any other
	// party first. Returns ErrAlreadyMember if they are already in it.
	JoinParty(ctx context.Context, partyID, userID string) (PartyView, error)

	// LeaveParty removes the user's membership; an emptied party is
	// deleted in the same transaction.
	LeaveParty(ctx context.Context, partyID, userID string) (LeaveResult, error)
}
