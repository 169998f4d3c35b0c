package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// User is a local account snapshot, created on first sighting of a contact email.
type User struct {
	id          string
	sequence    int
	email       string
	spotifyID   string
	profile     json.RawMessage
	retrievedAt time.Time
}

// NewUser creates a User for the given contact email.
func NewUser(sequence int, email string) *User {
	return &User{
		sequence:    sequence,
		email:       email,
		retrievedAt: time.Now().UTC(),
	}
}

func (u *User) ID() string               { return u.id }
func (u *User) Sequence() int            { return u.sequence }
func (u *User) Email() string            { return u.email }
func (u *User) SpotifyID() string        { return u.spotifyID }
func (u *User) Profile() json.RawMessage { return u.profile }
func (u *User) RetrievedAt() time.Time   { return u.retrievedAt }

func (u *User) SetID(id string)             { u.id = id }
func (u *User) SetSequence(seq int)         { u.sequence = seq }
func (u *User) SetRetrievedAt(ts time.Time) { u.retrievedAt = ts }

// SetProfile attaches the remote profile snapshot and the remote user identifier.
func (u *User) SetProfile(profile json.RawMessage, spotifyID string) {
	u.profile = profile
	u.spotifyID = spotifyID
}

// Validate checks that the user has a plausible contact email.
func (u *User) Validate() error {
	if u.email == "" {
		return fmt.Errorf("user email is required")
	}
	if !strings.Contains(u.email, "@") {
		return fmt.Errorf("invalid user email: %s", u.email)
	}
	return nil
}
