// Package user defines the user domain entity and its entitlements
package user

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Tier is the user's subscription level
type Tier string

const (
	TierFree    Tier = "free"
	TierPremium Tier = "premium"
)

// ParseTier normalizes a stored tier name. Blank names are free; other names
// are kept so configured tiers resolve through the policy.
func ParseTier(s string) Tier {
	tier := Tier(strings.ToLower(strings.TrimSpace(s)))
	if tier == "" {
		return TierFree
	}
	return tier
}

// User represents a user in the system
type User struct {
	id        uuid.UUID
	email     string
	name      string
	tier      Tier
	createdAt time.Time
}

// NewUser creates a user on the given tier
func NewUser(id uuid.UUID, email, name string, tier Tier) *User {
	return &User{
		id:        id,
		email:     strings.ToLower(email),
		name:      name,
		tier:      tier,
		createdAt: time.Now().UTC(),
	}
}

// ID returns the user's ID
func (u *User) ID() uuid.UUID {
	return u.id
}

// Email returns the user's email
func (u *User) Email() string {
	return u.email
}

// Name returns the user's name
func (u *User) Name() string {
	return u.name
}

// Tier returns the user's subscription tier
func (u *User) Tier() Tier {
	return u.tier
}

// CreatedAt returns when the user was created
func (u *User) CreatedAt() time.Time {
	return u.createdAt
}

// Rehydrate rebuilds a user from persisted state
func Rehydrate(id uuid.UUID, email, name string, tier Tier, createdAt time.Time) *User {
	u := NewUser(id, email, name, tier)
	u.createdAt = createdAt
	return u
}
