package model

import "time"

// Account represents a player account managed through the back office.
type Account struct {
	Name         string
	PasswordHash string
	Coins        int64
	Banned       bool
	CreatedAt    time.Time
}

// Character is a read-only projection of a game character, listed per
// account in the back office. Characters are owned by the game server;
// the back office never mutates them beyond soft-delete restore.
type Character struct {
	ID          int64
	AccountName string
	Name        string
	Level       int32
	Class       string
	Deleted     bool
}

// BenefitGrant attaches one catalog benefit to an account. A nil
// ExpiresAt means the benefit never expires.
type BenefitGrant struct {
	AccountName string
	BenefitID   int32
	ExpiresAt   *time.Time
}
