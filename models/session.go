package models

import "time"

// Session associates a bearer token with a room participant. The token is
// opaque; the stable UserID is what keys swipe bookkeeping and the swipe
// cache, never the raw credential.
type Session struct {
	Token     string    `json:"token"`
	UserID    string    `json:"userId"`
	RoomID    string    `json:"roomId"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}

// IsExpired returns true if the session has expired.
func (s Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}
