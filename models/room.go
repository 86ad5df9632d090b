package models

import "time"

// Swipe directions accepted by the bookkeeping store.
const (
	SwipeLeft  = "left"
	SwipeRight = "right"
	SwipeSuper = "super"
)

// ValidSwipeDirection reports whether d is one of the accepted directions.
// Checked before any network call is made.
func ValidSwipeDirection(d string) bool {
	switch d {
	case SwipeLeft, SwipeRight, SwipeSuper:
		return true
	}
	return false
}

// Room is a matching room. Participants swipe on candidates drawn from the
// room's library filter until enough of them agree on an item.
type Room struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	LibraryFilter   string    `json:"libraryFilter"`
	MinParticipants int       `json:"minParticipants"`
	CreatedAt       time.Time `json:"createdAt"`
	ExpiresAt       time.Time `json:"expiresAt,omitempty"`
}

// RoomUser is a participant in a room.
type RoomUser struct {
	RoomID   string    `json:"roomId"`
	UserID   string    `json:"userId"`
	Username string    `json:"username"`
	JoinedAt time.Time `json:"joinedAt"`
}

// Swipe records one user's verdict on one item within a room.
type Swipe struct {
	RoomID    string    `json:"roomId"`
	UserID    string    `json:"userId"`
	ItemID    string    `json:"itemId"`
	Title     string    `json:"title"`
	Year      int       `json:"year,omitempty"`
	Direction string    `json:"direction"`
	CreatedAt time.Time `json:"createdAt"`
}

// Match is an item every required participant liked.
type Match struct {
	ItemID string `json:"itemId"`
	Title  string `json:"title"`
	Year   int    `json:"year,omitempty"`
	Likes  int    `json:"likes"`
}
