package auth

import "net/http"

// ContextKey is the type used for context keys
type ContextKey string

const (
	// ContextKeyUserID is the key for the user ID in the context
	ContextKeyUserID ContextKey = "userID"
	// ContextKeyRoomID is the key for the room ID in the context
	ContextKeyRoomID ContextKey = "roomID"
	// ContextKeySession is the key for the session in the context
	ContextKeySession ContextKey = "session"
)

// GetUserID retrieves the authenticated user ID from the request context.
func GetUserID(r *http.Request) string {
	if id, ok := r.Context().Value(ContextKeyUserID).(string); ok {
		return id
	}
	return ""
}

// GetRoomID retrieves the session's room ID from the request context.
func GetRoomID(r *http.Request) string {
	if id, ok := r.Context().Value(ContextKeyRoomID).(string); ok {
		return id
	}
	return ""
}
