package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"reelpick/api"
	"reelpick/models"
	"reelpick/services/match"
	"reelpick/services/sampler"
	"reelpick/services/sessions"
)

type matchStore interface {
	CreateRoom(ctx context.Context, name, libraryFilter string, minParticipants int) (models.Room, error)
	GetRoom(ctx context.Context, roomID string) (models.Room, error)
	ListRooms(ctx context.Context) ([]models.Room, error)
	JoinRoom(ctx context.Context, roomID, userID, username string) error
	Participants(ctx context.Context, roomID string) ([]models.RoomUser, error)
	RecordSwipe(ctx context.Context, swipe models.Swipe) error
	Matches(ctx context.Context, roomID string) ([]models.Match, error)
}

var _ matchStore = (*match.Store)(nil)

type swipeCache interface {
	GetOrRefresh(ctx context.Context, roomID, userID string) (map[string]struct{}, string, error)
	Invalidate(roomID, userID string)
}

type sessionIssuer interface {
	Create(userID, roomID, username string) (models.Session, error)
}

type RoomsHandler struct {
	Store    matchStore
	Cache    swipeCache
	Sampler  suggestSampler
	Catalog  suggestCatalog
	Enrich   enrichService
	Sessions sessionIssuer
	// MaxAttempts overrides the sampling budget for the swipe path; zero
	// means the sampler default. Kept lower than the suggestion path's:
	// swiping is latency sensitive.
	MaxAttempts int
}

func NewRoomsHandler(store matchStore, cache swipeCache, s suggestSampler, catalog suggestCatalog, enrich enrichService, sessionsSvc *sessions.Service) *RoomsHandler {
	return &RoomsHandler{
		Store:    store,
		Cache:    cache,
		Sampler:  s,
		Catalog:  catalog,
		Enrich:   enrich,
		Sessions: sessionsSvc,
	}
}

// Create makes a new match room.
func (h *RoomsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name            string `json:"name"`
		LibraryFilter   string `json:"library_filter"`
		MinParticipants int    `json:"min_participants"`
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(body.Name) == "" {
		writeError(w, http.StatusBadRequest, "room name required")
		return
	}

	room, err := h.Store.CreateRoom(r.Context(), body.Name, body.LibraryFilter, body.MinParticipants)
	if err != nil {
		log.Printf("[rooms] create failed name=%s err=%v", body.Name, err)
		writeError(w, http.StatusBadGateway, "room store unavailable, try again")
		return
	}
	writeJSON(w, http.StatusCreated, room)
}

// List returns all active rooms.
func (h *RoomsHandler) List(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.Store.ListRooms(r.Context())
	if err != nil {
		log.Printf("[rooms] list failed err=%v", err)
		writeError(w, http.StatusBadGateway, "room store unavailable, try again")
		return
	}
	if rooms == nil {
		rooms = []models.Room{}
	}
	writeJSON(w, http.StatusOK, rooms)
}

// Get returns one room with its participants.
func (h *RoomsHandler) Get(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["roomID"]

	room, err := h.Store.GetRoom(r.Context(), roomID)
	if errors.Is(err, match.ErrRoomNotFound) {
		writeError(w, http.StatusNotFound, "room not found")
		return
	}
	if err != nil {
		log.Printf("[rooms] get failed room=%s err=%v", roomID, err)
		writeError(w, http.StatusBadGateway, "room store unavailable, try again")
		return
	}

	participants, err := h.Store.Participants(r.Context(), roomID)
	if err != nil {
		log.Printf("[rooms] participants fetch failed room=%s err=%v", roomID, err)
		participants = nil
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"room":         room,
		"participants": participants,
	})
}

// Join registers a user in the room and issues a session token carrying a
// freshly minted stable user ID.
func (h *RoomsHandler) Join(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["roomID"]

	var body struct {
		Username string `json:"username"`
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(body.Username) == "" {
		writeError(w, http.StatusBadRequest, "username required")
		return
	}

	userID := uuid.New().String()
	err := h.Store.JoinRoom(r.Context(), roomID, userID, body.Username)
	if errors.Is(err, match.ErrRoomNotFound) {
		writeError(w, http.StatusNotFound, "room not found")
		return
	}
	if err != nil {
		log.Printf("[rooms] join failed room=%s err=%v", roomID, err)
		writeError(w, http.StatusBadGateway, "room store unavailable, try again")
		return
	}

	session, err := h.Sessions.Create(userID, roomID, body.Username)
	if err != nil {
		log.Printf("[rooms] session create failed room=%s err=%v", roomID, err)
		writeError(w, http.StatusInternalServerError, "session creation failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"room_id":  roomID,
		"user_id":  userID,
		"username": body.Username,
		"token":    session.Token,
	})
}

// Next returns the next enriched candidate for the authenticated user,
// skipping everything they already rejected.
func (h *RoomsHandler) Next(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["roomID"]
	userID := api.GetUserID(r)
	if api.GetRoomID(r) != roomID {
		writeError(w, http.StatusForbidden, "session is for a different room")
		return
	}

	rejected, library, err := h.Cache.GetOrRefresh(r.Context(), roomID, userID)
	if errors.Is(err, match.ErrRoomNotFound) {
		writeError(w, http.StatusNotFound, "room not found")
		return
	}
	if err != nil {
		log.Printf("[rooms] swipe state fetch failed room=%s user=%s err=%v", roomID, userID, err)
		writeError(w, http.StatusBadGateway, "room store unavailable, try again")
		return
	}

	item, err := h.Sampler.Sample(r.Context(), library, rejected, h.MaxAttempts)
	if errors.Is(err, sampler.ErrNoCandidates) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "empty"})
		return
	}
	if err != nil {
		log.Printf("[rooms] sample failed room=%s library=%s err=%v", roomID, library, err)
		writeError(w, http.StatusBadGateway, "media server unavailable, try again")
		return
	}

	details, err := h.Catalog.ItemDetails(r.Context(), item.ID)
	if err != nil {
		log.Printf("[rooms] details fetch failed id=%s err=%v", item.ID, err)
		details = item
	}

	enriched := h.Enrich.Enrich(r.Context(), details)
	writeJSON(w, http.StatusOK, enriched)
}

// Swipe records the authenticated user's verdict on an item and drops
// their cached swipe state so the next candidate reflects it.
func (h *RoomsHandler) Swipe(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["roomID"]
	userID := api.GetUserID(r)
	if api.GetRoomID(r) != roomID {
		writeError(w, http.StatusForbidden, "session is for a different room")
		return
	}

	var body struct {
		ItemID    string `json:"item_id"`
		Title     string `json:"title"`
		Year      int    `json:"year"`
		Direction string `json:"direction"`
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	// Validated before any store call.
	if body.ItemID == "" {
		writeError(w, http.StatusBadRequest, "item_id required")
		return
	}
	if !models.ValidSwipeDirection(body.Direction) {
		writeError(w, http.StatusBadRequest, "direction must be left, right, or super")
		return
	}

	err := h.Store.RecordSwipe(r.Context(), models.Swipe{
		RoomID:    roomID,
		UserID:    userID,
		ItemID:    body.ItemID,
		Title:     body.Title,
		Year:      body.Year,
		Direction: body.Direction,
	})
	if err != nil {
		log.Printf("[rooms] swipe record failed room=%s user=%s item=%s err=%v", roomID, userID, body.ItemID, err)
		writeError(w, http.StatusBadGateway, "room store unavailable, try again")
		return
	}

	h.Cache.Invalidate(roomID, userID)
	writeJSON(w, http.StatusOK, map[string]string{"status": "recorded"})
}

// Matches lists the items enough participants liked.
func (h *RoomsHandler) Matches(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["roomID"]

	matches, err := h.Store.Matches(r.Context(), roomID)
	if err != nil {
		log.Printf("[rooms] matches fetch failed room=%s err=%v", roomID, err)
		writeError(w, http.StatusBadGateway, "room store unavailable, try again")
		return
	}
	if matches == nil {
		matches = []models.Match{}
	}
	writeJSON(w, http.StatusOK, matches)
}
