package match

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"reelpick/models"
)

// ErrRoomNotFound is returned for lookups of unknown or expired rooms.
var ErrRoomNotFound = errors.New("room not found")

const defaultRoomLifetime = 24 * time.Hour

// Store persists rooms, participants, and swipes in Postgres.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Migrate creates the matching tables when they do not exist yet.
func (s *Store) Migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS match_rooms (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			expires_at TIMESTAMPTZ,
			library_filter TEXT NOT NULL DEFAULT 'Movies',
			min_participants INTEGER NOT NULL DEFAULT 2
		)`,
		`CREATE TABLE IF NOT EXISTS room_users (
			room_id TEXT REFERENCES match_rooms(id) ON DELETE CASCADE,
			user_id TEXT,
			username TEXT,
			joined_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (room_id, user_id)
		)`,
		`CREATE TABLE IF NOT EXISTS movie_swipes (
			room_id TEXT REFERENCES match_rooms(id) ON DELETE CASCADE,
			user_id TEXT,
			movie_id TEXT,
			movie_title TEXT,
			movie_year INTEGER,
			swipe_direction TEXT CHECK (swipe_direction IN ('left', 'right', 'super')),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (room_id, user_id, movie_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_room_swipes ON movie_swipes(room_id, movie_id)`,
		`CREATE INDEX IF NOT EXISTS idx_user_swipes ON movie_swipes(room_id, user_id)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

func (s *Store) CreateRoom(ctx context.Context, name, libraryFilter string, minParticipants int) (models.Room, error) {
	if libraryFilter == "" {
		libraryFilter = "Movies"
	}
	if minParticipants < 2 {
		minParticipants = 2
	}
	room := models.Room{
		ID:              uuid.New().String(),
		Name:            name,
		LibraryFilter:   libraryFilter,
		MinParticipants: minParticipants,
		CreatedAt:       time.Now().UTC(),
		ExpiresAt:       time.Now().UTC().Add(defaultRoomLifetime),
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO match_rooms (id, name, created_at, expires_at, library_filter, min_participants)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		room.ID, room.Name, room.CreatedAt, room.ExpiresAt, room.LibraryFilter, room.MinParticipants)
	if err != nil {
		return models.Room{}, fmt.Errorf("create room: %w", err)
	}
	return room, nil
}

func (s *Store) GetRoom(ctx context.Context, roomID string) (models.Room, error) {
	var room models.Room
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, created_at, expires_at, library_filter, min_participants
		FROM match_rooms WHERE id=$1 AND expires_at > NOW()`, roomID,
	).Scan(&room.ID, &room.Name, &room.CreatedAt, &room.ExpiresAt,
		&room.LibraryFilter, &room.MinParticipants)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Room{}, ErrRoomNotFound
	}
	if err != nil {
		return models.Room{}, fmt.Errorf("get room: %w", err)
	}
	return room, nil
}

func (s *Store) ListRooms(ctx context.Context) ([]models.Room, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, created_at, expires_at, library_filter, min_participants
		FROM match_rooms WHERE expires_at > NOW() ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	defer rows.Close()

	var out []models.Room
	for rows.Next() {
		var room models.Room
		if err := rows.Scan(&room.ID, &room.Name, &room.CreatedAt, &room.ExpiresAt,
			&room.LibraryFilter, &room.MinParticipants); err != nil {
			return nil, err
		}
		out = append(out, room)
	}
	return out, rows.Err()
}

// JoinRoom registers the user in the room. Rejoining with the same user ID
// refreshes the username instead of failing.
func (s *Store) JoinRoom(ctx context.Context, roomID, userID, username string) error {
	if _, err := s.GetRoom(ctx, roomID); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO room_users (room_id, user_id, username)
		VALUES ($1, $2, $3)
		ON CONFLICT (room_id, user_id) DO UPDATE SET username=EXCLUDED.username`,
		roomID, userID, username)
	if err != nil {
		return fmt.Errorf("join room: %w", err)
	}
	return nil
}

func (s *Store) Participants(ctx context.Context, roomID string) ([]models.RoomUser, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT room_id, user_id, username, joined_at
		FROM room_users WHERE room_id=$1 ORDER BY joined_at`, roomID)
	if err != nil {
		return nil, fmt.Errorf("participants: %w", err)
	}
	defer rows.Close()

	var out []models.RoomUser
	for rows.Next() {
		var u models.RoomUser
		if err := rows.Scan(&u.RoomID, &u.UserID, &u.Username, &u.JoinedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// LibraryFilter returns the catalog library the room draws from.
func (s *Store) LibraryFilter(ctx context.Context, roomID string) (string, error) {
	room, err := s.GetRoom(ctx, roomID)
	if err != nil {
		return "", err
	}
	return room.LibraryFilter, nil
}

// RecordSwipe upserts the user's verdict on an item. A re-swipe replaces
// the previous direction, which lets a user promote a like to a super.
func (s *Store) RecordSwipe(ctx context.Context, swipe models.Swipe) error {
	if !models.ValidSwipeDirection(swipe.Direction) {
		return fmt.Errorf("invalid swipe direction %q", swipe.Direction)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO movie_swipes (room_id, user_id, movie_id, movie_title, movie_year, swipe_direction)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (room_id, user_id, movie_id)
		DO UPDATE SET swipe_direction=EXCLUDED.swipe_direction, created_at=NOW()`,
		swipe.RoomID, swipe.UserID, swipe.ItemID, swipe.Title, swipe.Year, swipe.Direction)
	if err != nil {
		return fmt.Errorf("record swipe: %w", err)
	}
	return nil
}

// RejectedItems returns the IDs the user swiped left on in the room.
func (s *Store) RejectedItems(ctx context.Context, roomID, userID string) (map[string]struct{}, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT movie_id FROM movie_swipes
		WHERE room_id=$1 AND user_id=$2 AND swipe_direction='left'`, roomID, userID)
	if err != nil {
		return nil, fmt.Errorf("rejected items: %w", err)
	}
	defer rows.Close()

	rejected := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		rejected[id] = struct{}{}
	}
	return rejected, rows.Err()
}

// Matches lists items liked (right or super) by at least the room's
// minimum participant count, most-liked first.
func (s *Store) Matches(ctx context.Context, roomID string) ([]models.Match, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT sw.movie_id, MAX(sw.movie_title), MAX(sw.movie_year), COUNT(DISTINCT sw.user_id) AS likes
		FROM movie_swipes sw
		JOIN match_rooms r ON r.id = sw.room_id
		WHERE sw.room_id=$1 AND sw.swipe_direction IN ('right', 'super')
		GROUP BY sw.movie_id, r.min_participants
		HAVING COUNT(DISTINCT sw.user_id) >= r.min_participants
		ORDER BY likes DESC, MAX(sw.movie_title)`, roomID)
	if err != nil {
		return nil, fmt.Errorf("matches: %w", err)
	}
	defer rows.Close()

	var out []models.Match
	for rows.Next() {
		var m models.Match
		if err := rows.Scan(&m.ItemID, &m.Title, &m.Year, &m.Likes); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// PruneExpired drops rooms past their expiry; swipes and memberships
// cascade with them.
func (s *Store) PruneExpired(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM match_rooms WHERE expires_at <= NOW()`)
	if err != nil {
		return 0, fmt.Errorf("prune rooms: %w", err)
	}
	return res.RowsAffected()
}
