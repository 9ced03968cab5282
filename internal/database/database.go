package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"hotelbook/internal/models"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

// DB wraps the sqlite connection and an in-memory room catalog. Rooms come
// from the configuration file, not from storage, so lookups never hit disk.
type DB struct {
	*sql.DB
	logger *zerolog.Logger

	mu          sync.RWMutex
	rooms       map[int64]models.Room
	sortedRooms []models.Room
}

func NewDB(path string, logger *zerolog.Logger) (*DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := createTables(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	logger.Info().Str("path", path).Msg("database initialized")
	return &DB{DB: db, logger: logger, rooms: make(map[int64]models.Room)}, nil
}

func createTables(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS bookings (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            user_id INTEGER NOT NULL,
            room_number INTEGER NOT NULL,
            start_date DATETIME NOT NULL,
            end_date DATETIME NOT NULL,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
        )`,
		`CREATE TABLE IF NOT EXISTS sync_queue (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            task_type TEXT NOT NULL,
            booking_id INTEGER NOT NULL,
            payload TEXT NOT NULL,
            status TEXT NOT NULL DEFAULT 'pending',
            retry_count INTEGER NOT NULL DEFAULT 0,
            last_error TEXT,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            processed_at DATETIME,
            next_retry_at DATETIME
        )`,

		`CREATE INDEX IF NOT EXISTS idx_bookings_room_number ON bookings(room_number)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_user_id ON bookings(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_start_date ON bookings(start_date)`,
		`CREATE INDEX IF NOT EXISTS idx_sync_queue_status ON sync_queue(status)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("error executing query %s: %w", query, err)
		}
	}
	return nil
}

// SetRooms replaces the cached room catalog.
func (db *DB) SetRooms(rooms []models.Room) {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.rooms = make(map[int64]models.Room, len(rooms))
	for _, room := range rooms {
		db.rooms[room.Number] = room
	}
	db.sortedRooms = rooms
}

// GetRooms returns the catalog in configured order.
func (db *DB) GetRooms() []models.Room {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return append([]models.Room(nil), db.sortedRooms...)
}

// GetRoomByNumber looks a room up in the cached catalog.
func (db *DB) GetRoomByNumber(number int64) (models.Room, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	room, ok := db.rooms[number]
	return room, ok
}

func (db *DB) Close() error {
	return db.DB.Close()
}
