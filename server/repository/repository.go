package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/samber/lo"

	"github.com/Shauryasoni262/BusinessOps-Suite-sub001/server/domain"
	"github.com/Shauryasoni262/BusinessOps-Suite-sub001/server/usecase"
)

const schema = `
CREATE TABLE IF NOT EXISTS messages (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	room        TEXT NOT NULL,
	sender_id   TEXT NOT NULL,
	sender_name TEXT NOT NULL,
	body        TEXT NOT NULL,
	created_at  TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_messages_room_id ON messages (room, id);
`

// Repository is the sqlite-backed message log. The AUTOINCREMENT id is the
// total order within a room; callers rely on it, not on arrival order.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) (usecase.MessageStore, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to migrate messages table: %w", err)
	}
	return &Repository{db: db}, nil
}

// Append durably records one message and returns it with the id and
// timestamp the store assigned.
func (r *Repository) Append(room, senderID, senderName, body string) (domain.Message, error) {
	createdAt := time.Now().UTC()
	query := "INSERT INTO messages (room, sender_id, sender_name, body, created_at) VALUES (?, ?, ?, ?, ?)"
	result, err := r.db.Exec(query, room, senderID, senderName, body, createdAt)
	if err != nil {
		return domain.Message{}, fmt.Errorf("failed to insert message for room %s: %w", room, err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return domain.Message{}, fmt.Errorf("failed to read message id for room %s: %w", room, err)
	}
	return domain.NewMessage(id, room, senderID, senderName, body, createdAt), nil
}

// Recent returns the most recent limit messages for a room, oldest-first.
func (r *Repository) Recent(room string, limit int) ([]domain.Message, error) {
	query := "SELECT id, sender_id, sender_name, body, created_at FROM messages WHERE room = ? ORDER BY id DESC LIMIT ?"
	rows, err := r.db.Query(query, room, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages for room %s: %w", room, err)
	}
	defer rows.Close()

	messages := []domain.Message{}
	for rows.Next() {
		var id int64
		var senderID, senderName, body string
		var createdAt time.Time
		if err := rows.Scan(&id, &senderID, &senderName, &body, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, domain.NewMessage(id, room, senderID, senderName, body, createdAt))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over messages for room %s: %w", room, err)
	}

	return lo.Reverse(messages), nil
}
