// Package notify owns the persistent notification queue and the periodic
// dispatcher draining it. Delivery channels live behind the Sender
// interface; only the queue semantics are in scope here.
package notify

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "modernc.org/sqlite"
)

// ErrAlreadyClaimed is returned when another dispatcher run got there first.
var ErrAlreadyClaimed = errors.New("notify: notification already claimed")

// QueuedNotification is one pending notification row.
type QueuedNotification struct {
	ID          int64     `json:"id"`
	UserID      string    `json:"userId"`
	ItemID      string    `json:"itemId"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	ScheduledAt time.Time `json:"scheduledAt"`
	ClaimedAt   time.Time `json:"claimedAt,omitempty"`
	SentAt      time.Time `json:"sentAt,omitempty"`
}

// Queue is the sqlite-backed notification queue. Overlapping scheduler runs
// coordinate through the claim pattern, never through process memory.
type Queue struct {
	sql *sql.DB
}

// OpenQueue opens (and if needed creates) the queue database.
func OpenQueue(path string) (*Queue, error) {
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS notification_queue (
  id           INTEGER PRIMARY KEY,
  user_id      TEXT NOT NULL,
  item_id      TEXT NOT NULL,
  title        TEXT NOT NULL,
  body         TEXT,
  scheduled_at DATETIME NOT NULL,
  claimed_at   DATETIME,
  sent_at      DATETIME,
  created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_queue_due ON notification_queue(scheduled_at) WHERE sent_at IS NULL;
CREATE INDEX IF NOT EXISTS idx_queue_user ON notification_queue(user_id);
	`); err != nil {
		return nil, err
	}
	return &Queue{sql: db}, nil
}

func (q *Queue) Close() error {
	if q == nil || q.sql == nil {
		return nil
	}
	return q.sql.Close()
}

// Enqueue inserts a notification for later delivery.
func (q *Queue) Enqueue(ctx context.Context, n QueuedNotification) (int64, error) {
	res, err := q.sql.ExecContext(ctx,
		`INSERT INTO notification_queue(user_id, item_id, title, body, scheduled_at) VALUES(?,?,?,?,?)`,
		n.UserID, n.ItemID, n.Title, n.Body, n.ScheduledAt.UTC().Format(time.RFC3339))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// FetchDue lists unsent, unclaimed notifications whose scheduled time has
// passed, oldest first.
func (q *Queue) FetchDue(ctx context.Context, now time.Time) ([]QueuedNotification, error) {
	rows, err := q.sql.QueryContext(ctx,
		`SELECT id, user_id, item_id, title, body, scheduled_at
		 FROM notification_queue
		 WHERE sent_at IS NULL AND claimed_at IS NULL AND scheduled_at <= ?
		 ORDER BY scheduled_at`,
		now.UTC().Format(time.RFC3339))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []QueuedNotification
	for rows.Next() {
		var n QueuedNotification
		var body sql.NullString
		var scheduledStr string
		if err := rows.Scan(&n.ID, &n.UserID, &n.ItemID, &n.Title, &body, &scheduledStr); err != nil {
			return nil, err
		}
		n.Body = body.String
		if t, perr := time.Parse(time.RFC3339, scheduledStr); perr == nil {
			n.ScheduledAt = t
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// Claim marks a notification as being processed. The conditional update
// guarantees at-most-once delivery: only the run whose UPDATE touched the
// row may send it.
func (q *Queue) Claim(ctx context.Context, id int64, now time.Time) error {
	res, err := q.sql.ExecContext(ctx,
		`UPDATE notification_queue SET claimed_at = ? WHERE id = ? AND claimed_at IS NULL AND sent_at IS NULL`,
		now.UTC().Format(time.RFC3339), id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrAlreadyClaimed
	}
	return nil
}

// MarkSent confirms delivery of a claimed notification.
func (q *Queue) MarkSent(ctx context.Context, id int64, now time.Time) error {
	_, err := q.sql.ExecContext(ctx,
		`UPDATE notification_queue SET sent_at = ? WHERE id = ?`,
		now.UTC().Format(time.RFC3339), id)
	return err
}

// ReleaseClaim rolls back a claim after a send failure so a later run can
// re-claim and retry the notification.
func (q *Queue) ReleaseClaim(ctx context.Context, id int64) error {
	_, err := q.sql.ExecContext(ctx,
		`UPDATE notification_queue SET claimed_at = NULL WHERE id = ? AND sent_at IS NULL`, id)
	return err
}

// PendingCount reports how many notifications are still unsent.
func (q *Queue) PendingCount(ctx context.Context) (int, error) {
	var count int
	err := q.sql.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notification_queue WHERE sent_at IS NULL`).Scan(&count)
	return count, err
}
