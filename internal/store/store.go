// Package store persists published posts in SQLite. The recent-post
// history it serves doubles as the duplicate guard's backing across
// process restarts and as the repetition-avoidance context for the
// planner.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"purrple/internal/logging"

	_ "modernc.org/sqlite"
)

// Store wraps the SQLite database holding the post history.
type Store struct {
	db     *sql.DB
	mu     sync.RWMutex
	dbPath string

	// now is swappable for tests of day-boundary queries.
	now func() time.Time
}

// New initializes the SQLite database at the given path.
func New(path string) (*Store, error) {
	timer := logging.StartTimer(logging.CategoryStore, "store.New")
	defer timer.Stop()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		logging.StoreDebug("Failed to set sqlite busy_timeout: %v", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		logging.StoreDebug("Failed to set sqlite journal_mode=WAL: %v", err)
	}
	// synchronous=NORMAL is safe with WAL and much faster than FULL.
	if _, err := db.Exec("PRAGMA synchronous = NORMAL"); err != nil {
		logging.StoreDebug("Failed to set sqlite synchronous=NORMAL: %v", err)
	}

	s := &Store{db: db, dbPath: path, now: time.Now}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logging.Store("Post store ready at %s", path)
	return s, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS posts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		text TEXT NOT NULL,
		published_id TEXT NOT NULL,
		has_image INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_posts_created_at ON posts(created_at);
	CREATE TABLE IF NOT EXISTS state (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// SavePost persists a successfully published post.
func (s *Store) SavePost(ctx context.Context, text, publishedID string, hasImage bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	img := 0
	if hasImage {
		img = 1
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO posts (text, published_id, has_image, created_at) VALUES (?, ?, ?, ?)`,
		text, publishedID, img, s.now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save post: %w", err)
	}

	logging.StoreDebug("Saved post %s (image=%v)", publishedID, hasImage)
	return nil
}

// RecentPosts returns the text of the most recent posts, oldest first,
// bounded by limit.
func (s *Store) RecentPosts(ctx context.Context, limit int) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT text FROM (
			SELECT text, id FROM posts ORDER BY id DESC LIMIT ?
		) ORDER BY id ASC`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent posts: %w", err)
	}
	defer rows.Close()

	var posts []string
	for rows.Next() {
		var text string
		if err := rows.Scan(&text); err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, text)
	}
	return posts, rows.Err()
}

// PostsToday counts posts published since local midnight. Feeds the
// admission controller's daily-limit check.
func (s *Store) PostsToday() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM posts WHERE created_at >= ?`, midnight.UTC()).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count posts: %w", err)
	}
	return count, nil
}

// pauseKey is the state-table key holding the sticky pause reason.
// Present means paused; absent means not paused.
const pauseKey = "pause_reason"

// SavePause persists the sticky pause flag so it survives process
// restarts and is visible to the resume command.
func (s *Store) SavePause(paused bool, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	if paused {
		_, err = s.db.Exec(
			`INSERT INTO state (key, value) VALUES (?, ?)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
			pauseKey, reason)
	} else {
		_, err = s.db.Exec(`DELETE FROM state WHERE key = ?`, pauseKey)
	}
	if err != nil {
		return fmt.Errorf("failed to save pause state: %w", err)
	}
	return nil
}

// LoadPause reads the persisted pause flag.
func (s *Store) LoadPause() (bool, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var reason string
	err := s.db.QueryRow(`SELECT value FROM state WHERE key = ?`, pauseKey).Scan(&reason)
	if err == sql.ErrNoRows {
		return false, "", nil
	}
	if err != nil {
		return false, "", fmt.Errorf("failed to load pause state: %w", err)
	}
	return true, reason, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
