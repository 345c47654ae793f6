// Package index records which report page shows a class, so that other
// pages can link to classes by their id.
package index

import (
	"database/sql"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/jupierce/coverage-compare/pkg/report/output"
)

// Index maps class ids to the root link of their page. The first page
// registered for an id wins.
type Index interface {
	AddClass(id uint64, rootLink string) error
	// LinkTo returns the link from base to the page of the class, if any.
	LinkTo(id uint64, base *output.Folder) (string, bool, error)
	Close() error
}

// Memory keeps the index in a map.
type Memory struct {
	mu    sync.RWMutex
	links map[uint64]string
}

// NewMemory creates an empty in-memory index.
func NewMemory() *Memory {
	return &Memory{links: map[uint64]string{}}
}

func (m *Memory) AddClass(id uint64, rootLink string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.links[id]; !ok {
		m.links[id] = rootLink
	}
	return nil
}

func (m *Memory) LinkTo(id uint64, base *output.Folder) (string, bool, error) {
	m.mu.RLock()
	link, ok := m.links[id]
	m.mu.RUnlock()
	if !ok {
		return "", false, nil
	}
	return base.Resolve(link), true, nil
}

func (m *Memory) Close() error {
	return nil
}

// SQLite keeps the index in a database file, for reports whose class count
// does not fit comfortably in memory.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens or creates the index database at path.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open index database: %w", err)
	}
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS class_pages (
			class_id  INTEGER PRIMARY KEY,
			root_link TEXT NOT NULL
		);
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create index schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

// AddClass stores the id as its two's complement since SQLite integers are
// signed.
func (s *SQLite) AddClass(id uint64, rootLink string) error {
	if _, err := s.db.Exec(
		"INSERT OR IGNORE INTO class_pages (class_id, root_link) VALUES (?, ?)",
		int64(id), rootLink,
	); err != nil {
		return fmt.Errorf("add class %016x: %w", id, err)
	}
	return nil
}

func (s *SQLite) LinkTo(id uint64, base *output.Folder) (string, bool, error) {
	var link string
	err := s.db.QueryRow("SELECT root_link FROM class_pages WHERE class_id = ?", int64(id)).Scan(&link)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("lookup class %016x: %w", id, err)
	}
	return base.Resolve(link), true, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
