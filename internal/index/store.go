// Package index maintains the derived SQLite catalog and JSON index of
// the ADR set.
//
// It uses SQLite with FTS5 full-text search so tools can find related
// decisions by content, and writes an index.json snapshot for static
// site generators. Everything here is derived state: the store is
// rebuilt wholesale on every lifecycle transition and can always be
// deleted and regenerated from the ADR files.
package index

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/HendryAvila/decree/internal/adr"
	"github.com/HendryAvila/decree/internal/contract"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// Config holds the index store settings.
type Config struct {
	// DataDir is where index.db and index.json live.
	DataDir string
}

// DefaultConfig places the index under the ADR directory.
func DefaultConfig(adrDir string) Config {
	return Config{DataDir: filepath.Join(adrDir, ".decree")}
}

// Entry is one cataloged ADR.
type Entry struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Status       string   `json:"status"`
	Date         string   `json:"date"`
	Tags         []string `json:"tags,omitempty"`
	SupersededBy string   `json:"superseded_by,omitempty"`
	HasPolicy    bool     `json:"has_policy"`
	Path         string   `json:"path,omitempty"`
}

// SearchResult is an entry with its FTS5 rank.
type SearchResult struct {
	Entry
	Rank float64 `json:"rank"`
}

// exportFile is the serialized form of index.json.
type exportFile struct {
	GeneratedAt  string   `json:"generated_at"`
	ContractHash string   `json:"contract_hash"`
	Entries      []Entry  `json:"entries"`
	AcceptedADRs []string `json:"accepted_adrs"`
}

// Store is the SQLite-backed ADR catalog.
type Store struct {
	db  *sql.DB
	cfg Config
}

// New opens (or creates) the index database and runs migrations.
func New(cfg Config) (*Store, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("index: create data dir: %w", err)
	}

	db, err := openDB("sqlite", filepath.Join(cfg.DataDir, "index.db"))
	if err != nil {
		return nil, fmt.Errorf("index: open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return nil, fmt.Errorf("index: pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db, cfg: cfg}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("index: migration: %w", err)
	}
	return s, nil
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS adrs (
			id            TEXT PRIMARY KEY,
			title         TEXT NOT NULL,
			status        TEXT NOT NULL,
			date          TEXT NOT NULL,
			tags          TEXT NOT NULL DEFAULT '',
			superseded_by TEXT NOT NULL DEFAULT '',
			has_policy    INTEGER NOT NULL DEFAULT 0,
			path          TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE VIRTUAL TABLE IF NOT EXISTS adrs_fts USING fts5(
			id UNINDEXED,
			title,
			body
		)`,
		`CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Rebuild replaces the whole catalog from the current document set and
// writes the JSON index beside the database. Implements
// lifecycle.Indexer.
func (s *Store) Rebuild(docs []*adr.Document, c *contract.Contract) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("index: begin rebuild: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"adrs", "adrs_fts"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("index: clearing %s: %w", table, err)
		}
	}

	for _, doc := range docs {
		fm := doc.FrontMatter
		_, err := tx.Exec(
			`INSERT INTO adrs (id, title, status, date, tags, superseded_by, has_policy, path)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			fm.ID, fm.Title, string(fm.Status), fm.Date,
			strings.Join(fm.Tags, ","), fm.SupersededBy,
			boolInt(fm.Policy != nil), doc.Path,
		)
		if err != nil {
			return fmt.Errorf("index: inserting %s: %w", fm.ID, err)
		}
		if _, err := tx.Exec(
			`INSERT INTO adrs_fts (id, title, body) VALUES (?, ?, ?)`,
			fm.ID, fm.Title, doc.Body,
		); err != nil {
			return fmt.Errorf("index: indexing %s: %w", fm.ID, err)
		}
	}

	if _, err := tx.Exec(
		`INSERT INTO meta (key, value) VALUES ('contract_hash', ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		c.Hash,
	); err != nil {
		return fmt.Errorf("index: recording contract hash: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("index: commit rebuild: %w", err)
	}

	return s.exportJSON(docs, c)
}

// ContractHash returns the hash recorded at the last rebuild, empty if
// the index has never been built.
func (s *Store) ContractHash() (string, error) {
	var hash string
	err := s.db.QueryRow(`SELECT value FROM meta WHERE key = 'contract_hash'`).Scan(&hash)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("index: reading contract hash: %w", err)
	}
	return hash, nil
}

// List returns catalog entries, optionally filtered by status.
func (s *Store) List(status string) ([]Entry, error) {
	query := `SELECT id, title, status, date, tags, superseded_by, has_policy, path FROM adrs`
	var args []any
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY id`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("index: list: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var tags string
		if err := rows.Scan(&e.ID, &e.Title, &e.Status, &e.Date,
			&tags, &e.SupersededBy, &e.HasPolicy, &e.Path); err != nil {
			return nil, fmt.Errorf("index: scanning row: %w", err)
		}
		e.Tags = splitTags(tags)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Search runs an FTS5 query over titles and bodies, best match first.
func (s *Store) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.Query(
		`SELECT a.id, a.title, a.status, a.date, a.tags, a.superseded_by, a.has_policy, a.path, f.rank
		 FROM adrs_fts f
		 JOIN adrs a ON a.id = f.id
		 WHERE adrs_fts MATCH ?
		 ORDER BY f.rank
		 LIMIT ?`,
		sanitizeFTS(query), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []SearchResult
	for rows.Next() {
		var r SearchResult
		var tags string
		if err := rows.Scan(&r.ID, &r.Title, &r.Status, &r.Date,
			&tags, &r.SupersededBy, &r.HasPolicy, &r.Path, &r.Rank); err != nil {
			return nil, fmt.Errorf("index: scanning search row: %w", err)
		}
		r.Entry.Tags = splitTags(tags)
		results = append(results, r)
	}
	return results, rows.Err()
}

func (s *Store) exportJSON(docs []*adr.Document, c *contract.Contract) error {
	export := exportFile{
		GeneratedAt:  timeNow().UTC().Format("2006-01-02T15:04:05Z07:00"),
		ContractHash: c.Hash,
		AcceptedADRs: c.AcceptedADRs,
	}
	for _, doc := range docs {
		fm := doc.FrontMatter
		export.Entries = append(export.Entries, Entry{
			ID:           fm.ID,
			Title:        fm.Title,
			Status:       string(fm.Status),
			Date:         fm.Date,
			Tags:         fm.Tags,
			SupersededBy: fm.SupersededBy,
			HasPolicy:    fm.Policy != nil,
			Path:         doc.Path,
		})
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("index: encoding index.json: %w", err)
	}
	path := filepath.Join(s.cfg.DataDir, "index.json")
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("index: writing index.json: %w", err)
	}
	return nil
}

// sanitizeFTS wraps each word in quotes for safe FTS5 queries.
func sanitizeFTS(query string) string {
	words := strings.Fields(query)
	for i, w := range words {
		words[i] = `"` + strings.ReplaceAll(w, `"`, ``) + `"`
	}
	return strings.Join(words, " ")
}

func splitTags(csv string) []string {
	if csv == "" {
		return nil
	}
	return strings.Split(csv, ",")
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
