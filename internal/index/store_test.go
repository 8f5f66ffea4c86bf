package index

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/HendryAvila/decree/internal/adr"
	"github.com/HendryAvila/decree/internal/contract"
)

func init() {
	// Freeze time for deterministic tests.
	timeNow = func() time.Time {
		return time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	}
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(Config{DataDir: t.TempDir()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func indexDoc(id, title, status, body string) *adr.Document {
	return &adr.Document{
		FrontMatter: adr.FrontMatter{
			ID:     id,
			Title:  title,
			Status: adr.Status(status),
			Date:   "2026-03-14",
			Tags:   []string{"backend"},
		},
		Body: body,
	}
}

func rebuilt(t *testing.T, s *Store, docs ...*adr.Document) *contract.Contract {
	t.Helper()
	c, err := contract.Build(docs)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if err := s.Rebuild(docs, c); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	return c
}

func TestRebuildAndList(t *testing.T) {
	s := newTestStore(t)
	rebuilt(t, s,
		indexDoc("ADR-0001", "Use PostgreSQL", "accepted", "## Decision\n\nPostgreSQL it is.\n"),
		indexDoc("ADR-0002", "Ban moment", "proposed", "## Decision\n\nReplace moment with date-fns.\n"),
	)

	entries, err := s.List("")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("List returned %d entries, want 2", len(entries))
	}
	if entries[0].ID != "ADR-0001" || entries[1].ID != "ADR-0002" {
		t.Errorf("order = %s, %s", entries[0].ID, entries[1].ID)
	}
	if entries[0].Tags[0] != "backend" {
		t.Errorf("Tags = %v", entries[0].Tags)
	}

	accepted, err := s.List("accepted")
	if err != nil {
		t.Fatalf("List(accepted): %v", err)
	}
	if len(accepted) != 1 || accepted[0].ID != "ADR-0001" {
		t.Errorf("List(accepted) = %v", accepted)
	}
}

func TestRebuild_ReplacesPreviousCatalog(t *testing.T) {
	s := newTestStore(t)
	rebuilt(t, s, indexDoc("ADR-0001", "First", "accepted", "body"))
	rebuilt(t, s, indexDoc("ADR-0002", "Second", "accepted", "body"))

	entries, err := s.List("")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 1 || entries[0].ID != "ADR-0002" {
		t.Errorf("stale entries survived: %v", entries)
	}
}

func TestSearch(t *testing.T) {
	s := newTestStore(t)
	rebuilt(t, s,
		indexDoc("ADR-0001", "Use PostgreSQL", "accepted", "## Decision\n\nWe standardize on PostgreSQL for storage.\n"),
		indexDoc("ADR-0002", "Frontend framework", "accepted", "## Decision\n\nReact with TypeScript.\n"),
	)

	results, err := s.Search("postgresql storage", 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].ID != "ADR-0001" {
		t.Fatalf("Search = %v", results)
	}

	// Quoting keeps operator characters inert.
	if _, err := s.Search(`postgres" OR 1=1`, 5); err != nil {
		t.Errorf("Search with quote characters: %v", err)
	}

	none, err := s.Search("kubernetes", 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("unexpected results: %v", none)
	}
}

func TestContractHash(t *testing.T) {
	s := newTestStore(t)

	hash, err := s.ContractHash()
	if err != nil {
		t.Fatalf("ContractHash: %v", err)
	}
	if hash != "" {
		t.Errorf("hash before rebuild = %q, want empty", hash)
	}

	c := rebuilt(t, s, indexDoc("ADR-0001", "T", "accepted", "body"))
	hash, err = s.ContractHash()
	if err != nil {
		t.Fatalf("ContractHash: %v", err)
	}
	if hash != c.Hash {
		t.Errorf("hash = %q, want %q", hash, c.Hash)
	}
}

func TestRebuild_WritesJSONExport(t *testing.T) {
	s := newTestStore(t)
	c := rebuilt(t, s, indexDoc("ADR-0001", "Use PostgreSQL", "accepted", "body"))

	data, err := os.ReadFile(filepath.Join(s.cfg.DataDir, "index.json"))
	if err != nil {
		t.Fatalf("reading index.json: %v", err)
	}

	var export exportFile
	if err := json.Unmarshal(data, &export); err != nil {
		t.Fatalf("decoding index.json: %v", err)
	}
	if export.ContractHash != c.Hash {
		t.Errorf("ContractHash = %q, want %q", export.ContractHash, c.Hash)
	}
	if export.GeneratedAt != "2026-03-14T12:00:00Z" {
		t.Errorf("GeneratedAt = %q", export.GeneratedAt)
	}
	if len(export.Entries) != 1 || export.Entries[0].ID != "ADR-0001" {
		t.Errorf("Entries = %v", export.Entries)
	}
}

func TestSanitizeFTS(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"postgres storage", `"postgres" "storage"`},
		{`drop "table"`, `"drop" "table"`},
		{"", ""},
	}
	for _, tt := range tests {
		if got := sanitizeFTS(tt.input); got != tt.want {
			t.Errorf("sanitizeFTS(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
