package adr

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// DefaultDir is the conventional ADR directory relative to a project root.
const DefaultDir = "docs/adr"

// Store defines the persistence interface for ADR documents.
// Abstracted for testability (DIP). The lifecycle package is the only
// writer of status and relationship fields.
type Store interface {
	// Load reads one document by identifier.
	Load(id string) (*Document, error)
	// LoadAll reads every document in the store, sorted by identifier.
	LoadAll() ([]*Document, error)
	// Create persists a new document and returns its file path.
	Create(doc *Document) (string, error)
	// Save rewrites an existing document in place.
	Save(doc *Document) error
	// NextID allocates the next unused identifier.
	NextID() (string, error)
	// Root returns the directory the store operates on.
	Root() string
}

// FileStore implements Store over markdown files in a single directory,
// named ADR-NNNN-slug.md.
type FileStore struct {
	dir string
}

// NewFileStore creates a filesystem-backed ADR store rooted at dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Root returns the store directory.
func (fs *FileStore) Root() string { return fs.dir }

// adrFilePattern matches ADR filenames and captures the identifier.
var adrFilePattern = regexp.MustCompile(`^(ADR-\d{4})(?:-[A-Za-z0-9-]+)?\.md$`)

// Load reads one document by identifier.
func (fs *FileStore) Load(id string) (*Document, error) {
	path, err := fs.findFile(id)
	if err != nil {
		return nil, err
	}
	return fs.loadPath(path)
}

// LoadAll reads every ADR file in the store directory, sorted by
// identifier. Files that do not match the naming convention are ignored;
// files that match but fail to parse are an error — a broken record must
// not silently vanish from the contract.
func (fs *FileStore) LoadAll() ([]*Document, error) {
	entries, err := os.ReadDir(fs.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading ADR directory: %w", err)
	}

	var docs []*Document
	for _, entry := range entries {
		if entry.IsDir() || !adrFilePattern.MatchString(entry.Name()) {
			continue
		}
		doc, err := fs.loadPath(filepath.Join(fs.dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].ID() < docs[j].ID() })
	return docs, nil
}

// Create persists a new document under ADR-NNNN-slug.md. If the slug
// collides with an existing file, appends a numeric suffix (-2, -3, ...).
func (fs *FileStore) Create(doc *Document) (string, error) {
	if err := os.MkdirAll(fs.dir, 0o755); err != nil {
		return "", fmt.Errorf("creating ADR directory: %w", err)
	}

	if existing, _ := fs.findFile(doc.ID()); existing != "" {
		return "", fmt.Errorf("ADR %q already exists at %s", doc.ID(), existing)
	}

	base := doc.ID() + "-" + Slugify(doc.Title())
	path := filepath.Join(fs.dir, base+".md")
	suffix := 2
	for {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			break
		}
		path = filepath.Join(fs.dir, fmt.Sprintf("%s-%d.md", base, suffix))
		suffix++
	}

	if err := fs.write(path, doc); err != nil {
		return "", err
	}
	doc.Path = path
	return path, nil
}

// Save rewrites an existing document's file in place.
func (fs *FileStore) Save(doc *Document) error {
	path := doc.Path
	if path == "" {
		found, err := fs.findFile(doc.ID())
		if err != nil {
			return err
		}
		path = found
	}
	return fs.write(path, doc)
}

// NextID scans the store and allocates the next sequence number.
func (fs *FileStore) NextID() (string, error) {
	docs, err := fs.LoadAll()
	if err != nil {
		return "", err
	}
	max := 0
	for _, doc := range docs {
		n, err := ParseID(doc.ID())
		if err != nil {
			continue
		}
		if n > max {
			max = n
		}
	}
	return FormatID(max + 1), nil
}

func (fs *FileStore) loadPath(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	doc.Path = path
	return doc, nil
}

func (fs *FileStore) findFile(id string) (string, error) {
	if _, err := ParseID(id); err != nil {
		return "", err
	}
	entries, err := os.ReadDir(fs.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("ADR %q not found", id)
		}
		return "", fmt.Errorf("reading ADR directory: %w", err)
	}
	for _, entry := range entries {
		m := adrFilePattern.FindStringSubmatch(entry.Name())
		if m != nil && m[1] == id {
			return filepath.Join(fs.dir, entry.Name()), nil
		}
	}
	return "", fmt.Errorf("ADR %q not found", id)
}

func (fs *FileStore) write(path string, doc *Document) error {
	content, err := doc.Markdown()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// slugPattern strips everything that is not a letter, digit, or hyphen.
var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify converts a title into a lowercase hyphenated filename fragment.
func Slugify(title string) string {
	slug := slugPattern.ReplaceAllString(strings.ToLower(title), "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		return "untitled"
	}
	if len(slug) > 60 {
		slug = strings.Trim(slug[:60], "-")
	}
	return slug
}
