// Package store keeps issue records as markdown files in a single
// directory. The filename carries the issue number and title slug, so
// the number read from the filename is authoritative over whatever the
// front matter claims.
package store

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/natefinch/atomic"

	"haku/internal/models"
	"haku/internal/record"
)

// ErrNotFound is returned when no file in the directory carries the
// requested issue number.
var ErrNotFound = errors.New("issue not found")

const dirPerms = 0o755

// Entry pairs a decoded issue with the file it was read from.
type Entry struct {
	Issue    models.Issue
	Filename string
}

// Filter narrows List results.
type Filter struct {
	State models.IssueState // empty matches all states
	Query string            // case-insensitive substring over title and body
}

// Store manages the issues directory.
type Store struct {
	dir    string
	logger *slog.Logger
}

// New creates a store for the given directory. The directory is not
// created until Init or the first write.
func New(dir string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{dir: dir, logger: logger}
}

// Dir returns the issues directory path.
func (s *Store) Dir() string {
	return s.dir
}

// Initialized reports whether the issues directory exists.
func (s *Store) Initialized() bool {
	info, err := os.Stat(s.dir)
	return err == nil && info.IsDir()
}

// Init creates the issues directory.
func (s *Store) Init() error {
	return os.MkdirAll(s.dir, dirPerms)
}

// Entries returns every decodable issue ordered by number, pending
// records first, ties broken by filename. Files that are not issue
// records are ignored; issue files that fail to decode are skipped
// with a warning so one broken file never sinks a batch operation.
func (s *Store) Entries() ([]Entry, error) {
	files, err := os.ReadDir(s.dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(files))
	for _, file := range files {
		if file.IsDir() {
			continue
		}
		name := file.Name()
		number, _, ok := record.ParseFilename(name)
		if !ok {
			continue
		}

		data, err := os.ReadFile(filepath.Join(s.dir, name))
		if err != nil {
			return nil, err
		}
		issue, err := record.Decode(data)
		if errors.Is(err, record.ErrMalformed) {
			s.logger.Warn("skipping malformed issue file", "file", name, "error", err)
			continue
		}
		if err != nil {
			return nil, err
		}

		// The filename is the source of truth for the number.
		issue.Number = number
		entries = append(entries, Entry{Issue: issue, Filename: name})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Issue.Number != entries[j].Issue.Number {
			return entries[i].Issue.Number < entries[j].Issue.Number
		}
		return entries[i].Filename < entries[j].Filename
	})
	return entries, nil
}

// List returns issues matching the filter, ordered by number.
func (s *Store) List(filter Filter) ([]models.Issue, error) {
	entries, err := s.Entries()
	if err != nil {
		return nil, err
	}
	issues := make([]models.Issue, 0, len(entries))
	for _, entry := range entries {
		if !matches(entry.Issue, filter) {
			continue
		}
		issues = append(issues, entry.Issue)
	}
	return issues, nil
}

// Get returns the entry holding the given number. Several pending
// records share number zero; the first by filename wins.
func (s *Store) Get(number int) (Entry, error) {
	entries, err := s.Entries()
	if err != nil {
		return Entry{}, err
	}
	for _, entry := range entries {
		if entry.Issue.Number == number {
			return entry, nil
		}
	}
	return Entry{}, fmt.Errorf("issue #%d: %w", number, ErrNotFound)
}

// Create writes a new issue file. Pending issues get a numeric slug
// suffix when another pending record already uses the same slug.
// Confirmed numbers must not exist yet.
func (s *Store) Create(issue models.Issue) (Entry, error) {
	if err := issue.Validate(); err != nil {
		return Entry{}, err
	}

	if !issue.Pending() {
		if _, err := s.Get(issue.Number); err == nil {
			return Entry{}, fmt.Errorf("issue #%d already exists", issue.Number)
		} else if !errors.Is(err, ErrNotFound) {
			return Entry{}, err
		}
		return s.Put(issue)
	}

	slug := record.Slug(issue.Title)
	name := record.Filename(issue.Number, slug)
	for i := 2; s.exists(name); i++ {
		name = record.Filename(issue.Number, fmt.Sprintf("%s-%d", slug, i))
	}
	return s.write(issue, name)
}

// Put writes a confirmed issue at its canonical filename, creating or
// overwriting. Any file holding the same number under a different name
// is left alone; removing stale names is the caller's job.
func (s *Store) Put(issue models.Issue) (Entry, error) {
	if err := issue.Validate(); err != nil {
		return Entry{}, err
	}
	if issue.Pending() {
		return Entry{}, fmt.Errorf("pending issues must go through Create")
	}
	return s.write(issue, record.Filename(issue.Number, record.Slug(issue.Title)))
}

// Update rewrites an entry at the filename it was read from. Used for
// in-place state changes where the locator must not move.
func (s *Store) Update(entry Entry) error {
	_, err := s.write(entry.Issue, entry.Filename)
	return err
}

// Promote renames a pending record to its server-assigned number and
// rewrites the content. The rename happens first: if the content
// rewrite is interrupted, the filename already carries the
// authoritative number and a later read self-heals.
func (s *Store) Promote(oldFilename string, issue models.Issue) (Entry, error) {
	if issue.Pending() {
		return Entry{}, fmt.Errorf("promotion requires a confirmed number")
	}
	if err := issue.Validate(); err != nil {
		return Entry{}, err
	}

	newName := record.Filename(issue.Number, record.Slug(issue.Title))
	if newName != oldFilename {
		if err := os.Rename(filepath.Join(s.dir, oldFilename), filepath.Join(s.dir, newName)); err != nil {
			return Entry{}, err
		}
	}
	return s.write(issue, newName)
}

// Remove deletes the first file holding the given number and returns
// what was removed.
func (s *Store) Remove(number int) (Entry, error) {
	entry, err := s.Get(number)
	if err != nil {
		return Entry{}, err
	}
	if err := s.RemoveFile(entry.Filename); err != nil {
		return Entry{}, err
	}
	return entry, nil
}

// RemoveFile deletes a single record file. Missing files are ignored.
func (s *Store) RemoveFile(filename string) error {
	err := os.Remove(filepath.Join(s.dir, filename))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (s *Store) write(issue models.Issue, filename string) (Entry, error) {
	data, err := record.Encode(issue)
	if err != nil {
		return Entry{}, err
	}
	if err := os.MkdirAll(s.dir, dirPerms); err != nil {
		return Entry{}, err
	}
	if err := atomic.WriteFile(filepath.Join(s.dir, filename), bytes.NewReader(data)); err != nil {
		return Entry{}, err
	}
	return Entry{Issue: issue, Filename: filename}, nil
}

func (s *Store) exists(filename string) bool {
	_, err := os.Stat(filepath.Join(s.dir, filename))
	return err == nil
}

func matches(issue models.Issue, filter Filter) bool {
	if filter.State != "" && issue.State != filter.State {
		return false
	}
	if filter.Query != "" {
		query := strings.ToLower(filter.Query)
		if !strings.Contains(strings.ToLower(issue.Title), query) &&
			!strings.Contains(strings.ToLower(issue.Body), query) {
			return false
		}
	}
	return true
}
