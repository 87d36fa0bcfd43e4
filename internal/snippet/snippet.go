package snippet

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/gorewood/rustme/internal/logfields"
	"github.com/gorewood/rustme/internal/scan"
)

// Marker phrases recognised inside source files.
const (
	StartMarker = "begin rustme snippet:"
	EndMarker   = "end rustme snippet"
)

var (
	// ErrNotFound matches every *NotFoundError.
	ErrNotFound = errors.New("snippet not found")
	// ErrAlreadyDefined matches every *DuplicateError.
	ErrAlreadyDefined = errors.New("snippet already defined")
	// ErrMalformedSnippet is returned for an end marker with no open region.
	ErrMalformedSnippet = errors.New("a mismatch of snippet begins and ends")
)

// NotFoundError reports a reference that resolves to no file or region.
type NotFoundError struct {
	Reference string
}

func (e *NotFoundError) Error() string {
	return "snippet not found: " + e.Reference
}

// Is makes errors.Is(err, ErrNotFound) hold.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// DuplicateError reports a region name used twice in one file.
type DuplicateError struct {
	Name string
	Path string
}

func (e *DuplicateError) Error() string {
	return "snippet already defined: " + e.Name + " (" + e.Path + ")"
}

// Is makes errors.Is(err, ErrAlreadyDefined) hold.
func (e *DuplicateError) Is(target error) bool {
	return target == ErrAlreadyDefined
}

// Region is one named, stripped region of a source file.
type Region struct {
	Name string
	Text string
	// Line is the 1-based line number of the start marker.
	Line int
}

// Parse scans contents for marker pairs and returns the regions in file order.
// path is used only for diagnostics. A start marker seen while a region is
// already open replaces that region; the discarded lines are logged.
func Parse(path, contents string, logger *slog.Logger) ([]Region, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var (
		regions []Region
		seen    = make(map[string]bool)
		open    bool
		current Region
		lines   []string
		lineNo  int
	)

	s := scan.New(contents)
	for !s.Done() {
		line, err := s.ReadLine()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		lineNo++
		line = strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r")

		if idx := strings.Index(line, StartMarker); idx >= 0 {
			name := regionName(line[idx+len(StartMarker):])
			if open {
				logger.Warn("snippet started before previous one ended; discarding previous",
					logfields.Source(path), slog.String("previous", current.Name), logfields.Snippet(name),
					slog.Int("line", lineNo))
			}
			open = true
			current = Region{Name: name, Line: lineNo}
			lines = nil
			continue
		}

		if strings.Contains(line, EndMarker) {
			if !open {
				return nil, fmt.Errorf("%s:%d: %w", path, lineNo, ErrMalformedSnippet)
			}
			if seen[current.Name] {
				return nil, &DuplicateError{Name: current.Name, Path: path}
			}
			seen[current.Name] = true
			current.Text = strings.Join(StripSharedPrefix(lines), "\n")
			regions = append(regions, current)
			open = false
			continue
		}

		if open {
			lines = append(lines, line)
		}
	}

	if open {
		logger.Warn("snippet never ended; ignoring it",
			logfields.Source(path), logfields.Snippet(current.Name), slog.Int("line", current.Line))
	}

	return regions, nil
}

// regionName returns the first whitespace-delimited token after the marker.
func regionName(rest string) string {
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// StripSharedPrefix removes the leading columns every line has in common.
// A shared ASCII whitespace byte is removed one column at a time. A shared
// comment leader (# / ; %) is removed together with the whitespace byte after
// it, and only when the region has two or more lines and every line has that
// leader followed by whitespace, so "# foo" loses its marker while
// "#[derive]", "## Usage" and "/// docs" are kept. Stripping stops at an
// empty line or the first column the lines disagree on.
// The slice is modified in place and returned.
func StripSharedPrefix(lines []string) []string {
	for {
		c, ok := sharedFirstByte(lines)
		if !ok {
			return lines
		}
		var width int
		switch {
		case isSpace(c):
			width = 1
		case isLeader(c) && len(lines) > 1 && leaderFollowedBySpace(lines):
			width = 2
		default:
			return lines
		}
		for i := range lines {
			lines[i] = lines[i][width:]
		}
	}
}

func sharedFirstByte(lines []string) (byte, bool) {
	if len(lines) == 0 || lines[0] == "" {
		return 0, false
	}
	first := lines[0][0]
	for _, line := range lines[1:] {
		if line == "" || line[0] != first {
			return 0, false
		}
	}
	return first, true
}

func leaderFollowedBySpace(lines []string) bool {
	for _, line := range lines {
		if len(line) < 2 || !isSpace(line[1]) {
			return false
		}
	}
	return true
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\f', '\r':
		return true
	}
	return false
}

func isLeader(c byte) bool {
	switch c {
	case '#', '/', ';', '%':
		return true
	}
	return false
}

// Store memoizes the regions of every source file it has loaded.
// It is not safe for concurrent use.
type Store struct {
	entries  map[string]string
	loaded   map[string]bool
	readFile func(string) ([]byte, error)
	logger   *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for marker warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithReadFile replaces os.ReadFile, mainly for tests.
func WithReadFile(fn func(string) ([]byte, error)) Option {
	return func(s *Store) {
		if fn != nil {
			s.readFile = fn
		}
	}
}

// NewStore returns an empty Store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		entries:  make(map[string]string),
		loaded:   make(map[string]bool),
		readFile: os.ReadFile,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load resolves reference against baseDir. The text before the first colon
// names the file; the full reference selects either the whole file or one of
// its regions. The file is read only the first time any of its references is
// requested.
func (s *Store) Load(reference, baseDir string) (string, error) {
	path, _, _ := strings.Cut(reference, ":")

	diskPath, err := filepath.Abs(filepath.Join(baseDir, path))
	if err != nil {
		return "", fmt.Errorf("resolving snippet path %s: %w", path, err)
	}

	if !s.loaded[diskPath] {
		if err := s.loadFile(reference, diskPath); err != nil {
			return "", err
		}
	}

	if text, ok := s.entries[diskPath+reference[len(path):]]; ok {
		return text, nil
	}
	return "", &NotFoundError{Reference: reference}
}

// Files returns the number of source files loaded so far.
func (s *Store) Files() int {
	return len(s.loaded)
}

// Len returns the number of stored entries, whole files included.
func (s *Store) Len() int {
	return len(s.entries)
}

func (s *Store) loadFile(reference, diskPath string) error {
	data, err := s.readFile(diskPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &NotFoundError{Reference: reference}
		}
		return fmt.Errorf("reading snippet source %s: %w", diskPath, err)
	}
	if !utf8.Valid(data) {
		return fmt.Errorf("%s: %w", diskPath, scan.ErrInvalidUTF8)
	}
	contents := string(data)

	regions, err := Parse(diskPath, contents, s.logger)
	if err != nil {
		return err
	}
	for _, region := range regions {
		s.entries[diskPath+":"+region.Name] = region.Text
	}
	s.entries[diskPath] = contents
	s.loaded[diskPath] = true

	s.logger.Debug("loaded snippet source", logfields.Source(diskPath), slog.Int("regions", len(regions)))
	return nil
}
