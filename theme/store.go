// Package theme keeps named CSS themes and renders them for publishing in
// light or dark mode.
package theme

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/gosimple/slug"
	"github.com/maruel/natural"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	"wemd/dark"
	"wemd/vars"
)

var (
	ErrNotFound = errors.New("theme not found")
	ErrExists   = errors.New("theme already exists")
	ErrBuiltIn  = errors.New("built-in theme cannot be changed")
)

//go:embed themes/*.css
var builtinFS embed.FS

var builtins = []struct {
	file, name string
}{
	{"themes/default.css", "Default"},
	{"themes/ink.css", "Ink"},
}

// Theme is a named stylesheet.
type Theme struct {
	ID      string
	Name    string
	CSS     string
	BuiltIn bool
}

// Store holds themes and the user's custom CSS appended to every theme. Dark
// variants are cached per theme, every mutation of the store drops all
// cached dark CSS including the converter's own cache.
type Store struct {
	log       *zap.Logger
	expander  *vars.Expander
	converter *dark.Converter

	mu        sync.RWMutex
	themes    map[string]*Theme
	customCSS string
	darkCSS   map[string]string
}

// NewStore creates a store holding built-in themes.
func NewStore(converter *dark.Converter, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if converter == nil {
		converter = dark.NewConverter(nil, log)
	}
	s := &Store{
		log:       log.Named("themes"),
		expander:  vars.NewExpander(log),
		converter: converter,
		themes:    make(map[string]*Theme),
		darkCSS:   make(map[string]string),
	}
	for _, b := range builtins {
		data, err := builtinFS.ReadFile(b.file)
		if err != nil {
			return nil, fmt.Errorf("unable to read built-in theme %s: %w", b.file, err)
		}
		t, err := newTheme(b.name, string(data))
		if err != nil {
			return nil, err
		}
		t.BuiltIn = true
		s.themes[t.ID] = t
	}
	return s, nil
}

func normalizeName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

func newTheme(name, cssText string) (*Theme, error) {
	name = normalizeName(name)
	id := slug.Make(name)
	if id == "" {
		return nil, fmt.Errorf("unable to derive theme id from name %q", name)
	}
	return &Theme{ID: id, Name: name, CSS: cssText}, nil
}

// invalidate must be called with write lock held.
func (s *Store) invalidate(reason string) {
	clear(s.darkCSS)
	s.converter.ClearCache()
	s.log.Debug("Dark theme cache invalidated", zap.String("reason", reason))
}

// Add adds new user theme.
func (s *Store) Add(name, cssText string) (Theme, error) {
	t, err := newTheme(name, cssText)
	if err != nil {
		return Theme{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.themes[t.ID]; ok {
		return Theme{}, fmt.Errorf("%w: %s", ErrExists, t.ID)
	}
	s.themes[t.ID] = t
	s.invalidate("add")
	return *t, nil
}

// Update replaces stylesheet of a user theme.
func (s *Store) Update(id, cssText string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.userTheme(id)
	if err != nil {
		return err
	}
	t.CSS = cssText
	s.invalidate("update")
	return nil
}

// Rename changes name (and so the id) of a user theme.
func (s *Store) Rename(id, newName string) (Theme, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.userTheme(id)
	if err != nil {
		return Theme{}, err
	}
	renamed, err := newTheme(newName, t.CSS)
	if err != nil {
		return Theme{}, err
	}
	if other, ok := s.themes[renamed.ID]; ok && other != t {
		return Theme{}, fmt.Errorf("%w: %s", ErrExists, renamed.ID)
	}
	delete(s.themes, t.ID)
	s.themes[renamed.ID] = renamed
	s.invalidate("rename")
	return *renamed, nil
}

// Remove deletes a user theme.
func (s *Store) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.userTheme(id)
	if err != nil {
		return err
	}
	delete(s.themes, t.ID)
	s.invalidate("remove")
	return nil
}

func (s *Store) userTheme(id string) (*Theme, error) {
	t, ok := s.themes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if t.BuiltIn {
		return nil, fmt.Errorf("%w: %s", ErrBuiltIn, id)
	}
	return t, nil
}

// Get returns theme by id.
func (s *Store) Get(id string) (Theme, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.themes[id]
	if !ok {
		return Theme{}, false
	}
	return *t, true
}

// List returns all themes in natural name order, built-in themes first.
func (s *Store) List() []Theme {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]Theme, 0, len(s.themes))
	for _, t := range s.themes {
		list = append(list, *t)
	}
	slices.SortFunc(list, func(a, b Theme) int {
		switch {
		case a.BuiltIn != b.BuiltIn:
			if a.BuiltIn {
				return -1
			}
			return 1
		case natural.Less(a.Name, b.Name):
			return -1
		case natural.Less(b.Name, a.Name):
			return 1
		}
		return strings.Compare(a.ID, b.ID)
	})
	return list
}

// SetCustomCSS sets stylesheet appended to every theme.
func (s *Store) SetCustomCSS(cssText string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.customCSS == cssText {
		return
	}
	s.customCSS = cssText
	s.invalidate("custom css")
}

// CustomCSS returns current custom stylesheet.
func (s *Store) CustomCSS() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.customCSS
}

// Render returns publishable CSS of a theme combined with custom CSS: all
// custom properties expanded and, for dark mode, colors converted.
func (s *Store) Render(id string, mode Mode) (string, error) {
	s.mu.RLock()
	t, ok := s.themes[id]
	var cssText, custom string
	if ok {
		cssText, custom = t.CSS, s.customCSS
	}
	cached, hit := s.darkCSS[id]
	s.mu.RUnlock()

	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if mode == ModeDark && hit {
		s.log.Debug("Dark theme cache hit", zap.String("theme", id))
		return cached, nil
	}

	source := cssText
	if custom != "" {
		source += "\n" + custom
	}
	light := s.expander.Expand(source)
	if len(light.Unresolved) > 0 {
		s.log.Warn("Theme has unresolved variables", zap.String("theme", id), zap.Strings("names", light.Unresolved))
	}
	if mode != ModeDark {
		return light.Text, nil
	}

	out := s.converter.Convert(light.Text)

	s.mu.Lock()
	// the store may have changed while converting
	if cur, ok := s.themes[id]; ok && cur.CSS == cssText && s.customCSS == custom {
		s.darkCSS[id] = out
	}
	s.mu.Unlock()
	return out, nil
}

// LoadDir adds every *.css file in dir as a user theme named after the file.
// Files which cannot be loaded are skipped and reported together.
func (s *Store) LoadDir(dir string) (loaded int, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("unable to read theme directory: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".css") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, rerr := os.ReadFile(path)
		if rerr != nil {
			err = multierr.Append(err, fmt.Errorf("unable to read theme %s: %w", path, rerr))
			continue
		}
		name := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		if _, aerr := s.Add(name, string(data)); aerr != nil {
			err = multierr.Append(err, fmt.Errorf("unable to add theme %s: %w", path, aerr))
			continue
		}
		loaded++
	}
	s.log.Debug("Loaded themes", zap.String("dir", dir), zap.Int("count", loaded), zap.Int("errors", len(multierr.Errors(err))))
	return loaded, err
}
