package reference

import (
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/fsnotify.v1"
	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned when a named reference set is not registered.
var ErrNotFound = errors.New("reference set not found")

//go:embed builtin/*.yaml
var builtinFS embed.FS

// Registry holds reference sets by name and can hot-reload them from a
// directory of YAML files.
type Registry struct {
	mu       sync.RWMutex
	sets     map[string]*Set
	files    map[string]string // file path -> set name
	builtins map[string]bool   // names registered by LoadBuiltin
	dir      string
	watcher  *fsnotify.Watcher
	stopChan chan struct{}
	onChange func(event string, set *Set)
	logger   *slog.Logger
}

// NewRegistry creates an empty registry. A nil logger uses slog.Default().
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		sets:     make(map[string]*Set),
		files:    make(map[string]string),
		builtins: make(map[string]bool),
		logger:   logger,
	}
}

// NewRegistryWithDirectory creates a registry holding the built-in sets and
// every set found in dir.
func NewRegistryWithDirectory(dir string, logger *slog.Logger) (*Registry, error) {
	r := NewRegistry(logger)
	if err := r.LoadBuiltin(); err != nil {
		return nil, err
	}
	if dir == "" {
		return r, nil
	}
	if err := r.LoadDirectory(dir); err != nil {
		return nil, err
	}
	return r, nil
}

// Register validates, compiles and stores set, replacing any set with the
// same name.
func (r *Registry) Register(set *Set) error {
	if set == nil {
		return fmt.Errorf("reference set cannot be nil")
	}
	if err := set.Validate(); err != nil {
		return fmt.Errorf("invalid reference set: %w", err)
	}
	if !set.IsCompiled() {
		if err := set.Compile(); err != nil {
			return fmt.Errorf("compiling reference set: %w", err)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sets[set.Name] = set
	return nil
}

// Unregister removes the named set.
func (r *Registry) Unregister(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sets[name]; !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	delete(r.sets, name)
	return nil
}

// Get returns the named set.
func (r *Registry) Get(name string) (*Set, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set, ok := r.sets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return set, nil
}

// List returns all registered sets sorted by name.
func (r *Registry) List() []*Set {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sets := make([]*Set, 0, len(r.sets))
	for _, s := range r.sets {
		sets = append(sets, s)
	}
	sort.Slice(sets, func(i, j int) bool { return sets[i].Name < sets[j].Name })
	return sets
}

// Count returns the number of registered sets.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sets)
}

// LoadBuiltin registers the reference sets shipped with the binary.
func (r *Registry) LoadBuiltin() error {
	entries, err := builtinFS.ReadDir("builtin")
	if err != nil {
		return fmt.Errorf("reading built-in sets: %w", err)
	}
	for _, entry := range entries {
		data, err := builtinFS.ReadFile("builtin/" + entry.Name())
		if err != nil {
			return fmt.Errorf("reading built-in set %s: %w", entry.Name(), err)
		}
		set, err := Parse(data)
		if err != nil {
			return fmt.Errorf("built-in set %s: %w", entry.Name(), err)
		}
		if err := r.Register(set); err != nil {
			return fmt.Errorf("built-in set %s: %w", entry.Name(), err)
		}
		r.mu.Lock()
		r.builtins[set.Name] = true
		r.mu.Unlock()
	}
	return nil
}

// LoadDirectory loads every YAML file in dir. A missing directory is not an
// error.
func (r *Registry) LoadDirectory(dir string) error {
	r.dir = dir

	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("checking directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading directory %s: %w", dir, err)
	}

	var loadErrors []string
	for _, entry := range entries {
		if entry.IsDir() || !isYAML(entry.Name()) {
			continue
		}
		if err := r.LoadFile(filepath.Join(dir, entry.Name())); err != nil {
			loadErrors = append(loadErrors, fmt.Sprintf("%s: %v", entry.Name(), err))
		}
	}

	if len(loadErrors) > 0 {
		return fmt.Errorf("errors loading reference sets: %s", strings.Join(loadErrors, "; "))
	}
	return nil
}

// LoadFile loads and registers a single YAML reference set.
func (r *Registry) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading file: %w", err)
	}

	set, err := Parse(data)
	if err != nil {
		return err
	}
	if err := r.Register(set); err != nil {
		return fmt.Errorf("registering reference set: %w", err)
	}

	r.mu.Lock()
	r.files[path] = set.Name
	r.mu.Unlock()
	return nil
}

// Parse decodes a YAML reference set.
func Parse(data []byte) (*Set, error) {
	var set Set
	if err := yaml.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}
	return &set, nil
}

// Reload drops every set and loads the built-in sets and the configured
// directory again.
func (r *Registry) Reload() error {
	if r.dir == "" {
		return fmt.Errorf("no directory configured for reload")
	}

	r.mu.Lock()
	r.sets = make(map[string]*Set)
	r.files = make(map[string]string)
	r.builtins = make(map[string]bool)
	r.mu.Unlock()

	if err := r.LoadBuiltin(); err != nil {
		return err
	}
	return r.LoadDirectory(r.dir)
}

// SetOnChange registers a callback run after a watched file changes.
func (r *Registry) SetOnChange(fn func(event string, set *Set)) {
	r.onChange = fn
}

// Watch starts watching the configured directory for changed YAML files.
func (r *Registry) Watch() error {
	if r.dir == "" {
		return fmt.Errorf("no directory configured for watching")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	if err := watcher.Add(r.dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watching directory %s: %w", r.dir, err)
	}

	r.watcher = watcher
	r.stopChan = make(chan struct{})
	go r.watchLoop(watcher, r.stopChan)
	return nil
}

func (r *Registry) watchLoop(watcher *fsnotify.Watcher, stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !isYAML(event.Name) {
				continue
			}

			switch {
			case event.Op&fsnotify.Create == fsnotify.Create:
				r.handleFileChange(event.Name, "create")
			case event.Op&fsnotify.Write == fsnotify.Write:
				r.handleFileChange(event.Name, "modify")
			case event.Op&fsnotify.Remove == fsnotify.Remove, event.Op&fsnotify.Rename == fsnotify.Rename:
				r.handleFileRemove(event.Name)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			r.logger.Warn("reference watcher error", "dir", r.dir, "error", err)
		}
	}
}

func (r *Registry) handleFileChange(path, eventType string) {
	if err := r.LoadFile(path); err != nil {
		r.logger.Warn("reloading reference set failed", "file", path, "error", err)
		return
	}
	r.logger.Info("reference set reloaded", "file", path, "event", eventType)

	if r.onChange == nil {
		return
	}
	r.mu.RLock()
	name := r.files[path]
	set := r.sets[name]
	r.mu.RUnlock()
	if set != nil {
		r.onChange(eventType, set)
	}
}

// handleFileRemove drops the set loaded from path. A built-in set that the
// file overrode is registered again.
func (r *Registry) handleFileRemove(path string) {
	r.mu.Lock()
	name, ok := r.files[path]
	if ok {
		delete(r.files, path)
		delete(r.sets, name)
	}
	builtin := r.builtins[name]
	r.mu.Unlock()

	if !ok {
		return
	}
	r.logger.Info("reference set removed", "file", path, "set", name)

	var restored *Set
	if builtin {
		set, err := Builtin(name)
		if err != nil {
			r.logger.Warn("restoring built-in set failed", "set", name, "error", err)
		} else if err := r.Register(set); err != nil {
			r.logger.Warn("restoring built-in set failed", "set", name, "error", err)
		} else {
			restored = set
			r.logger.Info("built-in reference set restored", "set", name)
		}
	}

	if r.onChange != nil {
		r.onChange("remove", restored)
	}
}

// StopWatch stops watching the directory.
func (r *Registry) StopWatch() {
	if r.stopChan != nil {
		close(r.stopChan)
		r.stopChan = nil
	}
	if r.watcher != nil {
		r.watcher.Close()
		r.watcher = nil
	}
}

func isYAML(name string) bool {
	return strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")
}
