// Package registry provides a global registry for stimulus module factories.
// Modules register themselves in init() functions, allowing the launcher
// to discover and instantiate them by name without hardcoded dependencies.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/meyendtris/internal/core"
	"github.com/vovakirdan/meyendtris/internal/gaze"
	"github.com/vovakirdan/meyendtris/internal/markers"
	"github.com/vovakirdan/meyendtris/internal/signal"
)

// ErrUnknownModule is returned by Create for an unregistered id.
var ErrUnknownModule = errors.New("registry: unknown module")

// Module is the tick lifecycle every stimulus module implements.
// Modules contain no terminal code; the launcher owns timing and the
// platform owns rendering and input.
type Module interface {
	// ID returns a unique identifier (e.g. "meyendtris").
	// Used for CLI commands, remote "load" and session records.
	ID() string

	// Title returns a human-readable name for display.
	Title() string

	// Start prepares the module for a session. Configuration errors are
	// returned here, never from Tick.
	Start(env Env) error

	// Cancel stops the session. The module may be started again.
	Cancel()

	// Tick advances the module by dt seconds. Called once per frame from
	// a single goroutine.
	Tick(dt float64)

	// Prune releases resources held since Start (streams, audio).
	Prune()

	// Apply queues a command for the next tick.
	Apply(cmd core.Command)

	// Render draws the current state into the screen buffer.
	// The screen is pre-cleared before this call.
	Render(dst *core.Screen)

	// State summarises the module for the launcher and HUD.
	State() core.ModuleState
}

// Configurable modules accept a configuration file at runtime, e.g. from
// the remote "config" command. The file applies to the next Start.
type Configurable interface {
	LoadConfig(path string) error
}

// KeyMapper modules translate key presses into their own commands.
type KeyMapper interface {
	Key(key string) (core.Command, bool)
}

// Env carries the collaborators a module is wired to for one session.
type Env struct {
	Runtime  core.RuntimeConfig
	Signal   *signal.Source  // Externally settable BCI scalar
	Position gaze.Source     // Nil when the session runs on keyboard
	Markers  markers.Emitter // Stamps and forwards fired markers
	Logger   *log.Logger
	Music    bool // Play configured music through the speaker
}

// ModuleInfo contains metadata about a registered module.
type ModuleInfo struct {
	ID    string
	Title string
}

// Factory is a function that creates a new instance of a module.
type Factory func() Module

var (
	factories = make(map[string]Factory)
	titles    = make(map[string]string)
	mu        sync.RWMutex
)

// Register adds a module factory to the registry.
// Typically called from a module's init() function.
// Panics if a module with the same ID is already registered.
func Register(id string, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := factories[id]; exists {
		panic(fmt.Sprintf("registry: module %q already registered", id))
	}

	factories[id] = f

	// Get title by creating a temporary instance
	titles[id] = f().Title()
}

// List returns information about all registered modules, sorted by ID.
func List() []ModuleInfo {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]ModuleInfo, 0, len(factories))
	for id := range factories {
		result = append(result, ModuleInfo{
			ID:    id,
			Title: titles[id],
		})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	return result
}

// Create instantiates a new module by its ID.
func Create(id string) (Module, error) {
	mu.RLock()
	defer mu.RUnlock()

	f, ok := factories[id]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownModule, id)
	}

	return f(), nil
}

// Exists checks if a module with the given ID is registered.
func Exists(id string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := factories[id]
	return ok
}
