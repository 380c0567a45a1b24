package manager

import (
	"sort"
	"sync"

	"github.com/pkg/errors"

	"github.com/distroforge/distroforge/common"
)

// Factory builds a fresh adapter bound to the given runner.
type Factory func(runner Runner) PackageManager

// ErrUnknownManager reports that no adapter is registered under a name.
var ErrUnknownManager = errors.New("no package manager adapter registered")

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

// Register adds an adapter factory under name. Registering the same name
// twice is an error.
func Register(name string, factory Factory) error {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[name]; exists {
		return errors.Errorf("package manager adapter %q already registered", name)
	}
	registry[name] = factory
	return nil
}

// Create returns a new adapter instance for name, or ErrUnknownManager when
// no factory is registered for it.
func Create(name string, runner Runner) (PackageManager, error) {
	registryMu.RLock()
	factory, exists := registry[name]
	registryMu.RUnlock()

	if !exists {
		return nil, errors.Wrapf(ErrUnknownManager, "%q", name)
	}
	return factory(runner), nil
}

// Names lists the registered adapter names, sorted.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var builtinsOnce sync.Once

// RegisterBuiltins installs the compiled-in adapters. Called once during
// process startup; registration is explicit rather than init-driven so there
// are no hidden load-order dependencies.
func RegisterBuiltins() {
	builtinsOnce.Do(func() {
		_ = Register(common.ManagerApt, NewAptManager)
		_ = Register(common.ManagerDnf, NewDnfManager)
		_ = Register(common.ManagerPacman, NewPacmanManager)
		_ = Register(common.ManagerZypper, NewZypperManager)
		_ = Register(common.ManagerFlatpak, NewFlatpakManager)
	})
}
