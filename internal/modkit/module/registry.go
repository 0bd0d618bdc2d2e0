package module

import (
	"slices"
	"sync"
)

// registry holds the port sets main wires together, keyed by module name
type registry struct {
	mu   sync.RWMutex
	sets map[string]any
}

var global = &registry{sets: map[string]any{}}

// Register records ports under name; a later call for the same name replaces it
func Register(name string, ports any) {
	global.mu.Lock()
	defer global.mu.Unlock()
	global.sets[name] = ports
}

// PortsAs looks up name and asserts its port set to T
func PortsAs[T any](name string) (T, bool) {
	global.mu.RLock()
	v, ok := global.sets[name]
	global.mu.RUnlock()
	out, ok2 := v.(T)
	return out, ok && ok2
}

// Registered lists the module names in sorted order
func Registered() []string {
	global.mu.RLock()
	defer global.mu.RUnlock()
	names := make([]string, 0, len(global.sets))
	for n := range global.sets {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// Reset empties the registry; tests call it between cases
func Reset() {
	global.mu.Lock()
	defer global.mu.Unlock()
	global.sets = map[string]any{}
}
