package core

import (
	"fmt"
	"sort"
	"sync"

	"github.com/Integrum-Global/kailash-vibe-cc-setup/internal/config"
)

// HookFactory is a function that creates a Hook instance
type HookFactory func(ctx *HookContext) Hook

// HookInfo summarizes a registered hook for listings
type HookInfo struct {
	Key         string    `json:"key"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Event       EventType `json:"event"`
}

// Registry manages hook registration and creation
type Registry struct {
	mu        sync.RWMutex
	factories map[string]HookFactory
	context   *HookContext
}

// NewRegistry creates a new hook registry
func NewRegistry(ctx *HookContext) *Registry {
	if ctx == nil {
		ctx = DefaultHookContext()
	}
	return &Registry{
		factories: make(map[string]HookFactory),
		context:   ctx,
	}
}

// Register registers a hook factory with the given key
func (r *Registry) Register(key string, factory HookFactory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[key]; exists {
		return fmt.Errorf("hook with key '%s' already registered", key)
	}
	r.factories[key] = factory
	return nil
}

// MustRegister is like Register but panics on error
func (r *Registry) MustRegister(key string, factory HookFactory) {
	if err := r.Register(key, factory); err != nil {
		panic(err)
	}
}

// RegisterBatch registers several hooks atomically; nothing is registered
// if any key is already taken.
func (r *Registry) RegisterBatch(hooks map[string]HookFactory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key := range hooks {
		if _, exists := r.factories[key]; exists {
			return fmt.Errorf("hook with key '%s' already registered", key)
		}
	}
	for key, factory := range hooks {
		r.factories[key] = factory
	}
	return nil
}

// Create creates a hook instance by key
func (r *Registry) Create(key string) (Hook, error) {
	r.mu.RLock()
	factory, exists := r.factories[key]
	ctx := r.context
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("hook with key '%s' not found", key)
	}
	return factory(ctx), nil
}

// Keys returns all registered hook keys in sorted order
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]string, 0, len(r.factories))
	for k := range r.factories {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Describe instantiates every hook and returns its metadata sorted by key
func (r *Registry) Describe() []HookInfo {
	keys := r.Keys()
	infos := make([]HookInfo, 0, len(keys))
	for _, k := range keys {
		h, err := r.Create(k)
		if err != nil {
			continue
		}
		infos = append(infos, HookInfo{
			Key:         h.Key(),
			Name:        h.Name(),
			Description: h.Description(),
			Event:       h.Event(),
		})
	}
	return infos
}

// SetContext updates the context used for creating hook instances
func (r *Registry) SetContext(ctx *HookContext) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.context = ctx
}

// Context returns the context used for creating hook instances
func (r *Registry) Context() *HookContext {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.context
}

var globalRegistry = NewRegistry(nil)

// CreateHook creates a hook instance by key from the global registry
func CreateHook(key string) (Hook, error) {
	return globalRegistry.Create(key)
}

// GetHookKeys returns all registered hook keys from the global registry
func GetHookKeys() []string {
	return globalRegistry.Keys()
}

// DescribeHooks returns metadata for every globally registered hook
func DescribeHooks() []HookInfo {
	return globalRegistry.Describe()
}

// SetGlobalContext updates the global registry's context
func SetGlobalContext(ctx *HookContext) {
	globalRegistry.SetContext(ctx)
}

// SetGlobalLoggingConfig updates the global registry's context with logging configuration
func SetGlobalLoggingConfig(enabled bool, logDir string, format string) {
	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()
	if globalRegistry.context == nil {
		return
	}
	globalRegistry.context.LoggingEnabled = enabled
	if logDir != "" {
		globalRegistry.context.LoggingDir = logDir
	}
	if config.IsValidLoggingFormat(format) {
		globalRegistry.context.LoggingFormat = format
	}
}

// RegisterBuiltinHooks is called by the hooks package to register all built-in hooks
func RegisterBuiltinHooks(hooks map[string]HookFactory) {
	if err := globalRegistry.RegisterBatch(hooks); err != nil {
		panic(err)
	}
}
