// ABOUTME: Thread-safe registry mapping command names to descriptors and handlers.
// ABOUTME: Populated once at startup; re-registering a name overwrites it in place.

package packs

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// ErrDuplicateCommand is returned after a registration replaced an existing command.
// The new command is live; callers may treat this as a warning.
var ErrDuplicateCommand = errors.New("duplicate command")

// ErrInvalidCommand indicates a descriptor without a name or a nil handler.
var ErrInvalidCommand = errors.New("invalid command")

// Registrar is what handler groups register their commands through.
type Registrar interface {
	Register(desc Descriptor, handler Handler) error
}

// Registry holds all registered commands.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*entry
	order   []string
	logger  *slog.Logger
}

// NewRegistry creates an empty Registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		entries: make(map[string]*entry),
		logger:  logger,
	}
}

// Register adds a command outside any group.
func (r *Registry) Register(desc Descriptor, handler Handler) error {
	return r.register("", desc, handler)
}

// Add registers several commands, joining any errors.
func (r *Registry) Add(cmds ...Command) error {
	var errs []error
	for _, c := range cmds {
		if err := r.Register(c.Descriptor, c.Handler); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (r *Registry) register(group string, desc Descriptor, handler Handler) error {
	if desc.Name == "" || handler == nil {
		return fmt.Errorf("%w: name=%q group=%q", ErrInvalidCommand, desc.Name, group)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	e := &entry{Command: Command{Descriptor: desc, Handler: handler}, Group: group}
	if prev, exists := r.entries[desc.Name]; exists {
		r.entries[desc.Name] = e
		r.logger.Warn("command re-registered, previous definition replaced",
			"command", desc.Name,
			"previous_group", prev.Group,
			"group", group,
		)
		return fmt.Errorf("%w: %s", ErrDuplicateCommand, desc.Name)
	}

	r.entries[desc.Name] = e
	r.order = append(r.order, desc.Name)
	r.logger.Debug("command registered", "command", desc.Name, "group", group)
	return nil
}

// Lookup returns the command registered under name.
func (r *Registry) Lookup(name string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[name]
	if !ok {
		return Command{}, false
	}
	return e.Command, true
}

// List returns every descriptor in first-registration order.
func (r *Registry) List() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Descriptor, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.entries[name].Descriptor)
	}
	return out
}

// GroupInfo summarizes the commands contributed by one group.
type GroupInfo struct {
	Group    string
	Commands []string
}

// Groups lists commands by owning group, in first-registration order.
func (r *Registry) Groups() []GroupInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	idx := make(map[string]int)
	var out []GroupInfo
	for _, name := range r.order {
		g := r.entries[name].Group
		i, ok := idx[g]
		if !ok {
			i = len(out)
			idx[g] = i
			out = append(out, GroupInfo{Group: g})
		}
		out[i].Commands = append(out[i].Commands, name)
	}
	return out
}

// Len returns the number of distinct command names.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// scope attributes registrations to a group.
type scope struct {
	registry *Registry
	group    string
}

func (s scope) Register(desc Descriptor, handler Handler) error {
	return s.registry.register(s.group, desc, handler)
}

// For returns a Registrar that tags registrations with group.
func (r *Registry) For(group string) Registrar {
	return scope{registry: r, group: group}
}
