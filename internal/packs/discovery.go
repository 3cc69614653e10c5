// ABOUTME: Startup discovery of handler groups and their registration entry points.
// ABOUTME: A failing group is logged and skipped so the rest of the command surface still loads.

package packs

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime/debug"

	"github.com/BurntSushi/toml"
)

// Group is a named set of commands. A group exposes at least one of
// the registration conventions below.
type Group interface {
	Name() string
}

// AllRegistrar is the default entry point convention.
type AllRegistrar interface {
	RegisterAll(r Registrar) error
}

// RegisterFunc registers a group's commands.
type RegisterFunc func(r Registrar) error

// EntryPointer exposes named entry points; discovery picks the one named
// after the group itself.
type EntryPointer interface {
	EntryPoints() map[string]RegisterFunc
}

// CommandLister is the fallback convention: a static list of commands.
type CommandLister interface {
	Commands() []Command
}

// Convention names which entry point discovery used for a group.
type Convention string

const (
	ConventionRegisterAll Convention = "register_all"
	ConventionNamed       Convention = "named_entry_point"
	ConventionCommands    Convention = "command_list"
	ConventionNone        Convention = "none"
	ConventionDisabled    Convention = "disabled"
)

// ErrNoEntryPoint indicates a group exposes none of the known conventions.
var ErrNoEntryPoint = errors.New("no registration entry point")

// GroupReport is the outcome of discovering one group.
type GroupReport struct {
	Group      string
	Convention Convention
	Added      int
	Err        error
}

// Manifest enables or disables groups by name.
//
//	[groups.weather]
//	enabled = false
type Manifest struct {
	Groups map[string]GroupSettings `toml:"groups"`
}

// GroupSettings configures one group in the manifest.
type GroupSettings struct {
	Enabled *bool `toml:"enabled"`
}

// Enabled reports whether a group should load. Groups absent from the manifest load.
func (m Manifest) Enabled(name string) bool {
	s, ok := m.Groups[name]
	if !ok || s.Enabled == nil {
		return true
	}
	return *s.Enabled
}

// LoadManifest reads a TOML manifest. An empty path yields an empty manifest.
func LoadManifest(path string) (Manifest, error) {
	var m Manifest
	if path == "" {
		return m, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return m, fmt.Errorf("reading plugin manifest: %w", err)
	}
	if _, err := toml.Decode(string(data), &m); err != nil {
		return m, fmt.Errorf("parsing plugin manifest: %w", err)
	}
	return m, nil
}

// Discover registers every enabled group into reg, in the order given.
// It never fails as a whole; per-group problems are returned in the reports.
func Discover(reg *Registry, groups []Group, manifest Manifest, logger *slog.Logger) []GroupReport {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "discovery")

	reports := make([]GroupReport, 0, len(groups))
	for _, g := range groups {
		rep := discoverGroup(reg, g, manifest, logger)
		reports = append(reports, rep)

		switch {
		case rep.Convention == ConventionDisabled:
			logger.Info("group disabled by manifest", "group", rep.Group)
		case rep.Err != nil:
			logger.Error("group failed to load", "group", rep.Group, "convention", rep.Convention, "error", rep.Err)
		case rep.Added == 0:
			logger.Warn("group registered no commands", "group", rep.Group, "convention", rep.Convention)
		default:
			logger.Info("=== GROUP REGISTERED ===",
				"group", rep.Group,
				"convention", rep.Convention,
				"commands", rep.Added,
				"total_commands", reg.Len(),
			)
		}
	}
	return reports
}

func discoverGroup(reg *Registry, g Group, manifest Manifest, logger *slog.Logger) (rep GroupReport) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("group panicked during discovery",
				"group", rep.Group,
				"panic", rec,
				"stack", string(debug.Stack()),
			)
			rep.Err = fmt.Errorf("panic: %v", rec)
		}
	}()

	rep.Group = g.Name()
	if !manifest.Enabled(rep.Group) {
		rep.Convention = ConventionDisabled
		return rep
	}

	before := reg.Len()
	defer func() { rep.Added = reg.Len() - before }()

	target := reg.For(rep.Group)

	if ra, ok := g.(AllRegistrar); ok {
		rep.Convention = ConventionRegisterAll
		rep.Err = tolerateDuplicates(ra.RegisterAll(target))
		return rep
	}
	if ep, ok := g.(EntryPointer); ok {
		if fn := ep.EntryPoints()[rep.Group]; fn != nil {
			rep.Convention = ConventionNamed
			rep.Err = tolerateDuplicates(fn(target))
			return rep
		}
	}
	if cl, ok := g.(CommandLister); ok {
		rep.Convention = ConventionCommands
		var errs []error
		for _, c := range cl.Commands() {
			errs = append(errs, target.Register(c.Descriptor, c.Handler))
		}
		rep.Err = tolerateDuplicates(errors.Join(errs...))
		return rep
	}

	rep.Convention = ConventionNone
	rep.Err = ErrNoEntryPoint
	return rep
}

// tolerateDuplicates drops ErrDuplicateCommand warnings, which the registry already logged.
func tolerateDuplicates(err error) error {
	if err == nil {
		return nil
	}
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		var rest []error
		for _, e := range joined.Unwrap() {
			if e != nil && !errors.Is(e, ErrDuplicateCommand) {
				rest = append(rest, e)
			}
		}
		return errors.Join(rest...)
	}
	if errors.Is(err, ErrDuplicateCommand) {
		return nil
	}
	return err
}
