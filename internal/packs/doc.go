// Package packs provides the command system behind the gateway's dispatch endpoint.
//
// # Overview
//
// Commands are grouped into packs (handler groups) that register themselves at
// startup. Each command has a Descriptor (name, title, description, input
// shape) and a Handler that runs in-process.
//
// # Architecture
//
//   - Registry: maps command names to descriptors and handlers
//   - Discover: walks the static group list and invokes each group's entry point
//   - Router: resolves a name, invokes the handler and normalizes the outcome
//
// # Discovery
//
// For every enabled group, discovery tries in order:
//
//  1. RegisterAll(Registrar) error
//  2. EntryPoints()[group name]
//  3. Commands() []Command
//
// The first convention present is invoked exactly once. Panics and errors are
// logged with the group name and discovery moves on to the next group. A TOML
// manifest can disable groups by name.
//
// # Dispatch
//
// Router.Dispatch never panics and never leaks internal error text. Handler
// errors that are *Error values with a caller-facing kind pass through; anything
// else becomes a generic InternalError.
//
// # Usage
//
//	registry := packs.NewRegistry(logger)
//	packs.Discover(registry, groups, manifest, logger)
//	router := packs.NewRouter(packs.RouterConfig{Registry: registry, Logger: logger})
//	result, err := router.Dispatch(ctx, "list-schools", args, call)
package packs
