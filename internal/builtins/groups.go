// ABOUTME: The explicit list of handler groups loaded at startup.
// ABOUTME: Groups are discovered in this order; the manifest may disable any of them.

package builtins

import (
	"errors"

	"github.com/2389/course-gateway/internal/catalog"
	"github.com/2389/course-gateway/internal/packs"
	"github.com/2389/course-gateway/internal/weather"
)

// Deps are the shared clients handler groups are built over.
type Deps struct {
	Catalog *catalog.Connection
	Weather *weather.Client
}

// Groups returns every built-in group. Groups whose dependency is missing are left out.
func Groups(deps Deps) []packs.Group {
	var groups []packs.Group
	if deps.Catalog != nil {
		groups = append(groups, NewCatalogGroup(deps.Catalog))
	}
	if deps.Weather != nil {
		groups = append(groups, NewWeatherGroup(deps.Weather))
	}
	groups = append(groups, NewNotificationGroup())
	return groups
}

// registerEach registers every command, continuing past failures.
func registerEach(r packs.Registrar, cmds []packs.Command) error {
	var errs []error
	for _, c := range cmds {
		errs = append(errs, r.Register(c.Descriptor, c.Handler))
	}
	return errors.Join(errs...)
}
