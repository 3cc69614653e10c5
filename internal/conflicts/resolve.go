// ABOUTME: Resolves course/section selections to raw meetings through a catalog lookup.
// ABOUTME: Selections resolve concurrently; any invalid selection fails the whole check.

package conflicts

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Resolver looks up the meetings of one selected section.
// Implementations return an InvalidArgument error for unknown courses or sections.
type Resolver interface {
	SectionMeetings(ctx context.Context, sel Selection) ([]Meeting, error)
}

// maxConcurrentLookups caps parallel catalog requests per check.
const maxConcurrentLookups = 4

// Check resolves selections and analyzes them. Duplicate selections are
// checked once and reported as a warning.
func Check(ctx context.Context, resolver Resolver, selections []Selection) (Report, error) {
	unique := make([]Selection, 0, len(selections))
	seen := make(map[Selection]bool, len(selections))
	var dupWarnings []string
	for _, sel := range selections {
		if seen[sel] {
			dupWarnings = append(dupWarnings, fmt.Sprintf("Warning: course %d section %d was selected more than once; checked once.",
				sel.CourseID, sel.SectionID))
			continue
		}
		seen[sel] = true
		unique = append(unique, sel)
	}

	resolved := make([][]Meeting, len(unique))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentLookups)
	for i, sel := range unique {
		g.Go(func() error {
			meetings, err := resolver.SectionMeetings(gctx, sel)
			if err != nil {
				return err
			}
			resolved[i] = meetings
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Report{}, err
	}

	var meetings []Meeting
	for _, ms := range resolved {
		meetings = append(meetings, ms...)
	}

	report := Analyze(meetings)
	report.Warnings = append(dupWarnings, report.Warnings...)
	return report, nil
}
