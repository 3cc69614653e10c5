// ABOUTME: Resolves course/section selections to meetings for the conflict checker.
// ABOUTME: Courses are looked up across every term of the academic year.

package catalog

import (
	"context"

	"github.com/2389/course-gateway/internal/conflicts"
	"github.com/2389/course-gateway/internal/packs"
)

// Resolver implements conflicts.Resolver on top of the shared connection.
type Resolver struct {
	conn *Connection
}

var _ conflicts.Resolver = (*Resolver)(nil)

// NewResolver creates a Resolver.
func NewResolver(conn *Connection) *Resolver {
	return &Resolver{conn: conn}
}

// SectionMeetings returns one Meeting per schedule of the selected section.
func (r *Resolver) SectionMeetings(ctx context.Context, sel conflicts.Selection) ([]conflicts.Meeting, error) {
	cat, err := r.conn.Get()
	if err != nil {
		return nil, err
	}

	course, found, err := FindCourse(ctx, cat, sel.CourseID, AllTermTokens())
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, packs.InvalidArgument("selections", "unknown course %d", sel.CourseID)
	}

	section, ok := course.Section(sel.SectionID)
	if !ok {
		return nil, packs.InvalidArgument("selections", "unknown section %d for course %d (%s)", sel.SectionID, sel.CourseID, course.Name())
	}

	meetings := make([]conflicts.Meeting, 0, len(section.Schedules))
	for _, s := range section.Schedules {
		meetings = append(meetings, conflicts.Meeting{
			CourseID:   sel.CourseID,
			SectionID:  sel.SectionID,
			CourseName: course.Name(),
			StartLabel: s.StartTime,
			EndLabel:   s.EndTime,
			Days:       s.DayList(),
		})
	}
	return meetings, nil
}
