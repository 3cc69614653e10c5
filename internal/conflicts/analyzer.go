// ABOUTME: Detects overlapping meeting intervals between selected course sections.
// ABOUTME: Intervals are half-open and bucketed by weekday; every overlapping pair is reported.

package conflicts

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Selection identifies one section of one course.
type Selection struct {
	CourseID  int64 `json:"course_id"`
	SectionID int64 `json:"section_id"`
}

// Meeting is one raw schedule entry of a resolved section, before parsing.
type Meeting struct {
	CourseID   int64
	SectionID  int64
	CourseName string // e.g. "CS106A"
	StartLabel string
	EndLabel   string
	Days       []string
}

func (m Meeting) label() string {
	name := m.CourseName
	if name == "" {
		name = fmt.Sprintf("course %d", m.CourseID)
	}
	return fmt.Sprintf("%s section %d", name, m.SectionID)
}

// Interval is a parsed meeting on a single weekday, [Start, End) in minutes.
type Interval struct {
	Day        time.Weekday
	Start      int
	End        int
	CourseID   int64
	SectionID  int64
	CourseName string
	StartLabel string
	EndLabel   string
}

func (iv Interval) owner() string {
	return Meeting{CourseID: iv.CourseID, SectionID: iv.SectionID, CourseName: iv.CourseName}.label()
}

func (iv Interval) sameSection(other Interval) bool {
	return iv.CourseID == other.CourseID && iv.SectionID == other.SectionID
}

// Overlaps reports whether two half-open intervals intersect. Touching ends do not overlap.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Day == other.Day && iv.Start < other.End && other.Start < iv.End
}

// Conflict is one overlapping pair on one day.
type Conflict struct {
	Day  time.Weekday
	A, B Interval
}

// Report is the outcome of an analysis.
type Report struct {
	Conflicts []Conflict
	Warnings  []string
}

// Expand parses meetings into per-day intervals. Meetings with unparseable
// times, no days, or an end not after the start become warnings and are excluded.
func Expand(meetings []Meeting) ([]Interval, []string) {
	var intervals []Interval
	var warnings []string

	for _, m := range meetings {
		start, errStart := ParseClock(m.StartLabel)
		end, errEnd := ParseClock(m.EndLabel)
		if errStart != nil || errEnd != nil {
			warnings = append(warnings, fmt.Sprintf("Warning: %s has an unparseable meeting time (%q to %q); schedule skipped.",
				m.label(), m.StartLabel, m.EndLabel))
			continue
		}
		if end <= start {
			warnings = append(warnings, fmt.Sprintf("Warning: %s has a meeting ending before it starts (%s to %s); schedule skipped.",
				m.label(), FormatClock(start), FormatClock(end)))
			continue
		}
		days, err := ParseDays(m.Days)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("Warning: %s has no usable meeting days (%s); schedule skipped.",
				m.label(), err))
			continue
		}
		for _, d := range days {
			intervals = append(intervals, Interval{
				Day:        d,
				Start:      start,
				End:        end,
				CourseID:   m.CourseID,
				SectionID:  m.SectionID,
				CourseName: m.CourseName,
				StartLabel: m.StartLabel,
				EndLabel:   m.EndLabel,
			})
		}
	}
	return intervals, warnings
}

// Detect returns every overlapping pair of intervals from different sections,
// ordered by day, then by start time.
func Detect(intervals []Interval) []Conflict {
	var byDay [7][]Interval
	for _, iv := range intervals {
		byDay[iv.Day] = append(byDay[iv.Day], iv)
	}

	var out []Conflict
	for day := time.Sunday; day <= time.Saturday; day++ {
		bucket := byDay[day]
		sort.SliceStable(bucket, func(i, j int) bool {
			if bucket[i].Start != bucket[j].Start {
				return bucket[i].Start < bucket[j].Start
			}
			return bucket[i].End < bucket[j].End
		})

		// After sorting, once b starts at or after a ends, no later interval can overlap a.
		for i := 0; i < len(bucket); i++ {
			a := bucket[i]
			for j := i + 1; j < len(bucket) && bucket[j].Start < a.End; j++ {
				b := bucket[j]
				if a.sameSection(b) || !a.Overlaps(b) {
					continue
				}
				out = append(out, Conflict{Day: day, A: a, B: b})
			}
		}
	}
	return out
}

// Analyze expands meetings and detects conflicts between them.
func Analyze(meetings []Meeting) Report {
	intervals, warnings := Expand(meetings)
	return Report{Conflicts: Detect(intervals), Warnings: warnings}
}

// Line renders one conflict for callers.
func (c Conflict) Line() string {
	return fmt.Sprintf("Conflict on %s: %s (%s-%s) overlaps %s (%s-%s)",
		c.Day,
		c.A.owner(), FormatClock(c.A.Start), FormatClock(c.A.End),
		c.B.owner(), FormatClock(c.B.Start), FormatClock(c.B.End),
	)
}

// NoConflicts is the line emitted when no pair overlaps.
const NoConflicts = "No conflicts detected."

// Lines renders conflicts first, then warnings, or NoConflicts when there are none.
func (r Report) Lines() []string {
	lines := make([]string, 0, len(r.Conflicts)+len(r.Warnings)+1)
	for _, c := range r.Conflicts {
		lines = append(lines, c.Line())
	}
	if len(r.Conflicts) == 0 {
		lines = append(lines, NoConflicts)
	}
	lines = append(lines, r.Warnings...)
	return lines
}

// String joins Lines with newlines.
func (r Report) String() string {
	return strings.Join(r.Lines(), "\n")
}
