// ABOUTME: Plain-text rendering of catalog records for command results.
// ABOUTME: Nested blocks are indented four spaces per level.

package catalog

import (
	"fmt"
	"strconv"
	"strings"
)

const indent = "    "

// SummaryLimit is the longest description shown in search summaries.
const SummaryLimit = 700

const clippedSuffix = "... (description clipped, fetch with get-course tool for full details)"

// SearchNote heads search-courses results.
const SearchNote = "Note: search-courses is for exploring and finding courses. It returns only summary fields " +
	"(name, description, units). To retrieve all details about a course (instructors, schedule, requirements, etc.), " +
	"use the get-course tool.\n\nResults:"

func none(s string) string {
	if strings.TrimSpace(s) == "" {
		return "None"
	}
	return s
}

func writeObjectives(b *strings.Builder, objs []Objective, ind string) {
	if len(objs) == 0 {
		fmt.Fprintf(b, "%s- (none)\n", ind)
		return
	}
	for _, o := range objs {
		fmt.Fprintf(b, "%s- %s: %s\n", ind, o.Code, o.Description)
	}
}

func writeTags(b *strings.Builder, tags []Tag, ind string) {
	if len(tags) == 0 {
		fmt.Fprintf(b, "%s- (none)\n", ind)
		return
	}
	for _, t := range tags {
		fmt.Fprintf(b, "%s- %s::%s\n", ind, t.Organization, t.Name)
	}
}

func writeAttributes(b *strings.Builder, attrs []Attribute, ind string) {
	if len(attrs) == 0 {
		fmt.Fprintf(b, "%s- (none)\n", ind)
		return
	}
	for _, a := range attrs {
		line := fmt.Sprintf("%s- %s::%s", ind, a.Name, a.Value)
		if a.Description != "" {
			line += " - " + a.Description
		}
		var flags []string
		if a.CatalogPrint != "" {
			flags = append(flags, "catalog_print="+a.CatalogPrint)
		}
		if a.SchedulePrint != "" {
			flags = append(flags, "schedule_print="+a.SchedulePrint)
		}
		if len(flags) > 0 {
			line += " [" + strings.Join(flags, ", ") + "]"
		}
		b.WriteString(line + "\n")
	}
}

func writeInstructors(b *strings.Builder, instrs []Instructor, ind string) {
	if len(instrs) == 0 {
		fmt.Fprintf(b, "%s- (none)\n", ind)
		return
	}
	for _, i := range instrs {
		name := strings.TrimSpace(i.FirstName + " " + i.LastName)
		if name == "" {
			name = i.Name
		}
		if name == "" {
			name = "(unknown)"
		}
		line := ind + "- " + name
		if i.SunetID != "" {
			line += " [" + i.SunetID + "]"
		}
		if i.IsPrimary() {
			line += " (PI)"
		}
		b.WriteString(line + "\n")
	}
}

func writeSchedules(b *strings.Builder, schedules []Schedule, ind string) {
	if len(schedules) == 0 {
		fmt.Fprintf(b, "%s(none)\n", ind)
		return
	}
	i2 := ind + indent
	for n, s := range schedules {
		fmt.Fprintf(b, "%s- Schedule #%d:\n", ind, n+1)
		fmt.Fprintf(b, "%sdates: %s to %s\n", i2, none(s.StartDate), none(s.EndDate))
		fmt.Fprintf(b, "%stime: %s to %s\n", i2, none(s.StartTime), none(s.EndTime))
		fmt.Fprintf(b, "%slocation: %s\n", i2, none(s.Location))
		fmt.Fprintf(b, "%sdays: %s\n", i2, strings.Join(s.DayList(), ", "))
		fmt.Fprintf(b, "%sinstructors:\n", i2)
		writeInstructors(b, s.Instructors, i2+indent)
	}
}

func writeSections(b *strings.Builder, sections []Section, ind string) {
	if len(sections) == 0 {
		fmt.Fprintf(b, "%s- (none)\n", ind)
		return
	}
	i2 := ind + indent
	for n, s := range sections {
		fmt.Fprintf(b, "%s- Section #%d: %s %s (class_id: %d)\n", ind, n+1, s.Component, s.SectionNumber, s.ClassID)
		fmt.Fprintf(b, "%sterm: %s\n", i2, none(s.Term))
		fmt.Fprintf(b, "%sunits: %s\n", i2, none(s.Units))
		fmt.Fprintf(b, "%senrollment: %d/%d\n", i2, s.CurrentClassSize, s.MaxClassSize)
		fmt.Fprintf(b, "%swaitlist: %d/%d\n", i2, s.CurrentWaitlistSize, s.MaxWaitlistSize)
		if s.Notes != "" {
			fmt.Fprintf(b, "%snotes: %s\n", i2, s.Notes)
		}
		fmt.Fprintf(b, "%sschedules:\n", i2)
		writeSchedules(b, s.Schedules, i2+indent)
		fmt.Fprintf(b, "%sattributes:\n", i2)
		writeAttributes(b, s.Attributes, i2+indent)
	}
}

// FormatCourse renders a full course record including sections.
func FormatCourse(c Course) string {
	var b strings.Builder
	b.WriteString("# Course\n")
	fields := []struct{ k, v string }{
		{"course_id", strconv.FormatInt(c.ID(), 10)},
		{"year", none(c.Year)},
		{"subject", none(c.Subject)},
		{"code", none(c.Code)},
		{"title", none(c.Title)},
		{"description", none(c.Description)},
		{"gers", strings.Join(c.GERList(), ", ")},
		{"repeatable", none(c.Repeatable)},
		{"grading_basis", none(c.GradingBasis)},
		{"units_min", strconv.Itoa(c.UnitsMin)},
		{"units_max", strconv.Itoa(c.UnitsMax)},
		{"final_exam", none(c.FinalExam)},
		{"active", strconv.FormatBool(c.Active())},
		{"offer_num", none(c.Admin.OfferNumber)},
		{"academic_group", none(c.Admin.AcademicGroup)},
		{"academic_org", none(c.Admin.AcademicOrg)},
		{"academic_career", none(c.Admin.AcademicCareer)},
		{"max_units_repeat", none(c.Admin.MaxUnitsRepeat)},
		{"max_times_repeat", none(c.Admin.MaxTimesRepeat)},
	}
	for _, f := range fields {
		fmt.Fprintf(&b, "%s: %s\n", f.k, f.v)
	}

	b.WriteString("\nlearning_objectives:\n")
	writeObjectives(&b, c.Objectives, indent)
	b.WriteString("\ntags:\n")
	writeTags(&b, c.Tags, indent)
	b.WriteString("\ncourse_attributes:\n")
	writeAttributes(&b, c.Attributes, indent)
	b.WriteString("\nsections:\n")
	writeSections(&b, c.Sections, indent)
	return b.String()
}

// FormatSchedule renders a course header and the given sections.
func FormatSchedule(c Course, sections []Section) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s: %s (course_id: %d)\n", c.Name(), c.Title, c.ID())
	b.WriteString("sections:\n")
	writeSections(&b, sections, indent)
	return b.String()
}

// Units renders a course's unit range.
func Units(c Course) string {
	if c.UnitsMin == c.UnitsMax {
		return strconv.Itoa(c.UnitsMax)
	}
	return fmt.Sprintf("%d - %d", c.UnitsMin, c.UnitsMax)
}

// FormatSummary renders the short form used by search results.
func FormatSummary(c Course) string {
	desc := c.Description
	if r := []rune(desc); len(r) > SummaryLimit {
		desc = string(r[:SummaryLimit-3]) + clippedSuffix
	}
	return fmt.Sprintf("%s | id: %d | %s units\n%s\n\n%s\n", c.Name(), c.ID(), Units(c), c.Title, desc)
}

// FormatSchools renders the school list, optionally with department counts.
func FormatSchools(schools []School, withCounts bool) string {
	var b strings.Builder
	b.WriteString("Schools:")
	for _, s := range schools {
		fmt.Fprintf(&b, "\n - %s", s.Name)
		if withCounts {
			n := len(s.Departments)
			plural := ""
			if n != 1 {
				plural = "s"
			}
			fmt.Fprintf(&b, " (%d department%s)", n, plural)
		}
	}
	return b.String()
}

// FormatDepartments renders one or more schools with their departments.
func FormatDepartments(schools []School) string {
	var b strings.Builder
	for i, s := range schools {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(s.Name)
		for _, d := range s.Departments {
			fmt.Fprintf(&b, "\n - %s (%s)", d.Name, d.Code)
		}
	}
	return b.String()
}
