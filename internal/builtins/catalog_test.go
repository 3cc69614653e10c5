// ABOUTME: Tests for the course catalog group against an in-memory catalog.
// ABOUTME: Commands are dispatched through a real registry and router.

package builtins

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/course-gateway/internal/catalog"
	"github.com/2389/course-gateway/internal/packs"
)

type fakeCatalog struct {
	schools []catalog.School
	courses []catalog.Course

	mu      sync.Mutex
	filters [][]string
}

func (f *fakeCatalog) Schools(ctx context.Context) ([]catalog.School, error) {
	return f.schools, nil
}

func (f *fakeCatalog) Search(ctx context.Context, query string, filters []string) ([]catalog.Course, error) {
	f.mu.Lock()
	f.filters = append(f.filters, filters)
	f.mu.Unlock()

	var out []catalog.Course
	for _, c := range f.courses {
		if strconv.FormatInt(c.ID(), 10) == query || strings.Contains(strings.ToLower(c.Title), strings.ToLower(query)) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCatalog) lastFilters() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.filters) == 0 {
		return nil
	}
	return f.filters[len(f.filters)-1]
}

func testCourse(id int64, subject, code, title string, sections ...catalog.Section) catalog.Course {
	c := catalog.Course{
		Subject:     subject,
		Code:        code,
		Title:       title,
		Description: "About " + title + ".",
		UnitsMin:    3,
		UnitsMax:    5,
		Sections:    sections,
	}
	c.Admin.CourseID = id
	c.Admin.EffectiveStatus = "A"
	return c
}

func testSection(classID int64, term, start, end, days string) catalog.Section {
	return catalog.Section{
		ClassID:       classID,
		Term:          "2025-2026 " + term,
		SectionNumber: "01",
		Component:     "LEC",
		Schedules: []catalog.Schedule{{
			StartTime: start,
			EndTime:   end,
			Days:      days,
			Location:  "Hewlett 200",
		}},
	}
}

func newCatalogFixture() *fakeCatalog {
	return &fakeCatalog{
		schools: []catalog.School{
			{Name: "School of Engineering", Departments: []catalog.Department{
				{Name: "Computer Science", Code: "CS"},
				{Name: "Electrical Engineering", Code: "EE"},
			}},
			{Name: "School of Law", Departments: []catalog.Department{
				{Name: "Law", Code: "LAW"},
			}},
		},
		courses: []catalog.Course{
			testCourse(105645, "CS", "106A", "Programming Methodology",
				testSection(11, "Autumn", "9:00:00 AM", "10:00:00 AM", "Monday Wednesday"),
				testSection(12, "Winter", "1:30:00 PM", "2:20:00 PM", "Tuesday"),
			),
			testCourse(200100, "MATH", "51", "Linear Algebra and Calculus",
				testSection(21, "Autumn", "9:30:00 AM", "10:30:00 AM", "Monday"),
			),
			testCourse(300200, "PHIL", "1", "Introduction to Philosophy",
				testSection(31, "Autumn", "TBD", "TBD", "Friday"),
			),
		},
	}
}

func newCatalogRouter(t *testing.T, fake catalog.Catalog) *packs.Router {
	t.Helper()
	registry := packs.NewRegistry(slog.Default())
	conn := catalog.NewConnection(func() (catalog.Catalog, error) { return fake, nil })
	require.NoError(t, NewCatalogGroup(conn).RegisterAll(registry))
	return packs.NewRouter(packs.RouterConfig{Registry: registry, Logger: slog.Default()})
}

func call(t *testing.T, router *packs.Router, name, args string) (packs.Result, error) {
	t.Helper()
	return router.Dispatch(context.Background(), name, json.RawMessage(args), &packs.CallContext{RequestID: "test"})
}

func TestCatalogGroupRegistersCommands(t *testing.T) {
	registry := packs.NewRegistry(slog.Default())
	conn := catalog.NewConnection(func() (catalog.Catalog, error) { return newCatalogFixture(), nil })
	require.NoError(t, NewCatalogGroup(conn).RegisterAll(registry))

	var names []string
	for _, d := range registry.List() {
		names = append(names, d.Name)
	}
	assert.Equal(t, []string{
		"list-schools",
		"list-departments",
		"get-course",
		"get-schedule",
		"search-courses",
		"check-schedule-conflicts",
	}, names)
}

func TestListSchools(t *testing.T) {
	router := newCatalogRouter(t, newCatalogFixture())

	res, err := call(t, router, "list-schools", `{"include_department_count": true}`)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "Schools:\n - School of Engineering (2 departments)\n - School of Law (1 department)", res[0].Text)

	res, err = call(t, router, "list-schools", `{"include_department_count": false}`)
	require.NoError(t, err)
	assert.Equal(t, "Schools:\n - School of Engineering\n - School of Law", res[0].Text)

	_, err = call(t, router, "list-schools", `{}`)
	require.Error(t, err)
	assert.Equal(t, packs.KindInvalidArgument, packs.KindOf(err))
	assert.Contains(t, err.Error(), "include_department_count")

	_, err = call(t, router, "list-schools", `{"include_department_count": "yes"}`)
	require.Error(t, err)
	assert.Equal(t, packs.KindInvalidArgument, packs.KindOf(err))
}

func TestListDepartments(t *testing.T) {
	router := newCatalogRouter(t, newCatalogFixture())

	res, err := call(t, router, "list-departments", `{"school": "School of Law"}`)
	require.NoError(t, err)
	assert.Equal(t, "School of Law\n - Law (LAW)", res[0].Text)

	res, err = call(t, router, "list-departments", `{}`)
	require.NoError(t, err)
	assert.Contains(t, res[0].Text, "Computer Science (CS)")
	assert.Contains(t, res[0].Text, "Law (LAW)")

	_, err = call(t, router, "list-departments", `{"school": "School of Magic"}`)
	require.Error(t, err)
	assert.Equal(t, packs.KindInvalidArgument, packs.KindOf(err))
	assert.Contains(t, err.Error(), "School of Magic")
}

func TestGetCourse(t *testing.T) {
	fake := newCatalogFixture()
	router := newCatalogRouter(t, fake)

	res, err := call(t, router, "get-course", `{"course_id": 105645, "terms": ["autumn", "Autumn"], "careers": ["UG"]}`)
	require.NoError(t, err)
	assert.Contains(t, res[0].Text, "# Course\n")
	assert.Contains(t, res[0].Text, "course_id: 105645")
	assert.Contains(t, res[0].Text, "title: Programming Methodology")
	assert.Equal(t, []string{"filter-term-Autumn", "filter-academiclevel-UG"}, fake.lastFilters())

	_, err = call(t, router, "get-course", `{"course_id": 999}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "terms")

	_, err = call(t, router, "get-course", `{"course_id": 105645, "terms": []}`)
	require.Error(t, err)
	assert.Equal(t, packs.KindInvalidArgument, packs.KindOf(err))

	_, err = call(t, router, "get-course", `{"course_id": 105645, "terms": ["Fall"]}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid term 'Fall'")

	_, err = call(t, router, "get-course", `{"course_id": 105645, "terms": ["Autumn"], "units": ["7"]}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"units"`)

	_, err = call(t, router, "get-course", `{"course_id": 1.5, "terms": ["Autumn"]}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "course_id")

	_, err = call(t, router, "get-course", `{"course_id": 999, "terms": ["Autumn"]}`)
	require.Error(t, err)
	assert.Equal(t, packs.KindInvalidArgument, packs.KindOf(err))
	assert.Contains(t, err.Error(), "No matches found with course_id '999'")
}

func TestGetSchedule(t *testing.T) {
	fake := newCatalogFixture()
	router := newCatalogRouter(t, fake)

	res, err := call(t, router, "get-schedule", `{"course_id": 105645}`)
	require.NoError(t, err)
	text := res[0].Text
	assert.True(t, strings.HasPrefix(text, "# CS106A: Programming Methodology (course_id: 105645)\nsections:\n"))
	assert.Contains(t, text, "class_id: 11")
	assert.Contains(t, text, "class_id: 12")
	assert.Len(t, fake.lastFilters(), 4)

	res, err = call(t, router, "get-schedule", `{"course_id": 105645, "term": "winter"}`)
	require.NoError(t, err)
	assert.NotContains(t, res[0].Text, "class_id: 11")
	assert.Contains(t, res[0].Text, "class_id: 12")
	assert.Equal(t, []string{"filter-term-Winter"}, fake.lastFilters())

	_, err = call(t, router, "get-schedule", `{"course_id": 105645, "term": "Fall"}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"term"`)
}

func TestSearchCourses(t *testing.T) {
	router := newCatalogRouter(t, newCatalogFixture())

	res, err := call(t, router, "search-courses", `{"query": "linear", "terms": ["Autumn"]}`)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.True(t, strings.HasPrefix(res[0].Text, catalog.SearchNote))
	assert.Contains(t, res[0].Text, "MATH51 | id: 200100 | 3 - 5 units")
	assert.NotContains(t, res[0].Text, "CS106A")

	_, err = call(t, router, "search-courses", `{"query": 5, "terms": ["Autumn"]}`)
	require.Error(t, err)
	assert.Equal(t, packs.KindInvalidArgument, packs.KindOf(err))
}

func TestCheckScheduleConflicts(t *testing.T) {
	router := newCatalogRouter(t, newCatalogFixture())

	res, err := call(t, router, "check-schedule-conflicts",
		`{"selections": [{"course_id": 105645, "section_id": 11}, {"course_id": 200100, "section_id": 21}]}`)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.True(t, strings.HasPrefix(res[0].Text, "Conflict on Monday"))
	assert.Contains(t, res[0].Text, "CS106A")
	assert.Contains(t, res[0].Text, "MATH51")

	res, err = call(t, router, "check-schedule-conflicts",
		`{"selections": [{"course_id": 105645, "section_id": 12}, {"course_id": 300200, "section_id": 31}]}`)
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, "No conflicts detected.", res[0].Text)
	assert.Empty(t, res[0].Kind)
	assert.Contains(t, res[1].Text, "TBD")
	assert.Equal(t, packs.KindPartialDataWarning, res[1].Kind)
	assert.Equal(t, []string{res[1].Text}, res.Warnings())

	_, err = call(t, router, "check-schedule-conflicts", `{"selections": []}`)
	require.Error(t, err)
	assert.Equal(t, packs.KindInvalidArgument, packs.KindOf(err))

	_, err = call(t, router, "check-schedule-conflicts", `{"selections": [{"course_id": 105645}]}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "section_id")

	_, err = call(t, router, "check-schedule-conflicts",
		`{"selections": [{"course_id": 105645, "section_id": 11}, {"course_id": 424242, "section_id": 1}]}`)
	require.Error(t, err)
	assert.Equal(t, packs.KindInvalidArgument, packs.KindOf(err))
	assert.Contains(t, err.Error(), "unknown course 424242")

	_, err = call(t, router, "check-schedule-conflicts",
		`{"selections": [{"course_id": 105645, "section_id": 99}]}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown section 99")
}
