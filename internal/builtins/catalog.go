// ABOUTME: Course catalog group: schools, departments, courses, schedules, search and conflict checks.
// ABOUTME: Handlers share one lazily created catalog connection and decode into typed requests.

package builtins

import (
	"context"
	"encoding/json"
	"math"
	"strings"

	"github.com/2389/course-gateway/internal/catalog"
	"github.com/2389/course-gateway/internal/conflicts"
	"github.com/2389/course-gateway/internal/packs"
)

// CatalogGroupName is the discovery name of the course catalog group.
const CatalogGroupName = "course_catalog"

var (
	termsField = packs.Field{
		Name:        "terms",
		Type:        packs.TypeArray,
		Items:       &packs.Field{Type: packs.TypeString},
		MinItems:    1,
		Description: "List of terms to search in: Autumn | Winter | Spring | Summer (at least one).",
	}
	courseIDField = packs.Field{
		Name:        "course_id",
		Type:        packs.TypeNumber,
		Description: "Identifier of the course (e.g. 105645, NOT CS 106B). Use search-courses to find valid IDs.",
	}
)

func stringList(name, description string) packs.Field {
	return packs.Field{
		Name:        name,
		Type:        packs.TypeArray,
		Items:       &packs.Field{Type: packs.TypeString},
		Description: description,
	}
}

// filterFields are the optional filter lists shared by get-course and search-courses.
var filterFields = []packs.Field{
	stringList("ug_reqs", "Optional UG requirements: LANGUAGE, WRITING1, WRITING2, WRITINGSLE, WAY_AII, WAY_AQR, WAY_CE, WAY_ED, WAY_ER, WAY_FR, WAY_SI, WAY_SMA."),
	stringList("units", "Optional units filters: 1, 2, 3, 4, 5, GT5."),
	stringList("times", "Optional time of day: early_morning, morning, lunchtime, afternoon, evening."),
	stringList("days", "Optional meeting days: sunday, monday, tuesday, wednesday, thursday, friday, saturday."),
	stringList("careers", "Optional careers: UG, GR, GSB, LAW, MED."),
}

func withFilters(fields ...packs.Field) []packs.Field {
	return append(fields, filterFields...)
}

var (
	listSchoolsShape = packs.Shape{
		Fields: []packs.Field{{
			Name:        "include_department_count",
			Type:        packs.TypeBoolean,
			Description: "If true, the tool will return the number of department per school.",
		}},
		Required: []string{"include_department_count"},
	}
	listDepartmentsShape = packs.Shape{
		Fields: []packs.Field{{
			Name:        "school",
			Type:        packs.TypeString,
			Description: "Name of the school (schools can be fetched with list-schools tool). E.g. 'School of Engineering'.",
		}},
	}
	getCourseShape = packs.Shape{
		Fields:   withFilters(courseIDField, termsField),
		Required: []string{"course_id", "terms"},
	}
	getScheduleShape = packs.Shape{
		Fields: []packs.Field{courseIDField, {
			Name:        "term",
			Type:        packs.TypeString,
			Description: "Optional term to filter sections: Autumn | Winter | Spring | Summer. If omitted/empty, returns all terms.",
		}},
		Required: []string{"course_id"},
	}
	searchCoursesShape = packs.Shape{
		Fields: withFilters(packs.Field{
			Name:        "query",
			Type:        packs.TypeString,
			Description: "Free-text query to search course titles, descriptions, etc.",
		}, termsField),
		Required: []string{"query", "terms"},
	}
	checkConflictsShape = packs.Shape{
		Fields: []packs.Field{{
			Name:        "selections",
			Type:        packs.TypeArray,
			MinItems:    1,
			Description: "Course sections to check against each other. section_id is the class_id shown by get-schedule.",
			Items: &packs.Field{
				Type: packs.TypeObject,
				Properties: []packs.Field{
					{Name: "course_id", Type: packs.TypeInteger},
					{Name: "section_id", Type: packs.TypeInteger},
				},
				Required: []string{"course_id", "section_id"},
			},
		}},
		Required: []string{"selections"},
	}
)

type listSchoolsRequest struct {
	IncludeDepartmentCount bool `json:"include_department_count"`
}

type listDepartmentsRequest struct {
	School string `json:"school"`
}

type getCourseRequest struct {
	CourseID float64  `json:"course_id"`
	Terms    []string `json:"terms"`
	catalog.FilterArgs
}

type getScheduleRequest struct {
	CourseID float64 `json:"course_id"`
	Term     string  `json:"term"`
}

type searchCoursesRequest struct {
	Query string   `json:"query"`
	Terms []string `json:"terms"`
	catalog.FilterArgs
}

// courseID converts a numeric course_id argument to an identifier.
func courseID(v float64) (int64, error) {
	if v <= 0 || v != math.Trunc(v) || v > math.MaxInt64/2 {
		return 0, packs.InvalidArgument("course_id", "expected a positive whole number, got %v", v)
	}
	return int64(v), nil
}

type checkConflictsRequest struct {
	Selections []conflicts.Selection `json:"selections"`
}

// CatalogGroup registers the course catalog commands.
type CatalogGroup struct {
	conn     *catalog.Connection
	resolver conflicts.Resolver
}

var _ packs.AllRegistrar = (*CatalogGroup)(nil)

// NewCatalogGroup creates the group over a shared catalog connection.
func NewCatalogGroup(conn *catalog.Connection) *CatalogGroup {
	return &CatalogGroup{conn: conn, resolver: catalog.NewResolver(conn)}
}

// Name implements packs.Group.
func (g *CatalogGroup) Name() string {
	return CatalogGroupName
}

// RegisterAll implements packs.AllRegistrar.
func (g *CatalogGroup) RegisterAll(r packs.Registrar) error {
	cmds := []packs.Command{
		{
			Descriptor: packs.Descriptor{
				Name:        "list-schools",
				Title:       "Schools at Stanford",
				Description: "Return all schools available in ExploreCourses, optionally with department counts.",
				Input:       listSchoolsShape,
			},
			Handler: g.listSchools,
		},
		{
			Descriptor: packs.Descriptor{
				Name:        "list-departments",
				Title:       "Departments in a School",
				Description: "List departments (name and code) within a given school. If school is omitted, tool returns all departments across schools.",
				Input:       listDepartmentsShape,
			},
			Handler: g.listDepartments,
		},
		{
			Descriptor: packs.Descriptor{
				Name:        "get-course",
				Title:       "Course Details",
				Description: "Fetch a full course record by course_id, including title, description, GERS, attributes, tags, repeatability, and exam flags. (for section/schedules, use get-schedule tool)",
				Input:       getCourseShape,
			},
			Handler: g.getCourse,
		},
		{
			Descriptor: packs.Descriptor{
				Name:        "get-schedule",
				Title:       "Course Sections and Schedules",
				Description: "Fetch sections and schedules for a course by course_id. Optionally filter by term.",
				Input:       getScheduleShape,
			},
			Handler: g.getSchedule,
		},
		{
			Descriptor: packs.Descriptor{
				Name:        "search-courses",
				Title:       "Search Courses",
				Description: "Search courses by query and term filters (Autumn, Winter, Spring, Summer). Returns basic information.",
				Input:       searchCoursesShape,
			},
			Handler: g.searchCourses,
		},
		{
			Descriptor: packs.Descriptor{
				Name:        "check-schedule-conflicts",
				Title:       "Schedule Conflict Check",
				Description: "Check selected course sections for overlapping meeting times. Reports every overlapping pair per weekday.",
				Input:       checkConflictsShape,
			},
			Handler: g.checkConflicts,
		},
	}

	return registerEach(r, cmds)
}

func (g *CatalogGroup) listSchools(ctx context.Context, _ *packs.CallContext, args json.RawMessage) (packs.Result, error) {
	var req listSchoolsRequest
	if err := packs.DecodeArgs(args, listSchoolsShape, &req); err != nil {
		return nil, err
	}

	cat, err := g.conn.Get()
	if err != nil {
		return nil, err
	}
	schools, err := cat.Schools(ctx)
	if err != nil {
		return nil, err
	}
	return packs.TextResult(catalog.FormatSchools(schools, req.IncludeDepartmentCount)), nil
}

func (g *CatalogGroup) listDepartments(ctx context.Context, _ *packs.CallContext, args json.RawMessage) (packs.Result, error) {
	var req listDepartmentsRequest
	if err := packs.DecodeArgs(args, listDepartmentsShape, &req); err != nil {
		return nil, err
	}

	cat, err := g.conn.Get()
	if err != nil {
		return nil, err
	}
	schools, err := cat.Schools(ctx)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.School)
	if name == "" || strings.EqualFold(name, "all") {
		return packs.TextResult(catalog.FormatDepartments(schools)), nil
	}
	for _, s := range schools {
		if s.Name == name {
			return packs.TextResult(catalog.FormatDepartments([]catalog.School{s})), nil
		}
	}
	return nil, packs.InvalidArgument("school", "Unknown school: %q", name)
}

func (g *CatalogGroup) getCourse(ctx context.Context, _ *packs.CallContext, args json.RawMessage) (packs.Result, error) {
	var req getCourseRequest
	if err := packs.DecodeArgs(args, getCourseShape, &req); err != nil {
		return nil, err
	}
	id, err := courseID(req.CourseID)
	if err != nil {
		return nil, err
	}
	filters, err := catalog.BuildFilters(req.Terms, true, req.FilterArgs)
	if err != nil {
		return nil, err
	}

	cat, err := g.conn.Get()
	if err != nil {
		return nil, err
	}
	course, found, err := catalog.FindCourse(ctx, cat, id, filters)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, packs.InvalidArgument("course_id", "No matches found with course_id '%d'", id)
	}
	return packs.TextResult(catalog.FormatCourse(course)), nil
}

func (g *CatalogGroup) getSchedule(ctx context.Context, _ *packs.CallContext, args json.RawMessage) (packs.Result, error) {
	var req getScheduleRequest
	if err := packs.DecodeArgs(args, getScheduleShape, &req); err != nil {
		return nil, err
	}

	id, err := courseID(req.CourseID)
	if err != nil {
		return nil, err
	}

	filters := catalog.AllTermTokens()
	term := strings.TrimSpace(req.Term)
	if term != "" {
		tok, err := catalog.TermToken(term)
		if err != nil {
			return nil, packs.InvalidArgument("term", "Invalid term '%s'. Valid options: %s", term, strings.Join(catalog.Terms, ", "))
		}
		filters = []string{tok}
	}

	cat, err := g.conn.Get()
	if err != nil {
		return nil, err
	}
	course, found, err := catalog.FindCourse(ctx, cat, id, filters)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, packs.InvalidArgument("course_id", "No matches found with course_id '%d'", id)
	}

	sections := course.Sections
	if term != "" {
		sections = nil
		for _, s := range course.Sections {
			if s.InTerm(term) {
				sections = append(sections, s)
			}
		}
	}
	return packs.TextResult(catalog.FormatSchedule(course, sections)), nil
}

func (g *CatalogGroup) searchCourses(ctx context.Context, _ *packs.CallContext, args json.RawMessage) (packs.Result, error) {
	var req searchCoursesRequest
	if err := packs.DecodeArgs(args, searchCoursesShape, &req); err != nil {
		return nil, err
	}
	filters, err := catalog.BuildFilters(req.Terms, true, req.FilterArgs)
	if err != nil {
		return nil, err
	}

	cat, err := g.conn.Get()
	if err != nil {
		return nil, err
	}
	courses, err := cat.Search(ctx, req.Query, filters)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	b.WriteString(catalog.SearchNote)
	for _, c := range courses {
		b.WriteString("\n\n")
		b.WriteString(catalog.FormatSummary(c))
	}
	return packs.TextResult(b.String()), nil
}

func (g *CatalogGroup) checkConflicts(ctx context.Context, _ *packs.CallContext, args json.RawMessage) (packs.Result, error) {
	var req checkConflictsRequest
	if err := packs.DecodeArgs(args, checkConflictsShape, &req); err != nil {
		return nil, err
	}

	report, err := conflicts.Check(ctx, g.resolver, req.Selections)
	if err != nil {
		return nil, err
	}
	lines := report.Lines()
	res := packs.TextResult(lines[:len(lines)-len(report.Warnings)]...)
	for _, w := range report.Warnings {
		res = append(res, packs.Warning(w))
	}
	return res, nil
}
