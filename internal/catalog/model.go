// ABOUTME: ExploreCourses XML records for schools, courses, sections and schedules.
// ABOUTME: Field names follow the xml-20140630 view of the catalog API.

package catalog

import (
	"strings"
)

// Department is one academic department of a school.
type Department struct {
	Name string `xml:"longname,attr"`
	Code string `xml:"name,attr"`
}

// School groups departments.
type School struct {
	Name        string       `xml:"name,attr"`
	Departments []Department `xml:"department"`
}

type schoolsDoc struct {
	Schools []School `xml:"schools>school"`
}

// Objective is a learning objective of a course.
type Objective struct {
	Code        string `xml:"requirementCode"`
	Description string `xml:"description"`
}

// Tag is an organization-scoped course tag.
type Tag struct {
	Organization string `xml:"organization"`
	Name         string `xml:"name"`
}

// Attribute is a catalog attribute on a course or section.
type Attribute struct {
	Name          string `xml:"name"`
	Value         string `xml:"value"`
	Description   string `xml:"description"`
	CatalogPrint  string `xml:"catalogPrint"`
	SchedulePrint string `xml:"schedulePrint"`
}

// Instructor teaches a scheduled meeting.
type Instructor struct {
	Name      string `xml:"name"`
	FirstName string `xml:"firstName"`
	LastName  string `xml:"lastName"`
	SunetID   string `xml:"sunet"`
	Role      string `xml:"role"`
}

// IsPrimary reports whether the instructor is the primary instructor.
func (i Instructor) IsPrimary() bool {
	return strings.EqualFold(i.Role, "PI")
}

// Schedule is one recurring meeting pattern of a section.
type Schedule struct {
	StartDate   string       `xml:"startDate"`
	EndDate     string       `xml:"endDate"`
	StartTime   string       `xml:"startTime"`
	EndTime     string       `xml:"endTime"`
	Location    string       `xml:"location"`
	Days        string       `xml:"days"`
	Instructors []Instructor `xml:"instructors>instructor"`
}

// DayList splits the whitespace separated day names.
func (s Schedule) DayList() []string {
	return strings.Fields(s.Days)
}

// Section is one offering of a course in a term.
type Section struct {
	ClassID             int64       `xml:"classId"`
	Term                string      `xml:"term"`
	Units               string      `xml:"units"`
	SectionNumber       string      `xml:"sectionNumber"`
	Component           string      `xml:"component"`
	CurrentClassSize    int         `xml:"currentClassSize"`
	MaxClassSize        int         `xml:"maxClassSize"`
	CurrentWaitlistSize int         `xml:"currentWaitlistSize"`
	MaxWaitlistSize     int         `xml:"maxWaitlistSize"`
	Notes               string      `xml:"notes"`
	Schedules           []Schedule  `xml:"schedules>schedule"`
	Attributes          []Attribute `xml:"attributes>attribute"`
}

// InTerm reports whether the section's term ("2025-2026 Autumn") names term.
func (s Section) InTerm(term string) bool {
	fields := strings.Fields(s.Term)
	if len(fields) == 0 {
		return false
	}
	return strings.EqualFold(fields[len(fields)-1], strings.TrimSpace(term))
}

type adminInfo struct {
	CourseID        int64  `xml:"courseId"`
	EffectiveStatus string `xml:"effectiveStatus"`
	OfferNumber     string `xml:"offerNumber"`
	AcademicGroup   string `xml:"academicGroup"`
	AcademicOrg     string `xml:"academicOrganization"`
	AcademicCareer  string `xml:"academicCareer"`
	MaxUnitsRepeat  string `xml:"maxUnitsRepeat"`
	MaxTimesRepeat  string `xml:"maxTimesRepeat"`
}

// Course is a full catalog record.
type Course struct {
	Year         string      `xml:"year"`
	Subject      string      `xml:"subject"`
	Code         string      `xml:"code"`
	Title        string      `xml:"title"`
	Description  string      `xml:"description"`
	GERs         string      `xml:"gers"`
	Repeatable   string      `xml:"repeatable"`
	GradingBasis string      `xml:"grading"`
	UnitsMin     int         `xml:"unitsMin"`
	UnitsMax     int         `xml:"unitsMax"`
	Objectives   []Objective `xml:"learningObjectives>learningObjective"`
	FinalExam    string      `xml:"finalExamFlag"`
	Sections     []Section   `xml:"sections>section"`
	Admin        adminInfo   `xml:"administrativeInformation"`
	Attributes   []Attribute `xml:"attributes>attribute"`
	Tags         []Tag       `xml:"tags>tag"`
}

// ID returns the catalog course identifier.
func (c Course) ID() int64 {
	return c.Admin.CourseID
}

// Name returns the subject and code, e.g. "CS106A".
func (c Course) Name() string {
	return c.Subject + c.Code
}

// Active reports whether the course is in effect.
func (c Course) Active() bool {
	return c.Admin.EffectiveStatus == "A"
}

// GERList splits the comma separated general education requirements.
func (c Course) GERList() []string {
	var out []string
	for _, g := range strings.Split(c.GERs, ",") {
		if g = strings.TrimSpace(g); g != "" {
			out = append(out, g)
		}
	}
	return out
}

// Section returns the section with the given class id.
func (c Course) Section(classID int64) (Section, bool) {
	for _, s := range c.Sections {
		if s.ClassID == classID {
			return s, true
		}
	}
	return Section{}, false
}

type coursesDoc struct {
	Courses []Course `xml:"courses>course"`
}
