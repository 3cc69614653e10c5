// ABOUTME: ExploreCourses API client for schools and course searches.
// ABOUTME: Responses are fetched through the breaker-protected upstream fetcher and decoded from XML.

package catalog

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/2389/course-gateway/internal/packs"
	"github.com/2389/course-gateway/internal/upstream"
)

const (
	// DefaultBaseURL is the public ExploreCourses endpoint.
	DefaultBaseURL = "https://explorecourses.stanford.edu/"
	// DefaultAcademicYear is the catalog year queried when none is configured.
	DefaultAcademicYear = "2025-2026"

	xmlView = "xml-20140630"
)

// Catalog is the read surface handlers need from the course catalog.
type Catalog interface {
	Schools(ctx context.Context) ([]School, error)
	Search(ctx context.Context, query string, filters []string) ([]Course, error)
}

// ClientConfig configures a Client.
type ClientConfig struct {
	BaseURL      string
	AcademicYear string
	Fetcher      *upstream.Fetcher
}

// Client talks to ExploreCourses.
type Client struct {
	baseURL string
	year    string
	fetcher *upstream.Fetcher
}

var _ Catalog = (*Client)(nil)

// NewClient creates a Client.
func NewClient(cfg ClientConfig) (*Client, error) {
	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("invalid catalog base url: %w", err)
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	year := cfg.AcademicYear
	if year == "" {
		year = DefaultAcademicYear
	}
	fetcher := cfg.Fetcher
	if fetcher == nil {
		fetcher = upstream.New(upstream.Config{})
	}
	return &Client{baseURL: base, year: year, fetcher: fetcher}, nil
}

// AcademicYear returns the configured year, e.g. "2025-2026".
func (c *Client) AcademicYear() string {
	return c.year
}

func (c *Client) yearParam() string {
	return strings.ReplaceAll(c.year, "-", "")
}

// Schools lists every school and its departments.
func (c *Client) Schools(ctx context.Context) ([]School, error) {
	q := url.Values{}
	q.Set("view", xmlView)
	q.Set("academicYear", c.yearParam())

	body, err := c.fetcher.Get(ctx, upstream.Request{
		URL:       c.baseURL + "?" + q.Encode(),
		Accept:    "application/xml",
		Cacheable: true,
	})
	if err != nil {
		return nil, packs.Upstream(err, "Unable to fetch schools from ExploreCourses.")
	}

	var doc schoolsDoc
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, packs.Upstream(err, "Unable to read schools from ExploreCourses.")
	}
	return doc.Schools, nil
}

// Search runs a course query with ExploreCourses filter tokens.
func (c *Client) Search(ctx context.Context, query string, filters []string) ([]Course, error) {
	q := url.Values{}
	q.Set("view", xmlView)
	q.Set("academicYear", c.yearParam())
	q.Set("q", query)
	q.Set("filter-coursestatus-Active", "on")
	for _, f := range filters {
		q.Set(f, "on")
	}

	body, err := c.fetcher.Get(ctx, upstream.Request{
		URL:       c.baseURL + "search?" + q.Encode(),
		Accept:    "application/xml",
		Cacheable: true,
	})
	if err != nil {
		return nil, packs.Upstream(err, "Unable to fetch courses from ExploreCourses.")
	}

	var doc coursesDoc
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, packs.Upstream(err, "Unable to read courses from ExploreCourses.")
	}
	return doc.Courses, nil
}

// FindCourse searches for courseID and returns the exact match.
func FindCourse(ctx context.Context, cat Catalog, courseID int64, filters []string) (Course, bool, error) {
	courses, err := cat.Search(ctx, strconv.FormatInt(courseID, 10), filters)
	if err != nil {
		return Course{}, false, err
	}
	for _, c := range courses {
		if c.ID() == courseID {
			return c, true, nil
		}
	}
	return Course{}, false, nil
}
