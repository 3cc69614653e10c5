// ABOUTME: Maps user-facing filter values to ExploreCourses filter tokens.
// ABOUTME: Values are case-insensitive, aliases are accepted and duplicates collapse.

package catalog

import (
	"strings"

	"github.com/2389/course-gateway/internal/packs"
)

// Terms lists the valid term names in display order.
var Terms = []string{"Autumn", "Winter", "Spring", "Summer"}

var termTokens = map[string]string{
	"autumn": "filter-term-Autumn",
	"winter": "filter-term-Winter",
	"spring": "filter-term-Spring",
	"summer": "filter-term-Summer",
}

var ugTokens = map[string]string{
	"language":   "filter-ger-Language",
	"writing1":   "filter-ger-Writing1",
	"writing2":   "filter-ger-Writing2",
	"writingsle": "filter-ger-WritingSLE",
	"way_aii":    "filter-ger-WAYAII",
	"way_aqr":    "filter-ger-WAYAQR",
	"way_ce":     "filter-ger-WAYCE",
	"way_ed":     "filter-ger-WAYED",
	"way_er":     "filter-ger-WAYER",
	"way_fr":     "filter-ger-WAYFR",
	"way_si":     "filter-ger-WAYSI",
	"way_sma":    "filter-ger-WAYSMA",
}

var unitTokens = withAliases("units_", map[string]string{
	"1":   "filter-units-1",
	"2":   "filter-units-2",
	"3":   "filter-units-3",
	"4":   "filter-units-4",
	"5":   "filter-units-5",
	"gt5": "filter-units-gt5",
})

var timeTokens = withAliases("time_", map[string]string{
	"early_morning": "filter-time-0",
	"morning":       "filter-time-1",
	"lunchtime":     "filter-time-2",
	"afternoon":     "filter-time-3",
	"evening":       "filter-time-4",
})

var dayTokens = withAliases("day_", map[string]string{
	"sunday":    "filter-day-1",
	"monday":    "filter-day-2",
	"tuesday":   "filter-day-3",
	"wednesday": "filter-day-4",
	"thursday":  "filter-day-5",
	"friday":    "filter-day-6",
	"saturday":  "filter-day-7",
})

var careerTokens = withAliases("career_", map[string]string{
	"ug":  "filter-academiclevel-UG",
	"gr":  "filter-academiclevel-GR",
	"gsb": "filter-academiclevel-GSB",
	"law": "filter-academiclevel-LAW",
	"med": "filter-academiclevel-MED",
})

func withAliases(prefix string, m map[string]string) map[string]string {
	out := make(map[string]string, 2*len(m))
	for k, v := range m {
		out[k] = v
		out[prefix+k] = v
	}
	return out
}

// FilterArgs holds the optional filter lists shared by search-style commands.
type FilterArgs struct {
	UGReqs  []string `json:"ug_reqs"`
	Units   []string `json:"units"`
	Times   []string `json:"times"`
	Days    []string `json:"days"`
	Careers []string `json:"careers"`
}

type filterSet struct {
	tokens []string
	seen   map[string]bool
}

func (f *filterSet) add(tok string) {
	if !f.seen[tok] {
		f.seen[tok] = true
		f.tokens = append(f.tokens, tok)
	}
}

func (f *filterSet) extend(field string, values []string, mapping map[string]string) error {
	for _, v := range values {
		key := strings.ToLower(strings.TrimSpace(v))
		if key == "" {
			continue
		}
		tok, ok := mapping[key]
		if !ok {
			return packs.InvalidArgument(field, "invalid value %q", v)
		}
		f.add(tok)
	}
	return nil
}

// TermToken returns the filter token for one term name.
func TermToken(term string) (string, error) {
	tok, ok := termTokens[strings.ToLower(strings.TrimSpace(term))]
	if !ok {
		return "", packs.InvalidArgument("terms", "Invalid term '%s'. Valid options: %s", term, strings.Join(Terms, ", "))
	}
	return tok, nil
}

// AllTermTokens returns filter tokens for every term.
func AllTermTokens() []string {
	out := make([]string, 0, len(Terms))
	for _, t := range Terms {
		out = append(out, termTokens[strings.ToLower(t)])
	}
	return out
}

// BuildFilters converts terms and optional filters into ExploreCourses tokens.
// When requireTerms is set, terms must be non-empty.
func BuildFilters(terms []string, requireTerms bool, extra FilterArgs) ([]string, error) {
	fs := &filterSet{seen: make(map[string]bool)}

	if requireTerms && len(terms) == 0 {
		return nil, packs.InvalidArgument("terms", "must be a non-empty array of term names")
	}
	for _, t := range terms {
		tok, err := TermToken(t)
		if err != nil {
			return nil, err
		}
		fs.add(tok)
	}

	steps := []struct {
		field   string
		values  []string
		mapping map[string]string
	}{
		{"ug_reqs", extra.UGReqs, ugTokens},
		{"units", extra.Units, unitTokens},
		{"times", extra.Times, timeTokens},
		{"days", extra.Days, dayTokens},
		{"careers", extra.Careers, careerTokens},
	}
	for _, s := range steps {
		if err := fs.extend(s.field, s.values, s.mapping); err != nil {
			return nil, err
		}
	}
	return fs.tokens, nil
}
