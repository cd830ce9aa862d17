// Package recommend turns the six readiness results into a prioritized
// advice list. The rules live in one ordered table so each band can be
// audited and tested on its own; a mid-range category can legitimately
// contribute nothing.
package recommend

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/ai-readiness/backend/readiness"
)

// Priority is the closed severity scale for recommendations.
type Priority int

const (
	Critical Priority = iota
	High
	Medium
	Low
)

var priorityNames = map[Priority]string{
	Critical: "critical",
	High:     "high",
	Medium:   "medium",
	Low:      "low",
}

func (p Priority) String() string {
	if s, ok := priorityNames[p]; ok {
		return s
	}
	return "unknown"
}

// MarshalJSON encodes the priority as its lowercase name.
func (p Priority) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON decodes a lowercase priority name.
func (p *Priority) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	for prio, name := range priorityNames {
		if name == s {
			*p = prio
			return nil
		}
	}
	return fmt.Errorf("unknown priority %q", s)
}

// Recommendation is one piece of prioritized advice tied to a readiness
// category.
type Recommendation struct {
	Priority Priority `json:"priority"`
	Category string   `json:"category,omitempty"`
	Message  string   `json:"message"`
}

type rule struct {
	priority Priority
	category string
	message  string
	applies  func(r *readiness.Report) bool
}

func below(score func(*readiness.Report) int, limit int) func(*readiness.Report) bool {
	return func(r *readiness.Report) bool { return score(r) < limit }
}

func between(score func(*readiness.Report) int, lo, hi int) func(*readiness.Report) bool {
	return func(r *readiness.Report) bool { s := score(r); return s >= lo && s < hi }
}

func structuredData(r *readiness.Report) int { return r.StructuredData.Score }
func mobileFriendly(r *readiness.Report) int { return r.MobileFriendly.Score }
func accessibility(r *readiness.Report) int  { return r.Accessibility.Score }
func contentQuality(r *readiness.Report) int { return r.ContentQuality.Score }
func technicalSEO(r *readiness.Report) int   { return r.TechnicalSEO.Score }
func privacy(r *readiness.Report) int        { return r.Privacy.Score }

// The rule table, evaluated in order. Each matched rule contributes
// exactly one recommendation.
var rules = []rule{
	{
		priority: Critical,
		category: "Structured Data",
		message:  "Add JSON-LD structured data to help AI understand your content. Include schema.org markup for your page type.",
		applies:  below(structuredData, 30),
	},
	{
		priority: Critical,
		category: "Accessibility",
		message:  "Add alt text to all images and implement proper ARIA landmarks for better AI comprehension and accessibility.",
		applies:  below(accessibility, 30),
	},
	{
		priority: Critical,
		category: "Technical SEO",
		message:  "Ensure HTTPS is enabled, add meta description, and implement proper title tags for better discoverability.",
		applies:  below(technicalSEO, 50),
	},
	{
		priority: High,
		category: "Mobile-Friendly",
		message:  "Improve mobile responsiveness with proper viewport settings and responsive images.",
		applies:  between(mobileFriendly, 30, 60),
	},
	{
		priority: High,
		category: "Content Quality",
		message:  "Improve content structure with proper heading hierarchy (single H1, organized H2-H6) and add more substantial content.",
		applies:  between(contentQuality, 30, 60),
	},
	{
		priority: High,
		category: "Privacy Compliance",
		message:  "Add privacy policy and cookie consent mechanisms to comply with regulations.",
		applies:  between(privacy, 30, 60),
	},
	{
		priority: Medium,
		category: "Structured Data",
		message:  "Enhance structured data coverage by adding Open Graph and Twitter Card meta tags.",
		applies:  between(structuredData, 60, 80),
	},
	{
		priority: Medium,
		category: "Accessibility",
		message:  "Increase use of semantic HTML5 elements and improve keyboard navigation support.",
		applies:  between(accessibility, 60, 80),
	},
}

func allExcellent(r *readiness.Report) bool {
	for _, score := range []int{
		structuredData(r), mobileFriendly(r), accessibility(r),
		contentQuality(r), technicalSEO(r), privacy(r),
	} {
		if score < 80 {
			return false
		}
	}
	return true
}

// Generate evaluates the rule table against a readiness report and
// returns the matched recommendations stably sorted by priority rank.
func Generate(r *readiness.Report) []Recommendation {
	var recs []Recommendation

	for _, rl := range rules {
		if rl.applies(r) {
			recs = append(recs, Recommendation{
				Priority: rl.priority,
				Category: rl.category,
				Message:  rl.message,
			})
		}
	}

	if allExcellent(r) {
		recs = append(recs, Recommendation{
			Priority: Low,
			Category: "Optimization",
			Message:  "Your site has excellent AI readiness! Consider regular monitoring and staying updated with AI search best practices.",
		})
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Priority < recs[j].Priority
	})

	return recs
}

// FetchFailure is the single critical recommendation stored when the page
// cannot be retrieved at all.
func FetchFailure(reason string) Recommendation {
	return Recommendation{
		Priority: Critical,
		Message:  fmt.Sprintf("Unable to fetch website: %s", reason),
	}
}
