// Package aeo computes an answer-engine-optimization visibility score:
// six categories scored 0-10 and folded into a weighted 0-100 composite.
//
// Five categories are bonus-based (start at 0, add, clamp at 10);
// crawlability is penalty-based (start at 10, subtract, floor at 0) since
// crawl defects are regressions from an assumed-good baseline. All
// categories append to one shared collector so the schemas and issues of
// a run land in two flat lists.
package aeo

import (
	"fmt"
	"math"
	"strings"

	"github.com/ai-readiness/backend/patterns"
)

// Category weights for the composite. They sum to 1.00.
const (
	structuredDataWeight  = 0.25
	snippetOptWeight      = 0.15
	crawlabilityWeight    = 0.20
	featuredSnippetWeight = 0.10
	contentQualityWeight  = 0.20
	technicalSEOWeight    = 0.10
)

// Collector accumulates the schema types and issues discovered by the
// category analyzers of one run. Appends are insertion-ordered and
// duplicates are kept.
type Collector struct {
	Schemas []string
	Issues  []string
}

// AddSchema records a discovered schema type name.
func (c *Collector) AddSchema(name string) { c.Schemas = append(c.Schemas, name) }

// AddIssue records an issue message.
func (c *Collector) AddIssue(msg string) { c.Issues = append(c.Issues, msg) }

// ModelAccess reports how many of the three access tiers a page unlocks
// for AI models. A coarse proxy, not a measured fact.
type ModelAccess struct {
	Accessible int `json:"accessible"`
	Total      int `json:"total"`
}

// String renders the ladder in its stored "n/3" form.
func (m ModelAccess) String() string {
	return fmt.Sprintf("%d/%d", m.Accessible, m.Total)
}

// Analysis is the complete AEO outcome for one page.
type Analysis struct {
	StructuredDataScore  int         `json:"structuredDataScore"`
	SnippetOptScore      int         `json:"snippetOptScore"`
	CrawlabilityScore    int         `json:"crawlabilityScore"`
	FeaturedSnippetScore int         `json:"featuredSnippetScore"`
	ContentQualityScore  int         `json:"contentQualityScore"`
	TechnicalSEOScore    int         `json:"technicalSeoScore"`
	SchemasFound         []string    `json:"schemasFound"`
	Issues               []string    `json:"issues"`
	AIModelAccess        ModelAccess `json:"aiModelAccess"`
}

// Analyze evaluates the six categories sequentially against one shared
// collector and derives the access ladder.
func Analyze(html, url string) *Analysis {
	c := &Collector{}

	a := &Analysis{
		StructuredDataScore:  StructuredData(html, c),
		SnippetOptScore:      SnippetOptimization(html, c),
		CrawlabilityScore:    Crawlability(html, url, c),
		FeaturedSnippetScore: FeaturedSnippetReadiness(html, c),
		ContentQualityScore:  ContentQuality(html, c),
		TechnicalSEOScore:    TechnicalSEO(html, url, c),
	}
	a.SchemasFound = c.Schemas
	a.Issues = c.Issues
	a.AIModelAccess = AccessLadder(a.StructuredDataScore, a.CrawlabilityScore, a.TechnicalSEOScore)
	return a
}

// Composite is the weighted sum of the six category scores scaled to
// 0-100, rounded to two decimals.
func Composite(a *Analysis) float64 {
	weighted := (float64(a.StructuredDataScore)*structuredDataWeight +
		float64(a.SnippetOptScore)*snippetOptWeight +
		float64(a.CrawlabilityScore)*crawlabilityWeight +
		float64(a.FeaturedSnippetScore)*featuredSnippetWeight +
		float64(a.ContentQualityScore)*contentQualityWeight +
		float64(a.TechnicalSEOScore)*technicalSEOWeight) * 10

	return math.Round(weighted*100) / 100
}

// StructuredData rewards JSON-LD presence (+3) and specific schema types:
// breadcrumbs (+2), FAQ (+2), article forms (+2), organization (+1).
func StructuredData(html string, c *Collector) int {
	score := 0

	if patterns.JSONLDCount(html) > 0 {
		score += 3
		for _, t := range patterns.SchemaTypes(html) {
			c.AddSchema(t)
		}
	} else {
		c.AddIssue("Missing Schema.org structured data (JSON-LD)")
	}

	if patterns.HasBreadcrumbSchema(html) {
		score += 2
	} else {
		c.AddIssue("No breadcrumb schema found")
	}

	if patterns.HasFAQSchema(html) {
		score += 2
	}

	if patterns.HasArticleSchema(html) {
		score += 2
	}

	if patterns.HasOrganizationSchema(html) {
		score += 1
	}

	return min10(score)
}

// SnippetOptimization rewards a well-sized meta description (+3, or +1
// when present but off-length), a well-sized title (+3/+1), question
// headings (+2) and list usage (+2/+1).
func SnippetOptimization(html string, c *Collector) int {
	score := 0

	if desc, ok := patterns.MetaDescription(html); ok && desc != "" {
		n := len(desc)
		if n >= 120 && n <= 160 {
			score += 3
		} else {
			score += 1
			c.AddIssue("Meta description length not optimal (should be 120-160 characters)")
		}
	} else {
		c.AddIssue("Missing meta description")
	}

	if title, ok := patterns.Title(html); ok && title != "" {
		n := len(strings.TrimSpace(title))
		if n >= 30 && n <= 60 {
			score += 3
		} else if n > 0 {
			score += 1
			c.AddIssue("Title tag length not optimal (should be 30-60 characters)")
		}
	} else {
		c.AddIssue("Missing title tag")
	}

	if patterns.QuestionHeadingCount(html) > 0 {
		score += 2
	}

	lists := patterns.ListCount(html)
	if lists >= 2 {
		score += 2
	} else if lists > 0 {
		score += 1
	}

	return min10(score)
}

// Crawlability starts at 10 and penalizes indexing blocks (-5), a missing
// sitemap reference (-1), a missing canonical (-2) and plain HTTP (-2).
func Crawlability(html, url string, c *Collector) int {
	score := 10

	if patterns.BlocksIndexing(html) {
		score -= 5
		c.AddIssue("Robots meta tag blocking indexing")
	}

	if !patterns.MentionsSitemap(html) {
		score -= 1
		c.AddIssue("No sitemap reference found")
	}

	if !patterns.HasCanonical(html) {
		score -= 2
		c.AddIssue("Missing canonical URL")
	}

	if !patterns.UsesHTTPS(url) {
		score -= 2
		c.AddIssue("Not using HTTPS")
	}

	return max0(score)
}

// FeaturedSnippetReadiness rewards a 40-60 word answer paragraph (+3),
// tables (+2), definition lists (+2), ordered lists (+2) and question
// headings (+1).
func FeaturedSnippetReadiness(html string, c *Collector) int {
	score := 0

	if patterns.HasSnippetParagraph(html) {
		score += 3
	} else {
		c.AddIssue("No concise answer paragraphs (40-60 words) for featured snippets")
	}

	if patterns.TableCount(html) > 0 {
		score += 2
	}

	if patterns.DefinitionListCount(html) > 0 {
		score += 2
	}

	if patterns.OrderedListCount(html) > 0 {
		score += 2
	}

	if patterns.AnswerHeadingCount(html) > 0 {
		score += 1
	}

	return min10(score)
}

// ContentQuality rewards a single H1 (+2), developed H2/H3 structure
// (+2/+1), content depth (+3/+2/+1) and descriptive alt coverage (+2).
func ContentQuality(html string, c *Collector) int {
	score := 0

	h1s := patterns.H1Count(html)
	switch {
	case h1s == 1:
		score += 2
	case h1s == 0:
		c.AddIssue("Missing H1 heading")
	default:
		c.AddIssue("Multiple H1 headings found")
	}

	if patterns.H2Count(html) >= 2 {
		score += 2
	}
	if patterns.H3Count(html) >= 1 {
		score += 1
	}

	words := patterns.VisibleWordCount(html)
	switch {
	case words >= 1000:
		score += 3
	case words >= 500:
		score += 2
	case words >= 300:
		score += 1
	default:
		c.AddIssue("Thin content - needs more comprehensive information")
	}

	images := patterns.ImageCount(html)
	descriptive := patterns.ImagesWithDescriptiveAltCount(html)
	if images > 0 && float64(descriptive)/float64(images) >= 0.8 {
		score += 2
	} else if images > 0 {
		c.AddIssue("Images missing descriptive alt text")
	}

	return min10(score)
}

// TechnicalSEO rewards HTTPS (+2), viewport (+2), lazy loading (+1),
// async scripts (+1), a sitemap mention (+1), hreflang (+1) and Open
// Graph coverage (+2/+1).
func TechnicalSEO(html, url string, c *Collector) int {
	score := 0

	if patterns.UsesHTTPS(url) {
		score += 2
	} else {
		c.AddIssue("Not using HTTPS")
	}

	if patterns.HasViewport(html) {
		score += 2
	} else {
		c.AddIssue("Missing viewport meta tag")
	}

	if patterns.HasLazyLoading(html) {
		score += 1
	}
	if patterns.AsyncScriptCount(html) > 0 {
		score += 1
	}

	if patterns.MentionsSitemap(html) {
		score += 1
	}

	if patterns.HasHreflang(html) {
		score += 1
	}

	og := patterns.OpenGraphCount(html)
	if og >= 4 {
		score += 2
	} else if og > 0 {
		score += 1
	} else {
		c.AddIssue("Missing Open Graph tags")
	}

	return min10(score)
}

// AccessLadder unlocks tiers cumulatively: crawlable (crawlability>=7),
// structured (plus structuredData>=5), fully optimized (structuredData>=7,
// crawlability>=8, technicalSeo>=7).
func AccessLadder(structuredData, crawlability, technicalSEO int) ModelAccess {
	access := ModelAccess{Total: 3}

	if crawlability >= 7 {
		access.Accessible++
	}
	if structuredData >= 5 && crawlability >= 7 {
		access.Accessible++
	}
	if structuredData >= 7 && crawlability >= 8 && technicalSEO >= 7 {
		access.Accessible++
	}

	return access
}

func min10(n int) int {
	if n > 10 {
		return 10
	}
	return n
}

func max0(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
