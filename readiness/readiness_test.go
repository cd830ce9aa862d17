package readiness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const richPage = `<!DOCTYPE html>
<html>
<head>
	<title>Example Article</title>
	<meta name="description" content="An example article about AI readiness">
	<meta name="viewport" content="width=device-width, initial-scale=1">
	<meta property="og:title" content="Example Article">
	<meta name="twitter:card" content="summary">
	<link rel="canonical" href="https://example.com/article">
	<script type="application/ld+json">{"@type":"Article","headline":"Example"}</script>
	<style>@media (max-width: 600px) { body { font-size: 14px; } }</style>
</head>
<body>
	<header><nav role="navigation"><a href="/privacy">Privacy Policy</a></nav></header>
	<main role="main">
		<h1>Example Article</h1>
		<h2>Introduction</h2>
		<h3>Background</h3>
		<img src="a.jpg" alt="A diagram">
		<img src="b.jpg" alt="A chart" srcset="b-small.jpg 480w">
		<p>We use cookie banners and a consent dialog. Cookie settings let you
		withdraw consent at any time, as required by GDPR.</p>
	</main>
	<footer>Footer</footer>
</body>
</html>`

const emptyPage = `<html><head></head><body></body></html>`

func TestAnalyzeRichPage(t *testing.T) {
	r := Analyze(richPage, "https://example.com/article")

	assert.Equal(t, 100, r.StructuredData.Score)
	assert.Equal(t, 100, r.MobileFriendly.Score)
	assert.Equal(t, 100, r.Accessibility.Score)
	assert.Equal(t, 100, r.TechnicalSEO.Score)
	assert.Equal(t, 100, r.Privacy.Score)

	// Thin content: single H1 (30) + 3 headings (30), word count below 100.
	assert.Equal(t, 60, r.ContentQuality.Score)

	assert.Equal(t, OverallScore(r), r.Overall)
	assert.Equal(t, 93, r.Overall) // round(560/6)
}

func TestAnalyzeEmptyPage(t *testing.T) {
	r := Analyze(emptyPage, "http://example.com")

	assert.Equal(t, 0, r.StructuredData.Score)
	assert.Equal(t, 0, r.MobileFriendly.Score)
	assert.Equal(t, 0, r.Accessibility.Score)
	assert.Equal(t, 0, r.ContentQuality.Score)
	assert.Equal(t, 0, r.TechnicalSEO.Score)
	assert.Equal(t, 0, r.Privacy.Score)
	assert.Equal(t, 0, r.Overall)
}

func TestAnalyzeIsDeterministic(t *testing.T) {
	first := Analyze(richPage, "https://example.com/article")
	second := Analyze(richPage, "https://example.com/article")

	assert.Equal(t, first, second)
}

func TestStructuredDataSingleJSONLD(t *testing.T) {
	html := `<script type="application/ld+json">{"@type":"Article"}</script>`
	res := StructuredData(html)

	assert.Equal(t, 40, res.Score)
	assert.Contains(t, res.Findings, "Found 1 JSON-LD structured data block(s)")
	assert.Contains(t, res.Findings, "No Open Graph tags found")
	assert.Contains(t, res.Findings, "No Twitter Card tags found")
	assert.Equal(t, 1, res.Details["jsonLdCount"])
}

func TestStructuredDataNothingFound(t *testing.T) {
	res := StructuredData("<html></html>")

	assert.Equal(t, 0, res.Score)
	assert.Contains(t, res.Findings, "No JSON-LD structured data found")
}

func TestMobileFriendlyViewportOnly(t *testing.T) {
	res := MobileFriendly(`<meta name="viewport" content="width=device-width">`)

	assert.Equal(t, 40, res.Score)
	assert.Contains(t, res.Findings, "Viewport meta tag is present")
	assert.Contains(t, res.Findings, "No responsive images detected")
	assert.Contains(t, res.Findings, "No CSS media queries found in inline styles")
}

func TestAccessibilityNoImages(t *testing.T) {
	// No images count as zero coverage, not full coverage.
	res := Accessibility(`<main role="main"><p>text</p></main>`)

	assert.Contains(t, res.Findings, "Poor alt text coverage: 0%")
	assert.Equal(t, 0.0, res.Details["altTextRatio"])
	// Only the ARIA landmark scores.
	assert.Equal(t, 25, res.Score)
}

func TestAccessibilityAltBands(t *testing.T) {
	full := `<img src="a.jpg" alt="one"><img src="b.jpg" alt="two">`
	half := `<img src="a.jpg" alt="one"><img src="b.jpg">`
	poor := `<img src="a.jpg"><img src="b.jpg"><img src="c.jpg" alt="x">`

	assert.Contains(t, Accessibility(full).Findings, "100% of images have alt text")
	assert.Contains(t, Accessibility(half).Findings, "Only 50% of images have alt text")
	assert.Contains(t, Accessibility(poor).Findings, "Poor alt text coverage: 33%")
}

func TestContentQualityHeadings(t *testing.T) {
	multi := ContentQuality("<h1>a</h1><h1>b</h1>")
	assert.Contains(t, multi.Findings, "Multiple H1 tags found (2)")

	none := ContentQuality("<p>no headings</p>")
	assert.Contains(t, none.Findings, "No H1 tag found")

	single := ContentQuality("<h1>a</h1><h2>b</h2><h3>c</h3>")
	assert.Contains(t, single.Findings, "Single H1 tag found (good structure)")
	assert.Contains(t, single.Findings, "Good heading hierarchy detected")
	assert.Equal(t, 60, single.Score)
}

func TestContentQualityWordBands(t *testing.T) {
	word := func(n int) string {
		body := "<body><h1>t</h1><h2>a</h2><h3>b</h3><p>"
		for i := 0; i < n; i++ {
			body += "word "
		}
		return body + "</p></body>"
	}

	// 3 base words from the headings push each band over its edge.
	substantial := ContentQuality(word(300))
	assert.Equal(t, 100, substantial.Score)

	moderate := ContentQuality(word(100))
	assert.Equal(t, 80, moderate.Score)

	thin := ContentQuality(word(10))
	assert.Equal(t, 60, thin.Score)
}

func TestTechnicalSEO(t *testing.T) {
	html := `<title>Page</title>
		<meta name="description" content="desc">
		<link rel="canonical" href="https://example.com/">`

	full := TechnicalSEO(html, "https://example.com")
	assert.Equal(t, 100, full.Score)

	noTLS := TechnicalSEO(html, "http://example.com")
	assert.Equal(t, 75, noTLS.Score)
	assert.Contains(t, noTLS.Findings, "Site does not use HTTPS")
	assert.Equal(t, false, noTLS.Details["usesHttps"])
}

func TestPrivacy(t *testing.T) {
	html := `<a href="/privacy">Privacy</a>
		<p>cookie cookie consent consent GDPR</p>`
	res := Privacy(html)

	require.Equal(t, 100, res.Score)
	assert.Contains(t, res.Findings, "Privacy policy link found")
	assert.Contains(t, res.Findings, "Cookie consent mechanism detected")
	assert.Contains(t, res.Findings, "GDPR/data protection references found")

	bare := Privacy("<html></html>")
	assert.Equal(t, 0, bare.Score)
	assert.Contains(t, bare.Findings, "No cookie consent mechanism found")
}

func TestAddingSignalsNeverLowersScores(t *testing.T) {
	base := `<html><head><title>Page</title></head><body><p>text</p></body></html>`
	enriched := `<html><head><title>Page</title>
		<script type="application/ld+json">{"@type":"Article"}</script>
		<meta property="og:title" content="Page">
		<meta name="viewport" content="width=device-width">
		<link rel="canonical" href="https://example.com/">
	</head><body><p>text</p></body></html>`

	before := Analyze(base, "https://example.com")
	after := Analyze(enriched, "https://example.com")

	assert.GreaterOrEqual(t, after.StructuredData.Score, before.StructuredData.Score)
	assert.GreaterOrEqual(t, after.MobileFriendly.Score, before.MobileFriendly.Score)
	assert.GreaterOrEqual(t, after.TechnicalSEO.Score, before.TechnicalSEO.Score)
	assert.GreaterOrEqual(t, after.Overall, before.Overall)
}

func TestOverallScoreIsRoundedMean(t *testing.T) {
	r := &Report{
		StructuredData: Result{Score: 100},
		MobileFriendly: Result{Score: 100},
		Accessibility:  Result{Score: 100},
		ContentQuality: Result{Score: 0},
		TechnicalSEO:   Result{Score: 0},
		Privacy:        Result{Score: 0},
	}

	assert.Equal(t, 50, OverallScore(r))

	r.ContentQuality.Score = 1
	assert.Equal(t, 50, OverallScore(r)) // 301/6 = 50.17
}
