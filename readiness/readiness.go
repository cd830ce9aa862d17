// Package readiness grades a page's AI readiness across six categories,
// each scored 0-100 by a fixed point-additive rubric. Every check appends
// one finding, positive or advisory, so a result always explains its
// score.
package readiness

import (
	"fmt"
	"math"

	"github.com/ai-readiness/backend/patterns"
)

// Result is one category's outcome: the score, the raw facts the rubric
// extracted, and one human-readable finding per check.
type Result struct {
	Score    int                    `json:"score"`
	Details  map[string]interface{} `json:"details"`
	Findings []string               `json:"findings"`
}

// Report bundles the six category results with the overall mean.
type Report struct {
	Overall        int    `json:"overallScore"`
	StructuredData Result `json:"structuredData"`
	MobileFriendly Result `json:"mobileFriendly"`
	Accessibility  Result `json:"accessibility"`
	ContentQuality Result `json:"contentQuality"`
	TechnicalSEO   Result `json:"technicalSeo"`
	Privacy        Result `json:"privacy"`
}

// Analyze runs all six categories over the fetched HTML and computes the
// overall score.
func Analyze(html, url string) *Report {
	r := &Report{
		StructuredData: StructuredData(html),
		MobileFriendly: MobileFriendly(html),
		Accessibility:  Accessibility(html),
		ContentQuality: ContentQuality(html),
		TechnicalSEO:   TechnicalSEO(html, url),
		Privacy:        Privacy(html),
	}
	r.Overall = OverallScore(r)
	return r
}

// OverallScore is the rounded unweighted mean of the six category scores.
func OverallScore(r *Report) int {
	sum := r.StructuredData.Score +
		r.MobileFriendly.Score +
		r.Accessibility.Score +
		r.ContentQuality.Score +
		r.TechnicalSEO.Score +
		r.Privacy.Score
	return int(math.Round(float64(sum) / 6.0))
}

// StructuredData scores machine-readable markup: JSON-LD (40), Open Graph
// (30) and Twitter Cards (30).
func StructuredData(html string) Result {
	var findings []string
	score := 0

	jsonLD := patterns.JSONLDCount(html)
	if jsonLD > 0 {
		score += 40
		findings = append(findings, fmt.Sprintf("Found %d JSON-LD structured data block(s)", jsonLD))
	} else {
		findings = append(findings, "No JSON-LD structured data found")
	}

	og := patterns.OpenGraphCount(html)
	if og > 0 {
		score += 30
		findings = append(findings, fmt.Sprintf("Found %d Open Graph meta tag(s)", og))
	} else {
		findings = append(findings, "No Open Graph tags found")
	}

	twitter := patterns.TwitterCardCount(html)
	if twitter > 0 {
		score += 30
		findings = append(findings, fmt.Sprintf("Found %d Twitter Card meta tag(s)", twitter))
	} else {
		findings = append(findings, "No Twitter Card tags found")
	}

	return Result{
		Score: score,
		Details: map[string]interface{}{
			"jsonLdCount":      jsonLD,
			"openGraphCount":   og,
			"twitterCardCount": twitter,
		},
		Findings: findings,
	}
}

// MobileFriendly scores viewport configuration (40), responsive images
// (30) and media queries (30).
func MobileFriendly(html string) Result {
	var findings []string
	score := 0

	hasViewport := patterns.HasViewport(html)
	if hasViewport {
		score += 40
		findings = append(findings, "Viewport meta tag is present")
	} else {
		findings = append(findings, "Missing viewport meta tag")
	}

	responsive := patterns.ResponsiveImageCount(html)
	if responsive > 0 {
		score += 30
		findings = append(findings, "Uses responsive images with srcset")
	} else {
		findings = append(findings, "No responsive images detected")
	}

	mediaQueries := patterns.MediaQueryCount(html)
	if mediaQueries > 0 {
		score += 30
		findings = append(findings, "CSS media queries detected")
	} else {
		findings = append(findings, "No CSS media queries found in inline styles")
	}

	return Result{
		Score: score,
		Details: map[string]interface{}{
			"hasViewport":          hasViewport,
			"responsiveImageCount": responsive,
			"mediaQueryCount":      mediaQueries,
		},
		Findings: findings,
	}
}

// Accessibility scores alt-text coverage (35/20), ARIA landmarks (25) and
// semantic HTML5 structure (40/20).
func Accessibility(html string) Result {
	var findings []string
	score := 0

	images := patterns.ImageCount(html)
	withAlt := patterns.ImagesWithAltCount(html)
	ratio := patterns.AltTextRatio(html)
	pct := int(math.Round(ratio * 100))

	switch {
	case ratio >= 0.9:
		score += 35
		findings = append(findings, fmt.Sprintf("%d%% of images have alt text", pct))
	case ratio >= 0.5:
		score += 20
		findings = append(findings, fmt.Sprintf("Only %d%% of images have alt text", pct))
	default:
		findings = append(findings, fmt.Sprintf("Poor alt text coverage: %d%%", pct))
	}

	landmarks := patterns.ARIALandmarkCount(html)
	if landmarks > 0 {
		score += 25
		findings = append(findings, "ARIA landmarks detected for navigation")
	} else {
		findings = append(findings, "No ARIA landmarks found")
	}

	semantic := patterns.SemanticElementCount(html)
	switch {
	case semantic >= 3:
		score += 40
		findings = append(findings, "Good use of semantic HTML5 elements")
	case semantic > 0:
		score += 20
		findings = append(findings, "Limited use of semantic HTML5 elements")
	default:
		findings = append(findings, "No semantic HTML5 elements detected")
	}

	return Result{
		Score: score,
		Details: map[string]interface{}{
			"imageCount":           images,
			"imagesWithAltCount":   withAlt,
			"altTextRatio":         ratio,
			"ariaLandmarkCount":    landmarks,
			"semanticElementCount": semantic,
		},
		Findings: findings,
	}
}

// ContentQuality scores heading structure (30+30) and visible content
// length (40/20).
func ContentQuality(html string) Result {
	var findings []string
	score := 0

	h1s := patterns.H1Count(html)
	switch {
	case h1s == 1:
		score += 30
		findings = append(findings, "Single H1 tag found (good structure)")
	case h1s > 1:
		findings = append(findings, fmt.Sprintf("Multiple H1 tags found (%d)", h1s))
	default:
		findings = append(findings, "No H1 tag found")
	}

	headings := patterns.HeadingCount(html)
	if headings >= 3 {
		score += 30
		findings = append(findings, "Good heading hierarchy detected")
	} else {
		findings = append(findings, "Limited heading structure")
	}

	words := patterns.VisibleWordCount(html)
	switch {
	case words >= 300:
		score += 40
		findings = append(findings, fmt.Sprintf("Substantial content detected (~%d words)", words))
	case words >= 100:
		score += 20
		findings = append(findings, fmt.Sprintf("Moderate content length (~%d words)", words))
	default:
		findings = append(findings, fmt.Sprintf("Thin content detected (~%d words)", words))
	}

	return Result{
		Score: score,
		Details: map[string]interface{}{
			"h1Count":            h1s,
			"totalHeadings":      headings,
			"estimatedWordCount": words,
		},
		Findings: findings,
	}
}

// TechnicalSEO scores HTTPS, meta description, title and canonical link,
// 25 points each.
func TechnicalSEO(html, url string) Result {
	var findings []string
	score := 0

	https := patterns.UsesHTTPS(url)
	if https {
		score += 25
		findings = append(findings, "Site uses HTTPS")
	} else {
		findings = append(findings, "Site does not use HTTPS")
	}

	hasDesc := patterns.HasMetaDescription(html)
	if hasDesc {
		score += 25
		findings = append(findings, "Meta description tag present")
	} else {
		findings = append(findings, "Missing meta description tag")
	}

	hasTitle := patterns.HasNonEmptyTitle(html)
	if hasTitle {
		score += 25
		findings = append(findings, "Title tag present")
	} else {
		findings = append(findings, "Missing or empty title tag")
	}

	hasCanonical := patterns.HasCanonical(html)
	if hasCanonical {
		score += 25
		findings = append(findings, "Canonical URL specified")
	} else {
		findings = append(findings, "No canonical URL specified")
	}

	return Result{
		Score: score,
		Details: map[string]interface{}{
			"usesHttps":          https,
			"hasMetaDescription": hasDesc,
			"hasTitle":           hasTitle,
			"hasCanonical":       hasCanonical,
		},
		Findings: findings,
	}
}

// Privacy scores a privacy-policy link (40), a cookie-consent signal (30)
// and GDPR wording (30).
func Privacy(html string) Result {
	var findings []string
	score := 0

	hasPolicy := patterns.HasPrivacyPolicyLink(html)
	if hasPolicy {
		score += 40
		findings = append(findings, "Privacy policy link found")
	} else {
		findings = append(findings, "No privacy policy link detected")
	}

	hasConsent := patterns.HasCookieConsent(html)
	if hasConsent {
		score += 30
		findings = append(findings, "Cookie consent mechanism detected")
	} else {
		findings = append(findings, "No cookie consent mechanism found")
	}

	hasGDPR := patterns.HasGDPRReferences(html)
	if hasGDPR {
		score += 30
		findings = append(findings, "GDPR/data protection references found")
	} else {
		findings = append(findings, "No GDPR/data protection references")
	}

	return Result{
		Score: score,
		Details: map[string]interface{}{
			"hasPrivacyPolicy": hasPolicy,
			"hasCookieConsent": hasConsent,
			"hasGdprReferences": hasGDPR,
		},
		Findings: findings,
	}
}
