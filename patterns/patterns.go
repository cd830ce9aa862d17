// Package patterns is a library of named text predicates over raw HTML.
//
// Every predicate is a single case-insensitive scan of the whole document
// string. No DOM is built: the scans deliberately tolerate malformed
// markup and will match inside comments or script bodies. Category scores
// depend on these exact match semantics, so the expressions mirror the
// rubric one-to-one and must not be "fixed" with a structural parser.
package patterns

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	jsonLDRe        = regexp.MustCompile(`(?is)<script[^>]*type=["']application/ld\+json["'][^>]*>(.*?)</script>`)
	scriptTagRe     = regexp.MustCompile(`(?i)<script[^>]*>|</script>`)
	openGraphRe     = regexp.MustCompile(`(?i)<meta[^>]*property=["']og:[^"']*["'][^>]*>`)
	twitterCardRe   = regexp.MustCompile(`(?i)<meta[^>]*name=["']twitter:[^"']*["'][^>]*>`)
	viewportRe      = regexp.MustCompile(`(?i)<meta[^>]*name=["']viewport["'][^>]*>`)
	srcsetImgRe     = regexp.MustCompile(`(?i)<img[^>]*srcset=[^>]*>`)
	mediaQueryRe    = regexp.MustCompile(`(?i)@media[^{]*\{`)
	imgRe           = regexp.MustCompile(`(?i)<img[^>]*>`)
	imgWithAltRe    = regexp.MustCompile(`(?i)<img[^>]*alt=["'][^"']*["'][^>]*>`)
	imgAltNonEmptyRe = regexp.MustCompile(`(?i)<img[^>]*alt=["'][^"']+["'][^>]*>`)
	ariaLandmarkRe  = regexp.MustCompile(`(?i)role=["'](main|navigation|banner|complementary|contentinfo)["']`)
	semanticRe      = regexp.MustCompile(`(?i)<(header|nav|main|article|section|aside|footer)[^>]*>`)
	h1Re            = regexp.MustCompile(`(?i)<h1[^>]*>`)
	h2Re            = regexp.MustCompile(`(?i)<h2[^>]*>`)
	h3Re            = regexp.MustCompile(`(?i)<h3[^>]*>`)
	headingRe       = regexp.MustCompile(`(?i)<h[1-6][^>]*>`)
	bodyRe          = regexp.MustCompile(`(?is)<body[^>]*>(.*)</body>`)
	tagRe           = regexp.MustCompile(`<[^>]*>`)
	spaceRe         = regexp.MustCompile(`\s+`)
	metaDescRe      = regexp.MustCompile(`(?i)<meta[^>]*name=["']description["'][^>]*>`)
	metaDescContentRe = regexp.MustCompile(`(?i)<meta[^>]*name=["']description["'][^>]*content=["']([^"']*)["']`)
	titleRe         = regexp.MustCompile(`(?i)<title[^>]*>([^<]*)</title>`)
	canonicalRe     = regexp.MustCompile(`(?i)<link[^>]*rel=["']canonical["'][^>]*>`)
	privacyLinkRe   = regexp.MustCompile(`(?i)href=["'][^"']*privacy[^"']*["']`)
	cookieConsentRe = regexp.MustCompile(`(?i)cookie|consent`)
	gdprRe          = regexp.MustCompile(`(?i)GDPR|General Data Protection|data protection`)
	robotsMetaRe    = regexp.MustCompile(`(?i)<meta[^>]*name=["']robots["'][^>]*content=["']([^"']*)["']`)
	sitemapRe       = regexp.MustCompile(`(?i)sitemap\.xml`)
	breadcrumbRe    = regexp.MustCompile(`(?i)"@type"\s*:\s*"BreadcrumbList"`)
	faqRe           = regexp.MustCompile(`(?i)"@type"\s*:\s*"FAQPage"`)
	articleRe       = regexp.MustCompile(`(?i)"@type"\s*:\s*"(Article|BlogPosting|NewsArticle)"`)
	organizationRe  = regexp.MustCompile(`(?i)"@type"\s*:\s*"Organization"`)
	questionH23Re   = regexp.MustCompile(`(?i)<h[2-3][^>]*>(what|why|how|when|where|who)[^<]*\?</h[2-3]>`)
	questionH24Re   = regexp.MustCompile(`(?i)<h[2-4][^>]*>[^<]*(what|why|how|when|where|who)[^<]*\?[^<]*</h[2-4]>`)
	listRe          = regexp.MustCompile(`(?i)<(ul|ol)[^>]*>`)
	tableRe         = regexp.MustCompile(`(?i)<table[^>]*>`)
	dlRe            = regexp.MustCompile(`(?i)<dl[^>]*>`)
	olRe            = regexp.MustCompile(`(?i)<ol[^>]*>`)
	paragraphRe     = regexp.MustCompile(`(?i)<p[^>]*>([^<]+)</p>`)
	lazyLoadRe      = regexp.MustCompile(`(?i)loading=["']lazy["']`)
	asyncScriptRe   = regexp.MustCompile(`(?i)<script[^>]*async`)
	hreflangRe      = regexp.MustCompile(`(?i)<link[^>]*hreflang=`)
)

// JSONLDCount returns the number of JSON-LD script blocks in the document.
func JSONLDCount(html string) int {
	return len(jsonLDRe.FindAllString(html, -1))
}

// SchemaTypes extracts the "@type" of each well-formed JSON-LD block, in
// document order. Blocks that fail to parse, or whose @type is not a
// string, are skipped without error.
func SchemaTypes(html string) []string {
	var types []string
	for _, block := range jsonLDRe.FindAllString(html, -1) {
		raw := strings.TrimSpace(scriptTagRe.ReplaceAllString(block, ""))
		var data map[string]interface{}
		if err := json.Unmarshal([]byte(raw), &data); err != nil {
			continue
		}
		if t, ok := data["@type"].(string); ok {
			types = append(types, t)
		}
	}
	return types
}

// OpenGraphCount counts <meta property="og:*"> tags.
func OpenGraphCount(html string) int {
	return len(openGraphRe.FindAllString(html, -1))
}

// TwitterCardCount counts <meta name="twitter:*"> tags.
func TwitterCardCount(html string) int {
	return len(twitterCardRe.FindAllString(html, -1))
}

// HasViewport reports whether a viewport meta tag is present.
func HasViewport(html string) bool {
	return viewportRe.MatchString(html)
}

// ResponsiveImageCount counts <img> tags carrying a srcset attribute.
func ResponsiveImageCount(html string) int {
	return len(srcsetImgRe.FindAllString(html, -1))
}

// MediaQueryCount counts "@media ... {" openings in embedded style text.
func MediaQueryCount(html string) int {
	return len(mediaQueryRe.FindAllString(html, -1))
}

// ImageCount counts all <img> tags.
func ImageCount(html string) int {
	return len(imgRe.FindAllString(html, -1))
}

// ImagesWithAltCount counts <img> tags declaring an alt attribute, empty
// values included.
func ImagesWithAltCount(html string) int {
	return len(imgWithAltRe.FindAllString(html, -1))
}

// ImagesWithDescriptiveAltCount counts <img> tags whose alt text is
// non-empty.
func ImagesWithDescriptiveAltCount(html string) int {
	return len(imgAltNonEmptyRe.FindAllString(html, -1))
}

// AltTextRatio is ImagesWithAltCount over ImageCount, defined as 0 when
// the page has no images.
func AltTextRatio(html string) float64 {
	total := ImageCount(html)
	if total == 0 {
		return 0
	}
	return float64(ImagesWithAltCount(html)) / float64(total)
}

// ARIALandmarkCount counts role attributes naming a navigation landmark.
func ARIALandmarkCount(html string) int {
	return len(ariaLandmarkRe.FindAllString(html, -1))
}

// SemanticElementCount counts opening tags of the HTML5 sectioning
// elements (header, nav, main, article, section, aside, footer).
func SemanticElementCount(html string) int {
	return len(semanticRe.FindAllString(html, -1))
}

// H1Count counts <h1> opening tags.
func H1Count(html string) int { return len(h1Re.FindAllString(html, -1)) }

// H2Count counts <h2> opening tags.
func H2Count(html string) int { return len(h2Re.FindAllString(html, -1)) }

// H3Count counts <h3> opening tags.
func H3Count(html string) int { return len(h3Re.FindAllString(html, -1)) }

// HeadingCount counts all <h1>..<h6> opening tags.
func HeadingCount(html string) int {
	return len(headingRe.FindAllString(html, -1))
}

// VisibleWordCount approximates the visible word count: the <body> slice
// (or the whole document when no body tag matches) is stripped of tags,
// whitespace is collapsed, and the remaining tokens are counted.
func VisibleWordCount(html string) int {
	content := html
	if m := bodyRe.FindStringSubmatch(html); m != nil {
		content = m[1]
	}
	text := tagRe.ReplaceAllString(content, " ")
	text = strings.TrimSpace(spaceRe.ReplaceAllString(text, " "))
	return len(strings.Fields(text))
}

// HasMetaDescription reports whether a description meta tag is present.
func HasMetaDescription(html string) bool {
	return metaDescRe.MatchString(html)
}

// MetaDescription returns the content of the description meta tag, when
// the tag declares content inline.
func MetaDescription(html string) (string, bool) {
	if m := metaDescContentRe.FindStringSubmatch(html); m != nil {
		return m[1], true
	}
	return "", false
}

// Title returns the inner text of the <title> tag.
func Title(html string) (string, bool) {
	if m := titleRe.FindStringSubmatch(html); m != nil {
		return m[1], true
	}
	return "", false
}

// HasNonEmptyTitle reports whether a <title> tag with non-blank content
// exists.
func HasNonEmptyTitle(html string) bool {
	t, ok := Title(html)
	return ok && strings.TrimSpace(t) != ""
}

// HasCanonical reports whether a canonical link tag is present.
func HasCanonical(html string) bool {
	return canonicalRe.MatchString(html)
}

// HasPrivacyPolicyLink reports whether any href contains "privacy".
func HasPrivacyPolicyLink(html string) bool {
	return privacyLinkRe.MatchString(html)
}

// CookieConsentSignals counts raw occurrences of "cookie" or "consent"
// anywhere in the document.
func CookieConsentSignals(html string) int {
	return len(cookieConsentRe.FindAllString(html, -1))
}

// HasCookieConsent applies the rubric's crude threshold: more than three
// cookie/consent mentions count as a consent mechanism.
func HasCookieConsent(html string) bool {
	return CookieConsentSignals(html) > 3
}

// HasGDPRReferences reports whether GDPR or data-protection wording
// appears in the document.
func HasGDPRReferences(html string) bool {
	return gdprRe.MatchString(html)
}

// RobotsDirectives returns the content of the robots meta tag.
func RobotsDirectives(html string) (string, bool) {
	if m := robotsMetaRe.FindStringSubmatch(html); m != nil {
		return m[1], true
	}
	return "", false
}

// BlocksIndexing reports whether the robots meta tag carries a noindex or
// nofollow directive.
func BlocksIndexing(html string) bool {
	content, ok := RobotsDirectives(html)
	if !ok || content == "" {
		return false
	}
	lower := strings.ToLower(content)
	return strings.Contains(lower, "noindex") || strings.Contains(lower, "nofollow")
}

// MentionsSitemap reports whether "sitemap.xml" appears anywhere in the
// document.
func MentionsSitemap(html string) bool {
	return sitemapRe.MatchString(html)
}

// HasBreadcrumbSchema reports a literal BreadcrumbList @type anywhere in
// the document, JSON-LD or not.
func HasBreadcrumbSchema(html string) bool { return breadcrumbRe.MatchString(html) }

// HasFAQSchema reports a literal FAQPage @type.
func HasFAQSchema(html string) bool { return faqRe.MatchString(html) }

// HasArticleSchema reports a literal Article, BlogPosting or NewsArticle
// @type.
func HasArticleSchema(html string) bool { return articleRe.MatchString(html) }

// HasOrganizationSchema reports a literal Organization @type.
func HasOrganizationSchema(html string) bool { return organizationRe.MatchString(html) }

// QuestionHeadingCount counts h2/h3 headings that open with a question
// word and end with a question mark.
func QuestionHeadingCount(html string) int {
	return len(questionH23Re.FindAllString(html, -1))
}

// AnswerHeadingCount counts h2..h4 headings containing a question word
// and a question mark anywhere in the heading text.
func AnswerHeadingCount(html string) int {
	return len(questionH24Re.FindAllString(html, -1))
}

// ListCount counts <ul> and <ol> opening tags.
func ListCount(html string) int { return len(listRe.FindAllString(html, -1)) }

// TableCount counts <table> opening tags.
func TableCount(html string) int { return len(tableRe.FindAllString(html, -1)) }

// DefinitionListCount counts <dl> opening tags.
func DefinitionListCount(html string) int { return len(dlRe.FindAllString(html, -1)) }

// OrderedListCount counts <ol> opening tags.
func OrderedListCount(html string) int { return len(olRe.FindAllString(html, -1)) }

// HasSnippetParagraph reports whether any flat paragraph holds 40 to 60
// words, the length answer engines prefer to quote.
func HasSnippetParagraph(html string) bool {
	for _, m := range paragraphRe.FindAllStringSubmatch(html, -1) {
		text := strings.TrimSpace(tagRe.ReplaceAllString(m[0], ""))
		words := len(strings.Fields(text))
		if words >= 40 && words <= 60 {
			return true
		}
	}
	return false
}

// HasLazyLoading reports whether any element declares loading="lazy".
func HasLazyLoading(html string) bool { return lazyLoadRe.MatchString(html) }

// AsyncScriptCount counts <script> tags carrying the async attribute.
func AsyncScriptCount(html string) int {
	return len(asyncScriptRe.FindAllString(html, -1))
}

// HasHreflang reports whether any <link> declares an hreflang attribute.
func HasHreflang(html string) bool { return hreflangRe.MatchString(html) }

// UsesHTTPS reports whether the page URL is served over HTTPS.
func UsesHTTPS(url string) bool {
	return strings.HasPrefix(url, "https://")
}
