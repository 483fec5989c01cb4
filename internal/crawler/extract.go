package crawler

import (
	"bytes"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/bravforcode/vibescity-live-sub000/internal/classify"
)

var rawURLRe = regexp.MustCompile(`https?://[^\s"'<>\\)]+`)

var skipSchemes = map[string]struct{}{
	"data":       {},
	"javascript": {},
	"mailto":     {},
	"tel":        {},
}

// ExtractCandidateLinks pulls candidate video URLs out of a page body two
// ways: raw http(s) substrings anywhere in the body, and href/src/content
// attribute values resolved against the base URL. Links failing the
// candidate gate are dropped, the rest deduplicated and capped at maxLinks.
func ExtractCandidateLinks(base *url.URL, body []byte, maxLinks int) []string {
	if maxLinks <= 0 {
		return nil
	}

	seen := make(map[string]struct{})
	var links []string
	add := func(raw string) {
		if len(links) >= maxLinks {
			return
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			return
		}
		if classify.ShouldReject(raw) {
			return
		}
		norm := classify.Normalize(raw)
		if _, dup := seen[norm]; dup {
			return
		}
		seen[norm] = struct{}{}
		links = append(links, raw)
	}

	for _, m := range rawURLRe.FindAllString(string(body), -1) {
		add(strings.TrimRight(m, ".,;"))
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return links
	}
	doc.Find("[href], [src], [content]").Each(func(_ int, sel *goquery.Selection) {
		for _, attr := range []string{"href", "src", "content"} {
			val, ok := sel.Attr(attr)
			if !ok {
				continue
			}
			resolved := resolveRef(base, val)
			if resolved != "" {
				add(resolved)
			}
		}
	})

	return links
}

func resolveRef(base *url.URL, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	if i := strings.Index(ref, ":"); i > 0 {
		if _, skip := skipSchemes[strings.ToLower(ref[:i])]; skip {
			return ""
		}
	}
	parsed, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	if base != nil {
		parsed = base.ResolveReference(parsed)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return ""
	}
	return parsed.String()
}
