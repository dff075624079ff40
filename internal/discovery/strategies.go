package discovery

import (
	"bytes"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

const (
	token     = "constituent"
	extension = ".csv"
)

var (
	downloadPattern = regexp.MustCompile(`(?i)download`)
	scriptPattern   = regexp.MustCompile(`(?i)["']([^"']*constituent[^"']*\.csv)["']`)

	// Conventional constituent file locations, most specific first.
	knownPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)/IndexConstituent/[^"']*\.csv`),
		regexp.MustCompile(`(?i)/indices/[^"']*constituent[^"']*\.csv`),
		regexp.MustCompile(`(?i)/downloads?/[^"']*constituent[^"']*\.csv`),
	}

	dataURLAttrs = []string{"data-url", "data-href", "data-download", "data-file"}
)

// DirectLink matches anchors whose text or href mentions the constituent
// token and whose href points at a CSV file.
func DirectLink(doc *goquery.Document, base *url.URL) (string, bool) {
	return firstLink(doc.Find("a[href]"), base, func(a *goquery.Selection) (string, bool) {
		href, _ := a.Attr("href")
		lowerHref := strings.ToLower(href)
		if !strings.Contains(lowerHref, extension) {
			return "", false
		}
		return href, mentionsToken(a.Text()) || strings.Contains(lowerHref, token)
	})
}

// DownloadSection looks inside the first div labelled as a download area.
func DownloadSection(doc *goquery.Document, base *url.URL) (string, bool) {
	section := doc.Find("div").FilterFunction(func(_ int, s *goquery.Selection) bool {
		class, _ := s.Attr("class")
		id, _ := s.Attr("id")
		return downloadPattern.MatchString(class) || downloadPattern.MatchString(id)
	}).First()
	if section.Length() == 0 {
		return "", false
	}

	return firstLink(section.Find("a[href]"), base, func(a *goquery.Selection) (string, bool) {
		href, _ := a.Attr("href")
		return href, mentionsToken(a.Text()) || mentionsToken(href)
	})
}

// DataAttribute checks URL-carrying data attributes.
func DataAttribute(doc *goquery.Document, base *url.URL) (string, bool) {
	for _, attr := range dataURLAttrs {
		link, ok := firstLink(doc.Find("["+attr+"]"), base, func(s *goquery.Selection) (string, bool) {
			v, _ := s.Attr(attr)
			lower := strings.ToLower(v)
			return v, strings.Contains(lower, token) && strings.Contains(lower, extension)
		})
		if ok {
			return link, true
		}
	}
	return "", false
}

// InlineScript scans inline script bodies for a quoted CSV path.
func InlineScript(doc *goquery.Document, base *url.URL) (string, bool) {
	var link string
	var ok bool
	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if _, external := s.Attr("src"); external {
			return true
		}
		for _, m := range scriptPattern.FindAllStringSubmatch(s.Text(), -1) {
			if link, ok = resolve(base, m[1]); ok {
				return false
			}
		}
		return true
	})
	return link, ok
}

// KnownPattern searches the serialised document for conventional paths.
func KnownPattern(doc *goquery.Document, base *url.URL) (string, bool) {
	if len(doc.Nodes) == 0 {
		return "", false
	}
	var buf bytes.Buffer
	if err := html.Render(&buf, doc.Nodes[0]); err != nil {
		return "", false
	}
	page := buf.String()

	for _, p := range knownPatterns {
		for _, m := range p.FindAllString(page, -1) {
			if link, ok := resolve(base, m); ok {
				return link, true
			}
		}
	}
	return "", false
}

// firstLink returns the first candidate in sel that resolves against base.
// Candidates that fail to parse are skipped.
func firstLink(sel *goquery.Selection, base *url.URL, candidate func(*goquery.Selection) (string, bool)) (string, bool) {
	var link string
	var ok bool
	sel.EachWithBreak(func(_ int, s *goquery.Selection) bool {
		ref, match := candidate(s)
		if !match {
			return true
		}
		link, ok = resolve(base, ref)
		return !ok
	})
	return link, ok
}

func mentionsToken(s string) bool {
	return strings.Contains(strings.ToLower(s), token)
}

func resolve(base *url.URL, ref string) (string, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", false
	}
	u, err := url.Parse(ref)
	if err != nil {
		return "", false
	}
	if base == nil {
		return u.String(), true
	}
	return base.ResolveReference(u).String(), true
}
