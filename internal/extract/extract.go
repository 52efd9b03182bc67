// Package extract pulls best-guess contact fields out of unstructured text.
//
// Each field has an ordered list of patterns. The first pattern that yields a
// usable match wins; patterns whose matches are all excluded fall through to
// the next one. Extraction is pure and deterministic.
package extract

import (
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"github.com/JakeFAU/contact-finder/internal/contact"
)

var (
	emailPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b[a-z0-9._%+-]+@[a-z0-9.-]+\.[a-z]{2,}\b`),
		regexp.MustCompile(`(?i)[a-z0-9._%+-]+@[a-z0-9.-]+\.(?:com|co\.th|net|org|th)`),
	}

	// Applied after all whitespace and hyphens are removed.
	phonePatterns = []*regexp.Regexp{
		regexp.MustCompile(`0[2-9][0-9]{7,8}`),
		regexp.MustCompile(`\+66[0-9]{8,9}`),
		regexp.MustCompile(`66[0-9]{8,9}`),
		regexp.MustCompile(`0[0-9]{1,2}[-\s]?[0-9]{3}[-\s]?[0-9]{4}`),
		regexp.MustCompile(`0[0-9]{2}[-\s]?[0-9]{3}[-\s]?[0-9]{3,4}`),
	}

	websitePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)https?://[^\s<>"]+(?:\.[^\s<>"]+)*`),
		regexp.MustCompile(`(?i)www\.[^\s<>"]+(?:\.[^\s<>"]+)+`),
		regexp.MustCompile(`(?i)[a-z0-9.-]+\.(?:com|co\.th|net|org|th)(?:/[^\s<>"]*)?`),
	}

	emailExclusions = []string{
		"noreply",
		"no-reply",
		"donotreply",
		"google",
		"facebook",
		"example.com",
		"sentry.io",
	}

	imageSuffixes = []string{".png", ".jpg", ".jpeg", ".gif", ".webp", ".svg"}

	websiteExclusions = []string{
		"google",
		"facebook",
		"twitter",
		"youtube",
		"instagram",
		"linkedin",
		"tiktok",
		"bing.com",
		"microsoft.com",
		"msn.com",
		"duckduckgo",
		"wikipedia.org",
		"w3.org",
		"schema.org",
		"yellowpages.co.th",
		"thailandyp.com",
	}
)

// Extract returns the best email, phone and website found in text.
func Extract(text string) contact.Fields {
	return contact.Fields{
		Email:   Email(text),
		Phone:   Phone(text),
		Website: Website(text),
	}
}

// ExtractHTML runs Extract on the raw document and, when nothing at all is
// found, once more on its Markdown rendering so entity-encoded or
// tag-fragmented contacts are still recognized.
func ExtractHTML(body string) contact.Fields {
	fields := Extract(body)
	if fields.Any() || strings.TrimSpace(body) == "" {
		return fields
	}
	markdown, err := htmltomarkdown.ConvertString(body)
	if err != nil {
		return fields
	}
	return Extract(markdown)
}

// Email returns the first non-excluded address in document order, or "".
func Email(text string) string {
	for _, pattern := range emailPatterns {
		for _, match := range pattern.FindAllString(text, -1) {
			if excludedEmail(match) {
				continue
			}
			return normalizeEmail(match)
		}
	}
	return ""
}

// Phone returns the first Thai phone number found once spaces, tabs and
// hyphens are stripped, or "". Line breaks are kept so digits on separate
// lines never join into one number. The value is best-effort and not
// validated further.
func Phone(text string) string {
	compact := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '-':
			return -1
		}
		return r
	}, text)
	for _, pattern := range phonePatterns {
		if match := pattern.FindString(compact); match != "" {
			return strings.Join(strings.Fields(match), "")
		}
	}
	return ""
}

// Website returns the first non-platform URL-like value with a scheme, or "".
func Website(text string) string {
	for _, pattern := range websitePatterns {
		for _, match := range pattern.FindAllString(text, -1) {
			candidate := strings.TrimRight(match, ".,)")
			if candidate == "" || excludedWebsite(candidate) {
				continue
			}
			if !strings.HasPrefix(strings.ToLower(candidate), "http") {
				candidate = "https://" + candidate
			}
			return candidate
		}
	}
	return ""
}

func excludedEmail(email string) bool {
	lower := strings.ToLower(email)
	for _, marker := range emailExclusions {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	for _, suffix := range imageSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}

func excludedWebsite(website string) bool {
	lower := strings.ToLower(website)
	for _, marker := range websiteExclusions {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

func normalizeEmail(email string) string {
	at := strings.LastIndexByte(email, '@')
	if at < 0 {
		return email
	}
	return email[:at+1] + strings.ToLower(email[at+1:])
}
