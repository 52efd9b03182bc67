package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/contact-finder/internal/contact"
)

func TestEmailSkipsExcludedAddresses(t *testing.T) {
	t.Parallel()

	text := "write to noreply@x.com or info@acme.co.th for quotes"
	require.Equal(t, "info@acme.co.th", Email(text))
}

func TestEmailAbsent(t *testing.T) {
	t.Parallel()

	fields := Extract("call 02 123 4567 today")
	require.Empty(t, fields.Email)
	require.Equal(t, "021234567", fields.Phone)
}

func TestEmailCases(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want string
	}{
		{name: "domain lowercased", text: "Sales: Sales@ACME.CO.TH", want: "Sales@acme.co.th"},
		{name: "image asset skipped", text: "logo@2x.png then hello@acme.com", want: "hello@acme.com"},
		{name: "platform skipped", text: "support@google.com", want: ""},
		{name: "document order", text: "a@first.com b@second.com", want: "a@first.com"},
		{name: "thai surroundings", text: "อีเมลinfo@acme.co.thโทร", want: "info@acme.co.th"},
		{name: "none", text: "no contact here", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Email(tt.text))
		})
	}
}

func TestPhoneSeparatorsAreIgnored(t *testing.T) {
	t.Parallel()

	require.Equal(t, Phone("Tel 02-123-4567"), Phone("Tel 02 123 4567"))
	require.Equal(t, "021234567", Phone("Tel 02-123-4567"))
}

func TestPhoneCases(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want string
	}{
		{name: "mobile", text: "มือถือ 081-234-5678", want: "0812345678"},
		{name: "international plus", text: "call +66 81 234 5678", want: "+66812345678"},
		{name: "international bare", text: "tel:66812345678", want: "66812345678"},
		{name: "line break inside separated pattern", text: "02\n123\t4567", want: "021234567"},
		{name: "digits on separate lines stay apart", text: "Since 2023\n0812345678", want: "0812345678"},
		{name: "year above number", text: "Founded 2019\nTel 02-555-0100", want: "025550100"},
		{name: "none", text: "ext 12", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Phone(tt.text))
		})
	}
}

func TestWebsiteExcludesPlatforms(t *testing.T) {
	t.Parallel()

	require.Empty(t, Website("https://www.facebook.com/acme"))
	require.Empty(t, Website("see https://www.youtube.com/watch?v=1 and www.linkedin.com/company/acme"))
}

func TestWebsiteCases(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want string
	}{
		{name: "scheme kept", text: "visit https://acme.co.th/contact.", want: "https://acme.co.th/contact"},
		{name: "www prefixed", text: "Visit www.acme.co.th.", want: "https://www.acme.co.th"},
		{name: "bare domain", text: "site: acme.com)", want: "https://acme.com"},
		{name: "platform then real", text: "https://facebook.com/acme https://acme.net", want: "https://acme.net"},
		{name: "search engine skipped", text: "https://www.bing.com/ck/a?x=1 acme.org", want: "https://acme.org"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Website(tt.text))
		})
	}
}

func TestExtractIsIdempotent(t *testing.T) {
	t.Parallel()

	text := "Acme Co. info@acme.co.th 02-123-4567 https://acme.co.th"
	first := Extract(text)
	second := Extract(text)
	require.Equal(t, first, second)
	require.Equal(t, contact.Fields{
		Email:   "info@acme.co.th",
		Phone:   "021234567",
		Website: "https://acme.co.th",
	}, first)
}

func TestExtractHTMLFallsBackToMarkdown(t *testing.T) {
	t.Parallel()

	body := `<html><body><p>mail: info&#64;acme&#46;co&#46;th</p></body></html>`
	require.False(t, Extract(body).Any())

	fields := ExtractHTML(body)
	require.Equal(t, "info@acme.co.th", fields.Email)
}

func TestExtractHTMLPrefersRawMatches(t *testing.T) {
	t.Parallel()

	body := `<a href="mailto:sales@acme.com">sales@acme.com</a>`
	require.Equal(t, "sales@acme.com", ExtractHTML(body).Email)
	require.False(t, ExtractHTML("").Any())
}
