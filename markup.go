package project747

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/Michiel29/project747/types"
)

var ErrEmptyRegion = errors.New("document body is empty after boundary search")

var scriptPat = regexp.MustCompile(`<script.*>.*?</script>|<SCRIPT.*>.*?</SCRIPT>`)

// Tags that carry attributes in scraped scripts; each is removed up to the
// first `>` following an `=`.
var startTagsWithAttributes = []string{
	"<a ", "<body", "<div", "<font", "<html", "<img", "<link", "<meta",
	"<p ", "<pre ", "<span", "<table", "<td", "<tr",
}

var startTags = []string{
	"<b>", "<body>", "<br />", "<br/>", "<br>", "<center>", "<div>", "<em>",
	"<head>", "<hr>", "<html>", "<i>", "<p>", "<pre>", "<span>", "<strong>",
	"<table>", "<td>", "<title>", "<tr>", "<u>",
}

var endTags = []string{
	"</a>", "</b>", "</body>", "</center>", "</div>", "</em>", "</font>",
	"</head>", "</html>", "</i>", "</p>", "</pre>", "</span>", "</strong>",
	"</table>", "</td>", "</title>", "</tr>", "</u>",
}

var attributePats = compileAttributePats(startTagsWithAttributes)
var tagTree = NewRuneTree(withUpper(append(append([]string{}, endTags...),
	startTags...)))

func withUpper(tags []string) []string {
	cased := make([]string, 0, len(tags)*2)
	for _, tag := range tags {
		cased = append(cased, tag)
		if upper := strings.ToUpper(tag); upper != tag {
			cased = append(cased, upper)
		}
	}
	return cased
}

func compileAttributePats(tags []string) []*regexp.Regexp {
	pats := make([]*regexp.Regexp, 0, len(tags)*2)
	for _, tag := range withUpper(tags) {
		pats = append(pats,
			regexp.MustCompile(regexp.QuoteMeta(tag)+`.*=.*?>`))
	}
	return pats
}

// CleanScript
// Removes the markup scraped movie scripts carry: script blocks, tags with
// attributes, then the literal start and end tags.
func CleanScript(text string) string {
	text = scriptPat.ReplaceAllString(text, "")
	for _, pat := range attributePats {
		text = pat.ReplaceAllString(text, "")
	}
	return tagTree.Strip(text)
}

// ExtractBody
// Cuts the story out of a whitespace-joined token stream: from the first
// occurrence of startTag up to the last occurrence of endTag after it.
// Movie start tags are apostrophe-normalized first; gutenberg bodies have
// their possessive `'s` tokens flattened.
func ExtractBody(kind types.Kind, text string, startTag string,
	endTag string) (string, error) {
	if kind == types.KindMovie {
		startTag = strings.ReplaceAll(startTag, " S ", " 'S ")
		startTag = strings.ReplaceAll(startTag, " s ", " 's ")
	}
	if startTag == "" {
		return "", fmt.Errorf("no start tag: %w", ErrEmptyRegion)
	}
	begin := strings.Index(text, startTag)
	if begin < 0 {
		return "", fmt.Errorf("start tag %q not found: %w", startTag,
			ErrEmptyRegion)
	}
	endOffset := strings.LastIndex(text[begin:], endTag)
	if endOffset < 0 {
		return "", fmt.Errorf("end tag %q not found: %w", endTag,
			ErrEmptyRegion)
	}
	body := text[begin : begin+endOffset]
	if len(body) == 0 {
		return "", ErrEmptyRegion
	}
	if kind == types.KindGutenberg {
		body = strings.ReplaceAll(body, " 's ", " s ")
	}
	return body, nil
}
