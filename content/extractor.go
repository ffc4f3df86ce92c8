// Package content implements the content-extraction collaborator: caption
// text and markdown for the generation payload, and best-effort capture of
// the page's logged-in user identity.
package content

import (
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/microcosm-cc/bluemonday"

	"github.com/hazyhaar/feedloom/dom"
	"github.com/hazyhaar/feedloom/feedpage"
)

// Extractor pulls text out of feed items. Safe for concurrent use.
type Extractor struct {
	placeholders []string
	sanitizer    *bluemonday.Policy
	md           *converter.Converter
}

// NewExtractor creates an Extractor. placeholders are the degenerate caption
// strings treated as empty content (from the page signatures).
func NewExtractor(placeholders []string) *Extractor {
	return &Extractor{
		placeholders: placeholders,
		sanitizer:    bluemonday.UGCPolicy(),
		md: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
			),
		),
	}
}

// Caption returns the item's textual content: all text regions joined,
// whitespace-normalised. Placeholder-only captions come back empty.
func (e *Extractor) Caption(item *feedpage.Item) string {
	var parts []string
	for _, region := range item.TextRegions() {
		if text := dom.CollectText(region); text != "" {
			parts = append(parts, text)
		}
	}
	caption := CleanText(strings.Join(parts, "\n\n"))
	if e.IsPlaceholder(caption) {
		return ""
	}
	return caption
}

// CaptionMarkdown renders the item's text regions as sanitised markdown for
// the generation payload. Falls back to the plain caption when conversion
// yields nothing.
func (e *Extractor) CaptionMarkdown(item *feedpage.Item) string {
	plain := e.Caption(item)

	var htmlParts []string
	for _, region := range item.TextRegions() {
		if h := dom.Render(region); h != "" {
			htmlParts = append(htmlParts, h)
		}
	}
	if len(htmlParts) == 0 {
		return plain
	}

	clean := e.sanitizer.Sanitize(strings.Join(htmlParts, "\n"))
	md, err := e.md.ConvertString(clean)
	if err != nil || strings.TrimSpace(md) == "" {
		return plain
	}
	return strings.TrimSpace(md)
}

// IsPlaceholder reports whether the text equals one of the degenerate
// placeholder strings the host renders for contentless items.
func (e *Extractor) IsPlaceholder(text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return true
	}
	for _, p := range e.placeholders {
		if trimmed == p {
			return true
		}
	}
	return false
}

// CleanText normalises extracted text: removes zero-width characters,
// collapses whitespace, trims.
func CleanText(text string) string {
	text = strings.Map(func(r rune) rune {
		switch r {
		// zero-width space/non-joiner/joiner, BOM, soft hyphen
		case '\u200B', '\u200C', '\u200D', '\uFEFF', '\u00AD':
			return -1
		}
		return r
	}, text)
	return dom.CollapseWhitespace(text)
}
