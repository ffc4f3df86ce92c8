package reconcile

import (
	"unicode/utf8"

	"github.com/hazyhaar/feedloom/dom"
	"github.com/hazyhaar/feedloom/feedpage"
)

// defaultMinTextLen is the minimum trimmed caption length that counts as
// substantive content.
const defaultMinTextLen = 20

// Classifier decides whether an item currently qualifies for the
// augmentation. Pure: no mutation, no I/O.
//
// Two independent predicates must both hold: the item must expose a comment
// surface, and it must carry substantive content (enough text, or a media
// marker). This skips reshares without captions, ads without commenting, and
// the structural boilerplate the host renders alongside real posts.
type Classifier struct {
	// MinTextLen overrides the content threshold; zero means the default.
	MinTextLen int
}

// Eligible reports whether the item qualifies.
func (c *Classifier) Eligible(item *feedpage.Item) bool {
	return c.commentable(item) && c.hasContent(item)
}

func (c *Classifier) commentable(item *feedpage.Item) bool {
	return item.HasCommentSurface()
}

func (c *Classifier) hasContent(item *feedpage.Item) bool {
	min := c.MinTextLen
	if min <= 0 {
		min = defaultMinTextLen
	}
	for _, region := range item.TextRegions() {
		if utf8.RuneCountInString(dom.CollectText(region)) >= min {
			return true
		}
	}
	return item.HasMedia()
}
