package reconcile

import (
	"golang.org/x/net/html"

	"github.com/hazyhaar/feedloom/dom"
	"github.com/hazyhaar/feedloom/feedpage"
)

// maxWrapperWalk bounds the ancestor walk from a comment control to its
// list-item-shaped wrapper.
const maxWrapperWalk = 3

// Placement chooses where, within an eligible item's subtree, the affordance
// goes. It degrades through tiers instead of failing: different host
// templates structure their action controls differently, and the tiering is
// the robustness device that absorbs that heterogeneity.
type Placement struct{}

// Place returns the anchor node, tier, and attach mode for an item.
// For a well-formed item it always succeeds: tier 3 anchors on the item
// node itself.
func (p *Placement) Place(item *feedpage.Item) (*html.Node, Tier, Mode) {
	bar := item.ActionBar()
	if bar == nil {
		return item.Node, TierBlockFallback, ModeAppendChild
	}

	if ctl := item.CommentControl(bar); ctl != nil {
		if wrap := p.wrapperFor(item, ctl); wrap != nil {
			return wrap, TierActionSibling, ModeSiblingAfter
		}
	}
	return bar, TierActionAppend, ModeAppendChild
}

// wrapperFor walks up from the comment control looking for a wrapper shape,
// at most maxWrapperWalk levels and never past the item itself.
func (p *Placement) wrapperFor(item *feedpage.Item, ctl *html.Node) *html.Node {
	sig := item.Signatures()
	cur := ctl
	for i := 0; i <= maxWrapperWalk && cur != nil && cur != item.Node; i++ {
		for _, sel := range sig.ActionWrappers {
			if dom.Matches(cur, sel) {
				return cur
			}
		}
		cur = cur.Parent
	}
	return nil
}
