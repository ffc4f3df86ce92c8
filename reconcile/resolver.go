package reconcile

import (
	"fmt"
	"strings"

	"github.com/hazyhaar/feedloom/content"
	"github.com/hazyhaar/feedloom/feedpage"
)

// captionSlugLen is how much of the caption feeds the content-derived
// identity (tier 3).
const captionSlugLen = 40

// Resolver derives a stable logical identity for a transient feed item.
// Resolution is pure with respect to the item's current DOM state and never
// fails: some string always comes back.
//
// Priority order, first success wins:
//  1. explicit unique-identifier attribute (signature list);
//  2. generic DOM id attribute;
//  3. slug of the first 40 characters of extracted caption text, whitespace
//     collapsed to hyphens, when non-trivial;
//  4. style-class list plus ordinal position among current candidates.
//
// Tier 4 is unstable under reordering: the ordinal shifts when items are
// inserted or removed above, so two scans may disagree and two items may
// collide after a removal. The de-duplication pass absorbs the fallout; the
// instability itself is an accepted property of the host page, not fixable
// here without inventing identity the page does not provide.
type Resolver struct {
	extractor *content.Extractor
}

// NewResolver creates a Resolver using the given content extractor for the
// caption tier.
func NewResolver(ex *content.Extractor) *Resolver {
	return &Resolver{extractor: ex}
}

// Resolve computes the LogicalID for an item. ordinal is the item's index
// among all candidates currently in the document.
func (r *Resolver) Resolve(item *feedpage.Item, ordinal int) string {
	if v := item.IdentityValue(); v != "" {
		return v
	}
	if v := item.DOMID(); v != "" {
		return v
	}
	if slug := captionSlug(r.extractor.Caption(item)); slug != "" {
		return slug
	}
	return fmt.Sprintf("%s:%d", strings.Join(item.Classes(), "."), ordinal)
}

// captionSlug turns the caption's first characters into an identity slug.
// Empty captions (including placeholder-only ones, which the extractor
// already blanks) produce "".
func captionSlug(caption string) string {
	if caption == "" {
		return ""
	}
	runes := []rune(caption)
	if len(runes) > captionSlugLen {
		runes = runes[:captionSlugLen]
	}
	return strings.Join(strings.Fields(string(runes)), "-")
}
