package feedpage

import (
	"testing"

	"github.com/hazyhaar/feedloom/dom"
)

func testSignatures() *Signatures {
	return &Signatures{
		Items:           []string{"div[data-urn]", "div.feed-item"},
		IdentityAttrs:   []string{"data-urn", "data-id"},
		ActionBars:      []string{".social-bar"},
		CommentControls: []string{"button[aria-label^=Comment]"},
		CommentInputs:   []string{".comment-box"},
		SubmitControls:  []string{"button[type=submit]"},
		ActionWrappers:  []string{"li"},
		TextRegions:     []string{".caption"},
		MediaMarkers:    []string{".media"},
		Placeholders:    []string{"Feed post"},
	}
}

func mustParse(t *testing.T, src string) *Snapshot {
	t.Helper()
	snap, err := ParseString(src, testSignatures())
	if err != nil {
		t.Fatalf("parse snapshot: %v", err)
	}
	return snap
}

func TestItems_UnionDeduped(t *testing.T) {
	// The first item matches both item selectors; it must appear once.
	snap := mustParse(t, `<html><body>
<div class="feed-item" data-urn="urn:1"></div>
<div class="feed-item"></div>
</body></html>`)

	items := snap.Items()
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	if items[0].IdentityValue() != "urn:1" {
		t.Errorf("document order broken: first item is %q", items[0].IdentityValue())
	}
}

func TestItems_DocumentOrderAcrossSelectors(t *testing.T) {
	// The data-urn selector is listed first in the signatures but its match
	// appears second in the document; document order must win.
	snap := mustParse(t, `<html><body>
<div class="feed-item" id="a"></div>
<div data-urn="urn:b"></div>
</body></html>`)

	items := snap.Items()
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	if items[0].DOMID() != "a" {
		t.Errorf("first item should be #a, got urn=%q id=%q",
			items[0].IdentityValue(), items[0].DOMID())
	}
}

func TestItems_SkipsAffordanceSubtrees(t *testing.T) {
	snap := mustParse(t, `<html><body>
<div data-urn="urn:1">
  <div data-feedloom-affordance="urn:1"><div class="feed-item">fake</div></div>
</div>
</body></html>`)

	items := snap.Items()
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1 (nodes inside affordances excluded)", len(items))
	}
}

func TestAffordancesAndItemFor(t *testing.T) {
	snap := mustParse(t, `<html><body>
<div data-urn="urn:1">
  <div class="social-bar"></div>
  <div data-feedloom-affordance="urn:1"></div>
</div>
</body></html>`)

	affs := snap.Affordances()
	if len(affs) != 1 {
		t.Fatalf("got %d affordances, want 1", len(affs))
	}
	if AffordanceID(affs[0]) != "urn:1" {
		t.Errorf("affordance id: got %q", AffordanceID(affs[0]))
	}

	item := snap.ItemFor(affs[0])
	if item == nil || item.IdentityValue() != "urn:1" {
		t.Errorf("ItemFor did not resolve the ancestor item")
	}
}

func TestItemAccessors(t *testing.T) {
	snap := mustParse(t, `<html><body>
<div data-urn="urn:1" class="feed-item">
  <div class="caption">Twenty-five characters here!</div>
  <div class="media"></div>
  <div class="social-bar">
    <ul><li><button aria-label="Comment on post">Comment</button></li></ul>
  </div>
</div>
</body></html>`)

	items := snap.Items()
	if len(items) != 1 {
		t.Fatalf("got %d items", len(items))
	}
	it := items[0]

	if it.ActionBar() == nil {
		t.Error("action bar not found")
	}
	if it.CommentControl(it.ActionBar()) == nil {
		t.Error("comment control not found in action bar")
	}
	if !it.HasCommentSurface() {
		t.Error("item should have a comment surface")
	}
	if !it.HasMedia() {
		t.Error("media marker not found")
	}
	if got := len(it.TextRegions()); got != 1 {
		t.Errorf("text regions: got %d, want 1", got)
	}
	if it.Affordance() != nil {
		t.Error("no affordance should be attached yet")
	}
}

func TestNewAffordance(t *testing.T) {
	aff := NewAffordance("urn:9", true)
	if AffordanceID(aff) != "urn:9" {
		t.Errorf("id: got %q", AffordanceID(aff))
	}
	if dom.QuerySelector(aff, "button") == nil {
		t.Error("affordance has no trigger button")
	}
	if !dom.Matches(aff, "."+FallbackClass) {
		t.Error("fallback class missing")
	}
}
