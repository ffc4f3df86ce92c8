package dom

import (
	"strings"
	"testing"

	"golang.org/x/net/html"
)

func parse(t *testing.T, src string) *html.Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return doc
}

const fixture = `<html><body>
<div class="feed-item" data-urn="urn:1">
  <div class="actions social-bar">
    <button aria-label="Comment on this post">Comment</button>
  </div>
</div>
<div class="feed-item promoted" id="post-2">
  <span class="caption">hello</span>
</div>
</body></html>`

func TestQuerySelectorAll_Class(t *testing.T) {
	doc := parse(t, fixture)
	got := QuerySelectorAll(doc, ".feed-item")
	if len(got) != 2 {
		t.Fatalf("got %d matches, want 2", len(got))
	}
}

func TestQuerySelectorAll_MultiClass(t *testing.T) {
	doc := parse(t, fixture)
	got := QuerySelectorAll(doc, "div.feed-item.promoted")
	if len(got) != 1 {
		t.Fatalf("got %d matches, want 1", len(got))
	}
	if Attr(got[0], "id") != "post-2" {
		t.Errorf("matched wrong node: %s", Render(got[0]))
	}
}

func TestQuerySelectorAll_AttrPresence(t *testing.T) {
	doc := parse(t, fixture)
	got := QuerySelectorAll(doc, "div[data-urn]")
	if len(got) != 1 {
		t.Fatalf("got %d matches, want 1", len(got))
	}
}

func TestQuerySelectorAll_AttrPrefix(t *testing.T) {
	doc := parse(t, fixture)
	got := QuerySelectorAll(doc, "button[aria-label^=Comment]")
	if len(got) != 1 {
		t.Fatalf("got %d matches, want 1", len(got))
	}
}

func TestQuerySelectorAll_Descendant(t *testing.T) {
	doc := parse(t, fixture)
	got := QuerySelectorAll(doc, ".feed-item .actions button")
	if len(got) != 1 {
		t.Fatalf("got %d matches, want 1", len(got))
	}
}

func TestQuerySelectorAll_NoMatch(t *testing.T) {
	doc := parse(t, fixture)
	if got := QuerySelectorAll(doc, ".missing"); got != nil {
		t.Errorf("got %d matches, want none", len(got))
	}
}

func TestQuerySelector_DocumentOrder(t *testing.T) {
	doc := parse(t, fixture)
	first := QuerySelector(doc, ".feed-item")
	if first == nil || Attr(first, "data-urn") != "urn:1" {
		t.Errorf("first match should be the urn:1 item")
	}
}

func TestMatches_ID(t *testing.T) {
	doc := parse(t, fixture)
	n := QuerySelector(doc, "#post-2")
	if n == nil {
		t.Fatal("no match for #post-2")
	}
	if !Matches(n, "div#post-2.feed-item") {
		t.Error("combined id+class selector should match")
	}
}

func TestClosest(t *testing.T) {
	doc := parse(t, fixture)
	btn := QuerySelector(doc, "button")
	item := Closest(btn, ".feed-item")
	if item == nil || Attr(item, "data-urn") != "urn:1" {
		t.Errorf("closest .feed-item not found from button")
	}
	if Closest(btn, ".missing") != nil {
		t.Error("closest should return nil for no match")
	}
}

func TestCollectText(t *testing.T) {
	doc := parse(t, `<div>  a
	b <script>junk()</script> <span>c</span></div>`)
	got := CollectText(QuerySelector(doc, "div"))
	if got != "a b c" {
		t.Errorf("CollectText: got %q, want %q", got, "a b c")
	}
}
