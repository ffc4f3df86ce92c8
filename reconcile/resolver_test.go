package reconcile

import (
	"strings"
	"testing"

	"github.com/hazyhaar/feedloom/content"
)

func newTestResolver() *Resolver {
	return NewResolver(content.NewExtractor(testSignatures().Placeholders))
}

func resolveBody(t *testing.T, body string, ordinal int) string {
	t.Helper()
	snap := snapshot(t, body)
	items := snap.Items()
	if len(items) == 0 {
		t.Fatal("fixture produced no items")
	}
	return newTestResolver().Resolve(items[0], ordinal)
}

func TestResolve_PriorityOrder(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "identity attribute wins over everything",
			body: `<div class="feed-item x" data-urn="urn:post:1" id="dom7">
  <div class="caption">some caption text here</div></div>`,
			want: "urn:post:1",
		},
		{
			name: "dom id when no identity attribute",
			body: `<div class="feed-item" id="dom7">
  <div class="caption">some caption text here</div></div>`,
			want: "dom7",
		},
		{
			name: "caption slug when no attributes",
			body: `<div class="feed-item">
  <div class="caption">Hello   world from the feed</div></div>`,
			want: "Hello-world-from-the-feed",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := resolveBody(t, tt.body, 0); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolve_CaptionSlugTruncates(t *testing.T) {
	long := strings.Repeat("abcde ", 20)
	got := resolveBody(t, `<div class="feed-item"><div class="caption">`+long+`</div></div>`, 0)
	if len([]rune(strings.ReplaceAll(got, "-", " "))) > captionSlugLen {
		t.Errorf("slug longer than the cap: %q", got)
	}
	if !strings.HasPrefix(got, "abcde-abcde") {
		t.Errorf("unexpected slug shape: %q", got)
	}
}

func TestResolve_PlaceholderCaptionFallsThrough(t *testing.T) {
	// "Feed post" is a configured placeholder: the extractor blanks it, so
	// resolution falls to the class+ordinal tier.
	got := resolveBody(t, `<div class="feed-item"><div class="caption">Feed post</div></div>`, 3)
	if got != "feed-item:3" {
		t.Errorf("got %q, want class+ordinal fallback", got)
	}
}

func TestResolve_OrdinalTierFormat(t *testing.T) {
	got := resolveBody(t, `<div class="feed-item wide"></div>`, 0)
	if got != "feed-item.wide:0" {
		t.Errorf("got %q", got)
	}
}

func TestResolve_StableAcrossScans(t *testing.T) {
	body := `<div class="feed-item" data-urn="urn:stable">
  <div class="caption">anything at all</div></div>`
	a := resolveBody(t, body, 0)
	b := resolveBody(t, body, 5) // ordinal must not matter above tier 4
	if a != b || a != "urn:stable" {
		t.Errorf("identity drifted: %q vs %q", a, b)
	}
}
