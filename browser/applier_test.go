package browser

import (
	"strings"
	"testing"

	"github.com/hazyhaar/feedloom/feedpage"
	"github.com/hazyhaar/feedloom/generate"
	"github.com/hazyhaar/feedloom/reconcile"
)

func TestJsString_EscapesBreakouts(t *testing.T) {
	tests := []struct {
		in   string
		deny string
	}{
		{`a"b`, `a"b"`},           // unescaped quote would end the literal
		{"line\nbreak", "\n"},     // raw newline is illegal in a JS string
		{`</script><script>`, ``}, // must survive round-tripping as data
	}
	for _, tt := range tests {
		got := jsString(tt.in)
		if !strings.HasPrefix(got, `"`) || !strings.HasSuffix(got, `"`) {
			t.Errorf("jsString(%q) = %s, not a quoted literal", tt.in, got)
		}
		if tt.deny != "" && strings.Contains(got, tt.deny) {
			t.Errorf("jsString(%q) = %s leaks %q", tt.in, got, tt.deny)
		}
	}
}

func TestPlanJS_ModeSelectsPosition(t *testing.T) {
	js := planJS(reconcile.Plan{Ops: []reconcile.Op{
		{Kind: reconcile.OpInsert, LogicalID: "urn:a", AnchorPath: "/html/body/div[1]",
			Mode: reconcile.ModeSiblingAfter, Tier: reconcile.TierActionSibling},
		{Kind: reconcile.OpInsert, LogicalID: "urn:b", AnchorPath: "/html/body/div[2]",
			Mode: reconcile.ModeAppendChild, Tier: reconcile.TierActionAppend},
	}})
	if !strings.Contains(js, `"afterend"`) {
		t.Error("sibling mode did not use afterend")
	}
	if !strings.Contains(js, `"beforeend"`) {
		t.Error("append mode did not use beforeend")
	}
	if !strings.Contains(js, "urn:a") || !strings.Contains(js, "urn:b") {
		t.Error("rendered affordance markup missing from script")
	}
}

func TestPlanJS_ResolvesBeforeMutating(t *testing.T) {
	js := planJS(reconcile.Plan{Ops: []reconcile.Op{
		{Kind: reconcile.OpRemove, TargetPath: "/html/body/div[2]"},
		{Kind: reconcile.OpInsert, LogicalID: "urn:a", AnchorPath: "/html/body/div[3]",
			Mode: reconcile.ModeSiblingAfter, Tier: reconcile.TierActionSibling},
	}})
	// All positional paths resolve before the first node is touched; a
	// removal must not shift the index an insert anchor was planned with.
	firstMutation := strings.Index(js, ".remove()")
	lastResolve := strings.LastIndex(js, "resolve(op.path)")
	if firstMutation < 0 || lastResolve < 0 || lastResolve > firstMutation {
		t.Fatal("plan script mutates before all paths are resolved")
	}
}

func TestPlanJS_GuardsRemovalOwnership(t *testing.T) {
	js := planJS(reconcile.Plan{Ops: []reconcile.Op{
		{Kind: reconcile.OpRemove, TargetPath: "/html/body/div[2]"},
	}})
	if !strings.Contains(js, feedpage.AffordanceAttr) {
		t.Error("plan script does not verify the marker attribute before removal")
	}
}

func TestPanelHTML_States(t *testing.T) {
	t.Run("initial", func(t *testing.T) {
		h := panelHTML(PanelState{})
		if !strings.Contains(h, feedpage.ActionGenerate) {
			t.Error("no generate control")
		}
		if strings.Contains(h, feedpage.ActionAccept) {
			t.Error("accept shown before a draft exists")
		}
		if !strings.Contains(h, `<option value="professional" selected`) {
			t.Error("default tone not preselected")
		}
	})

	t.Run("busy", func(t *testing.T) {
		h := panelHTML(PanelState{Busy: true})
		if !strings.Contains(h, "disabled") {
			t.Error("controls not disabled while in flight")
		}
	})

	t.Run("with draft", func(t *testing.T) {
		h := panelHTML(PanelState{Draft: "Nice work <script>x</script>", Tone: generate.ToneFunny})
		if strings.Contains(h, "<script>") {
			t.Error("draft not escaped")
		}
		for _, want := range []string{feedpage.ActionRegenerate, feedpage.ActionAccept, feedpage.ActionClose} {
			if !strings.Contains(h, want) {
				t.Errorf("missing %s control", want)
			}
		}
		if !strings.Contains(h, `<option value="funny" selected`) {
			t.Error("chosen tone not preserved")
		}
	})

	t.Run("error", func(t *testing.T) {
		h := panelHTML(PanelState{Err: "generation failed after retries"})
		if !strings.Contains(h, "generation failed after retries") {
			t.Error("error message not rendered")
		}
	})
}

func TestTriggerHTML_CarriesActionMarker(t *testing.T) {
	h := triggerHTML()
	if !strings.Contains(h, feedpage.ActionAttr+`="`+feedpage.ActionTrigger+`"`) {
		t.Errorf("trigger markup missing action marker: %s", h)
	}
}

func TestComposerJS_UsesSignatureSelectors(t *testing.T) {
	sig := feedpage.Default()
	c := NewComposer(nil, sig, nil)

	fill := c.fillJS("urn:a", "hello there")
	if !strings.Contains(fill, `"hello there"`) {
		t.Error("fill script missing the text literal")
	}
	if !strings.Contains(fill, "no-editor") {
		t.Error("fill script lacks the not-found result")
	}

	reveal := c.revealJS("urn:a")
	for _, sel := range sig.CommentControls {
		if !strings.Contains(reveal, sel) {
			t.Errorf("reveal script missing control selector %q", sel)
		}
	}

	submit := c.submitJS("urn:a")
	if !strings.Contains(submit, "no-submit") {
		t.Error("submit script lacks the not-found result")
	}
}
