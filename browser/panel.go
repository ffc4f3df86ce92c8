package browser

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/hazyhaar/feedloom/feedpage"
	"github.com/hazyhaar/feedloom/generate"
)

// PanelState is what the drafting panel currently shows.
type PanelState struct {
	// Busy disables the generate/regenerate controls while a request is in
	// flight.
	Busy bool
	// Draft is the generated comment, empty before the first generation.
	Draft string
	// Err is a user-visible failure message.
	Err string
	// Tone and Hint echo the user's current selections so a re-render does
	// not lose them.
	Tone generate.Tone
	Hint string
}

// RenderPanel replaces the affordance's content for the given identity with
// the expanded panel. Collapse restores the trigger.
func (a *Applier) RenderPanel(ctx context.Context, logicalID string, st PanelState) error {
	return a.setAffordanceHTML(ctx, logicalID, panelHTML(st))
}

// Collapse returns the affordance for the given identity to its trigger-only
// form.
func (a *Applier) Collapse(ctx context.Context, logicalID string) error {
	return a.setAffordanceHTML(ctx, logicalID, triggerHTML())
}

func (a *Applier) setAffordanceHTML(ctx context.Context, logicalID, inner string) error {
	js := fmt.Sprintf(`(() => {
  const host = document.querySelector('[%s=' + CSS.escape(%s) + ']');
  if (!host) return 'host-missing';
  host.innerHTML = %s;
  return 'ok';
})()`, feedpage.AffordanceAttr, jsString(logicalID), jsString(inner))

	res, err := a.tab.EvalString(ctx, js)
	if err != nil {
		return fmt.Errorf("browser: render panel: %w", err)
	}
	if res != "ok" {
		return fmt.Errorf("browser: render panel: %s", res)
	}
	return nil
}

func triggerHTML() string {
	return fmt.Sprintf(
		`<button type="button" class="%s__trigger" %s=%q>Generate</button>`,
		feedpage.AffordanceClass, feedpage.ActionAttr, feedpage.ActionTrigger)
}

// panelHTML renders the panel body. All user-influenced strings are escaped;
// the draft travels from the generation endpoint and must not become markup.
func panelHTML(st PanelState) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<div class="%s">`, feedpage.PanelClass)

	b.WriteString(`<select name="tone">`)
	for _, t := range generate.Tones {
		sel := ""
		if t == st.Tone || (st.Tone == "" && t == generate.ToneProfessional) {
			sel = " selected"
		}
		fmt.Fprintf(&b, `<option value="%s"%s>%s</option>`, t, sel, t)
	}
	b.WriteString(`</select>`)

	fmt.Fprintf(&b, `<input name="hint" type="text" placeholder="Steer the comment (optional)" value="%s">`,
		html.EscapeString(st.Hint))

	disabled := ""
	if st.Busy {
		disabled = " disabled"
	}
	switch {
	case st.Draft == "":
		fmt.Fprintf(&b, `<button type="button" %s=%q%s>Generate</button>`,
			feedpage.ActionAttr, feedpage.ActionGenerate, disabled)
	default:
		fmt.Fprintf(&b, `<textarea class="%s__draft" readonly>%s</textarea>`,
			feedpage.PanelClass, html.EscapeString(st.Draft))
		fmt.Fprintf(&b, `<button type="button" %s=%q%s>Regenerate</button>`,
			feedpage.ActionAttr, feedpage.ActionRegenerate, disabled)
		fmt.Fprintf(&b, `<button type="button" %s=%q%s>Use comment</button>`,
			feedpage.ActionAttr, feedpage.ActionAccept, disabled)
	}

	if st.Busy {
		fmt.Fprintf(&b, `<span class="%s__status">Generating…</span>`, feedpage.PanelClass)
	}
	if st.Err != "" {
		fmt.Fprintf(&b, `<span class="%s__error">%s</span>`, feedpage.PanelClass, html.EscapeString(st.Err))
	}

	fmt.Fprintf(&b, `<button type="button" %s=%q>Close</button>`,
		feedpage.ActionAttr, feedpage.ActionClose)
	b.WriteString(`</div>`)
	return b.String()
}
