package browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hazyhaar/feedloom/feedpage"
)

// ErrNoCommentBox reports that the host page's comment editor could not be
// located for the item. The message is shown to the user as-is.
var ErrNoCommentBox = errors.New("comment box not found")

// Composer operates the host page's own comment editor: reveal it, type the
// accepted draft into it, and press the page's submit control. Nothing is
// synthesised; the page posts the comment exactly as if typed by hand.
type Composer struct {
	tab    *Tab
	sig    *feedpage.Signatures
	logger *slog.Logger
}

// NewComposer creates a Composer bound to a tab and signature set.
func NewComposer(tab *Tab, sig *feedpage.Signatures, logger *slog.Logger) *Composer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Composer{tab: tab, sig: sig, logger: logger}
}

// Submit types text into the comment editor of the item owning the given
// affordance and clicks the submit control. The editor often only appears
// after the comment control is clicked, so Submit reveals it first and
// retries the lookup briefly.
func (c *Composer) Submit(ctx context.Context, logicalID, text string) error {
	res, err := c.tab.EvalString(ctx, c.revealJS(logicalID))
	if err != nil {
		return fmt.Errorf("browser: reveal editor: %w", err)
	}
	if res == "item-missing" {
		return fmt.Errorf("browser: submit: item for %s no longer on page", logicalID)
	}

	// The editor mounts asynchronously after the reveal click.
	var lastRes string
	deadline := time.Now().Add(3 * time.Second)
	for {
		lastRes, err = c.tab.EvalString(ctx, c.fillJS(logicalID, text))
		if err != nil {
			return fmt.Errorf("browser: fill editor: %w", err)
		}
		if lastRes == "ok" {
			break
		}
		if time.Now().After(deadline) {
			c.logger.Warn("browser: comment editor lookup failed",
				"id", logicalID, "result", lastRes)
			return ErrNoCommentBox
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(200 * time.Millisecond):
		}
	}

	res, err = c.tab.EvalString(ctx, c.submitJS(logicalID))
	if err != nil {
		return fmt.Errorf("browser: click submit: %w", err)
	}
	if res != "ok" {
		return ErrNoCommentBox
	}
	c.logger.Info("browser: comment submitted", "id", logicalID)
	return nil
}

func (c *Composer) selectorsJSON() (items, controls, inputs, submits string) {
	m := func(ss []string) string {
		b, _ := json.Marshal(ss)
		return string(b)
	}
	return m(c.sig.Items), m(c.sig.CommentControls), m(c.sig.CommentInputs), m(c.sig.SubmitControls)
}

// itemScopeJS is the shared prologue: resolve the affordance host, then the
// owning feed item by walking ancestors against the item selectors.
func (c *Composer) itemScopeJS(logicalID string) string {
	items, _, _, _ := c.selectorsJSON()
	return fmt.Sprintf(`
  const host = document.querySelector('[%s=' + CSS.escape(%s) + ']');
  if (!host) return 'item-missing';
  const itemSels = %s;
  let item = null;
  for (let n = host.parentElement; n && !item; n = n.parentElement) {
    for (const sel of itemSels) {
      try { if (n.matches(sel)) { item = n; break; } } catch (e) {}
    }
  }
  if (!item) return 'item-missing';`,
		feedpage.AffordanceAttr, jsString(logicalID), items)
}

func (c *Composer) revealJS(logicalID string) string {
	_, controls, inputs, _ := c.selectorsJSON()
	return fmt.Sprintf(`(() => {%s
  const inputSels = %s;
  for (const sel of inputSels) {
    try { if (item.querySelector(sel)) return 'already-open'; } catch (e) {}
  }
  const ctlSels = %s;
  for (const sel of ctlSels) {
    try {
      const ctl = item.querySelector(sel);
      if (ctl) { ctl.click(); return 'revealed'; }
    } catch (e) {}
  }
  return 'no-control';
})()`, c.itemScopeJS(logicalID), inputs, controls)
}

func (c *Composer) fillJS(logicalID, text string) string {
	_, _, inputs, _ := c.selectorsJSON()
	return fmt.Sprintf(`(() => {%s
  const inputSels = %s;
  let box = null;
  for (const sel of inputSels) {
    try { box = item.querySelector(sel); } catch (e) {}
    if (box) break;
  }
  if (!box) return 'no-editor';
  box.focus();
  if (box.isContentEditable) {
    box.textContent = %s;
  } else if ('value' in box) {
    box.value = %s;
  } else {
    return 'no-editor';
  }
  box.dispatchEvent(new Event('input', { bubbles: true }));
  return 'ok';
})()`, c.itemScopeJS(logicalID), inputs, jsString(text), jsString(text))
}

func (c *Composer) submitJS(logicalID string) string {
	_, _, _, submits := c.selectorsJSON()
	return fmt.Sprintf(`(() => {%s
  const subSels = %s;
  for (const sel of subSels) {
    try {
      const btn = item.querySelector(sel);
      if (btn && !btn.disabled) { btn.click(); return 'ok'; }
    } catch (e) {}
  }
  return 'no-submit';
})()`, c.itemScopeJS(logicalID), submits)
}
