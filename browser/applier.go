package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/hazyhaar/feedloom/dom"
	"github.com/hazyhaar/feedloom/feedpage"
	"github.com/hazyhaar/feedloom/reconcile"
)

// Applier executes reconciliation plans against the live page.
type Applier struct {
	tab    *Tab
	logger *slog.Logger
}

// NewApplier creates an Applier for a tab.
func NewApplier(tab *Tab, logger *slog.Logger) *Applier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Applier{tab: tab, logger: logger}
}

// Apply executes the whole plan in a single page script and returns the
// number of ops that could not be applied. Non-zero means the page moved
// between planning and applying; the next scan re-plans from truth, so the
// caller treats it as staleness, not failure.
func (a *Applier) Apply(ctx context.Context, plan reconcile.Plan) int {
	if plan.Empty() {
		return 0
	}
	res, err := a.tab.EvalString(ctx, planJS(plan))
	if err != nil {
		a.logger.Warn("browser: apply plan failed", "ops", len(plan.Ops), "error", err)
		return len(plan.Ops)
	}
	stale, err := strconv.Atoi(res)
	if err != nil {
		a.logger.Warn("browser: apply plan returned garbage", "result", res)
		return len(plan.Ops)
	}
	if stale > 0 {
		a.logger.Debug("browser: plan partially stale", "stale", stale)
	}
	return stale
}

// planOp is the JSON shape one op takes on its way into the page script.
type planOp struct {
	Path string `json:"path"`
	Pos  string `json:"pos,omitempty"`
	HTML string `json:"html,omitempty"`
}

// planJS builds one script executing the whole plan. Every positional path
// is resolved before any mutation: a removal shifts the positional index of
// everything after it, so resolve-then-mutate is what keeps a multi-op plan
// addressing the nodes it was planned against. Removal targets must carry
// the marker attribute; a drifted path never takes host content with it.
func planJS(plan reconcile.Plan) string {
	var removes, inserts []planOp
	for _, op := range plan.Removes() {
		removes = append(removes, planOp{Path: op.TargetPath})
	}
	for _, op := range plan.Inserts() {
		pos := "beforeend"
		if op.Mode == reconcile.ModeSiblingAfter {
			pos = "afterend"
		}
		inserts = append(inserts, planOp{
			Path: op.AnchorPath,
			Pos:  pos,
			HTML: dom.Render(feedpage.NewAffordance(op.LogicalID, op.Tier == reconcile.TierBlockFallback)),
		})
	}

	removesJSON, _ := json.Marshal(removes)
	insertsJSON, _ := json.Marshal(inserts)

	return fmt.Sprintf(`(() => {
  const resolve = (p) => document.evaluate(
    p, document, null, XPathResult.FIRST_ORDERED_NODE_TYPE, null).singleNodeValue;
  let stale = 0;

  const removeTargets = [];
  for (const op of %s) {
    const n = resolve(op.path);
    if (!n || !n.hasAttribute || !n.hasAttribute(%s)) { stale++; continue; }
    removeTargets.push(n);
  }
  const insertTargets = [];
  for (const op of %s) {
    const a = resolve(op.path);
    if (!a) { stale++; continue; }
    insertTargets.push([a, op.pos, op.html]);
  }

  for (const n of removeTargets) n.remove();
  for (const [a, pos, html] of insertTargets) a.insertAdjacentHTML(pos, html);
  return String(stale);
})()`, removesJSON, jsString(feedpage.AffordanceAttr), insertsJSON)
}

// jsString renders s as a JS string literal. JSON string syntax is valid JS.
func jsString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
