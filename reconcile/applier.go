package reconcile

import (
	"fmt"

	"golang.org/x/net/html"

	"github.com/hazyhaar/feedloom/dom"
	"github.com/hazyhaar/feedloom/feedpage"
)

// Apply executes a plan against a parsed snapshot in place. It is the
// fixture/offline counterpart of the browser applier: tests use it to close
// the loop (scan, apply, rescan) without a live page.
//
// All paths are resolved against the tree before any mutation, so op order
// inside one plan cannot invalidate later paths. Unresolvable paths are
// counted, not fatal: the page equivalent is a subtree that moved between
// planning and applying, which the next scan absorbs.
func Apply(snap *feedpage.Snapshot, plan Plan) error {
	doc := snap.Doc()

	type resolvedInsert struct {
		op     Op
		anchor *html.Node
	}
	var inserts []resolvedInsert
	var removes []*html.Node
	missed := 0

	for _, op := range plan.Ops {
		switch op.Kind {
		case OpInsert:
			anchor := dom.FindPath(doc, op.AnchorPath)
			if anchor == nil {
				missed++
				continue
			}
			inserts = append(inserts, resolvedInsert{op: op, anchor: anchor})
		case OpRemove:
			target := dom.FindPath(doc, op.TargetPath)
			if target == nil {
				missed++
				continue
			}
			removes = append(removes, target)
		}
	}

	for _, n := range removes {
		dom.Detach(n)
	}
	for _, ri := range inserts {
		aff := feedpage.NewAffordance(ri.op.LogicalID, ri.op.Tier == TierBlockFallback)
		switch ri.op.Mode {
		case ModeSiblingAfter:
			dom.InsertAfter(ri.anchor, aff)
		default:
			ri.anchor.AppendChild(aff)
		}
	}

	if missed > 0 {
		return fmt.Errorf("reconcile: %d op(s) no longer resolvable", missed)
	}
	return nil
}
