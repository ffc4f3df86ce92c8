package reconcile

import (
	"log/slog"
	"sync"

	"golang.org/x/net/html"

	"github.com/hazyhaar/feedloom/dom"
	"github.com/hazyhaar/feedloom/feedpage"
)

// Reconciler drives one full scan: enumerate candidates, resolve identity,
// classify, and reconcile registry and placement into a Plan.
type Reconciler struct {
	resolver   *Resolver
	classifier *Classifier
	registry   *Registry
	placement  *Placement
	logger     *slog.Logger

	mu       sync.Mutex
	counters Counters
}

// NewReconciler wires the core components together. The registry is passed
// in (not constructed here) so callers own its lifecycle and can reset it on
// navigation or in tests.
func NewReconciler(resolver *Resolver, classifier *Classifier, registry *Registry, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{
		resolver:   resolver,
		classifier: classifier,
		registry:   registry,
		placement:  &Placement{},
		logger:     logger,
	}
}

// Registry exposes the tracked state for diagnostics.
func (r *Reconciler) Registry() *Registry { return r.registry }

// Counters returns a copy of the accumulated counters.
func (r *Reconciler) Counters() Counters {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counters
}

// Scan runs one reconciliation pass against a snapshot and returns the plan
// that brings the page in line with eligibility. Scanning mutates only the
// registry, never the snapshot.
func (r *Reconciler) Scan(snap *feedpage.Snapshot) Plan {
	items := snap.Items()

	idByNode := make(map[*html.Node]string, len(items))
	eligByNode := make(map[*html.Node]bool, len(items))

	var plan Plan
	removed := make(map[*html.Node]bool)
	// haveByID records identities that already own an affordance in this
	// scan, physical or freshly planned. Colliding identities (the accepted
	// tier-4 weakness, or host-cloned subtrees) therefore get at most one.
	haveByID := make(map[string]bool)

	// Per-item reconciliation.
	for ordinal, item := range items {
		id := r.resolver.Resolve(item, ordinal)
		eligible := r.classifier.Eligible(item)
		idByNode[item.Node] = id
		eligByNode[item.Node] = eligible
		r.registry.Observe(id, eligible)

		physical := item.Affordance()

		switch {
		case eligible && physical != nil:
			// Already attached. The registry may disagree after an external
			// re-render; align bookkeeping with reality instead of inserting
			// a second affordance.
			r.registry.SetAffordance(id, true)
			haveByID[id] = true

		case eligible && !haveByID[id]:
			anchor, tier, mode := r.placement.Place(item)
			plan.Ops = append(plan.Ops, Op{
				Kind:       OpInsert,
				LogicalID:  id,
				AnchorPath: dom.PathTo(anchor),
				Mode:       mode,
				Tier:       tier,
			})
			r.registry.SetAffordance(id, true)
			haveByID[id] = true

		case eligible:
			// Another item claimed this identity earlier in the pass.

		case !eligible && physical != nil:
			plan.Ops = append(plan.Ops, Op{
				Kind:       OpRemove,
				LogicalID:  id,
				TargetPath: dom.PathTo(physical),
			})
			removed[physical] = true
			r.registry.SetAffordance(id, false)

		default: // ineligible, nothing attached
			r.registry.SetAffordance(id, false)
		}
	}

	affordances := snap.Affordances()

	// Global de-duplication: the host page can move or clone subtrees
	// between scans in ways the per-item check cannot see. Group physical
	// affordances by the identity of their nearest ancestor item and keep
	// the first of each group in document order.
	dedups := 0
	seenByID := make(map[string]bool)
	for _, aff := range affordances {
		if removed[aff] {
			continue
		}
		owner := snap.ItemFor(aff)
		if owner == nil {
			continue // handled by the pruning pass
		}
		id, ok := idByNode[owner.Node]
		if !ok {
			continue
		}
		if seenByID[id] {
			plan.Ops = append(plan.Ops, Op{
				Kind:       OpRemove,
				LogicalID:  id,
				TargetPath: dom.PathTo(aff),
			})
			removed[aff] = true
			dedups++
			continue
		}
		seenByID[id] = true
	}

	// Pruning: any affordance whose ancestor item is gone or no longer
	// eligible goes away, whatever the bookkeeping said.
	prunes := 0
	for _, aff := range affordances {
		if removed[aff] {
			continue
		}
		owner := snap.ItemFor(aff)
		eligible := false
		if owner != nil {
			if e, ok := eligByNode[owner.Node]; ok {
				eligible = e
			}
		}
		if eligible {
			continue
		}
		op := Op{Kind: OpRemove, TargetPath: dom.PathTo(aff)}
		if owner != nil {
			op.LogicalID = idByNode[owner.Node]
		}
		plan.Ops = append(plan.Ops, op)
		removed[aff] = true
		if op.LogicalID != "" {
			r.registry.SetAffordance(op.LogicalID, false)
		}
		prunes++
	}

	inserts := len(plan.Inserts())
	removes := len(plan.Removes())

	r.mu.Lock()
	r.counters.Scans++
	r.counters.ItemsSeen += uint64(len(items))
	r.counters.Inserted += uint64(inserts)
	r.counters.Removed += uint64(removes)
	r.counters.DedupRemovals += uint64(dedups)
	r.counters.PruneRemovals += uint64(prunes)
	r.mu.Unlock()

	if !plan.Empty() {
		r.logger.Debug("reconcile: scan produced plan",
			"items", len(items), "inserts", inserts, "removes", removes,
			"dedup", dedups, "pruned", prunes)
	}
	return plan
}
