// Package reconcile is the core of feedloom: the idempotent loop that keeps
// exactly one comment-drafting affordance attached to every eligible feed
// item of a constantly mutating third-party page.
//
// The package never touches a live browser. It consumes parsed
// [feedpage.Snapshot] views and emits a [Plan] of insert/remove operations
// addressed by XPath; appliers (the browser, or the in-tree applier used by
// fixtures) execute the plan. Running the same scan twice against an
// unchanged page yields an empty second plan.
package reconcile

// OpKind discriminates plan operations.
type OpKind int

const (
	OpInsert OpKind = iota + 1
	OpRemove
)

func (k OpKind) String() string {
	switch k {
	case OpInsert:
		return "insert"
	case OpRemove:
		return "remove"
	default:
		return "unknown"
	}
}

// Tier is the placement tier an insert degraded to.
type Tier int

const (
	// TierActionSibling inserts next to the comment control's wrapper
	// inside the action bar.
	TierActionSibling Tier = iota + 1
	// TierActionAppend appends directly inside the action bar.
	TierActionAppend
	// TierBlockFallback appends a block-level affordance at the item's end.
	TierBlockFallback
)

// Mode is how an insert attaches relative to its anchor.
type Mode int

const (
	ModeSiblingAfter Mode = iota + 1
	ModeAppendChild
)

// Op is a single planned DOM operation.
type Op struct {
	Kind      OpKind
	LogicalID string
	// AnchorPath addresses the insert anchor (tier-dependent meaning).
	AnchorPath string
	Mode       Mode
	Tier       Tier
	// TargetPath addresses the affordance to remove.
	TargetPath string
}

// Plan is the outcome of one scan: the operations that bring the page's
// augmentation state in line with eligibility.
type Plan struct {
	Ops []Op
}

// Empty reports whether the scan found nothing to change.
func (p Plan) Empty() bool { return len(p.Ops) == 0 }

// Inserts returns only the insert operations.
func (p Plan) Inserts() []Op { return p.filter(OpInsert) }

// Removes returns only the remove operations.
func (p Plan) Removes() []Op { return p.filter(OpRemove) }

func (p Plan) filter(kind OpKind) []Op {
	var out []Op
	for _, op := range p.Ops {
		if op.Kind == kind {
			out = append(out, op)
		}
	}
	return out
}

// Counters accumulate over the life of a reconciler, for diagnostics.
type Counters struct {
	Scans         uint64 `json:"scans"`
	ItemsSeen     uint64 `json:"items_seen"`
	Inserted      uint64 `json:"inserted"`
	Removed       uint64 `json:"removed"`
	DedupRemovals uint64 `json:"dedup_removals"`
	PruneRemovals uint64 `json:"prune_removals"`
}
