package engine

import (
	"fmt"

	"github.com/hazyhaar/feedloom/generate"
	"github.com/hazyhaar/feedloom/reconcile"
)

// Diagnostics is a point-in-time view of the engine for the control surface
// and the MCP tools.
type Diagnostics struct {
	Counters reconcile.Counters `json:"counters"`
	Tracked  []reconcile.Entry  `json:"tracked"`
	PanelID  string             `json:"panel_id,omitempty"`
	User     generate.UserInfo  `json:"user"`
}

// Diagnostics snapshots counters, tracked identities, and the current panel.
func (e *Engine) Diagnostics() Diagnostics {
	e.mu.Lock()
	panelID := e.panelID
	user := e.user
	e.mu.Unlock()

	return Diagnostics{
		Counters: e.reconciler.Counters(),
		Tracked:  e.reconciler.Registry().Dump(),
		PanelID:  panelID,
		User:     user,
	}
}

// ItemContent is the extracted view of one tracked item.
type ItemContent struct {
	LogicalID string `json:"logical_id"`
	Caption   string `json:"caption"`
	Markdown  string `json:"markdown"`
	HasMedia  bool   `json:"has_media"`
}

// ItemContent extracts the content of the identified item from the last
// scanned snapshot.
func (e *Engine) ItemContent(id string) (ItemContent, error) {
	e.mu.Lock()
	snap := e.lastSnap
	e.mu.Unlock()

	if snap == nil {
		return ItemContent{}, fmt.Errorf("engine: no scan has completed yet")
	}
	resolver := reconcile.NewResolver(e.extractor)
	for i, item := range snap.Items() {
		if resolver.Resolve(item, i) != id {
			continue
		}
		return ItemContent{
			LogicalID: id,
			Caption:   e.extractor.Caption(item),
			Markdown:  e.extractor.CaptionMarkdown(item),
			HasMedia:  item.HasMedia(),
		}, nil
	}
	return ItemContent{}, fmt.Errorf("engine: item %s not on page", id)
}

// Items lists the logical identities of every item in the last snapshot.
func (e *Engine) Items() []string {
	e.mu.Lock()
	snap := e.lastSnap
	e.mu.Unlock()

	if snap == nil {
		return nil
	}
	resolver := reconcile.NewResolver(e.extractor)
	items := snap.Items()
	ids := make([]string, 0, len(items))
	for i, item := range items {
		ids = append(ids, resolver.Resolve(item, i))
	}
	return ids
}

// SetTone overrides the default tone for panels opened afterwards.
func (e *Engine) SetTone(t generate.Tone) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cfg.Generate.Tone = string(t)
}
