// Package engine orchestrates the augmentation loop: scan the live page,
// reconcile affordances, and run the drafting panel workflow around user
// clicks.
package engine

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/hazyhaar/feedloom/browser"
	"github.com/hazyhaar/feedloom/content"
	"github.com/hazyhaar/feedloom/feedpage"
	"github.com/hazyhaar/feedloom/generate"
	"github.com/hazyhaar/feedloom/reconcile"
)

// Page supplies the live DOM. *browser.Tab implements it; tests substitute
// fixtures.
type Page interface {
	HTML(ctx context.Context) ([]byte, error)
}

// Surface executes plans and renders panel states on the page.
// *browser.Applier implements it.
type Surface interface {
	Apply(ctx context.Context, plan reconcile.Plan) int
	RenderPanel(ctx context.Context, logicalID string, st browser.PanelState) error
	Collapse(ctx context.Context, logicalID string) error
}

// Poster submits an accepted draft through the host page's composer.
// *browser.Composer implements it.
type Poster interface {
	Submit(ctx context.Context, logicalID, text string) error
}

// Drafter requests comments from the generation endpoint.
// *generate.Client implements it.
type Drafter interface {
	Draft(ctx context.Context, req generate.Request) (string, error)
}

// ProfileStore persists the extracted user identity. *profilecache.Store
// implements it.
type ProfileStore interface {
	Get(ctx context.Context) content.Profile
	Put(ctx context.Context, p content.Profile) error
}

// Deps collects everything the engine drives.
type Deps struct {
	Page       Page
	Surface    Surface
	Poster     Poster
	Drafter    Drafter
	Profiles   ProfileStore
	Signatures *feedpage.Signatures
	Logger     *slog.Logger
}

// Engine runs the reconciliation scheduler and serializes panel actions.
// All panel state lives behind one mutex; generation runs on its own
// goroutine and re-checks the sequence number before touching the panel, so
// a superseded request's result is simply dropped.
type Engine struct {
	deps       Deps
	cfg        *Config
	extractor  *content.Extractor
	reconciler *reconcile.Reconciler
	scheduler  *reconcile.Scheduler
	logger     *slog.Logger

	actionCh chan browser.Action

	mu       sync.Mutex
	lastSnap *feedpage.Snapshot
	panelID  string
	panel    browser.PanelState
	genSeq   uint64
	user     generate.UserInfo
}

// New assembles an Engine. Deps.Page, Surface, Poster and Drafter are
// required; Profiles may be nil (identity then degrades to placeholders).
func New(cfg *Config, deps Deps) *Engine {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	ex := content.NewExtractor(deps.Signatures.Placeholders)
	e := &Engine{
		deps:      deps,
		cfg:       cfg,
		extractor: ex,
		reconciler: reconcile.NewReconciler(
			reconcile.NewResolver(ex),
			&reconcile.Classifier{MinTextLen: cfg.Scan.MinTextLen},
			reconcile.NewRegistry(),
			deps.Logger,
		),
		logger:   deps.Logger,
		actionCh: make(chan browser.Action, 16),
	}
	e.scheduler = reconcile.NewScheduler(e.scan, reconcile.SchedulerConfig{
		DebounceWindow: cfg.Scan.DebounceWindow,
		Interval:       cfg.Scan.Interval,
	}, deps.Logger)
	return e
}

// Signal reports a structural page change. Safe from any goroutine.
func (e *Engine) Signal() { e.scheduler.Signal() }

// HandleAction enqueues a user interaction from the page. Non-blocking; the
// page can click faster than drafts resolve, and stale clicks are loggable
// losses, not errors.
func (e *Engine) HandleAction(a browser.Action) {
	select {
	case e.actionCh <- a:
	default:
		e.logger.Warn("engine: action dropped, queue full", "action", a.Action, "id", a.ID)
	}
}

// Run blocks until ctx ends. It loads the cached identity, starts the
// scheduler, and consumes panel actions.
func (e *Engine) Run(ctx context.Context) {
	if e.deps.Profiles != nil {
		e.setUser(e.deps.Profiles.Get(ctx))
	}

	go e.scheduler.Run(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case a := <-e.actionCh:
			e.handle(ctx, a)
		}
	}
}

// scan is the scheduler callback: one reconciliation pass against the live
// page.
func (e *Engine) scan(ctx context.Context) {
	raw, err := e.deps.Page.HTML(ctx)
	if err != nil {
		e.logger.Warn("engine: read page failed", "error", err)
		return
	}
	snap, err := feedpage.Parse(bytes.NewReader(raw), e.deps.Signatures)
	if err != nil {
		e.logger.Warn("engine: parse page failed", "error", err)
		return
	}

	e.refreshProfile(ctx, snap)

	plan := e.reconciler.Scan(snap)
	e.mu.Lock()
	e.lastSnap = snap
	e.mu.Unlock()

	if plan.Empty() {
		return
	}
	if stale := e.deps.Surface.Apply(ctx, plan); stale > 0 {
		// The page moved under the plan; the next scan re-plans from truth.
		e.logger.Debug("engine: plan partially stale", "stale", stale)
	}
}

// refreshProfile opportunistically re-extracts the logged-in identity; page
// chrome is only intermittently present.
func (e *Engine) refreshProfile(ctx context.Context, snap *feedpage.Snapshot) {
	p := e.extractor.ExtractProfile(snap)
	if p == (content.Profile{}) {
		return
	}
	e.setUser(p)
	if e.deps.Profiles != nil {
		if err := e.deps.Profiles.Put(ctx, p); err != nil {
			e.logger.Warn("engine: profile cache write failed", "error", err)
		}
	}
}

func (e *Engine) setUser(p content.Profile) {
	if p == (content.Profile{}) {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.user = generate.UserInfo{
		ID:         p.ID,
		Email:      p.Email,
		Name:       p.Name,
		ProfileURL: p.ProfileURL,
	}
}

func (e *Engine) handle(ctx context.Context, a browser.Action) {
	switch a.Action {
	case feedpage.ActionTrigger:
		e.openPanel(ctx, a.ID)
	case feedpage.ActionGenerate, feedpage.ActionRegenerate:
		e.startGeneration(ctx, a)
	case feedpage.ActionAccept:
		e.accept(ctx, a.ID)
	case feedpage.ActionClose:
		e.closePanel(ctx, a.ID)
	default:
		e.logger.Warn("engine: unknown action", "action", a.Action)
	}
}

// openPanel expands the clicked affordance. There is at most one expanded
// panel; opening a new one tears the previous one down first.
func (e *Engine) openPanel(ctx context.Context, id string) {
	e.mu.Lock()
	prev := e.panelID
	e.panelID = id
	e.panel = browser.PanelState{Tone: e.defaultTone()}
	e.genSeq++ // orphan any in-flight generation for the old panel
	st := e.panel
	e.mu.Unlock()

	if prev != "" && prev != id {
		if err := e.deps.Surface.Collapse(ctx, prev); err != nil {
			e.logger.Debug("engine: collapse previous panel", "id", prev, "error", err)
		}
	}
	e.renderPanel(ctx, id, st)
}

func (e *Engine) startGeneration(ctx context.Context, a browser.Action) {
	tone, err := generate.ParseTone(a.Tone)
	if err != nil {
		tone = generate.ToneProfessional
	}

	e.mu.Lock()
	if e.panelID != a.ID || e.panel.Busy {
		e.mu.Unlock()
		return
	}
	caption := e.captionForLocked(a.ID)
	e.panel.Busy = true
	e.panel.Err = ""
	e.panel.Tone = tone
	e.panel.Hint = a.Hint
	e.genSeq++
	seq := e.genSeq
	user := e.user
	st := e.panel
	e.mu.Unlock()

	e.renderPanel(ctx, a.ID, st)

	go e.runGeneration(ctx, a.ID, seq, generate.Request{
		Caption: caption,
		Hint:    a.Hint,
		Tone:    tone,
		User:    user,
	})
}

func (e *Engine) runGeneration(ctx context.Context, id string, seq uint64, req generate.Request) {
	draft, err := e.deps.Drafter.Draft(ctx, req)

	e.mu.Lock()
	if e.genSeq != seq || e.panelID != id {
		// The panel moved on while we were drafting.
		e.mu.Unlock()
		e.logger.Debug("engine: discarding superseded draft", "id", id)
		return
	}
	e.panel.Busy = false
	if err != nil {
		e.panel.Err = fmt.Sprintf("generation failed: %v", err)
	} else {
		e.panel.Draft = draft
		e.panel.Err = ""
	}
	st := e.panel
	e.mu.Unlock()

	e.renderPanel(ctx, id, st)
}

func (e *Engine) accept(ctx context.Context, id string) {
	e.mu.Lock()
	if e.panelID != id || e.panel.Draft == "" || e.panel.Busy {
		e.mu.Unlock()
		return
	}
	draft := e.panel.Draft
	e.mu.Unlock()

	if err := e.deps.Poster.Submit(ctx, id, draft); err != nil {
		e.mu.Lock()
		e.panel.Err = err.Error()
		st := e.panel
		e.mu.Unlock()
		e.renderPanel(ctx, id, st)
		return
	}
	e.closePanel(ctx, id)
}

func (e *Engine) closePanel(ctx context.Context, id string) {
	e.mu.Lock()
	if e.panelID == id {
		e.panelID = ""
		e.panel = browser.PanelState{}
		e.genSeq++
	}
	e.mu.Unlock()

	if err := e.deps.Surface.Collapse(ctx, id); err != nil {
		e.logger.Debug("engine: collapse panel", "id", id, "error", err)
	}
}

func (e *Engine) renderPanel(ctx context.Context, id string, st browser.PanelState) {
	if err := e.deps.Surface.RenderPanel(ctx, id, st); err != nil {
		e.logger.Warn("engine: render panel failed", "id", id, "error", err)
	}
}

func (e *Engine) defaultTone() generate.Tone {
	t, err := generate.ParseTone(e.cfg.Generate.Tone)
	if err != nil {
		return generate.ToneProfessional
	}
	return t
}

// captionForLocked resolves an identity against the last scanned snapshot
// and extracts its caption. Empty when the item is no longer present.
// Caller holds e.mu.
func (e *Engine) captionForLocked(id string) string {
	if e.lastSnap == nil {
		return ""
	}
	resolver := reconcile.NewResolver(e.extractor)
	for i, item := range e.lastSnap.Items() {
		if resolver.Resolve(item, i) == id {
			return e.extractor.Caption(item)
		}
	}
	return ""
}
