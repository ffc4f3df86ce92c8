package browser

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/go-rod/rod/lib/proto"
)

//go:embed observer.js
var observerJS string

const (
	signalBinding = "__feedloom_signal"
	actionBinding = "__feedloom_action"
)

// Action is a user interaction with an affordance, delivered from the page.
type Action struct {
	Action string `json:"action"`
	ID     string `json:"id"`
	Tone   string `json:"tone"`
	Hint   string `json:"hint"`
}

// Signals injects the in-page observer and fans its two bindings out to Go:
// a structural-change edge (OnStructure) and user actions (OnAction).
//
// Filtering of irrelevant mutations happens in the page: only element
// additions and childList changes touching a feed-item subtree fire, and
// nothing under our own affordances ever does.
type Signals struct {
	tab         *Tab
	onStructure func()
	onAction    func(Action)
	logger      *slog.Logger
}

// NewSignals prepares the signal source. onStructure and onAction must be
// non-blocking; they are called from the CDP event goroutine.
func NewSignals(tab *Tab, onStructure func(), onAction func(Action), logger *slog.Logger) *Signals {
	if logger == nil {
		logger = slog.Default()
	}
	return &Signals{tab: tab, onStructure: onStructure, onAction: onAction, logger: logger}
}

// Start registers the bindings, injects the observer script, and begins
// listening. It returns after injection; delivery runs until ctx ends.
func (s *Signals) Start(ctx context.Context, itemSelectors []string) error {
	page := s.tab.Page

	for _, name := range []string{signalBinding, actionBinding} {
		if err := (proto.RuntimeAddBinding{Name: name}).Call(page); err != nil {
			s.logger.Warn("browser: add binding failed (may already exist)",
				"binding", name, "error", err)
		}
	}

	go s.listen(ctx)

	sels, err := json.Marshal(itemSelectors)
	if err != nil {
		return fmt.Errorf("browser: marshal selectors: %w", err)
	}
	if err := s.tab.Eval(ctx, fmt.Sprintf("window.__feedloom_items = %s;", sels)); err != nil {
		return fmt.Errorf("browser: set item selectors: %w", err)
	}
	if err := s.tab.Eval(ctx, observerJS); err != nil {
		return fmt.Errorf("browser: inject observer: %w", err)
	}

	s.logger.Debug("browser: observer injected", "url", s.tab.PageURL)
	return nil
}

func (s *Signals) listen(ctx context.Context) {
	s.tab.Page.Context(ctx).EachEvent(func(e *proto.RuntimeBindingCalled) {
		switch e.Name {
		case signalBinding:
			s.onStructure()
		case actionBinding:
			var a Action
			if err := json.Unmarshal([]byte(e.Payload), &a); err != nil {
				s.logger.Warn("browser: bad action payload", "error", err)
				return
			}
			s.onAction(a)
		}
	})()
}
