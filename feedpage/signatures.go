// Package feedpage is the page adapter: everything feedloom knows about the
// host page's markup lives here as enumerated structural signatures
// (CSS-selector lists). The reconciliation core consumes items and regions
// through this package and never hard-codes a selector, so a host template
// change is a signatures change, not an algorithm change.
package feedpage

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Signatures enumerates the structural patterns of one host page template.
// Lists are tried in order; the first match wins.
type Signatures struct {
	// Items are the selectors whose union enumerates candidate feed items.
	Items []string `yaml:"items"`

	// IdentityAttrs are explicit unique-identifier attributes checked on an
	// item, highest priority first (identity tier 1).
	IdentityAttrs []string `yaml:"identity_attrs"`

	// ActionBars locate the structured action region inside an item.
	ActionBars []string `yaml:"action_bars"`

	// CommentControls locate a comment-action control (within the action bar
	// or the whole item).
	CommentControls []string `yaml:"comment_controls"`

	// CommentInputs locate an open comment editor region.
	CommentInputs []string `yaml:"comment_inputs"`

	// SubmitControls locate the editor's submit button.
	SubmitControls []string `yaml:"submit_controls"`

	// ActionWrappers describe the list-item-shaped wrapper around an action
	// control, used when inserting a sibling affordance (placement tier 1).
	ActionWrappers []string `yaml:"action_wrappers"`

	// TextRegions locate caption/body text inside an item.
	TextRegions []string `yaml:"text_regions"`

	// MediaMarkers locate image/video/article-preview containers.
	MediaMarkers []string `yaml:"media_markers"`

	// Placeholders are degenerate caption strings the host renders for
	// contentless items; a caption equal to one of these is treated as empty.
	Placeholders []string `yaml:"placeholders"`

	// ProfileName and ProfileLink locate the logged-in user's name and
	// profile link in the page chrome (best-effort identity capture).
	ProfileName []string `yaml:"profile_name"`
	ProfileLink []string `yaml:"profile_link"`
}

// Default returns the signature set for the currently supported host
// template. Kept as data so a template change ships as a config change.
func Default() *Signatures {
	return &Signatures{
		Items: []string{
			"div[data-urn]",
			"div.feed-shared-update-v2",
			"div[data-id^=urn]",
		},
		IdentityAttrs: []string{"data-urn", "data-id"},
		ActionBars: []string{
			".feed-shared-social-action-bar",
			".social-details-social-action-bar",
			"div[class*=social-action-bar]",
		},
		CommentControls: []string{
			"button[aria-label*=omment]",
			"button[class*=comment-button]",
			".comment-button",
		},
		CommentInputs: []string{
			".comments-comment-box__form",
			"div[class*=comments-comment-texteditor]",
			"div[contenteditable=true][role=textbox]",
		},
		SubmitControls: []string{
			"button[class*=comments-comment-box__submit-button]",
			"button[type=submit]",
		},
		ActionWrappers: []string{
			".feed-shared-social-action-bar__action-button",
			"li",
		},
		TextRegions: []string{
			".feed-shared-update-v2__description",
			".update-components-text",
			"div[class*=commentary]",
		},
		MediaMarkers: []string{
			".update-components-image",
			".update-components-linkedin-video",
			".update-components-article",
			"div[class*=update-components-video]",
		},
		Placeholders: []string{"Feed post", "…"},
		ProfileName: []string{
			".global-nav__me-photo",
			"img[class*=global-nav__me]",
		},
		ProfileLink: []string{
			"a[href^=/in/]",
			"a[class*=global-nav__me]",
		},
	}
}

// LoadFile reads a signatures YAML file. Missing lists fall back to the
// defaults so a partial override file stays small.
func LoadFile(path string) (*Signatures, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("feedpage: read signatures: %w", err)
	}
	sig := Default()
	if err := yaml.Unmarshal(data, sig); err != nil {
		return nil, fmt.Errorf("feedpage: parse signatures: %w", err)
	}
	return sig, nil
}
