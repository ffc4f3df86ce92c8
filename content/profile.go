package content

import (
	"strings"

	"github.com/hazyhaar/feedloom/dom"
	"github.com/hazyhaar/feedloom/feedpage"
)

// Profile is the logged-in user identity as far as the page reveals it.
// Every field is best-effort; empty means unknown.
type Profile struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	ProfileURL string `json:"profile_url"`
}

// ExtractProfile scans the page chrome for the logged-in user's identity.
// Never fails: whatever could not be found stays empty.
func (e *Extractor) ExtractProfile(snap *feedpage.Snapshot) Profile {
	var p Profile
	sig := snap.Signatures()

	for _, sel := range sig.ProfileName {
		n := dom.QuerySelector(snap.Doc(), sel)
		if n == nil {
			continue
		}
		// Avatar images carry the name in alt text; other nodes in content.
		if alt := dom.Attr(n, "alt"); alt != "" {
			p.Name = CleanText(alt)
			break
		}
		if text := dom.CollectText(n); text != "" {
			p.Name = text
			break
		}
	}

	for _, sel := range sig.ProfileLink {
		n := dom.QuerySelector(snap.Doc(), sel)
		if n == nil {
			continue
		}
		if href := dom.Attr(n, "href"); href != "" {
			p.ProfileURL = href
			// The profile slug doubles as a page-level user id.
			p.ID = profileSlug(href)
			break
		}
	}

	return p
}

// profileSlug extracts the trailing path segment of a profile URL.
func profileSlug(href string) string {
	href = strings.TrimSuffix(href, "/")
	if idx := strings.LastIndexByte(href, '/'); idx >= 0 {
		return href[idx+1:]
	}
	return href
}
