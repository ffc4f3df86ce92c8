// Package generate calls a remote drafting service that turns a feed item's
// content into a suggested comment. The client retries transient failures
// with exponential backoff and surfaces everything else as a plain error the
// UI layer can show verbatim.
package generate

import "fmt"

// Tone steers the register of the generated comment.
type Tone string

const (
	ToneProfessional Tone = "professional"
	ToneSupportive   Tone = "supportive"
	ToneFriendly     Tone = "friendly"
	ToneInquisitive  Tone = "inquisitive"
	ToneCheerful     Tone = "cheerful"
	ToneFunny        Tone = "funny"
)

// Tones lists every accepted tone, default first.
var Tones = []Tone{
	ToneProfessional,
	ToneSupportive,
	ToneFriendly,
	ToneInquisitive,
	ToneCheerful,
	ToneFunny,
}

// ParseTone validates a tone string; empty means the default.
func ParseTone(s string) (Tone, error) {
	if s == "" {
		return ToneProfessional, nil
	}
	for _, t := range Tones {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("generate: unknown tone %q", s)
}

// UserInfo identifies the page's logged-in user as far as it could be
// extracted. Fields degrade to placeholders rather than going missing.
type UserInfo struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	ProfileURL string `json:"profile_url"`
}

// Request is the JSON body POSTed to the drafting endpoint.
type Request struct {
	Caption string   `json:"caption"`
	Hint    string   `json:"hint,omitempty"`
	Tone    Tone     `json:"tone"`
	PairID  string   `json:"pair_id"`
	User    UserInfo `json:"user"`
}

// Response is the expected drafting endpoint reply. Comment must be
// non-empty; anything else is an application rejection.
type Response struct {
	Comment string `json:"comment"`
}

// StatusError reports a non-2xx reply from the endpoint. It is retried like
// a transport failure; callers only see it once retries are exhausted.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("generate: endpoint returned status %d", e.Code)
}
