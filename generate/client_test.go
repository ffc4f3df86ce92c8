package generate

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func fastClient(url string) *Client {
	return NewClient(url, WithInitialDelay(time.Millisecond))
}

func TestParseTone(t *testing.T) {
	tests := []struct {
		in      string
		want    Tone
		wantErr bool
	}{
		{"", ToneProfessional, false},
		{"professional", ToneProfessional, false},
		{"funny", ToneFunny, false},
		{"sarcastic", "", true},
		{"Professional", "", true},
	}
	for _, tt := range tests {
		got, err := ParseTone(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseTone(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseTone(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDraft_Success(t *testing.T) {
	var got Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("server decode: %v", err)
		}
		json.NewEncoder(w).Encode(Response{Comment: "Great insight, thanks for sharing."})
	}))
	defer srv.Close()

	c := fastClient(srv.URL)
	comment, err := c.Draft(context.Background(), Request{
		Caption: "shipping a new feature today",
		Tone:    ToneFriendly,
	})
	if err != nil {
		t.Fatalf("Draft: %v", err)
	}
	if comment != "Great insight, thanks for sharing." {
		t.Errorf("comment: %q", comment)
	}
	if got.Tone != ToneFriendly {
		t.Errorf("sent tone: %q", got.Tone)
	}
	if got.PairID == "" {
		t.Error("pair id not generated")
	}
	if got.User.ID == "" || got.User.Name == "" {
		t.Errorf("user info did not degrade to placeholders: %+v", got.User)
	}
}

func TestDraft_RetriesServerErrorsThenSucceeds(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= 2 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(Response{Comment: "third time lucky"})
	}))
	defer srv.Close()

	comment, err := fastClient(srv.URL).Draft(context.Background(), Request{Caption: "c"})
	if err != nil {
		t.Fatalf("Draft: %v", err)
	}
	if comment != "third time lucky" {
		t.Errorf("comment: %q", comment)
	}
	if n := calls.Load(); n != 3 {
		t.Errorf("got %d attempts, want 3", n)
	}
}

func TestDraft_RetriesTimeoutsThenSucceeds(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= 2 {
			time.Sleep(500 * time.Millisecond)
			return
		}
		json.NewEncoder(w).Encode(Response{Comment: "finally answered"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL,
		WithTimeout(50*time.Millisecond),
		WithInitialDelay(time.Millisecond),
	)
	comment, err := c.Draft(context.Background(), Request{Caption: "c"})
	if err != nil {
		t.Fatalf("Draft: %v", err)
	}
	if comment != "finally answered" {
		t.Errorf("comment: %q", comment)
	}
	if n := calls.Load(); n != 3 {
		t.Errorf("got %d attempts, want 3", n)
	}
}

func TestDraft_ExhaustsRetriesOnPersistentFailure(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := fastClient(srv.URL).Draft(context.Background(), Request{Caption: "c"})
	if err == nil {
		t.Fatal("expected error after exhausted retries")
	}
	var se *StatusError
	if !errors.As(err, &se) || se.Code != http.StatusInternalServerError {
		t.Errorf("error chain missing status: %v", err)
	}
	// First try plus two retries.
	if n := calls.Load(); n != 3 {
		t.Errorf("got %d attempts, want 3", n)
	}
}

func TestDraft_MalformedBodyFailsImmediately(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{"comment": `)) // truncated JSON
	}))
	defer srv.Close()

	_, err := fastClient(srv.URL).Draft(context.Background(), Request{Caption: "c"})
	if err == nil {
		t.Fatal("expected error for malformed 2xx body")
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("malformed body was retried: %d attempts", n)
	}
}

func TestDraft_EmptyCommentFailsImmediately(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		json.NewEncoder(w).Encode(Response{Comment: "  "})
	}))
	defer srv.Close()

	_, err := fastClient(srv.URL).Draft(context.Background(), Request{Caption: "c"})
	if err == nil {
		t.Fatal("expected error for missing comment field")
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("rejection was retried: %d attempts", n)
	}
}

func TestDraft_ContextCancelStopsRetrying(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := NewClient(srv.URL, WithInitialDelay(time.Hour))
	_, err := c.Draft(ctx, Request{Caption: "c"})
	if err == nil {
		t.Fatal("expected error with cancelled context")
	}
}

func TestDraft_PreservesExplicitPairID(t *testing.T) {
	var got Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		json.NewEncoder(w).Encode(Response{Comment: "ok"})
	}))
	defer srv.Close()

	_, err := fastClient(srv.URL).Draft(context.Background(), Request{
		Caption: "c", PairID: "pair_fixed",
	})
	if err != nil {
		t.Fatalf("Draft: %v", err)
	}
	if got.PairID != "pair_fixed" {
		t.Errorf("pair id overwritten: %q", got.PairID)
	}
}
