package checks

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/opalia-labs/palmares/internal/openai"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// verdictServer serves a fixed relevance verdict and counts model calls.
func verdictServer(t *testing.T, relevant bool, calls *atomic.Int64) *openai.Client {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		content, _ := json.Marshal(map[string]bool{"relevant": relevant})
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": string(content)}},
			},
		})
	}))
	t.Cleanup(server.Close)

	llm := openai.NewClient("test-key", "test-model")
	llm.SetTestTransport(server.URL)
	return llm
}

func TestLengthCheck(t *testing.T) {
	c := NewLengthCheck(20)

	tests := []struct {
		name    string
		message string
		ok      bool
		reply   string
	}{
		{"ok", "cardiologie à Lyon", true, ""},
		{"empty", "", false, msgEmpty},
		{"whitespace only", "   \n\t ", false, msgEmpty},
		{"too long", strings.Repeat("a", 21), false, msgTooLong},
		{"exactly at bound", strings.Repeat("é", 20), true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := c.Run(context.Background(), Turn{Message: tt.message})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res.OK != tt.ok {
				t.Errorf("OK = %v, want %v", res.OK, tt.ok)
			}
			if res.Reply != tt.reply {
				t.Errorf("Reply = %q, want %q", res.Reply, tt.reply)
			}
		})
	}
}

func TestTurnLimitCheck(t *testing.T) {
	c := NewTurnLimitCheck(6)

	res, err := c.Run(context.Background(), Turn{Message: "bonjour", UserTurns: 5})
	if err != nil || !res.OK {
		t.Fatalf("turn 6 should pass, got %+v err=%v", res, err)
	}
	res, err = c.Run(context.Background(), Turn{Message: "bonjour", UserTurns: 6})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.OK || res.Reply != msgTurnCap {
		t.Errorf("turn 7 should be capped, got %+v", res)
	}
}

func TestRelevanceCheck(t *testing.T) {
	var calls atomic.Int64
	c := NewRelevanceCheck(verdictServer(t, false, &calls))

	res, err := c.Run(context.Background(), Turn{Message: "je mange des frites"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.OK || res.Reply != msgOffTopic {
		t.Errorf("off-topic message should be rejected, got %+v", res)
	}

	c = NewRelevanceCheck(verdictServer(t, true, &calls))
	res, err = c.Run(context.Background(), Turn{Message: "meilleur hôpital pour la cataracte"})
	if err != nil || !res.OK {
		t.Fatalf("relevant message should pass, got %+v err=%v", res, err)
	}
}

func TestChain_StopsAtFirstFailure(t *testing.T) {
	var calls atomic.Int64
	chain := Default(verdictServer(t, true, &calls), 20, 6, discardLogger())

	res, err := chain.Run(context.Background(), Turn{Message: strings.Repeat("a", 50)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.OK {
		t.Fatal("over-length message should be rejected")
	}
	if res.Check != "message_length" {
		t.Errorf("failing check = %q, want message_length", res.Check)
	}
	if n := calls.Load(); n != 0 {
		t.Errorf("relevance model called %d times after an earlier rejection, want 0", n)
	}
}

func TestChain_AllPass(t *testing.T) {
	var calls atomic.Int64
	chain := Default(verdictServer(t, true, &calls), 280, 6, discardLogger())

	res, err := chain.Run(context.Background(), Turn{Message: "les meilleurs hôpitaux de Paris", UserTurns: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.OK || res.Reply != "" || res.Check != "" {
		t.Errorf("clean message should pass untouched, got %+v", res)
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("relevance model called %d times, want 1", n)
	}
}

func TestChain_ModelError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{"error": map[string]string{"message": "boom"}})
	}))
	defer server.Close()

	llm := openai.NewClient("test-key", "test-model")
	llm.SetTestTransport(server.URL)
	chain := Default(llm, 280, 6, discardLogger())

	if _, err := chain.Run(context.Background(), Turn{Message: "cardiologie à Lyon"}); err == nil {
		t.Fatal("expected the chain to surface a model failure")
	}
}
