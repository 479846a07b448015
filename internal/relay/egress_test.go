package relay

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestAutoEgressFallsBackToHTTPWhenWSDown(t *testing.T) {
	var got ReplyRequest
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, WithTimeout(2*time.Second))
	ws := NewWebSocket("ws://127.0.0.1:1", 0, time.Second) // never connected

	eg := NewEgress("auto", false, c, ws, zap.NewNop())
	if err := eg.SendText(context.Background(), "garden", "hello"); err != nil {
		t.Fatalf("SendText via fallback: %v", err)
	}
	if atomic.LoadInt32(&calls) != 1 || got.Type != "text" || got.Room != "garden" {
		t.Fatalf("expected one HTTP frame, calls=%d frame=%+v", calls, got)
	}
}

func TestWSEgressRejectsWhenDisconnected(t *testing.T) {
	ws := NewWebSocket("ws://127.0.0.1:1", 0, time.Second)
	eg := NewEgress("ws", false, nil, ws, zap.NewNop())
	if err := eg.SendText(context.Background(), "garden", "hello"); err == nil {
		t.Fatalf("expected error while WS is disconnected")
	}
}

func TestWSEgressDryrunSkipsWrite(t *testing.T) {
	ws := NewWebSocket("ws://127.0.0.1:1", 0, time.Second)
	eg := NewEgress("ws", true, nil, ws, zap.NewNop())
	if err := eg.SendImage(context.Background(), "garden", "aGVsbG8="); err != nil {
		t.Fatalf("dryrun should not touch the socket: %v", err)
	}
}

func TestHTTPEgressIsTheDefaultMode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	eg := NewEgress("", false, NewClient(srv.URL, WithTimeout(2*time.Second)), nil, nil)
	if err := eg.SendText(context.Background(), "garden", "hello"); err != nil {
		t.Fatalf("SendText: %v", err)
	}
}
