package diag

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"platewise/internal/platform/logger"
)

func bufLogger() (*logger.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	l := logger.New(logger.Options{Level: "debug", Format: "json", Writer: &buf})
	return &l, &buf
}

func fixedClock() func() time.Time {
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	var n int
	return func() time.Time {
		n++
		return t0.Add(time.Duration(n) * time.Millisecond)
	}
}

func TestResolveDebug(t *testing.T) {
	env := func(m map[string]string) LookupFunc {
		return func(k string) (string, bool) { v, ok := m[k]; return v, ok }
	}
	tests := []struct {
		name    string
		sources []DebugSource
		on      bool
		source  string
	}{
		{name: "none", on: false},
		{name: "env next public", sources: []DebugSource{EnvSource(env(map[string]string{"NEXT_PUBLIC_SCAN_DEBUG": "1"}))}, on: true, source: "env:NEXT_PUBLIC_SCAN_DEBUG"},
		{name: "env zero", sources: []DebugSource{EnvSource(env(map[string]string{"SCAN_DEBUG": "0"}))}, on: false},
		{name: "query", sources: []DebugSource{EnvSource(nil), QuerySource(url.Values{"scan_debug": {"1"}})}, on: true, source: "query"},
		{name: "flag", sources: []DebugSource{nil, FlagSource(false), FlagSource(true)}, on: true, source: "flag"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveDebug(tt.sources...)
			if got.Enabled != tt.on || got.Source != tt.source {
				t.Fatalf("ResolveDebug = %+v, want on=%v source=%q", got, tt.on, tt.source)
			}
		})
	}
}

func TestSession_InertWhenDisabled(t *testing.T) {
	l, buf := bufLogger()
	r := NewRecorder(DebugConfig{}, WithLogger(l))
	s := r.Start(SessionMeta{RequestID: "r1"})
	if s.Enabled() {
		t.Fatalf("session should be inert")
	}
	s.LogAttempt(DecodeAttempt{Index: 0, Outcome: "NotFound"})
	if rep, ok := s.Finalize(Final{}); ok || rep != nil {
		t.Fatalf("Finalize on inert session = %v, %v", rep, ok)
	}
	if _, ok := r.Last(); ok {
		t.Fatalf("history should be empty")
	}
	if buf.Len() != 0 {
		t.Fatalf("inert session logged: %s", buf.String())
	}
}

func TestSession_RequestDebugOverride(t *testing.T) {
	r := NewRecorder(DebugConfig{}, WithLogger(logger.Nop()))
	s := r.Start(SessionMeta{RequestID: "r1", Debug: true})
	s.LogAttempt(DecodeAttempt{Index: 0, Outcome: "NotFound"})
	rep, ok := s.Finalize(Final{TotalMs: 3})
	if !ok || rep.Debug.Source != "request" || len(rep.Attempts) != 1 {
		t.Fatalf("report = %+v ok=%v", rep, ok)
	}
}

func TestSession_SealOnceAndEmit(t *testing.T) {
	l, buf := bufLogger()
	r := NewRecorder(DebugConfig{Enabled: true, Source: "flag"}, WithLogger(l), WithClock(fixedClock()))
	s := r.Start(SessionMeta{RequestID: "req-9", ROIStrategy: "center-band-first"})
	for i := 0; i < 3; i++ {
		s.LogAttempt(DecodeAttempt{Index: i, CropRegion: "center-band-30", Outcome: "NotFound"})
	}
	checked := true
	rep, ok := s.Finalize(Final{Success: true, Code: "036000291452", CheckDigitOK: &checked, WillScore: true, TotalMs: 42})
	if !ok {
		t.Fatalf("first Finalize should seal")
	}
	if len(rep.Attempts) != 3 || rep.Final == nil || !rep.Final.Success || rep.ROIStrategy != "center-band-first" {
		t.Fatalf("report = %+v", rep)
	}
	if !rep.FinishedAt.After(rep.StartedAt) {
		t.Fatalf("timestamps = %v %v", rep.StartedAt, rep.FinishedAt)
	}

	s.LogAttempt(DecodeAttempt{Index: 99})
	if _, ok := s.Finalize(Final{}); ok {
		t.Fatalf("second Finalize should fail")
	}
	last, _ := r.Last()
	if len(last.Attempts) != 3 {
		t.Fatalf("attempt logged after seal: %d", len(last.Attempts))
	}

	out := buf.String()
	if strings.Count(out, LogPrefix+" attempt") != 3 || !strings.Contains(out, LogPrefix+" final") {
		t.Fatalf("log output = %s", out)
	}
	if !strings.Contains(out, `"request_id":"req-9"`) {
		t.Fatalf("request id missing from logs: %s", out)
	}
}

func TestRecorder_HistoryCappedNewestFirst(t *testing.T) {
	r := NewRecorder(DebugConfig{Enabled: true}, WithLogger(logger.Nop()))
	for i := 0; i < 5; i++ {
		s := r.Start(SessionMeta{RequestID: fmt.Sprintf("r%d", i)})
		s.Finalize(Final{})
	}
	h := r.History()
	if len(h) != DefaultHistory {
		t.Fatalf("history len = %d", len(h))
	}
	for i, want := range []string{"r4", "r3", "r2"} {
		if h[i].RequestID != want {
			t.Fatalf("history[%d] = %s, want %s", i, h[i].RequestID, want)
		}
	}

	h[0].Attempts = append(h[0].Attempts, DecodeAttempt{Index: 7})
	h[0].RequestID = "mutated"
	if last, _ := r.Last(); last.RequestID != "r4" || len(last.Attempts) != 0 {
		t.Fatalf("history not copied: %+v", last)
	}
}

func TestRecorder_CustomCapacity(t *testing.T) {
	r := NewRecorder(DebugConfig{Enabled: true}, WithCapacity(1), WithCapacity(0), WithLogger(logger.Nop()))
	r.Start(SessionMeta{RequestID: "a"}).Finalize(Final{})
	r.Start(SessionMeta{RequestID: "b"}).Finalize(Final{})
	if h := r.History(); len(h) != 1 || h[0].RequestID != "b" {
		t.Fatalf("history = %+v", h)
	}
}

func TestRecorder_ConcurrentSessions(t *testing.T) {
	r := NewRecorder(DebugConfig{Enabled: true}, WithCapacity(50), WithLogger(logger.Nop()))
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s := r.Start(SessionMeta{RequestID: fmt.Sprintf("c%d", i)})
			for j := 0; j <= i%4; j++ {
				s.LogAttempt(DecodeAttempt{Index: j})
			}
			s.Finalize(Final{})
		}(i)
	}
	wg.Wait()
	for _, rep := range r.History() {
		var i int
		fmt.Sscanf(rep.RequestID, "c%d", &i)
		if len(rep.Attempts) != i%4+1 {
			t.Fatalf("%s has %d attempts, want %d", rep.RequestID, len(rep.Attempts), i%4+1)
		}
	}
}

func TestExportAndClipboard(t *testing.T) {
	var copied string
	r := NewRecorder(DebugConfig{Enabled: true}, WithLogger(logger.Nop()),
		WithClipboard(func(s string) error { copied = s; return nil }))
	if r.CopyLastToClipboard() {
		t.Fatalf("copy with empty history should be false")
	}
	r.Start(SessionMeta{RequestID: "x1"}).Finalize(Final{Success: false, WillFallback: true})

	raw, err := r.ExportJSON()
	if err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}
	var reports []ScanReport
	if err := json.Unmarshal(raw, &reports); err != nil || len(reports) != 1 {
		t.Fatalf("export = %s err=%v", raw, err)
	}

	if !r.CopyLastToClipboard() || !strings.Contains(copied, `"request_id": "x1"`) {
		t.Fatalf("copied = %q", copied)
	}

	failing := NewRecorder(DebugConfig{Enabled: true}, WithLogger(logger.Nop()),
		WithClipboard(func(string) error { return errors.New("no display") }))
	failing.Start(SessionMeta{}).Finalize(Final{})
	if failing.CopyLastToClipboard() {
		t.Fatalf("clipboard error should report false")
	}

	panicky := NewRecorder(DebugConfig{Enabled: true}, WithLogger(logger.Nop()),
		WithClipboard(func(string) error { panic("boom") }))
	panicky.Start(SessionMeta{}).Finalize(Final{})
	if panicky.CopyLastToClipboard() {
		t.Fatalf("clipboard panic should report false")
	}
}
