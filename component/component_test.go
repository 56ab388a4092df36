package component

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type stubComponent struct {
	name     string
	startErr error
	stopErr  error
	health   Health
	trace    *[]string
}

func (s *stubComponent) Name() string { return s.name }

func (s *stubComponent) Start(context.Context) error {
	if s.trace != nil {
		*s.trace = append(*s.trace, "start:"+s.name)
	}
	return s.startErr
}

func (s *stubComponent) Stop(context.Context) error {
	if s.trace != nil {
		*s.trace = append(*s.trace, "stop:"+s.name)
	}
	return s.stopErr
}

func (s *stubComponent) Health(context.Context) Health { return s.health }

func TestRegisterAndGet(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(&stubComponent{name: "transcription"}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := r.Register(&stubComponent{name: "transcription"}); err == nil {
		t.Error("expected an error for a duplicate name")
	}
	if got := r.Get("transcription"); got == nil || got.Name() != "transcription" {
		t.Errorf("Get returned %v", got)
	}
	if r.Get("missing") != nil {
		t.Error("expected nil for an unregistered name")
	}
	if n := len(r.All()); n != 1 {
		t.Errorf("All() has %d entries, want 1", n)
	}
}

func TestLifecycleOrder(t *testing.T) {
	var trace []string
	r := NewRegistry()
	for _, name := range []string{"transcription", "http-server", "telemetry"} {
		_ = r.Register(&stubComponent{name: name, trace: &trace})
	}

	// Stopping before start is a no-op.
	if err := r.StopAll(context.Background()); err != nil {
		t.Fatalf("StopAll before start: %v", err)
	}
	if err := r.StartAll(context.Background()); err != nil {
		t.Fatalf("StartAll: %v", err)
	}
	if err := r.StopAll(context.Background()); err != nil {
		t.Fatalf("StopAll: %v", err)
	}
	if err := r.StopAll(context.Background()); err != nil {
		t.Fatalf("second StopAll: %v", err)
	}

	want := "start:transcription,start:http-server,start:telemetry,stop:telemetry,stop:http-server,stop:transcription"
	if got := strings.Join(trace, ","); got != want {
		t.Errorf("trace:\n got %s\nwant %s", got, want)
	}
}

func TestStartAllRollsBack(t *testing.T) {
	var trace []string
	r := NewRegistry()
	_ = r.Register(&stubComponent{name: "transcription", trace: &trace})
	_ = r.Register(&stubComponent{name: "http-server", trace: &trace, startErr: errors.New("address already in use")})
	_ = r.Register(&stubComponent{name: "telemetry", trace: &trace})

	err := r.StartAll(context.Background())
	if err == nil || !strings.Contains(err.Error(), "address already in use") {
		t.Fatalf("err = %v, want the start failure", err)
	}

	want := "start:transcription,start:http-server,stop:transcription"
	if got := strings.Join(trace, ","); got != want {
		t.Errorf("trace:\n got %s\nwant %s", got, want)
	}
	if err := r.StopAll(context.Background()); err != nil {
		t.Errorf("StopAll after rollback: %v", err)
	}
	if len(trace) != 3 {
		t.Errorf("rolled back components were stopped twice: %v", trace)
	}
}

func TestStopAllCollectsErrors(t *testing.T) {
	var trace []string
	r := NewRegistry()
	_ = r.Register(&stubComponent{name: "transcription", trace: &trace, stopErr: errors.New("busy")})
	_ = r.Register(&stubComponent{name: "http-server", trace: &trace, stopErr: errors.New("shutdown timeout")})
	_ = r.StartAll(context.Background())

	err := r.StopAll(context.Background())
	if err == nil {
		t.Fatal("expected an error")
	}
	for _, want := range []string{"busy", "shutdown timeout"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %q", err, want)
		}
	}
	if len(trace) != 4 {
		t.Errorf("every started component must be stopped, trace %v", trace)
	}
}

func TestHealthAll(t *testing.T) {
	r := NewRegistry()
	_ = r.Register(&stubComponent{name: "http-server", health: Health{Name: "http-server", Status: StatusHealthy}})
	_ = r.Register(&stubComponent{name: "transcription", health: Health{Name: "transcription", Status: StatusDegraded, Message: "whisper unreachable"}})

	results := r.HealthAll(context.Background())
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Status != StatusHealthy || results[1].Status != StatusDegraded {
		t.Errorf("unexpected results %+v", results)
	}
	if got := Worst(results); got != StatusDegraded {
		t.Errorf("Worst = %s, want degraded", got)
	}
}

func TestWorst(t *testing.T) {
	tests := []struct {
		name    string
		results []Health
		want    HealthStatus
	}{
		{"empty", nil, StatusHealthy},
		{"all healthy", []Health{{Status: StatusHealthy}, {Status: StatusHealthy}}, StatusHealthy},
		{"degraded wins over healthy", []Health{{Status: StatusHealthy}, {Status: StatusDegraded}}, StatusDegraded},
		{"unhealthy wins", []Health{{Status: StatusDegraded}, {Status: StatusUnhealthy}, {Status: StatusHealthy}}, StatusUnhealthy},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Worst(tc.results); got != tc.want {
				t.Errorf("Worst() = %s, want %s", got, tc.want)
			}
		})
	}
}
