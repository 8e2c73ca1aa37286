package scheduler

import (
	"context"
	"testing"
)

func TestAdd_RejectsBadSpec(t *testing.T) {
	s := New()
	defer s.Stop()
	if err := s.Add("not a cron spec", "report", func(context.Context) error { return nil }); err == nil {
		t.Fatalf("expected error for bad spec")
	}
	if s.IsRunning() {
		t.Fatalf("no job should be registered")
	}
}

func TestAdd_RejectsNilJob(t *testing.T) {
	s := New()
	defer s.Stop()
	if err := s.Add("0 21 * * *", "report", nil); err == nil {
		t.Fatalf("expected error for nil job")
	}
}

func TestAdd_Registers(t *testing.T) {
	s := New()
	if err := s.Add("0 21 * * *", "report", func(context.Context) error { return nil }); err != nil {
		t.Fatalf("add: %v", err)
	}
	if !s.IsRunning() {
		t.Fatalf("job not registered")
	}
	s.Start()
	s.Stop()
	if s.ctx.Err() == nil {
		t.Fatalf("stop should cancel job context")
	}
}
