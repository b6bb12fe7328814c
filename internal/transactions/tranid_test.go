package transactions

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"
)

type stubSequencer struct {
	next int64
	err  error
	name string
	ttl  time.Duration
}

func (s *stubSequencer) NextSequence(ctx context.Context, name string, ttl time.Duration) (int64, error) {
	s.name = name
	s.ttl = ttl
	if s.err != nil {
		return 0, s.err
	}
	s.next++
	return s.next, nil
}

func TestGenerateFormatsDailySequence(t *testing.T) {
	t.Parallel()

	seq := &stubSequencer{next: 41}
	gen, err := NewTranIDGenerator(seq)
	if err != nil {
		t.Fatalf("build generator: %v", err)
	}
	gen.now = func() time.Time {
		return time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	}

	id, err := gen.Generate(context.Background())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if id != "TRX-20260314-0042" {
		t.Fatalf("unexpected tran id: %q", id)
	}
	if seq.name != "tranid:20260314" {
		t.Fatalf("counter should be date-scoped, got %q", seq.name)
	}
	if seq.ttl != 48*time.Hour {
		t.Fatalf("counter ttl mismatch: %s", seq.ttl)
	}
}

func TestGenerateSequencePastFourDigits(t *testing.T) {
	t.Parallel()

	seq := &stubSequencer{next: 12344}
	gen, _ := NewTranIDGenerator(seq)
	gen.now = func() time.Time {
		return time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	}

	id, err := gen.Generate(context.Background())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if id != "TRX-20260314-12345" {
		t.Fatalf("unexpected tran id: %q", id)
	}
}

func TestGenerateFallsBackWhenSequencerDown(t *testing.T) {
	t.Parallel()

	seq := &stubSequencer{err: errors.New("redis unreachable")}
	gen, _ := NewTranIDGenerator(seq)
	gen.now = func() time.Time {
		return time.Date(2026, 3, 14, 15, 4, 5, 0, time.UTC)
	}

	id, err := gen.Generate(context.Background())
	if err != nil {
		t.Fatalf("fallback must not error: %v", err)
	}

	pattern := regexp.MustCompile(`^TRX-20260314-150405[0-9A-F]{6}$`)
	if !pattern.MatchString(id) {
		t.Fatalf("fallback id %q does not match %s", id, pattern)
	}
}
