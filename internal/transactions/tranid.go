package transactions

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	tranIDPrefix     = "TRX"
	tranIDDateLayout = "20060102"
	tranIDCounterTTL = 48 * time.Hour
)

// Sequencer hands out monotonically increasing numbers for a named counter.
type Sequencer interface {
	NextSequence(ctx context.Context, name string, ttl time.Duration) (int64, error)
}

// TranIDGenerator produces the human-readable receipt numbers printed on
// every sale, formatted TRX-YYYYMMDD-NNNN.
type TranIDGenerator struct {
	seq Sequencer
	now func() time.Time
}

// NewTranIDGenerator builds a generator backed by the provided sequencer.
func NewTranIDGenerator(seq Sequencer) (*TranIDGenerator, error) {
	if seq == nil {
		return nil, fmt.Errorf("sequencer required")
	}
	return &TranIDGenerator{seq: seq, now: time.Now}, nil
}

// Generate returns the next receipt number for today. When the sequencer is
// unreachable it degrades to a time-plus-random suffix that stays unique,
// so a Redis outage never blocks the register.
func (g *TranIDGenerator) Generate(ctx context.Context) (string, error) {
	now := g.now()
	date := now.Format(tranIDDateLayout)

	seq, err := g.seq.NextSequence(ctx, "tranid:"+date, tranIDCounterTTL)
	if err != nil {
		suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
		return fmt.Sprintf("%s-%s-%s%s", tranIDPrefix, date, now.Format("150405"), suffix), nil
	}

	return fmt.Sprintf("%s-%s-%04d", tranIDPrefix, date, seq), nil
}
