package sequence

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/phrazzld/workboard-api/internal/store"
)

// TaskCounter is the counter name used for task codes.
const TaskCounter = "task"

// DefaultPrefix is used when a Generator is created with an empty prefix.
const DefaultPrefix = "WB"

// ErrEmptyCounterName is returned when Next is called without a counter name.
var ErrEmptyCounterName = errors.New("counter name cannot be empty")

// Generator issues values from named counters.
type Generator struct {
	counters store.CounterStore
	prefix   string
}

// NewGenerator creates a Generator rendering codes with prefix.
func NewGenerator(counters store.CounterStore, prefix string) (*Generator, error) {
	if counters == nil {
		return nil, fmt.Errorf("counter store cannot be nil")
	}
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Generator{counters: counters, prefix: prefix}, nil
}

// Next returns the next value of the named counter. A storage failure is
// returned to the caller; no value is ever invented locally.
func (g *Generator) Next(ctx context.Context, name string) (int64, error) {
	if name == "" {
		return 0, ErrEmptyCounterName
	}
	v, err := g.counters.Increment(ctx, name)
	if err != nil {
		return 0, fmt.Errorf("failed to advance counter %q: %w", name, err)
	}
	return v, nil
}

// NextCode returns the next value of the named counter rendered as a code.
func (g *Generator) NextCode(ctx context.Context, name string) (string, error) {
	v, err := g.Next(ctx, name)
	if err != nil {
		return "", err
	}
	return FormatCode(g.prefix, v), nil
}

// Prefix returns the code prefix.
func (g *Generator) Prefix() string {
	return g.prefix
}

// FormatCode renders n as a zero-padded code, e.g. WB-0001.
// Values wider than four digits are rendered in full.
func FormatCode(prefix string, n int64) string {
	return fmt.Sprintf("%s-%04d", prefix, n)
}
