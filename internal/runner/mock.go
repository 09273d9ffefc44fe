package runner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/maars-dev/maars/internal/task"
)

// ErrMockExecution is returned by MockExecutor on a simulated failure.
var ErrMockExecution = errors.New("mock execution failed")

// MockExecutor simulates task execution with a configurable pass
// probability and delay. A zero seed derives one from the clock.
type MockExecutor struct {
	mu       sync.Mutex
	rng      *rand.Rand
	passProb float64
	delay    time.Duration
}

// NewMockExecutor returns a mock that succeeds with probability
// passProb after sleeping for delay.
func NewMockExecutor(passProb float64, delay time.Duration, seed int64) *MockExecutor {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &MockExecutor{
		rng:      rand.New(rand.NewSource(seed)),
		passProb: passProb,
		delay:    delay,
	}
}

func (m *MockExecutor) Execute(ctx context.Context, t task.Task) (json.RawMessage, error) {
	if err := sleepCtx(ctx, m.delay); err != nil {
		return nil, err
	}
	if !m.roll() {
		return nil, fmt.Errorf("task %s: %w", t.ID, ErrMockExecution)
	}
	out, _ := json.Marshal(map[string]string{"result": "completed task " + t.ID})
	return out, nil
}

func (m *MockExecutor) roll() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rng.Float64() < m.passProb
}

// MockValidator simulates validation with a configurable pass
// probability and delay.
type MockValidator struct {
	mu       sync.Mutex
	rng      *rand.Rand
	passProb float64
	delay    time.Duration
}

// NewMockValidator returns a mock that passes with probability
// passProb after sleeping for delay.
func NewMockValidator(passProb float64, delay time.Duration, seed int64) *MockValidator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &MockValidator{
		rng:      rand.New(rand.NewSource(seed)),
		passProb: passProb,
		delay:    delay,
	}
}

func (m *MockValidator) Validate(ctx context.Context, t task.Task, output json.RawMessage) (ValidationResult, error) {
	if err := sleepCtx(ctx, m.delay); err != nil {
		return ValidationResult{}, err
	}

	m.mu.Lock()
	pass := m.rng.Float64() < m.passProb
	m.mu.Unlock()

	report, _ := json.Marshal(map[string]any{"pass": pass, "task_id": t.ID})
	return ValidationResult{Pass: pass, Report: report}, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
