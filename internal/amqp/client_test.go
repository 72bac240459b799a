package amqp

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestExponentialBackoff(t *testing.T) {
	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 1 * time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{4, 16 * time.Second},
		{5, 30 * time.Second},
		{10, 30 * time.Second},
		{63, 30 * time.Second},
	}

	for _, tt := range tests {
		if got := exponentialBackoff(tt.attempt); got != tt.want {
			t.Errorf("exponentialBackoff(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestIsConnectionError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error", nil, false},
		{"connection refused", errors.New("dial tcp 127.0.0.1:5672: connection refused"), true},
		{"connection closed", errors.New("Exception (504) Reason: \"channel/connection is not open\": connection closed"), true},
		{"delivery channel closed", errors.New("message channel closed"), true},
		{"EOF", errors.New("read tcp: EOF"), true},
		{"broken pipe", errors.New("write: broken pipe"), true},
		{"closed network connection", errors.New("use of closed network connection"), true},
		{"validation error", errors.New("invalid amount"), false},
		{"marshal error", errors.New("json: unsupported type"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsConnectionError(tt.err); got != tt.want {
				t.Errorf("IsConnectionError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestClient_CircuitBreaker(t *testing.T) {
	t.Run("starts closed", func(t *testing.T) {
		c := &Client{}
		if c.isCircuitOpen() {
			t.Error("new client should start with circuit closed")
		}
	})

	t.Run("opens after max failures", func(t *testing.T) {
		c := &Client{}
		for i := 0; i < maxFailures; i++ {
			c.recordFailure()
		}
		if !c.isCircuitOpen() {
			t.Errorf("circuit should be open after %d failures", maxFailures)
		}
	})

	t.Run("stays closed below threshold", func(t *testing.T) {
		c := &Client{}
		for i := 0; i < maxFailures-1; i++ {
			c.recordFailure()
		}
		if c.isCircuitOpen() {
			t.Errorf("circuit should stay closed after %d failures", maxFailures-1)
		}
	})

	t.Run("success resets failure count", func(t *testing.T) {
		c := &Client{}
		for i := 0; i < maxFailures-1; i++ {
			c.recordFailure()
		}
		c.recordSuccess()
		for i := 0; i < maxFailures-1; i++ {
			c.recordFailure()
		}
		if c.isCircuitOpen() {
			t.Error("success should have reset the failure count")
		}
	})

	t.Run("half-opens after timeout", func(t *testing.T) {
		c := &Client{}
		for i := 0; i < maxFailures; i++ {
			c.recordFailure()
		}
		atomic.StoreInt64(&c.lastFailureNano, time.Now().Add(-openTimeout-time.Second).UnixNano())
		if c.isCircuitOpen() {
			t.Error("circuit should half-open once the open timeout has elapsed")
		}
	})
}

// Publishers share one client across request goroutines, so the breaker must
// tolerate concurrent failure recording, state checks, and resets. Run with
// the race detector.
func TestClient_BreakerConcurrentAccess(t *testing.T) {
	c := &Client{}

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(3)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				c.recordFailure()
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				c.isCircuitOpen()
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				c.recordSuccess()
			}
		}()
	}
	wg.Wait()

	// Drive the breaker open from a quiet state to confirm it still works.
	c.recordSuccess()
	for i := 0; i < maxFailures; i++ {
		c.recordFailure()
	}
	if !c.isCircuitOpen() {
		t.Error("circuit should open after max failures following concurrent use")
	}
}

func TestClient_PublishWhenCircuitOpen(t *testing.T) {
	c := &Client{}
	for i := 0; i < maxFailures; i++ {
		c.recordFailure()
	}

	err := c.PublishTransactionChanged(context.Background(), "couple-1", 42, OpCreate)
	if err == nil {
		t.Fatal("expected error when circuit is open")
	}
	if !strings.Contains(err.Error(), "circuit breaker is open") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestClient_PublishRespectsContext(t *testing.T) {
	c := &Client{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.PublishTransactionChanged(ctx, "couple-1", 42, OpCreate)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestTransactionChangedMessage_JSON(t *testing.T) {
	msg := NewTransactionChangedMessage("couple-1", 99, OpDelete)

	data, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	got, err := TransactionChangedMessageFromJSON(data)
	if err != nil {
		t.Fatalf("FromJSON: %v", err)
	}

	if got.CoupleID != msg.CoupleID {
		t.Errorf("CoupleID = %q, want %q", got.CoupleID, msg.CoupleID)
	}
	if got.TransactionID != msg.TransactionID {
		t.Errorf("TransactionID = %d, want %d", got.TransactionID, msg.TransactionID)
	}
	if got.Op != OpDelete {
		t.Errorf("Op = %q, want %q", got.Op, OpDelete)
	}
	if got.Timestamp.IsZero() {
		t.Error("Timestamp should survive the round trip")
	}
}

func TestTransactionChangedMessageFromJSON_Invalid(t *testing.T) {
	if _, err := TransactionChangedMessageFromJSON([]byte("not json")); err == nil {
		t.Error("expected error for malformed payload")
	}
}
