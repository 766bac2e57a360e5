package circuitbreaker

import (
	"errors"
	"testing"
	"time"
)

var errFail = errors.New("fail")

func newTestBreaker(timeout time.Duration) *CircuitBreaker {
	return NewCircuitBreaker("test", Config{
		MaxRequests: 1,
		Interval:    10 * time.Second,
		Timeout:     timeout,
		ReadyToTrip: func(counts Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	})
}

func trip(cb *CircuitBreaker) {
	for i := 0; i < 3; i++ {
		_ = cb.Execute(func() error { return errFail })
	}
}

func TestCircuitBreaker_ClosedState(t *testing.T) {
	cb := newTestBreaker(30 * time.Second)

	for i := 0; i < 10; i++ {
		if err := cb.Execute(func() error { return nil }); err != nil {
			t.Fatalf("期望成功，实际失败: %v", err)
		}
	}

	if cb.State() != StateClosed {
		t.Errorf("期望状态为CLOSED，实际%s", cb.State())
	}
	if counts := cb.Counts(); counts.TotalSuccesses != 10 {
		t.Errorf("期望成功10次，实际%d次", counts.TotalSuccesses)
	}
}

func TestCircuitBreaker_OpenState(t *testing.T) {
	cb := newTestBreaker(30 * time.Second)
	trip(cb)

	if cb.State() != StateOpen {
		t.Fatalf("期望状态为OPEN，实际%s", cb.State())
	}

	called := false
	err := cb.Execute(func() error {
		called = true
		return nil
	})
	if !errors.Is(err, ErrOpenState) {
		t.Errorf("期望返回ErrOpenState，实际%v", err)
	}
	if called {
		t.Error("熔断器打开时不应该调用实际函数")
	}
}

func TestCircuitBreaker_HalfOpenRecovers(t *testing.T) {
	cb := newTestBreaker(50 * time.Millisecond)
	trip(cb)

	time.Sleep(80 * time.Millisecond)

	if err := cb.Execute(func() error { return nil }); err != nil {
		t.Fatalf("半开状态探测请求期望成功，实际%v", err)
	}
	if cb.State() != StateClosed {
		t.Errorf("期望状态转为CLOSED，实际%s", cb.State())
	}
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	cb := newTestBreaker(50 * time.Millisecond)
	trip(cb)

	time.Sleep(80 * time.Millisecond)
	_ = cb.Execute(func() error { return errFail })

	if cb.State() != StateOpen {
		t.Errorf("期望状态转回OPEN，实际%s", cb.State())
	}
}

func TestCircuitBreaker_IsSuccessful(t *testing.T) {
	errMiss := errors.New("miss")
	cb := NewCircuitBreaker("cache", Config{
		Interval: time.Minute,
		Timeout:  time.Minute,
		ReadyToTrip: func(counts Counts) bool {
			return counts.ConsecutiveFailures >= 2
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, errMiss)
		},
	})

	for i := 0; i < 5; i++ {
		if err := cb.Execute(func() error { return errMiss }); !errors.Is(err, errMiss) {
			t.Fatalf("期望原样返回业务错误，实际%v", err)
		}
	}
	if cb.State() != StateClosed {
		t.Errorf("未命中不应触发熔断，实际%s", cb.State())
	}
}

func TestCircuitBreaker_StateChangeCallback(t *testing.T) {
	var changes []string
	cb := newTestBreaker(50 * time.Millisecond)
	cb.SetStateChangeCallback(func(name string, from State, to State) {
		changes = append(changes, from.String()+"->"+to.String())
	})

	trip(cb)
	time.Sleep(80 * time.Millisecond)
	_ = cb.Execute(func() error { return nil })

	expected := []string{"CLOSED->OPEN", "OPEN->HALF_OPEN", "HALF_OPEN->CLOSED"}
	if len(changes) != len(expected) {
		t.Fatalf("期望%d次状态变化，实际%d次: %v", len(expected), len(changes), changes)
	}
	for i := range expected {
		if changes[i] != expected[i] {
			t.Errorf("第%d次状态变化期望%s，实际%s", i, expected[i], changes[i])
		}
	}
}

func TestCircuitBreaker_FailureRate(t *testing.T) {
	cb := NewCircuitBreaker("test", Config{
		Interval: time.Hour,
		Timeout:  30 * time.Second,
		ReadyToTrip: func(counts Counts) bool {
			return counts.Requests >= 10 && counts.FailureRate() > 0.5
		},
	})

	// 4次成功,6次失败
	for i := 0; i < 10; i++ {
		index := i
		_ = cb.Execute(func() error {
			if index < 4 {
				return nil
			}
			return errFail
		})
	}

	if cb.State() != StateOpen {
		t.Errorf("期望状态为OPEN（失败率超过50%%），实际%s", cb.State())
	}
}

func TestNewCircuitBreaker_Defaults(t *testing.T) {
	cb := NewCircuitBreaker("defaults", Config{Interval: time.Minute, Timeout: time.Minute})
	for i := 0; i < 4; i++ {
		_ = cb.Execute(func() error { return errFail })
	}
	if cb.State() != StateClosed {
		t.Fatalf("4次失败不应熔断，实际%s", cb.State())
	}
	_ = cb.Execute(func() error { return errFail })
	if cb.State() != StateOpen {
		t.Errorf("默认连续5次失败熔断，实际%s", cb.State())
	}
}

func BenchmarkCircuitBreaker(b *testing.B) {
	cb := NewCircuitBreaker("bench", DefaultConfig())
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = cb.Execute(func() error { return nil })
	}
}
