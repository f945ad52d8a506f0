package testkit

import (
	"sync"
	"testing"
	"time"
)

var (
	nowFn      = func() int { return 1 }
	swapTarget = 10
)

func TestSwap_RestoresAfterSubtest(t *testing.T) {
	t.Run("swap", func(t *testing.T) {
		Swap(t, &nowFn, func() int { return 99 })
		Swap(t, &swapTarget, 42)
		if nowFn() != 99 || swapTarget != 42 {
			t.Fatalf("swap did not take effect")
		}
	})
	if nowFn() != 1 || swapTarget != 10 {
		t.Fatalf("swap did not restore: %d %d", nowFn(), swapTarget)
	}
}

func TestSerial_NoInterleaving(t *testing.T) {
	var (
		mu  sync.Mutex
		seq []string
	)
	rec := func(s string) {
		mu.Lock()
		seq = append(seq, s)
		mu.Unlock()
	}
	t.Run("group", func(t *testing.T) {
		for _, name := range []string{"A", "B"} {
			t.Run(name, func(t *testing.T) {
				t.Parallel()
				Serial(t)
				rec(name + "-start")
				time.Sleep(20 * time.Millisecond)
				rec(name + "-end")
			})
		}
	})
	if len(seq) != 4 || seq[0][0] != seq[1][0] || seq[2][0] != seq[3][0] {
		t.Fatalf("interleaved execution: %v", seq)
	}
}
