package worker

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPoolRunsSubmittedTasks(t *testing.T) {
	p := NewPool(4, 16)
	var n int32
	for i := 0; i < 100; i++ {
		p.Submit(func() { atomic.AddInt32(&n, 1) })
	}
	p.Close()
	assert.Equal(t, int32(100), atomic.LoadInt32(&n))
}

func TestPoolSurvivesPanics(t *testing.T) {
	p := NewPool(1, 4)
	defer p.Close()

	p.Submit(func() { panic("boom") })
	done := make(chan struct{})
	p.Submit(func() { close(done) })

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("task after panic never ran")
	}
}

func TestPoolSubmitAfterCloseRunsInline(t *testing.T) {
	p := NewPool(1, 1)
	p.Close()

	ran := false
	p.Submit(func() { ran = true })
	assert.True(t, ran)
}

func TestInlineRunner(t *testing.T) {
	ran := false
	Inline{}.Submit(func() { ran = true })
	assert.True(t, ran)
}
