package debounce

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type recorder struct {
	mu    sync.Mutex
	calls []string
	done  chan struct{}
}

func newRecorder() *recorder {
	return &recorder{done: make(chan struct{}, 16)}
}

func (r *recorder) record(s string) {
	r.mu.Lock()
	r.calls = append(r.calls, s)
	r.mu.Unlock()
	r.done <- struct{}{}
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func TestDebouncer_SingleCall(t *testing.T) {
	rec := newRecorder()
	d := New(20*time.Millisecond, rec.record)

	d.Call("a")
	assert.Empty(t, rec.snapshot(), "should not run before the delay")

	select {
	case <-rec.done:
	case <-time.After(time.Second):
		t.Fatal("debounced call never ran")
	}
	assert.Equal(t, []string{"a"}, rec.snapshot())
}

func TestDebouncer_RapidCallsRunOnceWithLastArgs(t *testing.T) {
	rec := newRecorder()
	d := New(50*time.Millisecond, rec.record)

	for _, s := range []string{"b", "be", "ber", "berl", "berli", "berlin"} {
		d.Call(s)
		time.Sleep(5 * time.Millisecond)
	}

	select {
	case <-rec.done:
	case <-time.After(time.Second):
		t.Fatal("debounced call never ran")
	}
	// Wait past another window to make sure no stragglers fire.
	time.Sleep(100 * time.Millisecond)

	assert.Equal(t, []string{"berlin"}, rec.snapshot())
}

func TestDebouncer_SeparateWindows(t *testing.T) {
	rec := newRecorder()
	d := New(20*time.Millisecond, rec.record)

	d.Call("first")
	<-rec.done
	d.Call("second")
	<-rec.done

	assert.Equal(t, []string{"first", "second"}, rec.snapshot())
}

func TestDebouncer_Stop(t *testing.T) {
	var called int32
	d := New(20*time.Millisecond, func(int) { atomic.AddInt32(&called, 1) })

	d.Call(1)
	d.Stop()
	d.Call(2) // ignored after Stop

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&called))
}

func TestNew_DefaultDelay(t *testing.T) {
	d := New(0, func(string) {})
	assert.Equal(t, DefaultDelay, d.delay)
}
