package preview

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestShouldIgnoreEvent(t *testing.T) {
	tests := []struct {
		path   string
		ignore bool
	}{
		{"/src/.hidden.md", true},
		{"/src/foo/#index.md#", true},
		{"/src/foo/index.md.swp", true},
		{"/src/foo/index.md.swx", true},
		{"/src/foo/index.md~", true},
		{"/src/.DS_Store", true},
		{"/src/Thumbs.db", true},
		{"/src/foo/4913", true},
		{"/src/foo/index.md", false},
		{"/src/foo/img/a.png", false},
		{"/src/template.html", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.ignore, shouldIgnoreEvent(tt.path))
		})
	}
}

func TestDebouncer_CollapsesBursts(t *testing.T) {
	var fired atomic.Int32
	d := newDebouncer(30*time.Millisecond, func() { fired.Add(1) })
	defer d.Stop()

	for range 5 {
		d.Trigger()
		time.Sleep(5 * time.Millisecond)
	}

	assert.Eventually(t, func() bool { return fired.Load() == 1 }, time.Second, 10*time.Millisecond)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(1), fired.Load())
}

func TestDebouncer_StopCancelsPending(t *testing.T) {
	var fired atomic.Int32
	d := newDebouncer(20*time.Millisecond, func() { fired.Add(1) })
	d.Trigger()
	d.Stop()
	d.Trigger()

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(0), fired.Load())
}
