package progress

import (
	"bytes"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracker_LastWriteWins(t *testing.T) {
	tracker := NewTracker()

	_, ok := tracker.Get("abc")
	assert.False(t, ok)

	r := tracker.Reporter("abc")
	r.Report(Snapshot{Status: StatusRunning, Current: 1, Total: 3, CurrentBook: "1984"})
	r.Report(Snapshot{Status: StatusRunning, Current: 2, Total: 3, CurrentBook: "Emma"})

	s, ok := tracker.Get("abc")
	require.True(t, ok)
	assert.Equal(t, Snapshot{Status: StatusRunning, Current: 2, Total: 3, CurrentBook: "Emma"}, s)

	tracker.Delete("abc")
	_, ok = tracker.Get("abc")
	assert.False(t, ok)
}

func TestTracker_SessionsAreSeparate(t *testing.T) {
	tracker := NewTracker()
	tracker.Reporter("a").Report(Snapshot{Current: 1})
	tracker.Reporter("b").Report(Snapshot{Current: 7})

	a, _ := tracker.Get("a")
	b, _ := tracker.Get("b")
	assert.Equal(t, 1, a.Current)
	assert.Equal(t, 7, b.Current)
}

func TestTracker_ConcurrentAccess(t *testing.T) {
	tracker := NewTracker()
	r := tracker.Reporter("s")

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			r.Report(Snapshot{Current: i})
		}()
		go func() {
			defer wg.Done()
			_, _ = tracker.Get("s")
		}()
	}
	wg.Wait()

	_, ok := tracker.Get("s")
	assert.True(t, ok)
}

func TestMulti(t *testing.T) {
	var got []int
	collect := ReporterFunc(func(s Snapshot) { got = append(got, s.Current) })

	Multi(collect, nil, collect).Report(Snapshot{Current: 4})
	assert.Equal(t, []int{4, 4}, got)
}

func TestLog_EveryNthRow(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	l := NewLog(logger, 10)

	l.Report(Snapshot{Status: StatusRunning, Total: 25})
	for i := 1; i <= 25; i++ {
		l.Report(Snapshot{Status: StatusRunning, Current: i, Total: 25})
	}
	l.Report(Snapshot{Status: StatusCompleted, Current: 25, Total: 25})

	out := buf.String()
	assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte("Import started")))
	assert.Equal(t, 2, bytes.Count(buf.Bytes(), []byte("Import progress")), out)
	assert.Contains(t, out, "Import finished")
	assert.Contains(t, out, "status=completed")
}

func TestSnapshot_Done(t *testing.T) {
	assert.False(t, Snapshot{Status: StatusRunning}.Done())
	assert.True(t, Snapshot{Status: StatusCompleted}.Done())
	assert.True(t, Snapshot{Status: StatusFailed}.Done())
}
