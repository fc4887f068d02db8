package activity

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordAssignsMonotonicIDs(t *testing.T) {
	r := New()
	r.Record(KindEmbedding, "embed query")
	r.Record(KindSearch, "hybrid search", WithSQL("SELECT ..."))
	r.Record(KindResult, "3 products", WithCount(3))

	events := r.Take()
	require.Len(t, events, 3)
	for i, e := range events {
		assert.Equal(t, int64(i+1), e.ID)
	}
}

func TestTakeResetsRecorder(t *testing.T) {
	r := New()
	r.Record(KindSearch, "first")
	_ = r.Take()

	r.Record(KindSearch, "second")
	events := r.Take()
	require.Len(t, events, 1)
	assert.Equal(t, int64(1), events[0].ID, "id counter resets per turn")
}

func TestRecordIsSafeForConcurrentWorkers(t *testing.T) {
	r := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Record(KindDelegation, "worker call")
		}()
	}
	wg.Wait()

	events := r.Take()
	require.Len(t, events, 50)
	seen := make(map[int64]bool, 50)
	for _, e := range events {
		assert.False(t, seen[e.ID], "duplicate id %d", e.ID)
		seen[e.ID] = true
	}
}

func TestChannelSinkDropsOnFullBufferInsteadOfBlocking(t *testing.T) {
	sink := NewChannelSink(1, nil)
	r := New(sink)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 5; i++ {
			r.Record(KindSearch, "event")
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Record blocked on a full sink buffer")
	}
}
