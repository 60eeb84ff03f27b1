package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeSessionStore struct {
	pruned chan int64
	fail   bool
}

func (f *fakeSessionStore) PruneStale() (int64, error) {
	if f.fail {
		return 0, errors.New("db down")
	}
	select {
	case f.pruned <- 3:
	default:
	}
	return 3, nil
}

func TestSessionPruner_RunsOnStartAndOnTicks(t *testing.T) {
	store := &fakeSessionStore{pruned: make(chan int64, 8)}
	pruner := &SessionPruner{
		sessions: store,
		interval: 5 * time.Millisecond,
		stopChan: make(chan bool),
	}
	pruner.Start()
	defer pruner.Stop()

	// one pass on startup, then one per tick
	for i := 0; i < 2; i++ {
		select {
		case n := <-store.pruned:
			assert.Equal(t, int64(3), n)
		case <-time.After(time.Second):
			t.Fatal("prune pass did not run")
		}
	}
}

func TestSessionPruner_StoreFailureDoesNotStopLoop(t *testing.T) {
	store := &fakeSessionStore{pruned: make(chan int64, 8), fail: true}
	pruner := &SessionPruner{
		sessions: store,
		interval: 5 * time.Millisecond,
		stopChan: make(chan bool),
	}
	pruner.Start()

	time.Sleep(20 * time.Millisecond)
	store.fail = false

	select {
	case <-store.pruned:
	case <-time.After(time.Second):
		t.Fatal("pruner did not recover after a failed pass")
	}
	pruner.Stop()
}
