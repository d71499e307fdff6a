package state

import (
	"sync"
	"testing"
	"time"
)

func TestLockerSerializesSameKey(t *testing.T) {
	l := NewLocker()
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		active  int
		maxSeen int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := l.Lock(42)
			defer unlock()

			mu.Lock()
			active++
			if active > maxSeen {
				maxSeen = active
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			active--
			mu.Unlock()
		}()
	}
	wg.Wait()

	if maxSeen != 1 {
		t.Fatalf("max concurrent holders = %d, want 1", maxSeen)
	}
	if l.Len() != 0 {
		t.Fatalf("entries left = %d, want 0", l.Len())
	}
}

func TestLockerIndependentKeys(t *testing.T) {
	l := NewLocker()
	unlockA := l.Lock(1)
	acquired := make(chan struct{})
	go func() {
		unlock := l.Lock(2)
		close(acquired)
		unlock()
	}()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("key 2 blocked by key 1")
	}
	if l.Len() != 1 {
		t.Fatalf("entries = %d, want 1", l.Len())
	}
	unlockA()
	unlockA()
	if l.Len() != 0 {
		t.Fatalf("entries = %d, want 0", l.Len())
	}
}
