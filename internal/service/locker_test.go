package service

import (
	"context"
	"sync"
	"testing"
	"time"
	"unsafe"
)

func TestKeyedMutexSerializesSameKey(t *testing.T) {
	locker := NewKeyedMutex()
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		inside  int
		maxSeen int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := locker.Lock(ctx, "P1")
			if err != nil {
				t.Errorf("lock: %v", err)
				return
			}
			mu.Lock()
			inside++
			if inside > maxSeen {
				maxSeen = inside
			}
			mu.Unlock()

			mu.Lock()
			inside--
			mu.Unlock()
			unlock()
		}()
	}
	wg.Wait()

	if maxSeen != 1 {
		t.Errorf("expected at most one holder, saw %d", maxSeen)
	}
	if len(locker.locks) != 0 {
		t.Errorf("expected entries to be released, %d remain", len(locker.locks))
	}
}

func TestKeyedMutexIndependentKeys(t *testing.T) {
	locker := NewKeyedMutex()
	ctx := context.Background()

	unlockA, err := locker.Lock(ctx, "A")
	if err != nil {
		t.Fatalf("lock A: %v", err)
	}
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlockB, err := locker.Lock(ctx, "B")
		if err == nil {
			unlockB()
		}
		close(done)
	}()
	<-done
}

func TestKeyedMutexCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewKeyedMutex().Lock(ctx, "P1"); err == nil {
		t.Error("expected an error for a cancelled context")
	}
}

func TestKeyedMutexSurvivesReusedKeyBuffer(t *testing.T) {
	locker := NewKeyedMutex()
	ctx := context.Background()

	// the key aliases a buffer that is overwritten while the lock is held,
	// the way fiber recycles request memory
	buf := []byte("P1")
	unlock, err := locker.Lock(ctx, unsafe.String(&buf[0], len(buf)))
	if err != nil {
		t.Fatalf("lock: %v", err)
	}
	copy(buf, "P9")

	acquired := make(chan func())
	go func() {
		second, err := locker.Lock(ctx, "P1")
		if err != nil {
			t.Errorf("second lock: %v", err)
			close(acquired)
			return
		}
		acquired <- second
	}()

	select {
	case <-acquired:
		t.Fatal("second holder entered while P1 was still locked")
	case <-time.After(50 * time.Millisecond):
	}

	unlock()
	select {
	case second := <-acquired:
		if second != nil {
			second()
		}
	case <-time.After(time.Second):
		t.Fatal("second holder never acquired P1")
	}
}
