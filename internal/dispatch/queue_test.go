package dispatch

import (
	"sync"
	"testing"
	"time"
)

func TestQueue_BasicPushPop(t *testing.T) {
	q := NewQueue[int](10)

	for i := 0; i < 5; i++ {
		if !q.Push(i) {
			t.Fatalf("Push(%d) returned false", i)
		}
	}

	if q.Len() != 5 {
		t.Errorf("Len() = %d, want 5", q.Len())
	}

	for i := 0; i < 5; i++ {
		val, ok := q.TryPop()
		if !ok {
			t.Fatalf("TryPop() returned false for item %d", i)
		}
		if val != i {
			t.Errorf("popped %d, want %d", val, i)
		}
	}

	if q.Len() != 0 {
		t.Errorf("Len() = %d, want 0", q.Len())
	}
}

func TestQueue_GrowAt70Percent(t *testing.T) {
	q := NewQueue[int](10)

	// 7 items is 70% of 10
	for i := 0; i < 7; i++ {
		q.Push(i)
	}

	stats := q.Stats()
	if stats.Capacity <= 10 {
		t.Errorf("Capacity = %d, expected growth after 70%% fill", stats.Capacity)
	}
	if stats.ResizeCount != 1 {
		t.Errorf("ResizeCount = %d, want 1", stats.ResizeCount)
	}

	for i := 0; i < 7; i++ {
		val, ok := q.TryPop()
		if !ok {
			t.Fatalf("TryPop() returned false for item %d", i)
		}
		if val != i {
			t.Errorf("popped %d, want %d", val, i)
		}
	}
}

func TestQueue_MultipleGrows(t *testing.T) {
	q := NewQueue[int](4)

	for i := 0; i < 100; i++ {
		if !q.Push(i) {
			t.Fatalf("Push(%d) returned false", i)
		}
	}

	stats := q.Stats()
	if stats.Count != 100 {
		t.Errorf("Count = %d, want 100", stats.Count)
	}
	if stats.ResizeCount < 3 {
		t.Errorf("ResizeCount = %d, expected at least 3 resizes", stats.ResizeCount)
	}

	for i := 0; i < 100; i++ {
		val, ok := q.TryPop()
		if !ok {
			t.Fatalf("TryPop() returned false for item %d", i)
		}
		if val != i {
			t.Errorf("popped %d, want %d", val, i)
		}
	}
}

func TestQueue_BlockingPop(t *testing.T) {
	q := NewQueue[int](10)

	popped := make(chan int, 1)

	go func() {
		val, ok := q.Pop()
		if ok {
			popped <- val
		}
	}()

	// Give the consumer time to start waiting
	time.Sleep(10 * time.Millisecond)

	q.Push(42)

	select {
	case val := <-popped:
		if val != 42 {
			t.Errorf("popped %d, want 42", val)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for blocked Pop")
	}
}

func TestQueue_Close(t *testing.T) {
	q := NewQueue[int](10)

	q.Push(1)
	q.Push(2)
	q.Close()

	if q.Push(3) {
		t.Error("Push should return false after Close")
	}
	if !q.Closed() {
		t.Error("Closed() = false after Close")
	}

	// Queued items survive Close
	val, ok := q.Pop()
	if !ok || val != 1 {
		t.Errorf("Pop() = %d, %v; want 1, true", val, ok)
	}
	val, ok = q.Pop()
	if !ok || val != 2 {
		t.Errorf("Pop() = %d, %v; want 2, true", val, ok)
	}

	// Then Pop reports closed without blocking
	if _, ok := q.Pop(); ok {
		t.Error("Pop should return false when empty and closed")
	}
}

func TestQueue_CloseUnblocksPop(t *testing.T) {
	q := NewQueue[int](10)

	done := make(chan bool, 1)

	go func() {
		_, ok := q.Pop()
		done <- ok
	}()

	time.Sleep(10 * time.Millisecond)

	q.Close()

	select {
	case ok := <-done:
		if ok {
			t.Error("Pop should return false when closed and empty")
		}
	case <-time.After(time.Second):
		t.Fatal("Close did not unblock Pop")
	}
}

func TestQueue_ConcurrentProducers(t *testing.T) {
	q := NewQueue[int](10)
	const producers = 8
	const perProducer = 250

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				q.Push(p*perProducer + i)
			}
		}(p)
	}

	popped := make([]int, 0, producers*perProducer)
	for len(popped) < producers*perProducer {
		val, ok := q.Pop()
		if !ok {
			t.Fatal("Pop returned false on open queue")
		}
		popped = append(popped, val)
	}
	wg.Wait()

	// Each producer's items come out in the order it pushed them
	last := make(map[int]int)
	for _, val := range popped {
		p := val / perProducer
		if prev, seen := last[p]; seen && val <= prev {
			t.Fatalf("producer %d out of order: %d after %d", p, val, prev)
		}
		last[p] = val
	}
	if len(last) != producers {
		t.Errorf("saw %d producers, want %d", len(last), producers)
	}
}

func TestQueue_WrapAround(t *testing.T) {
	q := NewQueue[int](5)

	q.Push(1)
	q.Push(2)
	q.Push(3)

	q.TryPop() // removes 1
	q.TryPop() // removes 2

	// Wraps around, then grows while wrapped
	q.Push(4)
	q.Push(5)
	q.Push(6)
	q.Push(7)
	q.Push(8)

	expected := []int{3, 4, 5, 6, 7, 8}
	for _, want := range expected {
		got, ok := q.TryPop()
		if !ok {
			t.Fatalf("TryPop failed, expected %d", want)
		}
		if got != want {
			t.Errorf("got %d, want %d", got, want)
		}
	}
}

func TestQueue_Stats(t *testing.T) {
	q := NewQueue[int](10)

	stats := q.Stats()
	if stats.Count != 0 || stats.Capacity != 10 || stats.TotalPushed != 0 || stats.TotalPopped != 0 {
		t.Errorf("initial stats incorrect: %+v", stats)
	}

	q.Push(1)
	q.Push(2)
	q.Push(3)

	stats = q.Stats()
	if stats.Count != 3 || stats.TotalPushed != 3 {
		t.Errorf("stats after pushes: %+v", stats)
	}

	q.TryPop()
	q.TryPop()

	stats = q.Stats()
	if stats.Count != 1 || stats.TotalPopped != 2 {
		t.Errorf("stats after pops: %+v", stats)
	}
}

func TestNewQueue_MinCapacity(t *testing.T) {
	q := NewQueue[int](0)
	if q.Cap() != 1 {
		t.Errorf("Cap() = %d, want 1 for initial capacity 0", q.Cap())
	}

	q = NewQueue[int](-5)
	if q.Cap() != 1 {
		t.Errorf("Cap() = %d, want 1 for negative initial capacity", q.Cap())
	}
}

func TestQueue_HighWater(t *testing.T) {
	q := NewQueue[int](4)

	for i := 0; i < 5; i++ {
		q.Push(i)
	}
	for i := 0; i < 5; i++ {
		q.TryPop()
	}
	q.Push(99)

	stats := q.Stats()
	if stats.HighWater != 5 {
		t.Errorf("HighWater = %d, want 5", stats.HighWater)
	}
	if stats.Count != 1 {
		t.Errorf("Count = %d, want 1", stats.Count)
	}
}

func TestQueue_ResizeKeepsOrderAcrossWrap(t *testing.T) {
	q := NewQueue[int](10)

	// Move head forward so the next grow copies a wrapped ring.
	for i := 0; i < 6; i++ {
		q.Push(i)
	}
	for i := 0; i < 6; i++ {
		q.TryPop()
	}
	for i := 0; i < 20; i++ {
		q.Push(i)
	}

	if q.Stats().ResizeCount == 0 {
		t.Fatal("expected at least one resize")
	}
	for want := 0; want < 20; want++ {
		got, ok := q.TryPop()
		if !ok || got != want {
			t.Fatalf("TryPop() = %d, %v; want %d, true", got, ok, want)
		}
	}
}
