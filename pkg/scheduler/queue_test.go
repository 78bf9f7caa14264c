package scheduler

import (
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestQueueDrainsInFIFOOrder(t *testing.T) {
	q := New()
	var order []int
	q.Schedule(func() {
		order = append(order, 1)
		q.Schedule(func() { order = append(order, 3) })
	})
	q.Schedule(func() { order = append(order, 2) })
	q.Schedule(nil)

	if q.Len() != 2 {
		t.Fatalf("expected 2 queued tasks, got %d", q.Len())
	}
	if ran := q.Drain(); ran != 3 {
		t.Fatalf("expected 3 tasks to run, got %d", ran)
	}
	if diff := cmp.Diff([]int{1, 2, 3}, order); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
	if q.Drain() != 0 {
		t.Fatal("drained queue must be empty")
	}
}

func TestQueueScheduleFromGoroutines(t *testing.T) {
	q := New()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			q.Schedule(func() {})
		}()
	}
	wg.Wait()
	if ran := q.Drain(); ran != 16 {
		t.Fatalf("expected 16 tasks, got %d", ran)
	}
}

func TestNilQueueIsInert(t *testing.T) {
	var q *Queue
	q.Schedule(func() { t.Fatal("must not run") })
	if q.Len() != 0 || q.Drain() != 0 {
		t.Fatal("nil queue must be empty")
	}
}
