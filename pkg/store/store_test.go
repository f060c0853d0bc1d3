package store

import (
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestStoreBasic(t *testing.T) {
	count := New(0)

	if count.Get() != 0 {
		t.Errorf("expected initial value 0, got %d", count.Get())
	}

	count.Set(5)
	if count.Get() != 5 {
		t.Errorf("expected value 5, got %d", count.Get())
	}

	count.Update(func(n int) int { return n * 2 })
	if count.Get() != 10 {
		t.Errorf("expected value 10, got %d", count.Get())
	}
}

func TestSubscribersNotifiedInRegistrationOrder(t *testing.T) {
	s := New("")
	var calls []string

	for _, name := range []string{"a", "b", "c", "d"} {
		name := name
		s.Subscribe(func(v string) {
			calls = append(calls, name+"="+v)
		})
	}

	s.Set("x")

	want := []string{"a=x", "b=x", "c=x", "d=x"}
	if diff := cmp.Diff(want, calls); diff != "" {
		t.Errorf("notification order mismatch (-want +got):\n%s", diff)
	}
}

func TestSetNotifiesEvenWhenValueUnchanged(t *testing.T) {
	s := New(1)
	n := 0
	s.Subscribe(func(int) { n++ })

	s.Set(1)
	s.Set(1)

	if n != 2 {
		t.Errorf("expected 2 notifications, got %d", n)
	}
}

func TestSubscribeDoesNotReplay(t *testing.T) {
	s := New(42)
	called := false
	s.Subscribe(func(int) { called = true })

	if called {
		t.Error("Subscribe should not invoke the callback with the current value")
	}
}

func TestUnsubscribe(t *testing.T) {
	s := New(0)
	var got []int
	stop := s.Subscribe(func(v int) { got = append(got, v) })

	s.Set(1)
	stop()
	stop() // idempotent
	s.Set(2)

	if diff := cmp.Diff([]int{1}, got); diff != "" {
		t.Errorf("unexpected notifications (-want +got):\n%s", diff)
	}
	if s.Len() != 0 {
		t.Errorf("expected 0 subscribers, got %d", s.Len())
	}
}

func TestUnsubscribeKeepsOrder(t *testing.T) {
	s := New(0)
	var calls []string
	s.Subscribe(func(int) { calls = append(calls, "a") })
	stopB := s.Subscribe(func(int) { calls = append(calls, "b") })
	s.Subscribe(func(int) { calls = append(calls, "c") })
	s.Subscribe(func(int) { calls = append(calls, "d") })

	stopB()
	s.Set(1)

	if diff := cmp.Diff([]string{"a", "c", "d"}, calls); diff != "" {
		t.Errorf("order after unsubscribe mismatch (-want +got):\n%s", diff)
	}
}

func TestSubscribeDuringNotification(t *testing.T) {
	s := New(0)
	var late []int
	added := false

	s.Subscribe(func(int) {
		if added {
			return
		}
		added = true
		s.Subscribe(func(v int) { late = append(late, v) })
	})

	s.Set(1)
	if len(late) != 0 {
		t.Errorf("subscriber added mid-notification was invoked for it: %v", late)
	}

	s.Set(2)
	if diff := cmp.Diff([]int{2}, late); diff != "" {
		t.Errorf("late subscriber notifications (-want +got):\n%s", diff)
	}
}

func TestUnsubscribeDuringNotification(t *testing.T) {
	s := New(0)
	var stopB func()
	bCalls := 0

	s.Subscribe(func(int) { stopB() })
	stopB = s.Subscribe(func(int) { bCalls++ })

	s.Set(1)
	if bCalls != 0 {
		t.Errorf("subscriber removed mid-notification was invoked %d times", bCalls)
	}
}

func TestSubscriberSeesNewValueViaGet(t *testing.T) {
	s := New(0)
	var seen int
	s.Subscribe(func(int) { seen = s.Get() })

	s.Set(7)
	if seen != 7 {
		t.Errorf("Get inside subscriber returned %d, want 7", seen)
	}
}

func TestNilSubscriber(t *testing.T) {
	s := New(0)
	stop := s.Subscribe(nil)
	stop()
	s.Set(1)
	if s.Len() != 0 {
		t.Errorf("nil subscriber should not be registered")
	}
}

func TestConcurrentUpdatesAreAtomic(t *testing.T) {
	s := New(0)
	notifications := 0
	s.Subscribe(func(int) { notifications++ })

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Update(func(n int) int { return n + 1 })
		}()
	}
	wg.Wait()

	if s.Get() != 100 {
		t.Errorf("expected 100 after concurrent updates, got %d", s.Get())
	}
	if notifications != 100 {
		t.Errorf("expected 100 notifications, got %d", notifications)
	}
}

func TestNotificationsOrderedAcrossWriters(t *testing.T) {
	s := New(0)
	var seen []int
	s.Subscribe(func(v int) { seen = append(seen, v) })

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Update(func(n int) int { return n + 1 })
		}()
	}
	wg.Wait()

	for i, v := range seen {
		if v != i+1 {
			t.Fatalf("notification %d carried %d; writes must be observed in order", i, v)
		}
	}
}

func TestReadableInterface(t *testing.T) {
	var r Readable[string] = New("hi")
	if r.Get() != "hi" {
		t.Errorf("Readable.Get = %q", r.Get())
	}
}

func TestSubscriberWritesThroughGoroutine(t *testing.T) {
	s := New(0)
	var wg sync.WaitGroup
	s.Subscribe(func(v int) {
		if v == 1 {
			// Writing from the callback itself would deadlock.
			wg.Add(1)
			go func() {
				defer wg.Done()
				s.Update(func(v int) int { return v + 1 })
			}()
		}
	})

	s.Set(1)
	wg.Wait()
	if got := s.Get(); got != 2 {
		t.Errorf("Get() = %d, want 2", got)
	}
}
