package state

import "testing"

type counter struct {
	N int
}

func TestSetAppliesUpdateAndReturnsNext(t *testing.T) {
	s := New(counter{N: 1})

	got := s.Set(func(c counter) counter {
		c.N += 2
		return c
	})
	if got.N != 3 {
		t.Fatalf("Set returned N=%d, want 3", got.N)
	}
	if s.Get().N != 3 {
		t.Fatalf("Get returned N=%d, want 3", s.Get().N)
	}
}

func TestSubscribersRunInRegistrationOrder(t *testing.T) {
	s := New(counter{})

	var order []string
	s.Subscribe(func(counter) { order = append(order, "first") })
	s.Subscribe(func(counter) { order = append(order, "second") })

	s.Set(func(c counter) counter { return c })

	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Fatalf("fan-out order = %v, want [first second]", order)
	}
}

func TestEverySetNotifiesNoCoalescing(t *testing.T) {
	s := New(counter{})

	var seen []int
	s.Subscribe(func(c counter) { seen = append(seen, c.N) })

	for i := 1; i <= 3; i++ {
		s.Set(func(c counter) counter {
			c.N++
			return c
		})
	}
	if len(seen) != 3 || seen[0] != 1 || seen[1] != 2 || seen[2] != 3 {
		t.Fatalf("notifications = %v, want [1 2 3]", seen)
	}
}

func TestUnsubscribeStopsNotifications(t *testing.T) {
	s := New(counter{})

	calls := 0
	unsub := s.Subscribe(func(counter) { calls++ })

	s.Set(func(c counter) counter { return c })
	unsub()
	unsub() // second call is a no-op
	s.Set(func(c counter) counter { return c })

	if calls != 1 {
		t.Fatalf("listener called %d times, want 1", calls)
	}
}

func TestUnsubscribeDuringNotificationDoesNotPanic(t *testing.T) {
	s := New(counter{})

	var unsub func()
	unsub = s.Subscribe(func(counter) { unsub() })
	s.Subscribe(func(counter) {})

	s.Set(func(c counter) counter { return c })
	s.Set(func(c counter) counter { return c })
}

func TestResetStartsFromBaseState(t *testing.T) {
	s := New(counter{N: 10})

	s.Set(func(c counter) counter {
		c.N = 99
		return c
	})
	got := s.Reset(func(c counter) counter {
		c.N++
		return c
	})
	if got.N != 11 {
		t.Fatalf("Reset returned N=%d, want 11 (base 10 + 1)", got.N)
	}
}
