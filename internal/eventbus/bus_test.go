package eventbus

import (
	"testing"
)

func TestEmit_DeliversExactlyOnceInOrder(t *testing.T) {
	bus := New()
	var calls []string

	bus.Subscribe(TopicActiveJobs, func(p any) { calls = append(calls, "first:"+p.(string)) })
	bus.Subscribe(TopicActiveJobs, func(p any) { calls = append(calls, "second:"+p.(string)) })
	bus.Subscribe(TopicCrewLocations, func(p any) { calls = append(calls, "other") })

	bus.Emit(TopicActiveJobs, "jobs")

	if len(calls) != 2 || calls[0] != "first:jobs" || calls[1] != "second:jobs" {
		t.Errorf("unexpected delivery: %v", calls)
	}
}

func TestEmit_PanickingListenerIsIsolated(t *testing.T) {
	bus := New()
	var got []int

	bus.Subscribe(TopicCrewLocations, func(p any) { got = append(got, 1) })
	bus.Subscribe(TopicCrewLocations, func(p any) { panic("listener bug") })
	bus.Subscribe(TopicCrewLocations, func(p any) { got = append(got, 3) })

	bus.Emit(TopicCrewLocations, "tick-1")
	bus.Emit(TopicCrewLocations, "tick-2")

	if len(got) != 4 {
		t.Fatalf("expected the healthy listeners to run on both emits, got %v", got)
	}
	if got[0] != 1 || got[1] != 3 {
		t.Errorf("unexpected order: %v", got)
	}
}

func TestSubscribe_UnsubscribeStopsDelivery(t *testing.T) {
	bus := New()
	var count int

	unsubscribe := bus.Subscribe(TopicError, func(p any) { count++ })
	bus.Emit(TopicError, "a")
	unsubscribe()
	unsubscribe()
	bus.Emit(TopicError, "b")

	if count != 1 {
		t.Errorf("expected 1 delivery, got %d", count)
	}
	if bus.ListenerCount(TopicError) != 0 {
		t.Errorf("expected no listeners left, got %d", bus.ListenerCount(TopicError))
	}
}

func TestSubscribe_UnsubscribeOnlyRemovesOwnListener(t *testing.T) {
	bus := New()
	var a, b int

	unsubA := bus.Subscribe(TopicError, func(p any) { a++ })
	bus.Subscribe(TopicError, func(p any) { b++ })
	unsubA()
	bus.Emit(TopicError, "x")

	if a != 0 || b != 1 {
		t.Errorf("expected a=0 b=1, got a=%d b=%d", a, b)
	}
}

func TestSubscribe_NoReplayByDefault(t *testing.T) {
	bus := New()
	bus.Emit(TopicDashboardStats, "old")

	var got []any
	bus.Subscribe(TopicDashboardStats, func(p any) { got = append(got, p) })

	if len(got) != 0 {
		t.Errorf("late subscriber should not see earlier emission, got %v", got)
	}
	if last, ok := bus.Last(TopicDashboardStats); !ok || last != "old" {
		t.Errorf("expected last value to be retained, got %v %v", last, ok)
	}
}

func TestSubscribe_ReplayLastValue(t *testing.T) {
	bus := New(WithReplay(true))
	bus.Emit(TopicDashboardStats, "v1")
	bus.Emit(TopicDashboardStats, "v2")

	var got []any
	bus.Subscribe(TopicDashboardStats, func(p any) { got = append(got, p) })

	if len(got) != 1 || got[0] != "v2" {
		t.Errorf("expected replay of v2 only, got %v", got)
	}
}

func TestOn_TypedListener(t *testing.T) {
	type stats struct{ Total int }
	bus := New()
	var total int

	On(bus, TopicDashboardStats, func(s stats) { total += s.Total })
	bus.Emit(TopicDashboardStats, stats{Total: 4})
	bus.Emit(TopicDashboardStats, "wrong type")

	if total != 4 {
		t.Errorf("expected 4, got %d", total)
	}
	if s, ok := LastAs[stats](bus, TopicDashboardStats); ok {
		t.Errorf("last payload was a string, LastAs should fail, got %+v", s)
	}
}
