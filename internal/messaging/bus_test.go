package messaging

import (
	"reflect"
	"testing"
)

func TestBusDeliversInSubscriptionOrder(t *testing.T) {
	t.Parallel()

	var bus Bus[int]
	var got []string

	bus.Subscribe(func(v int) { got = append(got, "first") })
	unsubscribe := bus.Subscribe(func(v int) { got = append(got, "second") })
	bus.Subscribe(func(v int) { got = append(got, "third") })

	bus.Publish(1)
	if !reflect.DeepEqual(got, []string{"first", "second", "third"}) {
		t.Fatalf("unexpected delivery order: %v", got)
	}

	unsubscribe()
	unsubscribe()

	if bus.Len() != 2 {
		t.Fatalf("expected 2 subscribers after unsubscribe, got %d", bus.Len())
	}

	got = nil
	bus.Publish(2)
	if !reflect.DeepEqual(got, []string{"first", "third"}) {
		t.Fatalf("unexpected delivery after unsubscribe: %v", got)
	}
}

func TestBusAllowsUnsubscribeDuringPublish(t *testing.T) {
	t.Parallel()

	var bus Bus[string]
	calls := 0

	var unsubscribe func()
	unsubscribe = bus.Subscribe(func(string) {
		calls++
		unsubscribe()
	})

	bus.Publish("a")
	bus.Publish("b")

	if calls != 1 {
		t.Fatalf("expected a single delivery, got %d", calls)
	}
	if bus.Len() != 0 {
		t.Fatalf("expected no subscribers left")
	}
}
