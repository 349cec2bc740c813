package client

import (
	"testing"
	"time"
)

func TestRepeatTickerPostsUntilStopped(t *testing.T) {
	got := make(chan any, 64)
	start := NewRepeatTicker(5*time.Millisecond, func(ev any) { got <- ev })
	stop := start(7)

	select {
	case ev := <-got:
		if tick, ok := ev.(repeatTick); !ok || tick.gen != 7 {
			t.Fatalf("unexpected event %#v", ev)
		}
	case <-time.After(time.Second):
		t.Fatalf("ticker never fired")
	}

	stop()
	stop()
	time.Sleep(20 * time.Millisecond)
	for len(got) > 0 {
		<-got
	}
	time.Sleep(30 * time.Millisecond)
	if n := len(got); n != 0 {
		t.Fatalf("ticker posted %d events after stop", n)
	}
}
