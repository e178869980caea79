package eventloop

import (
	"testing"
	"time"

	"github.com/nugget/mio-bridge/internal/bridge"
	"github.com/nugget/mio-bridge/internal/uiaction"
)

type recordingKeyboard struct {
	downs []string
	ups   []string
}

func (k *recordingKeyboard) KeyDown(name string) error { k.downs = append(k.downs, name); return nil }
func (k *recordingKeyboard) KeyUp(name string) error   { k.ups = append(k.ups, name); return nil }
func (k *recordingKeyboard) KeyTap(name string) error  { return nil }
func (k *recordingKeyboard) KeyType(text string) error { return nil }

func runFor(t *testing.T, l *Loop, src Sources, d time.Duration) {
	t.Helper()
	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		l.Run(stop, src)
		close(done)
	}()
	time.Sleep(d)
	close(stop)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("loop did not stop")
	}
}

func TestWatchdog_ReleasesKeyNotRefreshed(t *testing.T) {
	kb := &recordingKeyboard{}
	router := bridge.NewRouter(nil, bridge.Sinks{Keyboard: kb})
	loop := New(nil, router, 10*time.Millisecond)

	serial := make(chan string, 4)
	serial <- "key:down,a"

	runFor(t, loop, Sources{SerialLines: serial}, 60*time.Millisecond)

	if len(kb.downs) != 1 || kb.downs[0] != "a" {
		t.Fatalf("downs = %v, want [a]", kb.downs)
	}
	if len(kb.ups) == 0 {
		t.Fatal("expected watchdog to release key a, got no KeyUp calls")
	}
}

func TestWatchdog_RefreshedKeyStaysHeld(t *testing.T) {
	kb := &recordingKeyboard{}
	router := bridge.NewRouter(nil, bridge.Sinks{Keyboard: kb})
	loop := New(nil, router, 15*time.Millisecond)

	serial := make(chan string, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 8; i++ {
			serial <- "key:down,a"
			time.Sleep(5 * time.Millisecond)
		}
	}()

	stop := make(chan struct{})
	loopDone := make(chan struct{})
	go func() {
		loop.Run(stop, Sources{SerialLines: serial})
		close(loopDone)
	}()

	<-done
	close(stop)
	<-loopDone

	// The only release is the one Run issues on shutdown; a watchdog
	// release of the refreshed key would add a second KeyUp.
	if len(kb.ups) != 1 || kb.ups[0] != "a" {
		t.Errorf("refreshed key should only be released on shutdown, ups = %v, want [a]", kb.ups)
	}
}

func TestExplicitKeyUpForwardedEvenIfNotHeld(t *testing.T) {
	kb := &recordingKeyboard{}
	router := bridge.NewRouter(nil, bridge.Sinks{Keyboard: kb})
	loop := New(nil, router, 50*time.Millisecond)

	serial := make(chan string, 1)
	serial <- "key:up,z"

	runFor(t, loop, Sources{SerialLines: serial}, 20*time.Millisecond)

	if len(kb.ups) != 1 || kb.ups[0] != "z" {
		t.Errorf("ups = %v, want [z] forwarded despite not being held", kb.ups)
	}
}

func TestRun_StopsOnQuitAction(t *testing.T) {
	router := bridge.NewRouter(nil, bridge.Sinks{})
	loop := New(nil, router, 50*time.Millisecond)

	actions := make(chan uiaction.Action, 1)
	actions <- uiaction.Action{Kind: uiaction.Quit}

	done := make(chan struct{})
	go func() {
		loop.Run(make(chan struct{}), Sources{Actions: actions})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("loop did not stop on Quit action")
	}
}

func TestRun_StopsWhenSerialChannelCloses(t *testing.T) {
	router := bridge.NewRouter(nil, bridge.Sinks{})
	loop := New(nil, router, 50*time.Millisecond)

	serial := make(chan string)
	close(serial)

	done := make(chan struct{})
	go func() {
		loop.Run(make(chan struct{}), Sources{SerialLines: serial})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("loop did not stop when serial channel closed")
	}
}
