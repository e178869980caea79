package uiaction

import (
	"os"
	"os/signal"
	"syscall"
)

// SignalProducer turns process signals into Actions for headless runs,
// the out-of-scope TUI's substitute: SIGINT/SIGTERM request a graceful
// Quit, SIGHUP requests ReloadConfig.
type SignalProducer struct {
	actions chan Action
	stop    chan struct{}
}

// NewSignalProducer starts listening for signals immediately.
func NewSignalProducer() *SignalProducer {
	p := &SignalProducer{
		actions: make(chan Action, 1),
		stop:    make(chan struct{}),
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)

	go func() {
		for {
			select {
			case sig := <-sigs:
				switch sig {
				case syscall.SIGHUP:
					p.actions <- Action{Kind: ReloadConfig}
				default:
					p.actions <- Action{Kind: Quit}
				}
			case <-p.stop:
				signal.Stop(sigs)
				return
			}
		}
	}()

	return p
}

func (p *SignalProducer) Actions() <-chan Action {
	return p.actions
}

// Close stops the signal listener goroutine.
func (p *SignalProducer) Close() {
	close(p.stop)
}
