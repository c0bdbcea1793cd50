package main

import (
	"os"
	"os/signal"
	"syscall"
)

// forwardSignals calls trigger with the signal name whenever SIGINT, SIGTERM
// or SIGHUP is received. The returned function stops forwarding.
func forwardSignals(trigger func(reason string)) (stop func()) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)

	done := make(chan struct{})
	go func() {
		for {
			select {
			case sig := <-sigChan:
				trigger(sig.String())
			case <-done:
				return
			}
		}
	}()

	return func() {
		signal.Stop(sigChan)
		close(done)
	}
}
