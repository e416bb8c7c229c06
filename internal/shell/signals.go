package shell

import (
	"os"
	"os/signal"
	"syscall"
)

// setupSignalHandling catches SIGINT so Ctrl-C only ends foreground
// children. It must be caught, not ignored: exec resets caught signals to
// the default but keeps ignored ones ignored.
func (s *Shell) setupSignalHandling() {
	s.interrupts = make(chan os.Signal, 1)
	signal.Notify(s.interrupts, syscall.SIGINT)
	go s.handleSignals(s.interrupts)
}

func (s *Shell) handleSignals(sigs <-chan os.Signal) {
	for range sigs {
		s.log.Debug("interrupt received")
	}
}

func (s *Shell) stopSignalHandling() {
	signal.Stop(s.interrupts)
	close(s.interrupts)
}
