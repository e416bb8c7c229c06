package jobs

import (
	"errors"
	"os"
	"os/signal"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

// WaitFunc reaps one terminated child without blocking. A pid <= 0 means
// nothing is left to reap.
type WaitFunc func() (pid int, status unix.WaitStatus, err error)

func waitAny() (int, unix.WaitStatus, error) {
	var status unix.WaitStatus
	pid, err := unix.Wait4(-1, &status, unix.WNOHANG, nil)
	return pid, status, err
}

// Control is the shell's execution context for child processes. Its mask
// stands in for the SIGCHLD signal mask: while the shell holds it (Block)
// the child handler cannot run, and WaitForeground releases it atomically
// while suspended, the way sigsuspend does.
//
// Methods other than Start, Stop, Block, Unblock and Deliver must be called
// with the mask held.
type Control struct {
	mask sync.Mutex
	wake *sync.Cond

	jobs       *Registry
	foreground int
	lastPid    int
	lastStatus int64

	wait    WaitFunc
	log     *zap.Logger
	sigs    chan os.Signal
	done    chan struct{}
	stopped chan struct{}
}

func NewControl(log *zap.Logger) *Control {
	return newControl(log, waitAny)
}

func newControl(log *zap.Logger, wait WaitFunc) *Control {
	c := &Control{
		jobs:       NewRegistry(),
		lastStatus: StillRunning,
		wait:       wait,
		log:        log,
		sigs:       make(chan os.Signal, 1),
		done:       make(chan struct{}),
		stopped:    make(chan struct{}),
	}
	c.wake = sync.NewCond(&c.mask)
	return c
}

// Start installs the SIGCHLD handler.
func (c *Control) Start() {
	signal.Notify(c.sigs, unix.SIGCHLD)
	go c.handleSignals()
}

// Stop removes the handler and returns once it can no longer reap. It must
// not be called with the mask held.
func (c *Control) Stop() {
	signal.Stop(c.sigs)
	close(c.done)
	<-c.stopped
}

func (c *Control) handleSignals() {
	defer close(c.stopped)
	for {
		select {
		case <-c.done:
			return
		case <-c.sigs:
			select {
			case <-c.done:
				return
			default:
			}
			c.Deliver()
		}
	}
}

// Deliver runs the child handler once: it waits for the mask, drains every
// terminated child and wakes a suspended WaitForeground.
func (c *Control) Deliver() {
	c.mask.Lock()
	defer c.mask.Unlock()
	c.reapChildren()
	c.wake.Broadcast()
}

// reapChildren only writes job status and foreground bookkeeping. Jobs are
// never linked or unlinked here.
func (c *Control) reapChildren() {
	for {
		pid, status, err := c.wait()
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil || pid <= 0 {
			return
		}

		if c.jobs.finish(pid, status) {
			c.log.Debug("background child exited", zap.Int("pid", pid), zap.Int("status", int(status)))
			continue
		}
		if c.foreground > 0 {
			c.foreground--
		}
		if pid == c.lastPid {
			c.lastStatus = int64(status)
		}
		c.log.Debug("foreground child exited",
			zap.Int("pid", pid),
			zap.Int("status", int(status)),
			zap.Int("remaining", c.foreground))
	}
}

func (c *Control) Block() {
	c.mask.Lock()
}

func (c *Control) Unblock() {
	c.mask.Unlock()
}

// BeginPipeline forgets the previous foreground status.
func (c *Control) BeginPipeline() {
	c.lastPid = 0
	c.lastStatus = StillRunning
}

func (c *Control) AddForeground(pid int, last bool) {
	c.foreground++
	if last {
		c.lastPid = pid
	}
}

func (c *Control) AddBackground(pid int, command string) {
	c.jobs.Add(pid, command)
}

// SetLastStatus records the status of a last stage that never ran.
func (c *Control) SetLastStatus(status unix.WaitStatus) {
	c.lastPid = 0
	c.lastStatus = int64(status)
}

// LastStatus returns the status of the most recent foreground pipeline.
func (c *Control) LastStatus() (unix.WaitStatus, bool) {
	if c.lastStatus == StillRunning {
		return 0, false
	}
	return unix.WaitStatus(c.lastStatus), true
}

func (c *Control) Foreground() int {
	return c.foreground
}

// WaitForeground suspends until every foreground child has exited and
// returns the status of the last stage.
func (c *Control) WaitForeground() (unix.WaitStatus, bool) {
	for c.foreground > 0 {
		c.wake.Wait()
	}
	return c.LastStatus()
}

// ReapBackground unlinks finished background jobs and reports them.
func (c *Control) ReapBackground(report func(job *Job, status unix.WaitStatus)) int {
	return c.jobs.Reap(report)
}

func (c *Control) Jobs() []*Job {
	return c.jobs.List()
}
