// Package jobs tracks the shell's children: background jobs waiting to be
// reported and the foreground processes the shell is waiting on.
package jobs

import (
	"sync/atomic"

	"golang.org/x/sys/unix"
)

// StillRunning is the status of a job whose exit has not been observed.
const StillRunning = -1

type Job struct {
	Pid     int
	Command string

	// status is written only by the child handler and read by the reaper.
	status atomic.Int64
	prev   *Job
	next   *Job
}

// Status returns the wait status and whether the job has finished.
func (j *Job) Status() (unix.WaitStatus, bool) {
	s := j.status.Load()
	if s == StillRunning {
		return 0, false
	}
	return unix.WaitStatus(s), true
}

// Registry is a doubly linked list of background jobs. Its head is a
// sentinel that is never removed, so the list is never empty.
type Registry struct {
	head *Job
	tail *Job
	n    int
}

func NewRegistry() *Registry {
	sentinel := &Job{Pid: -1}
	sentinel.status.Store(StillRunning)
	return &Registry{head: sentinel, tail: sentinel}
}

func (r *Registry) Add(pid int, command string) *Job {
	job := &Job{Pid: pid, Command: command, prev: r.tail}
	job.status.Store(StillRunning)
	r.tail.next = job
	r.tail = job
	r.n++
	return job
}

// finish records status for pid and reports whether pid is a background
// job. It never links or unlinks anything.
func (r *Registry) finish(pid int, status unix.WaitStatus) bool {
	for job := r.head.next; job != nil; job = job.next {
		if job.Pid == pid {
			job.status.Store(int64(status))
			return true
		}
	}
	return false
}

// Reap unlinks every finished job, calling report for each in list order.
func (r *Registry) Reap(report func(job *Job, status unix.WaitStatus)) int {
	reaped := 0
	for job := r.head.next; job != nil; {
		next := job.next
		if status, done := job.Status(); done {
			if report != nil {
				report(job, status)
			}
			r.unlink(job)
			reaped++
		}
		job = next
	}
	return reaped
}

func (r *Registry) unlink(job *Job) {
	job.prev.next = job.next
	if job.next != nil {
		job.next.prev = job.prev
	} else {
		r.tail = job.prev
	}
	job.prev, job.next = nil, nil
	r.n--
}

// Len returns the number of jobs, not counting the sentinel.
func (r *Registry) Len() int {
	return r.n
}

func (r *Registry) List() []*Job {
	jobs := make([]*Job, 0, r.n)
	for job := r.head.next; job != nil; job = job.next {
		jobs = append(jobs, job)
	}
	return jobs
}
