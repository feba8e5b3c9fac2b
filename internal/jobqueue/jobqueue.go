// Package jobqueue provides an in-memory timer facility: callbacks scheduled
// to run once after a delay or repeatedly on an interval, with cancellation
// and enumeration of the jobs still outstanding.
//
// The queue is the sole owner of a scheduled job; callers keep only the job
// name (or the *Job handle) for cancellation. The set of live jobs is
// volatile — nothing here survives a process restart.
package jobqueue

import (
	"errors"
	"log"
	"sync"
	"time"
)

// ErrClosed is returned when scheduling on a queue that has been shut down.
var ErrClosed = errors.New("jobqueue: queue is closed")

// Callback runs when a job comes due. It executes on the job's own goroutine;
// callbacks for different jobs may run concurrently.
type Callback func(j *Job)

// Job is one scheduled unit of work.
type Job struct {
	name    string
	userID  int64
	payload any
	period  time.Duration // 0 for one-shot jobs

	q  *Queue
	fn Callback

	mu        sync.Mutex
	due       time.Time
	timer     *time.Timer
	cancelled bool
}

// Name returns the job's unique name.
func (j *Job) Name() string { return j.name }

// UserID returns the id of the user the job belongs to.
func (j *Job) UserID() int64 { return j.userID }

// Payload returns the data attached at scheduling time.
func (j *Job) Payload() any { return j.payload }

// Due returns the next time the job will run.
func (j *Job) Due() time.Time {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.due
}

// Cancel stops future runs of the job and removes it from the queue.
// A callback already dispatched may still complete.
func (j *Job) Cancel() {
	j.mu.Lock()
	if j.cancelled {
		j.mu.Unlock()
		return
	}
	j.cancelled = true
	if j.timer != nil {
		j.timer.Stop()
	}
	j.mu.Unlock()

	j.q.remove(j)
}

func (j *Job) isCancelled() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.cancelled
}

// Queue schedules and tracks jobs for all users of the process.
type Queue struct {
	mu     sync.Mutex
	jobs   map[string]*Job
	closed bool
}

// New creates an empty queue.
func New() *Queue {
	return &Queue{jobs: make(map[string]*Job)}
}

// RunOnce schedules fn to run once after delay. The name must be unique among
// live jobs; scheduling over an existing name replaces (cancels) the old job.
func (q *Queue) RunOnce(name string, userID int64, delay time.Duration, payload any, fn Callback) (*Job, error) {
	return q.schedule(name, userID, delay, 0, payload, fn)
}

// RunRepeating schedules fn to run every period, the first run after initial.
// The job keeps firing until cancelled.
func (q *Queue) RunRepeating(name string, userID int64, initial, period time.Duration, payload any, fn Callback) (*Job, error) {
	if period <= 0 {
		return nil, errors.New("jobqueue: period must be positive")
	}
	return q.schedule(name, userID, initial, period, payload, fn)
}

func (q *Queue) schedule(name string, userID int64, delay, period time.Duration, payload any, fn Callback) (*Job, error) {
	// Cancelling an existing job under the name requires dropping the lock,
	// and a concurrent schedule may register the name again in that window.
	// Keep rechecking until the slot is free, so no replaced job is left with
	// a live timer while invisible to Jobs().
	q.mu.Lock()
	for {
		if q.closed {
			q.mu.Unlock()
			return nil, ErrClosed
		}
		old, ok := q.jobs[name]
		if !ok {
			break
		}
		delete(q.jobs, name)
		q.mu.Unlock()
		old.Cancel()
		q.mu.Lock()
	}

	j := &Job{
		name:    name,
		userID:  userID,
		payload: payload,
		period:  period,
		q:       q,
		fn:      fn,
		due:     time.Now().Add(delay),
	}
	j.timer = time.AfterFunc(delay, func() { q.fire(j) })
	q.jobs[name] = j
	q.mu.Unlock()
	return j, nil
}

func (q *Queue) fire(j *Job) {
	if j.isCancelled() {
		return
	}

	if j.period > 0 {
		j.mu.Lock()
		j.due = time.Now().Add(j.period)
		j.timer.Reset(j.period)
		j.mu.Unlock()
	} else {
		q.remove(j)
	}

	defer func() {
		if r := recover(); r != nil {
			log.Printf("[jobqueue] job %s panicked: %v", j.name, r)
		}
	}()
	j.fn(j)
}

// remove drops j from the live set. A replacement job registered under the
// same name is left alone.
func (q *Queue) remove(j *Job) {
	q.mu.Lock()
	if cur, ok := q.jobs[j.name]; ok && cur == j {
		delete(q.jobs, j.name)
	}
	q.mu.Unlock()
}

// Cancel cancels the named job if it is still live. It reports whether a job
// was found.
func (q *Queue) Cancel(name string) bool {
	q.mu.Lock()
	j, ok := q.jobs[name]
	q.mu.Unlock()
	if !ok {
		return false
	}
	j.Cancel()
	return true
}

// Jobs returns a snapshot of all live jobs.
func (q *Queue) Jobs() []*Job {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]*Job, 0, len(q.jobs))
	for _, j := range q.jobs {
		out = append(out, j)
	}
	return out
}

// JobsByUser returns a snapshot of the live jobs belonging to one user.
func (q *Queue) JobsByUser(userID int64) []*Job {
	q.mu.Lock()
	defer q.mu.Unlock()
	var out []*Job
	for _, j := range q.jobs {
		if j.userID == userID {
			out = append(out, j)
		}
	}
	return out
}

// Len returns the number of live jobs.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}

// Close cancels every live job and rejects further scheduling.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	jobs := make([]*Job, 0, len(q.jobs))
	for _, j := range q.jobs {
		jobs = append(jobs, j)
	}
	q.jobs = make(map[string]*Job)
	q.mu.Unlock()

	for _, j := range jobs {
		j.Cancel()
	}
}
