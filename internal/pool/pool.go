// Package pool implements a fixed-size worker pool fed by a single
// dispatcher goroutine. Jobs are dispatched FIFO from an unbounded queue to
// the longest-idle worker; Wait blocks until the pool is quiescent.
package pool

import (
	"sync"

	"go.uber.org/zap"
)

// Job is a nullary unit of work. A Job has no return channel; a Job that
// panics is logged and treated as completed.
type Job func()

// Pool runs scheduled jobs on a fixed set of workers.
//
// Internally there is exactly one dispatcher and size workers. The
// dispatcher pops one pending job at a time, waits for an idle worker, and
// places the job in that worker's single-slot mailbox. Workers park on their
// mailbox, run the job, and rejoin the idle queue.
type Pool struct {
	mu     sync.Mutex
	cond   *sync.Cond // signaled when jobs, active, or idle change
	jobs   []Job      // FIFO of pending jobs
	active int        // jobs popped by the dispatcher but not yet finished
	idle   int        // workers currently parked in idleWorkers
	closed bool

	size         int
	idleWorkers  chan int   // FIFO of idle worker ids
	mailboxes    []chan Job // one single-slot mailbox per worker
	dispatchDone chan struct{}
	workersDone  sync.WaitGroup

	logger *zap.Logger
}

// New constructs a pool with size workers and starts them along with the
// dispatcher. size must be at least 1.
func New(size int, logger *zap.Logger) *Pool {
	if size < 1 {
		panic("pool: size must be >= 1")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Pool{
		size:         size,
		idle:         size,
		idleWorkers:  make(chan int, size),
		mailboxes:    make([]chan Job, size),
		dispatchDone: make(chan struct{}),
		logger:       logger,
	}
	p.cond = sync.NewCond(&p.mu)
	for id := 0; id < size; id++ {
		p.mailboxes[id] = make(chan Job, 1)
		p.idleWorkers <- id
	}
	p.workersDone.Add(size)
	for id := 0; id < size; id++ {
		go p.work(id)
	}
	go p.dispatch()
	return p
}

// Schedule enqueues a job for eventual execution. It never blocks and never
// refuses. Scheduling on a closed pool panics.
func (p *Pool) Schedule(job Job) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		panic("pool: schedule after close")
	}
	p.jobs = append(p.jobs, job)
	p.mu.Unlock()
	p.cond.Broadcast()
}

// Wait blocks until every job scheduled so far has completed and every
// worker is idle. It may be called repeatedly. Jobs scheduled concurrently
// with Wait may or may not be covered; callers stop scheduling first.
func (p *Pool) Wait() {
	p.mu.Lock()
	for len(p.jobs) > 0 || p.active > 0 {
		p.cond.Wait()
	}
	p.mu.Unlock()
}

// Close drains all pending work, then shuts down the dispatcher and all
// workers. After Close returns no goroutine remains and Schedule must not be
// called again.
func (p *Pool) Close() {
	p.Wait()
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.mu.Unlock()
	p.cond.Broadcast()
	<-p.dispatchDone
	for _, mailbox := range p.mailboxes {
		close(mailbox)
	}
	p.workersDone.Wait()
}

// Quiescent reports whether no job is queued and all workers are idle. Both
// conditions are observed under one lock.
func (p *Pool) Quiescent() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.jobs) == 0 && p.active == 0 && p.idle == p.size
}

// IdleWorkers returns the number of workers currently parked.
func (p *Pool) IdleWorkers() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.idle
}

func (p *Pool) dispatch() {
	defer close(p.dispatchDone)
	for {
		p.mu.Lock()
		for len(p.jobs) == 0 && !p.closed {
			p.cond.Wait()
		}
		if p.closed {
			p.mu.Unlock()
			return
		}
		job := p.jobs[0]
		p.jobs = p.jobs[1:]
		p.active++
		p.mu.Unlock()

		id := <-p.idleWorkers
		p.mu.Lock()
		p.idle--
		p.mu.Unlock()
		p.mailboxes[id] <- job
	}
}

func (p *Pool) work(id int) {
	defer p.workersDone.Done()
	for job := range p.mailboxes[id] {
		p.run(job)
		p.mu.Lock()
		p.active--
		p.idle++
		p.mu.Unlock()
		p.cond.Broadcast()
		p.idleWorkers <- id
	}
}

// run executes one job, containing any panic so a faulty job can never take
// down the pool's loop.
func (p *Pool) run(job Job) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("job panicked", zap.Any("panic", r))
		}
	}()
	job()
}
