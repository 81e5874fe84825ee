package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"videothingy/media-pipeline/internal/db"
)

var (
	// ErrQueueFull is returned by SubmitJob when the job queue has no room.
	ErrQueueFull = errors.New("job queue is full")
	// ErrStopped is returned by SubmitJob after Stop.
	ErrStopped = errors.New("dispatcher is stopped")
)

// Job represents a unit of work to be executed by a worker.
type Job interface {
	ID() string
	Type() string
	// Payload is recorded as the job's input when it is submitted.
	Payload() interface{}
	Execute(ctx context.Context) (interface{}, error)
}

// Worker pulls jobs from its own channel after registering it in the pool.
type Worker struct {
	ID         int
	WorkerPool chan chan Job
	JobChannel chan Job

	dispatcher *Dispatcher
}

// NewWorker creates a new Worker bound to d.
func NewWorker(id int, d *Dispatcher) Worker {
	return Worker{
		ID:         id,
		WorkerPool: d.WorkerPool,
		JobChannel: make(chan Job),
		dispatcher: d,
	}
}

// Start makes the Worker listen for jobs until the dispatcher quits.
func (w Worker) Start(ctx context.Context) {
	d := w.dispatcher
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		for {
			select {
			case w.WorkerPool <- w.JobChannel:
			case <-d.quit:
				d.log.Debugf("Worker %d: Stopping", w.ID)
				return
			}

			select {
			case job := <-w.JobChannel:
				d.process(ctx, w.ID, job)
			case <-d.quit:
				d.log.Debugf("Worker %d: Stopping", w.ID)
				return
			}
		}
	}()
}

// Dispatcher manages a pool of workers, dispatches jobs to them and keeps
// the job status store current.
type Dispatcher struct {
	MaxWorkers int
	WorkerPool chan chan Job
	JobQueue   chan Job
	Workers    []Worker

	store db.Store
	log   *logrus.Logger

	wg      sync.WaitGroup
	quit    chan struct{}
	mu      sync.Mutex
	started bool
	stopped bool
}

// NewDispatcher creates a Dispatcher with maxWorkers workers and a queue of
// jobQueueSize pending jobs.
func NewDispatcher(maxWorkers, jobQueueSize int, store db.Store, logger *logrus.Logger) *Dispatcher {
	if maxWorkers <= 0 {
		maxWorkers = 1
	}
	if jobQueueSize < 0 {
		jobQueueSize = 0
	}
	return &Dispatcher{
		MaxWorkers: maxWorkers,
		WorkerPool: make(chan chan Job, maxWorkers),
		JobQueue:   make(chan Job, jobQueueSize),
		Workers:    make([]Worker, 0, maxWorkers),
		store:      store,
		log:        logger,
		quit:       make(chan struct{}),
	}
}

// Run starts the workers and the dispatch loop. Jobs execute with ctx.
func (d *Dispatcher) Run(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started || d.stopped {
		return
	}
	d.started = true

	d.log.Infof("Dispatcher starting with %d workers...", d.MaxWorkers)
	for i := 1; i <= d.MaxWorkers; i++ {
		w := NewWorker(i, d)
		d.Workers = append(d.Workers, w)
		w.Start(ctx)
	}

	d.wg.Add(1)
	go d.dispatch(ctx)
}

// dispatch hands queued jobs to the next free worker.
func (d *Dispatcher) dispatch(ctx context.Context) {
	defer d.wg.Done()
	for {
		select {
		case job := <-d.JobQueue:
			select {
			case jobChannel := <-d.WorkerPool:
				select {
				case jobChannel <- job:
				case <-d.quit:
					d.abandon(ctx, job)
					return
				}
			case <-d.quit:
				d.abandon(ctx, job)
				return
			}
		case <-d.quit:
			d.log.Debug("Dispatcher: Stopping dispatch loop")
			return
		}
	}
}

// SubmitJob records job as PENDING and queues it. It never blocks: when the
// queue is full the record is marked FAILED and ErrQueueFull returned. A job
// recorded while Stop runs is marked FAILED and ErrStopped returned.
func (d *Dispatcher) SubmitJob(ctx context.Context, job Job) error {
	d.mu.Lock()
	stopped := d.stopped
	d.mu.Unlock()
	if stopped {
		return ErrStopped
	}

	if err := d.store.CreateJobRecord(ctx, job.ID(), job.Type(), job.Payload()); err != nil {
		return fmt.Errorf("record job %s: %w", job.ID(), err)
	}

	// Stop may have drained the queue while the record was written
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		d.reject(ctx, job, ErrStopped)
		return ErrStopped
	}

	select {
	case d.JobQueue <- job:
		d.log.WithFields(logrus.Fields{"job_id": job.ID(), "job_type": job.Type()}).Info("Dispatcher: Job submitted to queue")
		return nil
	default:
		d.log.WithField("job_id", job.ID()).Warn("Dispatcher: Job queue full")
		d.reject(ctx, job, ErrQueueFull)
		return ErrQueueFull
	}
}

func (d *Dispatcher) reject(ctx context.Context, job Job, reason error) {
	if err := d.store.UpdateJobStatus(context.WithoutCancel(ctx), job.ID(), db.StatusFailed, nil, reason.Error()); err != nil {
		d.log.WithError(err).WithField("job_id", job.ID()).Error("Failed to mark rejected job")
	}
}

func (d *Dispatcher) process(ctx context.Context, workerID int, job Job) {
	entry := d.log.WithFields(logrus.Fields{
		"worker":   workerID,
		"job_id":   job.ID(),
		"job_type": job.Type(),
	})
	// status writes must land even when ctx is being cancelled
	storeCtx := context.WithoutCancel(ctx)

	entry.Info("Started job")
	if err := d.store.UpdateJobStatus(storeCtx, job.ID(), db.StatusProcessing, nil, ""); err != nil {
		entry.WithError(err).Warn("Failed to mark job processing")
	}

	output, err := job.Execute(ctx)
	if err != nil {
		entry.WithError(err).Error("Error processing job")
		if uErr := d.store.UpdateJobStatus(storeCtx, job.ID(), db.StatusFailed, nil, err.Error()); uErr != nil {
			entry.WithError(uErr).Error("Failed to mark job failed")
		}
		return
	}

	if uErr := d.store.UpdateJobStatus(storeCtx, job.ID(), db.StatusCompleted, output, ""); uErr != nil {
		entry.WithError(uErr).Error("Failed to mark job completed")
		return
	}
	entry.Info("Finished job")
}

func (d *Dispatcher) abandon(ctx context.Context, job Job) {
	d.reject(ctx, job, ErrStopped)
}

// Stop stops accepting jobs, waits for running jobs to finish and marks
// jobs still queued as FAILED.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	d.mu.Unlock()

	d.log.Info("Dispatcher: Initiating shutdown...")
	close(d.quit)
	d.wg.Wait()

	for {
		select {
		case job := <-d.JobQueue:
			d.abandon(context.Background(), job)
		default:
			d.log.Info("Dispatcher: Shutdown complete.")
			return
		}
	}
}
