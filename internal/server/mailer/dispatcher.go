package mailer

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/bienesraices/internal/logging"
)

const dispatchQueueSize = 64

type jobKind int

const (
	jobConfirmation jobKind = iota
	jobReset
)

type job struct {
	kind    jobKind
	payload Payload
}

// Dispatcher queues account emails and delivers them on a background worker,
// so a slow or failing mail provider never blocks request handling. Delivery
// failures are logged and dropped.
type Dispatcher struct {
	mailer Mailer
	logger logging.Logger
	jobs   chan job
	wg     sync.WaitGroup
	once   sync.Once
}

// NewDispatcher constructs a dispatcher and starts its worker goroutine.
func NewDispatcher(m Mailer, logger logging.Logger) *Dispatcher {
	d := &Dispatcher{
		mailer: m,
		logger: logger,
		jobs:   make(chan job, dispatchQueueSize),
	}
	d.wg.Add(1)
	go d.run()
	return d
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	ctx := context.Background()
	for j := range d.jobs {
		var err error
		switch j.kind {
		case jobConfirmation:
			err = d.mailer.SendConfirmation(ctx, j.payload)
		case jobReset:
			err = d.mailer.SendResetInstructions(ctx, j.payload)
		}
		if err != nil {
			d.logger.Warn(ctx, "email delivery failed", "email", j.payload.Email, "error", err)
		}
	}
}

func (d *Dispatcher) submit(j job) {
	select {
	case d.jobs <- j:
	default:
		d.logger.Warn(context.Background(), "email queue full, dropping message", "email", j.payload.Email)
	}
}

// DispatchConfirmation queues a confirmation email.
func (d *Dispatcher) DispatchConfirmation(p Payload) {
	d.submit(job{kind: jobConfirmation, payload: p})
}

// DispatchReset queues a password reset email.
func (d *Dispatcher) DispatchReset(p Payload) {
	d.submit(job{kind: jobReset, payload: p})
}

// Close stops accepting jobs and waits for the worker to drain the queue.
func (d *Dispatcher) Close() {
	d.once.Do(func() { close(d.jobs) })
	d.wg.Wait()
}
