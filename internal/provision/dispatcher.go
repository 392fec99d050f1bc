package provision

import (
	"context"
	"log"
	"sync"
	"time"
)

// Operation names the two units of work the dispatcher schedules.
type Operation string

const (
	OpProvision Operation = "provision"
	OpRetire    Operation = "retire"
)

type job struct {
	op          Operation
	orderItemID string
}

// Dispatcher runs provisioning attempts on a background worker pool,
// decoupled from the request that created the order item. Jobs carry only
// the item's id so workers always re-read current state; the enqueueing
// caller returns immediately and never blocks on the attempt itself.
type Dispatcher struct {
	provisioner    *Provisioner
	jobs           chan job
	attemptTimeout time.Duration
	wg             sync.WaitGroup
	stopOnce       sync.Once
}

func NewDispatcher(p *Provisioner, queueSize int, attemptTimeout time.Duration) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 64
	}
	return &Dispatcher{
		provisioner:    p,
		jobs:           make(chan job, queueSize),
		attemptTimeout: attemptTimeout,
	}
}

// Start launches the worker pool. Each worker owns exactly one order item
// for the duration of an attempt; there is no shared lock between workers.
func (d *Dispatcher) Start(workers int) {
	if workers <= 0 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go d.worker(i)
	}
	log.Printf("[Dispatcher] Started %d provisioning workers", workers)
}

// Stop drains the queue and waits for in-flight attempts to finish.
func (d *Dispatcher) Stop() {
	d.stopOnce.Do(func() {
		close(d.jobs)
	})
	d.wg.Wait()
}

// DispatchProvision schedules exactly one provisioning attempt for an order
// item. Call it only after the creating transaction has committed, so the
// worker never observes a record that is not yet durable.
func (d *Dispatcher) DispatchProvision(orderItemID string) {
	d.jobs <- job{op: OpProvision, orderItemID: orderItemID}
}

// DispatchRetire schedules one retirement attempt.
func (d *Dispatcher) DispatchRetire(orderItemID string) {
	d.jobs <- job{op: OpRetire, orderItemID: orderItemID}
}

func (d *Dispatcher) worker(id int) {
	defer d.wg.Done()

	for j := range d.jobs {
		ctx, cancel := context.WithTimeout(context.Background(), d.attemptTimeout)

		var err error
		switch j.op {
		case OpProvision:
			err = d.provisioner.Provision(ctx, j.orderItemID)
		case OpRetire:
			err = d.provisioner.Retire(ctx, j.orderItemID)
		}
		cancel()

		// The provisioner already mapped the failure onto the order item;
		// this is the dispatcher's own record of the raw error.
		if err != nil {
			log.Printf("[Dispatcher] worker=%d %s failed for order item %s: %v", id, j.op, j.orderItemID, err)
		} else {
			log.Printf("[Dispatcher] worker=%d %s completed for order item %s", id, j.op, j.orderItemID)
		}
	}
}
