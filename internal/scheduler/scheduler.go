// Package scheduler drives periodic polling of pending activations.
package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
)

// BatchProcessor does the work on each tick.
type BatchProcessor interface {
	ProcessBatch(ctx context.Context) error
}

// SchedulerService is the control surface exposed to handlers and main.
// IsRunning reports whether ticks are being accepted, not whether a batch
// is executing right now.
//
// Stop waits for an in-flight batch. If Start is called before that batch
// ends, the scheduler keeps running and the waiting Stop returns
// ErrStopSuperseded.
type SchedulerService interface {
	Start() error
	Stop() error
	IsRunning() bool
}

// DefaultInterval is used when no interval is configured.
const DefaultInterval = 30 * time.Second

// DefaultBatchTimeout bounds a single ProcessBatch call.
const DefaultBatchTimeout = 30 * time.Second

// controlTimeout is how long Start and Stop wait for the loop to answer.
const controlTimeout = 2 * time.Second

// ErrStopSuperseded is returned by Stop when a Start arrived while Stop was
// waiting for the running batch.
var ErrStopSuperseded = errors.New("scheduler stop superseded by start")

var (
	errNotResponding = errors.New("scheduler control loop not responding")
	errAckTimeout    = errors.New("scheduler acknowledgement timeout")
)

type controlOp int

const (
	opStart controlOp = iota
	opStop
	opStatus
)

type controlMsg struct {
	op   controlOp
	resp chan bool
}

// schedulerService keeps all mutable state inside the loop goroutine.
type schedulerService struct {
	processor    BatchProcessor
	interval     time.Duration
	batchTimeout time.Duration
	ctrl         chan controlMsg
	log          zerolog.Logger
}

// NewSchedulerService starts the control loop in the stopped state.
// Non-positive durations fall back to the defaults.
func NewSchedulerService(
	processor BatchProcessor,
	interval time.Duration,
	batchTimeout time.Duration,
	log zerolog.Logger,
) SchedulerService {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if batchTimeout <= 0 {
		batchTimeout = DefaultBatchTimeout
	}

	s := &schedulerService{
		processor:    processor,
		interval:     interval,
		batchTimeout: batchTimeout,
		ctrl:         make(chan controlMsg),
		log:          log.With().Str("component", "scheduler").Logger(),
	}

	go s.loop()

	return s
}

func (s *schedulerService) Start() error {
	return s.send(opStart)
}

// Stop stops accepting ticks. A batch already in flight is allowed to
// finish (or time out) before Stop returns.
func (s *schedulerService) Stop() error {
	return s.send(opStop)
}

func (s *schedulerService) send(op controlOp) error {
	resp := make(chan bool, 1)

	select {
	case s.ctrl <- controlMsg{op: op, resp: resp}:
	case <-time.After(controlTimeout):
		return errNotResponding
	}

	select {
	case ok := <-resp:
		if !ok {
			return ErrStopSuperseded
		}
		return nil
	case <-time.After(controlTimeout + s.batchTimeout):
		return errAckTimeout
	}
}

func (s *schedulerService) IsRunning() bool {
	resp := make(chan bool, 1)
	s.ctrl <- controlMsg{op: opStatus, resp: resp}
	return <-resp
}

func (s *schedulerService) loop() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	running := false
	// Batches run inline, so control messages queue up behind them.
	// pendingStop holds a Stop that arrived while a batch was running.
	var pendingStop chan bool

	for {
		select {
		case msg := <-s.ctrl:
			switch msg.op {
			case opStart:
				if !running {
					s.log.Info().
						Dur("interval", s.interval).
						Dur("batch_timeout", s.batchTimeout).
						Msg("scheduler started")
				}
				running = true
				msg.resp <- true

			case opStop:
				if !running {
					s.log.Debug().Msg("stop requested, scheduler already idle")
				} else {
					s.log.Info().Msg("scheduler stopped")
				}
				running = false
				msg.resp <- true

			case opStatus:
				msg.resp <- running
			}

		case <-ticker.C:
			if !running {
				continue
			}
			pendingStop = s.runBatch()
			if pendingStop != nil {
				running = false
				pendingStop <- true
				pendingStop = nil
				s.log.Info().Msg("scheduler stopped after batch")
			}
		}
	}
}

// runBatch executes one batch while still answering status queries. A
// Stop received during the batch is returned so the loop can acknowledge it
// once the batch is done. A Start during the batch is acknowledged at once
// and fails the queued Stop.
func (s *schedulerService) runBatch() chan bool {
	ctx, cancel := context.WithTimeout(context.Background(), s.batchTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- s.processor.ProcessBatch(ctx) }()

	var pendingStop chan bool
	for {
		select {
		case err := <-done:
			if err != nil {
				s.log.Error().Err(err).Msg("batch failed")
			} else {
				s.log.Debug().Msg("batch completed")
			}
			return pendingStop

		case msg := <-s.ctrl:
			switch msg.op {
			case opStart:
				if pendingStop != nil {
					pendingStop <- false
					pendingStop = nil
				}
				msg.resp <- true
			case opStop:
				if pendingStop != nil {
					pendingStop <- true
				}
				pendingStop = msg.resp
			case opStatus:
				msg.resp <- pendingStop == nil
			}
		}
	}
}
