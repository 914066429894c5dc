package scans

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/GSMS-B/ProjectQR/internal/infrastructure/logger"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

var scansDropped = promauto.NewCounter(prometheus.CounterOpts{
	Name: "scan_events_dropped_total",
	Help: "Scan events dropped because the recorder queue was full",
})

type RecorderOptions struct {
	QueueSize    int
	Workers      int
	WriteTimeout time.Duration
}

type job struct {
	code string
	at   time.Time
	req  RequestContext
}

// Recorder derives and persists scan events off the redirect hot path. Record
// enqueues and returns immediately; derivation (user agent, geolocation) and
// delivery happen on worker goroutines. The queue is bounded with a
// drop-newest overflow policy: under overload a dropped event is acceptable,
// a delayed redirect is not.
type Recorder struct {
	sink Sink
	geo  Geolocator

	queue        chan job
	writeTimeout time.Duration
	now          func() time.Time

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup

	dropped atomic.Int64
}

func NewRecorder(sink Sink, geo Geolocator, opts RecorderOptions) *Recorder {
	const (
		defaultQueueSize    = 10_000
		defaultWorkers      = 2
		defaultWriteTimeout = 5 * time.Second
	)

	if opts.QueueSize <= 0 {
		opts.QueueSize = defaultQueueSize
	}
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = defaultWriteTimeout
	}

	r := &Recorder{
		sink:         sink,
		geo:          geo,
		queue:        make(chan job, opts.QueueSize),
		writeTimeout: opts.WriteTimeout,
		now:          time.Now,
	}

	r.wg.Add(opts.Workers)
	for range opts.Workers {
		go r.worker()
	}

	return r
}

// Record enqueues a scan for asynchronous processing. Never blocks: when the
// queue is full the event is counted, logged and dropped. Safe to call
// during shutdown; a record racing Close is dropped, not panicked.
func (r *Recorder) Record(code string, req RequestContext) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		r.drop(code)
		return
	}

	select {
	case r.queue <- job{code: code, at: r.now().UTC(), req: req}:
	default:
		r.drop(code)
	}
}

func (r *Recorder) drop(code string) {
	r.dropped.Add(1)
	scansDropped.Inc()
	logger.Warn("scan event dropped", zap.String("code", code))
}

// Dropped returns the number of events discarded due to queue overflow.
func (r *Recorder) Dropped() int64 {
	return r.dropped.Load()
}

// Close stops accepting work and waits for queued events to flush.
func (r *Recorder) Close() {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.queue)
	}
	r.mu.Unlock()

	r.wg.Wait()
}

func (r *Recorder) worker() {
	defer r.wg.Done()

	for j := range r.queue {
		r.process(j)
	}
}

func (r *Recorder) process(j job) {
	ctx, cancel := context.WithTimeout(context.Background(), r.writeTimeout)
	defer cancel()

	info := ParseUserAgent(j.req.UserAgent)

	event := &Event{
		ID:          uuid.New().String(),
		Code:        j.code,
		At:          j.at,
		IP:          j.req.IP,
		DeviceClass: info.Class,
		OS:          info.OS,
		Browser:     info.Browser,
		UserAgent:   j.req.UserAgent,
		Referrer:    j.req.Referrer,
	}

	if r.geo != nil && j.req.IP != "" {
		loc, err := r.geo.Locate(ctx, j.req.IP)
		if err != nil {
			logger.Debug("geolocation lookup failed", zap.String("ip", j.req.IP), zap.Error(err))
		} else {
			event.Country = loc.Country
			event.CountryCode = loc.CountryCode
			event.City = loc.City
		}
	}

	if err := r.sink.Deliver(ctx, event); err != nil {
		// Best effort: a lost event never surfaces to the redirecting
		// user and is not retried.
		logger.Warn("failed to deliver scan event",
			zap.Error(err),
			zap.String("code", j.code),
			zap.String("event_id", event.ID),
		)
	}
}
