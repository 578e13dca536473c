package writeback

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/nikolayk812/storefront/internal/port"
	"github.com/sirupsen/logrus"
)

var ErrClosed = errors.New("writeback: closed")

const (
	DefaultTimeout = 5 * time.Second
	DefaultRetries = 3
)

type pending struct {
	value []byte
	ack   *Ack
}

type queue struct {
	next    *pending
	last    *Ack
	running bool
}

type Writer struct {
	store      port.KVStore
	log        *logrus.Entry
	timeout    time.Duration
	retries    uint64
	newBackOff func() backoff.BackOff

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	queues map[string]*queue
	closed bool
}

type Option func(*Writer)

func WithLogger(log *logrus.Entry) Option {
	return func(w *Writer) {
		if log != nil {
			w.log = log
		}
	}
}

// WithTimeout bounds a single store call.
func WithTimeout(d time.Duration) Option {
	return func(w *Writer) {
		if d > 0 {
			w.timeout = d
		}
	}
}

// WithRetries sets how many times a failed write is retried. Zero disables retries.
func WithRetries(n int) Option {
	return func(w *Writer) {
		if n >= 0 {
			w.retries = uint64(n)
		}
	}
}

func WithBackOff(fn func() backoff.BackOff) Option {
	return func(w *Writer) {
		if fn != nil {
			w.newBackOff = fn
		}
	}
}

func New(store port.KVStore, opts ...Option) *Writer {
	ctx, cancel := context.WithCancel(context.Background())

	w := &Writer{
		store:      store,
		log:        logrus.NewEntry(logrus.StandardLogger()),
		timeout:    DefaultTimeout,
		retries:    DefaultRetries,
		newBackOff: defaultBackOff,
		ctx:        ctx,
		cancel:     cancel,
		queues:     make(map[string]*queue),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Enqueue schedules value to be stored under key and returns immediately.
// The caller must not modify value afterwards.
func (w *Writer) Enqueue(key string, value []byte) *Ack {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return Resolved(ErrClosed)
	}

	q, ok := w.queues[key]
	if !ok {
		q = &queue{}
		w.queues[key] = q
	}

	if q.next != nil {
		q.next.value = value
		return q.next.ack
	}

	p := &pending{value: value, ack: Pending()}
	q.next = p
	q.last = p.ack

	if !q.running {
		q.running = true
		w.wg.Add(1)
		go w.drain(key, q)
	}
	return p.ack
}

// Flush waits until the newest write of every key has finished and returns
// the errors of those writes joined together.
func (w *Writer) Flush(ctx context.Context) error {
	w.mu.Lock()
	acks := make([]*Ack, 0, len(w.queues))
	for _, q := range w.queues {
		if q.last != nil {
			acks = append(acks, q.last)
		}
	}
	w.mu.Unlock()

	var errs []error
	for _, ack := range acks {
		if err := ack.Wait(ctx); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close rejects new writes, flushes the queued ones until ctx expires, then
// cancels whatever is still running and waits for the workers to exit.
func (w *Writer) Close(ctx context.Context) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()

	err := w.Flush(ctx)
	w.cancel()
	w.wg.Wait()
	return err
}

func (w *Writer) drain(key string, q *queue) {
	defer w.wg.Done()

	for {
		w.mu.Lock()
		p := q.next
		if p == nil {
			q.running = false
			w.mu.Unlock()
			return
		}
		q.next = nil
		w.mu.Unlock()

		p.ack.resolve(w.write(key, p.value))
	}
}

func (w *Writer) write(key string, value []byte) error {
	attempt := 0
	op := func() error {
		attempt++

		ctx, cancel := context.WithTimeout(w.ctx, w.timeout)
		defer cancel()

		err := w.store.Set(ctx, key, value)
		if err == nil {
			return nil
		}
		if w.ctx.Err() != nil {
			return backoff.Permanent(err)
		}
		w.log.WithError(err).WithFields(logrus.Fields{
			"key":     key,
			"attempt": attempt,
		}).Warn("persist failed")
		return err
	}

	b := backoff.WithContext(backoff.WithMaxRetries(w.newBackOff(), w.retries), w.ctx)
	if err := backoff.Retry(op, b); err != nil {
		w.log.WithError(err).WithField("key", key).Error("persist dropped")
		return fmt.Errorf("store.Set %s: %w", key, err)
	}

	w.log.WithFields(logrus.Fields{
		"key":   key,
		"bytes": len(value),
	}).Debug("persisted")
	return nil
}

func defaultBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	b.MaxInterval = 2 * time.Second
	b.MaxElapsedTime = 0
	return b
}
