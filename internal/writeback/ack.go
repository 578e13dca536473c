package writeback

import (
	"context"
	"sync"
)

// Ack reports the outcome of a queued write.
type Ack struct {
	done chan struct{}
	once sync.Once
	err  error
}

// Pending returns an Ack that resolves only through Follow.
func Pending() *Ack {
	return &Ack{done: make(chan struct{})}
}

// Resolved returns an Ack that is already done with err.
func Resolved(err error) *Ack {
	a := Pending()
	a.resolve(err)
	return a
}

func (a *Ack) resolve(err error) {
	a.once.Do(func() {
		a.err = err
		close(a.done)
	})
}

// Follow resolves a with the outcome of src once src is done.
func (a *Ack) Follow(src *Ack) {
	go func() {
		<-src.done
		a.resolve(src.err)
	}()
}

// Done is closed once the write has finished.
func (a *Ack) Done() <-chan struct{} {
	return a.done
}

// Err returns the write error once Done is closed, nil before.
func (a *Ack) Err() error {
	select {
	case <-a.done:
		return a.err
	default:
		return nil
	}
}

func (a *Ack) Wait(ctx context.Context) error {
	select {
	case <-a.done:
		return a.err
	case <-ctx.Done():
		return ctx.Err()
	}
}
