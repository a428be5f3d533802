// elfdr: multiple-testing correction for variant calling pipelines.
// Copyright (c) 2020-2021 imec vzw.

// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version, and Additional Terms
// (see below).

// This program is distributed in the hope that it will be useful, but
// WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Affero General Public License for more details.

// You should have received a copy of the GNU Affero General Public
// License and Additional Terms along with this program. If not, see
// <https://github.com/ExaScience/elprep/blob/master/LICENSE.txt>.

package compute

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/exascience/elfdr/internal"
)

// ErrContextClosed is reported for kernels submitted after Close.
var ErrContextClosed = errors.New("compute context closed")

// A ComputationError reports a kernel that failed, either by
// returning an error or by panicking.
type ComputationError struct {
	Context string
	Kernel  string
	Err     error
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("kernel %v failed in compute context %v: %v", e.Kernel, e.Context, e.Err)
}

func (e *ComputationError) Unwrap() error {
	return e.Err
}

// An Event is the handle of a submitted kernel.
type Event struct {
	kernel string
	run    func() error
	done   chan struct{}
	err    error
}

// Wait blocks until the kernel has finished and returns its error,
// which is nil or a *ComputationError.
func (ev *Event) Wait() error {
	<-ev.done
	return ev.err
}

// WaitAll waits for all given events and returns the first error
// among them in argument order.
func WaitAll(events ...*Event) (err error) {
	for _, ev := range events {
		if werr := ev.Wait(); err == nil {
			err = werr
		}
	}
	return
}

const queueCapacity = 16

// A Context owns a single queue on which kernels execute one after the
// other in submission order, together with pools of scratch buffers.
//
// Kernels must not submit to the context they run on.
type Context struct {
	id      uuid.UUID
	backend Backend

	mutex  sync.RWMutex
	closed bool
	queue  chan *Event

	float64s, ints sync.Pool
}

// DefaultBackend returns the sequential backend in pedantic mode, and
// the threaded backend otherwise.
func DefaultBackend() Backend {
	if internal.PedanticMode {
		return Sequential{}
	}
	return Threaded{}
}

// NewContext creates a context that executes its kernels on the given
// backend. A nil backend selects DefaultBackend().
func NewContext(backend Backend) *Context {
	if backend == nil {
		backend = DefaultBackend()
	}
	ctx := &Context{
		id:      uuid.New(),
		backend: backend,
		queue:   make(chan *Event, queueCapacity),
	}
	go ctx.process()
	return ctx
}

// ID returns the unique identifier of the context.
func (ctx *Context) ID() string {
	return ctx.id.String()
}

// Backend returns the backend of the context.
func (ctx *Context) Backend() Backend {
	return ctx.backend
}

func (ctx *Context) process() {
	for ev := range ctx.queue {
		ev.err = ctx.execute(ev)
		close(ev.done)
	}
}

func (ctx *Context) execute(ev *Event) (err error) {
	defer func() {
		if p := recover(); p != nil {
			perr, ok := p.(error)
			if !ok {
				perr = fmt.Errorf("%v", p)
			}
			err = &ComputationError{Context: ctx.ID(), Kernel: ev.kernel, Err: perr}
		}
	}()
	if kerr := ev.run(); kerr != nil {
		return &ComputationError{Context: ctx.ID(), Kernel: ev.kernel, Err: kerr}
	}
	return nil
}

// Submit enqueues a kernel and returns immediately. The kernel runs
// after all previously submitted kernels have finished.
func (ctx *Context) Submit(kernel string, run func() error) *Event {
	ev := &Event{kernel: kernel, run: run, done: make(chan struct{})}
	ctx.mutex.RLock()
	defer ctx.mutex.RUnlock()
	if ctx.closed {
		ev.err = &ComputationError{Context: ctx.ID(), Kernel: kernel, Err: ErrContextClosed}
		close(ev.done)
		return ev
	}
	ctx.queue <- ev
	return ev
}

// Run submits a kernel and waits for it to finish.
func (ctx *Context) Run(kernel string, run func() error) error {
	return ctx.Submit(kernel, run).Wait()
}

// Close stops the queue once all submitted kernels have finished.
// Close may be called more than once.
func (ctx *Context) Close() {
	ctx.mutex.Lock()
	defer ctx.mutex.Unlock()
	if !ctx.closed {
		ctx.closed = true
		close(ctx.queue)
	}
}

/*
ReserveFloat64s either reuses or makes a slice of float64 of length n.
The contents of the slice are unspecified.

Use ReleaseFloat64s to return the slice to the context's pool, usually
in a defer statement right after the reservation.
*/
func (ctx *Context) ReserveFloat64s(n int) []float64 {
	if buf, ok := ctx.float64s.Get().([]float64); ok && cap(buf) >= n {
		return buf[:n]
	}
	return make([]float64, n)
}

// ReleaseFloat64s returns a slice obtained from ReserveFloat64s.
func (ctx *Context) ReleaseFloat64s(buf []float64) {
	ctx.float64s.Put(buf[:0])
}

// ReserveInts is like ReserveFloat64s, but for slices of int.
func (ctx *Context) ReserveInts(n int) []int {
	if buf, ok := ctx.ints.Get().([]int); ok && cap(buf) >= n {
		return buf[:n]
	}
	return make([]int, n)
}

// ReleaseInts returns a slice obtained from ReserveInts.
func (ctx *Context) ReleaseInts(buf []int) {
	ctx.ints.Put(buf[:0])
}
