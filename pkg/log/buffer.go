package log

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
)

// Buffer delivers entries asynchronously through a bounded queue.
// When the queue is full the oldest entry is dropped.
type Buffer struct {
	queue        chan Entry
	transporters []Transporter
	dropped      atomic.Int64
	closed       atomic.Bool
	done         chan struct{}
	wg           sync.WaitGroup
	fallback     io.Writer
}

// NewBuffer starts a buffer of the given capacity delivering to transporters.
func NewBuffer(capacity int, transporters ...Transporter) *Buffer {
	b := &Buffer{
		queue:        make(chan Entry, max(capacity, 1)),
		transporters: transporters,
		done:         make(chan struct{}),
		fallback:     os.Stderr,
	}
	b.wg.Add(1)
	go b.run()
	return b
}

// Send queues an entry. Safe for concurrent use; a no-op after Close.
func (b *Buffer) Send(entry Entry) {
	if b.closed.Load() {
		return
	}

	for attempt := 0; attempt < 2; attempt++ {
		select {
		case b.queue <- entry:
			return
		default:
		}
		select {
		case <-b.queue:
			b.dropped.Add(1)
		default:
		}
	}
	b.dropped.Add(1)
}

// DroppedCount returns the number of entries lost to overflow.
func (b *Buffer) DroppedCount() int64 {
	return b.dropped.Load()
}

// Close stops delivery after flushing queued entries, then closes the
// transporters. Safe to call multiple times.
func (b *Buffer) Close() {
	if !b.closed.CompareAndSwap(false, true) {
		return
	}
	close(b.done)
	b.wg.Wait()

	for _, t := range b.transporters {
		if err := t.Close(); err != nil {
			fmt.Fprintf(b.fallback, "log transporter %q close failed: %v\n", t.Name(), err)
		}
	}
}

func (b *Buffer) run() {
	defer b.wg.Done()

	for {
		select {
		case entry := <-b.queue:
			b.deliver(entry)
		case <-b.done:
			b.drain()
			return
		}
	}
}

func (b *Buffer) drain() {
	for {
		select {
		case entry := <-b.queue:
			b.deliver(entry)
		default:
			return
		}
	}
}

// deliver writes an entry to every transporter, reporting failures on
// the fallback writer.
func (b *Buffer) deliver(entry Entry) {
	for _, t := range b.transporters {
		if err := t.Write(entry); err != nil {
			fmt.Fprintf(b.fallback, "log transporter %q failed: %v\n", t.Name(), err)
		}
	}
}
