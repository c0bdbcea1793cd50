// Package stream merges a task's output streams into one line sequence and
// pushes lines onto a display pane.
package stream

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sync"
)

const (
	// scannerInitialBufSize is the initial buffer size for the scanner (64KB).
	scannerInitialBufSize = 64 * 1024

	// scannerMaxBufSize is the maximum line size the scanner can handle (10MB).
	scannerMaxBufSize = 10 * 1024 * 1024
)

// Line is one line of task output. The last Line of every sequence is Final
// and carries the exit status.
type Line struct {
	Text   string
	Final  bool
	Status int
}

// ExitLine formats the terminal line appended after a process exits.
func ExitLine(status int) string {
	return fmt.Sprintf("exited with status %d", status)
}

// Merge reads every source concurrently, splitting on line boundaries, and
// emits the lines on the returned channel in the order they are read. Once
// all sources reach EOF it waits for the exit status, emits a Final line and
// closes the channel.
//
// Lines from one source keep their order; lines from different sources
// interleave as they arrive. Closing done abandons the sequence: pending
// sends are dropped, sources implementing io.Closer are closed, and the
// channel is closed without a Final line.
func Merge(done <-chan struct{}, exited <-chan int, sources ...io.Reader) <-chan Line {
	out := make(chan Line)

	var wg sync.WaitGroup
	for _, src := range sources {
		wg.Add(1)
		go func(r io.Reader) {
			defer wg.Done()
			defer closeSource(r)
			scan(done, r, out)
		}(src)
	}

	go func() {
		defer close(out)

		drained := make(chan struct{})
		go func() {
			wg.Wait()
			close(drained)
		}()

		select {
		case <-drained:
		case <-done:
			// Unblock readers still waiting on a live process.
			for _, src := range sources {
				closeSource(src)
			}
			<-drained
			return
		}

		var status int
		select {
		case code, ok := <-exited:
			if !ok {
				code = 1
			}
			status = code
		case <-done:
			return
		}

		select {
		case out <- Line{Text: ExitLine(status), Final: true, Status: status}:
		case <-done:
		}
	}()

	return out
}

func scan(done <-chan struct{}, r io.Reader, out chan<- Line) {
	scanner := bufio.NewScanner(r)
	buf := make([]byte, 0, scannerInitialBufSize)
	scanner.Buffer(buf, scannerMaxBufSize)

	for scanner.Scan() {
		select {
		case out <- Line{Text: scanner.Text()}:
		case <-done:
			return
		}
	}

	if err := scanner.Err(); err != nil {
		select {
		case <-done:
			return
		default:
		}
		msg := fmt.Sprintf("output read error: %v", err)
		if errors.Is(err, bufio.ErrTooLong) {
			msg = fmt.Sprintf("output line exceeded %d byte limit, discarding the rest of this stream", scannerMaxBufSize)
		}
		select {
		case out <- Line{Text: msg}:
		case <-done:
			return
		}
		// Keep the pipe drained so the writer never blocks.
		_, _ = io.Copy(io.Discard, r)
	}
}

func closeSource(r io.Reader) {
	if c, ok := r.(io.Closer); ok {
		_ = c.Close()
	}
}
