package execution

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
)

// Drainer continuously reads a child's output pipe into a growing buffer so the
// child never blocks on a full pipe while the parent waits for it.
type Drainer struct {
	r    io.ReadCloser
	echo io.Writer

	mu   sync.Mutex
	buf  bytes.Buffer
	done chan struct{}
}

// NewDrainer creates a Drainer over r. When echo is non-nil every line read is
// also written to it as soon as it arrives.
func NewDrainer(r io.ReadCloser, echo io.Writer) *Drainer {
	return &Drainer{
		r:    r,
		echo: echo,
		done: make(chan struct{}),
	}
}

// Run reads until the pipe is closed and then closes it. A read that blocks
// simply means the child is still running. Run must be called exactly once.
func (d *Drainer) Run() error {
	defer close(d.done)
	defer d.r.Close()

	br := bufio.NewReader(d.r)
	for {
		line, err := br.ReadString('\n')
		if len(line) > 0 {
			d.append(line)
		}
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, os.ErrClosed) {
				return nil
			}
			return fmt.Errorf("drain output: %w", err)
		}
	}
}

func (d *Drainer) append(line string) {
	d.mu.Lock()
	d.buf.WriteString(line)
	d.mu.Unlock()

	if d.echo != nil {
		_, _ = io.WriteString(d.echo, line)
	}
}

// Output returns everything accumulated so far.
func (d *Drainer) Output() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.buf.String()
}

// Stop closes the pipe so a pending read returns and Run ends. Output read so
// far is kept.
func (d *Drainer) Stop() {
	_ = d.r.Close()
}

// Done is closed once the pipe has been fully drained.
func (d *Drainer) Done() <-chan struct{} {
	return d.done
}

// syncWriter serializes writes from the two drainers when they echo to
// writers that are not safe for concurrent use.
type syncWriter struct {
	mu *sync.Mutex
	w  io.Writer
}

func (s syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}
