// Package progrock provides the Progrock implementation of the telemetry adapter.
package progrock

import (
	"context"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/opencontainers/go-digest"
	"github.com/vito/progrock"
	"go.trai.ch/gimport/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Telemetry = (*Recorder)(nil)

// Recorder implements the ports.Telemetry interface using the progrock library.
type Recorder struct {
	w   progrock.Writer
	rec *progrock.Recorder
	seq atomic.Uint64

	mu      sync.Mutex
	tape    *progrock.Tape
	out     io.Writer
	verbose bool
}

// New creates a new Recorder with a default tape.
func New() ports.Telemetry {
	return NewTapeRecorder(progrock.NewTape())
}

// NewTapeRecorder creates a Recorder writing to tape. In verbose mode the tape
// is rendered as a summary when the recorder is closed.
func NewTapeRecorder(tape *progrock.Tape) *Recorder {
	r := NewRecorder(tape)
	r.tape = tape
	return r
}

// NewRecorder creates a new Recorder with the given writer.
func NewRecorder(w progrock.Writer) *Recorder {
	return &Recorder{
		w:   w,
		rec: progrock.NewRecorder(w),
		out: os.Stderr,
	}
}

// SetVerbose enables the vertex summary written on Close.
func (r *Recorder) SetVerbose(enable bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.verbose = enable
}

// SetOutput sets the destination of the vertex summary.
// If w is nil, os.Stderr is used.
func (r *Recorder) SetOutput(w io.Writer) {
	if w == nil {
		w = os.Stderr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.out = w
}

// Record starts recording a new vertex. Each call gets its own digest so that
// repeated builds of one module appear as separate vertices. Attributes are
// written to the vertex output.
func (r *Recorder) Record(ctx context.Context, name string, opts ...ports.VertexOption) (context.Context, ports.Vertex) {
	cfg := ports.ApplyVertexOptions(opts...)

	d := digest.FromString(fmt.Sprintf("%s#%d", name, r.seq.Add(1)))
	vertex := &Vertex{vertex: r.rec.Vertex(d, name)}

	for _, k := range slices.Sorted(maps.Keys(cfg.Attributes)) {
		_, _ = fmt.Fprintf(vertex.Stdout(), "%s=%s\n", k, cfg.Attributes[k])
	}

	return ports.ContextWithVertex(ctx, vertex), vertex
}

// Close flushes and closes the recording session.
func (r *Recorder) Close() error {
	var err error
	if c, ok := r.w.(interface{ Close() error }); ok {
		err = c.Close()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.verbose || r.tape == nil {
		return err
	}
	if werr := writeSummary(r.out, r.tape); werr != nil && err == nil {
		err = zerr.Wrap(werr, "failed to write telemetry summary")
	}
	return err
}

// writeSummary prints one line per recorded vertex, in recording order.
func writeSummary(w io.Writer, tape *progrock.Tape) error {
	for _, vtx := range tape.Vertices() {
		line := fmt.Sprintf("%-7s %s", vertexStatus(vtx), vtx.GetName())
		if d, ok := vertexDuration(vtx); ok {
			line += fmt.Sprintf(" (%s)", d.Round(time.Millisecond))
		}
		if vtx.GetError() != "" {
			line += ": " + vtx.GetError()
		} else if last := tape.Activity(vtx).LastLine; last != "" {
			line += ": " + last
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func vertexStatus(vtx *progrock.Vertex) string {
	switch {
	case vtx.GetError() != "":
		return "ERROR"
	case vtx.GetCached():
		return "CACHED"
	case vtx.GetCompleted() != nil:
		return "DONE"
	default:
		return "RUNNING"
	}
}

func vertexDuration(vtx *progrock.Vertex) (time.Duration, bool) {
	if vtx.GetStarted() == nil || vtx.GetCompleted() == nil {
		return 0, false
	}
	return vtx.GetCompleted().AsTime().Sub(vtx.GetStarted().AsTime()), true
}
