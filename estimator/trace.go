package estimator

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"gonum.org/v1/gonum/floats"
)

// Term is a labeled contribution to a noise budget.
type Term struct {
	Label string
	Value float64
}

// Event is a group of terms reported by a composer at a given stage of a
// pipeline. If Additive is set, the terms are independent contributions to
// the same variance.
type Event struct {
	Stage    string
	Terms    []Term
	Additive bool
}

// Values returns the values of the terms, in order.
func (e Event) Values() (v []float64) {
	v = make([]float64, len(e.Terms))
	for i := range e.Terms {
		v[i] = e.Terms[i].Value
	}
	return
}

// Total returns the sum of the terms.
func (e Event) Total() float64 {
	return floats.Sum(e.Values())
}

// Fractions returns the share of each term in the total.
func (e Event) Fractions() (f []float64) {
	f = e.Values()
	if total := floats.Sum(f); total != 0 {
		floats.Scale(1/total, f)
	}
	return
}

// Dominant returns the index of the largest term, or -1 if the event is empty.
func (e Event) Dominant() int {
	if len(e.Terms) == 0 {
		return -1
	}
	return floats.MaxIdx(e.Values())
}

// Tracer receives the diagnostic events emitted by the composers.
type Tracer interface {
	Trace(e Event)
}

// Discard drops all events.
type Discard struct{}

// Trace does nothing.
func (Discard) Trace(Event) {}

// Recorder keeps the events in emission order.
type Recorder struct {
	Events []Event
}

// Trace appends e to the recorded events.
func (r *Recorder) Trace(e Event) {
	r.Events = append(r.Events, e)
}

// Find returns the first recorded event of the given stage.
func (r *Recorder) Find(stage string) (e Event, ok bool) {
	for i := range r.Events {
		if r.Events[i].Stage == stage {
			return r.Events[i], true
		}
	}
	return
}

// Reset drops all recorded events.
func (r *Recorder) Reset() {
	r.Events = r.Events[:0]
}

// Printer writes one line per event. For additive events the share of each
// term is appended and the dominant term is highlighted.
type Printer struct {
	w        io.Writer
	dominant *color.Color
}

// NewPrinter returns a Printer writing on w.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{
		w:        w,
		dominant: color.New(color.FgRed, color.Bold),
	}
}

// Trace writes e.
func (p *Printer) Trace(e Event) {
	fractions := e.Fractions()
	dominant := e.Dominant()
	shares := e.Additive && len(e.Terms) > 1

	var sb strings.Builder
	sb.WriteString(e.Stage)
	sb.WriteString(":")

	for i, t := range e.Terms {
		s := fmt.Sprintf(" %s=%g", t.Label, t.Value)
		if shares {
			s += fmt.Sprintf(" (%.4f)", fractions[i])
			if i == dominant {
				s = p.dominant.Sprint(s)
			}
		}
		sb.WriteString(s)
	}

	fmt.Fprintln(p.w, sb.String())
}
