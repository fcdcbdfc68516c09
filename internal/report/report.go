// Package report prints sweep results for humans or as JSON lines.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"

	"schelling-ca/internal/sims/schelling"
	"schelling-ca/internal/sweep"
)

// Record is the JSON form of one run.
type Record struct {
	RunID      string  `json:"run_id"`
	Trial      int     `json:"trial"`
	Size       int     `json:"size"`
	EmptyRatio float64 `json:"empty_ratio"`
	Threshold  int     `json:"h"`
	Move       string  `json:"move"`
	Order      string  `json:"order"`
	Seed       int64   `json:"seed"`
	Iterations int     `json:"iterations"`
	State      string  `json:"state"`
	Red        int     `json:"red"`
	Blue       int     `json:"blue"`
	Empty      int     `json:"empty"`
	ElapsedMS  int64   `json:"elapsed_ms"`
	Image      string  `json:"image,omitempty"`
}

// NewRecord converts a sweep result.
func NewRecord(res sweep.Result, image string) Record {
	return Record{
		RunID:      res.RunID.String(),
		Trial:      res.Trial,
		Size:       res.Config.Size,
		EmptyRatio: res.Config.EmptyRatio,
		Threshold:  res.Config.Threshold,
		Move:       string(res.Config.Move),
		Order:      string(res.Config.Order),
		Seed:       res.Seed(),
		Iterations: res.Outcome.Iterations,
		State:      res.Outcome.State.String(),
		Red:        res.Counts.Red,
		Blue:       res.Counts.Blue,
		Empty:      res.Counts.Empty,
		ElapsedMS:  res.Elapsed.Milliseconds(),
		Image:      image,
	}
}

// Printer writes one entry per run.
type Printer struct {
	w    io.Writer
	json bool
	enc  *json.Encoder
}

// NewPrinter returns a Printer writing text lines, or JSON lines when
// asJSON is set.
func NewPrinter(w io.Writer, asJSON bool) *Printer {
	p := &Printer{w: w, json: asJSON}
	if asJSON {
		p.enc = json.NewEncoder(w)
	}
	return p
}

// Run prints one result. image is the snapshot path, if any.
func (p *Printer) Run(res sweep.Result, image string) error {
	if p.json {
		return p.enc.Encode(NewRecord(res, image))
	}
	_, err := fmt.Fprintln(p.w, Line(res))
	return err
}

// Done prints the closing line of a sweep. JSON output has none.
func (p *Printer) Done(results []sweep.Result, elapsed time.Duration) error {
	if p.json {
		return nil
	}
	capped := 0
	for _, res := range results {
		if res.Outcome.State == schelling.Capped {
			capped++
		}
	}
	_, err := fmt.Fprintf(p.w, "%s runs finished in %s (%s hit the iteration cap).\n",
		humanize.Comma(int64(len(results))), elapsed.Round(time.Millisecond), humanize.Comma(int64(capped)))
	return err
}

// Line renders the human-readable summary of a run.
func Line(res sweep.Result) string {
	cfg := res.Config
	head := fmt.Sprintf("Run %d for H=%d, Move: %s, Order: %s", res.Trial, cfg.Threshold, cfg.Move, cfg.Order)
	iterations := humanize.Comma(int64(res.Outcome.Iterations))
	switch res.Outcome.State {
	case schelling.Capped:
		return fmt.Sprintf("%s -> Stopped at the cap after %s iterations.", head, iterations)
	default:
		return fmt.Sprintf("%s -> Converged in %s iterations.", head, iterations)
	}
}
