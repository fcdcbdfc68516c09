package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"schelling-ca/internal/sims/schelling"
	"schelling-ca/internal/sweep"
)

func sampleResult(state schelling.State, iterations int) sweep.Result {
	cfg := schelling.DefaultConfig()
	cfg.Move = schelling.MoveHorizontal
	cfg.Order = schelling.OrderRandom
	return sweep.Result{
		RunID:   uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8"),
		Trial:   2,
		Config:  cfg,
		Outcome: schelling.Outcome{Iterations: iterations, State: state},
		Counts:  cfg.Population(),
		Elapsed: 1500 * time.Millisecond,
	}
}

func TestLine(t *testing.T) {
	got := Line(sampleResult(schelling.Converged, 37))
	want := "Run 2 for H=4, Move: horizontal, Order: random -> Converged in 37 iterations."
	if got != want {
		t.Fatalf("Line() = %q, want %q", got, want)
	}

	capped := Line(sampleResult(schelling.Capped, 5000))
	if !strings.Contains(capped, "cap after 5,000 iterations") {
		t.Fatalf("capped line = %q", capped)
	}
}

func TestPrinterJSON(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, true)
	if err := p.Run(sampleResult(schelling.Converged, 12), "out/plot.png"); err != nil {
		t.Fatal(err)
	}
	if err := p.Done(nil, time.Second); err != nil {
		t.Fatal(err)
	}

	var rec Record
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("output is not a single JSON record: %v\n%s", err, buf.String())
	}
	if rec.Iterations != 12 || rec.State != "converged" || rec.Move != "horizontal" || rec.Image != "out/plot.png" {
		t.Fatalf("unexpected record %+v", rec)
	}
	if rec.Red+rec.Blue+rec.Empty != 10000 || rec.ElapsedMS != 1500 {
		t.Fatalf("unexpected counts or timing in %+v", rec)
	}
}

func TestPrinterText(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, false)
	results := []sweep.Result{sampleResult(schelling.Converged, 3), sampleResult(schelling.Capped, 5000)}
	for _, res := range results {
		if err := p.Run(res, ""); err != nil {
			t.Fatal(err)
		}
	}
	if err := p.Done(results, 2*time.Second); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d:\n%s", len(lines), buf.String())
	}
	if !strings.Contains(lines[2], "2 runs finished") || !strings.Contains(lines[2], "1 hit the iteration cap") {
		t.Fatalf("unexpected footer %q", lines[2])
	}
}
