package tracker

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/ormasoftchile/appgen/pkg/kernel/trace"
)

type recorder struct {
	lines []string
}

func (r *recorder) StepChanged(s Step) { r.lines = append(r.lines, s.Line()) }

func newRecorded() (*Tracker, *recorder) {
	r := &recorder{}
	return New(r), r
}

func assertLines(t *testing.T, got []string, want ...string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("lines = %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestTracker_BeginComplete(t *testing.T) {
	tr, rec := newRecorded()

	tr.Begin("Cleaning Default Files")
	tr.Complete("Cleaning Default Files")

	assertLines(t, rec.lines,
		"running step 1: Cleaning Default Files",
		"succeeded step 1: Cleaning Default Files",
	)
}

func TestTracker_CompleteIdempotent(t *testing.T) {
	tr, rec := newRecorded()

	tr.Begin("Installing Packages")
	if !tr.Complete("Installing Packages") {
		t.Error("first Complete should emit")
	}
	if tr.Complete("Installing Packages") {
		t.Error("second Complete should be a no-op")
	}

	assertLines(t, rec.lines,
		"running step 1: Installing Packages",
		"succeeded step 1: Installing Packages",
	)
}

func TestTracker_BeginAfterCompleteIsNoop(t *testing.T) {
	tr, rec := newRecorded()

	// two variants sharing one step name
	for i := 0; i < 2; i++ {
		tr.Begin("Copying Icons")
		tr.Complete("Copying Icons")
	}

	assertLines(t, rec.lines,
		"running step 1: Copying Icons",
		"succeeded step 1: Copying Icons",
	)
	if got := tr.Status("Copying Icons"); got != StatusSucceeded {
		t.Errorf("status = %s", got)
	}
}

func TestTracker_RepeatedBeginWhileRunning(t *testing.T) {
	tr, rec := newRecorded()

	tr.Begin("Setting Up Project Structure")
	if tr.Begin("Setting Up Project Structure") {
		t.Error("Begin on a running step should not emit")
	}
	assertLines(t, rec.lines, "running step 1: Setting Up Project Structure")
}

func TestTracker_FailObservableOnce(t *testing.T) {
	tr, rec := newRecorded()

	tr.Begin("Installing Packages")
	tr.Fail("Installing Packages", "npm install: exit status 1")
	tr.Fail("Installing Packages", "again")
	tr.Complete("Installing Packages")
	tr.Begin("Installing Packages")

	assertLines(t, rec.lines,
		"running step 1: Installing Packages",
		"failed step 1: Installing Packages",
	)
	s, ok := tr.Failed()
	if !ok {
		t.Fatal("expected a failed step")
	}
	if s.Reason != "npm install: exit status 1" {
		t.Errorf("reason = %q", s.Reason)
	}
}

func TestTracker_NoRegressionAfterSuccess(t *testing.T) {
	tr, rec := newRecorded()

	tr.Begin("Generating App Config")
	tr.Complete("Generating App Config")
	if tr.Fail("Generating App Config", "late") {
		t.Error("Fail after success should not emit")
	}
	if got := tr.Status("Generating App Config"); got != StatusSucceeded {
		t.Errorf("status regressed to %s", got)
	}
	if len(rec.lines) != 2 {
		t.Errorf("lines = %q", rec.lines)
	}
}

func TestTracker_Ordinals(t *testing.T) {
	tr, rec := newRecorded()

	tr.Begin("a")
	tr.Begin("b")
	tr.Complete("a")
	tr.Complete("c") // never begun: gets next ordinal
	tr.Complete("b")

	assertLines(t, rec.lines,
		"running step 1: a",
		"running step 2: b",
		"succeeded step 1: a",
		"succeeded step 3: c",
		"succeeded step 2: b",
	)

	steps := tr.Steps()
	for i, s := range steps {
		if s.Ordinal != i+1 {
			t.Errorf("steps[%d].Ordinal = %d", i, s.Ordinal)
		}
	}
}

// Transitions only move forward along pending → running → terminal.
func TestTracker_ForwardOnly(t *testing.T) {
	ops := []struct {
		op   string
		name string
	}{
		{"begin", "x"}, {"complete", "x"}, {"begin", "x"}, {"fail", "x"},
		{"begin", "y"}, {"fail", "y"}, {"complete", "y"}, {"begin", "y"},
		{"complete", "z"}, {"begin", "z"},
	}
	rank := map[Status]int{StatusPending: 0, StatusRunning: 1, StatusSucceeded: 2, StatusFailed: 2}

	tr := New()
	last := map[string]Status{}
	for _, o := range ops {
		switch o.op {
		case "begin":
			tr.Begin(o.name)
		case "complete":
			tr.Complete(o.name)
		case "fail":
			tr.Fail(o.name, "boom")
		}
		got := tr.Status(o.name)
		if prev, ok := last[o.name]; ok {
			if rank[got] < rank[prev] || (prev.Terminal() && got != prev) {
				t.Errorf("%s %s: %s -> %s", o.op, o.name, prev, got)
			}
		}
		last[o.name] = got
	}
}

func TestTracker_UnknownIsPending(t *testing.T) {
	tr := New()
	if got := tr.Status("nope"); got != StatusPending {
		t.Errorf("status = %s", got)
	}
	if _, ok := tr.Failed(); ok {
		t.Error("no step should be failed")
	}
}

func TestTraceSink(t *testing.T) {
	var buf bytes.Buffer
	tr := New(TraceSink(trace.NewWriter(&buf, "run-1")))

	tr.Begin("Installing Packages")
	tr.Fail("Installing Packages", "exit status 1")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 events, got %d", len(lines))
	}
	var evt trace.Event
	if err := json.Unmarshal([]byte(lines[1]), &evt); err != nil {
		t.Fatal(err)
	}
	if evt.Type != trace.EventStepComplete || evt.Data["status"] != "failed" {
		t.Errorf("event = %+v", evt)
	}
}

func TestLogSink(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf).Level(zerolog.DebugLevel)
	tr := New(LogSink(log))

	tr.Begin("Cleaning Default Files")

	if !strings.Contains(buf.String(), `"step":"Cleaning Default Files"`) {
		t.Errorf("log output = %s", buf.String())
	}
}
