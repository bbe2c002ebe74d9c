package result

import (
	"bytes"
	"strings"
	"testing"

	"github.com/jiangshenghai57/protolinc-go/internal/dateaxis"
)

func testAxis() *dateaxis.TimeAxis {
	return dateaxis.NewTimeAxis(dateaxis.Monthly, 1, dateaxis.PeriodDate{Year: 2021, Month: 12, Day: 20})
}

func TestRunResultAddResultAndReset(t *testing.T) {
	ta := testAxis()
	r := NewRunResult(2, 0, ta)
	other := NewRunResult(2, 0, ta)

	other.AddStateProb(1, 0, 0.5)
	other.AddStateProb(1, 1, 0.5)

	if err := r.AddResult(other); err != nil {
		t.Fatalf("AddResult: %v", err)
	}
	if got := r.StateProb(1, 0); got != 0.5 {
		t.Errorf("StateProb(1,0) = %v, want 0.5", got)
	}

	r.Reset()
	if got := r.StateProb(1, 0); got != 0 {
		t.Errorf("StateProb(1,0) after reset = %v, want 0", got)
	}
}

func TestRunResultAddResultDimensionMismatch(t *testing.T) {
	ta := testAxis()
	r := NewRunResult(2, 0, ta)
	other := NewRunResult(3, 0, ta)
	if err := r.AddResult(other); err == nil {
		t.Fatal("expected a dimension mismatch error")
	}
}

func TestTrivialRunoffCopiesForward(t *testing.T) {
	ta := testAxis()
	r := NewRunResult(2, 0, ta)
	r.SetStateProb(2, 0, 0.1)
	r.SetStateProb(2, 1, 0.9)
	r.SetStateVol(2, 1, 90000)

	r.TrivialRunoff(2)

	for t2 := 3; t2 < ta.Len(); t2++ {
		if got := r.StateProb(t2, 0); got != 0.1 {
			t.Errorf("StateProb(%d,0) = %v, want 0.1", t2, got)
		}
		if got := r.StateVol(t2, 1); got != 90000 {
			t.Errorf("StateVol(%d,1) = %v, want 90000", t2, got)
		}
		if got := r.ProbMovement(t2, 0, 1); got != 0 {
			t.Errorf("ProbMovement(%d,0,1) = %v, want 0", t2, got)
		}
	}
}

func TestHeadersOrderAndCount(t *testing.T) {
	ta := testAxis()
	r := NewRunResult(2, 3, ta)
	hdrs := r.Headers()

	wantLen := 7 + 2 + 4 + 2 + 4 + 3
	if len(hdrs) != wantLen {
		t.Fatalf("len(Headers()) = %d, want %d", len(hdrs), wantLen)
	}
	if hdrs[0] != "PERIOD_START_Y" || hdrs[6] != "PERIOD_DAYS" {
		t.Errorf("time axis headers wrong: %v", hdrs[:7])
	}
	if hdrs[len(hdrs)-1] != "STATE_PAYMENT_2" {
		t.Errorf("last header = %q, want STATE_PAYMENT_2", hdrs[len(hdrs)-1])
	}
}

func TestWriteCSVHasHeaderRowFirst(t *testing.T) {
	ta := testAxis()
	r := NewRunResult(2, 0, ta)
	r.SetStateProb(0, 0, 1)

	var buf bytes.Buffer
	if err := r.WriteCSV(&buf); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != ta.Len()+1 {
		t.Fatalf("line count = %d, want %d", len(lines), ta.Len()+1)
	}
	if !strings.HasPrefix(lines[0], "PERIOD_START_Y,") {
		t.Errorf("first line = %q, want header row", lines[0])
	}
}
