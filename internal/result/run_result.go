// Package result implements the dense, pre-allocated numeric buffers a
// projection run materializes its output into.
package result

import (
	"fmt"

	"github.com/jiangshenghai57/protolinc-go/internal/dateaxis"
	"github.com/jiangshenghai57/protolinc-go/internal/engineerr"
)

// RunResult is a dense, zero-initialized, time-indexed matrix of state
// probabilities, volumes, transition movements, and payment columns. It is
// reset per policy and summed across policies and across worker groups.
type RunResult struct {
	numStates      int
	numPaymentCols int
	timeAxis       *dateaxis.TimeAxis

	stateProbs    []float64 // T * numStates
	stateVols     []float64 // T * numStates
	probMovements []float64 // T * numStates * numStates
	volMovements  []float64 // T * numStates * numStates
	statePayments []float64 // T * numPaymentCols
}

// NewRunResult allocates a zero-initialized result for numStates states,
// numPaymentCols payment-type columns, over ta's length.
func NewRunResult(numStates, numPaymentCols int, ta *dateaxis.TimeAxis) *RunResult {
	t := ta.Len()
	return &RunResult{
		numStates:      numStates,
		numPaymentCols: numPaymentCols,
		timeAxis:       ta,
		stateProbs:     make([]float64, t*numStates),
		stateVols:      make([]float64, t*numStates),
		probMovements:  make([]float64, t*numStates*numStates),
		volMovements:   make([]float64, t*numStates*numStates),
		statePayments:  make([]float64, t*numPaymentCols),
	}
}

// NumStates returns n.
func (r *RunResult) NumStates() int { return r.numStates }

// NumTimesteps returns the length of the time axis this result is shaped for.
func (r *RunResult) NumTimesteps() int { return r.timeAxis.Len() }

// Reset zeroes every buffer, without reallocating.
func (r *RunResult) Reset() {
	zero(r.stateProbs)
	zero(r.stateVols)
	zero(r.probMovements)
	zero(r.volMovements)
	zero(r.statePayments)
}

func zero(buf []float64) {
	for i := range buf {
		buf[i] = 0
	}
}

func (r *RunResult) StateProb(t, s int) float64 { return r.stateProbs[t*r.numStates+s] }
func (r *RunResult) StateVol(t, s int) float64  { return r.stateVols[t*r.numStates+s] }

func (r *RunResult) SetStateProb(t, s int, v float64) { r.stateProbs[t*r.numStates+s] = v }
func (r *RunResult) SetStateVol(t, s int, v float64)  { r.stateVols[t*r.numStates+s] = v }

func (r *RunResult) AddStateProb(t, s int, v float64) { r.stateProbs[t*r.numStates+s] += v }
func (r *RunResult) AddStateVol(t, s int, v float64)  { r.stateVols[t*r.numStates+s] += v }

func (r *RunResult) ProbMovement(t, from, to int) float64 {
	return r.probMovements[(t*r.numStates+from)*r.numStates+to]
}
func (r *RunResult) VolMovement(t, from, to int) float64 {
	return r.volMovements[(t*r.numStates+from)*r.numStates+to]
}

func (r *RunResult) AddProbMovement(t, from, to int, v float64) {
	r.probMovements[(t*r.numStates+from)*r.numStates+to] += v
}
func (r *RunResult) AddVolMovement(t, from, to int, v float64) {
	r.volMovements[(t*r.numStates+from)*r.numStates+to] += v
}

// AddStatePayment accumulates v into the (t, paymentTypeIndex) cell. Callers
// with paymentTypeIndex >= numPaymentCols silently drop the amount rather
// than panicking, since K is sized to the max index observed at build time;
// a payment type introduced after sizing is a caller bug, not a runtime
// condition worth crashing a whole run over.
func (r *RunResult) AddStatePayment(t, paymentTypeIndex int, v float64) {
	if paymentTypeIndex < 0 || paymentTypeIndex >= r.numPaymentCols {
		return
	}
	r.statePayments[t*r.numPaymentCols+paymentTypeIndex] += v
}

func (r *RunResult) StatePayment(t, paymentTypeIndex int) float64 {
	return r.statePayments[t*r.numPaymentCols+paymentTypeIndex]
}

// TrivialRunoff copies row fromT forward over every remaining time index,
// leaving movements at zero, as the terminal state of a policy that hit
// max age.
func (r *RunResult) TrivialRunoff(fromT int) {
	for t := fromT + 1; t < r.timeAxis.Len(); t++ {
		for s := 0; s < r.numStates; s++ {
			r.SetStateProb(t, s, r.StateProb(fromT, s))
			r.SetStateVol(t, s, r.StateVol(fromT, s))
		}
	}
}

// AddResult sums other into r, pointwise, across every buffer.
func (r *RunResult) AddResult(other *RunResult) error {
	if other.numStates != r.numStates {
		return fmt.Errorf("%w: result has %d states, other has %d", engineerr.ErrDimensionMismatch, r.numStates, other.numStates)
	}
	if other.numPaymentCols != r.numPaymentCols {
		return fmt.Errorf("%w: result has %d payment cols, other has %d", engineerr.ErrDimensionMismatch, r.numPaymentCols, other.numPaymentCols)
	}
	addInto(r.stateProbs, other.stateProbs)
	addInto(r.stateVols, other.stateVols)
	addInto(r.probMovements, other.probMovements)
	addInto(r.volMovements, other.volMovements)
	addInto(r.statePayments, other.statePayments)
	return nil
}

func addInto(dst, src []float64) {
	for i := range dst {
		dst[i] += src[i]
	}
}
