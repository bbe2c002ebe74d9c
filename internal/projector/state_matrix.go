// Package projector advances a single policy's state vector through the
// time axis, slicing risk-factor-dependent assumptions down to that policy
// and applying its conditional payments along the way.
package projector

import (
	"fmt"

	"github.com/jiangshenghai57/protolinc-go/internal/engineerr"
	"github.com/jiangshenghai57/protolinc-go/internal/result"
)

// StateMatrix is a thin index-arithmetic layer over a scratch RunResult:
// it owns no storage of its own, writing state probabilities, volumes, and
// movements directly into the result buffers a RecordProjector resets
// between policies.
type StateMatrix struct {
	res       *result.RunResult
	numStates int
}

// NewStateMatrix wraps res, whose NumStates() fixes the state dimension.
func NewStateMatrix(res *result.RunResult) *StateMatrix {
	return &StateMatrix{res: res, numStates: res.NumStates()}
}

// InitializeStates zeroes res (via the caller's prior Reset) and sets the
// t=0 row to 100% probability (and full sum_insured volume) in startState.
func (m *StateMatrix) InitializeStates(startState int, vol float64) error {
	if startState < 0 || startState >= m.numStates {
		return fmt.Errorf("%w: initial state %d not in [0,%d)", engineerr.ErrInvalidState, startState, m.numStates)
	}
	m.res.SetStateProb(0, startState, 1)
	m.res.SetStateVol(0, startState, vol)
	return nil
}

// UpdateState advances the state vector from row indexLast to row
// indexLast+1 under the duration-scaled rate matrix aStep (row-major,
// numStates*numStates), recording off-diagonal movements.
func (m *StateMatrix) UpdateState(indexLast int, aStep []float64, vol float64) {
	n := m.numStates
	for r := 0; r < n; r++ {
		probR := m.res.StateProb(indexLast, r)
		if probR == 0 {
			continue
		}
		for c := 0; c < n; c++ {
			mvm := aStep[r*n+c] * probR
			if r != c {
				m.res.AddProbMovement(indexLast+1, r, c, mvm)
				m.res.AddVolMovement(indexLast+1, r, c, mvm*vol)
			}
			m.res.AddStateProb(indexLast+1, c, mvm)
			m.res.AddStateVol(indexLast+1, c, mvm*vol)
		}
	}
}

// TrivialRunoff copies row fromT (the last row fully computed before a
// policy hit max age) forward over every remaining time index, leaving
// movements at zero.
func (m *StateMatrix) TrivialRunoff(fromT int) {
	m.res.TrivialRunoff(fromT)
}
