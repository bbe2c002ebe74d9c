package projector

import (
	"fmt"

	"github.com/jiangshenghai57/protolinc-go/internal/assumption"
	"github.com/jiangshenghai57/protolinc-go/internal/dateaxis"
	"github.com/jiangshenghai57/protolinc-go/internal/logger"
	"github.com/jiangshenghai57/protolinc-go/internal/payment"
	"github.com/jiangshenghai57/protolinc-go/internal/portfolio"
	"github.com/jiangshenghai57/protolinc-go/internal/result"
	"github.com/jiangshenghai57/protolinc-go/internal/riskfactor"
)

// RecordProjector projects a single policy's state vector and payments
// across a shared time axis. It is owned exclusively by one worker and
// reused across every policy that worker processes: recordBeAssumptions and
// recordOtherAssumptions are scratch buffers re-sliced from the shared
// master assumption sets on every Run call.
type RecordProjector struct {
	ta        *dateaxis.TimeAxis
	dimension int
	maxAge    int

	masterBeAssumptions    *assumption.Set
	masterOtherAssumptions []*assumption.Set

	recordBeAssumptions    *assumption.Set
	recordOtherAssumptions []*assumption.Set

	beAYearly        []float64
	beAStepDependent []float64

	riskFactorsCurrent  [riskfactor.Count]int
	riskFactorsLastUsed [riskfactor.Count]int

	log *logger.Logger
}

// NewRecordProjector builds a projector for a shared time axis and master
// assumption sets, establishing scratch capacity via a one-time deep clone.
// log may be nil, in which case diagnostic warnings are simply not emitted.
func NewRecordProjector(ta *dateaxis.TimeAxis, maxAge int, masterBe *assumption.Set, masterOther []*assumption.Set, log *logger.Logger) (*RecordProjector, error) {
	dim := masterBe.Dimension()

	recordBe := assumption.NewSet(dim)
	if err := masterBe.CloneInto(recordBe); err != nil {
		return nil, fmt.Errorf("cloning be assumptions: %w", err)
	}

	recordOther := make([]*assumption.Set, len(masterOther))
	for i, oa := range masterOther {
		recordOther[i] = assumption.NewSet(oa.Dimension())
		if err := oa.CloneInto(recordOther[i]); err != nil {
			return nil, fmt.Errorf("cloning other assumptions[%d]: %w", i, err)
		}
	}

	return &RecordProjector{
		ta:                     ta,
		dimension:              dim,
		maxAge:                 maxAge,
		masterBeAssumptions:    masterBe,
		masterOtherAssumptions: masterOther,
		recordBeAssumptions:    recordBe,
		recordOtherAssumptions: recordOther,
		beAYearly:              make([]float64, dim*dim),
		beAStepDependent:       make([]float64, dim*dim),
		log:                    log,
	}, nil
}

func (rp *RecordProjector) sliceAssumptions(policy portfolio.Policy) error {
	sliceIndexes := make([]int, riskfactor.Count)
	for i := range sliceIndexes {
		sliceIndexes[i] = -1
	}
	sliceIndexes[riskfactor.Gender] = policy.Gender
	sliceIndexes[riskfactor.SmokerStatus] = policy.SmokerStatus

	if err := rp.masterBeAssumptions.SliceInto(sliceIndexes, rp.recordBeAssumptions); err != nil {
		return err
	}
	for i, oa := range rp.masterOtherAssumptions {
		if err := oa.SliceInto(sliceIndexes, rp.recordOtherAssumptions[i]); err != nil {
			return err
		}
	}
	return nil
}

func (rp *RecordProjector) relevantRiskFactors() [riskfactor.Count]bool {
	relevant := rp.recordBeAssumptions.RelevantRiskFactors()
	for _, oa := range rp.recordOtherAssumptions {
		for rf, v := range oa.RelevantRiskFactors() {
			if v {
				relevant[rf] = true
			}
		}
	}
	return relevant
}

func (rp *RecordProjector) relevantFactorChanged(relevant [riskfactor.Count]bool) bool {
	for s := 0; s < int(riskfactor.Count); s++ {
		if relevant[s] && rp.riskFactorsCurrent[s] != rp.riskFactorsLastUsed[s] {
			return true
		}
	}
	return false
}

// adjustAssumptionsSimple builds the duration-scaled dependent matrix from
// the yearly rate matrix: off-diagonal entries scale by days/360, and the
// diagonal absorbs 1 minus the scaled row sum. A negative diagonal (the
// scaled row sum exceeding 1) is not clamped or normalized — it propagates
// into state_probs/state_vols as-is — but is logged once per policy as an
// operator signal.
func (rp *RecordProjector) adjustAssumptionsSimple(days int, policy portfolio.Policy, warnedNegativeDiagonal *bool) {
	durationFactor := float64(days) / 360.0
	n := rp.dimension
	for r := 0; r < n; r++ {
		sumRowNonDiag := 0.0
		for c := 0; c < n; c++ {
			if c == r {
				continue
			}
			scaled := durationFactor * rp.beAYearly[r*n+c]
			sumRowNonDiag += scaled
			rp.beAStepDependent[r*n+c] = scaled
		}
		diag := 1 - sumRowNonDiag
		rp.beAStepDependent[r*n+r] = diag
		if diag < 0 && !*warnedNegativeDiagonal && rp.log != nil {
			rp.log.Warn("negative diagonal in scaled rate matrix",
				"cession_id", policy.CessionID, "state", r, "diagonal", diag)
			*warnedNegativeDiagonal = true
		}
	}
}

// Run projects policy into res (already sized for rp.dimension and the
// shared time axis; the caller resets it between policies) using the
// state- and transition-conditional payments attached to this policy.
func (rp *RecordProjector) Run(policy portfolio.Policy, res *result.RunResult, portfolioDate dateaxis.PeriodDate, statePayments map[int][]payment.ConditionalPayment, transitionPayments map[payment.TransitionKey][]payment.ConditionalPayment) error {
	currentVol := policy.SumInsured

	states := NewStateMatrix(res)
	if err := states.InitializeStates(policy.InitialState, currentVol); err != nil {
		return err
	}

	if err := rp.sliceAssumptions(policy); err != nil {
		return err
	}
	relevant := rp.relevantRiskFactors()
	rp.riskFactorsLastUsed = [riskfactor.Count]int{}
	for i := range rp.riskFactorsLastUsed {
		rp.riskFactorsLastUsed[i] = -1
	}

	maxTimeStepIndex := rp.ta.Len() - 1
	ageMonthCompleted := dateaxis.MonthsBetween(policy.DateOfBirth, portfolioDate)

	earlyStop := false
	timeIndex := 0
	firstIteration := true
	warnedNegativeDiagonal := false

	for timeIndex < maxTimeStepIndex {
		timeIndex++

		daysPreviousStep := rp.ta.PeriodLength(timeIndex - 1)
		daysCurrentStep := rp.ta.PeriodLength(timeIndex)

		if !firstIteration && daysPreviousStep%30 == 0 {
			ageMonthCompleted += daysPreviousStep / 30
		} else {
			ageMonthCompleted = dateaxis.MonthsBetween(policy.DateOfBirth, rp.ta.Start(timeIndex))
		}

		rp.riskFactorsCurrent[riskfactor.Age] = ageMonthCompleted / 12
		rp.riskFactorsCurrent[riskfactor.Gender] = policy.Gender
		rp.riskFactorsCurrent[riskfactor.CalendarYear] = rp.ta.Start(timeIndex).Year
		rp.riskFactorsCurrent[riskfactor.SmokerStatus] = policy.SmokerStatus
		rp.riskFactorsCurrent[riskfactor.YearsDisabledIfDisabledAtStart] = 0 // TODO: real disablement-duration tracking

		yearlyUpdated := false
		if firstIteration || rp.relevantFactorChanged(relevant) {
			if err := rp.recordBeAssumptions.GetRateMatrix(rp.riskFactorsCurrent[:], rp.beAYearly); err != nil {
				return err
			}
			yearlyUpdated = true
			rp.riskFactorsLastUsed = rp.riskFactorsCurrent
		}

		if yearlyUpdated || daysCurrentStep != daysPreviousStep {
			rp.adjustAssumptionsSimple(daysCurrentStep, policy, &warnedNegativeDiagonal)
		}

		// Begin-of-period payments: weighted by the probability of being in
		// the payment's state at the start of this period.
		for state, payments := range statePayments {
			probAtStart := res.StateProb(timeIndex-1, state)
			if probAtStart == 0 {
				continue
			}
			for _, cp := range payments {
				res.AddStatePayment(timeIndex-1, cp.PaymentTypeIndex, cp.Amounts[timeIndex-1]*probAtStart)
			}
		}

		states.UpdateState(timeIndex-1, rp.beAStepDependent, currentVol)

		// End-of-period payments: weighted by this step's transition
		// movement mass, now that update_state has computed it.
		for key, payments := range transitionPayments {
			mvm := res.ProbMovement(timeIndex, key.From, key.To)
			if mvm == 0 {
				continue
			}
			for _, cp := range payments {
				res.AddStatePayment(timeIndex, cp.PaymentTypeIndex, cp.Amounts[timeIndex]*mvm)
			}
		}

		firstIteration = false
		if ageMonthCompleted >= rp.maxAge*12 {
			earlyStop = true
			break
		}
	}

	if earlyStop {
		states.TrivialRunoff(timeIndex)
	}
	return nil
}
