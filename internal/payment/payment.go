// Package payment holds the conditional payment streams attached to a
// portfolio before a run: one per (policy, state) and one per
// (policy, from-state, to-state).
package payment

import (
	"fmt"

	"github.com/jiangshenghai57/protolinc-go/internal/engineerr"
)

// StateKey identifies a state-conditional payment stream.
type StateKey struct {
	State int
}

// TransitionKey identifies a transition-conditional payment stream.
type TransitionKey struct {
	From, To int
}

// ConditionalPayment is a dense per-step amount sequence attached to one
// payment_type_index.
type ConditionalPayment struct {
	PaymentTypeIndex int
	Amounts          []float64 // length == time axis length
}

// AggregatePayments holds, per policy, the state-conditional and
// transition-conditional payment streams a run should apply. Each
// payment_type_index may be injected at most once per category, across the
// whole portfolio.
type AggregatePayments struct {
	size int

	statePayments      []map[int][]ConditionalPayment
	transitionPayments []map[TransitionKey][]ConditionalPayment

	stateTypesUsed      map[int]bool
	transitionTypesUsed map[int]bool
	maxPaymentIndexUsed int
}

// NewAggregatePayments builds an empty payment set sized for size policies.
func NewAggregatePayments(size int) *AggregatePayments {
	ap := &AggregatePayments{
		size:                size,
		statePayments:       make([]map[int][]ConditionalPayment, size),
		transitionPayments:  make([]map[TransitionKey][]ConditionalPayment, size),
		stateTypesUsed:      make(map[int]bool),
		transitionTypesUsed: make(map[int]bool),
		maxPaymentIndexUsed: -1,
	}
	for i := range ap.statePayments {
		ap.statePayments[i] = make(map[int][]ConditionalPayment)
		ap.transitionPayments[i] = make(map[TransitionKey][]ConditionalPayment)
	}
	return ap
}

// MaxPaymentIndexUsed returns the largest payment_type_index injected so
// far across both categories, or -1 if none.
func (ap *AggregatePayments) MaxPaymentIndexUsed() int { return ap.maxPaymentIndexUsed }

func (ap *AggregatePayments) noteIndexUsed(paymentTypeIndex int) {
	if paymentTypeIndex > ap.maxPaymentIndexUsed {
		ap.maxPaymentIndexUsed = paymentTypeIndex
	}
}

// AddStatePayment injects a dense [#policies][#timesteps] payment matrix for
// state_index under paymentTypeIndex. paymentMatrix[k] is policy k's amount
// sequence. paymentTypeIndex must not have been used before for any state.
func (ap *AggregatePayments) AddStatePayment(stateIndex, paymentTypeIndex int, paymentMatrix [][]float64) error {
	if len(paymentMatrix) != ap.size {
		return fmt.Errorf("%w: payment matrix has %d rows, portfolio has %d policies", engineerr.ErrDimensionMismatch, len(paymentMatrix), ap.size)
	}
	if ap.stateTypesUsed[paymentTypeIndex] {
		return fmt.Errorf("%w: state payment type %d", engineerr.ErrPaymentReinjection, paymentTypeIndex)
	}
	ap.stateTypesUsed[paymentTypeIndex] = true
	ap.noteIndexUsed(paymentTypeIndex)

	for k, amounts := range paymentMatrix {
		ap.statePayments[k][stateIndex] = append(ap.statePayments[k][stateIndex], ConditionalPayment{
			PaymentTypeIndex: paymentTypeIndex,
			Amounts:          amounts,
		})
	}
	return nil
}

// AddTransitionPayment injects a dense [#policies][#timesteps] payment
// matrix for the (from,to) transition under paymentTypeIndex.
// paymentTypeIndex must not have been used before for any transition.
func (ap *AggregatePayments) AddTransitionPayment(from, to, paymentTypeIndex int, paymentMatrix [][]float64) error {
	if len(paymentMatrix) != ap.size {
		return fmt.Errorf("%w: payment matrix has %d rows, portfolio has %d policies", engineerr.ErrDimensionMismatch, len(paymentMatrix), ap.size)
	}
	if ap.transitionTypesUsed[paymentTypeIndex] {
		return fmt.Errorf("%w: transition payment type %d", engineerr.ErrPaymentReinjection, paymentTypeIndex)
	}
	ap.transitionTypesUsed[paymentTypeIndex] = true
	ap.noteIndexUsed(paymentTypeIndex)

	key := TransitionKey{From: from, To: to}
	for k, amounts := range paymentMatrix {
		ap.transitionPayments[k][key] = append(ap.transitionPayments[k][key], ConditionalPayment{
			PaymentTypeIndex: paymentTypeIndex,
			Amounts:          amounts,
		})
	}
	return nil
}

// StatePayments returns the state-conditional payments for policy k, keyed
// by state index.
func (ap *AggregatePayments) StatePayments(k int) map[int][]ConditionalPayment {
	return ap.statePayments[k]
}

// TransitionPayments returns the transition-conditional payments for policy
// k, keyed by (from,to).
func (ap *AggregatePayments) TransitionPayments(k int) map[TransitionKey][]ConditionalPayment {
	return ap.transitionPayments[k]
}

// Split partitions the payment streams into numGroups sub-AggregatePayments
// by the same round-robin order a Portfolio.Split uses, since payments and
// policies must stay index-aligned within a group.
func (ap *AggregatePayments) Split(numGroups int) []*AggregatePayments {
	groups := make([]*AggregatePayments, numGroups)
	counts := make([]int, numGroups)
	for i := 0; i < ap.size; i++ {
		counts[i%numGroups]++
	}
	for g := range groups {
		groups[g] = &AggregatePayments{
			size:                counts[g],
			statePayments:       make([]map[int][]ConditionalPayment, 0, counts[g]),
			transitionPayments:  make([]map[TransitionKey][]ConditionalPayment, 0, counts[g]),
			stateTypesUsed:      ap.stateTypesUsed,
			transitionTypesUsed: ap.transitionTypesUsed,
			maxPaymentIndexUsed: ap.maxPaymentIndexUsed,
		}
	}
	for i := 0; i < ap.size; i++ {
		g := i % numGroups
		groups[g].statePayments = append(groups[g].statePayments, ap.statePayments[i])
		groups[g].transitionPayments = append(groups[g].transitionPayments, ap.transitionPayments[i])
	}
	return groups
}
