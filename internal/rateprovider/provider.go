// Package rateprovider implements the two concrete lookup objects the
// projection engine queries for transition rates: a scalar constant and a
// multi-dimensional, sliceable table indexed by risk factors.
package rateprovider

import "github.com/jiangshenghai57/protolinc-go/internal/riskfactor"

// SliceWildcard marks an axis that should be kept (not fixed) when slicing.
const SliceWildcard = -1

// Provider is the common contract both variants satisfy. Constant ignores
// SliceInto; Table implements the full algorithm.
type Provider interface {
	// RiskFactors returns the ordered list of risk-factor codes this
	// provider depends on, possibly empty.
	RiskFactors() []riskfactor.Code

	// GetRate looks up the scalar rate at indices. len(indices) must equal
	// the provider's dimension.
	GetRate(indices []int) (float64, error)

	// CloneDeep returns an independent copy with the same values and
	// capacity.
	CloneDeep() Provider

	// SliceInto fixes every axis k where indices[k] != SliceWildcard to
	// that value, keeps the rest, and writes the result into other,
	// reusing other's pre-allocated capacity.
	SliceInto(indices []int, other Provider) error

	// String renders a short diagnostic description.
	String() string
}
