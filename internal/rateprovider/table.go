package rateprovider

import (
	"fmt"
	"strings"

	"github.com/jiangshenghai57/protolinc-go/internal/engineerr"
	"github.com/jiangshenghai57/protolinc-go/internal/riskfactor"
)

// TableProvider is a dense, row-major, multi-dimensional rate table indexed
// by an ordered list of risk factors. Its capacity may exceed the number of
// values currently in use, so that SliceInto can write a smaller slice into
// the same buffer without reallocating.
type TableProvider struct {
	riskFactors []riskfactor.Code
	shape       []int
	offsets     []int
	strides     []int
	values      []float64
	numValues   int
	capacity    int
}

// NewTableProvider builds a table with capacity equal to len(values).
// shape and offsets must each have one entry per risk factor (or, for a
// zero-dimensional table, a single [1]/[0] pair).
func NewTableProvider(riskFactors []riskfactor.Code, shape, offsets []int, values []float64) (*TableProvider, error) {
	dim := len(riskFactors)
	if dim == 0 {
		if len(shape) != 1 || len(offsets) != 1 || shape[0] != 1 || offsets[0] != 0 {
			return nil, fmt.Errorf("%w: dimension 0 requires shape [1] and offset [0]", engineerr.ErrDimensionMismatch)
		}
	} else {
		if len(shape) != dim || len(offsets) != dim {
			return nil, fmt.Errorf("%w: shape/offsets length must match risk factor count", engineerr.ErrDimensionMismatch)
		}
	}
	if err := noDuplicateRiskFactors(riskFactors); err != nil {
		return nil, err
	}

	numValues := 1
	for _, s := range shape {
		numValues *= s
	}
	if len(values) != numValues {
		return nil, fmt.Errorf("%w: expected %d values, got %d", engineerr.ErrDimensionMismatch, numValues, len(values))
	}

	tp := &TableProvider{
		riskFactors: append([]riskfactor.Code(nil), riskFactors...),
		shape:       append([]int(nil), shape...),
		offsets:     append([]int(nil), offsets...),
		values:      append([]float64(nil), values...),
		numValues:   numValues,
		capacity:    numValues,
	}
	tp.setStrides()
	return tp, nil
}

// NewTableProviderCapacity builds an empty table pre-sized to capacity, for
// use as the reusable destination of repeated SliceInto calls.
func NewTableProviderCapacity(capacity int) *TableProvider {
	return &TableProvider{values: make([]float64, capacity), capacity: capacity}
}

func noDuplicateRiskFactors(rfs []riskfactor.Code) error {
	seen := make(map[riskfactor.Code]bool, len(rfs))
	for _, rf := range rfs {
		if seen[rf] {
			return fmt.Errorf("%w: risk factor %s listed twice", engineerr.ErrDimensionMismatch, rf)
		}
		seen[rf] = true
	}
	return nil
}

func (tp *TableProvider) setStrides() {
	tp.strides = make([]int, len(tp.shape))
	acc := 1
	for i := len(tp.shape) - 1; i >= 0; i-- {
		tp.strides[i] = acc
		acc *= tp.shape[i]
	}
}

func (tp *TableProvider) RiskFactors() []riskfactor.Code { return tp.riskFactors }

func (tp *TableProvider) Dimension() int { return len(tp.riskFactors) }

func (tp *TableProvider) Capacity() int { return tp.capacity }

func (tp *TableProvider) Shape() []int { return tp.shape }

func (tp *TableProvider) Offsets() []int { return tp.offsets }

func (tp *TableProvider) GetRate(indices []int) (float64, error) {
	// A zero-dimensional table (native, or fully reduced by slicing) holds a
	// single value and accepts the empty query.
	if len(tp.riskFactors) == 0 && len(indices) == 0 {
		return tp.values[0], nil
	}
	if len(indices) != len(tp.shape) {
		return 0, fmt.Errorf("%w: expected %d indices, got %d", engineerr.ErrDimensionMismatch, len(tp.shape), len(indices))
	}

	flat := 0
	for k := range tp.shape {
		adjusted := indices[k] - tp.offsets[k]
		if adjusted < 0 || adjusted >= tp.shape[k] {
			return 0, fmt.Errorf("%w: dimension #%d, max index allowed is %d", engineerr.ErrIndexOutOfRange, k, tp.shape[k]-1)
		}
		flat += tp.strides[k] * adjusted
	}
	return tp.values[flat], nil
}

func (tp *TableProvider) CloneDeep() Provider {
	clone := &TableProvider{
		riskFactors: append([]riskfactor.Code(nil), tp.riskFactors...),
		shape:       append([]int(nil), tp.shape...),
		offsets:     append([]int(nil), tp.offsets...),
		strides:     append([]int(nil), tp.strides...),
		values:      append([]float64(nil), tp.values[:tp.capacity]...),
		numValues:   tp.numValues,
		capacity:    tp.capacity,
	}
	return clone
}

// SliceInto fixes every axis k where indices[k] != SliceWildcard to that
// value and keeps the rest, writing the reduced table into other (which
// must be a *TableProvider with sufficient capacity).
func (tp *TableProvider) SliceInto(indices []int, otherProvider Provider) error {
	other, ok := otherProvider.(*TableProvider)
	if !ok {
		return fmt.Errorf("%w: slice target is not a TableProvider", engineerr.ErrDimensionMismatch)
	}
	dim := len(tp.shape)
	if len(indices) != dim {
		return fmt.Errorf("%w: expected %d indices, got %d", engineerr.ErrDimensionMismatch, dim, len(indices))
	}

	dimsFixed := make([]bool, dim)
	requiredSize := 1
	riskFactorsOut := make([]riskfactor.Code, 0, dim)
	shapeOut := make([]int, 0, dim)
	offsetsOut := make([]int, 0, dim)

	for d := 0; d < dim; d++ {
		if indices[d] != SliceWildcard {
			dimsFixed[d] = true
		} else {
			requiredSize *= tp.shape[d]
			riskFactorsOut = append(riskFactorsOut, tp.riskFactors[d])
			shapeOut = append(shapeOut, tp.shape[d])
			offsetsOut = append(offsetsOut, tp.offsets[d])
		}
	}

	if other.capacity < requiredSize {
		return fmt.Errorf("%w: need %d, have %d", engineerr.ErrCapacityExceeded, requiredSize, other.capacity)
	}

	boundsLower := make([]int, dim)
	boundsUpper := make([]int, dim)
	for d := 0; d < dim; d++ {
		if dimsFixed[d] {
			lower := indices[d] - tp.offsets[d]
			upper := lower + 1
			if lower < 0 || upper > tp.shape[d] {
				return fmt.Errorf("%w: slicing index exceeds dimension #%d", engineerr.ErrIndexOutOfRange, d)
			}
			boundsLower[d], boundsUpper[d] = lower, upper
		} else {
			boundsLower[d], boundsUpper[d] = 0, tp.shape[d]
		}
	}

	counters := append([]int(nil), boundsLower...)
	newVals := other.values
	count := 0
	for {
		flat := 0
		for k := 0; k < dim; k++ {
			flat += tp.strides[k] * counters[k]
		}
		newVals[count] = tp.values[flat]
		count++

		incremented := false
		for d := dim - 1; d >= 0; d-- {
			if counters[d]+1 < boundsUpper[d] {
				counters[d]++
				for d2 := d + 1; d2 < dim; d2++ {
					counters[d2] = boundsLower[d2]
				}
				incremented = true
				break
			}
		}
		if !incremented {
			break
		}
	}

	if requiredSize == 1 {
		if len(shapeOut) == 0 {
			shapeOut = append(shapeOut, 1)
		}
		if len(offsetsOut) == 0 {
			offsetsOut = append(offsetsOut, 0)
		}
	}

	other.riskFactors = riskFactorsOut
	other.shape = shapeOut
	other.offsets = offsetsOut
	other.numValues = requiredSize
	other.setStrides()

	return nil
}

func (tp *TableProvider) String() string {
	names := make([]string, len(tp.riskFactors))
	for i, rf := range tp.riskFactors {
		names[i] = rf.String()
	}
	return fmt.Sprintf("TableProvider(%s)", strings.Join(names, ", "))
}
