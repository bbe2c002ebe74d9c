package assumption

import (
	"testing"

	"github.com/jiangshenghai57/protolinc-go/internal/rateprovider"
	"github.com/jiangshenghai57/protolinc-go/internal/riskfactor"
)

func TestSetCloneIntoIsIndependent(t *testing.T) {
	set := NewSet(2)
	set.SetProvider(0, 1, rateprovider.NewConstantProvider(0.1))

	clone := NewSet(2)
	if err := set.CloneInto(clone); err != nil {
		t.Fatalf("CloneInto: %v", err)
	}

	set.SetProvider(0, 1, rateprovider.NewConstantProvider(0.9))
	rate, _ := clone.Provider(0, 1).GetRate(nil)
	if rate != 0.1 {
		t.Errorf("clone rate = %v, want 0.1 (clone must not see later mutation)", rate)
	}
}

func TestSetCloneIntoDimensionMismatch(t *testing.T) {
	set := NewSet(2)
	other := NewSet(3)
	if err := set.CloneInto(other); err == nil {
		t.Fatal("expected a dimension mismatch error")
	}
}

// TestSetSliceRestrictsToFixedAxis covers S5: a policy with a fixed gender
// value must see exactly the rates a gender-hardcoded provider would yield.
func TestSetSliceRestrictsToFixedAxis(t *testing.T) {
	ageGenderTable, err := rateprovider.NewTableProvider(
		[]riskfactor.Code{riskfactor.Age, riskfactor.Gender},
		[]int{2, 2},
		[]int{0, 0},
		[]float64{0.01, 0.02, 0.03, 0.04},
	)
	if err != nil {
		t.Fatalf("NewTableProvider: %v", err)
	}

	set := NewSet(2)
	set.SetProvider(0, 1, ageGenderTable)

	sliced := NewSet(2)
	sliced.SetProvider(0, 1, rateprovider.NewTableProviderCapacity(4))

	indices := make([]int, riskfactor.Count)
	for i := range indices {
		indices[i] = rateprovider.SliceWildcard
	}
	indices[riskfactor.Gender] = 1

	if err := set.SliceInto(indices, sliced); err != nil {
		t.Fatalf("SliceInto: %v", err)
	}

	rfIndexes := make([]int, riskfactor.Count)
	rfIndexes[riskfactor.Age] = 0
	out := make([]float64, 4)
	if err := sliced.GetRateMatrix(rfIndexes, out); err != nil {
		t.Fatalf("GetRateMatrix: %v", err)
	}

	want, _ := ageGenderTable.GetRate([]int{0, 1})
	if out[0*2+1] != want {
		t.Errorf("sliced rate = %v, want %v (gender=1 hardcoded)", out[1], want)
	}
}

// TestSetSliceFullyReducesGenderOnlyProvider: a provider depending solely on
// a sliced-away factor reduces to zero dimensions, and the rate matrix query
// must still reach its single remaining value.
func TestSetSliceFullyReducesGenderOnlyProvider(t *testing.T) {
	genderTable, err := rateprovider.NewTableProvider(
		[]riskfactor.Code{riskfactor.Gender},
		[]int{2},
		[]int{0},
		[]float64{0.02, 0.07},
	)
	if err != nil {
		t.Fatalf("NewTableProvider: %v", err)
	}

	set := NewSet(2)
	set.SetProvider(0, 1, genderTable)

	sliced := NewSet(2)
	sliced.SetProvider(0, 1, rateprovider.NewTableProviderCapacity(2))

	indices := make([]int, riskfactor.Count)
	for i := range indices {
		indices[i] = rateprovider.SliceWildcard
	}
	indices[riskfactor.Gender] = 1

	if err := set.SliceInto(indices, sliced); err != nil {
		t.Fatalf("SliceInto: %v", err)
	}

	out := make([]float64, 4)
	if err := sliced.GetRateMatrix(make([]int, riskfactor.Count), out); err != nil {
		t.Fatalf("GetRateMatrix after full reduction: %v", err)
	}
	if out[0*2+1] != 0.07 {
		t.Errorf("fully-reduced rate = %v, want 0.07", out[0*2+1])
	}
}
