package rateprovider

import (
	"testing"

	"github.com/jiangshenghai57/protolinc-go/internal/riskfactor"
)

func newTestTable(t *testing.T) *TableProvider {
	t.Helper()
	tp, err := NewTableProvider(
		[]riskfactor.Code{riskfactor.Age, riskfactor.Gender},
		[]int{2, 3},
		[]int{0, 0},
		[]float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6},
	)
	if err != nil {
		t.Fatalf("NewTableProvider: %v", err)
	}
	return tp
}

func TestTableProviderGetRate(t *testing.T) {
	tp := newTestTable(t)

	cases := []struct {
		indices []int
		want    float64
	}{
		{[]int{0, 0}, 0.1},
		{[]int{0, 2}, 0.3},
		{[]int{1, 2}, 0.6},
	}
	for _, c := range cases {
		got, err := tp.GetRate(c.indices)
		if err != nil {
			t.Fatalf("GetRate(%v): %v", c.indices, err)
		}
		if got != c.want {
			t.Errorf("GetRate(%v) = %v, want %v", c.indices, got, c.want)
		}
	}
}

func TestTableProviderGetRateOutOfRange(t *testing.T) {
	tp := newTestTable(t)
	if _, err := tp.GetRate([]int{2, 0}); err == nil {
		t.Fatal("expected an out-of-range error")
	}
}

func TestTableProviderSliceRoundTrip(t *testing.T) {
	tp := newTestTable(t)

	// slice_into([-1, 0]) -> [0.1, 0.4]
	dest := NewTableProviderCapacity(6)
	if err := tp.SliceInto([]int{SliceWildcard, 0}, dest); err != nil {
		t.Fatalf("SliceInto: %v", err)
	}
	if dest.numValues != 2 {
		t.Fatalf("numValues = %d, want 2", dest.numValues)
	}
	want := []float64{0.1, 0.4}
	for i, w := range want {
		got, err := dest.GetRate([]int{i})
		if err != nil {
			t.Fatalf("GetRate: %v", err)
		}
		if got != w {
			t.Errorf("sliced[%d] = %v, want %v", i, got, w)
		}
	}

	// slice_into([0, -1]) -> [0.1, 0.2, 0.3]
	dest2 := NewTableProviderCapacity(6)
	if err := tp.SliceInto([]int{0, SliceWildcard}, dest2); err != nil {
		t.Fatalf("SliceInto: %v", err)
	}
	want2 := []float64{0.1, 0.2, 0.3}
	for i, w := range want2 {
		got, err := dest2.GetRate([]int{i})
		if err != nil {
			t.Fatalf("GetRate: %v", err)
		}
		if got != w {
			t.Errorf("sliced2[%d] = %v, want %v", i, got, w)
		}
	}

	// slice_into([1, 2]) -> scalar 0.6
	dest3 := NewTableProviderCapacity(6)
	if err := tp.SliceInto([]int{1, 2}, dest3); err != nil {
		t.Fatalf("SliceInto: %v", err)
	}
	got, err := dest3.GetRate([]int{0})
	if err != nil {
		t.Fatalf("GetRate: %v", err)
	}
	if got != 0.6 {
		t.Errorf("fully sliced = %v, want 0.6", got)
	}
	if len(dest3.shape) != 1 || dest3.shape[0] != 1 || dest3.offsets[0] != 0 {
		t.Errorf("fully-reduced slice shape/offset = %v/%v, want [1]/[0]", dest3.shape, dest3.offsets)
	}

	// A fully-reduced table has no risk factors left, so the projected
	// zero-dimensional query must stay legal too.
	got0, err := dest3.GetRate(nil)
	if err != nil {
		t.Fatalf("GetRate(nil) on fully-reduced slice: %v", err)
	}
	if got0 != 0.6 {
		t.Errorf("fully sliced zero-dim query = %v, want 0.6", got0)
	}
}

func TestTableProviderSliceCapacityExceeded(t *testing.T) {
	tp := newTestTable(t)
	dest := NewTableProviderCapacity(1)
	if err := tp.SliceInto([]int{SliceWildcard, 0}, dest); err == nil {
		t.Fatal("expected a capacity-exceeded error")
	}
}

func TestTableProviderCloneDeepIsIndependent(t *testing.T) {
	tp := newTestTable(t)
	clone := tp.CloneDeep().(*TableProvider)

	dest := NewTableProviderCapacity(6)
	if err := clone.SliceInto([]int{SliceWildcard, 0}, dest); err != nil {
		t.Fatalf("SliceInto on clone: %v", err)
	}

	got, err := tp.GetRate([]int{0, 0})
	if err != nil {
		t.Fatalf("GetRate: %v", err)
	}
	if got != 0.1 {
		t.Errorf("source mutated by slicing its clone's destination: got %v", got)
	}
}

func TestConstantProviderIgnoresSlice(t *testing.T) {
	cp := NewConstantProvider(0.05)
	rate, err := cp.GetRate(nil)
	if err != nil {
		t.Fatalf("GetRate: %v", err)
	}
	if rate != 0.05 {
		t.Errorf("rate = %v, want 0.05", rate)
	}

	clone := cp.CloneDeep()
	if err := cp.SliceInto([]int{0}, clone); err != nil {
		t.Fatalf("SliceInto: %v", err)
	}
	rate2, _ := clone.GetRate(nil)
	if rate2 != 0.05 {
		t.Errorf("clone rate = %v, want 0.05", rate2)
	}
}
