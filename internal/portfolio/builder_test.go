package portfolio

import (
	"testing"

	"github.com/jiangshenghai57/protolinc-go/internal/dateaxis"
)

func TestBuilderBuildsPolicies(t *testing.T) {
	ptf, err := NewBuilder(1).
		SetPortfolioDate(dateaxis.PeriodDate{Year: 2021, Month: 12, Day: 20}).
		SetProductCode("TERM").
		SetCessionID([]int64{1}).
		SetDateOfBirth([]int64{19800101}).
		SetIssueDate([]int64{20100101}).
		SetDisablementDate([]int64{-1}).
		SetGender([]int32{0}).
		SetSmokerStatus([]int32{1}).
		SetSumInsured([]float64{100000}).
		SetReservingRate([]float64{0.02}).
		SetInitialState([]int{0}).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if ptf.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", ptf.Len())
	}
	p := ptf.Policies[0]
	if p.HasDisablementDate() {
		t.Error("expected no disablement date for -1 input")
	}
	if want := (dateaxis.PeriodDate{Year: 1980, Month: 1, Day: 1}); p.DateOfBirth != want {
		t.Errorf("DateOfBirth = %v, want %v", p.DateOfBirth, want)
	}
}

func TestBuilderTreatsZeroDisablementDateAsAbsent(t *testing.T) {
	ptf, err := NewBuilder(2).
		SetPortfolioDate(dateaxis.PeriodDate{Year: 2021, Month: 12, Day: 20}).
		SetProductCode("TERM").
		SetCessionID([]int64{1, 2}).
		SetDateOfBirth([]int64{19800101, 19800101}).
		SetIssueDate([]int64{20100101, 20100101}).
		SetDisablementDate([]int64{0, -1}).
		SetGender([]int32{0, 0}).
		SetSmokerStatus([]int32{1, 1}).
		SetSumInsured([]float64{100000, 100000}).
		SetReservingRate([]float64{0.02, 0.02}).
		SetInitialState([]int{0, 0}).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if ptf.Policies[0].HasDisablementDate() {
		t.Error("expected no disablement date for 0 input, per the loader's \"<= 0 = absent\" contract")
	}
	if ptf.Policies[1].HasDisablementDate() {
		t.Error("expected no disablement date for -1 input")
	}
}

func TestBuilderMissingFieldFails(t *testing.T) {
	_, err := NewBuilder(1).SetPortfolioDate(dateaxis.PeriodDate{Year: 2021, Month: 1, Day: 1}).Build()
	if err == nil {
		t.Fatal("expected an invalid-configuration error")
	}
}

func TestPortfolioSplitRoundRobinDeterministic(t *testing.T) {
	ptf := &Portfolio{Policies: make([]Policy, 10)}
	for i := range ptf.Policies {
		ptf.Policies[i].CessionID = int64(i)
	}

	groups := ptf.Split(4)
	if len(groups) != 4 {
		t.Fatalf("len(groups) = %d, want 4", len(groups))
	}
	wantCounts := []int{3, 3, 2, 2}
	for g, want := range wantCounts {
		if got := groups[g].Len(); got != want {
			t.Errorf("group %d len = %d, want %d", g, got, want)
		}
	}
	if groups[0].Policies[0].CessionID != 0 || groups[0].Policies[1].CessionID != 4 {
		t.Errorf("group 0 order not round robin: %v", groups[0].Policies)
	}
}
