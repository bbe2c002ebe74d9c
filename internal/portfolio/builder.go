package portfolio

import (
	"fmt"

	"github.com/jiangshenghai57/protolinc-go/internal/dateaxis"
	"github.com/jiangshenghai57/protolinc-go/internal/engineerr"
)

// Builder constructs a Portfolio from the parallel-array contract an
// external portfolio loader supplies (cession_id[], dob_yyyymmdd[], ...).
// It mirrors the fluent "has_*" validation of the original loader: Build
// fails with ErrInvalidConfiguration unless every required array has been
// set.
type Builder struct {
	numPolicies int

	portfolioDateSet bool
	portfolioDate    dateaxis.PeriodDate

	productCode string

	cessionID          []int64
	dob                []int64
	issueDate          []int64
	disablementDate    []int64
	gender             []int32
	smokerStatus       []int32
	sumInsured         []float64
	reservingRate      []float64
	initialState       []int
}

// NewBuilder starts a builder for a portfolio of numPolicies records.
func NewBuilder(numPolicies int) *Builder {
	return &Builder{numPolicies: numPolicies}
}

func (b *Builder) SetPortfolioDate(d dateaxis.PeriodDate) *Builder {
	b.portfolioDate = d
	b.portfolioDateSet = true
	return b
}

func (b *Builder) SetProductCode(code string) *Builder {
	b.productCode = code
	return b
}

func (b *Builder) SetCessionID(v []int64) *Builder { b.cessionID = v; return b }

func (b *Builder) SetDateOfBirth(v []int64) *Builder { b.dob = v; return b }

func (b *Builder) SetIssueDate(v []int64) *Builder { b.issueDate = v; return b }

func (b *Builder) SetDisablementDate(v []int64) *Builder { b.disablementDate = v; return b }

func (b *Builder) SetGender(v []int32) *Builder { b.gender = v; return b }

func (b *Builder) SetSmokerStatus(v []int32) *Builder { b.smokerStatus = v; return b }

func (b *Builder) SetSumInsured(v []float64) *Builder { b.sumInsured = v; return b }

func (b *Builder) SetReservingRate(v []float64) *Builder { b.reservingRate = v; return b }

func (b *Builder) SetInitialState(v []int) *Builder { b.initialState = v; return b }

// Build validates that every required field was set and constructs the
// Portfolio, decomposing each YYYYMMDD integer date into a PeriodDate.
func (b *Builder) Build() (*Portfolio, error) {
	switch {
	case !b.portfolioDateSet:
		return nil, fmt.Errorf("%w: portfolio date not set", engineerr.ErrInvalidConfiguration)
	case b.disablementDate == nil:
		return nil, fmt.Errorf("%w: disablement dates not set", engineerr.ErrInvalidConfiguration)
	case b.issueDate == nil:
		return nil, fmt.Errorf("%w: issue dates not set", engineerr.ErrInvalidConfiguration)
	case b.dob == nil:
		return nil, fmt.Errorf("%w: dates of birth not set", engineerr.ErrInvalidConfiguration)
	case b.cessionID == nil:
		return nil, fmt.Errorf("%w: cession IDs not set", engineerr.ErrInvalidConfiguration)
	case b.gender == nil:
		return nil, fmt.Errorf("%w: gender not set", engineerr.ErrInvalidConfiguration)
	case b.smokerStatus == nil:
		return nil, fmt.Errorf("%w: smoker status not set", engineerr.ErrInvalidConfiguration)
	case b.sumInsured == nil:
		return nil, fmt.Errorf("%w: sum insured not set", engineerr.ErrInvalidConfiguration)
	case b.reservingRate == nil:
		return nil, fmt.Errorf("%w: reserving rate not set", engineerr.ErrInvalidConfiguration)
	case b.initialState == nil:
		return nil, fmt.Errorf("%w: initial state not set", engineerr.ErrInvalidConfiguration)
	}

	ptf := &Portfolio{
		PortfolioDate: b.portfolioDate,
		Policies:      make([]Policy, b.numPolicies),
	}

	for k := 0; k < b.numPolicies; k++ {
		var disablement *dateaxis.PeriodDate
		if b.disablementDate[k] > 0 {
			d := decomposeYYYYMMDD(b.disablementDate[k])
			disablement = &d
		}

		ptf.Policies[k] = Policy{
			CessionID:       b.cessionID[k],
			DateOfBirth:     decomposeYYYYMMDD(b.dob[k]),
			IssueDate:       decomposeYYYYMMDD(b.issueDate[k]),
			DisablementDate: disablement,
			Gender:          int(b.gender[k]),
			SmokerStatus:    int(b.smokerStatus[k]),
			SumInsured:      b.sumInsured[k],
			ReservingRate:   b.reservingRate[k],
			ProductCode:     b.productCode,
			InitialState:    b.initialState[k],
		}
	}

	return ptf, nil
}

func decomposeYYYYMMDD(v int64) dateaxis.PeriodDate {
	return dateaxis.PeriodDate{
		Year:  int(v / 10000),
		Month: int((v % 10000) / 100),
		Day:   int(v % 100),
	}
}
