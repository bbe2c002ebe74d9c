// Package portfolio holds the policy records a projection run is dispatched
// over.
package portfolio

import "github.com/jiangshenghai57/protolinc-go/internal/dateaxis"

// Policy is a single immutable policy record.
type Policy struct {
	CessionID       int64
	DateOfBirth     dateaxis.PeriodDate
	IssueDate       dateaxis.PeriodDate
	DisablementDate *dateaxis.PeriodDate // nil if the policy was never disabled
	Gender          int
	SmokerStatus    int
	SumInsured      float64
	ReservingRate   float64
	ProductCode     string
	InitialState    int
}

// HasDisablementDate reports whether the policy carries a disablement date.
func (p Policy) HasDisablementDate() bool { return p.DisablementDate != nil }
