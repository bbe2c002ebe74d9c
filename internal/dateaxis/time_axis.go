package dateaxis

import "fmt"

// Granularity selects the period-end cadence of a TimeAxis.
type Granularity int

const (
	Monthly Granularity = iota
	Quarterly
	Yearly
)

func (g Granularity) String() string {
	switch g {
	case Monthly:
		return "monthly"
	case Quarterly:
		return "quarterly"
	case Yearly:
		return "yearly"
	default:
		return "unknown"
	}
}

// TimeAxis is the read-only calendar scaffold a projection run advances
// over. It is built once per run and never mutated afterward.
type TimeAxis struct {
	granularity     Granularity
	yearsToSimulate int
	portfolioDate   PeriodDate

	startDates    []PeriodDate
	endDates      []PeriodDate
	periodLengths []int
}

// NewTimeAxis builds the axis from the portfolio date out to the next 31 Dec
// on or after portfolioDate plus yearsToSimulate years, stepping by
// granularity.
func NewTimeAxis(granularity Granularity, yearsToSimulate int, portfolioDate PeriodDate) *TimeAxis {
	ta := &TimeAxis{
		granularity:     granularity,
		yearsToSimulate: yearsToSimulate,
		portfolioDate:   portfolioDate,
	}
	ta.startDates = make([]PeriodDate, 0, 2+12*yearsToSimulate)
	ta.endDates = make([]PeriodDate, 0, 2+12*yearsToSimulate)
	ta.periodLengths = make([]int, 0, 2+12*yearsToSimulate)

	cursor := portfolioDate
	endDate := PeriodDate{Year: portfolioDate.Year + yearsToSimulate, Month: portfolioDate.Month, Day: portfolioDate.Day}
	if endDate.Month != 12 || endDate.Day != 31 {
		endDate.nextEndOfYear()
	}

	ta.endDates = append(ta.endDates, cursor)
	ta.startDates = append(ta.startDates, cursor)
	ta.periodLengths = append(ta.periodLengths, 0)

	for cursor.Before(endDate.Year, endDate.Month, endDate.Day) {
		previousEnd := cursor
		switch granularity {
		case Yearly:
			cursor.nextEndOfYear()
		case Quarterly:
			cursor.nextEndOfQuarter()
		default:
			cursor.nextEndOfMonth()
		}

		ta.endDates = append(ta.endDates, cursor)
		ta.startDates = append(ta.startDates, addOneDay(previousEnd))
		ta.periodLengths = append(ta.periodLengths, Days30U360(addOneDay(previousEnd), addOneDay(cursor)))
	}

	return ta
}

// Len returns the number of entries on the axis, including the initial
// (portfolio-date) row.
func (ta *TimeAxis) Len() int { return len(ta.endDates) }

// Start returns the start date of period k.
func (ta *TimeAxis) Start(k int) PeriodDate { return ta.startDates[k] }

// End returns the end date of period k.
func (ta *TimeAxis) End(k int) PeriodDate { return ta.endDates[k] }

// PeriodLength returns the 30U/360 day count of period k, counted from
// Start(k) to the day after End(k).
func (ta *TimeAxis) PeriodLength(k int) int { return ta.periodLengths[k] }

// PortfolioDate returns the axis's anchor date.
func (ta *TimeAxis) PortfolioDate() PeriodDate { return ta.portfolioDate }

// Granularity returns the axis's stepping cadence.
func (ta *TimeAxis) Granularity() Granularity { return ta.granularity }

func addOneDay(d PeriodDate) PeriodDate {
	d.Day++
	if d.Day > daysInMonthOf(d.Year, d.Month) {
		d.Day = 1
		d.Month++
		if d.Month > 12 {
			d.Month = 1
			d.Year++
		}
	}
	return d
}

func (d PeriodDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}
