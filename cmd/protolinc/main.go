// Command protolinc runs a small built-in projection scenario and prints its
// materialized CSV to stdout, as a demo entry point separate from the HTTP
// service in the module root.
package main

import (
	"context"
	"log"
	"os"

	"github.com/jiangshenghai57/protolinc-go/internal/assumption"
	"github.com/jiangshenghai57/protolinc-go/internal/dateaxis"
	"github.com/jiangshenghai57/protolinc-go/internal/payment"
	"github.com/jiangshenghai57/protolinc-go/internal/portfolio"
	"github.com/jiangshenghai57/protolinc-go/internal/rateprovider"
	"github.com/jiangshenghai57/protolinc-go/internal/runner"
)

func main() {
	portfolioDate := dateaxis.PeriodDate{Year: 2021, Month: 12, Day: 20}

	ptf, err := portfolio.NewBuilder(2).
		SetPortfolioDate(portfolioDate).
		SetProductCode("TERM-LIFE").
		SetCessionID([]int64{1, 2}).
		SetDateOfBirth([]int64{19800101, 19750615}).
		SetIssueDate([]int64{20200101, 20190601}).
		SetDisablementDate([]int64{-1, -1}).
		SetGender([]int32{0, 1}).
		SetSmokerStatus([]int32{0, 1}).
		SetSumInsured([]float64{100000, 250000}).
		SetReservingRate([]float64{0.03, 0.03}).
		SetInitialState([]int{0, 0}).
		Build()
	if err != nil {
		log.Fatalf("building portfolio: %v", err)
	}

	be := assumption.NewSet(2)
	be.SetProvider(0, 1, rateprovider.NewConstantProvider(0.01))

	cfg := runner.RunConfig{
		StateDimension:  2,
		Granularity:     dateaxis.Monthly,
		YearsToSimulate: 10,
		MaxAgeYears:     120,
		NumCPUs:         4,
		UseMulticore:    true,
	}
	ta := dateaxis.NewTimeAxis(cfg.Granularity, cfg.YearsToSimulate, portfolioDate)
	mr := runner.NewMetaRunner(cfg, ta, nil)

	payments := payment.NewAggregatePayments(ptf.Len())

	result, err := mr.Run(context.Background(), ptf, payments, be, nil, 0)
	if err != nil {
		log.Fatalf("running projection: %v", err)
	}

	if err := result.WriteCSV(os.Stdout); err != nil {
		log.Fatalf("writing CSV: %v", err)
	}
}
