// Package runner fans a projection out across a portfolio, splitting it into
// worker groups and joining their results back together.
package runner

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/jiangshenghai57/protolinc-go/internal/assumption"
	"github.com/jiangshenghai57/protolinc-go/internal/dateaxis"
	"github.com/jiangshenghai57/protolinc-go/internal/logger"
	"github.com/jiangshenghai57/protolinc-go/internal/payment"
	"github.com/jiangshenghai57/protolinc-go/internal/portfolio"
	"github.com/jiangshenghai57/protolinc-go/internal/projector"
	"github.com/jiangshenghai57/protolinc-go/internal/result"
)

// RunConfig carries the knobs a run needs beyond the portfolio and
// assumption sets themselves.
type RunConfig struct {
	StateDimension  int
	Granularity     dateaxis.Granularity
	YearsToSimulate int
	MaxAgeYears     int
	NumCPUs         int
	UseMulticore    bool
}

// Runner projects one portfolio group sequentially, one policy at a time,
// accumulating every policy's result into a single shared RunResult.
type Runner struct {
	cfg RunConfig
	ta  *dateaxis.TimeAxis
	log *logger.Logger
}

// NewRunner builds a Runner for the shared time axis ta.
func NewRunner(cfg RunConfig, ta *dateaxis.TimeAxis, log *logger.Logger) *Runner {
	return &Runner{cfg: cfg, ta: ta, log: log}
}

// Run projects every policy in group against beAssumptions/otherAssumptions
// and sums the result into out, which must already be sized for
// cfg.StateDimension, numPaymentCols and ta.
func (r *Runner) Run(ctx context.Context, group *portfolio.Portfolio, payments *payment.AggregatePayments, beAssumptions *assumption.Set, otherAssumptions []*assumption.Set, numPaymentCols int, out *result.RunResult) error {
	rp, err := projector.NewRecordProjector(r.ta, r.cfg.MaxAgeYears, beAssumptions, otherAssumptions, r.log)
	if err != nil {
		return fmt.Errorf("building record projector: %w", err)
	}

	scratch := result.NewRunResult(r.cfg.StateDimension, numPaymentCols, r.ta)

	for i, policy := range group.Policies {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		scratch.Reset()
		statePayments := payments.StatePayments(i)
		transitionPayments := payments.TransitionPayments(i)

		if err := rp.Run(policy, scratch, group.PortfolioDate, statePayments, transitionPayments); err != nil {
			return fmt.Errorf("projecting policy %d (cession %d): %w", i, policy.CessionID, err)
		}
		if err := out.AddResult(scratch); err != nil {
			return fmt.Errorf("accumulating policy %d: %w", i, err)
		}
	}
	return nil
}

// MetaRunner splits a portfolio across worker groups and joins their
// results, one goroutine per group behind an errgroup barrier.
type MetaRunner struct {
	cfg RunConfig
	ta  *dateaxis.TimeAxis
	log *logger.Logger
}

// NewMetaRunner builds a MetaRunner for the shared time axis ta.
func NewMetaRunner(cfg RunConfig, ta *dateaxis.TimeAxis, log *logger.Logger) *MetaRunner {
	return &MetaRunner{cfg: cfg, ta: ta, log: log}
}

// numGroups picks the worker-group count: single-threaded unless multicore
// is requested, in which case it's the smaller of the configured CPU count
// and one group per four policies, clamped to at least one.
func numGroups(cfg RunConfig, portfolioSize int) int {
	if !cfg.UseMulticore {
		return 1
	}
	cpus := cfg.NumCPUs
	if cpus <= 0 {
		cpus = runtime.NumCPU()
	}
	byPortfolio := portfolioSize / 4
	n := cpus
	if byPortfolio < n {
		n = byPortfolio
	}
	if n < 1 {
		n = 1
	}
	return n
}

// Run splits the portfolio into worker groups by round robin, projects each
// group concurrently, and sums the per-group results into a single
// RunResult, sequentially in group order so the sum is reproducible.
func (mr *MetaRunner) Run(ctx context.Context, portfolio_ *portfolio.Portfolio, payments *payment.AggregatePayments, beAssumptions *assumption.Set, otherAssumptions []*assumption.Set, numPaymentCols int) (*result.RunResult, error) {
	n := numGroups(mr.cfg, portfolio_.Len())
	if mr.log != nil {
		mr.log.Info("starting projection run", "policies", portfolio_.Len(), "groups", n, "multicore", mr.cfg.UseMulticore)
	}

	portfolioGroups := portfolio_.Split(n)
	paymentGroups := payments.Split(n)

	groupResults := make([]*result.RunResult, n)
	g, gctx := errgroup.WithContext(ctx)

	for i := 0; i < n; i++ {
		i := i
		groupResults[i] = result.NewRunResult(mr.cfg.StateDimension, numPaymentCols, mr.ta)
		g.Go(func() error {
			runner := NewRunner(mr.cfg, mr.ta, mr.log)
			return runner.Run(gctx, portfolioGroups[i], paymentGroups[i], beAssumptions, otherAssumptions, numPaymentCols, groupResults[i])
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("projection run failed: %w", err)
	}

	total := result.NewRunResult(mr.cfg.StateDimension, numPaymentCols, mr.ta)
	for i := 0; i < n; i++ {
		if err := total.AddResult(groupResults[i]); err != nil {
			return nil, fmt.Errorf("joining group %d: %w", i, err)
		}
	}

	if mr.log != nil {
		mr.log.Info("projection run complete", "policies", portfolio_.Len())
	}
	return total, nil
}
