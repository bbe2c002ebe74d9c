// Package assumption holds the square matrix of rate providers a projection
// run draws its transition rates from.
package assumption

import (
	"fmt"

	"github.com/jiangshenghai57/protolinc-go/internal/engineerr"
	"github.com/jiangshenghai57/protolinc-go/internal/rateprovider"
	"github.com/jiangshenghai57/protolinc-go/internal/riskfactor"
)

// Set is an n×n grid of optional rate providers indexed by (from-state,
// to-state). A nil entry means "no flow" between those two states.
type Set struct {
	n         int
	providers [][]rateprovider.Provider
}

// NewSet builds an empty n×n assumption set with every slot nil.
func NewSet(n int) *Set {
	providers := make([][]rateprovider.Provider, n)
	for r := range providers {
		providers[r] = make([]rateprovider.Provider, n)
	}
	return &Set{n: n, providers: providers}
}

// Dimension returns n.
func (s *Set) Dimension() int { return s.n }

// SetProvider installs a provider at (row, col), overwriting any prior entry.
func (s *Set) SetProvider(row, col int, p rateprovider.Provider) {
	s.providers[row][col] = p
}

// Provider returns the entry at (row, col), or nil.
func (s *Set) Provider(row, col int) rateprovider.Provider {
	return s.providers[row][col]
}

// CloneInto deep-clones every non-nil entry into the corresponding slot of
// other, which must share the same dimension.
func (s *Set) CloneInto(other *Set) error {
	if other.n != s.n {
		return fmt.Errorf("%w: clone target has dimension %d, source has %d", engineerr.ErrDimensionMismatch, other.n, s.n)
	}
	for r := 0; r < s.n; r++ {
		for c := 0; c < s.n; c++ {
			if p := s.providers[r][c]; p != nil {
				other.providers[r][c] = p.CloneDeep()
			} else {
				other.providers[r][c] = nil
			}
		}
	}
	return nil
}

// SliceInto projects the full-length risk-factor-indexed indices down to the
// subset each non-nil entry depends on (in declaration order) and slices
// that entry into the corresponding slot of other.
func (s *Set) SliceInto(indices []int, other *Set) error {
	if other.n != s.n {
		return fmt.Errorf("%w: slice target has dimension %d, source has %d", engineerr.ErrDimensionMismatch, other.n, s.n)
	}
	for r := 0; r < s.n; r++ {
		for c := 0; c < s.n; c++ {
			p := s.providers[r][c]
			if p == nil {
				other.providers[r][c] = nil
				continue
			}
			rfs := p.RiskFactors()
			indicesForProvider := make([]int, len(rfs))
			for i, rf := range rfs {
				indicesForProvider[i] = indices[int(rf)]
			}
			if err := p.SliceInto(indicesForProvider, other.providers[r][c]); err != nil {
				return fmt.Errorf("slicing provider (%d,%d): %w", r, c, err)
			}
		}
	}
	return nil
}

// RelevantRiskFactors returns the union of risk-factor sets across every
// non-nil entry, as a boolean array of length riskfactor.Count.
func (s *Set) RelevantRiskFactors() [riskfactor.Count]bool {
	var relevant [riskfactor.Count]bool
	for r := 0; r < s.n; r++ {
		for c := 0; c < s.n; c++ {
			p := s.providers[r][c]
			if p == nil {
				continue
			}
			for _, rf := range p.RiskFactors() {
				relevant[rf] = true
			}
		}
	}
	return relevant
}

// GetRateMatrix populates out (row-major, length n*n) with the rate of each
// (r,c) entry evaluated at rfIndexes, which must have length
// riskfactor.Count. A nil entry yields 0.
func (s *Set) GetRateMatrix(rfIndexes []int, out []float64) error {
	if len(rfIndexes) != int(riskfactor.Count) {
		return fmt.Errorf("%w: expected %d risk factor indexes, got %d", engineerr.ErrDimensionMismatch, riskfactor.Count, len(rfIndexes))
	}
	if len(out) != s.n*s.n {
		return fmt.Errorf("%w: output buffer has %d entries, want %d", engineerr.ErrDimensionMismatch, len(out), s.n*s.n)
	}
	for r := 0; r < s.n; r++ {
		for c := 0; c < s.n; c++ {
			p := s.providers[r][c]
			if p == nil {
				out[r*s.n+c] = 0
				continue
			}
			rfs := p.RiskFactors()
			providerIndexes := make([]int, len(rfs))
			for l, rf := range rfs {
				providerIndexes[l] = rfIndexes[int(rf)]
			}
			rate, err := p.GetRate(providerIndexes)
			if err != nil {
				return fmt.Errorf("rate lookup (%d,%d): %w", r, c, err)
			}
			out[r*s.n+c] = rate
		}
	}
	return nil
}

// Describe renders a short diagnostic description of the provider at
// (row, col), or "" if that slot is empty.
func (s *Set) Describe(row, col int) string {
	p := s.providers[row][col]
	if p == nil {
		return ""
	}
	return p.String()
}
