package portfolio

import "github.com/jiangshenghai57/protolinc-go/internal/dateaxis"

// Portfolio is an ordered, append-only sequence of policies sharing one
// portfolio date and one product code.
type Portfolio struct {
	PortfolioDate dateaxis.PeriodDate
	Policies      []Policy
}

// Len returns the number of policies in the portfolio.
func (p *Portfolio) Len() int { return len(p.Policies) }

// Split partitions the portfolio's policies into numGroups sub-portfolios
// by round-robin over the input order: policy i goes to group i%numGroups.
// This is deterministic regardless of numGroups and preserves in-group order.
func (p *Portfolio) Split(numGroups int) []*Portfolio {
	groups := make([]*Portfolio, numGroups)
	for g := range groups {
		groups[g] = &Portfolio{PortfolioDate: p.PortfolioDate}
	}
	for i, policy := range p.Policies {
		g := i % numGroups
		groups[g].Policies = append(groups[g].Policies, policy)
	}
	return groups
}
