package rateprovider

import "github.com/jiangshenghai57/protolinc-go/internal/riskfactor"

// ConstantProvider always returns the same scalar rate, independent of
// risk-factor indices.
type ConstantProvider struct {
	value float64
}

// NewConstantProvider builds a provider that always yields value.
func NewConstantProvider(value float64) *ConstantProvider {
	return &ConstantProvider{value: value}
}

func (p *ConstantProvider) RiskFactors() []riskfactor.Code { return nil }

func (p *ConstantProvider) GetRate(indices []int) (float64, error) {
	return p.value, nil
}

func (p *ConstantProvider) CloneDeep() Provider {
	return &ConstantProvider{value: p.value}
}

// SliceInto is a no-op: a constant provider always yields its scalar,
// regardless of the axes the caller intends to fix.
func (p *ConstantProvider) SliceInto(indices []int, other Provider) error {
	return nil
}

func (p *ConstantProvider) String() string {
	return "ConstantProvider(" + formatFloat(p.value) + ")"
}
