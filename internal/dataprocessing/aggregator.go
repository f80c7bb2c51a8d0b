package dataprocessing

import (
	"github.com/shopspring/decimal"
)

// Institutional investor sub-category keys
const (
	InvestorDealersProprietary     = "dealersProprietary"
	InvestorDealersHedge           = "dealersHedge"
	InvestorDealers                = "dealers"
	InvestorSITC                   = "sitc"
	InvestorForeignDealersExcluded = "foreignDealersExcluded"
	InvestorForeignDealers         = "foreignDealers"
	InvestorForeignInvestors       = "foreignInvestors"
)

// InvestorOrder is the output order of institutional sub-categories.
var InvestorOrder = []string{
	InvestorDealersProprietary,
	InvestorDealersHedge,
	InvestorDealers,
	InvestorSITC,
	InvestorForeignDealersExcluded,
	InvestorForeignDealers,
	InvestorForeignInvestors,
}

// Sum adds two values.
func Sum(a, b decimal.Decimal) decimal.Decimal {
	return a.Add(b)
}

// InvestorFlow is the buy / sell / net of one institutional category.
type InvestorFlow struct {
	Buy        decimal.Decimal
	Sell       decimal.Decimal
	NetBuySell decimal.Decimal
}

// Add sums two flows field by field.
func (f InvestorFlow) Add(o InvestorFlow) InvestorFlow {
	return InvestorFlow{
		Buy:        Sum(f.Buy, o.Buy),
		Sell:       Sum(f.Sell, o.Sell),
		NetBuySell: Sum(f.NetBuySell, o.NetBuySell),
	}
}

// TotalRule defines a total category as the sum of two parts.
type TotalRule struct {
	Total string
	Parts [2]string
}

// InvestorTotals are the aggregate institutional categories.
var InvestorTotals = []TotalRule{
	{Total: InvestorDealers, Parts: [2]string{InvestorDealersProprietary, InvestorDealersHedge}},
	{Total: InvestorForeignInvestors, Parts: [2]string{InvestorForeignDealersExcluded, InvestorForeignDealers}},
}

// AggregateInvestors fills in every total the source did not publish itself.
// Missing parts count as zero. flows is modified in place and returned.
func AggregateInvestors(flows map[string]InvestorFlow, rules []TotalRule) map[string]InvestorFlow {
	for _, rule := range rules {
		if _, published := flows[rule.Total]; published {
			continue
		}
		flows[rule.Total] = flows[rule.Parts[0]].Add(flows[rule.Parts[1]])
	}
	return flows
}
