package statement

import "github.com/shopspring/decimal"

// Balance folds ops from zero: credits add, debits subtract.
func Balance(ops []Operation) decimal.Decimal {
	total := decimal.Zero
	for _, op := range ops {
		total = total.Add(op.Signed())
	}
	return total
}
