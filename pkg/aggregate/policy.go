package aggregate

import "github.com/ogulcanaydogan/aws-spend-reporter/pkg/model"

// Policy decides whether a ranked series gets its own row or is folded into
// the Other row.
type Policy interface {
	Include(rank int, s model.Series) bool
}

// CostFloor lists accounts whose month-to-date or last-month cost exceeds
// the floor.
type CostFloor float64

func (f CostFloor) Include(_ int, s model.Series) bool {
	return s.At(0) > float64(f) || s.At(1) > float64(f)
}

// TopN lists the N most expensive accounts.
type TopN int

func (n TopN) Include(rank int, _ model.Series) bool {
	return rank < int(n)
}
