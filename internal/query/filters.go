// Package query validates data requests and runs the filter → sort →
// paginate pipeline over standardized rows.
package query

import (
	"explorer/internal/domain"
)

// Pagination defaults and limits.
const (
	DefaultPage = 1
	DefaultSize = 25
	MaxSize     = 100
)

// SupportedKeys are the recognized top-level request keys.
var SupportedKeys = []string{"where", "page", "size", "orderBy"}

// Operator is a where-clause comparison.
type Operator string

const (
	OpEq Operator = "eq"
	OpGt Operator = "gt"
	OpLt Operator = "lt"
)

// Operators lists the supported operators in display order.
var Operators = []Operator{OpEq, OpGt, OpLt}

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Directions lists the supported sort directions.
var Directions = []Direction{Asc, Desc}

// OrderBy sorts results by one field.
type OrderBy struct {
	Field     string    `json:"field"`
	Direction Direction `json:"direction"`
}

// Condition is a validated single-field filter. Value is already coerced
// to the field type, or nil for a null literal.
type Condition struct {
	Field    domain.Field
	Operator Operator
	Value    any
}

// Filters is a validated data request.
type Filters struct {
	Page    int
	Size    int
	Where   *Condition
	OrderBy *OrderBy
}

// DefaultFilters returns page 1 of size 25 with no filter or ordering.
func DefaultFilters() Filters {
	return Filters{Page: DefaultPage, Size: DefaultSize}
}
