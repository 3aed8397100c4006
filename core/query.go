package core

import (
	"fmt"
	"strconv"
	"strings"
)

// Direction is a sort direction in the gateway's order grammar.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// Order is a single (column, direction) ordering term.
type Order struct {
	Field     string
	Direction Direction
}

// Reserved parameter names. PostgREST treats these as single literal values,
// not per-column filter expressions, so filter criteria must never use them
// as column names.
const (
	paramOrder  = "order"
	paramSelect = "select"
)

// Criteria is the typed, optional filter set a subcommand gathers from the
// operator. Absent criteria (zero values, nil maps) contribute no query
// parameter: the gateway's absence-of-filter means unconstrained.
//
// Severity values and keyword text are embedded into the filter grammar
// unescaped. Severities come from a fixed enumeration and must not contain
// commas or parentheses; wildcard characters in a keyword are passed
// through as-is.
type Criteria struct {
	// Severities filters the severity_level column. One value renders as
	// eq.<v>, several as in.(v1,v2,...) preserving caller order.
	Severities []string

	// Exact maps column name -> exact-match value (eq.<v>).
	Exact map[string]string

	// Keyword is a case-insensitive substring match against the resource's
	// keyword column (ilike.*<kw>*).
	Keyword string

	// Since is a canonical absolute timestamp (already resolved by the
	// temporal parser), applied as an inclusive lower bound on the
	// resource's timestamp column.
	Since string

	// NumericGTE maps column name -> inclusive numeric lower bound.
	NumericGTE map[string]float64

	// BoolIs maps column name -> required boolean value (is.true/is.false).
	BoolIs map[string]bool

	// Ordering overrides the resource's default ordering when non-empty.
	Ordering []Order

	// Projection, when non-empty, is passed verbatim as the select list.
	Projection []string
}

// BuildQuery renders the criteria as a PostgREST query-parameter map for the
// given resource. It never fails: every absent criterion is simply omitted.
func BuildQuery(res Resource, c Criteria) map[string]string {
	query := make(map[string]string)

	ordering := c.Ordering
	if len(ordering) == 0 {
		ordering = res.DefaultOrder
	}
	query[paramOrder] = renderOrder(ordering)

	if len(c.Projection) > 0 {
		query[paramSelect] = strings.Join(c.Projection, ",")
	}

	switch len(c.Severities) {
	case 0:
	case 1:
		query["severity_level"] = "eq." + c.Severities[0]
	default:
		query["severity_level"] = "in.(" + strings.Join(c.Severities, ",") + ")"
	}

	for field, value := range c.Exact {
		query[field] = "eq." + value
	}

	if c.Keyword != "" {
		query[res.KeywordField] = "ilike.*" + c.Keyword + "*"
	}

	if c.Since != "" {
		query[res.TimestampField] = "gte." + c.Since
	}

	for field, bound := range c.NumericGTE {
		query[field] = "gte." + strconv.FormatFloat(bound, 'f', -1, 64)
	}

	for field, want := range c.BoolIs {
		query[field] = "is." + strconv.FormatBool(want)
	}

	return query
}

// renderOrder joins ordering terms into the gateway's comma-separated
// <column>.<direction> form.
func renderOrder(ordering []Order) string {
	terms := make([]string, 0, len(ordering))
	for _, o := range ordering {
		terms = append(terms, o.Field+"."+string(o.Direction))
	}
	return strings.Join(terms, ",")
}

// Window is the pagination window a subcommand requests. It is not part of
// the query-parameter map: PostgREST receives it as an inclusive zero-based
// Range header.
type Window struct {
	Offset int
	Limit  int
}

// Range derives the inclusive [from, to] row range.
func (w Window) Range() (from, to int, err error) {
	if w.Limit <= 0 {
		return 0, 0, fmt.Errorf("%w: limit must be positive, got %d", ErrInvalidPagination, w.Limit)
	}
	if w.Offset < 0 {
		return 0, 0, fmt.Errorf("%w: offset must be non-negative, got %d", ErrInvalidPagination, w.Offset)
	}
	return w.Offset, w.Offset + w.Limit - 1, nil
}
