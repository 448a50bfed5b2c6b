// Package search turns the string-typed query parameters of the product
// search endpoint into a typed Query that each storage backend translates.
package search

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var ErrInvalidParam = errors.New("invalid search parameter")

// All is the wire sentinel meaning "no filter".
const All = "all"

type SortKey string

const (
	SortDefault  SortKey = ""
	SortFeatured SortKey = "featured"
	SortLowest   SortKey = "lowest"
	SortHighest  SortKey = "highest"
	SortTopRated SortKey = "toprated"
	SortNewest   SortKey = "newest"
)

// Field is a logical product field; backends map it to a column or key.
type Field string

const (
	FieldID        Field = "id"
	FieldFeatured  Field = "featured"
	FieldPrice     Field = "price"
	FieldRating    Field = "rating"
	FieldCreatedAt Field = "created_at"
)

type Order struct {
	Field Field
	Desc  bool
}

// RawParams mirrors the query string of GET /products/search.
type RawParams struct {
	Query    string
	Category string
	Price    string
	Rating   string
	Order    string
	Page     string
	PageSize string
}

type PriceRange struct {
	Low  float64
	High float64
}

// Query is the parsed form of RawParams. Nil filters are inactive; active
// ones are combined with AND.
type Query struct {
	Text      *string
	Category  *string
	Price     *PriceRange
	MinRating *float64
	Sort      SortKey
	Page      int
	PageSize  int
}

func ParseParams(p RawParams) (Query, error) {
	q := Query{
		Text:     optional(p.Query),
		Category: optional(p.Category),
		Sort:     ParseSort(p.Order),
	}

	if v := optional(p.Rating); v != nil {
		r, err := finiteFloat(*v)
		if err != nil {
			return Query{}, fmt.Errorf("%w: rating %q is not a number", ErrInvalidParam, *v)
		}
		q.MinRating = &r
	}

	if v := optional(p.Price); v != nil {
		pr, err := ParsePrice(*v)
		if err != nil {
			return Query{}, err
		}
		q.Price = pr
	}

	page, err := intParam("page", p.Page, 1)
	if err != nil {
		return Query{}, err
	}
	size, err := intParam("pageSize", p.PageSize, DefaultPageSize)
	if err != nil {
		return Query{}, err
	}
	q.Page, q.PageSize = Normalize(page, size)
	if q.Page > MaxPage(q.PageSize) {
		return Query{}, fmt.Errorf("%w: page %d is out of range", ErrInvalidParam, q.Page)
	}

	return q, nil
}

// ParsePrice parses "low-high" with both bounds inclusive.
func ParsePrice(s string) (*PriceRange, error) {
	parts := strings.Split(s, "-")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return nil, fmt.Errorf("%w: price %q must look like low-high", ErrInvalidParam, s)
	}
	low, err := finiteFloat(strings.TrimSpace(parts[0]))
	if err != nil {
		return nil, fmt.Errorf("%w: price lower bound %q", ErrInvalidParam, parts[0])
	}
	high, err := finiteFloat(strings.TrimSpace(parts[1]))
	if err != nil {
		return nil, fmt.Errorf("%w: price upper bound %q", ErrInvalidParam, parts[1])
	}
	if low > high {
		return nil, fmt.Errorf("%w: price range %q is inverted", ErrInvalidParam, s)
	}
	return &PriceRange{Low: low, High: high}, nil
}

func ParseSort(s string) SortKey {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case SortFeatured, SortLowest, SortHighest, SortTopRated, SortNewest:
		return k
	default:
		return SortDefault
	}
}

// Orders returns the sort for q. Every non-default key gets id DESC as a
// tiebreaker so pages stay stable.
func (q Query) Orders() []Order {
	var primary Order
	switch q.Sort {
	case SortFeatured:
		primary = Order{Field: FieldFeatured, Desc: true}
	case SortLowest:
		primary = Order{Field: FieldPrice}
	case SortHighest:
		primary = Order{Field: FieldPrice, Desc: true}
	case SortTopRated:
		primary = Order{Field: FieldRating, Desc: true}
	case SortNewest:
		primary = Order{Field: FieldCreatedAt, Desc: true}
	default:
		return []Order{{Field: FieldID, Desc: true}}
	}
	return []Order{primary, {Field: FieldID, Desc: true}}
}

func (q Query) Offset() int {
	offset, _ := Calculate(q.Page, q.PageSize)
	return offset
}

func (q Query) Limit() int {
	_, limit := Calculate(q.Page, q.PageSize)
	return limit
}

func (q Query) Pages(total int64) int {
	return TotalPages(total, q.Limit())
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, All) {
		return nil
	}
	return &s
}

// finiteFloat rejects NaN and the infinities that strconv accepts.
func finiteFloat(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%q is not a finite number", s)
	}
	return v, nil
}

func intParam(name, s string, def int) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q is not an integer", ErrInvalidParam, name, s)
	}
	return v, nil
}
