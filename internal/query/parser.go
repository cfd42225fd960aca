// internal/query/parser.go

// Package query turns list-endpoint query strings into gorm queries.
//
// A request such as
//
//	?name=shirt&filter.defaultVariant.price[gte]=100&sort_by=price-ascending&page=2
//
// is parsed into Params, checked against a Collection, and applied by a
// Query in the order search, filter, sort, paginate.
package query

import (
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/javajoker/tailor-backend/internal/utils"
)

const FilterPrefix = "filter."

// Reserved query keys consumed by the composer's other stages.
const (
	KeySortBy = "sort_by"
	KeyPage   = "page"
	KeyLimit  = "limit"
	KeyName   = "name"
)

var (
	filterKeyPattern = regexp.MustCompile(`^filter\.([A-Za-z_][A-Za-z0-9_]*(?:\.[A-Za-z_][A-Za-z0-9_]*)*)(?:\[(gte|lte|gt|lt)\])?$`)
	numberPattern    = regexp.MustCompile(`^[-+]?(\d+\.?\d*|\.\d+)([eE][-+]?\d+)?$`)
)

type Operator string

const (
	OpGT  Operator = "gt"
	OpGTE Operator = "gte"
	OpLT  Operator = "lt"
	OpLTE Operator = "lte"
)

// operatorOrder fixes the order range bounds are rendered in.
var operatorOrder = []Operator{OpGT, OpGTE, OpLT, OpLTE}

func (o Operator) SQL() string {
	switch o {
	case OpGT:
		return ">"
	case OpGTE:
		return ">="
	case OpLT:
		return "<"
	default:
		return "<="
	}
}

type ConditionKind int

const (
	Equality ConditionKind = iota
	Range
	Membership
)

func (k ConditionKind) String() string {
	switch k {
	case Equality:
		return "equality"
	case Range:
		return "range"
	default:
		return "membership"
	}
}

// Bound is one side of a range. Value is a float64 when Raw looks numeric.
type Bound struct {
	Value interface{}
	Raw   string
}

// Condition is one entry of a FilterDocument. Which fields are set depends
// on Kind: Value/Raw for Equality, Bounds for Range, IDs for Membership.
type Condition struct {
	Path   string
	Kind   ConditionKind
	Value  interface{}
	Raw    string
	Bounds map[Operator]Bound
	IDs    []string
}

// FilterDocument keeps at most one condition per path, in insertion order.
type FilterDocument struct {
	conditions []*Condition
	index      map[string]int
}

func NewFilterDocument() *FilterDocument {
	return &FilterDocument{index: make(map[string]int)}
}

func (d *FilterDocument) Len() int {
	if d == nil {
		return 0
	}
	return len(d.conditions)
}

func (d *FilterDocument) Conditions() []*Condition {
	if d == nil {
		return nil
	}
	return d.conditions
}

func (d *FilterDocument) Get(path string) (*Condition, bool) {
	if d == nil {
		return nil, false
	}
	i, ok := d.index[path]
	if !ok {
		return nil, false
	}
	return d.conditions[i], true
}

// AddEquality records path = raw.
func (d *FilterDocument) AddEquality(path, raw string) error {
	if existing, ok := d.Get(path); ok {
		if existing.Kind == Equality && existing.Raw == raw {
			return nil
		}
		return utils.Validation("conflicting filters on %s", path)
	}
	d.put(&Condition{Path: path, Kind: Equality, Value: coerce(raw), Raw: raw})
	return nil
}

// AddBound merges op into the range on path, creating it if needed.
func (d *FilterDocument) AddBound(path string, op Operator, raw string) error {
	existing, ok := d.Get(path)
	if !ok {
		existing = &Condition{Path: path, Kind: Range, Bounds: make(map[Operator]Bound)}
		d.put(existing)
	}
	if existing.Kind != Range {
		return utils.Validation("conflicting filters on %s", path)
	}
	existing.Bounds[op] = Bound{Value: coerce(raw), Raw: raw}
	return nil
}

// AddMembership replaces whatever condition path had with an id set. An
// empty set is kept: it matches nothing.
func (d *FilterDocument) AddMembership(path string, ids []string) {
	if ids == nil {
		ids = []string{}
	}
	cond := &Condition{Path: path, Kind: Membership, IDs: ids}
	if i, ok := d.index[path]; ok {
		d.conditions[i] = cond
		return
	}
	d.put(cond)
}

func (d *FilterDocument) add(cond *Condition) error {
	switch cond.Kind {
	case Equality:
		return d.AddEquality(cond.Path, cond.Raw)
	case Range:
		for _, op := range operatorOrder {
			if b, ok := cond.Bounds[op]; ok {
				if err := d.AddBound(cond.Path, op, b.Raw); err != nil {
					return err
				}
			}
		}
		return nil
	default:
		d.AddMembership(cond.Path, cond.IDs)
		return nil
	}
}

func (d *FilterDocument) put(cond *Condition) {
	d.index[cond.Path] = len(d.conditions)
	d.conditions = append(d.conditions, cond)
}

// Params is a parsed list request.
type Params struct {
	Search  string
	SortBy  string
	Page    int
	Filters *FilterDocument
}

// Parse reads the list-endpoint grammar from values. Keys outside the filter
// namespace are ignored; a malformed filter key is a validation error.
func Parse(values url.Values) (*Params, error) {
	params := &Params{
		Search:  strings.TrimSpace(values.Get(KeyName)),
		SortBy:  values.Get(KeySortBy),
		Page:    utils.NormalizePage(values.Get(KeyPage)),
		Filters: NewFilterDocument(),
	}

	keys := make([]string, 0, len(values))
	for key := range values {
		if strings.HasPrefix(key, FilterPrefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	for _, key := range keys {
		m := filterKeyPattern.FindStringSubmatch(key)
		if m == nil {
			return nil, utils.Validation("malformed filter parameter %q", key)
		}
		path, op, raw := m[1], Operator(m[2]), values.Get(key)

		var err error
		if op == "" {
			err = params.Filters.AddEquality(path, raw)
		} else {
			err = params.Filters.AddBound(path, op, raw)
		}
		if err != nil {
			return nil, err
		}
	}

	return params, nil
}

// coerce turns numeric-looking text into a float64.
func coerce(raw string) interface{} {
	s := strings.TrimSpace(raw)
	if numberPattern.MatchString(s) {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}
	return raw
}
