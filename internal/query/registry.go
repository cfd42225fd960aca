// internal/query/registry.go
package query

import (
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/javajoker/tailor-backend/internal/utils"
)

type FieldKind int

const (
	String FieldKind = iota
	Number
	Bool
	UUID
)

// Field maps a filterable name to its qualified column.
type Field struct {
	Column string
	Kind   FieldKind
}

// Relation links a parent to a child collection: rows of the parent match
// when Local is one of the Remote values of matching child rows.
type Relation struct {
	Local  string
	Remote string
	Child  *Collection
}

// SortPreset is a named ordering. Join is added to the query when set.
type SortPreset struct {
	Order string
	Join  string
}

// Collection describes what may be searched, filtered and sorted on a table.
// Only columns registered here ever reach SQL.
type Collection struct {
	Name         string
	Table        string
	SearchColumn string
	Fields       map[string]Field
	Relations    map[string]Relation
	Sorts        map[string]SortPreset
	DefaultSort  string
}

func (c *Collection) sortPreset(name string) SortPreset {
	if preset, ok := c.Sorts[name]; ok {
		return preset
	}
	return c.Sorts[c.DefaultSort]
}

// bind checks cond against the field it names and converts its values to
// the column's type.
func (c *Collection) bind(cond *Condition) (*Condition, error) {
	field, ok := c.Fields[cond.Path]
	if !ok {
		return nil, utils.Validation("unknown filter field %q for %s", cond.Path, c.Name)
	}

	switch cond.Kind {
	case Equality:
		v, err := convert(field.Kind, cond.Path, cond.Value, cond.Raw)
		if err != nil {
			return nil, err
		}
		return &Condition{Path: cond.Path, Kind: Equality, Value: v, Raw: cond.Raw}, nil
	case Range:
		if field.Kind != Number {
			return nil, utils.Validation("range filter is not supported on %s", cond.Path)
		}
		bounds := make(map[Operator]Bound, len(cond.Bounds))
		for op, b := range cond.Bounds {
			v, err := convert(field.Kind, cond.Path, b.Value, b.Raw)
			if err != nil {
				return nil, err
			}
			bounds[op] = Bound{Value: v, Raw: b.Raw}
		}
		return &Condition{Path: cond.Path, Kind: Range, Bounds: bounds}, nil
	default:
		return cond, nil
	}
}

func convert(kind FieldKind, path string, value interface{}, raw string) (interface{}, error) {
	switch kind {
	case Number:
		f, ok := value.(float64)
		if !ok {
			return nil, utils.Validation("%s must be a number", path)
		}
		return f, nil
	case Bool:
		b, err := strconv.ParseBool(strings.ToLower(strings.TrimSpace(raw)))
		if err != nil {
			return nil, utils.Validation("%s must be true or false", path)
		}
		return b, nil
	case UUID:
		id, err := uuid.Parse(strings.TrimSpace(raw))
		if err != nil {
			return nil, utils.Validation("Invalid %s: %s", path, raw)
		}
		return id.String(), nil
	default:
		return raw, nil
	}
}

var createdSorts = map[string]SortPreset{
	"created-ascending":  {Order: "created_at ASC"},
	"created-descending": {Order: "created_at DESC"},
}

func withTable(table string, presets map[string]SortPreset) map[string]SortPreset {
	out := make(map[string]SortPreset, len(presets))
	for name, p := range presets {
		out[name] = SortPreset{Order: table + "." + p.Order, Join: p.Join}
	}
	return out
}

func merge(sets ...map[string]SortPreset) map[string]SortPreset {
	out := make(map[string]SortPreset)
	for _, set := range sets {
		for name, p := range set {
			out[name] = p
		}
	}
	return out
}

const defaultVariantJoin = "LEFT JOIN variants AS dv ON dv.id = products.default_variant_id"

var Designs = &Collection{
	Name:         "designs",
	Table:        "designs",
	SearchColumn: "designs.design_name",
	Fields: map[string]Field{
		"id":         {Column: "designs.id", Kind: UUID},
		"designName": {Column: "designs.design_name", Kind: String},
	},
	Sorts:       withTable("designs", createdSorts),
	DefaultSort: "created-ascending",
}

var Fabrics = &Collection{
	Name:         "fabrics",
	Table:        "fabrics",
	SearchColumn: "fabrics.fabric_name",
	Fields: map[string]Field{
		"id":         {Column: "fabrics.id", Kind: UUID},
		"fabricName": {Column: "fabrics.fabric_name", Kind: String},
	},
	Sorts:       withTable("fabrics", createdSorts),
	DefaultSort: "created-ascending",
}

var Colors = &Collection{
	Name:         "colors",
	Table:        "colors",
	SearchColumn: "colors.color_name",
	Fields: map[string]Field{
		"id":        {Column: "colors.id", Kind: UUID},
		"colorName": {Column: "colors.color_name", Kind: String},
		"colorHex":  {Column: "colors.color_hex", Kind: String},
	},
	Sorts:       withTable("colors", createdSorts),
	DefaultSort: "created-ascending",
}

var Variants = &Collection{
	Name:  "variants",
	Table: "variants",
	Fields: map[string]Field{
		"id":        {Column: "variants.id", Kind: UUID},
		"price":     {Column: "variants.price", Kind: Number},
		"productId": {Column: "variants.product_id", Kind: UUID},
		"designId":  {Column: "variants.design_id", Kind: UUID},
		"fabricId":  {Column: "variants.fabric_id", Kind: UUID},
		"colorId":   {Column: "variants.color_id", Kind: UUID},
	},
	Relations: map[string]Relation{
		"design": {Local: "variants.design_id", Remote: "designs.id", Child: Designs},
		"fabric": {Local: "variants.fabric_id", Remote: "fabrics.id", Child: Fabrics},
		"color":  {Local: "variants.color_id", Remote: "colors.id", Child: Colors},
	},
	Sorts: merge(
		withTable("variants", createdSorts),
		map[string]SortPreset{
			"price-ascending":  {Order: "variants.price ASC"},
			"price-descending": {Order: "variants.price DESC"},
		},
	),
	DefaultSort: "created-ascending",
}

var Products = &Collection{
	Name:         "products",
	Table:        "products",
	SearchColumn: "products.product_name",
	Fields: map[string]Field{
		"id":               {Column: "products.id", Kind: UUID},
		"productName":      {Column: "products.product_name", Kind: String},
		"slug":             {Column: "products.slug", Kind: String},
		"defaultVariantId": {Column: "products.default_variant_id", Kind: UUID},
		"ratingsAverage":   {Column: "products.ratings_average", Kind: Number},
		"ratingsQuantity":  {Column: "products.ratings_quantity", Kind: Number},
		"viewCount":        {Column: "products.view_count", Kind: Number},
		"isActive":         {Column: "products.is_active", Kind: Bool},
		"isNewArrival":     {Column: "products.is_new_arrival", Kind: Bool},
		"isHotDeal":        {Column: "products.is_hot_deal", Kind: Bool},
		"isTrending":       {Column: "products.is_trending", Kind: Bool},
	},
	Relations: map[string]Relation{
		"defaultVariant": {Local: "products.default_variant_id", Remote: "variants.id", Child: Variants},
		"variants":       {Local: "products.id", Remote: "variants.product_id", Child: Variants},
	},
	Sorts: merge(
		withTable("products", createdSorts),
		map[string]SortPreset{
			"title-ascending":   {Order: "products.product_name ASC"},
			"title-descending":  {Order: "products.product_name DESC"},
			"price-ascending":   {Order: "dv.price ASC", Join: defaultVariantJoin},
			"price-descending":  {Order: "dv.price DESC", Join: defaultVariantJoin},
			"view-descending":   {Order: "products.view_count DESC"},
			"rating-descending": {Order: "products.ratings_average DESC"},
		},
	),
	DefaultSort: "created-descending",
}

var Reviews = &Collection{
	Name:  "reviews",
	Table: "reviews",
	Fields: map[string]Field{
		"rating":    {Column: "reviews.rating", Kind: Number},
		"userId":    {Column: "reviews.user_id", Kind: UUID},
		"productId": {Column: "reviews.product_id", Kind: UUID},
	},
	Sorts: merge(
		withTable("reviews", createdSorts),
		map[string]SortPreset{
			"rating-ascending":  {Order: "reviews.rating ASC"},
			"rating-descending": {Order: "reviews.rating DESC"},
		},
	),
	DefaultSort: "created-descending",
}
