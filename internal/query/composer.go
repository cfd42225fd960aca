// internal/query/composer.go
package query

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/javajoker/tailor-backend/internal/utils"
)

type scope = func(*gorm.DB) *gorm.DB

// Query composes the search, filter, sort and paginate stages. Stages may be
// called in any order; they are always applied base, search, filter, sort,
// paginate. The first stage error is kept and returned by Count and Find.
type Query struct {
	db         *gorm.DB
	collection *Collection
	params     *Params

	base     []scope
	preloads []scope
	search   scope
	filter   scope
	sort     scope
	paginate scope
	perPage  int
	err      error
}

func New(db *gorm.DB, c *Collection, params *Params) *Query {
	if params == nil {
		params = &Params{Page: 1, Filters: NewFilterDocument()}
	}
	return &Query{db: db, collection: c, params: params}
}

// Where adds a fixed predicate that applies before any stage.
func (q *Query) Where(query interface{}, args ...interface{}) *Query {
	q.base = append(q.base, func(db *gorm.DB) *gorm.DB {
		return db.Where(query, args...)
	})
	return q
}

// Preload loads an association on Find; args are passed to gorm's Preload.
func (q *Query) Preload(association string, args ...interface{}) *Query {
	q.preloads = append(q.preloads, func(db *gorm.DB) *gorm.DB {
		return db.Preload(association, args...)
	})
	return q
}

// Search matches the name term case-insensitively anywhere in the
// collection's search column. No term matches everything.
func (q *Query) Search() *Query {
	term := strings.ToLower(q.params.Search)
	if term == "" || q.collection.SearchColumn == "" {
		q.search = nil
		return q
	}
	pattern := "%" + escapeLike(term) + "%"
	column := q.collection.SearchColumn
	q.search = func(db *gorm.DB) *gorm.DB {
		return db.Where("LOWER("+column+") LIKE ? ESCAPE '\\'", pattern)
	}
	return q
}

// Filter resolves relation filters against their child collections now, so
// the parent predicates are fixed before Count or Find run.
func (q *Query) Filter(ctx context.Context) *Query {
	resolved, err := Resolve(ctx, q.db, q.collection, q.params.Filters)
	if err != nil {
		q.setErr(err)
		return q
	}
	q.filter = filterScope(q.collection, resolved)
	return q
}

func (q *Query) Sort() *Query {
	preset := q.collection.sortPreset(q.params.SortBy)
	table := q.collection.Table
	q.sort = func(db *gorm.DB) *gorm.DB {
		if preset.Join != "" {
			db = db.Select(table + ".*").Joins(preset.Join)
		}
		return db.Order(preset.Order).Order(table + ".id ASC")
	}
	return q
}

func (q *Query) Paginate(perPage int) *Query {
	if perPage < 1 {
		q.setErr(utils.Validation("page size must be positive"))
		return q
	}
	q.perPage = perPage
	offset := utils.Offset(q.params.Page, perPage)
	q.paginate = func(db *gorm.DB) *gorm.DB {
		return db.Offset(offset).Limit(perPage)
	}
	return q
}

func (q *Query) Page() int {
	return q.params.Page
}

func (q *Query) PerPage() int {
	return q.perPage
}

func (q *Query) Err() error {
	return q.err
}

// Count returns the number of rows matching base, search and filter; sort
// and pagination never affect it.
func (q *Query) Count(ctx context.Context) (int64, error) {
	if q.err != nil {
		return 0, q.err
	}
	var total int64
	err := q.db.WithContext(ctx).
		Table(q.collection.Table).
		Scopes(q.scopes(false)...).
		Count(&total).Error
	return total, err
}

// Find loads the current page into dest with the named associations.
func (q *Query) Find(ctx context.Context, dest interface{}, preloads ...string) error {
	if q.err != nil {
		return q.err
	}
	db := q.db.WithContext(ctx).Scopes(q.scopes(true)...).Scopes(q.preloads...)
	for _, p := range preloads {
		db = db.Preload(p)
	}
	return db.Find(dest).Error
}

func (q *Query) scopes(all bool) []scope {
	scopes := append([]scope{}, q.base...)
	stages := []scope{q.search, q.filter}
	if all {
		stages = append(stages, q.sort, q.paginate)
	}
	for _, s := range stages {
		if s != nil {
			scopes = append(scopes, s)
		}
	}
	return scopes
}

func (q *Query) setErr(err error) {
	if q.err == nil {
		q.err = err
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
