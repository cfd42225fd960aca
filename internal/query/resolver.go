// internal/query/resolver.go
package query

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/javajoker/tailor-backend/internal/utils"
)

// Resolve returns a document that only names columns of c. Conditions on
// "<relation>.<field>" paths are grouped per relation, the child collection
// is queried for the matching ids, and each group becomes one Membership
// condition keyed by the relation name. Nested relations resolve depth first.
func Resolve(ctx context.Context, db *gorm.DB, c *Collection, doc *FilterDocument) (*FilterDocument, error) {
	out := NewFilterDocument()
	groups := make(map[string]*FilterDocument)
	var order []string

	for _, cond := range doc.Conditions() {
		if cond.Kind == Membership {
			if _, ok := c.Relations[cond.Path]; !ok {
				return nil, utils.Validation("unknown relation %q for %s", cond.Path, c.Name)
			}
			out.AddMembership(cond.Path, cond.IDs)
			continue
		}

		if _, ok := c.Fields[cond.Path]; ok {
			bound, err := c.bind(cond)
			if err != nil {
				return nil, err
			}
			if err := out.add(bound); err != nil {
				return nil, err
			}
			continue
		}

		name, rest, nested := strings.Cut(cond.Path, ".")
		if _, ok := c.Relations[name]; !nested || !ok {
			return nil, utils.Validation("unknown filter field %q for %s", cond.Path, c.Name)
		}
		group, ok := groups[name]
		if !ok {
			group = NewFilterDocument()
			groups[name] = group
			order = append(order, name)
		}
		child := *cond
		child.Path = rest
		if err := group.add(&child); err != nil {
			return nil, err
		}
	}

	for _, name := range order {
		rel := c.Relations[name]
		ids, err := matchingIDs(ctx, db, rel, groups[name])
		if err != nil {
			return nil, err
		}
		out.AddMembership(name, ids)
	}

	return out, nil
}

func matchingIDs(ctx context.Context, db *gorm.DB, rel Relation, group *FilterDocument) ([]string, error) {
	resolved, err := Resolve(ctx, db, rel.Child, group)
	if err != nil {
		return nil, err
	}

	ids := []string{}
	err = db.WithContext(ctx).
		Table(rel.Child.Table).
		Scopes(filterScope(rel.Child, resolved)).
		Where(rel.Remote+" IS NOT NULL").
		Distinct().
		Pluck(rel.Remote, &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s filter: %w", rel.Child.Name, err)
	}
	return ids, nil
}

// filterScope renders a resolved document as a conjunction of predicates.
func filterScope(c *Collection, doc *FilterDocument) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		for _, cond := range doc.Conditions() {
			switch cond.Kind {
			case Equality:
				db = db.Where(c.Fields[cond.Path].Column+" = ?", cond.Value)
			case Range:
				column := c.Fields[cond.Path].Column
				for _, op := range operatorOrder {
					if b, ok := cond.Bounds[op]; ok {
						db = db.Where(column+" "+op.SQL()+" ?", b.Value)
					}
				}
			case Membership:
				if len(cond.IDs) == 0 {
					db = db.Where("1 = 0")
					continue
				}
				db = db.Where(c.Relations[cond.Path].Local+" IN ?", cond.IDs)
			}
		}
		return db
	}
}
