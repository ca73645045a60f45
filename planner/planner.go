// Package planner lowers an ast.Query into a plan.Node tree, resolving
// catalog references along the way (spec.md §4.3). Traversal is
// post-order: FROM items are planned and folded into joins first, then
// WHERE wraps the result in a Selection, then the select list wraps it
// in a Projection.
//
// This plays the role the teacher's sql/analyzer table-resolution rule
// plays, narrowed to a single pass with no rewrite batch: spec.md's
// Non-goals exclude optimization beyond operator fusion, so there is no
// multi-rule analyzer here, just this one resolution+lowering pass.
package planner

import (
	"fmt"

	"github.com/streamql-io/streamql/ast"
	"github.com/streamql-io/streamql/catalog"
	"github.com/streamql-io/streamql/errs"
	"github.com/streamql-io/streamql/plan"
)

// Plan lowers query against cat, resolving every FromItem::Ident
// against the catalog. An unresolved relation or a duplicate
// projection key is a PlanError; the catalog itself is never mutated.
func Plan(cat *catalog.Catalog, query *ast.Query) (plan.Node, error) {
	base, err := planFrom(cat, query.FromItems)
	if err != nil {
		return nil, err
	}

	node := base
	if query.Where != nil {
		node = &plan.Selection{Condition: query.Where, Child: node}
	}

	if len(query.SelectItems) > 0 {
		items, err := projectionItems(query.SelectItems)
		if err != nil {
			return nil, err
		}
		node = &plan.Projection{Items: items, Child: node}
	}

	return node, nil
}

// planFrom folds FromItems left-to-right into nested FullJoin nodes.
// Zero items plans to Empty; a single item skips the join wrapper.
func planFrom(cat *catalog.Catalog, items []ast.FromItem) (plan.Node, error) {
	if len(items) == 0 {
		return &plan.Empty{}, nil
	}

	node, err := planFromItem(cat, items[0])
	if err != nil {
		return nil, err
	}

	for _, item := range items[1:] {
		next, err := planFromItem(cat, item)
		if err != nil {
			return nil, err
		}
		node = &plan.FullJoin{Left: node, Right: next}
	}

	return node, nil
}

func planFromItem(cat *catalog.Catalog, item ast.FromItem) (plan.Node, error) {
	switch f := item.(type) {
	case *ast.IdentFrom:
		descriptor, ok := cat.LookupRelation(f.Name)
		if !ok {
			return nil, errs.NewPlanError(fmt.Sprintf("unrecognized relation %s", f.Name))
		}
		stream, ok := descriptor.(catalog.StreamRelation)
		if !ok {
			return nil, errs.NewPlanError(fmt.Sprintf("unrecognized relation %s", f.Name))
		}
		return &plan.StreamScan{StreamName: stream.StreamName, ConsumerARN: stream.ConsumerARN}, nil

	case *ast.ValuesFrom:
		return &plan.ValuesScan{Rows: f.Rows}, nil

	case *ast.SubQueryFrom:
		return Plan(cat, f.Query)

	default:
		return nil, errs.NewPlanError(fmt.Sprintf("unrecognized from item %T", item))
	}
}

// projectionItems computes the output key for each select item per the
// four key rules of spec.md §4.3 (alias, bare identifier, function
// name, column<i>) and rejects duplicate keys.
func projectionItems(items []ast.SelectItem) ([]plan.ProjectItem, error) {
	out := make([]plan.ProjectItem, 0, len(items))
	seen := make(map[string]bool, len(items))

	for i, item := range items {
		var key string
		var expr ast.Expr

		switch it := item.(type) {
		case *ast.NamedExprItem:
			key = it.Alias
			expr = it.Expr
		case *ast.ExprItem:
			expr = it.Expr
			switch e := it.Expr.(type) {
			case *ast.Ident:
				key = e.Name
			case *ast.FunctionCall:
				key = e.Name
			default:
				key = fmt.Sprintf("column%d", i)
			}
		default:
			return nil, errs.NewPlanError(fmt.Sprintf("unrecognized select item %T", item))
		}

		if seen[key] {
			return nil, errs.NewPlanError(fmt.Sprintf("%s already defined in select items", key))
		}
		seen[key] = true
		out = append(out, plan.ProjectItem{Key: key, Expr: expr})
	}

	return out, nil
}
