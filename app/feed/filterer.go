package feed

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
)

// Filterer marks candidates that a feed's include/exclude rules reject.
// Matching is a case-folded substring test.
type Filterer struct{}

func NewFilterer() *Filterer {
	return &Filterer{}
}

type filterRule struct {
	field    string
	value    func(Item) string
	includes []string
	excludes []string
}

var filterFields = map[string]func(Item) string{
	"title":       func(i Item) string { return i.Title },
	"description": func(i Item) string { return i.Description },
	"link":        func(i Item) string { return i.Link },
	"authors":     func(i Item) string { return strings.Join(i.Authors, " ") },
	"categories":  func(i Item) string { return strings.Join(i.Categories, " ") },
}

// Run returns items with IsFiltered and FilterReason set. Rules apply in
// declaration order and the first rejecting rule gives the reason.
func (f *Filterer) Run(items []Item, source Source) []Item {
	if len(source.Filters) == 0 {
		return items
	}

	// A Caser keeps state, so each run folds with its own.
	fold := cases.Fold()
	rules := compileRules(source.Filters, fold)

	result := make([]Item, 0, len(items))
	for _, item := range items {
		item.IsFiltered, item.FilterReason = false, ""
		for _, rule := range rules {
			if reason, rejected := rule.reject(fold.String(rule.value(item))); rejected {
				item.IsFiltered, item.FilterReason = true, reason
				break
			}
		}
		result = append(result, item)
	}

	return result
}

func compileRules(filters []SourceFilter, fold cases.Caser) []filterRule {
	rules := make([]filterRule, 0, len(filters))
	for _, filter := range filters {
		value, ok := filterFields[filter.Field]
		if !ok {
			// Unknown fields match nothing, so only their includes can reject.
			value = func(Item) string { return "" }
		}

		rule := filterRule{field: filter.Field, value: value}
		for _, s := range filter.Includes {
			rule.includes = append(rule.includes, fold.String(s))
		}
		for _, s := range filter.Excludes {
			rule.excludes = append(rule.excludes, fold.String(s))
		}
		rules = append(rules, rule)
	}
	return rules
}

// reject checks excludes before includes.
func (r filterRule) reject(value string) (string, bool) {
	for _, exclude := range r.excludes {
		if strings.Contains(value, exclude) {
			return fmt.Sprintf("excluded by %s filter: contains '%s'", r.field, exclude), true
		}
	}

	if len(r.includes) == 0 {
		return "", false
	}
	for _, include := range r.includes {
		if strings.Contains(value, include) {
			return "", false
		}
	}
	return fmt.Sprintf("excluded by %s filter: does not contain any of %v", r.field, r.includes), true
}
