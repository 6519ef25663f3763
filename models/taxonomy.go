// models/taxonomy.go
package models

import "strings"

var (
	DefaultCategories = []string{"Electronics", "Furniture", "Software", "Office Supplies"}
	DefaultStatuses   = []string{"Active", "In Use", "Maintenance", "In Repair", "In Storage", "Retired", "Decommissioned"}
)

// Taxonomy holds the deployment-configured category and status sets.
type Taxonomy struct {
	Categories []string `yaml:"categories" json:"categories"`
	Statuses   []string `yaml:"statuses" json:"statuses"`
}

func DefaultTaxonomy() Taxonomy {
	return Taxonomy{
		Categories: append([]string(nil), DefaultCategories...),
		Statuses:   append([]string(nil), DefaultStatuses...),
	}
}

// HasCategory matches case-sensitively; category names are display values.
func (t Taxonomy) HasCategory(c string) bool { return contains(t.Categories, c) }

func (t Taxonomy) HasStatus(s string) bool { return contains(t.Statuses, s) }

func contains(set []string, v string) bool {
	v = strings.TrimSpace(v)
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
