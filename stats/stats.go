// Package stats computes the dashboard aggregates over an asset snapshot.
package stats

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/ejjays/assets-management/models"
)

const (
	StatusInUse       = "In Use"
	StatusInRepair    = "In Repair"
	StatusInStorage   = "In Storage"
	StatusRetired     = "Decommissioned"
	LowStockCategory  = "Office Supplies"
	LowStockThreshold = 5
)

type CategoryStat struct {
	Name       string  `json:"name"`
	Count      int     `json:"count"`
	TotalValue float64 `json:"totalValue"`
}

type Summary struct {
	TotalAssets    int            `json:"totalAssets"`
	TotalValue     float64        `json:"totalValue"`
	InUse          int            `json:"inUse"`
	InRepair       int            `json:"inRepair"`
	InStorage      int            `json:"inStorage"`
	Decommissioned int            `json:"decommissioned"`
	LowStockAlerts int            `json:"lowStockAlerts"`
	ByStatus       map[string]int `json:"byStatus"`
	Categories     []CategoryStat `json:"categories"`
}

// Summarize aggregates a snapshot. Status synonyms from older data
// ("Active", "Maintenance", "Retired") count towards the matching KPI.
func Summarize(assets []models.Asset) Summary {
	s := Summary{
		TotalAssets: len(assets),
		ByStatus:    make(map[string]int),
	}

	total := decimal.Zero
	cats := make(map[string]*categoryAcc)
	for _, a := range assets {
		v := decimal.NewFromFloat(a.Value)
		total = total.Add(v)
		s.ByStatus[a.Status]++

		switch a.Status {
		case StatusInUse, "Active":
			s.InUse++
		case StatusInRepair, "Maintenance":
			s.InRepair++
		case StatusInStorage:
			s.InStorage++
		case StatusRetired, "Retired":
			s.Decommissioned++
		}

		acc, ok := cats[a.Category]
		if !ok {
			acc = &categoryAcc{value: decimal.Zero}
			cats[a.Category] = acc
		}
		acc.count++
		acc.value = acc.value.Add(v)
	}

	s.TotalValue = total.Round(2).InexactFloat64()
	for name, acc := range cats {
		s.Categories = append(s.Categories, CategoryStat{
			Name:       name,
			Count:      acc.count,
			TotalValue: acc.value.Round(2).InexactFloat64(),
		})
	}
	sort.Slice(s.Categories, func(i, j int) bool {
		if s.Categories[i].Count != s.Categories[j].Count {
			return s.Categories[i].Count > s.Categories[j].Count
		}
		return s.Categories[i].Name < s.Categories[j].Name
	})

	supplies := 0
	if acc, ok := cats[LowStockCategory]; ok {
		supplies = acc.count
	}
	if supplies < LowStockThreshold {
		s.LowStockAlerts = 1
	}
	return s
}

type categoryAcc struct {
	count int
	value decimal.Decimal
}

// RecentByPurchase returns up to n assets, newest purchase date first.
// Dates are YYYY-MM-DD so string order is date order.
func RecentByPurchase(assets []models.Asset, n int) []models.Asset {
	sorted := append([]models.Asset(nil), assets...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].PurchaseDate > sorted[j].PurchaseDate
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
