// Package seed fills an empty inventory with plausible demo assets.
package seed

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/ejjays/assets-management/models"
	"github.com/ejjays/assets-management/repository"
)

var productsByCategory = map[string][]string{
	"Electronics":     {"Laptop", "Monitor", "Projector", "Docking Station", "Printer", "Router"},
	"Furniture":       {"Desk", "Office Chair", "Filing Cabinet", "Bookshelf", "Conference Table"},
	"Software":        {"Design Suite License", "IDE License", "Antivirus Subscription", "Office Suite License"},
	"Office Supplies": {"Whiteboard", "Paper Shredder", "Stapler Set", "Label Maker"},
}

// Drafts generates n drafts whose category and status come from tax.
// The same seed always produces the same drafts.
func Drafts(seed uint64, tax models.Taxonomy, n int, now time.Time) []models.AssetDraft {
	f := gofakeit.New(seed)
	drafts := make([]models.AssetDraft, 0, n)
	for i := 0; i < n; i++ {
		category := f.RandomString(tax.Categories)
		product := f.ProductName()
		if names, ok := productsByCategory[category]; ok {
			product = f.RandomString(names)
		}
		maker := f.Company()
		purchased := f.DateRange(now.AddDate(-5, 0, 0), now)

		d := models.AssetDraft{
			Name:            maker + " " + product,
			Category:        category,
			Status:          f.RandomString(tax.Statuses),
			Location:        f.City() + " Office",
			AssignedTo:      f.Name(),
			PurchaseDate:    purchased.Format("2006-01-02"),
			WarrantyEndDate: purchased.AddDate(f.Number(1, 3), 0, 0).Format("2006-01-02"),
			Value:           math.Round(f.Price(20, 4000)*100) / 100,
			SerialNumber:    fmt.Sprintf("SN-%d", f.Number(100000, 999999)),
			Manufacturer:    maker,
			Model:           fmt.Sprintf("%s-%d", f.LetterN(2), f.Number(100, 999)),
			Description:     f.Sentence(8),
		}
		if f.Number(0, 4) == 0 {
			d.AssignedTo = ""
		}
		drafts = append(drafts, d.WithDefaults())
	}
	return drafts
}

// IfEmpty inserts drafts only when the repository holds no assets, and
// returns how many were inserted.
func IfEmpty(ctx context.Context, repo repository.AssetRepository, drafts []models.AssetDraft) (int, error) {
	n, err := repo.Count(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}
	for i, d := range drafts {
		if _, err := repo.Insert(ctx, d); err != nil {
			return i, err
		}
	}
	return len(drafts), nil
}
