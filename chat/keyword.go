package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/ejjays/assets-management/models"
	"github.com/ejjays/assets-management/stats"
)

const maxTableRows = 20

// KeywordAdvisor answers from canned templates chosen by keywords. It is the
// fallback when no hosted model is configured or reachable.
type KeywordAdvisor struct{}

func (KeywordAdvisor) Advise(_ context.Context, message string, assets []models.Asset) (string, error) {
	q := strings.ToLower(strings.TrimSpace(message))

	switch {
	case containsAny(q, "low stock", "stock level", "inventory level"):
		return lowStock(assets), nil
	case containsAny(q, "maintenance", "repair", "broken", "service"):
		return inRepair(assets), nil
	case containsAny(q, "value", "worth", "cost", "price"):
		return valuation(assets), nil
	case containsAny(q, "categor", "breakdown"):
		return categories(assets), nil
	case containsAny(q, "find ", "search ", "where is", "look for"):
		return search(searchTerm(q), assets), nil
	case containsAny(q, "all assets", "show all", "list", "inventory"):
		return table("All assets", assets), nil
	case containsAny(q, "summary", "overview", "status", "how many"):
		return summary(assets), nil
	}

	// A bare noun such as "laptops" is treated as a search.
	if term := singular(q); term != "" && len(matching(term, assets)) > 0 {
		return search(term, assets), nil
	}
	return help(len(assets)), nil
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func searchTerm(q string) string {
	for _, prefix := range []string{"find ", "search for ", "search ", "where is ", "look for "} {
		if i := strings.Index(q, prefix); i >= 0 {
			return singular(strings.Trim(q[i+len(prefix):], " ?!."))
		}
	}
	return singular(q)
}

func singular(s string) string {
	s = strings.Trim(s, " ?!.")
	if len(s) > 3 && strings.HasSuffix(s, "s") && !strings.HasSuffix(s, "ss") {
		return s[:len(s)-1]
	}
	return s
}

func matching(term string, assets []models.Asset) []models.Asset {
	var out []models.Asset
	for _, a := range assets {
		hay := strings.ToLower(a.Name + " " + a.Category + " " + a.Manufacturer + " " + a.Model + " " + a.Description)
		if strings.Contains(hay, term) {
			out = append(out, a)
		}
	}
	return out
}

func search(term string, assets []models.Asset) string {
	found := matching(term, assets)
	if len(found) == 0 {
		return fmt.Sprintf("# 🔍 No matches\n\nNo asset matching **%s** was found in the current database.", term)
	}
	return table(fmt.Sprintf("🔍 Assets matching \"%s\"", term), found)
}

func table(title string, assets []models.Asset) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)
	if len(assets) == 0 {
		b.WriteString("*The inventory is empty.*")
		return b.String()
	}
	b.WriteString("| ID | Name | Category | Status | Assigned | Value |\n")
	b.WriteString("|---|---|---|---|---|---|\n")
	for i, a := range assets {
		if i == maxTableRows {
			fmt.Fprintf(&b, "\n*…and %d more.*", len(assets)-maxTableRows)
			break
		}
		fmt.Fprintf(&b, "| `%s` | **%s** | %s | %s | %s | $%.2f |\n", a.ID, a.Name, a.Category, a.Status, a.AssignedTo, a.Value)
	}
	return b.String()
}

func summary(assets []models.Asset) string {
	s := stats.Summarize(assets)
	return fmt.Sprintf("# 📊 Inventory overview\n\n- **Total assets:** %d\n- **In use:** %d\n- **In storage:** %d\n- **In repair:** %d\n- **Decommissioned:** %d\n- **Total value:** $%.2f",
		s.TotalAssets, s.InUse, s.InStorage, s.InRepair, s.Decommissioned, s.TotalValue)
}

func valuation(assets []models.Asset) string {
	s := stats.Summarize(assets)
	var b strings.Builder
	fmt.Fprintf(&b, "# 📈 Asset value\n\nTotal value of **%d** assets: **$%.2f**\n\n", s.TotalAssets, s.TotalValue)
	for _, c := range s.Categories {
		fmt.Fprintf(&b, "- **%s**: $%.2f across %d assets\n", c.Name, c.TotalValue, c.Count)
	}
	return strings.TrimRight(b.String(), "\n")
}

func categories(assets []models.Asset) string {
	s := stats.Summarize(assets)
	var b strings.Builder
	b.WriteString("# Category breakdown\n\n")
	if len(s.Categories) == 0 {
		b.WriteString("*No assets yet.*")
		return b.String()
	}
	for _, c := range s.Categories {
		fmt.Fprintf(&b, "- **%s**: %d assets\n", c.Name, c.Count)
	}
	return strings.TrimRight(b.String(), "\n")
}

func inRepair(assets []models.Asset) string {
	var due []models.Asset
	for _, a := range assets {
		if a.Status == stats.StatusInRepair || a.Status == "Maintenance" {
			due = append(due, a)
		}
	}
	if len(due) == 0 {
		return "# 🔧 Maintenance\n\n✅ No assets are currently in repair."
	}
	return table("🔧 Assets in repair", due)
}

func lowStock(assets []models.Asset) string {
	s := stats.Summarize(assets)
	supplies := 0
	for _, c := range s.Categories {
		if c.Name == stats.LowStockCategory {
			supplies = c.Count
		}
	}
	if s.LowStockAlerts > 0 {
		return fmt.Sprintf("# ⚠️ Low stock\n\n> Only **%d** %s items are on record (threshold %d). Consider restocking.",
			supplies, stats.LowStockCategory, stats.LowStockThreshold)
	}
	return fmt.Sprintf("# ✅ Stock levels\n\n%d %s items on record; no low stock alerts.", supplies, stats.LowStockCategory)
}

func help(n int) string {
	return fmt.Sprintf(`# Asset Assistant 🤖

I can answer questions about your **%d** assets.

## Try asking:
- *"Show all assets"*
- *"Find laptops"*
- *"Check low stock"*
- *"What needs maintenance?"*
- *"What is the total value?"*`, n)
}
