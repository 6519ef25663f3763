package chat

import (
	"fmt"
	"strings"
	"time"

	"github.com/ejjays/assets-management/models"
	"github.com/ejjays/assets-management/stats"
)

const formattingRules = `FORMATTING:
- Answer in Markdown with headers for sections.
- Put asset names, ids and key figures in **bold**.
- Use bullet or numbered lists for structured data and tables when comparing several assets.
- Put asset ids in inline code.
- Use blockquotes for warnings and recommendations.

GUIDELINES:
- Use only the inventory data above; it is the live database.
- If an asset is not in the list, say it was not found.
- Reference real ids and names, give accurate counts, and suggest management improvements where useful.
- Keep a professional, friendly tone.`

// BuildPrompt renders the system prompt sent to the hosted model.
func BuildPrompt(message string, assets []models.Asset, now time.Time) string {
	s := stats.Summarize(assets)

	var b strings.Builder
	b.WriteString("You are the assistant of an asset management system. You help users track their company assets and get insights about them.\n\n")

	fmt.Fprintf(&b, "LIVE INVENTORY (%s):\n", now.Format("2006-01-02 15:04 MST"))
	fmt.Fprintf(&b, "- Total assets: %d\n", s.TotalAssets)
	fmt.Fprintf(&b, "- In use: %d\n", s.InUse)
	fmt.Fprintf(&b, "- In storage: %d\n", s.InStorage)
	fmt.Fprintf(&b, "- In repair: %d\n", s.InRepair)
	fmt.Fprintf(&b, "- Decommissioned: %d\n", s.Decommissioned)
	fmt.Fprintf(&b, "- Total value: $%.2f\n\n", s.TotalValue)

	b.WriteString("CATEGORIES:\n")
	for _, c := range s.Categories {
		fmt.Fprintf(&b, "- %s: %d assets ($%.2f)\n", c.Name, c.Count, c.TotalValue)
	}

	b.WriteString("\nASSETS:\n")
	for _, a := range assets {
		fmt.Fprintf(&b, "- %s: %q | Category: %s | Status: %s | Assigned: %s | Value: $%.2f | Location: %s | Purchased: %s\n",
			a.ID, a.Name, a.Category, a.Status, a.AssignedTo, a.Value, orDefault(a.Location, models.DefaultLocation), a.PurchaseDate)
	}

	b.WriteString("\nMOST RECENT PURCHASES:\n")
	for _, a := range stats.RecentByPurchase(assets, 5) {
		fmt.Fprintf(&b, "- %s: %q (%s, %s, purchased %s)\n", a.ID, a.Name, a.Category, a.Status, a.PurchaseDate)
	}

	b.WriteString("\n")
	b.WriteString(formattingRules)
	fmt.Fprintf(&b, "\n\nUser question: %s", message)
	return b.String()
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
