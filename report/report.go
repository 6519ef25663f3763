// Package report renders asset exports and QR labels.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/ejjays/assets-management/models"
	"github.com/ejjays/assets-management/stats"
)

var csvHeader = []string{
	"id", "name", "category", "status", "location", "assignedTo", "purchaseDate",
	"warrantyEndDate", "value", "serialNumber", "manufacturer", "model", "description",
}

// WriteCSV writes one row per asset under a fixed header.
func WriteCSV(w io.Writer, assets []models.Asset) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, a := range assets {
		row := []string{
			a.ID, a.Name, a.Category, a.Status, a.Location, a.AssignedTo, a.PurchaseDate,
			a.WarrantyEndDate, strconv.FormatFloat(a.Value, 'f', 2, 64), a.SerialNumber,
			a.Manufacturer, a.Model, a.Description,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// pdf column widths in mm, landscape A4 leaves 277mm between margins
var pdfColumns = []struct {
	title string
	width float64
}{
	{"Name", 62}, {"Category", 34}, {"Status", 30}, {"Location", 40},
	{"Assigned To", 40}, {"Purchased", 26}, {"Value", 30},
}

// WritePDF renders the inventory as a landscape table with a summary line.
func WritePDF(w io.Writer, assets []models.Asset, generatedAt time.Time) error {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetTitle("Asset Inventory", true)
	pdf.SetAutoPageBreak(true, 12)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	header := func() {
		pdf.SetFont("Arial", "B", 9)
		pdf.SetFillColor(230, 236, 245)
		for _, c := range pdfColumns {
			pdf.CellFormat(c.width, 7, c.title, "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 8)
	}
	pdf.SetHeaderFunc(func() {
		if pdf.PageNo() > 1 {
			header()
		}
	})

	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, "Asset Inventory")
	pdf.Ln(9)

	s := stats.Summarize(assets)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Generated %s  |  %d assets  |  Total value $%.2f",
		generatedAt.Format("2006-01-02 15:04 MST"), s.TotalAssets, s.TotalValue))
	pdf.Ln(9)

	header()
	for _, a := range assets {
		cells := []string{a.Name, a.Category, a.Status, a.Location, a.AssignedTo, a.PurchaseDate, fmt.Sprintf("$%.2f", a.Value)}
		for i, c := range pdfColumns {
			align := "L"
			if i == len(pdfColumns)-1 {
				align = "R"
			}
			pdf.CellFormat(c.width, 6, truncate(tr(cells[i]), c.width), "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	return pdf.Output(w)
}

// roughly 2mm per character at 8pt
func truncate(s string, width float64) string {
	limit := int(width / 1.8)
	if len(s) <= limit {
		return s
	}
	return strings.TrimSpace(s[:limit-1]) + "."
}
