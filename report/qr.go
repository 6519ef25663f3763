package report

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/jung-kurt/gofpdf"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/ejjays/assets-management/models"
)

const DefaultQRSize = 256

// AssetURL is the detail page an asset label points at.
func AssetURL(baseURL, id string) string {
	return strings.TrimRight(baseURL, "/") + "/asset/" + url.PathEscape(id)
}

// QRCodePNG encodes target as a PNG of size x size pixels.
func QRCodePNG(target string, size int) ([]byte, error) {
	if size <= 0 {
		size = DefaultQRSize
	}
	png, err := qrcode.Encode(target, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("encode qr code: %w", err)
	}
	return png, nil
}

// LabelPDF renders a printable label with the asset's QR code and key fields.
func LabelPDF(a models.Asset, target string) ([]byte, error) {
	png, err := QRCodePNG(target, 512)
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.New("P", "mm", "A6", "")
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Arial", "B", 14)
	pdf.MultiCell(0, 7, tr(a.Name), "", "C", false)
	pdf.Ln(2)

	opt := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: true}
	pdf.RegisterImageOptionsReader("qr", opt, bytes.NewReader(png))
	// A6 is 105mm wide
	pdf.ImageOptions("qr", (105.0-60.0)/2, pdf.GetY(), 60, 60, true, opt, 0, "")

	pdf.SetFont("Arial", "", 9)
	lines := []string{
		"ID: " + a.ID,
		"Category: " + a.Category,
		"Status: " + a.Status,
	}
	if a.SerialNumber != "" {
		lines = append(lines, "Serial: "+a.SerialNumber)
	}
	pdf.MultiCell(0, 5, tr(strings.Join(lines, "\n")), "", "C", false)

	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
