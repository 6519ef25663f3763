package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/ejjays/assets-management/apperrors"
	"github.com/ejjays/assets-management/models"
	"github.com/ejjays/assets-management/report"
	"github.com/ejjays/assets-management/stats"
	"github.com/ejjays/assets-management/utils"
)

// AssetStats answers with the dashboard aggregates over the whole inventory.
func (h *AssetHandler) AssetStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.storeContext(r)
	defer cancel()

	assets, err := h.repo.ListAll(ctx)
	if err != nil {
		h.storageFailure(w, r, "list assets for stats", err, "Failed to compute statistics")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, stats.Summarize(assets))
}

// ExportAssets downloads the inventory as json (default), csv or pdf.
func (h *AssetHandler) ExportAssets(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = "json"
	}
	if format != "json" && format != "csv" && format != "pdf" {
		utils.RespondWithError(w, http.StatusBadRequest, "format must be json, csv or pdf")
		return
	}

	ctx, cancel := h.storeContext(r)
	defer cancel()

	assets, err := h.repo.ListAll(ctx)
	if err != nil {
		h.storageFailure(w, r, "list assets for export", err, "Failed to export assets")
		return
	}

	now := h.now()
	filename := fmt.Sprintf("assets-%s.%s", now.Format("20060102"), format)

	var (
		buf         bytes.Buffer
		contentType string
	)
	switch format {
	case "csv":
		contentType = "text/csv; charset=utf-8"
		err = report.WriteCSV(&buf, assets)
	case "pdf":
		contentType = "application/pdf"
		err = report.WritePDF(&buf, assets, now)
	default:
		if assets == nil {
			assets = []models.Asset{}
		}
		w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
		utils.RespondWithJSON(w, http.StatusOK, assets)
		return
	}
	if err != nil {
		h.storageFailure(w, r, "render export", err, "Failed to export assets")
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// AssetQRCode renders a QR label pointing at the asset's detail page, as a
// PNG or, with ?format=pdf, a printable label.
func (h *AssetHandler) AssetQRCode(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(mux.Vars(r)["id"])

	ctx, cancel := h.storeContext(r)
	defer cancel()

	a, err := h.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "Asset not found")
			return
		}
		h.storageFailure(w, r, "find asset for label", err, "Failed to generate label")
		return
	}

	target := report.AssetURL(h.opts.PublicBaseURL, a.ID)

	if strings.EqualFold(r.URL.Query().Get("format"), "pdf") {
		pdf, err := report.LabelPDF(a, target)
		if err != nil {
			h.storageFailure(w, r, "render label", err, "Failed to generate label")
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `inline; filename="asset-`+a.ID+`.pdf"`)
		w.Write(pdf)
		return
	}

	size := report.DefaultQRSize
	if s := r.URL.Query().Get("size"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 64 || n > 1024 {
			utils.RespondWithError(w, http.StatusBadRequest, "size must be between 64 and 1024")
			return
		}
		size = n
	}
	png, err := report.QRCodePNG(target, size)
	if err != nil {
		h.storageFailure(w, r, "render qr code", err, "Failed to generate label")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}
