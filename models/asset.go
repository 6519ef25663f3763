// models/asset.go
package models

import (
	"strings"
	"time"
)

const (
	DefaultLocation   = "Not specified"
	DefaultAssignedTo = "Unassigned"
)

// Asset is one inventory record. ID is opaque outside the repository.
type Asset struct {
	ID              string         `json:"id"`
	Name            string         `json:"name"`
	Category        string         `json:"category"`
	Status          string         `json:"status"`
	Location        string         `json:"location"`
	AssignedTo      string         `json:"assignedTo"`
	PurchaseDate    string         `json:"purchaseDate"`
	WarrantyEndDate string         `json:"warrantyEndDate,omitempty"`
	Value           float64        `json:"value"`
	SerialNumber    string         `json:"serialNumber,omitempty"`
	Manufacturer    string         `json:"manufacturer,omitempty"`
	Model           string         `json:"model,omitempty"`
	Description     string         `json:"description,omitempty"`
	History         []HistoryEntry `json:"history,omitempty"`
	CreatedAt       time.Time      `json:"createdAt"`
}

// HistoryEntry is a caller-maintained annotation; the store never appends to it.
type HistoryEntry struct {
	Action  string `json:"action"`
	Date    string `json:"date"`
	User    string `json:"user"`
	Details string `json:"details,omitempty"`
}

// AssetDraft is an asset payload that has not been assigned an id yet.
type AssetDraft struct {
	Name            string         `json:"name" validate:"required"`
	Category        string         `json:"category" validate:"required"`
	Status          string         `json:"status" validate:"required"`
	Location        string         `json:"location,omitempty"`
	AssignedTo      string         `json:"assignedTo,omitempty"`
	PurchaseDate    string         `json:"purchaseDate" validate:"required,datetime=2006-01-02"`
	WarrantyEndDate string         `json:"warrantyEndDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Value           float64        `json:"value" validate:"gte=0"`
	SerialNumber    string         `json:"serialNumber,omitempty"`
	Manufacturer    string         `json:"manufacturer,omitempty"`
	Model           string         `json:"model,omitempty"`
	Description     string         `json:"description,omitempty"`
	History         []HistoryEntry `json:"history,omitempty"`
}

// WithDefaults fills the optional free-text fields that have sentinel values.
func (d AssetDraft) WithDefaults() AssetDraft {
	if d.Location == "" {
		d.Location = DefaultLocation
	}
	if d.AssignedTo == "" {
		d.AssignedTo = DefaultAssignedTo
	}
	return d
}

// ToAsset builds the stored form of the draft under the given id.
func (d AssetDraft) ToAsset(id string, createdAt time.Time) Asset {
	return Asset{
		ID:              id,
		Name:            d.Name,
		Category:        d.Category,
		Status:          d.Status,
		Location:        d.Location,
		AssignedTo:      d.AssignedTo,
		PurchaseDate:    d.PurchaseDate,
		WarrantyEndDate: d.WarrantyEndDate,
		Value:           d.Value,
		SerialNumber:    d.SerialNumber,
		Manufacturer:    d.Manufacturer,
		Model:           d.Model,
		Description:     d.Description,
		History:         d.History,
		CreatedAt:       createdAt,
	}
}

// AssetPatch is a partial update. Nil fields are left untouched.
type AssetPatch struct {
	Name            *string         `json:"name,omitempty" validate:"omitempty,min=1"`
	Category        *string         `json:"category,omitempty" validate:"omitempty,min=1"`
	Status          *string         `json:"status,omitempty" validate:"omitempty,min=1"`
	Location        *string         `json:"location,omitempty"`
	AssignedTo      *string         `json:"assignedTo,omitempty"`
	PurchaseDate    *string         `json:"purchaseDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	WarrantyEndDate *string         `json:"warrantyEndDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Value           *float64        `json:"value,omitempty" validate:"omitempty,gte=0"`
	SerialNumber    *string         `json:"serialNumber,omitempty"`
	Manufacturer    *string         `json:"manufacturer,omitempty"`
	Model           *string         `json:"model,omitempty"`
	Description     *string         `json:"description,omitempty"`
	History         *[]HistoryEntry `json:"history,omitempty"`
}

// Trimmed returns p with surrounding whitespace removed from the identifying
// and date fields, the form in which they are stored.
func (p AssetPatch) Trimmed() AssetPatch {
	p.Name = trimPtr(p.Name)
	p.Category = trimPtr(p.Category)
	p.Status = trimPtr(p.Status)
	p.PurchaseDate = trimPtr(p.PurchaseDate)
	p.WarrantyEndDate = trimPtr(p.WarrantyEndDate)
	return p
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}

// IsEmpty reports whether the patch sets no field at all.
func (p AssetPatch) IsEmpty() bool {
	return p.Name == nil && p.Category == nil && p.Status == nil &&
		p.Location == nil && p.AssignedTo == nil && p.PurchaseDate == nil &&
		p.WarrantyEndDate == nil && p.Value == nil && p.SerialNumber == nil &&
		p.Manufacturer == nil && p.Model == nil && p.Description == nil &&
		p.History == nil
}

// Apply merges the patch into a and reports whether any field changed.
func (p AssetPatch) Apply(a *Asset) bool {
	changed := false
	setString := func(dst *string, src *string) {
		if src != nil && *dst != *src {
			*dst = *src
			changed = true
		}
	}
	setString(&a.Name, p.Name)
	setString(&a.Category, p.Category)
	setString(&a.Status, p.Status)
	setString(&a.Location, p.Location)
	setString(&a.AssignedTo, p.AssignedTo)
	setString(&a.PurchaseDate, p.PurchaseDate)
	setString(&a.WarrantyEndDate, p.WarrantyEndDate)
	setString(&a.SerialNumber, p.SerialNumber)
	setString(&a.Manufacturer, p.Manufacturer)
	setString(&a.Model, p.Model)
	setString(&a.Description, p.Description)
	if p.Value != nil && a.Value != *p.Value {
		a.Value = *p.Value
		changed = true
	}
	if p.History != nil && !historyEqual(a.History, *p.History) {
		a.History = append([]HistoryEntry(nil), (*p.History)...)
		changed = true
	}
	return changed
}

func historyEqual(a, b []HistoryEntry) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
