package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ejjays/assets-management/apperrors"
	"github.com/ejjays/assets-management/models"
	"github.com/ejjays/assets-management/utils"
)

// assetPayload is the wire shape shared by create and update. Value stays raw
// because clients send it either as a number or as a numeric string.
type assetPayload struct {
	ID              string                 `json:"id"`
	LegacyID        string                 `json:"_id"`
	Name            *string                `json:"name"`
	Category        *string                `json:"category"`
	Status          *string                `json:"status"`
	Location        *string                `json:"location"`
	AssignedTo      *string                `json:"assignedTo"`
	PurchaseDate    *string                `json:"purchaseDate"`
	WarrantyEndDate *string                `json:"warrantyEndDate"`
	Value           json.RawMessage        `json:"value"`
	SerialNumber    *string                `json:"serialNumber"`
	Manufacturer    *string                `json:"manufacturer"`
	Model           *string                `json:"model"`
	Description     *string                `json:"description"`
	History         *[]models.HistoryEntry `json:"history"`
}

func (p assetPayload) assetID() string {
	if id := strings.TrimSpace(p.ID); id != "" {
		return id
	}
	return strings.TrimSpace(p.LegacyID)
}

func (p assetPayload) hasValue() bool {
	v := bytes.TrimSpace(p.Value)
	return len(v) > 0 && !bytes.Equal(v, []byte("null"))
}

func (p assetPayload) toDraft() (models.AssetDraft, error) {
	d := models.AssetDraft{
		Name:            trimmed(p.Name),
		Category:        trimmed(p.Category),
		Status:          trimmed(p.Status),
		Location:        deref(p.Location),
		AssignedTo:      deref(p.AssignedTo),
		PurchaseDate:    trimmed(p.PurchaseDate),
		WarrantyEndDate: trimmed(p.WarrantyEndDate),
		SerialNumber:    deref(p.SerialNumber),
		Manufacturer:    deref(p.Manufacturer),
		Model:           deref(p.Model),
		Description:     deref(p.Description),
	}
	if p.History != nil {
		d.History = *p.History
	}
	if p.hasValue() {
		v, err := utils.ParseAmount(p.Value)
		if err != nil {
			return models.AssetDraft{}, err
		}
		d.Value = v
	}
	return d, nil
}

// toPatch builds the partial update. A bad value is reported through
// valueErr so the caller can decide whether to drop it or reject the request.
func (p assetPayload) toPatch() (patch models.AssetPatch, valueErr error) {
	patch = models.AssetPatch{
		Name:            p.Name,
		Category:        p.Category,
		Status:          p.Status,
		Location:        p.Location,
		AssignedTo:      p.AssignedTo,
		PurchaseDate:    p.PurchaseDate,
		WarrantyEndDate: p.WarrantyEndDate,
		SerialNumber:    p.SerialNumber,
		Manufacturer:    p.Manufacturer,
		Model:           p.Model,
		Description:     p.Description,
		History:         p.History,
	}.Trimmed()
	if p.hasValue() {
		v, err := utils.ParseAmount(p.Value)
		if err != nil {
			return patch, err
		}
		patch.Value = &v
	}
	return patch, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func trimmed(s *string) string { return strings.TrimSpace(deref(s)) }

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// invalid converts a validator failure into an ErrInvalidArgument with a
// message naming the first offending field.
func invalid(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err)
	}
	fe := verrs[0]
	var msg string
	switch fe.Tag() {
	case "required":
		msg = fe.Field() + " is required"
	case "min":
		msg = fe.Field() + " must not be empty"
	case "datetime":
		msg = fe.Field() + " must be a date in YYYY-MM-DD format"
	case "gte":
		msg = fe.Field() + " must not be negative"
	default:
		msg = fe.Field() + " is invalid"
	}
	return fmt.Errorf("%w: %s", apperrors.ErrInvalidArgument, msg)
}

func checkTaxonomy(tax models.Taxonomy, category, status *string) error {
	if category != nil && !tax.HasCategory(*category) {
		return fmt.Errorf("%w: unknown category %q", apperrors.ErrInvalidArgument, *category)
	}
	if status != nil && !tax.HasStatus(*status) {
		return fmt.Errorf("%w: unknown status %q", apperrors.ErrInvalidArgument, *status)
	}
	return nil
}
