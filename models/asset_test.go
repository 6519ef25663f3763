package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestAssetPatchApply(t *testing.T) {
	a := Asset{ID: "a1", Name: "Projector", Category: "Electronics", Status: "Active", Value: 100}

	v := 250.0
	changed := AssetPatch{Status: strPtr("In Repair"), Value: &v}.Apply(&a)

	assert.True(t, changed)
	assert.Equal(t, "In Repair", a.Status)
	assert.Equal(t, 250.0, a.Value)
	assert.Equal(t, "Projector", a.Name)
	assert.Equal(t, "Electronics", a.Category)
}

func TestAssetPatchApplyNoChange(t *testing.T) {
	a := Asset{Name: "Chair", Status: "Active"}

	assert.False(t, AssetPatch{Name: strPtr("Chair")}.Apply(&a))
	assert.False(t, AssetPatch{}.Apply(&a))
}

func TestAssetPatchHistoryReplaces(t *testing.T) {
	a := Asset{History: []HistoryEntry{{Action: "Created", Date: "2024-01-01", User: "Admin"}}}
	h := []HistoryEntry{
		{Action: "Created", Date: "2024-01-01", User: "Admin"},
		{Action: "Assigned", Date: "2024-01-02", User: "Admin", Details: "Assigned to Jane Doe"},
	}

	assert.True(t, AssetPatch{History: &h}.Apply(&a))
	assert.Len(t, a.History, 2)
	assert.False(t, AssetPatch{History: &h}.Apply(&a))
}

func TestAssetPatchIsEmpty(t *testing.T) {
	assert.True(t, AssetPatch{}.IsEmpty())
	assert.False(t, AssetPatch{Location: strPtr("")}.IsEmpty())
}

func TestAssetPatchTrimmed(t *testing.T) {
	p := AssetPatch{Name: strPtr(" Desk "), PurchaseDate: strPtr("2024-01-02 "), Location: strPtr(" Hall ")}.Trimmed()
	assert.Equal(t, "Desk", *p.Name)
	assert.Equal(t, "2024-01-02", *p.PurchaseDate)
	assert.Equal(t, " Hall ", *p.Location)
	assert.Nil(t, p.Category)
}

func TestDraftDefaults(t *testing.T) {
	d := AssetDraft{Name: "Desk"}.WithDefaults()
	assert.Equal(t, DefaultLocation, d.Location)
	assert.Equal(t, DefaultAssignedTo, d.AssignedTo)

	d = AssetDraft{Location: "Floor 7", AssignedTo: "Jane Doe"}.WithDefaults()
	assert.Equal(t, "Floor 7", d.Location)
	assert.Equal(t, "Jane Doe", d.AssignedTo)
}

func TestTaxonomy(t *testing.T) {
	tx := DefaultTaxonomy()
	assert.True(t, tx.HasCategory("Electronics"))
	assert.True(t, tx.HasStatus("In Storage"))
	assert.False(t, tx.HasCategory("Vehicles"))
	assert.False(t, tx.HasStatus(""))
}
