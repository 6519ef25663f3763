// Package repository is the only code allowed to talk to the document store.
// It owns id generation and the translation between stored documents and
// models.Asset; ids leave this package as opaque strings.
package repository

import (
	"context"

	"github.com/ejjays/assets-management/models"
)

type PatchOutcome int

const (
	PatchUpdated PatchOutcome = iota + 1
	PatchNotFound
	PatchNoOp
)

func (o PatchOutcome) String() string {
	switch o {
	case PatchUpdated:
		return "updated"
	case PatchNotFound:
		return "not_found"
	case PatchNoOp:
		return "no_op"
	default:
		return "unknown"
	}
}

type RemoveOutcome int

const (
	RemoveDeleted RemoveOutcome = iota + 1
	RemoveNotFound
)

func (o RemoveOutcome) String() string {
	switch o {
	case RemoveDeleted:
		return "deleted"
	case RemoveNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// AssetRepository translates CRUD intents into document store operations.
// Errors returned are wrapped apperrors kinds, never raw driver errors.
type AssetRepository interface {
	ListAll(ctx context.Context) ([]models.Asset, error)
	Insert(ctx context.Context, draft models.AssetDraft) (models.Asset, error)
	Patch(ctx context.Context, id string, patch models.AssetPatch) (PatchOutcome, error)
	Remove(ctx context.Context, id string) (RemoveOutcome, error)
	FindByID(ctx context.Context, id string) (models.Asset, error)
	Count(ctx context.Context) (int64, error)
}
