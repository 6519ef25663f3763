package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ejjays/assets-management/apperrors"
	"github.com/ejjays/assets-management/models"
)

// MemoryAssetRepository keeps assets in process memory. It honours the same
// outcome contract as the Mongo repository and is used for local runs and tests.
type MemoryAssetRepository struct {
	mu     sync.RWMutex
	order  []string
	assets map[string]models.Asset
	now    func() time.Time
}

func NewMemoryAssetRepository() *MemoryAssetRepository {
	return &MemoryAssetRepository{
		assets: make(map[string]models.Asset),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

var _ AssetRepository = (*MemoryAssetRepository)(nil)

func (r *MemoryAssetRepository) ListAll(ctx context.Context) ([]models.Asset, error) {
	if err := ctx.Err(); err != nil {
		return nil, readError("list assets", err)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Asset, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, clone(r.assets[id]))
	}
	return out, nil
}

func (r *MemoryAssetRepository) Insert(ctx context.Context, draft models.AssetDraft) (models.Asset, error) {
	if err := ctx.Err(); err != nil {
		return models.Asset{}, writeError("insert asset", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	a := clone(draft.ToAsset(uuid.NewString(), r.now()))
	r.assets[a.ID] = a
	r.order = append(r.order, a.ID)
	return clone(a), nil
}

func (r *MemoryAssetRepository) Patch(ctx context.Context, id string, patch models.AssetPatch) (PatchOutcome, error) {
	if err := ctx.Err(); err != nil {
		return 0, writeError("update asset", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.assets[id]
	if !ok {
		return PatchNotFound, nil
	}
	if !patch.Apply(&a) {
		return PatchNoOp, nil
	}
	r.assets[id] = a
	return PatchUpdated, nil
}

func (r *MemoryAssetRepository) Remove(ctx context.Context, id string) (RemoveOutcome, error) {
	if err := ctx.Err(); err != nil {
		return 0, writeError("delete asset", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.assets[id]; !ok {
		return RemoveNotFound, nil
	}
	delete(r.assets, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return RemoveDeleted, nil
}

func (r *MemoryAssetRepository) FindByID(ctx context.Context, id string) (models.Asset, error) {
	if err := ctx.Err(); err != nil {
		return models.Asset{}, readError("find asset", err)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.assets[id]
	if !ok {
		return models.Asset{}, apperrors.ErrNotFound
	}
	return clone(a), nil
}

func (r *MemoryAssetRepository) Count(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, readError("count assets", err)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.assets)), nil
}

func clone(a models.Asset) models.Asset {
	if a.History != nil {
		a.History = append([]models.HistoryEntry(nil), a.History...)
	}
	return a
}
