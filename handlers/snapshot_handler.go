package handlers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/ejjays/assets-management/models"
	"github.com/ejjays/assets-management/repository"
	"github.com/ejjays/assets-management/snapshot"
	"github.com/ejjays/assets-management/utils"
)

type snapshotUploader interface {
	Upload(ctx context.Context, assets []models.Asset, at time.Time) (snapshot.Result, error)
}

// SnapshotHandler copies the collection to object storage on demand.
// A nil uploader means the feature is not configured.
type SnapshotHandler struct {
	repo     repository.AssetRepository
	uploader snapshotUploader
	timeout  time.Duration
	log      *zap.Logger
}

func NewSnapshotHandler(repo repository.AssetRepository, uploader *snapshot.Uploader, timeout time.Duration, log *zap.Logger) *SnapshotHandler {
	h := &SnapshotHandler{repo: repo, timeout: timeout, log: log}
	if uploader != nil {
		h.uploader = uploader
	}
	if h.timeout <= 0 {
		h.timeout = defaultStoreTimeout
	}
	return h
}

func (h *SnapshotHandler) CreateSnapshot(w http.ResponseWriter, r *http.Request) {
	if h.uploader == nil {
		utils.RespondWithError(w, http.StatusServiceUnavailable, "Snapshots are not configured")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	assets, err := h.repo.ListAll(ctx)
	if err != nil {
		h.log.Error("list assets for snapshot", zap.Error(err))
		utils.RespondWithAppError(w, err, "Failed to read assets")
		return
	}

	upCtx, upCancel := context.WithTimeout(r.Context(), h.timeout)
	defer upCancel()

	res, err := h.uploader.Upload(upCtx, assets, time.Now())
	if err != nil {
		h.log.Error("upload snapshot", zap.Error(err))
		utils.RespondWithError(w, http.StatusBadGateway, "Failed to upload snapshot")
		return
	}

	h.log.Info("snapshot stored", zap.String("key", res.Key), zap.Int("count", res.Count))
	utils.RespondWithJSON(w, http.StatusCreated, res)
}
