package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/ejjays/assets-management/apperrors"
	"github.com/ejjays/assets-management/middleware"
	"github.com/ejjays/assets-management/models"
	"github.com/ejjays/assets-management/repository"
	"github.com/ejjays/assets-management/utils"
)

const defaultStoreTimeout = 10 * time.Second

// AssetOptions carries the deployment settings the asset endpoints depend on.
type AssetOptions struct {
	Taxonomy         models.Taxonomy
	StoreTimeout     time.Duration
	StrictValuePatch bool
	PublicBaseURL    string
}

// AssetHandler serves the /assets endpoints on top of a repository.
type AssetHandler struct {
	repo     repository.AssetRepository
	opts     AssetOptions
	validate *validator.Validate
	log      *zap.Logger
	now      func() time.Time
}

func NewAssetHandler(repo repository.AssetRepository, opts AssetOptions, log *zap.Logger) *AssetHandler {
	if opts.StoreTimeout <= 0 {
		opts.StoreTimeout = defaultStoreTimeout
	}
	if len(opts.Taxonomy.Categories) == 0 && len(opts.Taxonomy.Statuses) == 0 {
		opts.Taxonomy = models.DefaultTaxonomy()
	}
	return &AssetHandler{
		repo:     repo,
		opts:     opts,
		validate: newValidator(),
		log:      log,
		now:      time.Now,
	}
}

func (h *AssetHandler) storeContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), h.opts.StoreTimeout)
}

func (h *AssetHandler) storageFailure(w http.ResponseWriter, r *http.Request, op string, err error, public string) {
	h.log.Error(op,
		zap.Error(err),
		zap.String("request_id", middleware.RequestIDFromContext(r.Context())),
	)
	utils.RespondWithAppError(w, err, public)
}

// ListAssets returns every stored asset. An empty inventory is an empty array.
func (h *AssetHandler) ListAssets(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.storeContext(r)
	defer cancel()

	assets, err := h.repo.ListAll(ctx)
	if err != nil {
		h.storageFailure(w, r, "list assets", err, "Failed to fetch assets")
		return
	}
	if assets == nil {
		assets = []models.Asset{}
	}
	utils.RespondWithJSON(w, http.StatusOK, assets)
}

// GetAsset returns one asset by id.
func (h *AssetHandler) GetAsset(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(mux.Vars(r)["id"])

	ctx, cancel := h.storeContext(r)
	defer cancel()

	a, err := h.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "Asset not found")
			return
		}
		h.storageFailure(w, r, "find asset", err, "Failed to fetch asset")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, a)
}

// CreateAsset validates a draft, stores it and answers 201 with the stored asset.
func (h *AssetHandler) CreateAsset(w http.ResponseWriter, r *http.Request) {
	var p assetPayload
	if err := utils.ParseJSON(r, &p); err != nil {
		utils.RespondWithAppError(w, err, "")
		return
	}

	draft, err := p.toDraft()
	if err != nil {
		utils.RespondWithAppError(w, err, "")
		return
	}
	if err := h.validate.Struct(draft); err != nil {
		utils.RespondWithAppError(w, invalid(err), "")
		return
	}
	if err := checkTaxonomy(h.opts.Taxonomy, &draft.Category, &draft.Status); err != nil {
		utils.RespondWithAppError(w, err, "")
		return
	}

	ctx, cancel := h.storeContext(r)
	defer cancel()

	a, err := h.repo.Insert(ctx, draft.WithDefaults())
	if err != nil {
		h.storageFailure(w, r, "insert asset", err, "Failed to create asset")
		return
	}

	h.log.Info("asset created", zap.String("id", a.ID), zap.String("category", a.Category))
	utils.RespondWithJSON(w, http.StatusCreated, a)
}

// UpdateAsset applies a partial update. The id comes from the path or from
// the body ("id", or "_id" as older clients send it).
func (h *AssetHandler) UpdateAsset(w http.ResponseWriter, r *http.Request) {
	var p assetPayload
	if err := utils.ParseJSON(r, &p); err != nil {
		utils.RespondWithAppError(w, err, "")
		return
	}

	id := strings.TrimSpace(mux.Vars(r)["id"])
	if id == "" {
		id = p.assetID()
	}
	if id == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Asset ID is required")
		return
	}

	patch, valueErr := p.toPatch()
	if valueErr != nil {
		if h.opts.StrictValuePatch {
			utils.RespondWithAppError(w, valueErr, "")
			return
		}
		h.log.Info("dropping invalid value from patch", zap.String("id", id), zap.Error(valueErr))
	}
	if err := h.validate.Struct(patch); err != nil {
		utils.RespondWithAppError(w, invalid(err), "")
		return
	}
	if err := checkTaxonomy(h.opts.Taxonomy, patch.Category, patch.Status); err != nil {
		utils.RespondWithAppError(w, err, "")
		return
	}

	ctx, cancel := h.storeContext(r)
	defer cancel()

	outcome, err := h.repo.Patch(ctx, id, patch)
	if err != nil {
		h.storageFailure(w, r, "patch asset", err, "Failed to update asset")
		return
	}

	switch outcome {
	case repository.PatchNotFound:
		utils.RespondWithError(w, http.StatusNotFound, "Asset not found")
	case repository.PatchNoOp:
		utils.RespondWithMessage(w, http.StatusOK, "No changes made to the asset")
	default:
		h.log.Info("asset updated", zap.String("id", id))
		utils.RespondWithMessage(w, http.StatusOK, "Asset updated successfully")
	}
}

// DeleteAsset removes the asset named by ?id= or the path.
func (h *AssetHandler) DeleteAsset(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(mux.Vars(r)["id"])
	if id == "" {
		id = strings.TrimSpace(r.URL.Query().Get("id"))
	}
	if id == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Asset ID is required")
		return
	}

	ctx, cancel := h.storeContext(r)
	defer cancel()

	outcome, err := h.repo.Remove(ctx, id)
	if err != nil {
		h.storageFailure(w, r, "remove asset", err, "Failed to delete asset")
		return
	}
	if outcome == repository.RemoveNotFound {
		utils.RespondWithError(w, http.StatusNotFound, "Asset not found")
		return
	}

	h.log.Info("asset deleted", zap.String("id", id))
	utils.RespondWithMessage(w, http.StatusOK, "Asset deleted successfully")
}
