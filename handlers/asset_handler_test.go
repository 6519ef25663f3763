package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ejjays/assets-management/apperrors"
	"github.com/ejjays/assets-management/models"
	"github.com/ejjays/assets-management/repository"
)

const projectorJSON = `{"name":"Projector","category":"Electronics","status":"Active","value":"750.5","purchaseDate":"2024-01-01"}`

func assetRouter(h *AssetHandler) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/assets", h.ListAssets).Methods(http.MethodGet)
	r.HandleFunc("/assets", h.CreateAsset).Methods(http.MethodPost)
	r.HandleFunc("/assets", h.UpdateAsset).Methods(http.MethodPut)
	r.HandleFunc("/assets", h.DeleteAsset).Methods(http.MethodDelete)
	r.HandleFunc("/assets/stats", h.AssetStats).Methods(http.MethodGet)
	r.HandleFunc("/assets/export", h.ExportAssets).Methods(http.MethodGet)
	r.HandleFunc("/assets/{id}", h.GetAsset).Methods(http.MethodGet)
	r.HandleFunc("/assets/{id}", h.UpdateAsset).Methods(http.MethodPut)
	r.HandleFunc("/assets/{id}", h.DeleteAsset).Methods(http.MethodDelete)
	r.HandleFunc("/assets/{id}/qr", h.AssetQRCode).Methods(http.MethodGet)
	return r
}

func newTestAPI(t *testing.T, opts AssetOptions) (*mux.Router, *repository.MemoryAssetRepository) {
	t.Helper()
	repo := repository.NewMemoryAssetRepository()
	h := NewAssetHandler(repo, opts, zap.NewNop())
	h.now = func() time.Time { return time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC) }
	return assetRouter(h), repo
}

func do(r http.Handler, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func createProjector(t *testing.T, r http.Handler) models.Asset {
	t.Helper()
	rec := do(r, http.MethodPost, "/assets", projectorJSON)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[models.Asset](t, rec)
}

func TestCreateCoercesStringValue(t *testing.T) {
	r, _ := newTestAPI(t, AssetOptions{})

	a := createProjector(t, r)
	assert.NotEmpty(t, a.ID)
	assert.Equal(t, 750.5, a.Value)
	assert.Equal(t, models.DefaultLocation, a.Location)
	assert.Equal(t, models.DefaultAssignedTo, a.AssignedTo)

	list := decode[[]models.Asset](t, do(r, http.MethodGet, "/assets", ""))
	require.Len(t, list, 1)
	assert.Equal(t, a.ID, list[0].ID)
}

func TestListEmptyIsArray(t *testing.T) {
	r, _ := newTestAPI(t, AssetOptions{})
	rec := do(r, http.MethodGet, "/assets", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestCreateValidation(t *testing.T) {
	r, repo := newTestAPI(t, AssetOptions{})

	tests := []struct {
		name string
		body string
		want string
	}{
		{"malformed json", `{"name":`, "invalid payload"},
		{"missing name", `{"category":"Electronics","status":"Active","purchaseDate":"2024-01-01"}`, "name is required"},
		{"blank name", `{"name":"  ","category":"Electronics","status":"Active","purchaseDate":"2024-01-01"}`, "name is required"},
		{"unknown category", `{"name":"X","category":"Toys","status":"Active","purchaseDate":"2024-01-01"}`, `unknown category "Toys"`},
		{"unknown status", `{"name":"X","category":"Software","status":"Lost","purchaseDate":"2024-01-01"}`, `unknown status "Lost"`},
		{"missing purchase date", `{"name":"X","category":"Software","status":"Active"}`, "purchaseDate is required"},
		{"bad purchase date", `{"name":"X","category":"Software","status":"Active","purchaseDate":"01/02/2024"}`, "purchaseDate must be a date"},
		{"text value", `{"name":"X","category":"Software","status":"Active","purchaseDate":"2024-01-01","value":"abc"}`, "not a number"},
		{"negative value", `{"name":"X","category":"Software","status":"Active","purchaseDate":"2024-01-01","value":-3}`, "must not be negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(r, http.MethodPost, "/assets", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, decode[map[string]string](t, rec)["error"], tt.want)
		})
	}

	n, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestOutOfRangeValueNeverReachesStore(t *testing.T) {
	r, repo := newTestAPI(t, AssetOptions{})
	a := createProjector(t, r)

	for _, body := range []string{
		`{"name":"X","category":"Software","status":"Active","purchaseDate":"2024-01-01","value":"1e400"}`,
		`{"name":"X","category":"Software","status":"Active","purchaseDate":"2024-01-01","value":1e400}`,
	} {
		rec := do(r, http.MethodPost, "/assets", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Contains(t, rec.Body.String(), "out of range")
	}

	rec := do(r, http.MethodPut, "/assets", fmt.Sprintf(`{"id":%q,"value":1e400}`, a.ID))
	assert.Equal(t, http.StatusOK, rec.Code)

	got, err := repo.FindByID(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, 750.5, got.Value)

	rec = do(r, http.MethodGet, "/assets", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Asset](t, rec), 1)
}

func TestCreateIgnoresUnknownFieldsAndClientID(t *testing.T) {
	r, _ := newTestAPI(t, AssetOptions{})
	rec := do(r, http.MethodPost, "/assets",
		`{"id":"mine","name":"Desk","category":"Furniture","status":"In Use","purchaseDate":"2023-05-01","value":120,"color":"oak"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	a := decode[models.Asset](t, rec)
	assert.NotEqual(t, "mine", a.ID)
	assert.NotContains(t, rec.Body.String(), "oak")
}

func TestUpdateIsPartial(t *testing.T) {
	r, repo := newTestAPI(t, AssetOptions{})
	a := createProjector(t, r)

	rec := do(r, http.MethodPut, "/assets", fmt.Sprintf(`{"id":%q,"status":"In Repair"}`, a.ID))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Asset updated successfully"}`, rec.Body.String())

	got, err := repo.FindByID(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, "In Repair", got.Status)
	assert.Equal(t, a.Name, got.Name)
	assert.Equal(t, a.Value, got.Value)
}

func TestUpdateDropsInvalidValue(t *testing.T) {
	r, repo := newTestAPI(t, AssetOptions{})
	a := createProjector(t, r)

	rec := do(r, http.MethodPut, "/assets", fmt.Sprintf(`{"_id":%q,"value":"not-a-number","location":"Room 9"}`, a.ID))
	assert.Equal(t, http.StatusOK, rec.Code)

	got, err := repo.FindByID(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, 750.5, got.Value)
	assert.Equal(t, "Room 9", got.Location)
}

func TestUpdateStrictValueRejects(t *testing.T) {
	r, repo := newTestAPI(t, AssetOptions{StrictValuePatch: true})
	a := createProjector(t, r)

	rec := do(r, http.MethodPut, "/assets/"+a.ID, `{"value":"not-a-number","location":"Room 9"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	got, err := repo.FindByID(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultLocation, got.Location)
}

func TestUpdateOutcomes(t *testing.T) {
	r, _ := newTestAPI(t, AssetOptions{})
	a := createProjector(t, r)

	rec := do(r, http.MethodPut, "/assets", `{"status":"Active"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Asset ID is required"}`, rec.Body.String())

	rec = do(r, http.MethodPut, "/assets", `{"id":"missing","status":"Active"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(r, http.MethodPut, "/assets", fmt.Sprintf(`{"id":%q,"status":"Active","value":750.5}`, a.ID))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"No changes made to the asset"}`, rec.Body.String())

	rec = do(r, http.MethodPut, "/assets", fmt.Sprintf(`{"id":%q,"category":"Toys"}`, a.ID))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(r, http.MethodPut, "/assets", fmt.Sprintf(`{"id":%q,"name":""}`, a.ID))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "name must not be empty")
}

func TestDelete(t *testing.T) {
	r, _ := newTestAPI(t, AssetOptions{})
	a := createProjector(t, r)
	createProjector(t, r)

	rec := do(r, http.MethodDelete, "/assets", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(r, http.MethodDelete, "/assets?id="+a.ID, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Asset deleted successfully"}`, rec.Body.String())

	rec = do(r, http.MethodDelete, "/assets/"+a.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code, "second delete is not found")

	rec = do(r, http.MethodGet, "/assets/"+a.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	assert.Len(t, decode[[]models.Asset](t, do(r, http.MethodGet, "/assets", "")), 1)
}

func TestGetAsset(t *testing.T) {
	r, _ := newTestAPI(t, AssetOptions{})
	a := createProjector(t, r)

	rec := do(r, http.MethodGet, "/assets/"+a.ID, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, a, decode[models.Asset](t, rec))
}

func TestCustomTaxonomy(t *testing.T) {
	r, _ := newTestAPI(t, AssetOptions{Taxonomy: models.Taxonomy{
		Categories: []string{"Vehicles"},
		Statuses:   []string{"Available"},
	}})

	rec := do(r, http.MethodPost, "/assets", `{"name":"Van","category":"Vehicles","status":"Available","purchaseDate":"2022-02-02"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = do(r, http.MethodPost, "/assets", projectorJSON)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type mockRepo struct{ mock.Mock }

func (m *mockRepo) ListAll(ctx context.Context) ([]models.Asset, error) {
	args := m.Called(ctx)
	assets, _ := args.Get(0).([]models.Asset)
	return assets, args.Error(1)
}

func (m *mockRepo) Insert(ctx context.Context, d models.AssetDraft) (models.Asset, error) {
	args := m.Called(ctx, d)
	return args.Get(0).(models.Asset), args.Error(1)
}

func (m *mockRepo) Patch(ctx context.Context, id string, p models.AssetPatch) (repository.PatchOutcome, error) {
	args := m.Called(ctx, id, p)
	return args.Get(0).(repository.PatchOutcome), args.Error(1)
}

func (m *mockRepo) Remove(ctx context.Context, id string) (repository.RemoveOutcome, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(repository.RemoveOutcome), args.Error(1)
}

func (m *mockRepo) FindByID(ctx context.Context, id string) (models.Asset, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.Asset), args.Error(1)
}

func (m *mockRepo) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func TestStorageFailuresAre500WithoutDriverDetail(t *testing.T) {
	unavailable := fmt.Errorf("list assets: %w: %v", apperrors.ErrStorageUnavailable, errors.New("server selection timeout on 10.0.0.7"))
	writeFailed := fmt.Errorf("insert asset: %w: %v", apperrors.ErrStorageWrite, errors.New("not acknowledged"))

	repo := &mockRepo{}
	repo.On("ListAll", mock.Anything).Return(nil, unavailable)
	repo.On("Insert", mock.Anything, mock.Anything).Return(models.Asset{}, writeFailed)
	repo.On("Patch", mock.Anything, "x", mock.Anything).Return(repository.PatchOutcome(0), unavailable)
	repo.On("Remove", mock.Anything, "x").Return(repository.RemoveOutcome(0), unavailable)
	r := assetRouter(NewAssetHandler(repo, AssetOptions{}, zap.NewNop()))

	for _, tc := range []struct{ method, target, body, want string }{
		{http.MethodGet, "/assets", "", "Failed to fetch assets"},
		{http.MethodPost, "/assets", projectorJSON, "Failed to create asset"},
		{http.MethodPut, "/assets", `{"id":"x","name":"Y"}`, "Failed to update asset"},
		{http.MethodDelete, "/assets?id=x", "", "Failed to delete asset"},
		{http.MethodGet, "/assets/stats", "", "Failed to compute statistics"},
	} {
		rec := do(r, tc.method, tc.target, tc.body)
		assert.Equal(t, http.StatusInternalServerError, rec.Code, tc.target)
		assert.JSONEq(t, fmt.Sprintf(`{"error":%q}`, tc.want), rec.Body.String())
	}
	repo.AssertExpectations(t)
}

func TestStoreCallsAreBounded(t *testing.T) {
	repo := &mockRepo{}
	repo.On("ListAll", mock.Anything).Run(func(args mock.Arguments) {
		ctx := args.Get(0).(context.Context)
		_, ok := ctx.Deadline()
		assert.True(t, ok)
	}).Return([]models.Asset{}, nil)

	r := assetRouter(NewAssetHandler(repo, AssetOptions{StoreTimeout: time.Second}, zap.NewNop()))
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/assets", "").Code)
}
