package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ejjays/assets-management/apperrors"
	"github.com/ejjays/assets-management/models"
)

// CollectionSource hands out the assets collection, connecting lazily.
type CollectionSource interface {
	Collection(ctx context.Context) (*mongo.Collection, error)
}

type staticCollection struct{ coll *mongo.Collection }

func (s staticCollection) Collection(context.Context) (*mongo.Collection, error) { return s.coll, nil }

// StaticCollection wraps an already-resolved collection.
func StaticCollection(coll *mongo.Collection) CollectionSource { return staticCollection{coll} }

type assetDocument struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	Name            string             `bson:"name"`
	Category        string             `bson:"category"`
	Status          string             `bson:"status"`
	Location        string             `bson:"location"`
	AssignedTo      string             `bson:"assignedTo"`
	PurchaseDate    string             `bson:"purchaseDate"`
	WarrantyEndDate string             `bson:"warrantyEndDate,omitempty"`
	Value           float64            `bson:"value"`
	SerialNumber    string             `bson:"serialNumber,omitempty"`
	Manufacturer    string             `bson:"manufacturer,omitempty"`
	Model           string             `bson:"model,omitempty"`
	Description     string             `bson:"description,omitempty"`
	History         []historyDocument  `bson:"history,omitempty"`
	CreatedAt       time.Time          `bson:"createdAt"`
}

type historyDocument struct {
	Action  string `bson:"action"`
	Date    string `bson:"date"`
	User    string `bson:"user"`
	Details string `bson:"details,omitempty"`
}

func (d assetDocument) toModel() models.Asset {
	a := models.Asset{
		ID:              d.ID.Hex(),
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
		History:         fromHistoryDocs(d.History),
		CreatedAt:       d.CreatedAt,
	}
	return a
}

func newAssetDocument(id primitive.ObjectID, d models.AssetDraft, createdAt time.Time) assetDocument {
	return assetDocument{
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
		History:         toHistoryDocs(d.History),
		CreatedAt:       createdAt,
	}
}

func toHistoryDocs(h []models.HistoryEntry) []historyDocument {
	if h == nil {
		return nil
	}
	out := make([]historyDocument, len(h))
	for i, e := range h {
		out[i] = historyDocument(e)
	}
	return out
}

func fromHistoryDocs(h []historyDocument) []models.HistoryEntry {
	if h == nil {
		return nil
	}
	out := make([]models.HistoryEntry, len(h))
	for i, e := range h {
		out[i] = models.HistoryEntry(e)
	}
	return out
}

// patchSet builds the $set document; field names match assetDocument's bson tags.
func patchSet(p models.AssetPatch) bson.M {
	set := bson.M{}
	put := func(key string, v *string) {
		if v != nil {
			set[key] = *v
		}
	}
	put("name", p.Name)
	put("category", p.Category)
	put("status", p.Status)
	put("location", p.Location)
	put("assignedTo", p.AssignedTo)
	put("purchaseDate", p.PurchaseDate)
	put("warrantyEndDate", p.WarrantyEndDate)
	put("serialNumber", p.SerialNumber)
	put("manufacturer", p.Manufacturer)
	put("model", p.Model)
	put("description", p.Description)
	if p.Value != nil {
		set["value"] = *p.Value
	}
	if p.History != nil {
		set["history"] = toHistoryDocs(*p.History)
	}
	return set
}

type MongoAssetRepository struct {
	src CollectionSource
	now func() time.Time
}

func NewMongoAssetRepository(src CollectionSource) *MongoAssetRepository {
	return &MongoAssetRepository{src: src, now: func() time.Time { return time.Now().UTC() }}
}

var _ AssetRepository = (*MongoAssetRepository)(nil)

func (r *MongoAssetRepository) collection(ctx context.Context) (*mongo.Collection, error) {
	coll, err := r.src.Collection(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrStorageUnavailable, err)
	}
	return coll, nil
}

func (r *MongoAssetRepository) ListAll(ctx context.Context) ([]models.Asset, error) {
	coll, err := r.collection(ctx)
	if err != nil {
		return nil, err
	}

	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, readError("list assets", err)
	}
	defer cursor.Close(ctx)

	var docs []assetDocument
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, readError("decode assets", err)
	}

	assets := make([]models.Asset, 0, len(docs))
	for _, d := range docs {
		assets = append(assets, d.toModel())
	}
	return assets, nil
}

func (r *MongoAssetRepository) Insert(ctx context.Context, draft models.AssetDraft) (models.Asset, error) {
	coll, err := r.collection(ctx)
	if err != nil {
		return models.Asset{}, err
	}

	doc := newAssetDocument(primitive.NewObjectID(), draft, r.now())
	if _, err := coll.InsertOne(ctx, doc); err != nil {
		return models.Asset{}, writeError("insert asset", err)
	}
	return doc.toModel(), nil
}

func (r *MongoAssetRepository) Patch(ctx context.Context, id string, patch models.AssetPatch) (PatchOutcome, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		// Not an id this repository could have issued.
		return PatchNotFound, nil
	}
	coll, err := r.collection(ctx)
	if err != nil {
		return 0, err
	}

	set := patchSet(patch)
	if len(set) == 0 {
		err := coll.FindOne(ctx, bson.M{"_id": oid}, options.FindOne().SetProjection(bson.M{"_id": 1})).Err()
		if errors.Is(err, mongo.ErrNoDocuments) {
			return PatchNotFound, nil
		}
		if err != nil {
			return 0, readError("find asset", err)
		}
		return PatchNoOp, nil
	}

	result, err := coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		return 0, writeError("update asset", err)
	}
	switch {
	case result.MatchedCount == 0:
		return PatchNotFound, nil
	case result.ModifiedCount == 0:
		return PatchNoOp, nil
	default:
		return PatchUpdated, nil
	}
}

func (r *MongoAssetRepository) Remove(ctx context.Context, id string) (RemoveOutcome, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return RemoveNotFound, nil
	}
	coll, err := r.collection(ctx)
	if err != nil {
		return 0, err
	}

	result, err := coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return 0, writeError("delete asset", err)
	}
	if result.DeletedCount == 0 {
		return RemoveNotFound, nil
	}
	return RemoveDeleted, nil
}

func (r *MongoAssetRepository) FindByID(ctx context.Context, id string) (models.Asset, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.Asset{}, apperrors.ErrNotFound
	}
	coll, err := r.collection(ctx)
	if err != nil {
		return models.Asset{}, err
	}

	var doc assetDocument
	err = coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Asset{}, apperrors.ErrNotFound
	}
	if err != nil {
		return models.Asset{}, readError("find asset", err)
	}
	return doc.toModel(), nil
}

func (r *MongoAssetRepository) Count(ctx context.Context) (int64, error) {
	coll, err := r.collection(ctx)
	if err != nil {
		return 0, err
	}
	n, err := coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, readError("count assets", err)
	}
	return n, nil
}

// The driver error text is kept for logs but not the error chain, so callers
// can only match on apperrors kinds.
func readError(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, apperrors.ErrStorageUnavailable, err)
}

func writeError(op string, err error) error {
	if unreachable(err) {
		return readError(op, err)
	}
	return fmt.Errorf("%s: %w: %v", op, apperrors.ErrStorageWrite, err)
}

func unreachable(err error) bool {
	return mongo.IsTimeout(err) || mongo.IsNetworkError(err) ||
		errors.Is(err, context.DeadlineExceeded) || errors.Is(err, mongo.ErrClientDisconnected)
}
