package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jhoicas/suministros-api/internal/domain"
	"github.com/jhoicas/suministros-api/internal/domain/entity"
	"github.com/jhoicas/suministros-api/internal/domain/repository"
	"github.com/jhoicas/suministros-api/internal/domain/stock"
)

// Verificación en tiempo de compilación del puerto.
var _ repository.ItemRepository = (*ItemRepository)(nil)

// itemDoc documento BSON de un insumo.
type itemDoc struct {
	ID           string    `bson:"_id"`
	DepartmentID string    `bson:"departmentId"`
	Name         string    `bson:"name"`
	Category     string    `bson:"category"`
	Unit         string    `bson:"unit"`
	Quantity     int       `bson:"quantity"`
	Status       string    `bson:"status"`
	Archived     bool      `bson:"archived"`
	Version      int64     `bson:"version"`
	CreatedAt    time.Time `bson:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt"`
}

func toItemDoc(item *entity.Item) itemDoc {
	return itemDoc{
		ID:           item.ID,
		DepartmentID: item.DepartmentID,
		Name:         item.Name,
		Category:     item.Category,
		Unit:         item.Unit,
		Quantity:     item.Quantity,
		Status:       string(item.Status),
		Archived:     item.Archived,
		Version:      item.Version,
		CreatedAt:    item.CreatedAt,
		UpdatedAt:    item.UpdatedAt,
	}
}

func (d itemDoc) toEntity() *entity.Item {
	return &entity.Item{
		ID:           d.ID,
		DepartmentID: d.DepartmentID,
		Name:         d.Name,
		Category:     d.Category,
		Unit:         d.Unit,
		Quantity:     d.Quantity,
		Status:       stock.Status(d.Status),
		Archived:     d.Archived,
		Version:      d.Version,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

// ItemRepository adaptador MongoDB para Item.
// Los deltas de cantidad usan $inc (atómico por documento); los sets absolutos
// llevan check de versión para no pisar escrituras concurrentes.
type ItemRepository struct {
	coll *mongo.Collection
}

// NewItemRepository construye el repositorio.
func NewItemRepository(client *Client) *ItemRepository {
	return &ItemRepository{coll: client.Collection(collItems)}
}

func (r *ItemRepository) Create(ctx context.Context, item *entity.Item) error {
	_, err := r.coll.InsertOne(ctx, toItemDoc(item))
	if mongo.IsDuplicateKeyError(err) {
		return domain.ErrDuplicate
	}
	return err
}

func (r *ItemRepository) GetByID(ctx context.Context, id string) (*entity.Item, error) {
	var doc itemDoc
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc.toEntity(), nil
}

func (r *ItemRepository) List(ctx context.Context, filter entity.ItemFilter) ([]*entity.Item, error) {
	query := bson.M{}
	if filter.DepartmentID != "" {
		query["departmentId"] = filter.DepartmentID
	}
	if filter.Category != "" {
		query["category"] = filter.Category
	}
	if !filter.IncludeArchived {
		query["archived"] = false
	}
	if filter.OnlyLowStock {
		query["status"] = bson.M{"$ne": string(stock.StatusAvailable)}
	}

	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit)).SetSkip(int64(filter.Offset))
	}

	cur, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var items []*entity.Item
	for cur.Next(ctx) {
		var doc itemDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		items = append(items, doc.toEntity())
	}
	return items, cur.Err()
}

func (r *ItemRepository) Update(ctx context.Context, item *entity.Item) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": item.ID}, bson.M{"$set": bson.M{
		"name":      item.Name,
		"category":  item.Category,
		"unit":      item.Unit,
		"updatedAt": time.Now(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// IncrementQuantity aplica el delta con $inc. Con guardMin >= 0 el filtro exige
// quantity >= guardMin, de modo que un descuento nunca deja stock negativo.
// Devuelve cantidad anterior y nueva.
func (r *ItemRepository) IncrementQuantity(ctx context.Context, id string, delta int, guardMin int) (int, int, error) {
	filter := bson.M{"_id": id}
	if guardMin >= 0 {
		filter["quantity"] = bson.M{"$gte": guardMin}
	}
	update := bson.M{
		"$inc": bson.M{"quantity": delta},
		"$set": bson.M{"updatedAt": time.Now()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.Before)

	var before itemDoc
	err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&before)
	if errors.Is(err, mongo.ErrNoDocuments) {
		// Distinguir "no existe" de "la guarda no pasó".
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return 0, 0, getErr
		}
		return 0, 0, domain.ErrInsufficientStock
	}
	if err != nil {
		return 0, 0, err
	}
	return before.Quantity, before.Quantity + delta, nil
}

// SetQuantity fija la cantidad solo si la versión coincide (control optimista).
func (r *ItemRepository) SetQuantity(ctx context.Context, id string, quantity int, expectedVersion int64) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id, "version": expectedVersion},
		bson.M{
			"$set": bson.M{"quantity": quantity, "updatedAt": time.Now()},
			"$inc": bson.M{"version": 1},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return getErr
		}
		return domain.ErrConflict
	}
	return nil
}

func (r *ItemRepository) SetStatus(ctx context.Context, id string, status stock.Status) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": string(status)}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ItemRepository) SetArchived(ctx context.Context, id string, archived bool) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"archived": archived, "updatedAt": time.Now()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}
