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
)

var _ repository.RequestRepository = (*RequestRepository)(nil)

// requestDoc documento BSON de una solicitud de suministro.
type requestDoc struct {
	ID            string    `bson:"_id"`
	DepartmentID  string    `bson:"departmentId"`
	ItemID        string    `bson:"itemId"`
	RequesterID   string    `bson:"requesterId"`
	RequesterName string    `bson:"requesterName"`
	Quantity      int       `bson:"quantity"`
	Status        string    `bson:"status"`
	Note          string    `bson:"note"`
	DecidedBy     string    `bson:"decidedBy"`
	CreatedAt     time.Time `bson:"createdAt"`
	UpdatedAt     time.Time `bson:"updatedAt"`
}

func (d requestDoc) toEntity() *entity.SupplyRequest {
	return &entity.SupplyRequest{
		ID:            d.ID,
		DepartmentID:  d.DepartmentID,
		ItemID:        d.ItemID,
		RequesterID:   d.RequesterID,
		RequesterName: d.RequesterName,
		Quantity:      d.Quantity,
		Status:        d.Status,
		Note:          d.Note,
		DecidedBy:     d.DecidedBy,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

// RequestRepository adaptador MongoDB para SupplyRequest.
type RequestRepository struct {
	coll *mongo.Collection
}

// NewRequestRepository construye el repositorio.
func NewRequestRepository(client *Client) *RequestRepository {
	return &RequestRepository{coll: client.Collection(collRequests)}
}

func (r *RequestRepository) Create(ctx context.Context, req *entity.SupplyRequest) error {
	doc := requestDoc{
		ID:            req.ID,
		DepartmentID:  req.DepartmentID,
		ItemID:        req.ItemID,
		RequesterID:   req.RequesterID,
		RequesterName: req.RequesterName,
		Quantity:      req.Quantity,
		Status:        req.Status,
		Note:          req.Note,
		DecidedBy:     req.DecidedBy,
		CreatedAt:     req.CreatedAt,
		UpdatedAt:     req.UpdatedAt,
	}
	_, err := r.coll.InsertOne(ctx, doc)
	return err
}

func (r *RequestRepository) GetByID(ctx context.Context, id string) (*entity.SupplyRequest, error) {
	var doc requestDoc
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc.toEntity(), nil
}

func (r *RequestRepository) List(ctx context.Context, filter entity.RequestFilter) ([]*entity.SupplyRequest, error) {
	query := bson.M{}
	if filter.DepartmentID != "" {
		query["departmentId"] = filter.DepartmentID
	}
	if filter.RequesterID != "" {
		query["requesterId"] = filter.RequesterID
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit)).SetSkip(int64(filter.Offset))
	}

	cur, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*entity.SupplyRequest
	for cur.Next(ctx) {
		var doc requestDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toEntity())
	}
	return out, cur.Err()
}

// UpdateStatus transiciona con check-and-set sobre el estado actual: solo una
// decisión concurrente gana; las demás ven ErrConflict.
func (r *RequestRepository) UpdateStatus(ctx context.Context, id, fromStatus, toStatus, decidedBy, note string) error {
	set := bson.M{"status": toStatus, "updatedAt": time.Now()}
	if decidedBy != "" {
		set["decidedBy"] = decidedBy
	}
	if note != "" {
		set["note"] = note
	}
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id, "status": fromStatus},
		bson.M{"$set": set},
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
