package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jhoicas/suministros-api/internal/application/lock"
	"github.com/jhoicas/suministros-api/internal/domain"
	"github.com/jhoicas/suministros-api/internal/domain/entity"
	"github.com/jhoicas/suministros-api/internal/domain/repository"
)

var (
	_ repository.UserRepository = (*UserRepository)(nil)
	_ lock.Repository           = (*UserRepository)(nil)
)

// userDoc documento BSON de una cuenta. Los campos de lock son punteros para
// que "sin lock" se persista como null, igual que el patrón del item.
type userDoc struct {
	ID            string     `bson:"_id"`
	DepartmentID  string     `bson:"departmentId"`
	Email         string     `bson:"email"`
	Name          string     `bson:"name"`
	Role          string     `bson:"role"`
	Status        string     `bson:"status"`
	Archived      bool       `bson:"archived"`
	LockedBy      *string    `bson:"lockedBy"`
	LockExpiresAt *time.Time `bson:"lockExpiresAt"`
	CreatedAt     time.Time  `bson:"createdAt"`
	UpdatedAt     time.Time  `bson:"updatedAt"`
}

func toUserDoc(u *entity.User) userDoc {
	return userDoc{
		ID:            u.ID,
		DepartmentID:  u.DepartmentID,
		Email:         u.Email,
		Name:          u.Name,
		Role:          u.Role,
		Status:        u.Status,
		Archived:      u.Archived,
		LockedBy:      u.LockedBy,
		LockExpiresAt: u.LockExpiresAt,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

func (d userDoc) toEntity() *entity.User {
	return &entity.User{
		ID:            d.ID,
		DepartmentID:  d.DepartmentID,
		Email:         d.Email,
		Name:          d.Name,
		Role:          d.Role,
		Status:        d.Status,
		Archived:      d.Archived,
		LockedBy:      d.LockedBy,
		LockExpiresAt: d.LockExpiresAt,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

// UserRepository adaptador MongoDB para User. Implementa además el puerto del
// manager de locks leyendo/escribiendo lockedBy y lockExpiresAt del documento.
type UserRepository struct {
	coll *mongo.Collection
}

// NewUserRepository construye el repositorio.
func NewUserRepository(client *Client) *UserRepository {
	return &UserRepository{coll: client.Collection(collUsers)}
}

func (r *UserRepository) Create(ctx context.Context, user *entity.User) error {
	_, err := r.coll.InsertOne(ctx, toUserDoc(user))
	if mongo.IsDuplicateKeyError(err) {
		return domain.ErrDuplicate
	}
	return err
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	var doc userDoc
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc.toEntity(), nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	var doc userDoc
	err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc.toEntity(), nil
}

func (r *UserRepository) Update(ctx context.Context, user *entity.User) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": user.ID}, bson.M{"$set": bson.M{
		"name":      user.Name,
		"role":      user.Role,
		"status":    user.Status,
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

func (r *UserRepository) List(ctx context.Context, departmentID string, includeArchived bool, limit, offset int) ([]*entity.User, error) {
	query := bson.M{}
	if departmentID != "" {
		query["departmentId"] = departmentID
	}
	if !includeArchived {
		query["archived"] = false
	}
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	if limit > 0 {
		opts.SetLimit(int64(limit)).SetSkip(int64(offset))
	}

	cur, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var users []*entity.User
	for cur.Next(ctx) {
		var doc userDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		users = append(users, doc.toEntity())
	}
	return users, cur.Err()
}

func (r *UserRepository) SetArchived(ctx context.Context, id string, archived bool) error {
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

// ── Puerto del manager de locks ───────────────────────────────────────────────

func (r *UserRepository) GetLock(ctx context.Context, recordID string) (*lock.State, error) {
	var doc userDoc
	err := r.coll.FindOne(ctx, bson.M{"_id": recordID},
		options.FindOne().SetProjection(bson.M{"lockedBy": 1, "lockExpiresAt": 1})).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &lock.State{LockedBy: doc.LockedBy, LockExpiresAt: doc.LockExpiresAt}, nil
}

func (r *UserRepository) SetLock(ctx context.Context, recordID, holder string, expiresAt time.Time) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": recordID},
		bson.M{"$set": bson.M{"lockedBy": holder, "lockExpiresAt": expiresAt}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *UserRepository) ClearLock(ctx context.Context, recordID string) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": recordID},
		bson.M{"$set": bson.M{"lockedBy": nil, "lockExpiresAt": nil}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}
