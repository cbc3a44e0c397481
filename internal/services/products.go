package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/AnshRaj112/pinvent-backend/internal/models"
	"github.com/AnshRaj112/pinvent-backend/pkg/utils"
)

const productsCollection = "products"

var allowedImageTypes = map[string]bool{
	"image/png":  true,
	"image/jpg":  true,
	"image/jpeg": true,
}

// ProductStore persists products.
type ProductStore interface {
	Insert(ctx context.Context, p *models.Product) error
	ListByOwner(ctx context.Context, owner primitive.ObjectID) ([]models.Product, error)
	FindByID(ctx context.Context, id string) (*models.Product, error)
	Update(ctx context.Context, p *models.Product) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// ProductInput holds the client-editable product fields.
type ProductInput struct {
	Name        string
	SKU         string
	Category    string
	Quantity    string
	Price       string
	Description string
}

func (in ProductInput) validate() error {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Category) == "" ||
		strings.TrimSpace(in.Quantity) == "" || strings.TrimSpace(in.Price) == "" ||
		strings.TrimSpace(in.Description) == "" {
		return validationFailed("product", "Fill in all fields")
	}
	return nil
}

// ProductService manages a user's products. Every read and write by id
// checks that the caller owns the product.
type ProductService struct {
	store    ProductStore
	uploader ImageUploader
	now      func() time.Time
}

// NewProductService builds the service. uploader may be nil, in which case
// requests carrying an image fail.
func NewProductService(store ProductStore, uploader ImageUploader) *ProductService {
	return &ProductService{
		store:    store,
		uploader: uploader,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *ProductService) Create(ctx context.Context, owner primitive.ObjectID, in ProductInput, upload *Upload) (*models.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	image, err := s.storeImage(ctx, upload)
	if err != nil {
		return nil, err
	}

	now := s.now()
	p := &models.Product{
		UserID:      owner,
		CreatedAt:   now,
		UpdatedAt:   now,
		Name:        in.Name,
		SKU:         in.SKU,
		Category:    in.Category,
		Quantity:    in.Quantity,
		Price:       in.Price,
		Description: in.Description,
		Image:       image,
	}
	if err := s.store.Insert(ctx, p); err != nil {
		return nil, upstream("insert product", err)
	}
	return p, nil
}

// List returns the owner's products, newest first.
func (s *ProductService) List(ctx context.Context, owner primitive.ObjectID) ([]models.Product, error) {
	products, err := s.store.ListByOwner(ctx, owner)
	if err != nil {
		return nil, upstream("list products", err)
	}
	if products == nil {
		products = []models.Product{}
	}
	return products, nil
}

func (s *ProductService) Get(ctx context.Context, owner primitive.ObjectID, id string) (*models.Product, error) {
	return s.owned(ctx, owner, id)
}

func (s *ProductService) Delete(ctx context.Context, owner primitive.ObjectID, id string) (*models.Product, error) {
	p, err := s.owned(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	if err := s.store.Delete(ctx, p.ID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, notFound("Product not found")
		}
		return nil, upstream("delete product", err)
	}
	return p, nil
}

// Update changes the fields given in in. Empty fields keep their stored
// value, as does the image unless a new one is uploaded. SKU is not editable.
func (s *ProductService) Update(ctx context.Context, owner primitive.ObjectID, id string, in ProductInput, upload *Upload) (*models.Product, error) {
	p, err := s.owned(ctx, owner, id)
	if err != nil {
		return nil, err
	}

	image, err := s.storeImage(ctx, upload)
	if err != nil {
		return nil, err
	}
	if !image.IsEmpty() {
		p.Image = image
	}

	setIfPresent(&p.Name, in.Name)
	setIfPresent(&p.Category, in.Category)
	setIfPresent(&p.Quantity, in.Quantity)
	setIfPresent(&p.Price, in.Price)
	setIfPresent(&p.Description, in.Description)
	p.UpdatedAt = s.now()

	if err := s.store.Update(ctx, p); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, notFound("Product not found")
		}
		return nil, upstream("update product", err)
	}
	return p, nil
}

func setIfPresent(field *string, v string) {
	if strings.TrimSpace(v) != "" {
		*field = v
	}
}

func (s *ProductService) owned(ctx context.Context, owner primitive.ObjectID, id string) (*models.Product, error) {
	p, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, notFound("Product not found")
		}
		return nil, upstream("find product", err)
	}
	if p.UserID != owner {
		return nil, unauthorized("User not Authorized")
	}
	return p, nil
}

func (s *ProductService) storeImage(ctx context.Context, upload *Upload) (models.FileData, error) {
	if upload == nil {
		return models.FileData{}, nil
	}
	if !allowedImageTypes[strings.ToLower(upload.ContentType)] {
		return models.FileData{}, validationFailed("image", "Only .png, .jpg and .jpeg images are allowed")
	}
	if s.uploader == nil {
		return models.FileData{}, upstream("upload image", errors.New("image uploads are not configured"))
	}

	url, err := s.uploader.UploadImage(ctx, *upload)
	if err != nil {
		return models.FileData{}, upstream("upload image", err)
	}
	return models.FileData{
		FileName: upload.FileName,
		FilePath: url,
		FileType: upload.ContentType,
		FileSize: utils.FormatFileSize(upload.Size, 2),
	}, nil
}

// MongoProductStore is the MongoDB-backed ProductStore.
type MongoProductStore struct {
	col *mongo.Collection
}

func NewMongoProductStore(db *mongo.Database) *MongoProductStore {
	return &MongoProductStore{col: db.Collection(productsCollection)}
}

// EnsureIndexes creates the owner listing index.
func (s *MongoProductStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "user", Value: 1},
			{Key: "created_at", Value: -1},
		},
		Options: options.Index().SetName("idx_user_created_at"),
	})
	return err
}

func (s *MongoProductStore) Insert(ctx context.Context, p *models.Product) error {
	p.ID = primitive.NewObjectID()
	_, err := s.col.InsertOne(ctx, p)
	return err
}

func (s *MongoProductStore) ListByOwner(ctx context.Context, owner primitive.ObjectID) ([]models.Product, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := s.col.Find(ctx, bson.M{"user": owner}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var products []models.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (s *MongoProductStore) FindByID(ctx context.Context, id string) (*models.Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	var p models.Product
	if err := s.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (s *MongoProductStore) Update(ctx context.Context, p *models.Product) error {
	res, err := s.col.UpdateOne(ctx, bson.M{"_id": p.ID}, bson.M{"$set": bson.M{
		"name":        p.Name,
		"category":    p.Category,
		"quantity":    p.Quantity,
		"price":       p.Price,
		"description": p.Description,
		"image":       p.Image,
		"updated_at":  p.UpdatedAt,
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoProductStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
