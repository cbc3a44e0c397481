package services_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/AnshRaj112/pinvent-backend/internal/services"
	"github.com/AnshRaj112/pinvent-backend/internal/services/servicestest"
)

func validProduct() services.ProductInput {
	return services.ProductInput{
		Name:        "Widget",
		SKU:         "SKU-123",
		Category:    "Tools",
		Quantity:    "4",
		Price:       "19.99",
		Description: "A very useful widget",
	}
}

func pngUpload() *services.Upload {
	return &services.Upload{
		File:        strings.NewReader("\x89PNG fake"),
		FileName:    "widget.png",
		ContentType: "image/png",
		Size:        1536,
	}
}

func TestProductService_CreateWithImage(t *testing.T) {
	uploader := &servicestest.Uploader{URL: "https://res.cloudinary.com/demo/image/upload/widget.png"}
	svc := services.NewProductService(servicestest.NewProductStore(), uploader)
	owner := primitive.NewObjectID()

	p, err := svc.Create(context.Background(), owner, validProduct(), pngUpload())
	require.NoError(t, err)
	assert.False(t, p.ID.IsZero())
	assert.Equal(t, owner, p.UserID)
	assert.Equal(t, "SKU-123", p.SKU)
	assert.Equal(t, "widget.png", p.Image.FileName)
	assert.Equal(t, uploader.URL, p.Image.FilePath)
	assert.Equal(t, "image/png", p.Image.FileType)
	assert.Equal(t, "1.54 KB", p.Image.FileSize)
	assert.Equal(t, 1, uploader.Calls)
}

func TestProductService_CreateValidation(t *testing.T) {
	svc := services.NewProductService(servicestest.NewProductStore(), nil)
	in := validProduct()
	in.Price = ""

	_, err := svc.Create(context.Background(), primitive.NewObjectID(), in, nil)
	assertKind(t, err, services.KindValidation)
}

func TestProductService_RejectsNonImage(t *testing.T) {
	uploader := &servicestest.Uploader{URL: "https://example.com/x"}
	svc := services.NewProductService(servicestest.NewProductStore(), uploader)
	upload := pngUpload()
	upload.ContentType = "application/pdf"

	_, err := svc.Create(context.Background(), primitive.NewObjectID(), validProduct(), upload)
	assertKind(t, err, services.KindValidation)
	assert.Zero(t, uploader.Calls)
}

func TestProductService_UploadFailure(t *testing.T) {
	uploader := &servicestest.Uploader{Err: errors.New("cloudinary down")}
	svc := services.NewProductService(servicestest.NewProductStore(), uploader)

	_, err := svc.Create(context.Background(), primitive.NewObjectID(), validProduct(), pngUpload())
	assertKind(t, err, services.KindUpstream)
}

func TestProductService_Ownership(t *testing.T) {
	svc := services.NewProductService(servicestest.NewProductStore(), nil)
	owner := primitive.NewObjectID()
	intruder := primitive.NewObjectID()

	p, err := svc.Create(context.Background(), owner, validProduct(), nil)
	require.NoError(t, err)
	id := p.ID.Hex()

	_, err = svc.Get(context.Background(), intruder, id)
	assertKind(t, err, services.KindUnauthorized)
	_, err = svc.Update(context.Background(), intruder, id, validProduct(), nil)
	assertKind(t, err, services.KindUnauthorized)
	_, err = svc.Delete(context.Background(), intruder, id)
	assertKind(t, err, services.KindUnauthorized)

	_, err = svc.Get(context.Background(), owner, id)
	require.NoError(t, err)
}

func TestProductService_NotFound(t *testing.T) {
	svc := services.NewProductService(servicestest.NewProductStore(), nil)
	owner := primitive.NewObjectID()

	_, err := svc.Get(context.Background(), owner, primitive.NewObjectID().Hex())
	assertKind(t, err, services.KindNotFound)
	_, err = svc.Get(context.Background(), owner, "not-an-id")
	assertKind(t, err, services.KindNotFound)
}

func TestProductService_UpdateKeepsImage(t *testing.T) {
	uploader := &servicestest.Uploader{URL: "https://res.cloudinary.com/demo/image/upload/widget.png"}
	svc := services.NewProductService(servicestest.NewProductStore(), uploader)
	owner := primitive.NewObjectID()

	p, err := svc.Create(context.Background(), owner, validProduct(), pngUpload())
	require.NoError(t, err)

	in := validProduct()
	in.Name = "Widget v2"
	in.SKU = "ignored"
	updated, err := svc.Update(context.Background(), owner, p.ID.Hex(), in, nil)
	require.NoError(t, err)
	assert.Equal(t, "Widget v2", updated.Name)
	assert.Equal(t, "SKU-123", updated.SKU)
	assert.Equal(t, p.Image, updated.Image)
}

func TestProductService_PartialUpdate(t *testing.T) {
	svc := services.NewProductService(servicestest.NewProductStore(), nil)
	owner := primitive.NewObjectID()

	p, err := svc.Create(context.Background(), owner, validProduct(), nil)
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), owner, p.ID.Hex(), services.ProductInput{Price: "5"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "5", updated.Price)
	assert.Equal(t, "Widget", updated.Name)
	assert.Equal(t, "Tools", updated.Category)
	assert.Equal(t, "4", updated.Quantity)
	assert.Equal(t, "A very useful widget", updated.Description)

	got, err := svc.Get(context.Background(), owner, p.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "5", got.Price)
	assert.Equal(t, "Widget", got.Name)
}

func TestProductService_ListAndDelete(t *testing.T) {
	svc := services.NewProductService(servicestest.NewProductStore(), nil)
	owner := primitive.NewObjectID()

	empty, err := svc.List(context.Background(), owner)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	p, err := svc.Create(context.Background(), owner, validProduct(), nil)
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), primitive.NewObjectID(), validProduct(), nil)
	require.NoError(t, err)

	list, err := svc.List(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, p.ID, list[0].ID)

	deleted, err := svc.Delete(context.Background(), owner, p.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, p.ID, deleted.ID)

	_, err = svc.Get(context.Background(), owner, p.ID.Hex())
	assertKind(t, err, services.KindNotFound)
}
