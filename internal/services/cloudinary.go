package services

import (
	"context"
	"fmt"
	"io"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// ProductImageFolder is the Cloudinary folder product images are stored in.
const ProductImageFolder = "Pinvent App"

// Upload is an image received from a client.
type Upload struct {
	File        io.Reader
	FileName    string
	ContentType string
	Size        int64
}

// ImageUploader stores an image and returns its public HTTPS URL.
type ImageUploader interface {
	UploadImage(ctx context.Context, upload Upload) (string, error)
}

type CloudinaryService struct {
	cld    *cloudinary.Cloudinary
	folder string
}

func NewCloudinaryService(cloudName, apiKey, apiSecret string) (*CloudinaryService, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary: %w", err)
	}

	return &CloudinaryService{
		cld:    cld,
		folder: ProductImageFolder,
	}, nil
}

func (s *CloudinaryService) UploadImage(ctx context.Context, upload Upload) (string, error) {
	fileBytes, err := io.ReadAll(upload.File)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	uploadResult, err := s.cld.Upload.Upload(ctx, fileBytes, uploader.UploadParams{
		Folder:       s.folder,
		ResourceType: "image",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to Cloudinary: %w", err)
	}
	if uploadResult.Error.Message != "" {
		return "", fmt.Errorf("cloudinary rejected upload: %s", uploadResult.Error.Message)
	}

	return uploadResult.SecureURL, nil
}
