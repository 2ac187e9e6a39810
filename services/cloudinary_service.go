package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// ImageUploader stores an image blob and returns a stable reference URL.
type ImageUploader interface {
	Upload(ctx context.Context, file io.Reader) (string, error)
}

// CloudinaryConfig holds Cloudinary credentials.
type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
}

// ValidateConfig validates Cloudinary configuration.
func (cfg *CloudinaryConfig) ValidateConfig() error {
	if cfg.CloudName == "" {
		return fmt.Errorf("CLOUDINARY_CLOUD_NAME is not set")
	}
	if cfg.APIKey == "" {
		return fmt.Errorf("CLOUDINARY_API_KEY is not set")
	}
	if cfg.APISecret == "" {
		return fmt.Errorf("CLOUDINARY_API_SECRET is not set")
	}
	return nil
}

// CloudinaryService uploads restaurant images to Cloudinary.
type CloudinaryService struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinaryService(cfg *CloudinaryConfig) (*CloudinaryService, error) {
	if err := cfg.ValidateConfig(); err != nil {
		return nil, err
	}
	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, err
	}
	return &CloudinaryService{cld: cld}, nil
}

func (cs *CloudinaryService) Upload(ctx context.Context, file io.Reader) (string, error) {
	res, err := cs.cld.Upload.Upload(ctx, file, uploader.UploadParams{Folder: "restaurants"})
	if err != nil {
		return "", fmt.Errorf("upload image: %w", err)
	}
	if res.Error.Message != "" {
		return "", errors.New(res.Error.Message)
	}
	return res.SecureURL, nil
}
