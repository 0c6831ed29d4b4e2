package cloudinary

import (
	"context"
	"io"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/cloudinary/cloudinary-go/v2/config"
)

// Client wraps the Cloudinary upload API for marketplace content: the main
// deliverable (any resource type) and its preview image.
type Client interface {
	UploadContent(ctx context.Context, file io.Reader, filename string) (*UploadResult, error)
	UploadPreview(ctx context.Context, file io.Reader, publicID string) (*UploadResult, error)
	Delete(ctx context.Context, publicID, resourceType string) error
}

type UploadResult struct {
	URL          string
	PublicID     string
	ResourceType string
}

const (
	contentFolder = "uploads"
	previewFolder = "previews"
)

type clientImpl struct {
	uploader *uploader.API
}

func NewClientFromParams(cloudName, apiKey, apiSecret string) (Client, error) {
	cfg, err := config.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, err
	}
	up, err := uploader.NewWithConfiguration(cfg)
	if err != nil {
		return nil, err
	}
	return &clientImpl{uploader: up}, nil
}

// UploadContent stores the purchasable file. Resource type is derived from
// the filename extension: images and videos get their native pipelines,
// everything else (PDF, audio, archives) goes up as raw.
func (c *clientImpl) UploadContent(ctx context.Context, file io.Reader, filename string) (*UploadResult, error) {
	resourceType := resourceTypeFor(filename)
	result, err := c.uploader.Upload(ctx, file, uploader.UploadParams{
		Folder:       contentFolder,
		ResourceType: resourceType,
	})
	if err != nil {
		return nil, err
	}
	return &UploadResult{
		URL:          result.SecureURL,
		PublicID:     result.PublicID,
		ResourceType: resourceType,
	}, nil
}

// UploadPreview stores the listing thumbnail; always an image.
func (c *clientImpl) UploadPreview(ctx context.Context, file io.Reader, publicID string) (*UploadResult, error) {
	result, err := c.uploader.Upload(ctx, file, uploader.UploadParams{
		Folder:       previewFolder,
		PublicID:     publicID,
		ResourceType: "image",
	})
	if err != nil {
		return nil, err
	}
	return &UploadResult{
		URL:          result.SecureURL,
		PublicID:     result.PublicID,
		ResourceType: "image",
	}, nil
}

func (c *clientImpl) Delete(ctx context.Context, publicID, resourceType string) error {
	if resourceType == "" {
		resourceType = "raw"
	}
	_, err := c.uploader.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: resourceType,
	})
	return err
}

func resourceTypeFor(filename string) string {
	dot := strings.LastIndex(filename, ".")
	if dot < 0 {
		return "raw"
	}
	switch strings.ToLower(filename[dot+1:]) {
	case "jpg", "jpeg", "png", "gif", "webp", "svg":
		return "image"
	case "mp4", "mov", "webm", "mkv", "avi":
		return "video"
	default:
		return "raw"
	}
}
