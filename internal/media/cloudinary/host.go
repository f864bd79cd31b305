package cloudinary

import (
	"context"
	"fmt"
	"strings"

	cld "github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"github.com/natah-genesis/portfolio-api/config"
)

const (
	resourceImage = "image"
	resourceVideo = "video"
)

// Host deletes assets through the Cloudinary Upload API.
type Host struct {
	client *cld.Cloudinary
}

type HostOption func(*cld.Cloudinary)

// WithUploadPrefix points the client at another API base URL.
func WithUploadPrefix(prefix string) HostOption {
	return func(c *cld.Cloudinary) {
		c.Config.API.UploadPrefix = prefix
		// the upload API holds its own copy of the config
		c.Upload.Config.API.UploadPrefix = prefix
	}
}

func NewHost(cfg config.CloudinaryConfig, opts ...HostOption) (*Host, error) {
	if missing := cfg.MissingKeys(); len(missing) > 0 {
		return nil, &ConfigError{Missing: missing}
	}

	client, err := cld.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to create cloudinary client: %w", err)
	}
	for _, opt := range opts {
		opt(client)
	}
	return &Host{client: client}, nil
}

// Destroy removes the asset and invalidates CDN copies. Videos must be
// destroyed as video resources, so the kind is read off the delivery URL.
func (h *Host) Destroy(ctx context.Context, publicID, src string) error {
	res, err := h.client.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: ResourceTypeFromURL(src),
		Invalidate:   api.Bool(true),
	})
	if err != nil {
		return fmt.Errorf("failed to destroy %s: %w", publicID, err)
	}
	if res.Error.Message != "" {
		return fmt.Errorf("failed to destroy %s: %s", publicID, res.Error.Message)
	}
	if res.Result != "ok" && res.Result != "not found" {
		return fmt.Errorf("failed to destroy %s: unexpected result %q", publicID, res.Result)
	}
	return nil
}

// ResourceTypeFromURL returns "video" for Cloudinary video delivery URLs
// and "image" otherwise.
func ResourceTypeFromURL(src string) string {
	if strings.Contains(src, "/video/upload/") {
		return resourceVideo
	}
	return resourceImage
}
