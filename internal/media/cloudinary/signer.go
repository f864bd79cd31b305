package cloudinary

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2/api"

	"github.com/natah-genesis/portfolio-api/config"
)

// ConfigError reports provider credentials that are not configured.
type ConfigError struct {
	Missing []string
}

func (e *ConfigError) Error() string {
	return "Cloudinary config missing: " + strings.Join(e.Missing, ", ")
}

// SignRequest names the optional upload parameters the client will send.
type SignRequest struct {
	Folder   string `json:"folder"`
	PublicID string `json:"public_id"`
}

// SignedUpload is everything a client needs for a direct upload. The secret
// never leaves the server.
type SignedUpload struct {
	Signature string `json:"signature"`
	Timestamp int64  `json:"timestamp"`
	APIKey    string `json:"api_key"`
	CloudName string `json:"cloud_name"`
}

// Signer mints short-lived upload signatures.
type Signer struct {
	cfg config.CloudinaryConfig
	now func() time.Time
}

func NewSigner(cfg config.CloudinaryConfig, now func() time.Time) *Signer {
	if now == nil {
		now = time.Now
	}
	return &Signer{cfg: cfg, now: now}
}

// Sign signs exactly {timestamp, folder?, public_id?}. resource_type is left
// out because the upload form never carries it.
func (s *Signer) Sign(req SignRequest) (SignedUpload, error) {
	if missing := s.cfg.MissingKeys(); len(missing) > 0 {
		return SignedUpload{}, &ConfigError{Missing: missing}
	}

	ts := s.now().Unix()
	params := url.Values{}
	params.Set("timestamp", strconv.FormatInt(ts, 10))
	if req.Folder != "" {
		params.Set("folder", req.Folder)
	}
	if req.PublicID != "" {
		params.Set("public_id", req.PublicID)
	}

	signature, err := api.SignParameters(params, s.cfg.APISecret)
	if err != nil {
		return SignedUpload{}, fmt.Errorf("failed to sign upload parameters: %w", err)
	}

	return SignedUpload{
		Signature: signature,
		Timestamp: ts,
		APIKey:    s.cfg.APIKey,
		CloudName: s.cfg.CloudName,
	}, nil
}
