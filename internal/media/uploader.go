// Package media wraps the external media host (Cloudinary). Uploads
// accept the same payloads the HTTP API receives: a URL or a base64
// data URI.
package media

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"github.com/iliyamo/online-course-platform/internal/model"
)

// ErrDisabled is returned when no media host is configured.
var ErrDisabled = errors.New("media uploads are not configured")

// Uploader is what handlers need from the media host.
type Uploader interface {
	// Upload stores the payload under the given folder and returns
	// the hosted asset reference. Width of 0 means no resize.
	Upload(ctx context.Context, folder, payload string, width int) (model.Avatar, error)
	// Destroy removes a previously uploaded asset. Destroying an
	// unknown id is not an error.
	Destroy(ctx context.Context, publicID string) error
}

type cloudinaryUploader struct {
	cld *cloudinary.Cloudinary
}

// NewCloudinary builds an Uploader from Cloudinary credentials.
func NewCloudinary(cloudName, apiKey, apiSecret string) (Uploader, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary init: %w", err)
	}
	return &cloudinaryUploader{cld: cld}, nil
}

func (u *cloudinaryUploader) Upload(ctx context.Context, folder, payload string, width int) (model.Avatar, error) {
	params := uploader.UploadParams{Folder: folder}
	if width > 0 {
		params.Transformation = fmt.Sprintf("w_%d", width)
	}
	resp, err := u.cld.Upload.Upload(ctx, payload, params)
	if err != nil {
		return model.Avatar{}, fmt.Errorf("upload to %s: %w", folder, err)
	}
	return model.Avatar{PublicID: resp.PublicID, URL: resp.SecureURL}, nil
}

func (u *cloudinaryUploader) Destroy(ctx context.Context, publicID string) error {
	if publicID == "" {
		return nil
	}
	if _, err := u.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID}); err != nil {
		return fmt.Errorf("destroy %s: %w", publicID, err)
	}
	return nil
}

// disabledUploader rejects uploads when no host is configured.
type disabledUploader struct{}

// NewDisabled returns an Uploader that fails every call with
// ErrDisabled.
func NewDisabled() Uploader { return disabledUploader{} }

func (disabledUploader) Upload(context.Context, string, string, int) (model.Avatar, error) {
	return model.Avatar{}, ErrDisabled
}

func (disabledUploader) Destroy(context.Context, string) error { return ErrDisabled }
