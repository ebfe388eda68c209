// Package upload relays image files to the media host.
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"github.com/baharkarakas/moviecatalog/internal/config"
)

var AllowedFormats = []string{"jpg", "jpeg", "png"}

// Store accepts one file and returns its public URL.
type Store interface {
	Upload(ctx context.Context, file io.Reader, filename string) (string, error)
}

type Cloudinary struct {
	cld    *cloudinary.Cloudinary
	folder string
}

func NewCloudinary(c config.CloudinaryConfig) (*Cloudinary, error) {
	if c.CloudName == "" || c.APIKey == "" || c.APISecret == "" {
		return nil, errors.New("cloudinary credentials are not configured")
	}
	cld, err := cloudinary.NewFromParams(c.CloudName, c.APIKey, c.APISecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary: %w", err)
	}
	cld.Config.URL.Secure = true
	return &Cloudinary{cld: cld, folder: c.Folder}, nil
}

// Upload lets the host pick the public id, so filename is not used.
func (c *Cloudinary) Upload(ctx context.Context, file io.Reader, _ string) (string, error) {
	res, err := c.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder:         c.folder,
		AllowedFormats: api.CldAPIArray(AllowedFormats),
	})
	if err != nil {
		return "", err
	}
	if res.Error.Message != "" {
		return "", errors.New(res.Error.Message)
	}
	if res.SecureURL == "" {
		return "", errors.New("media host returned no url")
	}
	return res.SecureURL, nil
}

// Unconfigured answers every upload with an error; used when no media host
// credentials are set so the rest of the API still starts.
type Unconfigured struct{}

func (Unconfigured) Upload(context.Context, io.Reader, string) (string, error) {
	return "", errors.New("image uploads are not configured")
}
