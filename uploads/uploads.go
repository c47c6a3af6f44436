package uploads

import (
	"context"
	"errors"
	"io"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"github.com/linesmerrill/victim-dao-api/config"
)

// Folders the API uploads into
const (
	ReceiptFolder = "victimdao/receipts"
	WalletFolder  = "victimdao/wallets"
)

// ErrNotConfigured is returned when no upload credentials are set
var ErrNotConfigured = errors.New("uploads are not configured")

// Uploader stores a file and returns its public URL
type Uploader interface {
	Upload(ctx context.Context, file io.Reader, folder string) (string, error)
}

// CloudinaryUploader uploads to a Cloudinary account
type CloudinaryUploader struct {
	cld *cloudinary.Cloudinary
}

// New returns a Cloudinary backed uploader, or one that always fails with
// ErrNotConfigured when credentials are missing
func New(conf config.CloudinaryConfig) (Uploader, error) {
	if conf.CloudName == "" || conf.APIKey == "" || conf.APISecret == "" {
		return disabled{}, nil
	}
	cld, err := cloudinary.NewFromParams(conf.CloudName, conf.APIKey, conf.APISecret)
	if err != nil {
		return nil, err
	}
	return &CloudinaryUploader{cld: cld}, nil
}

// Upload sends file to folder and returns its https URL
func (c *CloudinaryUploader) Upload(ctx context.Context, file io.Reader, folder string) (string, error) {
	resp, err := c.cld.Upload.Upload(ctx, file, uploader.UploadParams{Folder: folder})
	if err != nil {
		return "", err
	}
	if resp.Error.Message != "" {
		return "", errors.New(resp.Error.Message)
	}
	return resp.SecureURL, nil
}

type disabled struct{}

func (disabled) Upload(ctx context.Context, file io.Reader, folder string) (string, error) {
	return "", ErrNotConfigured
}
