package lib

import (
	"context"
	"errors"
	"log"
	"os"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

var Cloudinary *cloudinary.Cloudinary

var ErrMediaHostNotConfigured = errors.New("media host is not configured")

// ConnectCloudinary initializes the media host client from CLOUDINARY_URL.
// When the variable is unset the client stays nil and uploads fail at use.
func ConnectCloudinary() {
	url := os.Getenv("CLOUDINARY_URL")
	if url == "" {
		log.Println("CLOUDINARY_URL not set, image uploads disabled")
		return
	}

	cld, err := cloudinary.NewFromURL(url)
	if err != nil {
		panic("Failed to configure media host: " + err.Error())
	}

	Cloudinary = cld
}

// UploadImage sends a base64-encoded image (or remote URL) to the media host
// and returns the canonical HTTPS URL of the stored asset.
func UploadImage(ctx context.Context, image string) (string, error) {
	if Cloudinary == nil {
		return "", ErrMediaHostNotConfigured
	}

	result, err := Cloudinary.Upload.Upload(ctx, image, uploader.UploadParams{})
	if err != nil {
		return "", err
	}

	return result.SecureURL, nil
}

// DestroyImage deletes the asset behind a media host URL. Best effort: callers
// log the returned error and carry on.
func DestroyImage(ctx context.Context, imageURL string) error {
	if Cloudinary == nil {
		return ErrMediaHostNotConfigured
	}

	publicID := MediaPublicID(imageURL)
	if publicID == "" {
		return errors.New("could not derive asset id from " + imageURL)
	}

	_, err := Cloudinary.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	return err
}

// MediaPublicID derives the media host asset id from a stored URL: the last
// path segment with its file extension stripped.
func MediaPublicID(imageURL string) string {
	segment := imageURL
	if i := strings.LastIndex(segment, "/"); i >= 0 {
		segment = segment[i+1:]
	}
	if i := strings.Index(segment, "."); i >= 0 {
		segment = segment[:i]
	}
	return segment
}
