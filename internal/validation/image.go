package validation

import (
	"bytes"
	"fmt"
	"image"
	// Decoders registered for DecodeConfig.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

var allowedImageFormats = map[string]struct{}{
	"gif":  {},
	"jpeg": {},
	"png":  {},
	"webp": {},
}

// ImageUpload is an uploaded attachment held in memory.
type ImageUpload struct {
	Filename string
	Data     []byte
}

// ValidateImage checks that the upload is a decodable gif, jpeg, png or webp
// image within maxBytes. It returns the detected format.
func ValidateImage(img *ImageUpload, maxBytes int64) (string, error) {
	if img == nil || len(img.Data) == 0 {
		return "", fmt.Errorf("the submitted file is empty")
	}
	if maxBytes > 0 && int64(len(img.Data)) > maxBytes {
		return "", fmt.Errorf("image must not exceed %d MB", maxBytes/(1<<20))
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(img.Data))
	if err != nil {
		return "", fmt.Errorf("upload a valid image. The file you uploaded was either not an image or a corrupted image")
	}
	if _, ok := allowedImageFormats[format]; !ok {
		return "", fmt.Errorf("unsupported image format %q", format)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return "", fmt.Errorf("image has no pixels")
	}
	return format, nil
}
