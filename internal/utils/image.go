package utils

import (
	"encoding/base64"
	"errors"
	"strings"
)

var ErrInvalidDataURI = errors.New("invalid base64 image data")

// DecodeBase64Image decodes an inline image payload of the form
// "data:image/png;base64,...." and returns the raw bytes together with the
// content type. A bare base64 string without the data URI prefix is treated
// as image/jpeg.
func DecodeBase64Image(payload string) ([]byte, string, error) {
	contentType := "image/jpeg"
	data := payload

	if strings.HasPrefix(payload, "data:") {
		parts := strings.SplitN(payload, ",", 2)
		if len(parts) != 2 {
			return nil, "", ErrInvalidDataURI
		}
		meta := strings.TrimPrefix(parts[0], "data:")
		meta = strings.TrimSuffix(meta, ";base64")
		if meta != "" {
			contentType = meta
		}
		data = parts[1]
	}

	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, "", ErrInvalidDataURI
	}
	return raw, contentType, nil
}

// ImageExtension maps a content type to the object-key extension used for
// stored images.
func ImageExtension(contentType string) string {
	switch contentType {
	case "image/png":
		return "png"
	case "image/gif":
		return "gif"
	case "image/webp":
		return "webp"
	default:
		return "jpg"
	}
}
