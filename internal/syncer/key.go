package syncer

import (
	"fmt"
	"strings"

	"github.com/rentalhq/propsync/internal/store"
)

const defaultExtension = "jpg"

var mimeExtensions = map[string]string{
	"image/jpeg":    "jpg",
	"image/jpg":     "jpg",
	"image/png":     "png",
	"image/gif":     "gif",
	"image/webp":    "webp",
	"image/svg+xml": "svg",
	"image/bmp":     "bmp",
}

// extensionForMIME maps a content type to a canonical file extension.
// Unrecognized types fall back to jpg; this never fails.
func extensionForMIME(mimeType string) string {
	if ext, ok := mimeExtensions[strings.ToLower(mimeType)]; ok {
		return ext
	}
	return defaultExtension
}

// objectKey computes the destination key for the n-th image of a
// property: properties/{slug}/image-{n}.{ext}.
func objectKey(slug string, n int, mimeType string) string {
	return fmt.Sprintf("%simage-%d.%s", store.PropertyPrefix(slug), n, extensionForMIME(mimeType))
}
