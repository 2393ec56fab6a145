package syncer

import "testing"

func TestExtensionForMIME(t *testing.T) {
	tests := []struct {
		mimeType string
		want     string
	}{
		{"image/jpeg", "jpg"},
		{"image/jpg", "jpg"},
		{"image/png", "png"},
		{"image/gif", "gif"},
		{"image/webp", "webp"},
		{"image/svg+xml", "svg"},
		{"image/bmp", "bmp"},
		{"IMAGE/PNG", "png"},
		{"image/tiff", "jpg"},
		{"application/pdf", "jpg"},
		{"", "jpg"},
	}
	for _, tt := range tests {
		if got := extensionForMIME(tt.mimeType); got != tt.want {
			t.Errorf("extensionForMIME(%q) = %q, want %q", tt.mimeType, got, tt.want)
		}
	}
}

func TestObjectKey(t *testing.T) {
	tests := []struct {
		slug     string
		n        int
		mimeType string
		want     string
	}{
		{"elm-house", 1, "image/png", "properties/elm-house/image-1.png"},
		{"elm-house", 12, "image/jpeg", "properties/elm-house/image-12.jpg"},
		{"oak-flat", 3, "video/mp4", "properties/oak-flat/image-3.jpg"},
	}
	for _, tt := range tests {
		if got := objectKey(tt.slug, tt.n, tt.mimeType); got != tt.want {
			t.Errorf("objectKey(%q, %d, %q) = %q, want %q", tt.slug, tt.n, tt.mimeType, got, tt.want)
		}
	}
}
