// Package drive talks to the Google Drive API: it resolves folder
// references and credentials, lists folder contents, and downloads
// file bytes.
package drive

import (
	"errors"
	"regexp"
	"strings"
)

// ErrInvalidFolderRef is returned when a folder reference is neither a
// Drive folder URL nor a bare folder ID.
var ErrInvalidFolderRef = errors.New("invalid Google Drive folder reference")

var (
	folderPathPattern = regexp.MustCompile(`/folders/([A-Za-z0-9_\-]+)`)
	bareIDPattern     = regexp.MustCompile(`^[A-Za-z0-9_\-]{10,}$`)
)

// ParseFolderRef extracts a folder ID from a user-supplied reference.
// The reference may be a full URL like
// https://drive.google.com/drive/folders/FOLDER_ID?usp=sharing
// or the bare folder ID itself.
func ParseFolderRef(ref string) (string, error) {
	s := strings.TrimSpace(ref)
	if s == "" {
		return "", ErrInvalidFolderRef
	}

	if m := folderPathPattern.FindStringSubmatch(s); m != nil {
		return m[1], nil
	}

	if bareIDPattern.MatchString(s) {
		return s, nil
	}

	return "", ErrInvalidFolderRef
}
