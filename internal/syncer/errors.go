package syncer

import "errors"

var (
	// ErrNoImages is returned when the folder listing contains no
	// image-type files. This is a business outcome, not a transient
	// failure; nothing is erased or written.
	ErrNoImages = errors.New("no images found in Drive folder")

	// ErrAllTransfersFailed is returned when at least one image was
	// attempted and none landed in the object store. The prior gallery
	// has already been erased at this point.
	ErrAllTransfersFailed = errors.New("failed to upload any images")
)

// InputError marks a request that failed validation before any network
// call was made. Handlers classify it as a client error.
type InputError struct {
	Reason string
}

func (e *InputError) Error() string { return e.Reason }
