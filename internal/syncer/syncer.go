// Package syncer replicates a property's image folder from Google
// Drive into the object store: list, erase the old gallery, transfer
// each image under a deterministic key.
package syncer

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/rentalhq/propsync/internal/drive"
	"github.com/rentalhq/propsync/internal/model"
	"github.com/rentalhq/propsync/internal/store"
	"github.com/rentalhq/propsync/internal/synclock"
)

// TokenSource resolves the Drive credential for a run.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
}

// Drive is the view of the Drive API the pipeline needs: folder
// listing and per-file byte download.
type Drive interface {
	ListFolder(ctx context.Context, folderID string) ([]model.DriveFile, error)
	Download(ctx context.Context, fileID string) ([]byte, error)
}

// DriveOpener builds an authenticated Drive client for a resolved
// credential.
type DriveOpener func(ctx context.Context, credential string) (Drive, error)

// Syncer orchestrates one sync run end to end.
type Syncer struct {
	tokens    TokenSource
	openDrive DriveOpener
	store     store.ObjectStore
	locker    synclock.Locker
}

// New creates a Syncer. locker may be nil, in which case runs are not
// serialized per slug and two concurrent syncs for the same property
// can interleave destructively.
func New(tokens TokenSource, openDrive DriveOpener, objects store.ObjectStore, locker synclock.Locker) *Syncer {
	return &Syncer{
		tokens:    tokens,
		openDrive: openDrive,
		store:     objects,
		locker:    locker,
	}
}

// Run performs a full-replace sync for one property.
//
// Sequencing: validate, resolve credential, list, erase, transfer,
// assemble. The erase only fires once the listing has produced at
// least one image file, and a single file's transfer failure is logged
// and skipped rather than aborting the batch. Erasure is destructive
// and precedes the writes it makes room for; a run in which every
// transfer fails leaves the prefix empty.
func (s *Syncer) Run(ctx context.Context, req model.SyncRequest) (*model.SyncResult, error) {
	if req.Slug == "" || req.DriveFolderRef == "" {
		return nil, &InputError{Reason: "missing required fields: slug, driveFolderRef"}
	}

	folderID, err := drive.ParseFolderRef(req.DriveFolderRef)
	if err != nil {
		return nil, &InputError{Reason: "invalid Google Drive folder URL"}
	}

	log.Printf("syncing images for property %s, folder %s", req.Slug, folderID)

	credential, err := s.tokens.AccessToken(ctx)
	if err != nil {
		return nil, err
	}

	drv, err := s.openDrive(ctx, credential)
	if err != nil {
		return nil, fmt.Errorf("failed to create Drive client: %w", err)
	}

	files, err := drv.ListFolder(ctx, folderID)
	if err != nil {
		return nil, err
	}

	imageTotal := 0
	for _, f := range files {
		if isImage(f.MIMEType) {
			imageTotal++
		}
	}
	if imageTotal == 0 {
		return nil, ErrNoImages
	}

	log.Printf("found %d images in Drive folder (%d files total)", imageTotal, len(files))

	if s.locker != nil {
		owner := uuid.NewString()
		if _, err := s.locker.Acquire(ctx, req.Slug, owner); err != nil {
			return nil, err
		}
		defer func() {
			if err := s.locker.Release(ctx, req.Slug, owner); err != nil {
				log.Printf("failed to release sync lock for %s: %v", req.Slug, err)
			}
		}()
	}

	if err := s.eraseGallery(ctx, req.Slug); err != nil {
		return nil, err
	}

	var uploaded []string
	imageIndex := 1
	for _, f := range files {
		if !isImage(f.MIMEType) {
			log.Printf("skipping non-image file: %s", f.Name)
			continue
		}

		key, err := s.transfer(ctx, drv, req.Slug, f, imageIndex)
		if err != nil {
			// One bad file must not abort the batch.
			log.Printf("failed to process %s: %v", f.Name, err)
			continue
		}

		uploaded = append(uploaded, key)
		imageIndex++
	}

	if len(uploaded) == 0 {
		return nil, ErrAllTransfersFailed
	}

	return &model.SyncResult{
		Success:    true,
		RecordID:   req.RecordID,
		Slug:       req.Slug,
		ImageCount: len(uploaded),
		Images:     uploaded,
	}, nil
}

// eraseGallery removes every object under the property's prefix. A
// failed list or delete aborts the run; new objects must never be
// written over a prefix that could not be fully cleared.
func (s *Syncer) eraseGallery(ctx context.Context, slug string) error {
	prefix := store.PropertyPrefix(slug)

	keys, err := s.store.List(ctx, prefix)
	if err != nil {
		return fmt.Errorf("failed to inspect existing images: %w", err)
	}

	for _, key := range keys {
		if err := s.store.Delete(ctx, key); err != nil {
			return fmt.Errorf("failed to erase existing images: %w", err)
		}
		log.Printf("deleted: %s", key)
	}
	return nil
}

// transfer downloads one file from Drive and writes it to the object
// store under the computed key.
func (s *Syncer) transfer(ctx context.Context, drv Drive, slug string, f model.DriveFile, n int) (string, error) {
	data, err := drv.Download(ctx, f.ID)
	if err != nil {
		return "", err
	}

	key := objectKey(slug, n, f.MIMEType)
	if err := s.store.Put(ctx, key, data, f.MIMEType); err != nil {
		return "", err
	}

	log.Printf("uploaded: %s", key)
	return key, nil
}

func isImage(mimeType string) bool {
	return strings.HasPrefix(mimeType, "image/")
}
