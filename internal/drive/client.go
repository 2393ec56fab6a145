package drive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/rentalhq/propsync/internal/model"
	"golang.org/x/oauth2"
	drivev3 "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// maxListPages bounds the continuation-token loop so a misbehaving
// upstream cannot keep the handler alive forever.
const maxListPages = 100

const listPageSize = 100

// ErrPaginationLimit is returned when a folder listing does not
// terminate within maxListPages pages.
var ErrPaginationLimit = errors.New("pagination limit exceeded")

// Client lists and downloads files from Google Drive.
type Client struct {
	service *drivev3.Service
}

// NewClient creates a Drive client for a resolved credential. API keys
// and bearer tokens are wired into the service differently; IsAPIKey
// decides which. Extra options are appended after the credential,
// letting tests point the client at a stub endpoint.
func NewClient(ctx context.Context, credential string, extra ...option.ClientOption) (*Client, error) {
	var opts []option.ClientOption
	if IsAPIKey(credential) {
		opts = append(opts, option.WithAPIKey(credential))
	} else {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: credential})
		opts = append(opts, option.WithTokenSource(ts))
	}
	opts = append(opts, extra...)

	srv, err := drivev3.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create Drive service: %w", err)
	}
	return &Client{service: srv}, nil
}

// ListFolder returns every non-trashed child of the folder, following
// continuation tokens until the API reports none. The result is sorted
// by file name so downstream numbering is deterministic regardless of
// the order pages arrive in. A failed page discards everything; no
// partial list is returned.
func (c *Client) ListFolder(ctx context.Context, folderID string) ([]model.DriveFile, error) {
	q := fmt.Sprintf("'%s' in parents and trashed = false", folderID)

	var files []model.DriveFile
	pageToken := ""
	for page := 0; ; page++ {
		if page >= maxListPages {
			return nil, fmt.Errorf("listing folder %s: %w", folderID, ErrPaginationLimit)
		}

		call := c.service.Files.List().
			Q(q).
			PageSize(listPageSize).
			Fields("nextPageToken, files(id, name, mimeType)").
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		r, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("drive API error: %w", describeAPIError(err))
		}

		for _, f := range r.Files {
			files = append(files, model.DriveFile{
				ID:       f.Id,
				Name:     f.Name,
				MIMEType: f.MimeType,
			})
		}

		pageToken = r.NextPageToken
		if pageToken == "" {
			break
		}
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// Download fetches a file's raw bytes from the media endpoint.
func (c *Client) Download(ctx context.Context, fileID string) ([]byte, error) {
	resp, err := c.service.Files.Get(fileID).Context(ctx).Download()
	if err != nil {
		return nil, fmt.Errorf("download failed: %w", describeAPIError(err))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("download failed: reading body: %w", err)
	}
	return data, nil
}

// describeAPIError keeps the upstream status and body text visible in
// wrapped errors.
func describeAPIError(err error) error {
	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		return fmt.Errorf("status %d: %s", gErr.Code, gErr.Message)
	}
	return err
}
