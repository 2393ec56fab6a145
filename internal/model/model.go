package model

// SyncRequest is the webhook payload sent when a property's image folder
// should be re-synced from Google Drive into the object store.
type SyncRequest struct {
	RecordID       string `json:"recordId"`
	Slug           string `json:"slug"`
	DriveFolderRef string `json:"driveFolderRef"`
}

// SyncResult is the webhook response body for a successful sync.
type SyncResult struct {
	Success    bool     `json:"success"`
	RecordID   string   `json:"recordId"`
	Slug       string   `json:"slug"`
	ImageCount int      `json:"imageCount"`
	Images     []string `json:"images"`
}

// DriveFile is one file entry from a Google Drive folder listing.
// Identity is ID; Name is used for ordering and logging only.
type DriveFile struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	MIMEType string `json:"mimeType"`
}

// SyncLock represents an advisory lock on a property's image prefix
// while a sync run is in flight.
type SyncLock struct {
	Slug      string `json:"slug" dynamodbav:"slug"`
	Owner     string `json:"owner" dynamodbav:"owner"`
	ExpiresAt int64  `json:"expires_at" dynamodbav:"expires_at"` // TTL (Unix timestamp)
}

// Listing is a property record as served to the display layer.
type Listing struct {
	ID          string   `json:"id"`
	RecordID    string   `json:"recordId"`
	Title       string   `json:"title"`
	Slug        string   `json:"slug"`
	Price       float64  `json:"price"`
	City        string   `json:"city"`
	Address     string   `json:"address"`
	Status      string   `json:"status"`
	Bedrooms    int      `json:"bedrooms"`
	Bathrooms   float64  `json:"bathrooms,omitempty"`
	Parking     string   `json:"parking,omitempty"`
	Pets        string   `json:"pets,omitempty"`
	Description string   `json:"description,omitempty"`
	FolderRef   string   `json:"imageFolderUrl,omitempty"`
	Images      []string `json:"images"`
}
