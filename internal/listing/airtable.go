// Package listing fetches property records from the Airtable base
// behind the rental site and resolves each property's gallery from the
// object store.
package listing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/rentalhq/propsync/internal/drive"
	"github.com/rentalhq/propsync/internal/model"
	"github.com/rentalhq/propsync/internal/store"
)

const defaultBaseURL = "https://api.airtable.com/v0"

// Source reads property listings from Airtable.
type Source struct {
	httpClient *http.Client
	baseURL    string
	token      string
	baseID     string
	table      string
	objects    store.ObjectStore
}

// NewSource creates a listings source for one Airtable base and table.
// objects may be nil; galleries are then left empty.
func NewSource(httpClient *http.Client, token, baseID, table string, objects store.ObjectStore) *Source {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Source{
		httpClient: httpClient,
		baseURL:    defaultBaseURL,
		token:      token,
		baseID:     baseID,
		table:      table,
		objects:    objects,
	}
}

type airtableRecord struct {
	ID     string                     `json:"id"`
	Fields map[string]json.RawMessage `json:"fields"`
}

type airtablePage struct {
	Records []airtableRecord `json:"records"`
	Offset  string           `json:"offset"`
}

// FetchListings returns all property records, sorted by title, with
// each gallery resolved from the object store.
func (s *Source) FetchListings(ctx context.Context) ([]model.Listing, error) {
	if s.token == "" || s.baseID == "" {
		return nil, fmt.Errorf("Airtable credentials not configured")
	}

	var records []airtableRecord
	offset := ""
	for {
		page, err := s.fetchPage(ctx, offset)
		if err != nil {
			return nil, err
		}
		records = append(records, page.Records...)
		if page.Offset == "" {
			break
		}
		offset = page.Offset
	}

	listings := make([]model.Listing, 0, len(records))
	for _, rec := range records {
		l := mapRecord(rec)
		if l.Slug == "" {
			continue
		}
		if s.objects != nil {
			images, err := s.PropertyImages(ctx, l.Slug)
			if err != nil {
				return nil, err
			}
			l.Images = images
		}
		listings = append(listings, l)
	}
	return listings, nil
}

// PropertyImages returns the public gallery URLs for one property, in
// stored key order.
func (s *Source) PropertyImages(ctx context.Context, slug string) ([]string, error) {
	keys, err := s.objects.List(ctx, store.PropertyPrefix(slug))
	if err != nil {
		return nil, fmt.Errorf("failed to list gallery for %s: %w", slug, err)
	}

	images := []string{}
	for _, key := range keys {
		if isImageKey(key) {
			images = append(images, s.objects.PublicURL(key))
		}
	}
	sort.Strings(images)
	return images, nil
}

func (s *Source) fetchPage(ctx context.Context, offset string) (*airtablePage, error) {
	params := url.Values{}
	params.Set("pageSize", "100")
	params.Set("sort[0][field]", "Title")
	if offset != "" {
		params.Set("offset", offset)
	}

	u := fmt.Sprintf("%s/%s/%s?%s", s.baseURL, s.baseID, url.PathEscape(s.table), params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+s.token)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("Airtable fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("Airtable fetch failed: %d - %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var page airtablePage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("failed to decode Airtable response: %w", err)
	}
	return &page, nil
}

// mapRecord maps Airtable column names onto a Listing. Column names
// follow the base's schema (Title, Slug, Monthly Rent, ...).
func mapRecord(rec airtableRecord) model.Listing {
	title := fieldString(rec.Fields, "Title")
	slug := fieldString(rec.Fields, "Slug")
	if slug == "" {
		slug = Slugify(title)
	}

	id := fieldString(rec.Fields, "ID")
	if id == "" {
		id = slug
	}

	l := model.Listing{
		ID:          id,
		RecordID:    rec.ID,
		Title:       title,
		Slug:        slug,
		Price:       fieldNumber(rec.Fields, "Monthly Rent"),
		City:        fieldString(rec.Fields, "City"),
		Address:     fieldString(rec.Fields, "Address"),
		Status:      fieldString(rec.Fields, "Status"),
		Bedrooms:    int(fieldNumber(rec.Fields, "Bedrooms")),
		Bathrooms:   fieldNumber(rec.Fields, "Bathrooms"),
		Parking:     fieldString(rec.Fields, "Parking"),
		Pets:        fieldString(rec.Fields, "Pets"),
		Description: fieldString(rec.Fields, "Description"),
		Images:      []string{},
	}
	if l.Status == "" {
		l.Status = "Available"
	}

	if ref := fieldString(rec.Fields, "Image Folder URL"); ref != "" {
		if _, err := drive.ParseFolderRef(ref); err == nil {
			l.FolderRef = ref
		}
	}
	return l
}

// fieldString reads a field as a string, converting numbers when the
// base stores a column as numeric.
func fieldString(fields map[string]json.RawMessage, name string) string {
	raw, ok := fields[name]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	return ""
}

// fieldNumber reads a field as a number, tolerating string-typed
// columns and returning 0 for anything non-numeric.
func fieldNumber(fields map[string]json.RawMessage, name string) float64 {
	raw, ok := fields[name]
	if !ok {
		return 0
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if v, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return v
		}
	}
	return 0
}

var (
	nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)
	imageKeyExt  = regexp.MustCompile(`(?i)\.(jpg|jpeg|png|webp|gif|svg|bmp)$`)
)

// Slugify derives a URL-safe identifier from a title.
func Slugify(s string) string {
	s = nonSlugChars.ReplaceAllString(strings.ToLower(s), "-")
	return strings.Trim(s, "-")
}

func isImageKey(key string) bool {
	return imageKeyExt.MatchString(key)
}
