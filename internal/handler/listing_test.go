package handler_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/rentalhq/propsync/internal/handler"
	"github.com/rentalhq/propsync/internal/model"
)

type fakeSource struct {
	listings []model.Listing
	images   map[string][]string
	err      error
}

func (f *fakeSource) FetchListings(ctx context.Context) ([]model.Listing, error) {
	return f.listings, f.err
}

func (f *fakeSource) PropertyImages(ctx context.Context, slug string) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.images[slug], nil
}

func TestListProperties_Success(t *testing.T) {
	source := &fakeSource{listings: []model.Listing{
		{Slug: "elm-house", Title: "Elm House", Price: 1800},
		{Slug: "oak-flat", Title: "Oak Flat", Price: 1200},
	}}
	h := handler.NewListingHandler(source)

	resp, err := h.ListProperties(context.Background(), events.APIGatewayProxyRequest{})
	if err != nil {
		t.Fatalf("ListProperties returned error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var listings []model.Listing
	if err := json.Unmarshal([]byte(resp.Body), &listings); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if len(listings) != 2 || listings[0].Slug != "elm-house" {
		t.Errorf("unexpected listings: %+v", listings)
	}
}

func TestListProperties_SourceFailure(t *testing.T) {
	h := handler.NewListingHandler(&fakeSource{err: fmt.Errorf("airtable down")})

	resp, _ := h.ListProperties(context.Background(), events.APIGatewayProxyRequest{})
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.StatusCode)
	}
}

func TestPropertyImages_Success(t *testing.T) {
	source := &fakeSource{images: map[string][]string{
		"elm-house": {
			"https://img.example.com/properties/elm-house/image-1.jpg",
			"https://img.example.com/properties/elm-house/image-2.jpg",
		},
	}}
	h := handler.NewListingHandler(source)

	req := events.APIGatewayProxyRequest{PathParameters: map[string]string{"slug": "elm-house"}}
	resp, _ := h.PropertyImages(context.Background(), req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, resp.Body)
	}

	var body struct {
		Slug   string   `json:"slug"`
		Images []string `json:"images"`
	}
	if err := json.Unmarshal([]byte(resp.Body), &body); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if body.Slug != "elm-house" || len(body.Images) != 2 {
		t.Errorf("unexpected body: %+v", body)
	}
}

func TestPropertyImages_MissingSlug(t *testing.T) {
	h := handler.NewListingHandler(&fakeSource{})

	resp, _ := h.PropertyImages(context.Background(), events.APIGatewayProxyRequest{
		PathParameters: map[string]string{},
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}
