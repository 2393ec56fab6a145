package handler

import (
	"context"
	"log"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/rentalhq/propsync/internal/model"
)

// ListingSource supplies property records and per-property galleries.
type ListingSource interface {
	FetchListings(ctx context.Context) ([]model.Listing, error)
	PropertyImages(ctx context.Context, slug string) ([]string, error)
}

// ListingHandler serves the read endpoints consumed by the site.
type ListingHandler struct {
	source ListingSource
}

// NewListingHandler creates a new ListingHandler.
func NewListingHandler(source ListingSource) *ListingHandler {
	return &ListingHandler{source: source}
}

// ListProperties returns all property listings with resolved galleries.
func (h *ListingHandler) ListProperties(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	listings, err := h.source.FetchListings(ctx)
	if err != nil {
		log.Printf("failed to fetch listings: %v", err)
		return errorResponse(http.StatusInternalServerError, "Failed to fetch listings"), nil
	}
	return jsonResponse(http.StatusOK, listings), nil
}

// PropertyImages returns the gallery URLs for one property.
func (h *ListingHandler) PropertyImages(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	slug := req.PathParameters["slug"]
	if slug == "" {
		return errorResponse(http.StatusBadRequest, "Missing property slug"), nil
	}

	images, err := h.source.PropertyImages(ctx, slug)
	if err != nil {
		log.Printf("failed to resolve gallery for %s: %v", slug, err)
		return errorResponse(http.StatusInternalServerError, "Failed to fetch property images"), nil
	}

	return jsonResponse(http.StatusOK, map[string]interface{}{
		"slug":   slug,
		"images": images,
	}), nil
}
