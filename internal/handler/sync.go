package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/rentalhq/propsync/internal/drive"
	"github.com/rentalhq/propsync/internal/model"
	"github.com/rentalhq/propsync/internal/syncer"
	"github.com/rentalhq/propsync/internal/synclock"
)

// SecretHeader carries the shared secret agreed with the webhook caller.
const SecretHeader = "X-Webhook-Secret"

// Runner runs one sync and reports the outcome.
type Runner interface {
	Run(ctx context.Context, req model.SyncRequest) (*model.SyncResult, error)
}

// SyncHandler handles the image-sync webhook.
type SyncHandler struct {
	webhookSecret string
	runner        Runner
}

// NewSyncHandler creates a new SyncHandler. An empty webhookSecret
// disables the shared-secret check.
func NewSyncHandler(webhookSecret string, runner Runner) *SyncHandler {
	return &SyncHandler{webhookSecret: webhookSecret, runner: runner}
}

// SyncImages validates the webhook call and runs the sync.
//
// The shared-secret check happens strictly before body parsing so a
// malformed body can never slip past an auth failure.
func (h *SyncHandler) SyncImages(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	if h.webhookSecret != "" && getHeader(req, SecretHeader) != h.webhookSecret {
		return errorResponse(http.StatusUnauthorized, "Unauthorized"), nil
	}

	var input model.SyncRequest
	if err := json.Unmarshal([]byte(req.Body), &input); err != nil {
		return errorResponse(http.StatusBadRequest, "Invalid request body"), nil
	}

	if input.Slug == "" || input.DriveFolderRef == "" {
		return errorResponse(http.StatusBadRequest, "Missing required fields: slug, driveFolderRef"), nil
	}

	result, err := h.runner.Run(ctx, input)
	if err != nil {
		log.Printf("sync failed for %s: %v", input.Slug, err)
		return syncErrorResponse(err), nil
	}

	return jsonResponse(http.StatusOK, result), nil
}

// syncErrorResponse classifies a sync failure into an HTTP status.
func syncErrorResponse(err error) events.APIGatewayProxyResponse {
	var inputErr *syncer.InputError
	switch {
	case errors.As(err, &inputErr):
		return errorResponse(http.StatusBadRequest, inputErr.Reason)
	case errors.Is(err, syncer.ErrNoImages):
		return errorResponse(http.StatusNotFound, "No images found in Drive folder")
	case errors.Is(err, synclock.ErrLockHeld):
		return errorResponse(http.StatusConflict, "A sync for this property is already in progress")
	case errors.Is(err, drive.ErrNoCredentials):
		return errorResponse(http.StatusInternalServerError, "Google Drive credentials not configured")
	default:
		return errorResponse(http.StatusInternalServerError, err.Error())
	}
}
