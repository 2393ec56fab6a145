// Package app wires the service together and routes API Gateway
// requests to the handlers.
package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/ssm"

	"github.com/rentalhq/propsync/internal/drive"
	"github.com/rentalhq/propsync/internal/handler"
	"github.com/rentalhq/propsync/internal/listing"
	"github.com/rentalhq/propsync/internal/secret"
	"github.com/rentalhq/propsync/internal/store"
	"github.com/rentalhq/propsync/internal/syncer"
	"github.com/rentalhq/propsync/internal/synclock"
)

// App holds the dependencies for the Lambda function.
type App struct {
	syncHandler    *handler.SyncHandler
	listingHandler *handler.ListingHandler
}

// NewApp initializes the application dependencies from the environment.
func NewApp(ctx context.Context) *App {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		panic(fmt.Sprintf("unable to load SDK config, %v", err))
	}

	// ---------- Secret Resolver ----------
	var resolver secret.Resolver
	if os.Getenv("DEV_MODE") == "true" {
		resolver = secret.NewEnvResolver()
		fmt.Println("Using EnvResolver (DEV_MODE=true)")
	} else {
		resolver = secret.NewSSMResolver(ssm.NewFromConfig(cfg))
		fmt.Println("Using SSMResolver (SSM Parameter Store)")
	}

	webhookSecret := optionalSecret(ctx, resolver, "WEBHOOK_SECRET_PARAM", "/propsync/webhook-secret")
	driveAPIKey := optionalSecret(ctx, resolver, "GOOGLE_DRIVE_API_KEY_PARAM", "/propsync/google-drive-api-key")
	serviceAccountJSON := optionalSecret(ctx, resolver, "GOOGLE_SERVICE_ACCOUNT_JSON_PARAM", "/propsync/google-service-account-json")
	airtableToken := optionalSecret(ctx, resolver, "AIRTABLE_TOKEN_PARAM", "/propsync/airtable-token")

	// ---------- Object Store ----------
	bucket := os.Getenv("IMAGES_BUCKET_NAME")
	if bucket == "" {
		bucket = "rental-manager-images"
	}
	publicURL := os.Getenv("IMAGES_PUBLIC_URL")

	// R2 is addressed through its S3-compatible endpoint.
	var s3Client *s3.Client
	if accountID := os.Getenv("R2_ACCOUNT_ID"); accountID != "" {
		s3Client = s3.NewFromConfig(cfg, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", accountID))
		})
	} else {
		s3Client = s3.NewFromConfig(cfg)
	}
	objects := store.NewS3Store(s3Client, bucket, publicURL)

	// ---------- Sync Lock ----------
	var locker synclock.Locker
	if table := os.Getenv("SYNC_LOCKS_TABLE"); table != "" {
		locker = synclock.NewLockManager(dynamodb.NewFromConfig(cfg), table)
	} else {
		locker = synclock.NewMemoryLocker()
		fmt.Println("SYNC_LOCKS_TABLE not set, using in-process sync lock")
	}

	// ---------- Sync Pipeline ----------
	creds := drive.Credentials{
		APIKey:             driveAPIKey,
		ServiceAccountJSON: serviceAccountJSON,
	}
	openDrive := func(ctx context.Context, credential string) (syncer.Drive, error) {
		return drive.NewClient(ctx, credential)
	}
	sync := syncer.New(creds, openDrive, objects, locker)

	// ---------- Listings ----------
	airtableBase := os.Getenv("AIRTABLE_BASE_ID")
	airtableTable := os.Getenv("AIRTABLE_TABLE_NAME")
	if airtableTable == "" {
		airtableTable = "Properties"
	}
	source := listing.NewSource(nil, airtableToken, airtableBase, airtableTable, objects)

	return NewAppWithHandlers(
		handler.NewSyncHandler(webhookSecret, sync),
		handler.NewListingHandler(source),
	)
}

// NewAppWithHandlers assembles an App from already-built handlers.
func NewAppWithHandlers(sync *handler.SyncHandler, listings *handler.ListingHandler) *App {
	return &App{
		syncHandler:    sync,
		listingHandler: listings,
	}
}

// optionalSecret resolves a secret whose absence is tolerated at
// startup; features depending on it fail at call time instead.
func optionalSecret(ctx context.Context, resolver secret.Resolver, envName, defaultParam string) string {
	param := os.Getenv(envName)
	if param == "" {
		param = defaultParam
	}
	val, err := resolver.GetSecret(ctx, param)
	if err != nil {
		log.Printf("WARNING: failed to resolve %s: %v", param, err)
		return ""
	}
	return val
}

// HandleRequest routes API Gateway requests to the appropriate handler.
func (app *App) HandleRequest(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	path := req.Path
	method := req.HTTPMethod

	fmt.Printf("Request: %s %s\n", method, path)

	// CORS Preflight
	if method == http.MethodOptions {
		return corsResponse(events.APIGatewayProxyResponse{StatusCode: http.StatusNoContent}), nil
	}

	if req.PathParameters == nil {
		req.PathParameters = make(map[string]string)
	}

	// POST /sync-images (the webhook also accepts the bare root path)
	if path == "/sync-images" || path == "/" {
		if method != http.MethodPost {
			return corsResponse(methodNotAllowed()), nil
		}
		return corsResponse(must(app.syncHandler.SyncImages(ctx, req))), nil
	}

	// GET /properties
	if path == "/properties" {
		if method != http.MethodGet {
			return corsResponse(methodNotAllowed()), nil
		}
		return corsResponse(must(app.listingHandler.ListProperties(ctx, req))), nil
	}

	// GET /properties/{slug}/images
	if strings.HasPrefix(path, "/properties/") {
		parts := strings.Split(strings.TrimPrefix(path, "/properties/"), "/")
		if len(parts) == 2 && parts[0] != "" && parts[1] == "images" {
			if method != http.MethodGet {
				return corsResponse(methodNotAllowed()), nil
			}
			req.PathParameters["slug"] = parts[0]
			return corsResponse(must(app.listingHandler.PropertyImages(ctx, req))), nil
		}
	}

	return corsResponse(events.APIGatewayProxyResponse{
		StatusCode: http.StatusNotFound,
		Body:       `{"error":"Not found"}`,
		Headers:    map[string]string{"Content-Type": "application/json"},
	}), nil
}

func methodNotAllowed() events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusMethodNotAllowed,
		Body:       `{"error":"Method not allowed"}`,
		Headers:    map[string]string{"Content-Type": "application/json"},
	}
}

// corsResponse adds permissive CORS headers to a response.
func corsResponse(resp events.APIGatewayProxyResponse) events.APIGatewayProxyResponse {
	if resp.Headers == nil {
		resp.Headers = make(map[string]string)
	}
	resp.Headers["Access-Control-Allow-Origin"] = "*"
	resp.Headers["Access-Control-Allow-Methods"] = "GET,POST,OPTIONS"
	resp.Headers["Access-Control-Allow-Headers"] = "Content-Type, " + handler.SecretHeader
	return resp
}

// must unwraps a handler response, converting an unexpected error into
// a plain 500.
func must(resp events.APIGatewayProxyResponse, err error) events.APIGatewayProxyResponse {
	if err != nil {
		fmt.Printf("Handler error: %v\n", err)
		return events.APIGatewayProxyResponse{StatusCode: http.StatusInternalServerError, Body: "Internal Server Error"}
	}
	return resp
}
