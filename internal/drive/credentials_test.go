package drive

import (
	"context"
	"errors"
	"testing"
)

func TestCredentials_AccessToken_APIKey(t *testing.T) {
	creds := Credentials{APIKey: "AIzaSyFakeKey1234567890"}

	tok, err := creds.AccessToken(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tok != "AIzaSyFakeKey1234567890" {
		t.Errorf("expected API key returned as-is, got %q", tok)
	}
}

func TestCredentials_AccessToken_APIKeyWinsOverServiceAccount(t *testing.T) {
	creds := Credentials{
		APIKey:             "AIzaSyFakeKey1234567890",
		ServiceAccountJSON: `{"type":"service_account"}`,
	}

	tok, err := creds.AccessToken(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tok != "AIzaSyFakeKey1234567890" {
		t.Errorf("expected the API key to take precedence, got %q", tok)
	}
}

func TestCredentials_AccessToken_NotConfigured(t *testing.T) {
	creds := Credentials{}

	_, err := creds.AccessToken(context.Background())
	if !errors.Is(err, ErrNoCredentials) {
		t.Fatalf("expected ErrNoCredentials, got %v", err)
	}
}

func TestCredentials_AccessToken_MalformedServiceAccount(t *testing.T) {
	creds := Credentials{ServiceAccountJSON: "{not json"}

	_, err := creds.AccessToken(context.Background())
	if err == nil {
		t.Fatal("expected error for malformed service account JSON")
	}
}

func TestIsAPIKey(t *testing.T) {
	tests := []struct {
		credential string
		want       bool
	}{
		{"AIzaSyFakeKey1234567890", true},
		{"ya29.a0AfH6SMBxyz", false},
		{"header.payload.signature", false},
		{"", true},
	}
	for _, tt := range tests {
		if got := IsAPIKey(tt.credential); got != tt.want {
			t.Errorf("IsAPIKey(%q) = %v, want %v", tt.credential, got, tt.want)
		}
	}
}
