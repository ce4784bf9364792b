package sms

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNewGatewayClient_Defaults(t *testing.T) {
	client := NewGatewayClient("api-key", "https://sms.example", "adboard")
	if client.APIKey != "api-key" {
		t.Errorf("APIKey = %q, want %q", client.APIKey, "api-key")
	}
	if client.Sender != "adboard" {
		t.Errorf("Sender = %q, want adboard", client.Sender)
	}
	if client.HTTPClient == nil {
		t.Fatal("HTTPClient should be set")
	}
	if client.HTTPClient.Timeout != defaultTimeout {
		t.Errorf("HTTPClient.Timeout = %v, want %v", client.HTTPClient.Timeout, defaultTimeout)
	}
}

func TestDeliver_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %q, want %q", r.Method, http.MethodPost)
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("Content-Type = %q, want application/json", r.Header.Get("Content-Type"))
		}
		if r.Header.Get("Authorization") != "test-api-key" {
			t.Errorf("Authorization = %q, want test-api-key", r.Header.Get("Authorization"))
		}

		var body map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("Decode body: %v", err)
		}
		if body["route"] != "otp" {
			t.Errorf("route = %v, want otp", body["route"])
		}
		if body["numbers"] != "09121234567" {
			t.Errorf("numbers = %v, want 09121234567", body["numbers"])
		}
		if body["variables"] != "1234" {
			t.Errorf("variables = %v, want 1234", body["variables"])
		}

		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"success"}`))
	}))
	defer server.Close()

	client := NewGatewayClient("test-api-key", server.URL, "adboard")
	if err := client.Deliver(context.Background(), "09121234567", "1234"); err != nil {
		t.Fatalf("Deliver error: %v", err)
	}
}

func TestDeliver_MissingAPIKey(t *testing.T) {
	client := NewGatewayClient("", "https://sms.example", "")
	err := client.Deliver(context.Background(), "09121234567", "1234")
	if err == nil {
		t.Fatal("expected error for missing API key")
	}
}

func TestDeliver_GatewayErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"status":"error"}`))
	}))
	defer server.Close()

	client := NewGatewayClient("test-api-key", server.URL, "")
	err := client.Deliver(context.Background(), "09121234567", "1234")
	if err == nil {
		t.Fatal("expected error for non-200 status")
	}
	if !strings.Contains(err.Error(), "502") {
		t.Errorf("error should mention status, got %v", err)
	}
}
