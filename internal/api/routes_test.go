package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/MirkoGilioli/open-weather-mcp-server/internal/snapshot"
)

func TestHealthEndpoint(t *testing.T) {
	store := snapshot.NewStore(zap.NewNop())
	server := mcp.NewServer(&mcp.Implementation{Name: "test", Version: "0.0.1"}, nil)
	app := NewApp(server, store, ServerConfig{ReadTimeout: 5 * time.Second, WriteTimeout: 5 * time.Second})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	body, _ := io.ReadAll(resp.Body)
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if payload["status"] != "healthy" {
		t.Fatalf("unexpected status field: %v", payload["status"])
	}
	if payload["mcp_endpoint"] != "/mcp" {
		t.Fatalf("unexpected mcp_endpoint field: %v", payload["mcp_endpoint"])
	}
}

func TestUnknownRouteReturns404(t *testing.T) {
	store := snapshot.NewStore(zap.NewNop())
	server := mcp.NewServer(&mcp.Implementation{Name: "test", Version: "0.0.1"}, nil)
	app := NewApp(server, store, ServerConfig{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/nope", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}
