package client

import (
	"context"
	"net/http"
	"testing"

	"github.com/betbot/tradegate/clob/types"
)

func TestGetOpenOrders_PassesUserParam(t *testing.T) {
	transport := &fakeTransport{
		responses: map[string]*http.Response{
			"GET /data/orders": jsonResponse(http.StatusOK,
				`[{"id":"oo-1","asset_id":"111","side":"SELL"}]`),
		},
	}

	c := NewClient("https://clob.example.com", types.ChainPolygon, testPrivateKey(t),
		WithTransport(transport),
		WithCreds(&types.ApiKeyCreds{Key: "k", Secret: "c2VjcmV0", Passphrase: "p"}))

	user := "0xproxy"
	orders, err := c.GetOpenOrders(context.Background(), &types.OpenOrderParams{User: &user})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(orders) != 1 || orders[0].ID != "oo-1" {
		t.Fatalf("unexpected orders: %+v", orders)
	}

	if len(transport.requests) != 1 {
		t.Fatalf("expected 1 request, got %d", len(transport.requests))
	}
	req := transport.requests[0]
	if got := req.URL.Query().Get("user"); got != "0xproxy" {
		t.Fatalf("user param = %q, want 0xproxy", got)
	}
	for _, h := range []string{"POLY_ADDRESS", "POLY_SIGNATURE", "POLY_TIMESTAMP", "POLY_API_KEY", "POLY_PASSPHRASE"} {
		if req.Header.Get(h) == "" {
			t.Fatalf("缺少 L2 认证头 %s", h)
		}
	}
}

func TestGetOpenOrders_RequiresCreds(t *testing.T) {
	c := NewClient("https://clob.example.com", types.ChainPolygon, testPrivateKey(t))

	if _, err := c.GetOpenOrders(context.Background(), nil); err == nil {
		t.Fatal("expected L2 auth error without creds")
	}
}
