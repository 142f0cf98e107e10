package client

import (
	"context"
	"crypto/ecdsa"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/betbot/tradegate/clob/types"
)

// fakeTransport 按请求路径返回预设响应
type fakeTransport struct {
	responses map[string]*http.Response
	requests  []*http.Request
}

func (f *fakeTransport) Do(req *http.Request) (*http.Response, error) {
	f.requests = append(f.requests, req)
	key := req.Method + " " + req.URL.Path
	if resp, ok := f.responses[key]; ok {
		return resp, nil
	}
	return jsonResponse(http.StatusNotFound, `{"error":"not found"}`), nil
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     make(http.Header),
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func testPrivateKey(t *testing.T) *ecdsa.PrivateKey {
	t.Helper()
	pk, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	return pk
}

func TestCreateOrDeriveAPIKey_DeriveExisting(t *testing.T) {
	transport := &fakeTransport{
		responses: map[string]*http.Response{
			"GET /auth/derive-api-key": jsonResponse(http.StatusOK,
				`{"apiKey":"key-1","secret":"c2VjcmV0","passphrase":"pass-1"}`),
		},
	}

	c := NewClient("https://clob.example.com", types.ChainPolygon, testPrivateKey(t), WithTransport(transport))

	creds, source, err := c.CreateOrDeriveAPIKey(context.Background(), 0)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if source != types.CredentialSourceDerived {
		t.Fatalf("source = %q, want derived", source)
	}
	if creds.Key != "key-1" || creds.Secret != "c2VjcmV0" || creds.Passphrase != "pass-1" {
		t.Fatalf("unexpected creds: %+v", creds)
	}
}

func TestCreateOrDeriveAPIKey_FallsBackToCreate(t *testing.T) {
	transport := &fakeTransport{
		responses: map[string]*http.Response{
			"GET /auth/derive-api-key": jsonResponse(http.StatusBadRequest,
				`{"error":"Unable to derive api key"}`),
			"POST /auth/api-key": jsonResponse(http.StatusOK,
				`{"apiKey":"key-2","secret":"c2VjcmV0Mg","passphrase":"pass-2"}`),
		},
	}

	c := NewClient("https://clob.example.com", types.ChainPolygon, testPrivateKey(t), WithTransport(transport))

	creds, source, err := c.CreateOrDeriveAPIKey(context.Background(), 0)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if source != types.CredentialSourceCreated {
		t.Fatalf("source = %q, want created", source)
	}
	if creds.Key != "key-2" {
		t.Fatalf("creds.Key = %q, want key-2", creds.Key)
	}

	// 两次请求都必须携带完整的 L1 认证头
	for _, req := range transport.requests {
		for _, h := range []string{"POLY_ADDRESS", "POLY_SIGNATURE", "POLY_TIMESTAMP", "POLY_NONCE"} {
			if req.Header.Get(h) == "" {
				t.Fatalf("%s %s 缺少认证头 %s", req.Method, req.URL.Path, h)
			}
		}
	}
}

func TestCreateOrDeriveAPIKey_ServerErrorDoesNotCreate(t *testing.T) {
	transport := &fakeTransport{
		responses: map[string]*http.Response{
			"GET /auth/derive-api-key": jsonResponse(http.StatusInternalServerError,
				`{"error":"internal"}`),
		},
	}

	c := NewClient("https://clob.example.com", types.ChainPolygon, testPrivateKey(t), WithTransport(transport))

	_, _, err := c.CreateOrDeriveAPIKey(context.Background(), 0)
	if err == nil {
		t.Fatal("expected error on 500 derive response")
	}
	for _, req := range transport.requests {
		if req.Method == http.MethodPost {
			t.Fatal("500 推导失败不应继续尝试创建")
		}
	}
}

func TestCreateOrDeriveAPIKey_RequiresPrivateKey(t *testing.T) {
	c := NewClient("https://clob.example.com", types.ChainPolygon, nil)

	_, _, err := c.CreateOrDeriveAPIKey(context.Background(), 0)
	if err == nil {
		t.Fatal("expected L1 auth error without private key")
	}
}
