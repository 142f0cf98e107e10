package signing

import "testing"

func TestBuildHmacSignature_KnownVector(t *testing.T) {
	secret := "FCs7oydIWRBHdQKbsEYecMSLqNk1Zqnisy6JCgb/P0k="
	body := `{"hash": "0x123"}`

	sig, err := BuildHmacSignature(secret, 1000000, "test-sign", "/orders", &body)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	// method 必须参与大写归一化
	want := "2fd978bf3c3630284cc624a926930a05ac1375eaa38d9ab1b3d3bfeed347ccc4"
	if sig != want {
		t.Fatalf("sig = %s, want %s", sig, want)
	}
}

func TestBuildHmacSignature_NoBody(t *testing.T) {
	secret := "FCs7oydIWRBHdQKbsEYecMSLqNk1Zqnisy6JCgb/P0k="

	sig, err := BuildHmacSignature(secret, 1000000, "GET", "/book", nil)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	want := "c89fcbf7a8a79e2ea70602aa87fb5af395217123ed4195fb53cd8fcab74507b6"
	if sig != want {
		t.Fatalf("sig = %s, want %s", sig, want)
	}
}

func TestBuildHmacSignature_Deterministic(t *testing.T) {
	secret := "dGVzdC1zZWNyZXQ="

	a, err := BuildHmacSignature(secret, 1700000000, "POST", "/order", nil)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	b, err := BuildHmacSignature(secret, 1700000000, "post", "/order", nil)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if a != b {
		t.Fatal("method 大小写不应影响签名结果")
	}

	c, err := BuildHmacSignature(secret, 1700000001, "POST", "/order", nil)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if a == c {
		t.Fatal("不同 timestamp 必须产生不同签名")
	}
}

func TestSecretKeyBytes_Base64URL(t *testing.T) {
	// base64url 变体（- 和 _）必须与标准 base64 解出同样的 key
	std := secretKeyBytes("FCs7oydIWRBHdQKbsEYecMSLqNk1Zqnisy6JCgb/P0k=")
	url := secretKeyBytes("FCs7oydIWRBHdQKbsEYecMSLqNk1Zqnisy6JCgb_P0k=")
	if string(std) != string(url) {
		t.Fatal("base64url secret 解码结果不一致")
	}
	if len(std) != 32 {
		t.Fatalf("key 长度 = %d, want 32", len(std))
	}
}
