package client

import (
	"math/big"
	"testing"

	"github.com/betbot/tradegate/clob/types"
)

func TestGetOrderRawAmounts_Buy(t *testing.T) {
	roundConfig := RoundingConfig[types.TickSize001]

	maker, taker := getOrderRawAmounts(types.SideBuy, 100, 0.56, roundConfig)
	if taker != 100 {
		t.Fatalf("taker = %v, want 100", taker)
	}
	if maker != 56 {
		t.Fatalf("maker = %v, want 56", maker)
	}
}

func TestGetOrderRawAmounts_Sell(t *testing.T) {
	roundConfig := RoundingConfig[types.TickSize001]

	// 卖出 10.567 个代币，size 截断到 2 位小数
	maker, taker := getOrderRawAmounts(types.SideSell, 10.567, 0.495, roundConfig)
	if maker != 10.56 {
		t.Fatalf("maker = %v, want 10.56", maker)
	}
	// taker = 10.56 * 0.495 = 5.2272，不超过 4 位小数
	if taker != 5.2272 {
		t.Fatalf("taker = %v, want 5.2272", taker)
	}
}

func TestParseUnits(t *testing.T) {
	got := parseUnits(5.2272, CollateralTokenDecimals)
	want := big.NewInt(5227200)
	if got.Cmp(want) != 0 {
		t.Fatalf("parseUnits = %s, want %s", got, want)
	}
}

func TestBuildOrder_SellDefaults(t *testing.T) {
	c := NewClient("https://clob.example.com", types.ChainPolygon, testPrivateKey(t))
	builder := NewOrderBuilder(c, types.SignatureTypeBrowser, "")

	order, err := builder.BuildOrder(&types.UserOrder{
		TokenID: "71321045679252212594626385532706912750332728571942532289631379312455583992563",
		Price:   0.495,
		Size:    10,
		Side:    types.SideSell,
	}, &types.CreateOrderOptions{TickSize: types.TickSize001})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	if order.Side != types.SideSell {
		t.Fatalf("side = %q, want SELL", order.Side)
	}
	if order.Taker != zeroAddress {
		t.Fatalf("taker = %q, want zero address", order.Taker)
	}
	if order.Maker != order.Signer {
		t.Fatalf("maker %q should default to signer %q", order.Maker, order.Signer)
	}
	if order.MakerAmount != "10000000" {
		t.Fatalf("makerAmount = %q, want 10000000", order.MakerAmount)
	}
	if order.TakerAmount != "4950000" {
		t.Fatalf("takerAmount = %q, want 4950000", order.TakerAmount)
	}
	if order.Signature == "" || order.Salt == 0 {
		t.Fatal("order must carry signature and salt")
	}
}

func TestBuildOrder_FunderOverridesMaker(t *testing.T) {
	c := NewClient("https://clob.example.com", types.ChainPolygon, testPrivateKey(t))
	funder := "0x1111111111111111111111111111111111111111"
	builder := NewOrderBuilder(c, types.SignatureTypeGnosisSafe, funder)

	order, err := builder.BuildOrder(&types.UserOrder{
		TokenID: "123456",
		Price:   0.5,
		Size:    4,
		Side:    types.SideSell,
	}, &types.CreateOrderOptions{TickSize: types.TickSize001})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	if order.Maker != funder {
		t.Fatalf("maker = %q, want funder %q", order.Maker, funder)
	}
	if order.SignatureType != int(types.SignatureTypeGnosisSafe) {
		t.Fatalf("signatureType = %d, want %d", order.SignatureType, types.SignatureTypeGnosisSafe)
	}
}

func TestBuildOrder_RejectsBadTokenID(t *testing.T) {
	c := NewClient("https://clob.example.com", types.ChainPolygon, testPrivateKey(t))
	builder := NewOrderBuilder(c, types.SignatureTypeBrowser, "")

	_, err := builder.BuildOrder(&types.UserOrder{
		TokenID: "not-a-number",
		Price:   0.5,
		Size:    1,
		Side:    types.SideBuy,
	}, &types.CreateOrderOptions{TickSize: types.TickSize001})
	if err == nil {
		t.Fatal("expected error for non-numeric tokenID")
	}
}
