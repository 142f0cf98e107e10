package dataapi

import "encoding/json"

// RawPosition is a position row as returned by the exchange data API.
//
// The market identifier shows up under different names depending on the
// endpoint version, so all three spellings are kept and resolved by the
// caller. Numeric fields arrive either as JSON numbers or strings.
type RawPosition struct {
	ProxyWallet  string      `json:"proxyWallet"`
	Asset        string      `json:"asset"`
	Market       string      `json:"market"`
	ConditionIDA string      `json:"condition_id"`
	ConditionIDB string      `json:"conditionId"`
	Size         json.Number `json:"size"`
	AvgPrice     json.Number `json:"avgPrice"`
	CurPrice     json.Number `json:"curPrice"`
	InitialValue json.Number `json:"initialValue"`
	CurrentValue json.Number `json:"currentValue"`
	Title        string      `json:"title"`
	Slug         string      `json:"slug"`
	Outcome      string      `json:"outcome"`
	OutcomeIndex int         `json:"outcomeIndex"`
	EndDate      string      `json:"endDate"`
	NegativeRisk bool        `json:"negativeRisk"`
	Redeemable   bool        `json:"redeemable"`
}

// Trade is a fill row from the data API trades endpoint.
type Trade struct {
	ProxyWallet     string      `json:"proxyWallet"`
	Side            string      `json:"side"`
	Asset           string      `json:"asset"`
	ConditionID     string      `json:"conditionId"`
	Size            json.Number `json:"size"`
	Price           json.Number `json:"price"`
	Timestamp       int64       `json:"timestamp"`
	Title           string      `json:"title"`
	Slug            string      `json:"slug"`
	Outcome         string      `json:"outcome"`
	OutcomeIndex    int         `json:"outcomeIndex"`
	TransactionHash string      `json:"transactionHash"`
}

// TradeQuery narrows the trades listing. Zero values are omitted.
type TradeQuery struct {
	User   string
	Market string
	Limit  int
}
