package client

// API 端点常量
const (
	// Server Time
	EndpointTime = "/time"

	// API Key endpoints
	EndpointCreateAPIKey = "/auth/api-key"
	EndpointDeriveAPIKey = "/auth/derive-api-key"

	// Markets
	EndpointGetOrderBook = "/book"
	EndpointGetPrice     = "/price"

	// Order endpoints
	EndpointPostOrder     = "/order"
	EndpointGetOpenOrders = "/data/orders"
)
