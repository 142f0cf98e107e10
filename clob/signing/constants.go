package signing

const (
	// ClobDomainName EIP712 域名名称
	ClobDomainName = "ClobAuthDomain"

	// ClobVersion EIP712 版本
	ClobVersion = "1"

	// MsgToSign 签名消息
	MsgToSign = "This message attests that I control the given wallet"

	// ExchangeDomainName 交易所合约 EIP712 域名名称
	ExchangeDomainName = "Polymarket CTF Exchange"

	// ExchangeDomainVersion 交易所合约 EIP712 版本
	ExchangeDomainVersion = "1"
)
