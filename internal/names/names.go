// Package names holds the static display-name table for coin symbols.
// Venues with a market catalog override these with catalog names; firehose
// venues fall back to this table, then to the symbol itself.
package names

// english maps a base-asset symbol to its English project name. Read-only.
var english = map[string]string{
	"BTC":   "Bitcoin",
	"ETH":   "Ethereum",
	"XRP":   "Ripple",
	"ADA":   "Cardano",
	"DOT":   "Polkadot",
	"LINK":  "Chainlink",
	"LTC":   "Litecoin",
	"BCH":   "Bitcoin Cash",
	"EOS":   "EOS",
	"TRX":   "TRON",
	"ETC":   "Ethereum Classic",
	"XLM":   "Stellar",
	"QTUM":  "Qtum",
	"BTT":   "BitTorrent",
	"ICX":   "ICON",
	"VET":   "VeChain",
	"THETA": "Theta Network",
	"ONT":   "Ontology",
	"ZIL":   "Zilliqa",
	"EGLD":  "MultiversX",
	"ZRX":   "0x Protocol",
	"BAT":   "Basic Attention Token",
	"IOST":  "IOST",
	"DGB":   "DigiByte",
	"CRO":   "Cronos",
	"SOL":   "Solana",
	"MATIC": "Polygon",
	"AVAX":  "Avalanche",
	"ATOM":  "Cosmos",
	"NEAR":  "NEAR Protocol",
	"ALGO":  "Algorand",
	"FTM":   "Fantom",
	"SAND":  "The Sandbox",
	"MANA":  "Decentraland",
	"AXS":   "Axie Infinity",
	"CHZ":   "Chiliz",
	"ENJ":   "Enjin Coin",
	"GRT":   "The Graph",
	"1INCH": "1inch",
	"COMP":  "Compound",
	"UNI":   "Uniswap",
	"SUSHI": "SushiSwap",
	"YFI":   "Yearn.finance",
	"AAVE":  "Aave",
	"SNX":   "Synthetix",
	"MKR":   "Maker",
	"CRV":   "Curve DAO Token",
	"BAL":   "Balancer",
	"KNC":   "Kyber Network Crystal",
	"LRC":   "Loopring",
	"OMG":   "OMG Network",
	"BNT":   "Bancor",
	"KAVA":  "Kava",
	"BAND":  "Band Protocol",
}

var korean = map[string]string{
	"BTC":  "비트코인",
	"ETH":  "이더리움",
	"XRP":  "리플",
	"ADA":  "에이다",
	"DOT":  "폴카닷",
	"LINK": "체인링크",
	"LTC":  "라이트코인",
	"BCH":  "비트코인캐시",
	"EOS":  "이오스",
	"TRX":  "트론",
	"SOL":  "솔라나",
	"DOGE": "도지코인",
	"AVAX": "아발란체",
	"ATOM": "코스모스",
	"XLM":  "스텔라루멘",
	"ETC":  "이더리움클래식",
}

// English returns the English name for a symbol, or the symbol itself.
func English(symbol string) string {
	if name, ok := english[symbol]; ok {
		return name
	}
	return symbol
}

// Korean returns the Korean name for a symbol, or the symbol itself.
func Korean(symbol string) string {
	if name, ok := korean[symbol]; ok {
		return name
	}
	return symbol
}
