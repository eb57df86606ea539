package schema

// Ticker is the canonical, exchange-agnostic price record. All monetary
// fields are denominated in KRW; USD-quoted venues convert at decode time
// using the current fx rate. High52w/Low52w carry 0 when the venue does not
// report 52-week extremes.
type Ticker struct {
	Symbol           string  `json:"symbol"`
	Name             string  `json:"name"`
	KoreanName       string  `json:"koreanName"`
	EnglishName      string  `json:"englishName"`
	Price            float64 `json:"price"`
	Change24h        float64 `json:"change24h"`
	ChangePercent24h float64 `json:"changePercent24h"`
	Volume           float64 `json:"volume"`
	High24h          float64 `json:"high24h"`
	Low24h           float64 `json:"low24h"`
	High52w          float64 `json:"high52w"`
	Low52w           float64 `json:"low52w"`
}

// Has52Week reports whether the venue supplied 52-week extremes. The wire
// sentinel for "not reported" is 0, so consumers should render "-" instead
// of a zero price when this is false.
func (t Ticker) Has52Week() bool {
	return t.High52w != 0 || t.Low52w != 0
}

// Snapshot is the current complete ticker set for one exchange. Tickers are
// sorted by ChangePercent24h descending. Loading is true until the first
// ticker arrives; Error carries the last fatal condition and is cleared on
// reconnect success.
type Snapshot struct {
	Exchange string   `json:"exchange"`
	Tickers  []Ticker `json:"tickers"`
	Loading  bool     `json:"loading"`
	Error    string   `json:"error,omitempty"`
}

// Comparison is one row of a cross-exchange price comparison. ComparePrice
// and PriceDifference are 0 when the symbol is absent from the compare
// exchange; that is not an error.
type Comparison struct {
	Symbol                 string  `json:"symbol"`
	Name                   string  `json:"name"`
	KoreanName             string  `json:"koreanName"`
	EnglishName            string  `json:"englishName"`
	BasePrice              float64 `json:"basePrice"`
	ComparePrice           float64 `json:"comparePrice"`
	PriceDifference        float64 `json:"priceDifference"`
	PriceDifferencePercent float64 `json:"priceDifferencePercent"`
	BaseExchange           string  `json:"baseExchange"`
	CompareExchange        string  `json:"compareExchange"`
	Change24h              float64 `json:"change24h"`
	ChangePercent24h       float64 `json:"changePercent24h"`
	High52w                float64 `json:"high52w"`
	Low52w                 float64 `json:"low52w"`
	Volume                 float64 `json:"volume"`
}

// RateStatus is the fx provider's published state. Rate 0 means
// "conversion unavailable"; consumers must not divide by it.
type RateStatus struct {
	Rate    float64 `json:"rate"`
	Loading bool    `json:"loading"`
	Error   string  `json:"error,omitempty"`
}

// MarketName is the human-readable pair of names a market catalog supplies
// for one symbol.
type MarketName struct {
	Korean  string `json:"korean"`
	English string `json:"english"`
}
