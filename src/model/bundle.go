package model

const OptionTypeCall = "call"
const OptionTypePut = "put"

const SideBuy = "buy"
const SideSell = "sell"

type KLine struct {
	Symbol    string         `json:"symbol"`
	Open      float64        `json:"open"`
	High      float64        `json:"high"`
	Low       float64        `json:"low"`
	Close     float64        `json:"close"`
	Volume    float64        `json:"volume"`
	Timestamp TimestampMilli `json:"timestamp"`
}

type Trade struct {
	Price     float64        `json:"price"`
	Quantity  float64        `json:"quantity"`
	Side      string         `json:"side"`
	Timestamp TimestampMilli `json:"timestamp"`
}

type BookLevel struct {
	Price float64 `json:"price"`
	Size  float64 `json:"size"`
}

type OrderBook struct {
	Bids      []BookLevel    `json:"bids"`
	Asks      []BookLevel    `json:"asks"`
	Timestamp TimestampMilli `json:"timestamp"`
}

func (o *OrderBook) IsEmpty() bool {
	return len(o.Bids) == 0 && len(o.Asks) == 0
}

// Mid returns the bid/ask midpoint, falling back to the non-empty side.
func (o *OrderBook) Mid() float64 {
	if len(o.Bids) > 0 && len(o.Asks) > 0 {
		return (o.Bids[0].Price + o.Asks[0].Price) / 2
	}

	if len(o.Bids) > 0 {
		return o.Bids[0].Price
	}

	if len(o.Asks) > 0 {
		return o.Asks[0].Price
	}

	return 0.00
}

func (o *OrderBook) TotalVolume() float64 {
	total := 0.00
	for _, level := range o.Bids {
		total += level.Size
	}
	for _, level := range o.Asks {
		total += level.Size
	}

	return total
}

type OptionContract struct {
	Strike       float64        `json:"strike"`
	Expiry       TimestampMilli `json:"expiry"`
	Type         string         `json:"type"`
	Bid          float64        `json:"bid"`
	Ask          float64        `json:"ask"`
	Last         float64        `json:"last"`
	Volume       float64        `json:"volume"`
	OpenInterest float64        `json:"openInterest"`
	ImpliedVol   float64        `json:"impliedVol"`
	Delta        float64        `json:"delta"`
	Gamma        float64        `json:"gamma"`
	Theta        float64        `json:"theta"`
	Vega         float64        `json:"vega"`
	Rho          float64        `json:"rho"`
}

func (c *OptionContract) IsPut() bool {
	return c.Type == OptionTypePut
}

func (c *OptionContract) IsCall() bool {
	return c.Type == OptionTypeCall
}

type FastStream struct {
	Bars      []KLine   `json:"bars"`
	Trades    []Trade   `json:"trades"`
	OrderBook OrderBook `json:"orderBook"`
}

type SlowStream struct {
	Bars   []KLine `json:"bars"`
	Trades []Trade `json:"trades"`
}

// MarketBundle is the raw per-tick observation set delivered by the
// upstream market-data collaborator. Any of the arrays may be empty.
type MarketBundle struct {
	Symbol    string           `json:"symbol"`
	Timestamp TimestampMilli   `json:"timestamp"`
	Fast      FastStream       `json:"fast"`
	Slow      SlowStream       `json:"slow"`
	Chain     []OptionContract `json:"chain"`
}

// SpotPrice is the latest fast close, falling back to the book midpoint.
func (b *MarketBundle) SpotPrice() float64 {
	if len(b.Fast.Bars) > 0 {
		return b.Fast.Bars[len(b.Fast.Bars)-1].Close
	}

	return b.Fast.OrderBook.Mid()
}
