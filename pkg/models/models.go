// Package models holds typed views of Gamma market and event records.
package models

// Tag labels an event.
type Tag struct {
	ID          ID     `json:"id"`
	Label       string `json:"label"`
	Slug        string `json:"slug"`
	ForceShow   bool   `json:"forceShow"`
	PublishedAt string `json:"publishedAt,omitempty"`
	UpdatedAt   string `json:"updatedAt,omitempty"`
}

// ClobReward describes a liquidity reward program attached to a market.
type ClobReward struct {
	ID               ID     `json:"id"`
	ConditionID      string `json:"conditionId"`
	AssetAddress     string `json:"assetAddress"`
	RewardsAmount    Number `json:"rewardsAmount"`
	RewardsDailyRate Number `json:"rewardsDailyRate"`
	StartDate        string `json:"startDate,omitempty"`
	EndDate          string `json:"endDate,omitempty"`
}

// Market is a single tradable question.
type Market struct {
	ID               ID     `json:"id"`
	Question         string `json:"question"`
	ConditionID      string `json:"conditionId"`
	Slug             string `json:"slug"`
	Description      string `json:"description,omitempty"`
	ResolutionSource string `json:"resolutionSource,omitempty"`
	StartDate        string `json:"startDate,omitempty"`
	EndDate          string `json:"endDate,omitempty"`
	Image            string `json:"image,omitempty"`
	Icon             string `json:"icon,omitempty"`

	Outcomes      StringList `json:"outcomes"`
	OutcomePrices StringList `json:"outcomePrices"`
	ClobTokenIDs  StringList `json:"clobTokenIds"`

	Volume         Number `json:"volume"`
	Volume24hr     Number `json:"volume24hr"`
	Liquidity      Number `json:"liquidity"`
	Spread         Number `json:"spread"`
	BestBid        Number `json:"bestBid"`
	BestAsk        Number `json:"bestAsk"`
	LastTradePrice Number `json:"lastTradePrice"`
	MinTickSize    Number `json:"orderPriceMinTickSize"`
	MinOrderSize   Number `json:"orderMinSize"`

	Active          bool `json:"active"`
	Closed          bool `json:"closed"`
	Archived        bool `json:"archived"`
	New             bool `json:"new"`
	Featured        bool `json:"featured"`
	Restricted      bool `json:"restricted"`
	EnableOrderBook bool `json:"enableOrderBook"`
	AcceptingOrders bool `json:"acceptingOrders"`
	NegRisk         bool `json:"negRisk"`

	ClobRewards []ClobReward `json:"clobRewards,omitempty"`
	Events      []Event      `json:"events,omitempty"`
}

// Tradable reports whether the market currently accepts orders on the CLOB.
func (m Market) Tradable() bool {
	return m.Active && !m.Closed && !m.Archived && m.EnableOrderBook
}

// Event groups related markets.
type Event struct {
	ID           ID     `json:"id"`
	Ticker       string `json:"ticker"`
	Slug         string `json:"slug"`
	Title        string `json:"title"`
	Description  string `json:"description,omitempty"`
	StartDate    string `json:"startDate,omitempty"`
	EndDate      string `json:"endDate,omitempty"`
	CreationDate string `json:"creationDate,omitempty"`
	Image        string `json:"image,omitempty"`
	Icon         string `json:"icon,omitempty"`

	Liquidity    Number `json:"liquidity"`
	Volume       Number `json:"volume"`
	Volume24hr   Number `json:"volume24hr"`
	OpenInterest Number `json:"openInterest"`
	Competitive  Number `json:"competitive"`
	CommentCount Number `json:"commentCount"`

	Active          bool `json:"active"`
	Closed          bool `json:"closed"`
	Archived        bool `json:"archived"`
	New             bool `json:"new"`
	Featured        bool `json:"featured"`
	Restricted      bool `json:"restricted"`
	EnableOrderBook bool `json:"enableOrderBook"`
	NegRisk         bool `json:"negRisk"`

	Tags    []Tag    `json:"tags,omitempty"`
	Markets []Market `json:"markets,omitempty"`
}
