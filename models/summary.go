// api/models/summary.go
package models

// DateCount is one bucket of a daily time series. Date is a local calendar
// day formatted as 2006-01-02.
type DateCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// SourceCount is one entry of the traffic-source breakdown.
type SourceCount struct {
	Source string `json:"source"`
	Count  int    `json:"count"`
}

// TopLink is one entry of the top-clicked-buttons ranking.
type TopLink struct {
	Label      string  `json:"label"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// UTMCount is one entry of a UTM breakdown list.
type UTMCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// UTMSummary holds the top UTM values per dimension, capped at five each.
type UTMSummary struct {
	Sources   []UTMCount `json:"sources"`
	Mediums   []UTMCount `json:"mediums"`
	Campaigns []UTMCount `json:"campaigns"`
}

// CategoryShare is the share of engagement one content category received.
type CategoryShare struct {
	Category   string  `json:"category"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// ContentPerformance breaks engagement events down by content category.
type ContentPerformance struct {
	ByCategory []CategoryShare `json:"byCategory"`
}

// Summary is the dashboard-ready aggregation output. Computed fresh per
// request; nothing in here is persisted or cached.
type Summary struct {
	ProfileID string `json:"profileId"`
	Days      int    `json:"days"`
	StartTS   int64  `json:"startTs"`
	EndTS     int64  `json:"endTs"`

	TotalViews  int     `json:"totalViews"`
	TotalClicks int     `json:"totalClicks"`
	CTR         float64 `json:"ctr"`

	ViewsByDate  []DateCount `json:"viewsByDate"`
	ClicksByDate []DateCount `json:"clicksByDate"`

	Sources  []SourceCount `json:"sources"`
	TopLinks []TopLink     `json:"topLinks"`

	// PeakHours has exactly 24 entries, indexed by local hour of day.
	PeakHours []int `json:"peakHours"`

	UTMSummary         UTMSummary         `json:"utmSummary"`
	ContentPerformance ContentPerformance `json:"contentPerformance"`
	PixCopies          int                `json:"pixCopies"`
}
