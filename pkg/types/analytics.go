package types

// TimeSeriesPoint is one day of granted/denied counts
type TimeSeriesPoint struct {
	Date    string `json:"date"`
	Granted int    `json:"granted"`
	Denied  int    `json:"denied"`
}

// HourlyBucket is one local-time hour of granted/denied counts.
// Hour carries the full bucket key, "2006-01-02 15:00".
type HourlyBucket struct {
	Hour    string `json:"hour"`
	Granted int    `json:"granted"`
	Denied  int    `json:"denied"`
}

// DistributionSlice is one outcome label with its total count
type DistributionSlice struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// AnalyticsSnapshot holds derived series for the log dashboards.
// Server-provided values are authoritative; the local aggregator only
// fills in what the backend response left empty.
type AnalyticsSnapshot struct {
	TimeSeries     []TimeSeriesPoint   `json:"timeSeries"`
	Distribution   []DistributionSlice `json:"accessDistribution,omitempty"`
	HourlyActivity []HourlyBucket      `json:"hourlyActivity,omitempty"`
	AvailableDates []string            `json:"availableDates,omitempty"`
	DefaultDate    string              `json:"defaultDate,omitempty"`
}

// SummaryCounts backs the dashboard summary cards
type SummaryCounts struct {
	TotalRequests int `json:"totalRequests"`
	TotalPatients int `json:"totalPatients"`
	AccessGranted int `json:"accessGranted"`
	AccessDenied  int `json:"accessDenied"`
}
