package entity

// FraudApp is an application flagged by the upstream fraud feed.
type FraudApp struct {
	AppName    string `json:"app_name"`
	Developer  string `json:"developer"`
	Category   string `json:"category"`
	RiskLevel  string `json:"risk_level"`
	ReportedOn string `json:"reported_on"`
}

// FraudURL is a URL flagged by the upstream fraud feed.
type FraudURL struct {
	URL        string `json:"url"`
	RiskLevel  string `json:"risk_level"`
	DetectedOn string `json:"detected_on"`
	Category   string `json:"category"`
}

// FraudTrend is one day of the 30 day detection series.
type FraudTrend struct {
	Date               string `json:"date"`
	FraudCasesDetected int    `json:"fraud_cases_detected"`
}

// FraudSummary aggregates the three feeds for the dashboard overview.
type FraudSummary struct {
	TotalApps      int            `json:"total_apps"`
	TotalURLs      int            `json:"total_urls"`
	URLsByRisk     map[string]int `json:"urls_by_risk"`
	URLsByCategory map[string]int `json:"urls_by_category"`
	TotalCases     int            `json:"total_cases"`
	AverageDaily   int            `json:"average_daily_cases"`
	PeakDayCases   int            `json:"peak_day_cases"`
	PeakDay        string         `json:"peak_day,omitempty"`
	TrendDays      int            `json:"trend_days"`
}
