package domain

// KeyTheme is one recurring theme found by trend analysis
type KeyTheme struct {
	Theme       string `json:"theme"`
	Explanation string `json:"explanation"`
}

// TrendAnalysis is the structured summary returned by the summarizer
type TrendAnalysis struct {
	Summary          string     `json:"summary"`
	KeyThemes        []KeyTheme `json:"keyThemes"`
	AudienceInsights string     `json:"audienceInsights"`
	Prediction       string     `json:"prediction"`
}
