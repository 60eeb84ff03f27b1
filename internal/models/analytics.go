package models

// CampaignAnalytics is the date-ranged aggregation of a campaign's tracking
// stream. Rates are zero-guarded.
type CampaignAnalytics struct {
	CampaignID     string `json:"campaign_id"`
	CampaignTitle  string `json:"campaign_title"`
	PeriodStart    string `json:"period_start"`
	PeriodEnd      string `json:"period_end"`
	TotalClicks    int    `json:"total_clicks"`
	UniqueClicks   int    `json:"unique_clicks"`
	Conversions    int    `json:"conversions"`
	BotClicks      int    `json:"bot_clicks"`
	ConversionRate float64 `json:"conversion_rate"`
	UniqueRate     float64 `json:"unique_rate"`

	ClicksByDay      []MetricPoint  `json:"clicks_by_day"`
	EventsByType     map[string]int `json:"events_by_type"`
	ClicksByDevice   map[string]int `json:"clicks_by_device"`
	ClicksByCountry  map[string]int `json:"clicks_by_country"`
	ClicksByBrowser  map[string]int `json:"clicks_by_browser"`
	TopLinks         []LinkStat     `json:"top_links"`
	ChannelBreakdown []ChannelStat  `json:"channel_breakdown"`
}

// LinkStat is one row of a per-link breakdown.
type LinkStat struct {
	LinkID         string  `json:"link_id"`
	LinkName       string  `json:"link_name"`
	ShortCode      string  `json:"short_code"`
	TotalClicks    int     `json:"total_clicks"`
	UniqueClicks   int     `json:"unique_clicks"`
	Conversions    int     `json:"conversions"`
	ConversionRate float64 `json:"conversion_rate"`
}

// ChannelStat is one row of a per-channel breakdown.
type ChannelStat struct {
	ChannelID      string  `json:"channel_id"`
	ChannelName    string  `json:"channel_name"`
	ChannelType    string  `json:"channel_type"`
	TotalClicks    int     `json:"total_clicks"`
	Conversions    int     `json:"conversions"`
	ConversionRate float64 `json:"conversion_rate"`
}

// LinkAnalytics is the per-link view: counters plus a daily click series.
type LinkAnalytics struct {
	LinkID         string        `json:"link_id"`
	LinkName       string        `json:"link_name"`
	ShortCode      string        `json:"short_code"`
	PeriodStart    string        `json:"period_start"`
	PeriodEnd      string        `json:"period_end"`
	TotalClicks    int           `json:"total_clicks"`
	UniqueClicks   int           `json:"unique_clicks"`
	Conversions    int           `json:"conversions"`
	ConversionRate float64       `json:"conversion_rate"`
	UniqueRate     float64       `json:"unique_rate"`
	ClicksByDay    []MetricPoint `json:"clicks_by_day"`
}

// DashboardResponse summarizes all of an owner's campaigns.
type DashboardResponse struct {
	TotalCampaigns    int                `json:"total_campaigns"`
	ActiveCampaigns   int                `json:"active_campaigns"`
	TotalClicks       int                `json:"total_clicks"`
	TotalConversions  int                `json:"total_conversions"`
	TotalRewardsGiven int                `json:"total_rewards_given"`
	ConversionRate    float64            `json:"conversion_rate"`
	TopCampaigns      []CampaignResponse `json:"top_campaigns"`
}
