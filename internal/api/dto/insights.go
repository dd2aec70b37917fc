package dto

// RFMScoreBucket is one bar of the total-score distribution
type RFMScoreBucket struct {
	Score int `json:"score"`
	Count int `json:"count"`
}

// RFMDistributionResponse is the count of clients per total RFM score (3..15)
type RFMDistributionResponse struct {
	TeamID  string           `json:"team_id"`
	Buckets []RFMScoreBucket `json:"buckets"`
}

// NESLResponse segments a team's clients into New / Existing / Sleeping / Lost
type NESLResponse struct {
	TeamID   string `json:"team_id"`
	New      int    `json:"new"`
	Existing int    `json:"existing"`
	Sleeping int    `json:"sleeping"`
	Lost     int    `json:"lost"`
}
