package dto

// FeedResponse carries the ranked candidates in display order. Scores are
// internal to the ranker and never leave the server.
type FeedResponse struct {
	Candidates []ProfileSummaryResponse `json:"candidates"`
}
