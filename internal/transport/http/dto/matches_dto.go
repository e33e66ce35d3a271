package dto

import "time"

type MatchEntryResponse struct {
	Profile        ProfileSummaryResponse `json:"profile"`
	ConversationID string                 `json:"conversation_id,omitempty"`
	MatchedAt      time.Time              `json:"matched_at"`
}

type MatchListResponse struct {
	Items []MatchEntryResponse `json:"items"`
}

type SeenAllResponse struct {
	OK      bool  `json:"ok"`
	Updated int64 `json:"updated"`
}
