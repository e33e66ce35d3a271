package dto

import "time"

type InterestResponse struct {
	ID           int64      `json:"id"`
	SenderID     string     `json:"sender_id"`
	ReceiverID   string     `json:"receiver_id"`
	IsSuperLike  bool       `json:"is_super_like"`
	Status       string     `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
	RespondedAt  *time.Time `json:"responded_at,omitempty"`
	SeenBySender bool       `json:"seen_by_sender"`
}

type InterestWithProfileResponse struct {
	Interest InterestResponse       `json:"interest"`
	Profile  ProfileSummaryResponse `json:"profile"`
}

type InterestListResponse struct {
	Items []InterestWithProfileResponse `json:"items"`
}

type CountResponse struct {
	Count int `json:"count"`
}

type InterestStatusResponse struct {
	HasSentInterest bool   `json:"has_sent_interest"`
	Status          string `json:"status,omitempty"`
	IsSuperLike     bool   `json:"is_super_like,omitempty"`
}

type RespondRequest struct {
	Action string `json:"action"`
}

// RespondResponse carries the answered interest plus, on acceptance, the
// match artifacts. OtherUser may be absent even when matched is true: the
// counterpart profile is resolved after the match commits, and a failed
// lookup omits the field rather than undoing the match.
type RespondResponse struct {
	OK             bool                    `json:"ok"`
	Interest       InterestResponse        `json:"interest"`
	Matched        bool                    `json:"matched"`
	ConversationID string                  `json:"conversation_id,omitempty"`
	MatchedAt      *time.Time              `json:"matched_at,omitempty"`
	OtherUser      *ProfileSummaryResponse `json:"other_user,omitempty"`
}
