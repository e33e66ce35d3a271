package dto

import "time"

type SwipeRequest struct {
	TargetID  string `json:"target_id"`
	Direction string `json:"direction"`
}

type SwipeRecordResponse struct {
	TargetID  string     `json:"target_id"`
	Direction string     `json:"direction"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

type SwipeResponse struct {
	OK       bool                `json:"ok"`
	Status   string              `json:"status"`
	Record   SwipeRecordResponse `json:"record"`
	Interest *InterestResponse   `json:"interest,omitempty"`
}

type QuotaResponse struct {
	Count     int       `json:"count"`
	Limit     int       `json:"limit"`
	Remaining int       `json:"remaining"`
	ResetAt   time.Time `json:"reset_at"`
}
