package dto

import "time"

// ProfileSummaryResponse is the public slice of a profile shown on cards,
// interest lists and match rosters.
type ProfileSummaryResponse struct {
	UserID               string    `json:"user_id"`
	DisplayName          string    `json:"display_name"`
	Interests            []string  `json:"interests"`
	Skills               []string  `json:"skills"`
	Location             string    `json:"location,omitempty"`
	OpenToStudyPartner   bool      `json:"open_to_study_partner"`
	OpenToProjects       bool      `json:"open_to_projects"`
	OpenToAccountability bool      `json:"open_to_accountability"`
	OpenToCofounder      bool      `json:"open_to_cofounder"`
	OpenToHelpingOthers  bool      `json:"open_to_helping_others"`
	SchoolVerified       bool      `json:"school_verified"`
	LastActiveAt         time.Time `json:"last_active_at"`
}
