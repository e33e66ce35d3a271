package enums

type InterestStatus string

const (
	InterestStatusPending  InterestStatus = "PENDING"
	InterestStatusMutual   InterestStatus = "MUTUAL"
	InterestStatusDeclined InterestStatus = "DECLINED"
)

type RespondAction string

const (
	RespondActionAccept  RespondAction = "accept"
	RespondActionDecline RespondAction = "decline"
)
