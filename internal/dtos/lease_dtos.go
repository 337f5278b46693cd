package dtos

type TerminateLeaseRequest struct {
	Reason string `json:"reason" validate:"required"`
}
