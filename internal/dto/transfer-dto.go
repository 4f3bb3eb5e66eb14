package dto

// CreateTransferDTO starts a transfer of one resource to another user.
type CreateTransferDTO struct {
	ToUserID uint64 `json:"toUserId" validate:"required"`
	Reason   string `json:"reason" validate:"required"`
}

// UpdateTransferStatusDTO moves a transfer through its lifecycle.
type UpdateTransferStatusDTO struct {
	Status  string  `json:"status" validate:"required,transfer_status"`
	Remarks *string `json:"remarks"`
}
