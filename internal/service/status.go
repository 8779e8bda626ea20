package service

// Order statuses.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusShipped    = "shipped"
	StatusDelivered  = "delivered"
	StatusCancelled  = "cancelled"
)

var validStatuses = map[string]bool{
	StatusPending:    true,
	StatusProcessing: true,
	StatusShipped:    true,
	StatusDelivered:  true,
	StatusCancelled:  true,
}

func IsValidStatus(status string) bool {
	return validStatuses[status]
}

// canBeCancelled reports whether the customer may still cancel.
func canBeCancelled(status string) bool {
	return status == StatusPending || status == StatusProcessing
}
