package services

import "fmt"

// NotificationType is the closed set of domain events a notification can
// carry. Constructors below are the only way the workflows build events, so
// each variant's required references are enforced at the call site instead of
// living in an optionally-populated grab bag.
type NotificationType string

const (
	NotifyBookingRequest    NotificationType = "BOOKING_REQUEST"
	NotifyBookingRejected   NotificationType = "BOOKING_REJECTED"
	NotifyLeaseApproved     NotificationType = "LEASE_APPROVED"
	NotifyLeaseRejected     NotificationType = "LEASE_REJECTED"
	NotifyUnitApproved      NotificationType = "UNIT_APPROVED"
	NotifyUnitRejected      NotificationType = "UNIT_REJECTED"
	NotifyMaintenanceUpdate NotificationType = "MAINTENANCE_UPDATE"
	NotifyPaymentSuccess    NotificationType = "PAYMENT_SUCCESS"
	NotifyPaymentFailed     NotificationType = "PAYMENT_FAILED"
	NotifyRefundEligible    NotificationType = "REFUND_ELIGIBLE"
	NotifyRefundIssued      NotificationType = "REFUND_ISSUED"
	NotifyChatMessage       NotificationType = "CHAT_MESSAGE"
)

// Event is one addressed domain event, ready for the dispatcher.
type Event struct {
	Recipient uint
	Sender    uint // 0 when the system itself is the sender
	Type      NotificationType
	Title     string
	Message   string
	Link      string
	RefType   string
	RefID     uint
}

func BookingRequestEvent(ownerID, tenantID, bookingID uint, tenantName, unitTitle string) Event {
	return Event{
		Recipient: ownerID,
		Sender:    tenantID,
		Type:      NotifyBookingRequest,
		Title:     "New rental request",
		Message:   fmt.Sprintf("%s requested to rent %s", tenantName, unitTitle),
		Link:      fmt.Sprintf("/landlord/bookings/%d", bookingID),
		RefType:   "booking",
		RefID:     bookingID,
	}
}

func BookingRejectedEvent(tenantID, ownerID, bookingID uint, unitTitle string) Event {
	return Event{
		Recipient: tenantID,
		Sender:    ownerID,
		Type:      NotifyBookingRejected,
		Title:     "Request declined",
		Message:   fmt.Sprintf("Your rental request for %s was declined", unitTitle),
		RefType:   "booking",
		RefID:     bookingID,
	}
}

func LeaseApprovedEvent(tenantID, ownerID, leaseID uint, unitTitle string) Event {
	return Event{
		Recipient: tenantID,
		Sender:    ownerID,
		Type:      NotifyLeaseApproved,
		Title:     "Lease ready to sign",
		Message:   fmt.Sprintf("The landlord accepted your request for %s. Review the lease terms.", unitTitle),
		Link:      fmt.Sprintf("/tenant/leases/%d", leaseID),
		RefType:   "lease",
		RefID:     leaseID,
	}
}

func LeaseRejectedEvent(landlordID, tenantID, leaseID uint, unitTitle, reason string) Event {
	return Event{
		Recipient: landlordID,
		Sender:    tenantID,
		Type:      NotifyLeaseRejected,
		Title:     "Lease declined",
		Message:   fmt.Sprintf("The tenant declined the lease for %s: %s", unitTitle, reason),
		Link:      fmt.Sprintf("/landlord/leases/%d", leaseID),
		RefType:   "lease",
		RefID:     leaseID,
	}
}

func UnitApprovedEvent(ownerID, unitID uint, unitTitle string) Event {
	return Event{
		Recipient: ownerID,
		Type:      NotifyUnitApproved,
		Title:     "Listing approved",
		Message:   fmt.Sprintf("Your unit %s is approved and now visible to tenants", unitTitle),
		Link:      fmt.Sprintf("/landlord/units/%d", unitID),
		RefType:   "unit",
		RefID:     unitID,
	}
}

func UnitRejectedEvent(ownerID, unitID uint, unitTitle, notes string) Event {
	return Event{
		Recipient: ownerID,
		Type:      NotifyUnitRejected,
		Title:     "Listing rejected",
		Message:   fmt.Sprintf("Your unit %s was rejected: %s", unitTitle, notes),
		Link:      fmt.Sprintf("/landlord/units/%d", unitID),
		RefType:   "unit",
		RefID:     unitID,
	}
}

func MaintenanceUpdateEvent(recipientID, unitID uint, unitTitle string, underMaintenance bool) Event {
	msg := fmt.Sprintf("%s is back from maintenance", unitTitle)
	if underMaintenance {
		msg = fmt.Sprintf("%s is undergoing maintenance", unitTitle)
	}
	return Event{
		Recipient: recipientID,
		Type:      NotifyMaintenanceUpdate,
		Title:     "Maintenance update",
		Message:   msg,
		RefType:   "unit",
		RefID:     unitID,
	}
}

func PaymentSuccessEvent(ownerID, subscriptionID uint, planName string) Event {
	return Event{
		Recipient: ownerID,
		Type:      NotifyPaymentSuccess,
		Title:     "Payment received",
		Message:   fmt.Sprintf("Your %s subscription is now active", planName),
		Link:      "/landlord/subscription",
		RefType:   "subscription",
		RefID:     subscriptionID,
	}
}

func PaymentFailedEvent(ownerID uint, planName string) Event {
	return Event{
		Recipient: ownerID,
		Type:      NotifyPaymentFailed,
		Title:     "Payment failed",
		Message:   fmt.Sprintf("The payment for your %s subscription failed. Update your payment method.", planName),
		Link:      "/landlord/subscription",
		RefType:   "subscription",
	}
}

func RefundEligibleEvent(ownerID, subscriptionID uint, planName string) Event {
	return Event{
		Recipient: ownerID,
		Type:      NotifyRefundEligible,
		Title:     "Refund available",
		Message:   fmt.Sprintf("Your expired %s subscription is eligible for a refund", planName),
		Link:      "/landlord/subscription",
		RefType:   "subscription",
		RefID:     subscriptionID,
	}
}

func RefundIssuedEvent(ownerID, subscriptionID uint, planName string) Event {
	return Event{
		Recipient: ownerID,
		Type:      NotifyRefundIssued,
		Title:     "Refund issued",
		Message:   fmt.Sprintf("Your %s subscription was refunded", planName),
		RefType:   "subscription",
		RefID:     subscriptionID,
	}
}

func ChatMessageEvent(receiverID, senderID, conversationID uint, senderName, preview string) Event {
	return Event{
		Recipient: receiverID,
		Sender:    senderID,
		Type:      NotifyChatMessage,
		Title:     "New message",
		Message:   fmt.Sprintf("%s: %s", senderName, preview),
		Link:      fmt.Sprintf("/chat/%d", conversationID),
		RefType:   "conversation",
		RefID:     conversationID,
	}
}
