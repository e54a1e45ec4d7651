package routes

import (
	"leasemate-server/services"
)

// Package-level services, wired once at startup (and by tests with fakes).
var (
	Bookings      *services.BookingWorkflow
	Leases        *services.LeaseWorkflow
	Subscriptions *services.SubscriptionLedger
	Notifier      *services.NotificationDispatcher
	Payments      *services.PaymentProcessor
	Live          *services.LiveSessionRegistry
	Renderer      services.ContractRenderer
)

type Deps struct {
	Bookings      *services.BookingWorkflow
	Leases        *services.LeaseWorkflow
	Subscriptions *services.SubscriptionLedger
	Notifier      *services.NotificationDispatcher
	Payments      *services.PaymentProcessor
	Live          *services.LiveSessionRegistry
	Renderer      services.ContractRenderer
}

func Init(d Deps) {
	Bookings = d.Bookings
	Leases = d.Leases
	Subscriptions = d.Subscriptions
	Notifier = d.Notifier
	Payments = d.Payments
	Live = d.Live
	Renderer = d.Renderer
}
