package main

import (
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"

	"leasemate-server/routes"
	"leasemate-server/services"
	"leasemate-server/storage"
	"leasemate-server/utils"
)

func main() {
	godotenv.Load()
	db := storage.InitializeDB()
	storage.InitializeRedis()

	stores := storage.NewStores(db)
	live := services.NewLiveSessionRegistry()
	notifier := services.NewNotificationDispatcher(stores, stores, live, utils.SendPushNotification)
	bookings := services.NewBookingWorkflow(stores, stores, stores, notifier)
	leases := services.NewLeaseWorkflow(stores, stores, stores, notifier)
	subscriptions := services.NewSubscriptionLedger(stores, stores, notifier)
	payments := services.NewPaymentProcessor(stores, subscriptions, notifier)

	var renderer services.ContractRenderer
	if url := os.Getenv("LEASE_RENDERER_URL"); url != "" {
		renderer = services.NewHTTPContractRenderer(url)
	}

	routes.Init(routes.Deps{
		Bookings:      bookings,
		Leases:        leases,
		Subscriptions: subscriptions,
		Notifier:      notifier,
		Payments:      payments,
		Live:          live,
		Renderer:      renderer,
	})

	app := iris.New()
	app.Validator = validator.New()

	app.AllowMethods(iris.MethodOptions)
	app.UseRouter(func(ctx iris.Context) {
		ctx.Header("Access-Control-Allow-Origin", ctx.GetHeader("Origin"))
		ctx.Header("Vary", "Origin")
		ctx.Header("Access-Control-Allow-Credentials", "true")
		ctx.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Requested-With")
		ctx.Header("Access-Control-Allow-Methods", "GET,POST,PATCH,PUT,DELETE,OPTIONS")
		if ctx.Method() == iris.MethodOptions {
			ctx.StatusCode(iris.StatusNoContent)
			return
		}
		ctx.Next()
	})

	accessTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("ACCESS_TOKEN_SECRET")))
	accessTokenVerifier.WithDefaultBlocklist()
	auth := accessTokenVerifier.Verify(func() interface{} {
		return new(utils.AccessToken)
	})

	units := app.Party("/api/units")
	{
		units.Get("/search", routes.SearchUnits)
		units.Get("/{id:uint}", routes.GetUnit)
		units.Post("/", auth, utils.LandlordOnlyMiddleware, routes.CreateUnit)
		units.Get("/mine", auth, utils.LandlordOnlyMiddleware, routes.ListMyUnits)
		units.Patch("/{id:uint}/maintenance", auth, utils.LandlordOnlyMiddleware, routes.SetUnitMaintenance)
	}

	bookingsParty := app.Party("/api/bookings", auth, utils.UserIDFromTokenMiddleware)
	{
		bookingsParty.Post("/", routes.CreateBooking)
		bookingsParty.Get("/mine", routes.ListMyBookings)
		bookingsParty.Get("/owner", utils.LandlordOnlyMiddleware, routes.ListOwnerBookings)
		bookingsParty.Delete("/{id:uint}", utils.LandlordOnlyMiddleware, routes.RejectBooking)
	}

	leasesParty := app.Party("/api/leases", auth, utils.UserIDFromTokenMiddleware)
	{
		leasesParty.Post("/", utils.LandlordOnlyMiddleware, routes.CreateLease)
		leasesParty.Get("/", routes.ListLeases)
		leasesParty.Get("/{id:uint}", routes.GetLease)
		leasesParty.Post("/{id:uint}/accept", routes.AcceptLease)
		leasesParty.Post("/{id:uint}/reject", routes.RejectLease)
		leasesParty.Get("/{id:uint}/contract", routes.DownloadLeaseContract)
	}

	subs := app.Party("/api/subscriptions")
	{
		subs.Get("/plans", routes.ListPlans)
		subs.Get("/current", auth, utils.LandlordOnlyMiddleware, routes.GetMySubscription)
		subs.Get("/", auth, utils.LandlordOnlyMiddleware, routes.ListMySubscriptions)
		subs.Get("/quota", auth, utils.LandlordOnlyMiddleware, routes.CheckUnitQuota)
		subs.Post("/{id:uint}/refund", auth, utils.LandlordOnlyMiddleware, routes.RefundSubscription)
	}

	notificationsParty := app.Party("/api/notifications", auth, utils.UserIDFromTokenMiddleware)
	{
		notificationsParty.Get("/", routes.ListNotifications)
		notificationsParty.Get("/unread-count", routes.UnreadNotificationCount)
		notificationsParty.Get("/stream", routes.StreamNotifications)
		notificationsParty.Patch("/{id:uint}/read", routes.MarkNotificationRead)
		notificationsParty.Patch("/read-all", routes.MarkAllNotificationsRead)
		notificationsParty.Delete("/{id:uint}", routes.DeleteNotification)
	}

	chat := app.Party("/api/chat", auth, utils.UserIDFromTokenMiddleware)
	{
		chat.Post("/conversations", routes.StartConversation)
		chat.Get("/conversations", routes.ListConversations)
		chat.Get("/conversations/{id:uint}/messages", routes.ListMessages)
		chat.Post("/conversations/{id:uint}/messages", routes.SendMessage)
		chat.Post("/conversations/{id:uint}/typing", routes.SetTyping)
		chat.Get("/conversations/{id:uint}/typing", routes.GetTyping)
		chat.Post("/conversations/{id:uint}/seen", routes.MarkMessagesSeen)
	}

	admin := app.Party("/api/admin", auth, utils.AdminOnlyMiddleware)
	{
		admin.Get("/users", routes.AdminListUsers)
		admin.Get("/units/pending", routes.AdminListPendingUnits)
		admin.Post("/units/{id:uint}/review", routes.AdminReviewUnit)
		admin.Get("/stats", routes.AdminStats)
	}

	// Provider-to-server, authenticated by shared secret instead of JWT
	app.Post("/api/webhooks/payments", routes.PaymentWebhook)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	app.Listen(":" + port)
}
