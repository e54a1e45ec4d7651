package routes

import (
	"crypto/subtle"
	"encoding/json"
	"io"
	"log"
	"os"
	"time"

	"github.com/kataras/iris/v12"

	"leasemate-server/services"
	"leasemate-server/storage"
	"leasemate-server/utils"
)

// webhookDedupeTTL bounds the Redis fast-path for duplicate deliveries. The
// durable payment-event ledger catches anything that outlives the key.
const webhookDedupeTTL = 24 * time.Hour

// PaymentWebhook consumes asynchronous events from the payment provider.
// The provider retries on non-2xx, so business failures that retrying cannot
// fix still answer 200 with the error recorded in the body.
func PaymentWebhook(ctx iris.Context) {
	secret := os.Getenv("PAYMENT_WEBHOOK_SECRET")
	if secret == "" || subtle.ConstantTimeCompare([]byte(ctx.GetHeader("X-Webhook-Secret")), []byte(secret)) != 1 {
		utils.JSONError(ctx, iris.StatusUnauthorized, "unauthorized", "bad webhook secret")
		return
	}

	body, err := io.ReadAll(ctx.Request().Body)
	if err != nil {
		utils.JSONError(ctx, iris.StatusBadRequest, "validation", "unreadable body")
		return
	}

	var event services.ProviderEvent
	if err := json.Unmarshal(body, &event); err != nil {
		utils.JSONError(ctx, iris.StatusBadRequest, "validation", "malformed event")
		return
	}
	event.Payload = body

	// Fast-path dedupe; Redis being down just falls through to the durable
	// insert-once ledger.
	dedupeKey := "payments:event:" + event.ID
	if storage.Redis != nil {
		fresh, err := storage.Redis.SetNX(ctx.Request().Context(), dedupeKey, "1", webhookDedupeTTL).Result()
		if err == nil && !fresh {
			ctx.JSON(iris.Map{"received": true, "duplicate": true})
			return
		}
	}

	if err := Payments.Consume(ctx.Request().Context(), event); err != nil {
		log.Printf("payments: consume %s: %v", event.ID, err)
		// Drop the fast-path key so the provider's retry reaches Consume.
		if storage.Redis != nil {
			storage.Redis.Del(ctx.Request().Context(), dedupeKey)
		}
		HandleServiceError(ctx, err)
		return
	}

	ctx.JSON(iris.Map{"received": true})
}
