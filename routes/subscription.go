package routes

import (
	"errors"

	"github.com/kataras/iris/v12"
	"golang.org/x/exp/slices"
	"gorm.io/gorm"

	"leasemate-server/models"
	"leasemate-server/services"
	"leasemate-server/storage"
	"leasemate-server/utils"
)

// ListPlans exposes the subscription catalog the checkout page renders.
// Map iteration order is random, so the names are sorted for a stable
// response.
func ListPlans(ctx iris.Context) {
	names := make([]string, 0, len(services.Plans))
	for name := range services.Plans {
		names = append(names, name)
	}
	slices.Sort(names)

	plans := make([]iris.Map, 0, len(names))
	for _, name := range names {
		p := services.Plans[name]
		plans = append(plans, iris.Map{
			"name":      p.Name,
			"unitLimit": p.UnitLimit,
			"termDays":  int(p.Term.Hours() / 24),
		})
	}
	ctx.JSON(iris.Map{"plans": plans})
}

// GetMySubscription returns the landlord's current active subscription.
func GetMySubscription(ctx iris.Context) {
	var sub models.Subscription
	err := storage.DB.
		Where("owner_id = ? AND status = ?", utils.CallerID(ctx), models.SubscriptionActive).
		Order("id DESC").
		First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.JSONError(ctx, iris.StatusNotFound, "not_found", "no active subscription")
			return
		}
		HandleServiceError(ctx, err)
		return
	}
	ctx.JSON(&sub)
}

// ListMySubscriptions returns the landlord's full subscription history,
// including expired and refunded windows.
func ListMySubscriptions(ctx iris.Context) {
	var subs []models.Subscription
	if err := storage.DB.
		Where("owner_id = ?", utils.CallerID(ctx)).
		Order("id DESC").
		Find(&subs).Error; err != nil {
		HandleServiceError(ctx, err)
		return
	}
	ctx.JSON(iris.Map{"subscriptions": subs})
}

// RefundSubscription issues the one-shot refund for an expired subscription.
func RefundSubscription(ctx iris.Context) {
	subID, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, iris.StatusBadRequest, "validation", "invalid subscription id")
		return
	}

	sub, err := Subscriptions.Refund(ctx.Request().Context(), utils.CallerID(ctx), subID)
	if err != nil {
		HandleServiceError(ctx, err)
		return
	}
	ctx.JSON(sub)
}

// CheckUnitQuota lets the listing form ask whether the landlord can add a
// unit before filling anything in.
func CheckUnitQuota(ctx iris.Context) {
	sub, err := Subscriptions.EnforceUnitQuota(ctx.Request().Context(), utils.CallerID(ctx))
	if err != nil {
		HandleServiceError(ctx, err)
		return
	}
	ctx.JSON(iris.Map{
		"allowed":   true,
		"plan":      sub.PlanName,
		"unitLimit": sub.UnitLimit,
	})
}
