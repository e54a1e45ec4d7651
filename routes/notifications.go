package routes

import (
	"github.com/kataras/iris/v12"

	"leasemate-server/utils"
)

// ListNotifications is the poll fallback for the live channel: clients that
// saw no event within their bound after connecting fetch this page and
// reconcile by notification id.
func ListNotifications(ctx iris.Context) {
	page := ctx.URLParamIntDefault("page", 1)
	pageSize := ctx.URLParamIntDefault("pageSize", 20)

	notifications, total, err := Notifier.List(ctx.Request().Context(), utils.CallerID(ctx), page, pageSize)
	if err != nil {
		HandleServiceError(ctx, err)
		return
	}
	utils.JSONPage(ctx, notifications, page, pageSize, total)
}

func UnreadNotificationCount(ctx iris.Context) {
	count, err := Notifier.UnreadCount(ctx.Request().Context(), utils.CallerID(ctx))
	if err != nil {
		HandleServiceError(ctx, err)
		return
	}
	ctx.JSON(iris.Map{"unread": count})
}

func MarkNotificationRead(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, iris.StatusBadRequest, "validation", "invalid notification id")
		return
	}

	if err := Notifier.MarkRead(ctx.Request().Context(), id, utils.CallerID(ctx), utils.CallerRole(ctx)); err != nil {
		HandleServiceError(ctx, err)
		return
	}
	ctx.JSON(iris.Map{"success": true})
}

func MarkAllNotificationsRead(ctx iris.Context) {
	callerID := utils.CallerID(ctx)
	if err := Notifier.MarkAllRead(ctx.Request().Context(), callerID, callerID, utils.CallerRole(ctx)); err != nil {
		HandleServiceError(ctx, err)
		return
	}
	ctx.JSON(iris.Map{"success": true})
}

func DeleteNotification(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, iris.StatusBadRequest, "validation", "invalid notification id")
		return
	}

	if err := Notifier.Delete(ctx.Request().Context(), id, utils.CallerID(ctx), utils.CallerRole(ctx)); err != nil {
		HandleServiceError(ctx, err)
		return
	}
	ctx.JSON(iris.Map{"success": true})
}
