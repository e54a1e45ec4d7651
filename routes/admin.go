package routes

import (
	"errors"
	"log"

	"github.com/kataras/iris/v12"
	"gorm.io/gorm"

	"leasemate-server/models"
	"leasemate-server/services"
	"leasemate-server/storage"
	"leasemate-server/utils"
)

// AdminListUsers pages the user table.
func AdminListUsers(ctx iris.Context) {
	page := ctx.URLParamIntDefault("page", 1)
	pageSize := ctx.URLParamIntDefault("pageSize", 50)
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 200 {
		pageSize = 50
	}

	query := storage.DB.Model(&models.User{})
	if role := ctx.URLParam("role"); role != "" {
		query = query.Where("role = ?", role)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		HandleServiceError(ctx, err)
		return
	}

	var users []models.User
	if err := query.Order("id DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&users).Error; err != nil {
		HandleServiceError(ctx, err)
		return
	}
	utils.JSONPage(ctx, users, page, pageSize, total)
}

// AdminListPendingUnits is the moderation queue.
func AdminListPendingUnits(ctx iris.Context) {
	var units []models.Unit
	err := storage.DB.
		Where("status = ?", models.UnitPending).
		Preload("Owner").
		Order("id ASC").
		Find(&units).Error
	if err != nil {
		HandleServiceError(ctx, err)
		return
	}
	ctx.JSON(iris.Map{"units": units})
}

type ReviewUnitInput struct {
	Approve     bool   `json:"approve"`
	ReviewNotes string `json:"reviewNotes" validate:"max=2000"`
}

// AdminReviewUnit resolves a pending listing. Approval makes the unit
// visible; rejection keeps it with the reviewer's notes. Either way the
// owner is notified and the decision is audit-logged.
func AdminReviewUnit(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, iris.StatusBadRequest, "validation", "invalid unit id")
		return
	}

	var input ReviewUnitInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var unit models.Unit
	if err := storage.DB.First(&unit, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.JSONError(ctx, iris.StatusNotFound, "not_found", "unit not found")
			return
		}
		HandleServiceError(ctx, err)
		return
	}

	target := models.UnitRejected
	if input.Approve {
		target = models.UnitApproved
	}

	// Only pending units are reviewable; a booked unit can never be clobbered
	// from the moderation queue.
	res := storage.DB.Model(&models.Unit{}).
		Where("id = ? AND status = ?", id, models.UnitPending).
		Updates(map[string]interface{}{
			"status":       target,
			"review_notes": input.ReviewNotes,
		})
	if res.Error != nil {
		HandleServiceError(ctx, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		utils.JSONError(ctx, iris.StatusConflict, "invalid_state", "unit is not pending review")
		return
	}

	before := unit
	unit.Status = target
	unit.ReviewNotes = input.ReviewNotes
	utils.Audit(ctx, "unit.review", "unit", unit.ID, before, unit)

	var ev services.Event
	if input.Approve {
		ev = services.UnitApprovedEvent(unit.OwnerID, unit.ID, unit.Title)
	} else {
		ev = services.UnitRejectedEvent(unit.OwnerID, unit.ID, unit.Title, input.ReviewNotes)
	}
	if _, err := Notifier.Notify(ctx.Request().Context(), ev); err != nil {
		log.Printf("unit %d: review notify owner %d: %v", unit.ID, unit.OwnerID, err)
	}

	ctx.JSON(&unit)
}

// AdminStats is the dashboard summary.
func AdminStats(ctx iris.Context) {
	stats := iris.Map{}

	var users, units, leases, pendingUnits, activeLeases int64
	storage.DB.Model(&models.User{}).Count(&users)
	storage.DB.Model(&models.Unit{}).Count(&units)
	storage.DB.Model(&models.Lease{}).Count(&leases)
	storage.DB.Model(&models.Unit{}).Where("status = ?", models.UnitPending).Count(&pendingUnits)
	storage.DB.Model(&models.Lease{}).Where("status = ?", models.LeaseActive).Count(&activeLeases)

	stats["users"] = users
	stats["units"] = units
	stats["leases"] = leases
	stats["pendingUnits"] = pendingUnits
	stats["activeLeases"] = activeLeases
	stats["onlineUsers"] = Live.OnlineCount()

	ctx.JSON(stats)
}
