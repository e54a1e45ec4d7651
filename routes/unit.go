package routes

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/kataras/iris/v12"
	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"leasemate-server/models"
	"leasemate-server/services"
	"leasemate-server/storage"
	"leasemate-server/utils"
)

type CreateUnitInput struct {
	Title        string   `json:"title" validate:"required,max=256"`
	Description  string   `json:"description"`
	AddressLine1 string   `json:"addressLine1" validate:"required"`
	AddressLine2 string   `json:"addressLine2"`
	City         string   `json:"city" validate:"required"`
	State        string   `json:"state"`
	Zip          string   `json:"zip"`
	Country      string   `json:"country" validate:"required"`
	Lat          float32  `json:"lat"`
	Lng          float32  `json:"lng"`
	Bedrooms     int      `json:"bedrooms"`
	Bathrooms    float32  `json:"bathrooms"`
	MonthlyPrice float64  `json:"monthlyPrice" validate:"required,gt=0"`
	Deposit      float64  `json:"deposit" validate:"gte=0"`
	Currency     string   `json:"currency"`
	Amenities    []string `json:"amenities"`
	Images       []string `json:"images"` // base64 payloads
}

// CreateUnit admits a new listing. Admission is gated by the owner's
// subscription quota before anything is written.
func CreateUnit(ctx iris.Context) {
	ownerID := utils.CallerID(ctx)

	sub, err := Subscriptions.EnforceUnitQuota(ctx.Request().Context(), ownerID)
	if err != nil {
		HandleServiceError(ctx, err)
		return
	}

	var input CreateUnitInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	amenities := input.Amenities
	if amenities == nil {
		amenities = []string{}
	}
	amenitiesJSON, _ := json.Marshal(amenities)

	// Every uploaded image starts in pending moderation state.
	images := make([]models.UnitImage, 0, len(input.Images))
	for _, b64 := range input.Images {
		url := storage.UploadBase64Image(b64, uuid.NewString())
		if url == "" {
			continue
		}
		images = append(images, models.UnitImage{URL: url, Status: "pending"})
	}
	imagesJSON, _ := json.Marshal(images)

	unit := models.Unit{
		OwnerID:      ownerID,
		Title:        input.Title,
		Description:  input.Description,
		AddressLine1: input.AddressLine1,
		AddressLine2: input.AddressLine2,
		City:         input.City,
		State:        input.State,
		Zip:          input.Zip,
		Country:      input.Country,
		Lat:          input.Lat,
		Lng:          input.Lng,
		Bedrooms:     input.Bedrooms,
		Bathrooms:    input.Bathrooms,
		MonthlyPrice: decimal.NewFromFloat(input.MonthlyPrice),
		Deposit:      decimal.NewFromFloat(input.Deposit),
		Currency:     input.Currency,
		Amenities:    string(amenitiesJSON),
		Images:       datatypes.JSON(imagesJSON),
		Status:       models.UnitPending,
	}

	if err := storage.DB.Create(&unit).Error; err != nil {
		utils.JSONError(ctx, iris.StatusInternalServerError, "internal", "failed to create unit")
		return
	}

	log.Printf("unit %d admitted under %s subscription of owner %d", unit.ID, sub.PlanName, ownerID)
	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(&unit)
}

func GetUnit(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, iris.StatusBadRequest, "validation", "invalid unit id")
		return
	}

	var unit models.Unit
	if err := storage.DB.Preload("Owner").First(&unit, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.JSONError(ctx, iris.StatusNotFound, "not_found", "unit not found")
			return
		}
		HandleServiceError(ctx, err)
		return
	}
	ctx.JSON(&unit)
}

// ListMyUnits returns all units of the calling landlord, any status.
func ListMyUnits(ctx iris.Context) {
	var units []models.Unit
	if err := storage.DB.
		Where("owner_id = ?", utils.CallerID(ctx)).
		Order("id DESC").
		Find(&units).Error; err != nil {
		HandleServiceError(ctx, err)
		return
	}
	ctx.JSON(iris.Map{"units": units})
}

// SearchUnits is the public listing search: approved or available units only,
// filtered by city and price band.
func SearchUnits(ctx iris.Context) {
	page := ctx.URLParamIntDefault("page", 1)
	pageSize := ctx.URLParamIntDefault("pageSize", 20)
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	query := storage.DB.Model(&models.Unit{}).
		Where("status IN ?", []models.UnitStatus{models.UnitApproved, models.UnitAvailable})

	if city := ctx.URLParam("city"); city != "" {
		query = query.Where("LOWER(city) = LOWER(?)", city)
	}
	if minPrice := ctx.URLParamFloat64Default("minPrice", 0); minPrice > 0 {
		query = query.Where("monthly_price >= ?", minPrice)
	}
	if maxPrice := ctx.URLParamFloat64Default("maxPrice", 0); maxPrice > 0 {
		query = query.Where("monthly_price <= ?", maxPrice)
	}
	if bedrooms := ctx.URLParamIntDefault("bedrooms", 0); bedrooms > 0 {
		query = query.Where("bedrooms >= ?", bedrooms)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		HandleServiceError(ctx, err)
		return
	}

	var units []models.Unit
	if err := query.
		Order("id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&units).Error; err != nil {
		HandleServiceError(ctx, err)
		return
	}
	utils.JSONPage(ctx, units, page, pageSize, total)
}

// maintenanceTransitions are the only statuses a landlord may move a unit
// into by hand. Booked units are owned by the lease workflow and stay out of
// reach here.
var maintenanceTransitions = []models.UnitStatus{models.UnitUnderMaintenance, models.UnitAvailable}

type SetMaintenanceInput struct {
	Status string `json:"status" validate:"required"`
}

// SetUnitMaintenance toggles a unit between available and under_maintenance.
// The transition is conditional so a concurrently-created lease cannot be
// clobbered, and the tenant of any open lease hears about it.
func SetUnitMaintenance(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, iris.StatusBadRequest, "validation", "invalid unit id")
		return
	}

	var input SetMaintenanceInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}
	target := models.UnitStatus(input.Status)
	if !slices.Contains(maintenanceTransitions, target) {
		utils.JSONError(ctx, iris.StatusBadRequest, "validation",
			fmt.Sprintf("status must be one of %v", maintenanceTransitions))
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
	if unit.OwnerID != utils.CallerID(ctx) {
		utils.JSONError(ctx, iris.StatusForbidden, "forbidden", "unit belongs to another landlord")
		return
	}

	res := storage.DB.Model(&models.Unit{}).
		Where("id = ? AND status IN ?", id, []models.UnitStatus{
			models.UnitAvailable, models.UnitApproved, models.UnitUnderMaintenance,
		}).
		Update("status", target)
	if res.Error != nil {
		HandleServiceError(ctx, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		utils.JSONError(ctx, iris.StatusConflict, "invalid_state", "unit cannot change status right now")
		return
	}

	// Tell the tenant of the open lease, if there is one.
	lease, lerr := Leases.OpenLeaseForUnit(ctx.Request().Context(), unit.ID)
	if lerr != nil {
		log.Printf("unit %d: look up open lease: %v", unit.ID, lerr)
	} else if lease != nil {
		ev := services.MaintenanceUpdateEvent(lease.TenantID, unit.ID, unit.Title, target == models.UnitUnderMaintenance)
		if _, nerr := Notifier.Notify(ctx.Request().Context(), ev); nerr != nil {
			log.Printf("unit %d: maintenance notify tenant %d: %v", unit.ID, lease.TenantID, nerr)
		}
	}

	unit.Status = target
	ctx.JSON(&unit)
}
