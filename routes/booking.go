package routes

import (
	"time"

	"github.com/kataras/iris/v12"
	"github.com/shopspring/decimal"

	"leasemate-server/services"
	"leasemate-server/utils"
)

type CreateBookingInput struct {
	UnitID     uint    `json:"unitID" validate:"required"`
	StartDate  string  `json:"startDate" validate:"required"` // YYYY-MM-DD
	EndDate    string  `json:"endDate" validate:"required"`
	TotalPrice float64 `json:"totalPrice" validate:"required,gt=0"`
}

func CreateBooking(ctx iris.Context) {
	var input CreateBookingInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	start, err := time.Parse("2006-01-02", input.StartDate)
	if err != nil {
		utils.JSONError(ctx, iris.StatusBadRequest, "validation", "invalid startDate format")
		return
	}
	end, err := time.Parse("2006-01-02", input.EndDate)
	if err != nil {
		utils.JSONError(ctx, iris.StatusBadRequest, "validation", "invalid endDate format")
		return
	}

	booking, err := Bookings.Create(ctx.Request().Context(), services.CreateBookingInput{
		TenantID:   utils.CallerID(ctx),
		UnitID:     input.UnitID,
		StartDate:  start,
		EndDate:    end,
		TotalPrice: decimal.NewFromFloat(input.TotalPrice),
	})
	if err != nil {
		HandleServiceError(ctx, err)
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(booking)
}

// RejectBooking hard-deletes the request; the tenant is notified. Landlord
// only, irreversible.
func RejectBooking(ctx iris.Context) {
	bookingID, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, iris.StatusBadRequest, "validation", "invalid booking id")
		return
	}

	if err := Bookings.Reject(ctx.Request().Context(), utils.CallerID(ctx), bookingID); err != nil {
		HandleServiceError(ctx, err)
		return
	}

	ctx.JSON(iris.Map{"success": true})
}

// ListOwnerBookings returns pending requests on the landlord's units.
func ListOwnerBookings(ctx iris.Context) {
	bookings, err := Bookings.ListForOwner(ctx.Request().Context(), utils.CallerID(ctx))
	if err != nil {
		HandleServiceError(ctx, err)
		return
	}
	ctx.JSON(iris.Map{"bookings": bookings})
}

// ListMyBookings returns the tenant's own requests.
func ListMyBookings(ctx iris.Context) {
	bookings, err := Bookings.ListForTenant(ctx.Request().Context(), utils.CallerID(ctx))
	if err != nil {
		HandleServiceError(ctx, err)
		return
	}
	ctx.JSON(iris.Map{"bookings": bookings})
}
