package routes

import (
	"fmt"
	"time"

	"github.com/kataras/iris/v12"

	"leasemate-server/services"
	"leasemate-server/utils"
)

type CreateLeaseInput struct {
	BookingID    uint   `json:"bookingID" validate:"required"`
	StartDate    string `json:"startDate"` // defaults to the booking's range
	EndDate      string `json:"endDate"`
	PaymentTerms string `json:"paymentTerms" validate:"required,oneof=monthly quarterly upfront"`
}

func CreateLease(ctx iris.Context) {
	var input CreateLeaseInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var start, end time.Time
	if input.StartDate != "" {
		var err error
		start, err = time.Parse("2006-01-02", input.StartDate)
		if err != nil {
			utils.JSONError(ctx, iris.StatusBadRequest, "validation", "invalid startDate format")
			return
		}
		end, err = time.Parse("2006-01-02", input.EndDate)
		if err != nil {
			utils.JSONError(ctx, iris.StatusBadRequest, "validation", "invalid endDate format")
			return
		}
	}

	lease, err := Leases.Create(ctx.Request().Context(), services.CreateLeaseInput{
		OwnerID:      utils.CallerID(ctx),
		BookingID:    input.BookingID,
		StartDate:    start,
		EndDate:      end,
		PaymentTerms: input.PaymentTerms,
	})
	if err != nil {
		HandleServiceError(ctx, err)
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(lease)
}

func AcceptLease(ctx iris.Context) {
	leaseID, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, iris.StatusBadRequest, "validation", "invalid lease id")
		return
	}

	lease, err := Leases.Accept(ctx.Request().Context(), utils.CallerID(ctx), leaseID)
	if err != nil {
		HandleServiceError(ctx, err)
		return
	}
	ctx.JSON(lease)
}

type RejectLeaseInput struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

func RejectLease(ctx iris.Context) {
	leaseID, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, iris.StatusBadRequest, "validation", "invalid lease id")
		return
	}

	var input RejectLeaseInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	lease, err := Leases.Reject(ctx.Request().Context(), utils.CallerID(ctx), leaseID, input.Reason)
	if err != nil {
		HandleServiceError(ctx, err)
		return
	}
	ctx.JSON(lease)
}

func GetLease(ctx iris.Context) {
	leaseID, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, iris.StatusBadRequest, "validation", "invalid lease id")
		return
	}

	lease, err := Leases.Get(ctx.Request().Context(), utils.CallerID(ctx), leaseID)
	if err != nil {
		HandleServiceError(ctx, err)
		return
	}
	ctx.JSON(lease)
}

// ListLeases pages the caller's leases; ?as=landlord switches sides.
func ListLeases(ctx iris.Context) {
	page := ctx.URLParamIntDefault("page", 1)
	pageSize := ctx.URLParamIntDefault("pageSize", 20)
	asLandlord := ctx.URLParam("as") == "landlord"

	leases, total, err := Leases.List(ctx.Request().Context(), utils.CallerID(ctx), asLandlord, page, pageSize)
	if err != nil {
		HandleServiceError(ctx, err)
		return
	}
	utils.JSONPage(ctx, leases, page, pageSize, total)
}

// DownloadLeaseContract proxies the external document renderer. Rendering is
// read-only and timeout-bounded; a renderer failure is a retryable 502 and
// never touches the lease.
func DownloadLeaseContract(ctx iris.Context) {
	leaseID, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, iris.StatusBadRequest, "validation", "invalid lease id")
		return
	}
	if Renderer == nil {
		utils.JSONError(ctx, iris.StatusServiceUnavailable, "collaborator", "document renderer not configured")
		return
	}

	doc, err := Leases.RenderContract(ctx.Request().Context(), Renderer, utils.CallerID(ctx), leaseID)
	if err != nil {
		HandleServiceError(ctx, err)
		return
	}

	ctx.ContentType("application/pdf")
	ctx.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="lease-%d.pdf"`, leaseID))
	ctx.Write(doc)
}
