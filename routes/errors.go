package routes

import (
	"errors"
	"log"

	"github.com/kataras/iris/v12"

	"leasemate-server/services"
	"leasemate-server/utils"
)

// HandleServiceError maps the service error taxonomy onto HTTP statuses.
// Business errors carry their reason through so the client can render the
// exact remediation; everything unexpected collapses to a logged 500.
func HandleServiceError(ctx iris.Context, err error) {
	var (
		validationErr   *services.ValidationError
		notFoundErr     *services.NotFoundError
		authErr         *services.AuthorizationError
		invalidStateErr *services.InvalidStateError
		quotaErr        *services.QuotaError
		collabErr       *services.CollaboratorError
	)

	switch {
	case errors.As(err, &validationErr):
		utils.JSONError(ctx, iris.StatusBadRequest, "validation", validationErr.Error())
	case errors.As(err, &notFoundErr):
		utils.JSONError(ctx, iris.StatusNotFound, "not_found", notFoundErr.Error())
	case errors.As(err, &authErr):
		utils.JSONError(ctx, iris.StatusForbidden, "forbidden", authErr.Error())
	case errors.As(err, &invalidStateErr):
		utils.JSONError(ctx, iris.StatusConflict, "invalid_state", invalidStateErr.Error())
	case errors.As(err, &quotaErr):
		utils.JSONError(ctx, iris.StatusPaymentRequired, "quota", quotaErr.Error())
	case errors.As(err, &collabErr):
		// Retryable: the collaborator failed, not the request.
		utils.JSONError(ctx, iris.StatusBadGateway, "collaborator", collabErr.Error())
	default:
		log.Printf("unhandled service error: %v", err)
		utils.JSONError(ctx, iris.StatusInternalServerError, "internal", "something went wrong")
	}
}
