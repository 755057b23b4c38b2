package service

import (
	"errors"
	"fmt"

	"go-retreat-store/internal/apperr"
	"go-retreat-store/pkg/validator"
)

var (
	ErrForbiddenTrade      = apperr.Forbidden("Only team leaders can perform this action")
	ErrAdminOnly           = apperr.Forbidden("Admin access required")
	ErrInvalidCode         = apperr.Conflict("Invalid or already used code")
	ErrInsufficientStock   = apperr.Conflict("Insufficient stock")
	ErrInsufficientBalance = apperr.Conflict("Insufficient balance")
	ErrSelfDonation        = apperr.Validation("Cannot donate to your own team")
	ErrNoTeam              = apperr.Validation("User is not assigned to a team")
	ErrProductNotFound     = apperr.NotFound("Product not found or not available")
	ErrTeamNotFound        = apperr.NotFound("Team not found")
	ErrUserNotFound        = apperr.NotFound("User not found")
	ErrOrderNotFound       = apperr.NotFound("Order not found")
	ErrUsernameTaken       = apperr.Conflict("Username already exists")
	ErrTeamNameTaken       = apperr.Conflict("Team name already exists")
	ErrInvalidCredentials  = apperr.Unauthorized("Invalid username or password")
	ErrWrongPassword       = apperr.Validation("Current password is incorrect")
)

// validate runs struct validation and reports the first failure
func validate(req interface{}) error {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		first := errs[0]
		return apperr.Validation(fmt.Sprintf("Validation failed: Field '%s' failed on tag '%s'", first.FailedField, first.Tag))
	}
	return nil
}

// storeErr passes classified errors through and wraps everything else as internal
func storeErr(msg string, err error) error {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	return apperr.Internal(msg, err)
}
