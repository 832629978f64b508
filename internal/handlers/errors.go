package handlers

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/yukikurage/taskpad/internal/constants"
	apierrors "github.com/yukikurage/taskpad/internal/errors"
	"github.com/yukikurage/taskpad/internal/repository"
	"github.com/yukikurage/taskpad/internal/services"
)

// describeBindError turns the first validation failure into a form message.
func describeBindError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid request body"
	}

	fe := verrs[0]
	switch fe.Field() {
	case "Username":
		if fe.Tag() == "required" {
			return "Username is required"
		}
		if fe.Tag() == "max" {
			return fmt.Sprintf("Username must be at most %d characters", constants.MaxUsernameLength)
		}
		return fmt.Sprintf("Username must be at least %d characters", constants.MinUsernameLength)
	case "Email":
		if fe.Tag() == "required" {
			return "Email is required"
		}
		return "Please enter a valid email"
	case "ConfirmPassword":
		return "Passwords do not match"
	case "Password", "NewPassword":
		if fe.Tag() == "required" {
			return "Password is required"
		}
		return fmt.Sprintf("Password must be at least %d characters", constants.MinPasswordLength)
	case "Title":
		return "Title is required"
	default:
		return fmt.Sprintf("Invalid value for %s", fe.Field())
	}
}

func respondTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNoActiveSession):
		apierrors.Unauthorized(c, apierrors.ErrCodeNoActiveSession, "Login required")
	case errors.Is(err, services.ErrInvalidTitle):
		apierrors.BadRequest(c, apierrors.ErrCodeInvalidTitle, "Title cannot be empty")
	case errors.Is(err, services.ErrInvalidViewOption):
		apierrors.BadRequest(c, apierrors.ErrCodeInvalidViewOption, err.Error())
	case errors.Is(err, services.ErrNotPermutation):
		apierrors.BadRequest(c, apierrors.ErrCodeNotPermutation, err.Error())
	default:
		respondStorageError(c, err)
	}
}

func respondStorageError(c *gin.Context, err error) {
	if errors.Is(err, repository.ErrStorageUnavailable) {
		apierrors.ServiceUnavailable(c, "Storage unavailable")
		return
	}
	_ = c.Error(err)
	apierrors.InternalError(c, "")
}
