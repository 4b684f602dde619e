package handlers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	appErrors "github.com/charlesng35/orgdirectory/pkg/errors"
	"github.com/charlesng35/orgdirectory/pkg/response"
	appValidator "github.com/charlesng35/orgdirectory/pkg/validator"
)

// bindQuery binds URL query parameters into dest and runs struct validation rules.
// When binding or validation fails, a 400 response is written and false is returned.
func bindQuery[T any](c *gin.Context, dest *T) bool {
	if err := c.ShouldBindQuery(dest); err != nil {
		response.Error(c, appErrors.NewBadRequest(fmt.Sprintf("invalid query parameters: %v", err)))
		return false
	}

	if err := appValidator.ValidateStruct(dest); err != nil {
		response.Error(c, appErrors.NewBadRequest(formatValidationError(err)))
		return false
	}

	return true
}

func formatValidationError(err error) string {
	var ve appValidator.ValidationErrors
	if !errors.As(err, &ve) || len(ve) == 0 {
		return "invalid request parameters"
	}

	messages := make([]string, 0, len(ve))
	for _, failure := range ve {
		switch failure.Tag {
		case "required":
			messages = append(messages, fmt.Sprintf("%s is required", failure.Field))
		case "gte":
			messages = append(messages, fmt.Sprintf("%s must be at least %s", failure.Field, failure.Param))
		case "lte":
			messages = append(messages, fmt.Sprintf("%s must be at most %s", failure.Field, failure.Param))
		default:
			if failure.Param != "" {
				messages = append(messages, fmt.Sprintf("%s failed validation: %s=%s", failure.Field, failure.Tag, failure.Param))
			} else {
				messages = append(messages, fmt.Sprintf("%s failed validation: %s", failure.Field, failure.Tag))
			}
		}
	}
	return strings.Join(messages, "; ")
}
