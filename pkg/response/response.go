package response

import (
	"strconv"
	"time"

	appErrors "github.com/charlesng35/orgdirectory/pkg/errors"
	"github.com/gin-gonic/gin"
)

// PageResponse is the envelope returned by listing and search endpoints.
type PageResponse struct {
	Data         interface{} `json:"Data"`
	TotalRecords int64       `json:"TotalRecords"`
	TimeTaken    string      `json:"TimeTaken"`
}

// MessageResponse carries a human readable message, optionally with the time the operation took.
type MessageResponse struct {
	Message  string `json:"Message"`
	Duration string `json:"Duration,omitempty"`
}

// Page writes a 200 page envelope.
func Page(c *gin.Context, statusCode int, data interface{}, total int64, elapsed time.Duration) {
	c.JSON(statusCode, PageResponse{
		Data:         data,
		TotalRecords: total,
		TimeTaken:    FormatElapsed(elapsed),
	})
}

// Message writes a message-only payload.
func Message(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, MessageResponse{Message: message})
}

// MessageWithDuration writes a message payload that includes the elapsed time.
func MessageWithDuration(c *gin.Context, statusCode int, message string, elapsed time.Duration) {
	c.JSON(statusCode, MessageResponse{
		Message:  message,
		Duration: FormatElapsed(elapsed),
	})
}

// Error writes a JSON error response derived from an AppError.
func Error(c *gin.Context, err error) {
	appErr := toAppError(err)
	Message(c, appErr.Status(), appErr.Error())
}

// ErrorWithDuration writes an error response that still reports how long the failed operation ran.
func ErrorWithDuration(c *gin.Context, err error, elapsed time.Duration) {
	appErr := toAppError(err)
	MessageWithDuration(c, appErr.Status(), appErr.Error(), elapsed)
}

// FormatElapsed renders a duration as fractional seconds, e.g. "0.0421 Second".
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	return strconv.FormatFloat(d.Seconds(), 'f', -1, 64) + " Second"
}

func toAppError(err error) *appErrors.AppError {
	if err == nil {
		return appErrors.ErrInternalServer
	}
	return appErrors.FromError(err)
}
