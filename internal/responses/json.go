package responses

import "github.com/gin-gonic/gin"

type APIResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

func Success(c *gin.Context, statusCode int, data interface{}, message string) {
	c.JSON(statusCode, APIResponse{
		Status:  "success",
		Message: message,
		Data:    data,
	})
}

func Fail(c *gin.Context, statusCode int, err error, message string) {
	FailWithDetails(c, statusCode, err, message, nil)
}

// FailWithDetails adds a machine-readable description of what was rejected.
func FailWithDetails(c *gin.Context, statusCode int, err error, message string, details interface{}) {
	resp := APIResponse{
		Status:  "error",
		Message: message,
		Details: details,
	}
	if err != nil {
		resp.Error = err.Error()
	}
	c.AbortWithStatusJSON(statusCode, resp)
}
