package middlewares

import "github.com/gin-gonic/gin"

// gin context keys
const (
	CtxRequestID = "request_id"
	CtxDeviceID  = "device_id"
)

func RequestIDFromContext(c *gin.Context) string {
	return c.GetString(CtxRequestID)
}

func DeviceIDFromContext(c *gin.Context) (string, bool) {
	id := c.GetString(CtxDeviceID)
	return id, id != ""
}
