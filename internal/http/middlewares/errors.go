package middlewares

import "github.com/gin-gonic/gin"

// abortWithError writes the same error body as handlers.RespondError.
func abortWithError(c *gin.Context, status int, code, message string) {
	body := gin.H{
		"error": message,
		"code":  code,
	}
	if id := c.GetString(CtxRequestID); id != "" {
		body["requestId"] = id
	}
	c.AbortWithStatusJSON(status, body)
}
