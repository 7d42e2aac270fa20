package router

import (
	"github.com/gin-gonic/gin"
)

type RequestContext = gin.Context

type MiddlewareFunc = gin.HandlerFunc

// ServiceResult is the uniform handler return value. Success responses
// render as {success:true, message?, data?, ...extra}; failures render as
// {success:false, error}. Raw bypasses the envelope entirely for endpoints
// with a fixed body shape (e.g. /health).
type ServiceResult struct {
	StatusCode int
	Message    string
	Data       any
	Extra      gin.H
	Raw        gin.H
}

type RateLimitResponse struct {
	Limit      int    `json:"limit"`
	Window     string `json:"window"`
	RetryAfter string `json:"retry_after"`
}

type HandlerFunction func(*RequestContext) *ServiceResult

type RESTController struct {
	name         string
	mountPoint   string
	version      string
	handlerCount int
	prepare      func(*RouterService, *RESTController)
}

func (result *ServiceResult) ToJSON() gin.H {
	if result.Raw != nil {
		return result.Raw
	}

	body := gin.H{"success": result.IsSuccess()}

	if result.IsSuccess() {
		if result.Message != "" {
			body["message"] = result.Message
		}
		if result.Data != nil {
			body["data"] = result.Data
		}
	} else {
		message := result.Message
		if message == "" {
			message = "Internal server error"
		}
		body["error"] = message
		if result.Data != nil {
			body["details"] = result.Data
		}
	}

	for key, value := range result.Extra {
		body[key] = value
	}

	return body
}

func (result *ServiceResult) IsSuccess() bool {
	return result.StatusCode >= 200 && result.StatusCode < 300
}

func (result *ServiceResult) IsError() bool {
	return result.StatusCode >= 400
}
