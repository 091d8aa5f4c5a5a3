package serverutils

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type ApiResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func SuccessResponse(message string, data interface{}) ApiResponse {
	return ApiResponse{
		Success: true,
		Message: message,
		Data:    data,
	}
}

// HttpError carries a status code through the service layer to the error
// handler middleware.
type HttpError struct {
	Code    int
	Message string
}

func (e *HttpError) Error() string {
	return e.Message
}

func NewHttpError(code int, message string) *HttpError {
	return &HttpError{Code: code, Message: message}
}

var validate = validator.New()

// ValidateRequest runs struct tag validation and folds failures into one
// 400 response message.
func ValidateRequest(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return NewHttpError(fiber.StatusBadRequest, "Invalid request body")
	}

	details := make([]string, len(validationErrors))
	for i, fieldError := range validationErrors {
		details[i] = fmt.Sprintf("field '%s' failed on '%s'", fieldError.Field(), fieldError.Tag())
	}
	return NewHttpError(fiber.StatusBadRequest, strings.Join(details, "; "))
}

// ErrorHandlerMiddleware converts errors escaping the handlers into JSON
// responses with the right status code.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		code := fiber.StatusInternalServerError
		message := "Internal server error"

		var httpError *HttpError
		var fiberError *fiber.Error
		switch {
		case errors.As(err, &httpError):
			code = httpError.Code
			message = httpError.Message
		case errors.As(err, &fiberError):
			code = fiberError.Code
			message = fiberError.Message
		}

		return ctx.Status(code).JSON(ApiResponse{
			Success: false,
			Message: message,
		})
	}
}
