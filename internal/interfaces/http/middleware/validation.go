package middleware

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/globoesim/gateway/internal/interfaces/http/dto"
)

// SetupValidator makes binding errors report JSON (or form) field names
func SetupValidator() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
			}
			return name
		})
	}
}

// FormatValidationErrors lists one detail per failed field rule
func FormatValidationErrors(err error, requestID string) dto.Response {
	var fieldErrs validator.ValidationErrors
	errors.As(err, &fieldErrs)

	details := make([]dto.ValidationDetail, 0, len(fieldErrs))
	for _, e := range fieldErrs {
		details = append(details, dto.ValidationDetail{Field: e.Field(), Message: getValidationMessage(e)})
	}

	return dto.NewValidationErrorResponse("Request validation failed", requestID, details)
}

// HandleBindError answers a failed ShouldBind call with 400. Field rule
// violations carry details; unparsable bodies get ERR_INVALID_JSON.
func HandleBindError(c *gin.Context, err error) {
	requestID := GetRequestID(c)

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.AbortWithStatusJSON(http.StatusBadRequest, FormatValidationErrors(err, requestID))
		return
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) ||
		errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponseWithRequestID(
			dto.ErrCodeInvalidJSON, "Request body must be a valid JSON object", requestID))
		return
	}

	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, dto.NewErrorResponseWithRequestID(
			dto.ErrCodeRequestTooLarge, "Request body exceeds maximum allowed size", requestID))
		return
	}

	c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponseWithRequestID(
		dto.ErrCodeBadRequest, "Malformed request", requestID))
}

// fieldMessages renders one message per validator tag; param is the tag
// argument and text reports a string-typed field.
var fieldMessages = map[string]func(param string, text bool) string{
	"required": func(string, bool) string { return "This field is required" },
	"email":    func(string, bool) string { return "Invalid email format" },
	"alpha":    func(string, bool) string { return "Must contain only letters" },
	"len":      func(p string, _ bool) string { return "Must be exactly " + p + " characters" },
	"oneof":    func(p string, _ bool) string { return "Must be one of: " + p },
	"min":      func(p string, text bool) string { return bound("at least", p, text) },
	"max":      func(p string, text bool) string { return bound("at most", p, text) },
}

func bound(rel, param string, text bool) string {
	if text {
		return "Must be " + rel + " " + param + " characters"
	}
	return "Must be " + rel + " " + param
}

func getValidationMessage(e validator.FieldError) string {
	if render, ok := fieldMessages[e.Tag()]; ok {
		return render(e.Param(), e.Type().Kind() == reflect.String)
	}
	return "Invalid value"
}
