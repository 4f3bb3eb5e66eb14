package utils

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	apperrors "github.com/abikoy/ddu-rims/pkg/errors"
	"github.com/abikoy/ddu-rims/pkg/types"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const (
	DefaultLimit = 100
	MaxLimit     = 500
)

// Envelope is the JSON shape of every response. Token is only set by
// login/refresh.
type Envelope struct {
	Status  string            `json:"status"`
	Message string            `json:"message,omitempty"`
	Token   string            `json:"token,omitempty"`
	Data    interface{}       `json:"data,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

func SuccessResponse(ctx echo.Context, data interface{}, message string, code int) error {
	return ctx.JSON(code, &Envelope{
		Status:  "success",
		Message: message,
		Data:    data,
	})
}

// SuccessListResponse wraps a listing together with pagination metadata
// when the client asked for it.
func SuccessListResponse(ctx echo.Context, key string, list interface{}, message string, total uint64) error {
	filter := ParseFilterFromQuery(ctx.Request().URL.Query())
	data := map[string]interface{}{key: list}
	if filter.WithPagination {
		totalPages := 0
		if filter.Limit > 0 {
			totalPages = int(total) / filter.Limit
			if int(total)%filter.Limit != 0 {
				totalPages++
			}
		}
		data["pagination"] = types.Pagination{
			TotalCount: total,
			Page:       filter.Page,
			Limit:      filter.Limit,
			TotalPages: totalPages,
		}
	}
	return ctx.JSON(http.StatusOK, &Envelope{
		Status:  "success",
		Message: message,
		Data:    data,
	})
}

// TokenResponse is the login/refresh success shape: token at the top
// level next to the envelope fields.
func TokenResponse(ctx echo.Context, token string, data interface{}, message string) error {
	return ctx.JSON(http.StatusOK, &Envelope{
		Status:  "success",
		Message: message,
		Token:   token,
		Data:    data,
	})
}

// ErrorResponse maps an error to the response envelope: HttpError keeps
// its code and details, validator errors become per-field 400s, known
// sentinels get their mapped status, anything else is a generic 500.
func ErrorResponse(c echo.Context, err error, logger *zap.Logger) error {
	var httpErr *apperrors.HttpError
	if errors.As(err, &httpErr) {
		if httpErr.Err != nil {
			logger.Error("http error",
				zap.Int("code", httpErr.Code),
				zap.String("message", httpErr.Message),
				zap.Error(httpErr.Err),
			)
		}
		return c.JSON(httpErr.Code, &Envelope{
			Status:  "error",
			Message: httpErr.Message,
			Errors:  httpErr.Details,
		})
	}

	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) {
		return c.JSON(echoErr.Code, &Envelope{
			Status:  "error",
			Message: fmt.Sprintf("%v", echoErr.Message),
		})
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		details := make(map[string]string, len(validationErrors))
		for _, fe := range validationErrors {
			details[fieldName(fe)] = validationMessage(fe)
		}
		return c.JSON(http.StatusBadRequest, &Envelope{
			Status:  "error",
			Message: "Validation failed",
			Errors:  details,
		})
	}

	if code := apperrors.CodeFor(err); code != 0 {
		return c.JSON(code, &Envelope{
			Status:  "error",
			Message: err.Error(),
		})
	}

	logger.Error("unexpected error", zap.Error(err))
	return c.JSON(http.StatusInternalServerError, &Envelope{
		Status:  "error",
		Message: "Internal server error",
	})
}

func fieldName(fe validator.FieldError) string {
	// StructNamespace is Type.Nested.Field; drop the type prefix and
	// lower-case the first rune of each segment to match the JSON shape.
	ns := fe.StructNamespace()
	parts := strings.Split(ns, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	for i, p := range parts {
		if p != "" {
			parts[i] = strings.ToLower(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, ".")
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Must be a valid email address"
	case "ddu_email":
		return "Email must be a valid DDU email address (@ddu.edu.et)"
	case "department":
		return "Department must be one of: DDU, IOT"
	case "role":
		return "Role must be one of: admin, assetManager, staff"
	case "resource_type":
		return "Invalid resource type"
	case "resource_status":
		return "Invalid resource status"
	case "transfer_status":
		return "Invalid transfer status"
	case "min":
		return fmt.Sprintf("Must be at least %s characters long", fe.Param())
	case "gt":
		return fmt.Sprintf("Must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("Must be at least %s", fe.Param())
	case "lte":
		return fmt.Sprintf("Must be at most %s", fe.Param())
	default:
		return fmt.Sprintf("Failed validation rule '%s'", fe.Tag())
	}
}

// ParseFilterFromQuery parses the listing query grammar:
// ?search=...&sort[field]=asc&filter[field]=a,b&page=1&limit=50&withPagination=true
func ParseFilterFromQuery(values url.Values) types.Filter {
	filterReq := types.Filter{
		Sort:   make(map[string]string),
		Filter: make(map[string]interface{}),
		Limit:  DefaultLimit,
		Page:   1,
	}

	if limitStr := values.Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			if l > MaxLimit {
				filterReq.Limit = MaxLimit
			} else {
				filterReq.Limit = l
			}
		}
	}

	if pageStr := values.Get("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			filterReq.Page = p
		}
	}

	if offsetStr := values.Get("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			filterReq.Offset = o
		}
	} else {
		filterReq.Offset = (filterReq.Page - 1) * filterReq.Limit
	}

	if values.Get("withPagination") == "true" {
		filterReq.WithPagination = true
	}

	for key, vals := range values {
		if len(vals) == 0 || vals[0] == "" {
			continue
		}

		if key == "search" {
			filterReq.Search = vals[0]
			continue
		}

		if strings.HasPrefix(key, "sort[") && strings.HasSuffix(key, "]") {
			field := key[5 : len(key)-1]
			direction := strings.ToLower(vals[0])
			if direction == "asc" || direction == "desc" {
				filterReq.Sort[field] = direction
			}
			continue
		}

		if strings.HasPrefix(key, "filter[") && strings.HasSuffix(key, "]") {
			field := key[7 : len(key)-1]
			if existing, ok := filterReq.Filter[field]; ok {
				filterReq.Filter[field] = fmt.Sprintf("%v,%s", existing, vals[0])
			} else {
				filterReq.Filter[field] = vals[0]
			}
		}
	}

	return filterReq
}
