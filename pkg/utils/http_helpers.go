package utils

import (
	"errors"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	apperrors "inventory-system/pkg/errors"
	"inventory-system/pkg/types"
	"inventory-system/pkg/validation"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type HTTPResponse struct {
	Status  bool        `json:"status"`
	Body    interface{} `json:"body,omitempty"`
	Message string      `json:"message"`
}

const (
	DefaultLimit = 200
	MaxLimit     = 500
)

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

	filterReq.WithPagination = values.Get("withPagination") != "false"

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
			filterReq.Filter[field] = strings.Join(vals, ",")
		}
	}

	return filterReq
}

func SuccessResponse(ctx echo.Context, body interface{}, message string, code int, total ...uint64) error {
	response := &HTTPResponse{Status: true, Message: message}
	withPagination, _ := strconv.ParseBool(ctx.QueryParam("withPagination"))
	if withPagination && len(total) > 0 {
		filter := ParseFilterFromQuery(ctx.Request().URL.Query())
		totalPages := 0
		if filter.Limit > 0 {
			totalPages = (int(total[0]) + filter.Limit - 1) / filter.Limit
		}
		pagination := types.Pagination{
			TotalCount: total[0],
			Page:       filter.Page,
			Limit:      filter.Limit,
			TotalPages: totalPages,
		}
		response.Body = map[string]interface{}{"list": body, "pagination": pagination}
	} else {
		response.Body = body
	}
	return ctx.JSON(code, response)
}

// domainErrorToHttp переводит предметную ошибку в HTTP-код. false - ошибка не предметная.
func domainErrorToHttp(err error) (*apperrors.HttpError, bool) {
	var validationErr *apperrors.ValidationError
	var duplicateErr *apperrors.DuplicateLicenseAssignmentError
	var transitionErr *apperrors.InvalidTransitionError

	switch {
	case errors.As(err, &validationErr):
		httpErr := apperrors.NewHttpError(http.StatusBadRequest, validationErr.Error(), nil, nil)
		httpErr.Details = map[string]string{"field": validationErr.Field}
		return httpErr, true
	case errors.As(err, &duplicateErr):
		httpErr := apperrors.NewHttpError(http.StatusConflict, duplicateErr.Error(), nil, nil)
		httpErr.Details = map[string]interface{}{
			"license_type_id":   duplicateErr.LicenseTypeID,
			"license_type_name": duplicateErr.LicenseTypeName,
			"held_unit_id":      duplicateErr.HeldUnitID,
		}
		return httpErr, true
	case errors.As(err, &transitionErr):
		httpErr := apperrors.NewHttpError(http.StatusConflict, transitionErr.Error(), nil, nil)
		httpErr.Details = map[string]string{"action": transitionErr.Action, "state": transitionErr.State}
		return httpErr, true
	case errors.Is(err, apperrors.ErrNotFound):
		return apperrors.NewHttpError(http.StatusNotFound, err.Error(), nil, nil), true
	case errors.Is(err, apperrors.ErrBadRequest):
		return apperrors.NewHttpError(http.StatusBadRequest, err.Error(), nil, nil), true
	case errors.Is(err, apperrors.ErrUserIDNotFoundInContext):
		return apperrors.NewHttpError(http.StatusUnauthorized, err.Error(), nil, nil), true
	}
	return nil, false
}

func ErrorResponse(c echo.Context, err error, logger *zap.Logger) error {
	// Предметная ошибка важнее обертки контроллера: 404/409 не должны превращаться в 500.
	var httpErr *apperrors.HttpError
	if mapped, ok := domainErrorToHttp(err); ok {
		httpErr = mapped
	} else {
		errors.As(err, &httpErr)
	}

	if httpErr != nil {
		if httpErr.Err != nil {
			logger.Error("HTTP Error",
				zap.String("request_id", RequestIDFromCtx(c.Request().Context())),
				zap.Int("code", httpErr.Code),
				zap.String("message", httpErr.Message),
				zap.Error(httpErr.Err),
				zap.Any("context", httpErr.Context),
			)
		}

		response := map[string]interface{}{
			"status":  false,
			"message": httpErr.Message,
		}

		if httpErr.Details != nil {
			response["body"] = httpErr.Details
		}

		return c.JSON(httpErr.Code, response)
	}

	if fields := validation.FieldErrors(err); fields != nil {
		names := make([]string, 0, len(fields))
		for name := range fields {
			names = append(names, name)
		}
		sort.Strings(names)
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"status":  false,
			"message": "Ошибка валидации: " + strings.Join(names, ", "),
			"body":    fields,
		})
	}

	logger.Error("Unexpected Error", zap.String("request_id", RequestIDFromCtx(c.Request().Context())), zap.Error(err))
	return c.JSON(http.StatusInternalServerError, map[string]interface{}{
		"status":  false,
		"message": "Внутренняя ошибка сервера",
	})
}
