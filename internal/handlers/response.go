package handlers

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/limistah/bank-reconciliation/internal/apperrors"
	"github.com/limistah/bank-reconciliation/internal/auth"
	"github.com/limistah/bank-reconciliation/internal/dto"
	"github.com/limistah/bank-reconciliation/internal/middleware"
	"github.com/limistah/bank-reconciliation/internal/usecases"
	"github.com/limistah/bank-reconciliation/internal/utils"
)

var errNotAuthenticated = errors.New("user not authenticated")

// respondError writes err with the status its kind maps to
func respondError(c *gin.Context, message string, err error) {
	resp := dto.ErrorResponse{Success: false, Message: message, Error: err.Error()}
	status := http.StatusInternalServerError

	var validation *apperrors.ValidationError
	var conflict *apperrors.ConflictError
	switch {
	case errors.As(err, &validation):
		status = http.StatusBadRequest
		resp.Code = "VALIDATION"
		resp.Details = validation.Details
	case errors.As(err, &conflict):
		status = http.StatusConflict
		resp.Code = string(conflict.Kind)
	case errors.Is(err, apperrors.ErrNotFound):
		status = http.StatusNotFound
		resp.Code = "NOT_FOUND"
	case errors.Is(err, apperrors.ErrForbidden):
		status = http.StatusForbidden
		resp.Code = "FORBIDDEN"
	case errors.Is(err, apperrors.ErrConfigurationMissing):
		status = http.StatusBadRequest
		resp.Code = "CONFIGURATION_MISSING"
	case errors.Is(err, errNotAuthenticated):
		status = http.StatusUnauthorized
	default:
		log.Printf("[http] %s %s: %v", c.Request.Method, c.FullPath(), err)
	}

	c.JSON(status, resp)
}

func respondBadRequest(c *gin.Context, message string, err error) {
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{
		Success: false,
		Message: message,
		Error:   err.Error(),
		Code:    "VALIDATION",
	})
}

func respondOK(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func currentActor(c *gin.Context) (*auth.Actor, error) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return nil, errNotAuthenticated
	}
	return actor, nil
}

// pathID parses a positive numeric path parameter
func pathID(c *gin.Context, name string) (uint, error) {
	value, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || value == 0 {
		return 0, fmt.Errorf("invalid %s %q", name, c.Param(name))
	}
	return uint(value), nil
}

// queryID parses an optional numeric query parameter; absent gives 0
func queryID(c *gin.Context, name string) (uint, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return uint(value), nil
}

func formID(c *gin.Context, name string) (uint, error) {
	value, err := strconv.ParseUint(c.PostForm(name), 10, 64)
	if err != nil || value == 0 {
		return 0, fmt.Errorf("%s is required", name)
	}
	return uint(value), nil
}

func pageParams(c *gin.Context) (int, int) {
	page := 1
	pageSize := utils.DefaultPageSize
	if p := c.Query("page"); p != "" {
		if parsed, err := strconv.Atoi(p); err == nil && parsed > 0 {
			page = parsed
		}
	}
	if ps := c.Query("page_size"); ps != "" {
		if parsed, err := strconv.Atoi(ps); err == nil && parsed > 0 && parsed <= utils.MaxPageSize {
			pageSize = parsed
		}
	}
	return page, pageSize
}

func listResponse(items interface{}, count, page, pageSize int) dto.ListResponse {
	return dto.ListResponse{
		Items:      items,
		Pagination: dto.PaginationMeta{Page: page, PageSize: pageSize, Count: count},
	}
}

// readUpload reads the multipart "file" field, refusing files above maxBytes
func readUpload(c *gin.Context, maxBytes int64) (string, []byte, error) {
	header, err := c.FormFile("file")
	if err != nil {
		return "", nil, errors.New("a statement file is required in the 'file' field")
	}
	if maxBytes > 0 && header.Size > maxBytes {
		return "", nil, fmt.Errorf("file is %d bytes, the limit is %d", header.Size, maxBytes)
	}

	f, err := header.Open()
	if err != nil {
		return "", nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return "", nil, err
	}
	return header.Filename, data, nil
}

// dateRange builds an optional period; nil when neither bound is given
func dateRange(from, to string) (*usecases.DateRange, error) {
	if from == "" && to == "" {
		return nil, nil
	}
	f, err := dto.ParseDate(from)
	if err != nil {
		return nil, fmt.Errorf("invalid from date %q, expected %s", from, dto.DateLayout)
	}
	t, err := dto.ParseDate(to)
	if err != nil {
		return nil, fmt.Errorf("invalid to date %q, expected %s", to, dto.DateLayout)
	}
	if !f.IsZero() && !t.IsZero() && t.Before(f) {
		return nil, errors.New("to date must not be before from date")
	}
	return &usecases.DateRange{From: f, To: t}, nil
}

func errInvalidStatus(status string) error {
	return fmt.Errorf("unknown status %q", status)
}
