// internal/utils/pagination.go
package utils

import (
	"math"
	"strconv"

	"github.com/gin-gonic/gin"
)

// PageResult is one page of a list endpoint. TotalCount ignores pagination.
type PageResult struct {
	Data       interface{}
	Count      int
	TotalCount int64
	ResPerPage int
}

// PageFromQuery reads a 1-based page number; anything unusable becomes 1.
func PageFromQuery(c *gin.Context) int {
	return NormalizePage(c.Query("page"))
}

func NormalizePage(raw string) int {
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// Offset never goes negative. Pages past the largest representable offset
// are clamped to it, so they come back empty rather than wrapping around.
func Offset(page, perPage int) int {
	if page < 1 || perPage < 1 {
		return 0
	}
	if last := (math.MaxInt - perPage) / perPage; page-1 > last {
		page = last + 1
	}
	return perPage * (page - 1)
}

func SetPaginationHeaders(c *gin.Context, result PageResult) {
	c.Header("X-Total-Count", strconv.FormatInt(result.TotalCount, 10))
	c.Header("X-Per-Page", strconv.Itoa(result.ResPerPage))
}

func PaginatedResponse(c *gin.Context, result PageResult) {
	SetPaginationHeaders(c, result)
	c.JSON(200, gin.H{
		"success":    true,
		"totalCount": result.TotalCount,
		"count":      result.Count,
		"resPerPage": result.ResPerPage,
		"data":       result.Data,
	})
}
