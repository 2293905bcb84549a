package util

import (
	"strconv"

	"github.com/SeakMengs/OpenSight/internal/constant"
	"github.com/gin-gonic/gin"
)

func CalculateTotalPage(totalItems int64, pageSize uint) int {
	if pageSize <= 0 {
		pageSize = constant.DefaultPageSize
	}
	if totalItems == 0 {
		return 1
	}
	totalPage := int(totalItems / int64(pageSize))
	if totalItems%int64(pageSize) != 0 {
		totalPage++
	}
	return totalPage
}

// ParsePagination reads page and pageSize from the query string, falling back to defaults
// for missing or invalid values. pageSize is capped at constant.MaxPageSize.
func ParsePagination(ctx *gin.Context) (uint, uint) {
	page := parseUintQuery(ctx, "page", constant.DefaultPage)
	pageSize := parseUintQuery(ctx, "pageSize", constant.DefaultPageSize)

	if page == 0 {
		page = constant.DefaultPage
	}
	if pageSize == 0 {
		pageSize = constant.DefaultPageSize
	}

	return page, min(pageSize, constant.MaxPageSize)
}

func parseUintQuery(ctx *gin.Context, key string, fallback uint) uint {
	raw := ctx.Query(key)
	if raw == "" {
		return fallback
	}

	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return fallback
	}

	return uint(v)
}
