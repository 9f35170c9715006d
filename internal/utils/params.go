package utils

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
)

// GetID parses a numeric path parameter.
func GetID(ctx *gin.Context, param string) (uint, error) {
	value := ctx.Param(param)

	if value == "" {
		return 0, errors.New("ID not found")
	}

	id, err := strconv.ParseUint(value, 10, 32)

	if err != nil || id == 0 {
		return 0, errors.New("Invalid ID")
	}

	return uint(id), nil
}

// ParseIDs converts form values such as collaborator checkboxes, skipping blanks.
func ParseIDs(values []string) ([]uint, error) {
	ids := make([]uint, 0, len(values))

	for _, value := range values {
		if value == "" {
			continue
		}

		id, err := strconv.ParseUint(value, 10, 32)
		if err != nil {
			return nil, errors.New("Invalid ID")
		}

		ids = append(ids, uint(id))
	}

	return ids, nil
}

// ParseOptionalID turns "" into nil.
func ParseOptionalID(value string) (*uint, error) {
	if value == "" {
		return nil, nil
	}

	id, err := strconv.ParseUint(value, 10, 32)
	if err != nil {
		return nil, errors.New("Invalid ID")
	}

	result := uint(id)
	return &result, nil
}
