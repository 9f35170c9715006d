package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/projectdesk/projectdesk/internal/services"
)

// respondError writes the JSON body for a service error.
func respondError(ctx *gin.Context, err error) {
	if validationErr, ok := services.IsValidation(err); ok {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "fields": validationErr.Fields})
		return
	}

	if integrityErr, ok := services.IsIntegrity(err); ok {
		ctx.JSON(http.StatusConflict, gin.H{"error": integrityErr.Message, "msg": integrityErr.Message})
		return
	}

	switch {
	case errors.Is(err, services.ErrPermission):
		ctx.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": capitalize(err.Error())})
	default:
		log.Printf("Unexpected error on %s %s: %v", ctx.Request.Method, ctx.FullPath(), err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func capitalize(message string) string {
	if message == "" || message[0] < 'a' || message[0] > 'z' {
		return message
	}
	return string(message[0]-'a'+'A') + message[1:]
}
