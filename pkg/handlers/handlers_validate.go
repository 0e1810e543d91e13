package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arnavshah/coverage-api-go/pkg/models"
	"github.com/arnavshah/coverage-api-go/pkg/validation"
)

// ValidateInput reports every problem of a coverage input without evaluating it
func (h *Handler) ValidateInput(c *gin.Context) {
	var input models.CoverageInput
	if err := bind(c, &input); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			badRequest(c, err)
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{
			"valid": false,
			"error": err.Error(),
		})
		return
	}

	h.RecordUsage(c, len(input.Stations), len(input.Shifts))

	if len(input.Stations) == 0 {
		c.JSON(http.StatusOK, gin.H{
			"valid": false,
			"error": "At least one station is required",
		})
		return
	}

	if err := validation.Coverage(input); err != nil {
		var problems validation.Problems
		if !errors.As(err, &problems) {
			c.JSON(http.StatusOK, gin.H{"valid": false, "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"valid": false, "problems": problems})
		return
	}

	open := 0
	for _, sh := range input.Shifts {
		if !sh.Filled() {
			open++
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"valid": true,
		"stats": gin.H{
			"station_count":    len(input.Stations),
			"shift_count":      len(input.Shifts),
			"open_shift_count": open,
		},
	})
}
