package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lukashondrich/open-workinghours-sub006/aggregate"
	"github.com/lukashondrich/open-workinghours-sub006/privacy"
	"github.com/lukashondrich/open-workinghours-sub006/queue"
	"github.com/lukashondrich/open-workinghours-sub006/utils"
	"github.com/lukashondrich/open-workinghours-sub006/web/common"
)

type manualEntryBody struct {
	Start time.Time `json:"start" binding:"required"`
	End   time.Time `json:"end" binding:"required"`
}

type confirmDayBody struct {
	Manual []manualEntryBody `json:"manual"`
}

// ConfirmDayHandler recomputes the Daily Actual for a date, injects noise and
// enqueues the submission. The un-noised record stays on the device.
func ConfirmDayHandler(engine *aggregate.Engine, noiser *privacy.Noiser, q *queue.Queue, epsilon, sensitivity float64) gin.HandlerFunc {
	return func(c *gin.Context) {
		date, err := time.ParseInLocation(utils.DateLayout, c.Param("date"), time.UTC)
		if err != nil {
			c.JSON(http.StatusBadRequest, common.NewErrorResponse("invalid date, expected yyyy-MM-dd"))
			return
		}

		var body confirmDayBody
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&body); err != nil {
				c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
				return
			}
		}

		manual := make([]aggregate.ManualEntry, 0, len(body.Manual))
		for _, m := range body.Manual {
			manual = append(manual, aggregate.ManualEntry{Start: m.Start, End: m.End})
		}

		record, err := engine.Confirm(date, manual)
		if err != nil {
			c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
			return
		}

		noisedPlanned, err := noiser.NoisedMinutes(record.PlannedMinutes, epsilon, sensitivity)
		if err != nil {
			c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error()))
			return
		}
		noisedActual, err := noiser.NoisedMinutes(record.ActualMinutes, epsilon, sensitivity)
		if err != nil {
			c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error()))
			return
		}

		submission, err := q.Enqueue(record.Date, record.Date, noisedPlanned, noisedActual)
		if err != nil {
			c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
			return
		}

		c.JSON(http.StatusCreated, common.NewSuccessResponse(gin.H{
			"day":        record,
			"submission": submission,
		}))
	}
}
