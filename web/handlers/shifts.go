package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/lukashondrich/open-workinghours-sub006/aggregate"
	"github.com/lukashondrich/open-workinghours-sub006/model"
	"github.com/lukashondrich/open-workinghours-sub006/utils"
	"github.com/lukashondrich/open-workinghours-sub006/web/common"
)

type shiftBody struct {
	Date   common.DateOnly `json:"date" binding:"required"`
	Start  string          `json:"start" binding:"required"`
	Finish string          `json:"finish" binding:"required"`
}

// CreateShiftHandler records one planned work period. A finish earlier than
// the start runs overnight into the next day.
func CreateShiftHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body shiftBody
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
			return
		}

		shift, err := aggregate.NewShiftInstance(body.Date.Time, body.Start, body.Finish)
		if err != nil {
			c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error()))
			return
		}

		if err := db.Create(&shift).Error; err != nil {
			c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
			return
		}

		c.JSON(http.StatusCreated, common.NewSuccessResponse(shift))
	}
}

// ListShiftsHandler returns the shift instances for one date.
func ListShiftsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		date, err := time.ParseInLocation(utils.DateLayout, c.Query("date"), time.UTC)
		if err != nil {
			c.JSON(http.StatusBadRequest, common.NewErrorResponse("invalid date, expected yyyy-MM-dd"))
			return
		}

		var shifts []model.ShiftInstance
		if err := db.Where("date = ?", date).Order("start").Find(&shifts).Error; err != nil {
			c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
			return
		}

		c.JSON(http.StatusOK, common.NewSuccessResponse(shifts))
	}
}
