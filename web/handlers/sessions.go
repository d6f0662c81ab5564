package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/lukashondrich/open-workinghours-sub006/model"
	"github.com/lukashondrich/open-workinghours-sub006/utils"
	"github.com/lukashondrich/open-workinghours-sub006/web/common"
)

// ListSessionsHandler returns closed sessions in a date range grouped by
// clock-in date, the shape the day view renders directly.
func ListSessionsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		from, err := utils.ParseISOTime(c.DefaultQuery("from", time.Now().UTC().AddDate(0, 0, -7).Format(utils.DateLayout)))
		if err != nil {
			c.JSON(http.StatusBadRequest, common.NewErrorResponse("invalid from date"))
			return
		}
		to, err := utils.ParseISOTime(c.DefaultQuery("to", time.Now().UTC().Format(utils.DateLayout)))
		if err != nil {
			c.JSON(http.StatusBadRequest, common.NewErrorResponse("invalid to date"))
			return
		}
		_, rangeEnd := utils.DayBounds(*to)

		var sessions []model.Session
		err = db.
			Where("state = ?", model.SessionClosed).
			Where("clock_in >= ? AND clock_in < ?", *from, rangeEnd).
			Order("clock_in").
			Find(&sessions).Error
		if err != nil {
			c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
			return
		}

		grouped := utils.GroupBy(sessions, func(s model.Session) string {
			return s.ClockIn.UTC().Format(utils.DateLayout)
		})

		c.JSON(http.StatusOK, common.NewSuccessResponse(grouped))
	}
}
