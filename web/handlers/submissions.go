package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/lukashondrich/open-workinghours-sub006/queue"
	"github.com/lukashondrich/open-workinghours-sub006/web/common"
)

func ListSubmissionsHandler(q *queue.Queue) gin.HandlerFunc {
	return func(c *gin.Context) {
		recs, err := q.List()
		if err != nil {
			c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
			return
		}
		c.JSON(http.StatusOK, common.NewSuccessResponse(recs))
	}
}

// SendSubmissionHandler delivers a single record immediately, one attempt,
// for the manual "send now" action. Records not in pending are left alone.
func SendSubmissionHandler(q *queue.Queue) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := q.Send(c.Param("id"))
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, common.NewErrorResponse("submission not found"))
		case err != nil:
			c.JSON(http.StatusBadGateway, common.NewErrorResponse(err.Error()))
		default:
			c.JSON(http.StatusOK, common.NewSuccessResponse(gin.H{"sent": true}))
		}
	}
}

func RetrySubmissionHandler(q *queue.Queue) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := q.Retry(c.Param("id"))
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, common.NewErrorResponse("submission not found"))
		case errors.Is(err, queue.ErrInvalidTransition):
			c.JSON(http.StatusConflict, common.NewErrorResponse(err.Error()))
		case err != nil:
			c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
		default:
			c.JSON(http.StatusOK, common.NewSuccessResponse(gin.H{"retried": true}))
		}
	}
}

func DeleteSubmissionHandler(q *queue.Queue) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := q.Delete(c.Param("id"))
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, common.NewErrorResponse("submission not found"))
		case errors.Is(err, queue.ErrInvalidTransition):
			c.JSON(http.StatusConflict, common.NewErrorResponse(err.Error()))
		case err != nil:
			c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
		default:
			c.JSON(http.StatusOK, common.NewSuccessResponse(gin.H{"deleted": true}))
		}
	}
}
