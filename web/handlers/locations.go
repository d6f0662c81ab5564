package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lukashondrich/open-workinghours-sub006/model"
	"github.com/lukashondrich/open-workinghours-sub006/web/common"
)

func ListLocationsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var locations []model.Location
		if err := db.Order("name").Find(&locations).Error; err != nil {
			c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
			return
		}
		c.JSON(http.StatusOK, common.NewSuccessResponse(locations))
	}
}

type locationBody struct {
	Name      string  `json:"name" binding:"required"`
	Latitude  float64 `json:"latitude" binding:"required,min=-90,max=90"`
	Longitude float64 `json:"longitude" binding:"required,min=-180,max=180"`
	RadiusM   float64 `json:"radiusM" binding:"required,min=10"`
}

func CreateLocationHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body locationBody
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
			return
		}

		loc := model.Location{
			ID:        uuid.NewString(),
			Name:      body.Name,
			Latitude:  body.Latitude,
			Longitude: body.Longitude,
			RadiusM:   body.RadiusM,
			Active:    true,
		}
		if err := db.Create(&loc).Error; err != nil {
			c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
			return
		}

		c.JSON(http.StatusCreated, common.NewSuccessResponse(loc))
	}
}
