package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/lukashondrich/open-workinghours-sub006/model"
	"github.com/lukashondrich/open-workinghours-sub006/tracker"
	"github.com/lukashondrich/open-workinghours-sub006/web/common"
)

type LocationState struct {
	Location model.Location `json:"location"`
	State    string         `json:"state"`
}

// TrackerStateHandler reports the tracker state per active location.
func TrackerStateHandler(db *gorm.DB, tr *tracker.Tracker) gin.HandlerFunc {
	return func(c *gin.Context) {
		var locations []model.Location
		if err := db.Where("active = ?", true).Order("name").Find(&locations).Error; err != nil {
			c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
			return
		}

		states := make([]LocationState, 0, len(locations))
		for _, loc := range locations {
			state, err := tr.State(loc.ID)
			if err != nil {
				c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
				return
			}
			states = append(states, LocationState{Location: loc, State: state})
		}

		c.JSON(http.StatusOK, common.NewSuccessResponse(states))
	}
}

type regionEventBody struct {
	LocationID string     `json:"locationId" binding:"required"`
	Kind       string     `json:"kind" binding:"required,oneof=enter exit"`
	Timestamp  *time.Time `json:"timestamp"`
}

// RegionEventHandler feeds presence-source events into the tracker's event
// channel, keeping per-location ordering behind a single consumer.
func RegionEventHandler(events chan<- tracker.RegionEvent) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body regionEventBody
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
			return
		}

		ev := tracker.RegionEvent{
			LocationID: body.LocationID,
			Kind:       tracker.EventKind(body.Kind),
		}
		if body.Timestamp != nil {
			ev.Timestamp = *body.Timestamp
		}
		events <- ev

		c.JSON(http.StatusAccepted, common.NewSuccessResponse(gin.H{"queued": true}))
	}
}

type clockBody struct {
	LocationID string     `json:"locationId" binding:"required"`
	At         *time.Time `json:"at"`
}

func ClockInHandler(tr *tracker.Tracker) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body clockBody
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
			return
		}

		var at time.Time
		if body.At != nil {
			at = *body.At
		}
		session, err := tr.StartManual(body.LocationID, at)
		if err != nil {
			c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
			return
		}

		c.JSON(http.StatusOK, common.NewSuccessResponse(session))
	}
}

func ClockOutHandler(tr *tracker.Tracker) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body clockBody
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
			return
		}

		var at time.Time
		if body.At != nil {
			at = *body.At
		}
		outcome, err := tr.StopManual(body.LocationID, at)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, common.NewErrorResponse("no open session for location"))
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
			return
		}

		// A discarded session is a notice, not an error; the UI shows it
		// distinctly from a recorded work period.
		c.JSON(http.StatusOK, common.NewSuccessResponse(gin.H{
			"session":   outcome.Session,
			"discarded": outcome.Discarded,
		}))
	}
}
