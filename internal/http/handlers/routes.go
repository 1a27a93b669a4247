package handlers

import (
	"net/http"

	"busbooking/internal/domain"
	"busbooking/internal/domain/models"
	"busbooking/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

func (a *API) GetRoute(c *gin.Context) {
	route, err := a.Routes.GetRoute(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, route)
}

type insertStopRequest struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Lat   float64 `json:"lat"`
	Lng   float64 `json:"lng"`
	Order int     `json:"order"`
}

func (a *API) InsertStop(c *gin.Context) {
	var req insertStopRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	stop := models.Stop{ID: req.ID, Name: req.Name, Lat: req.Lat, Lng: req.Lng}
	route, err := a.Routes.InsertStop(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"), stop, req.Order)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, route)
}

func (a *API) RemoveStop(c *gin.Context) {
	route, err := a.Routes.RemoveStop(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"), c.Param("stopId"))
	if err != nil {
		// the stop is addressed by path here
		if domain.IsStopNotFound(err) {
			respondError(c, http.StatusNotFound, "stop_not_found", err.Error(), nil)
			return
		}
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, route)
}

func (a *API) GetBus(c *gin.Context) {
	bus, err := a.Routes.GetBus(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, bus)
}
