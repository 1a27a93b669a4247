package handlers

import (
	"net/http"

	"busbooking/internal/domain/models"
	"busbooking/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

func (a *API) ListSchedules(c *gin.Context) {
	list, err := a.Schedules.List(c.Request.Context(), c.Query("busId"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (a *API) DraftSchedule(c *gin.Context) {
	draft, err := a.Schedules.Draft(c.Request.Context(), c.Query("busId"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, draft)
}

func (a *API) GetSchedule(c *gin.Context) {
	s, err := a.Schedules.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (a *API) CreateSchedule(c *gin.Context) {
	var in models.Schedule
	if !BindJSONOrError(c, &in) {
		return
	}
	s, err := a.Schedules.Create(c.Request.Context(), middleware.CurrentUser(c), in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, s)
}

func (a *API) UpdateSchedule(c *gin.Context) {
	var in models.Schedule
	if !BindJSONOrError(c, &in) {
		return
	}
	s, err := a.Schedules.Update(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"), in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (a *API) DeleteSchedule(c *gin.Context) {
	if err := a.Schedules.Delete(c.Request.Context(), middleware.CurrentUser(c), c.Param("id")); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
