package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	intconfig "busbooking/internal/config"

	"github.com/gin-gonic/gin"
)

func (a *API) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "bus booking service is running"})
}

func (a *API) DBCheck(c *gin.Context) {
	db := a.db()
	if db == nil {
		respondError(c, http.StatusServiceUnavailable, "db_unavailable", "database is not connected", nil)
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	var tickets int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM tickets").Scan(&tickets); err != nil {
		respondError(c, http.StatusServiceUnavailable, "db_query_failed", "database query failed", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "database connection OK", "tickets_in_db": tickets})
}

func (a *API) db() *sql.DB {
	if a.DB != nil {
		return a.DB
	}
	return intconfig.DB
}
