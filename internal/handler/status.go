package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"copytrade/internal/config"
	"copytrade/internal/service"
)

// StatusHandler reports the trader's configuration and whether the market
// session is currently open.
type StatusHandler struct {
	Trading config.TradingConfig
	Started time.Time
}

func (h *StatusHandler) Register(r *gin.Engine) {
	r.GET("/api/status", h.status)
}

func (h *StatusHandler) status(c *gin.Context) {
	now := time.Now()
	if loc, err := time.LoadLocation(h.Trading.Timezone); err == nil {
		now = now.In(loc)
	}
	Ok(c, gin.H{
		"market":      h.Trading.Market,
		"environment": h.Trading.Environment,
		"in_session":  service.InSession(h.Trading.Market, now),
		"local_time":  now.Format(time.RFC3339),
		"uptime":      time.Since(h.Started).Round(time.Second).String(),
	}, nil)
}
