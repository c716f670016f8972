package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"copytrade/internal/repository"
)

// OrderHandler exposes the order journal for operator review.
type OrderHandler struct {
	Repo   repository.Repository
	Logger *zap.Logger
}

func (h *OrderHandler) Register(r *gin.Engine) {
	group := r.Group("/api/orders")
	group.GET("", h.list)
}

func (h *OrderHandler) list(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	limit := intQuery(c, "limit", 50)
	offset := intQuery(c, "offset", 0)
	params := repository.ListOrderRecordsParams{
		Limit:     limit,
		Offset:    offset,
		StockCode: strQueryPtr(c, "stock_code"),
		Status:    strQueryPtr(c, "status"),
	}
	items, err := h.Repo.ListOrderRecords(c.Request.Context(), params)
	if err != nil {
		if h.Logger != nil {
			h.Logger.Warn("list orders failed", zap.Error(err))
		}
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	total, err := h.Repo.CountOrderRecords(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, items, paginationMeta(limit, offset, total))
}
