package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"rentdesk/internal/infra/rates"
)

type RateStore interface {
	Get() (rates.Quote, bool)
	Set(rate decimal.Decimal, source string) (rates.Quote, error)
}

type RatesHandler struct {
	Store RateStore
}

func (h RatesHandler) Get(c *gin.Context) {
	q, ok := h.Store.Get()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no exchange rate available"})
		return
	}
	c.JSON(http.StatusOK, q)
}

type putRateRequest struct {
	Rate   decimal.Decimal `json:"rate"`
	Source string          `json:"source"`
}

func (h RatesHandler) Put(c *gin.Context) {
	var req putRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.Source == "" {
		req.Source = "manual"
	}
	q, err := h.Store.Set(req.Rate, req.Source)
	if err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, q)
}

var _ RatesHTTP = RatesHandler{}
