package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"rentdesk/internal/app/commands"
	"rentdesk/internal/app/dto"
	"rentdesk/internal/app/handlers/pricingapp"
	"rentdesk/internal/app/queries"
)

type PricingHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

type periodRequest struct {
	From Date `json:"from"`
	To   Date `json:"to"`
}

func (p periodRequest) period() dto.Period {
	return dto.Period{From: p.From.Time, To: p.To.Time}
}

type saveConfigRequest struct {
	Base          decimal.Decimal `json:"base"`
	SeasonalRates []struct {
		periodRequest
		Rate decimal.Decimal `json:"rate"`
	} `json:"seasonal_rates"`
	MinStayRules []struct {
		periodRequest
		MinNights int `json:"min_nights"`
	} `json:"min_stay_rules"`
	DefaultMinNights int                `json:"default_min_nights"`
	DiscountTiers    []dto.DiscountTier `json:"discount_tiers"`
}

func (h PricingHandler) SaveConfig(c *gin.Context) {
	var req saveConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	cmd := pricingapp.SaveConfigCommand{
		PropertyID:       c.Param("id"),
		Base:             req.Base,
		DefaultMinNights: req.DefaultMinNights,
		DiscountTiers:    req.DiscountTiers,
	}
	for _, s := range req.SeasonalRates {
		cmd.SeasonalRates = append(cmd.SeasonalRates, dto.SeasonalRate{Period: s.period(), Rate: s.Rate})
	}
	for _, m := range req.MinStayRules {
		cmd.MinStayRules = append(cmd.MinStayRules, dto.MinStayRule{Period: m.period(), MinNights: m.MinNights})
	}
	result, err := commands.Dispatch[pricingapp.SaveConfigCommand, *dto.PriceConfig](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Quote answers 422 with the quote attached when the stay is shorter than
// the minimum. A property without pricing rules gets missing_config=true.
func (h PricingHandler) Quote(c *gin.Context) {
	checkIn, err := queryDate(c, "check_in")
	if err != nil {
		badRequest(c, err)
		return
	}
	checkOut, err := queryDate(c, "check_out")
	if err != nil {
		badRequest(c, err)
		return
	}
	q := pricingapp.QuoteQuery{PropertyID: c.Param("id"), CheckIn: checkIn, CheckOut: checkOut}
	result, err := queries.Ask[pricingapp.QuoteQuery, *dto.Quote](c.Request.Context(), h.Queries, q)
	if err != nil {
		writeError(c, err)
		return
	}
	if result.MinNightsError != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": result.MinNightsError.Message, "quote": result})
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ PricingHTTP = PricingHandler{}
