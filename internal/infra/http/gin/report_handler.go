package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	"rentdesk/internal/app/commands"
	"rentdesk/internal/app/dto"
	"rentdesk/internal/app/handlers/reports"
	"rentdesk/internal/app/queries"
)

type ReportHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

func (h ReportHandler) Report(c *gin.Context) {
	rate, err := queryRate(c, "rate")
	if err != nil {
		badRequest(c, err)
		return
	}
	q := reports.PropertyReportQuery{PropertyID: c.Param("id"), Rate: rate}
	result, err := queries.Ask[reports.PropertyReportQuery, *dto.PropertyReport](c.Request.Context(), h.Queries, q)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h ReportHandler) Export(c *gin.Context) {
	rate, err := queryRate(c, "rate")
	if err != nil {
		badRequest(c, err)
		return
	}
	cmd := reports.ExportReportCommand{PropertyID: c.Param("id"), Rate: rate}
	result, err := commands.Dispatch[reports.ExportReportCommand, *dto.ReportExport](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

var _ ReportHTTP = ReportHandler{}
