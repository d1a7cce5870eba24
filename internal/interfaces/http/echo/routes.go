package echo

import e "github.com/labstack/echo/v4"

func RegisterRoutes(server *e.Echo, importHandler *ImportHandler, leadHandler *LeadHandler, runHandler *RunHandler) {
	server.POST("/api/v1/imports/leads", importHandler.ImportJSON)
	server.POST("/api/v1/imports/leads/csv", importHandler.ImportCSV)

	server.GET("/api/v1/leads", leadHandler.List)
	server.GET("/api/v1/leads/export.csv", leadHandler.ExportCSV)
	server.GET("/api/v1/leads/:id", leadHandler.GetByID)
	server.POST("/api/v1/leads/:id/block", leadHandler.Block)
	server.POST("/api/v1/leads/:id/unblock", leadHandler.Unblock)

	server.GET("/api/v1/runs", runHandler.ListRecent)
}
