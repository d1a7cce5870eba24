package bootstrap

import (
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"

	app "github.com/gattaran/lead-intake/internal/application/lead"
	"github.com/gattaran/lead-intake/internal/infrastructure/repository"
	httpecho "github.com/gattaran/lead-intake/internal/interfaces/http/echo"
)

// NewHTTPServer wires the repositories, use cases and handlers into a
// ready-to-run echo server.
func NewHTTPServer(pool *pgxpool.Pool, db *gorm.DB, loc *time.Location, log *zap.SugaredLogger) *echo.Echo {
	server := echo.New()
	server.HideBanner = true

	server.Use(middleware.Recover())
	server.Use(middleware.RequestID())
	server.Use(middleware.BodyLimit("10M"))

	leadRepo := repository.NewLeadRepository(pool)
	runRepo := repository.NewIngestionRunRepository(db)

	engine := app.NewUpsertEngine(leadRepo, loc, log)
	ingest := app.NewIngestRows(engine, runRepo, log)
	getLead := app.NewGetLeadByID(leadRepo)
	listLeads := app.NewListLeads(leadRepo)
	toggle := app.NewTogglePhoneBlock(leadRepo)
	listRuns := app.NewListRuns(runRepo)

	importHandler := httpecho.NewImportHandler(ingest)
	leadHandler := httpecho.NewLeadHandler(getLead, listLeads, toggle)
	runHandler := httpecho.NewRunHandler(listRuns)

	httpecho.RegisterRoutes(server, importHandler, leadHandler, runHandler)

	server.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	return server
}
