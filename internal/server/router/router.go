package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/apigest/internal/repository"
	"github.com/mamadbah2/apigest/internal/server/handlers"
	"github.com/mamadbah2/apigest/internal/service/traceability"
)

type crud interface {
	List(*gin.Context)
	Get(*gin.Context)
	Create(*gin.Context)
	Update(*gin.Context)
	Delete(*gin.Context)
}

// New wires the Gin engine with required routes and middlewares.
func New(handler *handlers.Handler, store repository.Store, packaging *traceability.PackagingService, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	r.GET("/dashboard", handler.Dashboard)
	r.GET("/stock", handler.Stock)
	r.GET("/stock/export.csv", handler.StockCSV)

	r.GET("/products", handler.Catalog)
	r.PUT("/products/:id", handler.UpdateProduct)

	r.POST("/packaging", handler.RegisterPackaging)
	r.POST("/packaging/cost-estimate", handler.EstimateCost)
	r.GET("/packaging/:id/cost", handler.LotCost)

	r.POST("/checkout", handler.Checkout)
	r.GET("/sales/book", handler.SalesBook)
	r.GET("/sales/export.csv", handler.SalesCSV)
	r.GET("/expenses/book", handler.ExpenseBook)
	r.GET("/expenses/export.csv", handler.ExpensesCSV)
	r.GET("/clients/totals", handler.ClientTotals)

	settings := r.Group("/settings")
	settings.GET("/costs", handler.GetCostConfig)
	settings.PUT("/costs", handler.PutCostConfig)
	settings.GET("/profile", handler.GetProfile)
	settings.PUT("/profile", handler.PutProfile)
	settings.GET("/honey-types", handler.GetHoneyTypes)
	settings.PUT("/honey-types", handler.PutHoneyTypes)
	settings.GET("/food-types", handler.GetFoodTypes)
	settings.PUT("/food-types", handler.PutFoodTypes)

	r.GET("/backup", handler.ExportBackup)
	r.POST("/backup", handler.ImportBackup)

	records := r.Group("/records")
	recordLogger := logger.Named("records")
	mount(records.Group("/apiaries"), handlers.NewRecordHandler(store.Apiaries(), nil, recordLogger))
	mount(records.Group("/hives"), handlers.NewRecordHandler(store.Hives(), nil, recordLogger))
	mount(records.Group("/movements"), handlers.NewRecordHandler(store.Movements(), nil, recordLogger))
	mount(records.Group("/interventions"), handlers.NewRecordHandler(store.Interventions(), nil, recordLogger))
	mount(records.Group("/feedings"), handlers.NewRecordHandler(store.Feedings(), nil, recordLogger))
	mount(records.Group("/harvests"), handlers.NewRecordHandler(store.Harvests(), packaging.RecordHarvest, recordLogger))
	mount(records.Group("/packaging"), handlers.NewRecordHandler(store.Packaging(), nil, recordLogger))
	mount(records.Group("/sales"), handlers.NewRecordHandler(store.Sales(), nil, recordLogger))
	mount(records.Group("/products"), handlers.NewRecordHandler(store.Products(), nil, recordLogger))
	mount(records.Group("/expenses"), handlers.NewRecordHandler(store.Expenses(), nil, recordLogger))
	mount(records.Group("/clients"), handlers.NewRecordHandler(store.Clients(), nil, recordLogger))

	logger.Info("router initialized")

	return r
}

func mount(g *gin.RouterGroup, h crud) {
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
