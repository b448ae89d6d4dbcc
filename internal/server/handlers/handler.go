// Package handlers adapts the record services to HTTP.
package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/apigest/internal/domain/models"
	"github.com/mamadbah2/apigest/internal/export/csvexport"
	"github.com/mamadbah2/apigest/internal/repository"
	"github.com/mamadbah2/apigest/internal/service/backup"
	"github.com/mamadbah2/apigest/internal/service/reporting"
	"github.com/mamadbah2/apigest/internal/service/sales"
	"github.com/mamadbah2/apigest/internal/service/traceability"
)

// Services groups what the handler delegates to.
type Services struct {
	Store     repository.Store
	Packaging *traceability.PackagingService
	Sales     *sales.Service
	Reporting *reporting.Service
	Backup    *backup.Service
}

// Handler serves the dashboard, catalog, checkout, books, settings and backup endpoints.
type Handler struct {
	svc    Services
	logger *zap.Logger
	now    func() time.Time
}

// New constructs the HTTP handler adapter.
func New(svc Services, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, logger: logger, now: time.Now}
}

// Dashboard returns stock and financials for ?year=, defaulting to the current year.
func (h *Handler) Dashboard(c *gin.Context) {
	year := 0
	if raw := c.Query("year"); raw != "" {
		y, err := strconv.Atoi(raw)
		if err != nil || y <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "year must be a positive integer"})
			return
		}
		year = y
	}

	d, err := h.svc.Reporting.Dashboard(c.Request.Context(), year)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// Stock returns the valued inventory.
func (h *Handler) Stock(c *gin.Context) {
	report, err := h.svc.Reporting.Stock(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// StockCSV downloads the valued inventory.
func (h *Handler) StockCSV(c *gin.Context) {
	report, err := h.svc.Reporting.Stock(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	h.writeCSV(c, "stock", func() error { return csvexport.WriteStock(c.Writer, report) })
}

// Catalog lists products with their remaining stock and lot cost.
func (h *Handler) Catalog(c *gin.Context) {
	entries, err := h.svc.Reporting.Catalog(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

type productUpdate struct {
	models.Product
	LotQuantity *float64 `json:"lotQuantity,omitempty"`
}

// UpdateProduct edits a product and optionally corrects its active lot quantity.
func (h *Handler) UpdateProduct(c *gin.Context) {
	var req productUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, h.logger, err)
		return
	}

	product := req.Product.WithID(c.Param("id"))
	if err := h.svc.Packaging.UpdateProduct(c.Request.Context(), product, req.LotQuantity); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// RegisterPackaging stores a lot and updates the catalog.
func (h *Handler) RegisterPackaging(c *gin.Context) {
	var req traceability.PackagingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, h.logger, err)
		return
	}

	res, err := h.svc.Packaging.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// EstimateCost prices a lot before it is registered.
func (h *Handler) EstimateCost(c *gin.Context) {
	var input traceability.LotInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, h.logger, err)
		return
	}

	cost, err := h.svc.Packaging.EstimateCost(c.Request.Context(), input)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, cost)
}

// LotCost prices a stored lot with the current unit costs.
func (h *Handler) LotCost(c *gin.Context) {
	cost, lot, err := h.svc.Packaging.LotCost(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"lot": lot, "cost": cost})
}

// Checkout records a basket.
func (h *Handler) Checkout(c *gin.Context) {
	var req sales.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, h.logger, err)
		return
	}

	res, err := h.svc.Sales.Checkout(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// SalesBook returns grouped transactions, ordered by ?sort= and ?order=asc|desc.
func (h *Handler) SalesBook(c *gin.Context) {
	groups, ok := h.salesBook(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, groups)
}

// SalesCSV downloads the sales book, one row per sale line.
func (h *Handler) SalesCSV(c *gin.Context) {
	groups, ok := h.salesBook(c)
	if !ok {
		return
	}
	h.writeCSV(c, "ventes", func() error { return csvexport.WriteSales(c.Writer, groups) })
}

func (h *Handler) salesBook(c *gin.Context) ([]models.SaleGroup, bool) {
	key := reporting.SortKey(c.DefaultQuery("sort", string(reporting.SortByDate)))
	ascending := strings.EqualFold(c.Query("order"), "asc")

	groups, err := h.svc.Reporting.SalesBook(c.Request.Context(), key, ascending)
	if err != nil {
		respondError(c, h.logger, err)
		return nil, false
	}
	return groups, true
}

// ExpenseBook returns expenses grouped into receipts.
func (h *Handler) ExpenseBook(c *gin.Context) {
	groups, err := h.svc.Reporting.ExpenseBook(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, groups)
}

// ExpensesCSV downloads the expense book.
func (h *Handler) ExpensesCSV(c *gin.Context) {
	groups, err := h.svc.Reporting.ExpenseBook(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	h.writeCSV(c, "depenses", func() error { return csvexport.WriteExpenses(c.Writer, groups) })
}

// ClientTotals ranks clients by spend.
func (h *Handler) ClientTotals(c *gin.Context) {
	totals, err := h.svc.Reporting.ClientRanking(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, totals)
}

func (h *Handler) writeCSV(c *gin.Context, name string, write func() error) {
	filename := fmt.Sprintf("%s-%s.csv", name, h.now().Format(models.DateLayout))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Status(http.StatusOK)

	if err := write(); err != nil {
		// Headers are gone already; the truncated body is all the client gets.
		h.logger.Error("csv export failed", zap.String("export", name), zap.Error(err))
	}
}
