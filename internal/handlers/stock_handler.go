package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "stockroom/internal/errors"
	"stockroom/internal/pagination"
	"stockroom/internal/services"
)

// StockHandler handles inventory requests.
type StockHandler struct {
	stockService services.StockServicer
	auditService services.AuditServicer
}

// NewStockHandler creates a new StockHandler.
func NewStockHandler(stockService services.StockServicer, auditService services.AuditServicer) *StockHandler {
	return &StockHandler{stockService: stockService, auditService: auditService}
}

// CreateStockRequest represents the request payload for adding an item.
type CreateStockRequest struct {
	Name         string `json:"name" binding:"required,notblank,max=255"`
	Quantity     int    `json:"quantity" binding:"gte=0,lte=2147483647"`
	PricePerUnit int64  `json:"price_per_unit" binding:"gte=0,lte=1000000000000"`
}

// ListStocks handles listing inventory
// @Summary     List stock
// @Description Get a paginated list of stock items, optionally filtered by name
// @Tags        stocks
// @Produce     json
// @Param       name      query string false "Case-insensitive name fragment"
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 50, max 200)"
// @Success     200 {object} pagination.PageResponse[models.Stock] "Paginated stock"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /stocks [get]
func (h *StockHandler) ListStocks(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.stockService.ListStocks(c.Request.Context(), page, c.Query("name"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetStock handles retrieving one stock item
// @Summary     Get a stock item
// @Tags        stocks
// @Produce     json
// @Param       id path string true "Stock ID"
// @Success     200 {object} models.Stock "Stock item"
// @Failure     404 {object} ErrorResponse "Stock not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /stocks/{id} [get]
func (h *StockHandler) GetStock(c *gin.Context) {
	id, err := parseUUIDParam(c, "id", apperrors.ErrStockNotFound)
	if err != nil {
		respondWithError(c, err)
		return
	}

	stock, err := h.stockService.GetStockByID(c.Request.Context(), id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": stock})
}

// CreateStock handles adding an item to inventory
// @Summary     Add a stock item
// @Description Add an item at a price. The same name may be stocked at several prices.
// @Tags        stocks
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateStockRequest true "Stock details"
// @Success     201 {object} models.Stock "Stock created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     409 {object} ErrorResponse "Name and price already stocked"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /stocks [post]
func (h *StockHandler) CreateStock(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	stock, err := h.stockService.CreateStock(c.Request.Context(), req.Name, req.Quantity, req.PricePerUnit)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), userID, "CREATE_STOCK", "stock", stock.ID, c.ClientIP(),
		map[string]interface{}{"name": stock.Name, "quantity": stock.Quantity, "price_per_unit": stock.PricePerUnit})

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": stock})
}
