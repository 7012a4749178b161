package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "stockroom/internal/errors"
	"stockroom/internal/models"
	"stockroom/internal/services"
)

// SaleHandler handles sale-related requests.
type SaleHandler struct {
	saleService  services.SaleServicer
	auditService services.AuditServicer
}

// NewSaleHandler creates a new SaleHandler.
func NewSaleHandler(saleService services.SaleServicer, auditService services.AuditServicer) *SaleHandler {
	return &SaleHandler{saleService: saleService, auditService: auditService}
}

// CreateSaleRequest represents the request payload for recording a sale.
// Price is only needed when the item is stocked at more than one price.
type CreateSaleRequest struct {
	Name     string `json:"name" binding:"max=255"`
	Quantity int    `json:"quantity"`
	Price    *int64 `json:"price" binding:"omitempty,gte=0"`
}

// EditSaleRequest represents the request payload for amending a sale.
type EditSaleRequest struct {
	Quantity *int `json:"quantity"`
}

// SaleListQuery holds the query string filters for listing sales.
type SaleListQuery struct {
	Date    string `form:"date"`
	EndDate string `form:"end-date"`
	Name    string `form:"name"`
}

// SaleEnvelope wraps a single sale in the response.
type SaleEnvelope struct {
	Success bool        `json:"success"`
	Data    models.Sale `json:"data"`
}

// ListSales handles listing sales for a day or a range of days
// @Summary     List sales
// @Description List sales made on a day (default today) or over an inclusive date range, oldest first
// @Tags        sales
// @Produce     json
// @Param       date     query string false "Start day, YYYY-MM-DD (default today)"
// @Param       end-date query string false "Inclusive end day, YYYY-MM-DD"
// @Param       name     query string false "Case-insensitive name fragment"
// @Success     200 {array}  models.Sale "Sales"
// @Failure     400 {object} ErrorResponse "Invalid date"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /sales [get]
func (h *SaleHandler) ListSales(c *gin.Context) {
	var q SaleListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	sales, err := h.saleService.ListSales(c.Request.Context(), services.SaleQuery{
		Date:    q.Date,
		EndDate: q.EndDate,
		Name:    q.Name,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, sales)
}

// CreateSale handles recording a new sale
// @Summary     Record a sale
// @Description Record a sale of an item and take the sold units out of stock
// @Tags        sales
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       Idempotency-Key header string false "Client key making the request safe to retry"
// @Param       request body CreateSaleRequest true "Sale details"
// @Success     201 {object} SaleEnvelope "Sale recorded"
// @Failure     400 {object} ErrorResponse "Invalid input, out of stock or quantity too high"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Item does not exist"
// @Failure     409 {object} ErrorResponse "Duplicate idempotency key"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /sales [post]
func (h *SaleHandler) CreateSale(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	sale, err := h.saleService.CreateSale(c.Request.Context(), services.CreateSaleParams{
		Name:     req.Name,
		Quantity: req.Quantity,
		Price:    req.Price,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), userID, "CREATE_SALE", "sale", sale.ID, c.ClientIP(),
		map[string]interface{}{"name": sale.Name, "quantity": sale.Quantity, "total": sale.Total, "item": sale.StockID})

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": sale})
}

// GetSale handles retrieving a single sale
// @Summary     Get a sale
// @Description Get a sale by ID
// @Tags        sales
// @Produce     json
// @Param       id path string true "Sale ID"
// @Success     200 {object} SaleEnvelope "Sale"
// @Failure     404 {object} ErrorResponse "Sale not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /sales/{id} [get]
func (h *SaleHandler) GetSale(c *gin.Context) {
	id, err := parseUUIDParam(c, "id", apperrors.ErrSaleNotFound)
	if err != nil {
		respondWithError(c, err)
		return
	}

	sale, err := h.saleService.GetSaleByID(c.Request.Context(), id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": sale})
}

// EditSale handles amending the quantity of a sale
// @Summary     Amend a sale
// @Description Change the quantity of a sale, moving the difference between stock and sold. Without a quantity, or with 0, the sale is returned unchanged with 200.
// @Tags        sales
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string          true  "Sale ID"
// @Param       request body EditSaleRequest false "New quantity"
// @Success     200 {object} SaleEnvelope "Sale unchanged"
// @Success     201 {object} SaleEnvelope "Sale amended"
// @Failure     400 {object} ErrorResponse "Invalid input or quantity too high"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Sale not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /sales/{id} [patch]
func (h *SaleHandler) EditSale(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id, err := parseUUIDParam(c, "id", apperrors.ErrSaleNotFound)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req EditSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	sale, err := h.saleService.EditSale(c.Request.Context(), id, req.Quantity)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if req.Quantity == nil || *req.Quantity == 0 {
		c.JSON(http.StatusOK, gin.H{"success": true, "data": sale})
		return
	}

	h.auditService.Log(c.Request.Context(), userID, "EDIT_SALE", "sale", sale.ID, c.ClientIP(),
		map[string]interface{}{"quantity": sale.Quantity, "total": sale.Total})

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": sale})
}

// DeleteSale handles deleting a sale
// @Summary     Delete a sale
// @Description Delete a sale and return its units to stock
// @Tags        sales
// @Security    BearerAuth
// @Param       id path string true "Sale ID"
// @Success     204 "Sale deleted"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Sale not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /sales/{id} [delete]
func (h *SaleHandler) DeleteSale(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id, err := parseUUIDParam(c, "id", apperrors.ErrSaleNotFound)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.saleService.DeleteSale(c.Request.Context(), id); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), userID, "DELETE_SALE", "sale", id, c.ClientIP(), nil)

	c.Status(http.StatusNoContent)
}
