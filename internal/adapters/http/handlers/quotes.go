package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quote-sync/internal/adapters/http/dto"
	"github.com/jsamuelsen/quote-sync/internal/app"
)

// QuoteHandler handles quote and category endpoints.
type QuoteHandler struct {
	service *app.QuoteService
}

// NewQuoteHandler creates a new quote handler.
func NewQuoteHandler(service *app.QuoteService) *QuoteHandler {
	return &QuoteHandler{service: service}
}

// ListQuotes handles GET /api/v1/quotes.
// The category filter is case-insensitive; no category lists everything.
//
// @Summary List quotes
// @Tags quotes
// @Produce json
// @Param category query string false "Category filter"
// @Param cursor query string false "Page cursor"
// @Param limit query int false "Page size"
// @Success 200 {object} dto.Page[dto.QuoteResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/quotes [get]
func (h *QuoteHandler) ListQuotes(c *gin.Context) {
	var query dto.ListQuotesQuery
	if err := dto.BindQueryAndValidate(c, &query); err != nil {
		dto.HandleBindError(c, err)
		return
	}

	offset, err := query.Offset()
	if err != nil {
		dto.RespondWithErrorCode(c, dto.ErrorCodeBadRequest, err.Error())
		return
	}

	quotes := dto.NewQuoteResponses(h.service.List(query.Category))

	c.JSON(http.StatusOK, dto.Paginate(quotes, offset, query.GetLimit()))
}

// AddQuote handles POST /api/v1/quotes.
//
// @Summary Add a quote
// @Tags quotes
// @Accept json
// @Produce json
// @Param quote body dto.CreateQuoteRequest true "Quote"
// @Success 201 {object} dto.QuoteResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/quotes [post]
func (h *QuoteHandler) AddQuote(c *gin.Context) {
	var req dto.CreateQuoteRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleBindError(c, err)
		return
	}

	q, err := h.service.Add(c.Request.Context(), req.Text, req.Category)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewQuoteResponse(q))
}

// RemoveQuote handles DELETE /api/v1/quotes/:id.
// Only quotes carrying a remote ID can be addressed.
func (h *QuoteHandler) RemoveQuote(c *gin.Context) {
	var param dto.QuoteIDParam
	if err := dto.BindURIAndValidate(c, &param); err != nil {
		dto.HandleBindError(c, err)
		return
	}

	removed, err := h.service.Remove(c.Request.Context(), param.ID)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	if !removed {
		dto.RespondWithErrorCode(c, dto.ErrorCodeNotFound, "quote not found")
		return
	}

	c.Status(http.StatusNoContent)
}

// RandomQuote handles GET /api/v1/quotes/random.
// Without a category the persisted selection applies.
//
// @Summary Show a random quote
// @Tags quotes
// @Produce json
// @Param category query string false "Category filter"
// @Success 200 {object} dto.QuoteResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/quotes/random [get]
func (h *QuoteHandler) RandomQuote(c *gin.Context) {
	var query dto.CategoryQuery
	if err := dto.BindQueryAndValidate(c, &query); err != nil {
		dto.HandleBindError(c, err)
		return
	}

	q, err := h.service.Random(c.Request.Context(), query.Category)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewQuoteResponse(q))
}

// LastViewed handles GET /api/v1/quotes/last-viewed.
func (h *QuoteHandler) LastViewed(c *gin.Context) {
	q, err := h.service.LastViewed(c.Request.Context())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewQuoteResponse(q))
}

// Categories handles GET /api/v1/categories.
func (h *QuoteHandler) Categories(c *gin.Context) {
	c.JSON(http.StatusOK, dto.CategoriesResponse{Categories: h.service.Categories()})
}

// SelectedCategory handles GET /api/v1/preferences/category.
func (h *QuoteHandler) SelectedCategory(c *gin.Context) {
	category, err := h.service.SelectedCategory(c.Request.Context())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.CategoryResponse{Category: category})
}

// SelectCategory handles PUT /api/v1/preferences/category.
// The selection is persisted and a quote from it is shown.
func (h *QuoteHandler) SelectCategory(c *gin.Context) {
	var req dto.CategoryRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleBindError(c, err)
		return
	}

	category, err := h.service.SelectCategory(c.Request.Context(), req.Category)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.CategoryResponse{Category: category})
}

// RegisterRoutes registers quote, category and preference routes.
func (h *QuoteHandler) RegisterRoutes(rg *gin.RouterGroup) {
	quotes := rg.Group("/quotes")
	quotes.GET("", h.ListQuotes)
	quotes.POST("", h.AddQuote)
	quotes.GET("/random", h.RandomQuote)
	quotes.GET("/last-viewed", h.LastViewed)
	quotes.DELETE("/:id", h.RemoveQuote)

	rg.GET("/categories", h.Categories)
	rg.GET("/preferences/category", h.SelectedCategory)
	rg.PUT("/preferences/category", h.SelectCategory)
}
