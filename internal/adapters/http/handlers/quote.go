package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/EcMscS/Footnote/internal/adapters/http/dto"
	"github.com/EcMscS/Footnote/internal/app"
	"github.com/EcMscS/Footnote/internal/domain"
)

// QuoteHandler serves the quote list: filtered listing, selection, creation
// and deletion.
type QuoteHandler struct {
	service *app.QuoteService
}

// NewQuoteHandler creates a new quote handler.
func NewQuoteHandler(service *app.QuoteService) *QuoteHandler {
	return &QuoteHandler{
		service: service,
	}
}

// ListQuotes handles GET /api/v1/quotes
// Returns the quotes matching q, newest first, one page at a time.
//
// @Summary List quotes
// @Description Filters by text, author and title ignoring case and accents
// @Tags quotes
// @Produce json
// @Param q query string false "Filter pattern"
// @Param limit query int false "Page size (1-100)"
// @Param cursor query string false "Cursor from a previous page"
// @Success 200 {object} dto.QuotePage
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/quotes [get]
func (h *QuoteHandler) ListQuotes(c *gin.Context) {
	var req dto.ListQuotesRequest
	if err := dto.BindQueryAndValidate(c, &req); err != nil {
		dto.RespondWithRequestError(c, err)
		return
	}

	cursor, err := dto.ParseCursor(req.Cursor)
	if err != nil {
		dto.RespondWithErrorCode(c, dto.ErrorCodeBadRequest, "invalid cursor")
		return
	}

	quotes, err := h.service.List(c.Request.Context(), req.Query)
	if err != nil {
		dto.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewQuotePage(quotes, cursor.Resume(quotes), req.PageSize()))
}

// GetQuote handles GET /api/v1/quotes/:id
// Returns a single quote for the detail view.
//
// @Summary Get a quote by ID
// @Tags quotes
// @Produce json
// @Param id path string true "Quote ID"
// @Success 200 {object} dto.QuoteResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/quotes/{id} [get]
func (h *QuoteHandler) GetQuote(c *gin.Context) {
	quote, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		dto.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewQuoteResponse(quote))
}

// CreateQuote handles POST /api/v1/quotes
//
// @Summary Save a quote
// @Tags quotes
// @Accept json
// @Produce json
// @Param quote body dto.CreateQuoteRequest true "Quote"
// @Success 201 {object} dto.QuoteResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/quotes [post]
func (h *QuoteHandler) CreateQuote(c *gin.Context) {
	var req dto.CreateQuoteRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.RespondWithRequestError(c, err)
		return
	}

	in, err := req.ToDomain()
	if err != nil {
		dto.RespondWithError(c, err)
		return
	}

	quote, err := h.service.Create(c.Request.Context(), in)
	if err != nil {
		dto.RespondWithError(c, err)
		return
	}

	c.Header("Location", c.FullPath()+"/"+quote.ID)
	c.JSON(http.StatusCreated, dto.NewQuoteResponse(quote))
}

// DeleteQuote handles DELETE /api/v1/quotes/:id
//
// @Summary Delete a quote by ID
// @Tags quotes
// @Param id path string true "Quote ID"
// @Success 204
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/quotes/{id} [delete]
func (h *QuoteHandler) DeleteQuote(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		dto.RespondWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// DeleteAt handles POST /api/v1/quotes/delete
// Deletes quotes by their position in the list displayed for q.
//
// @Summary Delete quotes by displayed position
// @Tags quotes
// @Accept json
// @Produce json
// @Param request body dto.DeleteAtRequest true "Filter and positions"
// @Success 200 {object} dto.DeleteAtResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/quotes/delete [post]
func (h *QuoteHandler) DeleteAt(c *gin.Context) {
	var req dto.DeleteAtRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.RespondWithRequestError(c, err)
		return
	}

	deleted, err := h.service.DeleteAt(c.Request.Context(), req.Query, req.Positions)
	if err != nil {
		status, errResp := dto.MapDomainError(err)
		if len(deleted) > 0 {
			errResp.WithDetails(map[string]string{"deleted": joinIDs(deleted)})
		}

		dto.RespondWithErrorResponse(c, status, err, errResp)

		return
	}

	c.JSON(http.StatusOK, dto.DeleteAtResponse{Deleted: dto.NewQuoteResponses(deleted)})
}

// RegisterQuoteRoutes registers quote routes on the given router group.
func (h *QuoteHandler) RegisterQuoteRoutes(rg *gin.RouterGroup) {
	quotes := rg.Group("/quotes")
	quotes.GET("", h.ListQuotes)
	quotes.POST("", h.CreateQuote)
	quotes.POST("/delete", h.DeleteAt)
	quotes.GET("/:id", h.GetQuote)
	quotes.DELETE("/:id", h.DeleteQuote)
}

func joinIDs(quotes []domain.Quote) string {
	ids := make([]string, 0, len(quotes))
	for _, q := range quotes {
		ids = append(ids, q.ID)
	}

	return strings.Join(ids, ",")
}
