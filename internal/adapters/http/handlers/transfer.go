package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quote-sync/internal/adapters/http/dto"
	"github.com/jsamuelsen/quote-sync/internal/app"
)

// MaxImportBytes bounds the size of an imported document.
const MaxImportBytes = 5 << 20

// TransferHandler handles export and import of the collection.
type TransferHandler struct {
	service *app.TransferService
}

// NewTransferHandler creates a new transfer handler.
func NewTransferHandler(service *app.TransferService) *TransferHandler {
	return &TransferHandler{service: service}
}

// Export handles GET /api/v1/quotes/export.
// The body is the indented JSON list, offered as a quotes.json download.
func (h *TransferHandler) Export(c *gin.Context) {
	data, err := h.service.Export(c.Request.Context())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+app.ExportFilename+`"`)
	c.Data(http.StatusOK, "application/json", data)
}

// Import handles POST /api/v1/quotes/import.
// The body is a JSON list of quotes. Nothing is appended unless every record is valid.
func (h *TransferHandler) Import(c *gin.Context) {
	document, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, MaxImportBytes))
	if err != nil {
		dto.RespondWithErrorCode(c, dto.ErrorCodeBadRequest, "reading document: "+err.Error())
		return
	}

	result, err := h.service.Import(c.Request.Context(), document)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ImportResponse{
		Received:   result.Received,
		Added:      result.Added,
		Duplicates: result.Duplicates,
	})
}

// RegisterRoutes registers the transfer routes. They must be registered
// before the quote routes so /quotes/export is not taken for an ID.
func (h *TransferHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/quotes/export", h.Export)
	rg.POST("/quotes/import", h.Import)
}
