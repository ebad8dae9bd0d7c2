package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-marketplace-api/internal/application"
	"github.com/oksasatya/go-marketplace-api/internal/interface/middleware"
	"github.com/oksasatya/go-marketplace-api/pkg/response"
	"github.com/oksasatya/go-marketplace-api/pkg/validation"
)

type ItemHandler struct {
	Svc    *application.ItemService
	Logger *logrus.Logger
}

func NewItemHandler(svc *application.ItemService, logger *logrus.Logger) *ItemHandler {
	return &ItemHandler{Svc: svc, Logger: logger}
}

// itemID parses the :id path parameter. The route delivers ids as text;
// anything that does not parse to a stored numeric id is simply not
// found.
func itemID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// List GET /item
func (h *ItemHandler) List(c *gin.Context) {
	items, err := h.Svc.List(c.Request.Context())
	if err != nil {
		h.Logger.WithError(err).Error("list items failed")
		response.Error(c, http.StatusInternalServerError, "list items failed", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"items": items}, "items")
}

// Get GET /item/:id
func (h *ItemHandler) Get(c *gin.Context) {
	id, ok := itemID(c)
	if !ok {
		response.Error(c, http.StatusNotFound, "item id not found", nil)
		return
	}
	it, err := h.Svc.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, application.ErrItemNotFound) {
			response.Error(c, http.StatusNotFound, "item id not found", nil)
			return
		}
		h.Logger.WithError(err).Error("get item failed")
		response.Error(c, http.StatusInternalServerError, "get item failed", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"result": it}, "item")
}

// Create POST /item — multipart form with the required text fields and
// up to four optional files under the "image" key.
func (h *ItemHandler) Create(c *gin.Context) {
	in := application.CreateItemInput{
		Title:        c.PostForm("title"),
		Desc:         c.PostForm("desc"),
		Category:     c.PostForm("category"),
		Location:     c.PostForm("location"),
		Price:        c.PostForm("price"),
		Date:         c.PostForm("date"),
		DeliveryType: c.PostForm("deliveryType"),
		Name:         c.PostForm("name"),
		Tel:          c.PostForm("tel"),
	}
	var files []*multipart.FileHeader
	if form, err := c.MultipartForm(); err == nil && form != nil {
		files = form.File["image"]
	}

	it, err := h.Svc.Create(c.Request.Context(), c.GetInt64(middleware.CtxUserIDKey), in, files)
	if err != nil {
		var missing *application.MissingFieldsError
		switch {
		case errors.As(err, &missing):
			response.Error(c, http.StatusBadRequest, "missing key(s)", gin.H{"missing": missing.Keys})
		case errors.Is(err, application.ErrTooManyImages):
			response.Error(c, http.StatusBadRequest, "at most 4 image files allowed", nil)
		case errors.Is(err, application.ErrInvalidPrice):
			response.Error(c, http.StatusBadRequest, "price must be a number", nil)
		default:
			h.Logger.WithError(err).Error("create item failed")
			response.Error(c, http.StatusInternalServerError, "create item failed", nil)
		}
		return
	}
	response.Success(c, http.StatusCreated, it, "item created")
}

// Update PUT /item/:id — field-level merge of known mutable keys.
func (h *ItemHandler) Update(c *gin.Context) {
	id, ok := itemID(c)
	if !ok {
		response.Error(c, http.StatusNotFound, "item id not found", nil)
		return
	}
	var fields map[string]any
	if err := c.ShouldBindJSON(&fields); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	it, err := h.Svc.Update(c.Request.Context(), c.GetInt64(middleware.CtxUserIDKey), id, fields)
	if err != nil {
		switch {
		case errors.Is(err, application.ErrItemNotFound):
			response.Error(c, http.StatusNotFound, "item id not found", nil)
		case errors.Is(err, application.ErrForbidden):
			response.Error(c, http.StatusForbidden, "user not authorized", nil)
		case errors.Is(err, application.ErrNoFieldsModified):
			// kept on 404 for compatibility with existing clients
			response.Error(c, http.StatusNotFound, "no matching fields to modify", nil)
		default:
			h.Logger.WithError(err).Error("update item failed")
			response.Error(c, http.StatusInternalServerError, "update item failed", nil)
		}
		return
	}
	response.Success(c, http.StatusOK, it, "item updated")
}

// Delete DELETE /item/:id
func (h *ItemHandler) Delete(c *gin.Context) {
	id, ok := itemID(c)
	if !ok {
		response.Error(c, http.StatusNotFound, "item id not found", nil)
		return
	}
	err := h.Svc.Delete(c.Request.Context(), c.GetInt64(middleware.CtxUserIDKey), id)
	if err != nil {
		switch {
		case errors.Is(err, application.ErrItemNotFound):
			response.Error(c, http.StatusNotFound, "item id not found", nil)
		case errors.Is(err, application.ErrForbidden):
			response.Error(c, http.StatusForbidden, "user not authorized", nil)
		default:
			h.Logger.WithError(err).Error("delete item failed")
			response.Error(c, http.StatusInternalServerError, "delete item failed", nil)
		}
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": id}, "item deleted")
}

// Search GET /item/search/:searchtype/:keyword
func (h *ItemHandler) Search(c *gin.Context) {
	results, err := h.Svc.Search(c.Request.Context(), c.Param("searchtype"), c.Param("keyword"))
	if err != nil {
		if errors.Is(err, application.ErrUnsupportedSearchType) {
			response.Error(c, http.StatusBadRequest, "searchtype not supported", nil)
			return
		}
		h.Logger.WithError(err).Error("search failed")
		response.Error(c, http.StatusInternalServerError, "search failed", nil)
		return
	}
	if len(results) == 0 {
		response.Error(c, http.StatusNotFound, "no results found", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"results": results}, "search results")
}
