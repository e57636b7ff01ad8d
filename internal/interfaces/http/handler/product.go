package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	catalogapp "github.com/storefront/backend/internal/application/catalog"
	"github.com/storefront/backend/internal/interfaces/http/dto"
)

// CatalogUseCase is the product catalog behind the public and admin endpoints
type CatalogUseCase interface {
	List(ctx context.Context, f catalogapp.ProductListFilter) (*catalogapp.ProductListResult, error)
	AdminList(ctx context.Context, f catalogapp.ProductListFilter) (*catalogapp.ProductListResult, error)
	Get(ctx context.Context, id uuid.UUID, includeInactive bool) (*catalogapp.ProductResponse, error)
	Create(ctx context.Context, req catalogapp.CreateProductRequest) (*catalogapp.ProductResponse, error)
	Update(ctx context.Context, id uuid.UUID, req catalogapp.UpdateProductRequest) (*catalogapp.ProductResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	AdjustStock(ctx context.Context, id uuid.UUID, req catalogapp.AdjustStockRequest) (*catalogapp.ProductResponse, error)
	UploadImage(ctx context.Context, id uuid.UUID, filename, contentType string, size int64, body io.Reader) (*catalogapp.ProductResponse, error)
	RemoveImage(ctx context.Context, id uuid.UUID, url string) (*catalogapp.ProductResponse, error)
}

// ProductHandler handles product-related API endpoints
type ProductHandler struct {
	BaseHandler
	products CatalogUseCase
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(products CatalogUseCase) *ProductHandler {
	return &ProductHandler{products: products}
}

// RemoveImageRequest names the gallery image to drop
type RemoveImageRequest struct {
	URL string `json:"url" binding:"required,url"`
}

// List godoc
// @ID           listProducts
// @Summary      List products
// @Description  Active products only. Results are cached and invalidated on catalog writes.
// @Tags         products
// @Produce      json
// @Param        search   query string false "Name or description search"
// @Param        category query string false "Category"
// @Param        page     query int    false "Page number" default(1)
// @Param        pageSize query int    false "Page size" default(20)
// @Param        orderBy  query string false "name, price, created_at or updated_at"
// @Param        orderDir query string false "asc or desc"
// @Success      200 {object} APIResponse[[]catalogapp.ProductResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /products [get]
func (h *ProductHandler) List(c *gin.Context) {
	var f catalogapp.ProductListFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.products.List(c.Request.Context(), f)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// Get godoc
// @ID           getProduct
// @Summary      Get a product
// @Tags         products
// @Produce      json
// @Param        id path string true "Product ID"
// @Success      200 {object} APIResponse[catalogapp.ProductResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /products/{id} [get]
func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	product, err := h.products.Get(c.Request.Context(), id, false)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, product)
}

// AdminList godoc
// @ID           adminListProducts
// @Summary      List all products
// @Description  Includes inactive products; filter with status=active|inactive
// @Tags         admin
// @Produce      json
// @Param        search   query string false "Name or description search"
// @Param        status   query string false "active or inactive"
// @Param        page     query int    false "Page number" default(1)
// @Param        pageSize query int    false "Page size" default(20)
// @Success      200 {object} APIResponse[[]catalogapp.ProductResponse]
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/products [get]
func (h *ProductHandler) AdminList(c *gin.Context) {
	var f catalogapp.ProductListFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.products.AdminList(c.Request.Context(), f)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// Create godoc
// @ID           adminCreateProduct
// @Summary      Create a product
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        request body catalogapp.CreateProductRequest true "Product"
// @Success      201 {object} APIResponse[catalogapp.ProductResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/products [post]
func (h *ProductHandler) Create(c *gin.Context) {
	var req catalogapp.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	product, err := h.products.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, product)
}

// Update godoc
// @ID           adminUpdateProduct
// @Summary      Update a product
// @Description  Omitted fields are left unchanged. Sending variants replaces the whole set.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id      path string                          true "Product ID"
// @Param        request body catalogapp.UpdateProductRequest true "Changes"
// @Success      200 {object} APIResponse[catalogapp.ProductResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/products/{id} [put]
func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req catalogapp.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	product, err := h.products.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, product)
}

// Delete godoc
// @ID           adminDeleteProduct
// @Summary      Deactivate a product
// @Description  Products are hidden from the storefront, not removed, so past orders keep their references
// @Tags         admin
// @Produce      json
// @Param        id path string true "Product ID"
// @Success      200 {object} SuccessResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/products/{id} [delete]
func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.products.Delete(c.Request.Context(), id); err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, nil)
}

// AdjustStock godoc
// @ID           adminAdjustStock
// @Summary      Adjust variant stock
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id      path string                        true "Product ID"
// @Param        request body catalogapp.AdjustStockRequest true "Variant and delta"
// @Success      200 {object} APIResponse[catalogapp.ProductResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/products/{id}/stock [post]
func (h *ProductHandler) AdjustStock(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req catalogapp.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	product, err := h.products.AdjustStock(c.Request.Context(), id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, product)
}

// UploadImage godoc
// @ID           adminUploadProductImage
// @Summary      Upload a product image
// @Description  JPEG, PNG or WebP up to 5MB, sent as the "image" form field
// @Tags         admin
// @Accept       multipart/form-data
// @Produce      json
// @Param        id    path     string true "Product ID"
// @Param        image formData file   true "Image file"
// @Success      201 {object} APIResponse[catalogapp.ProductResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      413 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/products/{id}/images [post]
func (h *ProductHandler) UploadImage(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	fh, err := c.FormFile("image")
	if err != nil {
		h.ValidationError(c, "An image file is required", "image: is required")
		return
	}
	if fh.Size > catalogapp.MaxImageSize {
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeTooLarge, "Image must be 5MB or smaller")
		return
	}
	file, err := fh.Open()
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	defer file.Close()

	contentType := fh.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		head := make([]byte, 512)
		n, _ := io.ReadFull(file, head)
		contentType = http.DetectContentType(head[:n])
		if _, err := file.Seek(0, io.SeekStart); err != nil {
			h.HandleDomainError(c, err)
			return
		}
	}

	product, err := h.products.UploadImage(c.Request.Context(), id, fh.Filename, contentType, fh.Size, file)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, product)
}

// RemoveImage godoc
// @ID           adminRemoveProductImage
// @Summary      Remove a product image
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id      path string             true "Product ID"
// @Param        request body RemoveImageRequest true "Image URL"
// @Success      200 {object} APIResponse[catalogapp.ProductResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/products/{id}/images [delete]
func (h *ProductHandler) RemoveImage(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req RemoveImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	product, err := h.products.RemoveImage(c.Request.Context(), id, req.URL)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, product)
}
