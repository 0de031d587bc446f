// internal/interfaces/http/handlers/product.go
package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/atelier-textile/storefront-api/internal/domain/product"
	"github.com/atelier-textile/storefront-api/internal/pkg/export"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ProductHandler handles product endpoints
type ProductHandler struct {
	productService  *product.Service
	categoryService *product.CategoryService
	logger          logrus.FieldLogger
}

// NewProductHandler creates a new product handler
func NewProductHandler(productService *product.Service, categoryService *product.CategoryService, logger logrus.FieldLogger) *ProductHandler {
	return &ProductHandler{
		productService:  productService,
		categoryService: categoryService,
		logger:          logger,
	}
}

// GetProducts handles GET /products
func (h *ProductHandler) GetProducts(c *gin.Context) {
	var req product.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid query parameters",
			"details": err.Error(),
		})
		return
	}

	response, err := h.productService.List(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err, "Failed to retrieve products")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Products retrieved successfully",
		"data":    response,
	})
}

// GetProductBySlug handles GET /products/:slug
func (h *ProductHandler) GetProductBySlug(c *gin.Context) {
	detail, err := h.productService.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, h.logger, err, "Failed to retrieve product")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Product retrieved successfully",
		"data":    detail,
	})
}

// AdminGetProducts handles GET /admin/products
func (h *ProductHandler) AdminGetProducts(c *gin.Context) {
	var req product.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid query parameters",
			"details": err.Error(),
		})
		return
	}

	response, err := h.productService.AdminList(c.Request.Context(), &req, c.Query("include_deleted") == "true")
	if err != nil {
		respondError(c, h.logger, err, "Failed to retrieve products")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Products retrieved successfully",
		"data":    response,
	})
}

// AdminGetProduct handles GET /admin/products/:id
func (h *ProductHandler) AdminGetProduct(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	p, err := h.productService.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err, "Failed to retrieve product")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Product retrieved successfully",
		"data":    p,
	})
}

// AdminCreateProduct handles POST /admin/products
func (h *ProductHandler) AdminCreateProduct(c *gin.Context) {
	var req product.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidRequest(c, err)
		return
	}

	p, err := h.productService.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err, "Failed to create product")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Product created successfully",
		"data":    p,
	})
}

// AdminUpdateProduct handles PUT /admin/products/:id
func (h *ProductHandler) AdminUpdateProduct(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req product.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidRequest(c, err)
		return
	}

	p, err := h.productService.Update(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, h.logger, err, "Failed to update product")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Product updated successfully",
		"data":    p,
	})
}

// AdminDeleteProduct handles DELETE /admin/products/:id. Products referenced
// by orders are soft deleted with their variants.
func (h *ProductHandler) AdminDeleteProduct(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	result, err := h.productService.Delete(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err, "Failed to delete product")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Product deleted successfully",
		"data":    result,
	})
}

// AdminUpsertVariant handles PUT /admin/products/:id/variants
func (h *ProductHandler) AdminUpsertVariant(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req product.VariantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidRequest(c, err)
		return
	}

	variant, err := h.productService.UpsertVariant(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, h.logger, err, "Failed to save variant")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Variant saved successfully",
		"data":    variant,
	})
}

// AdminDeleteVariant handles DELETE /admin/products/:id/variants/:variantId
func (h *ProductHandler) AdminDeleteVariant(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	variantID, ok := uuidParam(c, "variantId")
	if !ok {
		return
	}

	result, err := h.productService.DeleteVariant(c.Request.Context(), id, variantID)
	if err != nil {
		respondError(c, h.logger, err, "Failed to delete variant")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Variant deleted successfully",
		"data":    result,
	})
}

// AdminExportCatalog handles GET /admin/products/export
func (h *ProductHandler) AdminExportCatalog(c *gin.Context) {
	ctx := c.Request.Context()

	products, err := h.productService.All(ctx)
	if err != nil {
		respondError(c, h.logger, err, "Failed to export catalog")
		return
	}
	tree, err := h.categoryService.Tree(ctx)
	if err != nil {
		respondError(c, h.logger, err, "Failed to export catalog")
		return
	}

	names := make(map[uuid.UUID]string)
	collectCategoryNames(tree, names)

	var buf bytes.Buffer
	if err := export.WriteCatalog(&buf, products, names); err != nil {
		respondError(c, h.logger, err, "Failed to export catalog")
		return
	}

	filename := fmt.Sprintf("catalogue-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, export.ContentType, buf.Bytes())
}

func collectCategoryNames(tree []product.CategoryTree, names map[uuid.UUID]string) {
	for _, node := range tree {
		names[node.ID] = node.Name
		collectCategoryNames(node.Children, names)
	}
}
