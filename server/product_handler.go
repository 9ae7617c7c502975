package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/example/storefront/pkg/catalog"
	"github.com/example/storefront/pkg/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// listProducts serves browsing: sorting, category filtering and free-text
// search over name and description.
func (s *Server) listProducts(c *gin.Context) {
	q := catalog.Query{
		Sort:      c.Query("sort"),
		Direction: c.Query("direction"),
	}
	if cats := c.Query("category"); cats != "" {
		q.Categories = strings.Split(cats, ",")
	}
	if search, present := c.GetQuery("q"); present {
		if search == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No search criteria entered"})
			return
		}
		q.Search = search
	}

	products, err := s.catalog.List(c.Request.Context(), q)
	if err != nil {
		s.logger.Error("Failed to list products", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list products"})
		return
	}
	categories, err := s.catalog.Categories(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list categories"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products":        products,
		"total":           len(products),
		"search_term":     q.Search,
		"all_categories":  categories,
		"current_sorting": fmt.Sprintf("%s_%s", q.Sort, q.Direction),
	})
}

func (s *Server) getProduct(c *gin.Context) {
	product, err := s.catalog.ProductByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load product"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": product})
}

// createProduct validates input with the form owned by the requested
// category and persists the product.
func (s *Server) createProduct(c *gin.Context) {
	categoryName := c.Query("category")
	form := catalog.FormFor(categoryName)
	if err := c.ShouldBindJSON(form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if fields := form.Validate(); fields != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "Update failed. Please ensure the form is valid.",
			"fields": fields,
		})
		return
	}

	product := models.Product{ID: uuid.NewString()}
	if categoryName != "" {
		category, err := s.catalog.CategoryByName(c.Request.Context(), categoryName)
		if err != nil {
			if errors.Is(err, catalog.ErrCategoryNotFound) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "unknown category"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve category"})
			return
		}
		product.CategoryID = &category.ID
	}
	if err := form.Apply(&product); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if err := s.catalog.CreateProduct(c.Request.Context(), &product); err != nil {
		s.logger.Error("Failed to create product", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create product"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"product": product,
		"message": "Product added successfully",
	})
}

// updateProduct re-validates with the form of the product's stored
// category, not whatever the client claims.
func (s *Server) updateProduct(c *gin.Context) {
	product, err := s.catalog.ProductByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load product"})
		return
	}

	categoryName := ""
	if product.Category != nil {
		categoryName = product.Category.Name
	}
	form := catalog.FormFor(categoryName)
	if err := c.ShouldBindJSON(form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if fields := form.Validate(); fields != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "Update failed. Please ensure the form is valid.",
			"fields": fields,
		})
		return
	}
	if err := form.Apply(product); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if err := s.catalog.UpdateProduct(c.Request.Context(), product); err != nil {
		s.logger.Error("Failed to update product", zap.String("id", product.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update product"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"product": product,
		"message": "Product updated successfully",
	})
}

type deleteProductsRequest struct {
	IDs []string `json:"ids" binding:"required,min=1"`
}

func (s *Server) deleteProducts(c *gin.Context) {
	var req deleteProductsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	deleted, err := s.catalog.DeleteProducts(c.Request.Context(), req.IDs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete products"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"deleted": deleted,
		"message": fmt.Sprintf("Deleted %d item(s)", deleted),
	})
}
