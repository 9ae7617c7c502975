package server

import (
	"errors"
	"net/http"

	"github.com/example/storefront/pkg/catalog"
	"github.com/gin-gonic/gin"
)

// getBag returns the bag contents with a priced view when non-empty.
func (s *Server) getBag(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}

	items, err := s.bags.Get(c.Request.Context(), session)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load bag"})
		return
	}

	resp := gin.H{"bag": items, "total_items": items.TotalItems()}
	if !items.IsEmpty() {
		if pc, err := s.pricer.Build(c.Request.Context(), items); err == nil {
			resp["pricing"] = pc
		}
	}
	c.JSON(http.StatusOK, resp)
}

type bagItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity"`
}

func (s *Server) addBagItem(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}

	var req bagItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if req.Quantity < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "quantity must be positive"})
		return
	}

	// only products that still exist can enter the bag
	product, err := s.catalog.ProductByID(c.Request.Context(), req.ProductID)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load product"})
		return
	}

	items, err := s.bags.Get(c.Request.Context(), session)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load bag"})
		return
	}
	items.Add(product.ID, req.Quantity)
	if err := s.bags.Save(c.Request.Context(), session, items); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save bag"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"bag": items, "total_items": items.TotalItems()})
}

type bagQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// updateBagItem overwrites a quantity; zero removes the entry.
func (s *Server) updateBagItem(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}

	var req bagQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	items, err := s.bags.Get(c.Request.Context(), session)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load bag"})
		return
	}
	items.SetQuantity(c.Param("product_id"), req.Quantity)
	if err := s.bags.Save(c.Request.Context(), session, items); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save bag"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"bag": items, "total_items": items.TotalItems()})
}

func (s *Server) removeBagItem(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}

	items, err := s.bags.Get(c.Request.Context(), session)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load bag"})
		return
	}
	items.Remove(c.Param("product_id"))
	if err := s.bags.Save(c.Request.Context(), session, items); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save bag"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"bag": items, "total_items": items.TotalItems()})
}

func (s *Server) emptyBag(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}

	if err := s.bags.Delete(c.Request.Context(), session); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to empty bag"})
		return
	}
	c.Status(http.StatusNoContent)
}
