package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/example/storefront/pkg/catalog"
	"github.com/example/storefront/pkg/checkout"
	"github.com/example/storefront/pkg/profile"
	"github.com/gin-gonic/gin"
)

// requireProfile resolves the acting user's profile, creating it on first
// contact. Guests get a 401.
func (s *Server) requireProfile(c *gin.Context) (string, bool) {
	actor := actorID(c)
	if actor == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return "", false
	}
	prof, err := s.profiles.GetOrCreate(c.Request.Context(), actor)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load profile"})
		return "", false
	}
	return prof.ID, true
}

func (s *Server) orderHistory(c *gin.Context) {
	profileID, ok := s.requireProfile(c)
	if !ok {
		return
	}

	orders, err := s.profiles.OrderHistory(c.Request.Context(), profileID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load order history"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders, "total": len(orders)})
}

func (s *Server) orderSummary(c *gin.Context) {
	if _, ok := s.requireProfile(c); !ok {
		return
	}

	order, err := s.checkout.OrderByNumber(c.Request.Context(), c.Param("order_number"))
	if err != nil {
		if errors.Is(err, checkout.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load order"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order, "from_profile": true})
}

func (s *Server) addressBook(c *gin.Context) {
	profileID, ok := s.requireProfile(c)
	if !ok {
		return
	}

	book, err := s.profiles.AddressBook(c.Request.Context(), profileID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load addresses"})
		return
	}
	c.JSON(http.StatusOK, book)
}

func (s *Server) addAddress(c *gin.Context) {
	profileID, ok := s.requireProfile(c)
	if !ok {
		return
	}

	var form profile.AddressForm
	if err := c.ShouldBindJSON(&form); err != nil {
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

	address, err := s.profiles.AddAddress(c.Request.Context(), profileID, &form)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to add address"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"address": address,
		"message": "Address added successfully",
	})
}

func addressIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid address id"})
		return 0, false
	}
	return uint(id), true
}

func (s *Server) editAddress(c *gin.Context) {
	profileID, ok := s.requireProfile(c)
	if !ok {
		return
	}
	addressID, ok := addressIDParam(c)
	if !ok {
		return
	}

	var form profile.AddressForm
	if err := c.ShouldBindJSON(&form); err != nil {
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

	address, err := s.profiles.EditAddress(c.Request.Context(), profileID, addressID, &form)
	if err != nil {
		if errors.Is(err, profile.ErrAddressNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "address not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update address"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"address": address,
		"message": "Address updated successfully",
	})
}

type deleteAddressesRequest struct {
	IDs []uint `json:"ids" binding:"required,min=1"`
}

func (s *Server) deleteAddresses(c *gin.Context) {
	profileID, ok := s.requireProfile(c)
	if !ok {
		return
	}

	var req deleteAddressesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	deleted, err := s.profiles.DeleteAddresses(c.Request.Context(), profileID, req.IDs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete addresses"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"deleted": deleted,
		"message": fmt.Sprintf("%d item(s) deleted", deleted),
	})
}

func (s *Server) setDefaultAddress(c *gin.Context) {
	profileID, ok := s.requireProfile(c)
	if !ok {
		return
	}
	addressID, ok := addressIDParam(c)
	if !ok {
		return
	}

	if err := s.profiles.SetDefaultAddress(c.Request.Context(), profileID, addressID); err != nil {
		if errors.Is(err, profile.ErrAddressNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "address not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to set default address"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Default address updated"})
}

func (s *Server) savedProducts(c *gin.Context) {
	profileID, ok := s.requireProfile(c)
	if !ok {
		return
	}

	saved, err := s.profiles.SavedProducts(c.Request.Context(), profileID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load saved products"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"saved_products": saved, "total": len(saved)})
}

func (s *Server) saveProduct(c *gin.Context) {
	profileID, ok := s.requireProfile(c)
	if !ok {
		return
	}

	product, err := s.catalog.ProductByID(c.Request.Context(), c.Param("product_id"))
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load product"})
		return
	}

	if err := s.profiles.SaveProduct(c.Request.Context(), profileID, product.ID); err != nil {
		if errors.Is(err, profile.ErrAlreadySaved) {
			c.JSON(http.StatusConflict, gin.H{"error": fmt.Sprintf("%s already saved", product.Name)})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save product"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Product saved successfully"})
}

func (s *Server) removeSavedProduct(c *gin.Context) {
	profileID, ok := s.requireProfile(c)
	if !ok {
		return
	}

	product, err := s.catalog.ProductByID(c.Request.Context(), c.Param("product_id"))
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load product"})
		return
	}

	if err := s.profiles.RemoveSavedProduct(c.Request.Context(), profileID, product.ID); err != nil {
		if errors.Is(err, profile.ErrNotSaved) {
			c.JSON(http.StatusConflict, gin.H{"error": "Product is not saved"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to remove saved product"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("%s removed from saved items", product.Name)})
}
