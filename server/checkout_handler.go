package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/example/storefront/pkg/checkout"
	"github.com/example/storefront/pkg/notify"
	"github.com/example/storefront/pkg/payment"
	"github.com/example/storefront/pkg/pricing"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const vanishedMessage = "One of the products in your bag could not be found. Please contact us for assistance!"

// getCheckout builds the pricing context for the current bag and creates a
// fresh payment intent for it. Every page view creates a new intent.
func (s *Server) getCheckout(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}

	items, err := s.bags.Get(c.Request.Context(), session)
	if err != nil {
		s.logger.Error("Failed to load bag", zap.String("session", session), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load bag"})
		return
	}
	if items.IsEmpty() {
		message := "Please log in to proceed to checkout"
		if actorID(c) != "" {
			message = "There are no items in your bag currently"
		}
		c.JSON(http.StatusConflict, gin.H{"error": message, "redirect": "/api/v1/products"})
		return
	}

	pc, err := s.pricer.Build(c.Request.Context(), items)
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": vanishedMessage, "redirect": "/api/v1/bag"})
		return
	}

	intent, err := s.gateway.CreateIntent(c.Request.Context(), pricing.MinorUnits(pc.GrandTotal), s.config.Stripe.Currency)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	resp := gin.H{
		"pricing":       pc,
		"client_secret": intent.ClientSecret,
		"public_key":    s.config.Stripe.PublicKey,
	}
	if s.config.Stripe.PublicKey == "" {
		resp["warning"] = "Stripe public key is missing"
	}
	c.JSON(http.StatusOK, resp)
}

type cacheMetadataRequest struct {
	ClientSecret string `json:"client_secret" binding:"required"`
	SaveInfo     bool   `json:"save_info"`
	Username     string `json:"username"`
}

// cacheCheckoutMetadata pushes the finalized bag snapshot onto the intent
// so the charge and the order can be reconciled later. Purely remote: no
// local state is touched.
func (s *Server) cacheCheckoutMetadata(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}

	var req cacheMetadataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	intentID, err := payment.IntentIDFromClientSecret(req.ClientSecret)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	items, err := s.bags.Get(c.Request.Context(), session)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load bag"})
		return
	}
	snapshot, err := items.Snapshot()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	err = s.gateway.UpdateMetadata(c.Request.Context(), intentID, map[string]string{
		"bag":       snapshot,
		"save_info": strconv.FormatBool(req.SaveInfo),
		"username":  req.Username,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.Status(http.StatusOK)
}

type checkoutSubmission struct {
	checkout.OrderForm
	ClientSecret string `json:"client_secret" binding:"required"`
	SaveInfo     bool   `json:"save_info"`
}

// postCheckout materializes the order from the submitted form and the
// session's bag snapshot.
func (s *Server) postCheckout(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}

	var submission checkoutSubmission
	if err := c.ShouldBindJSON(&submission); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	intentID, err := payment.IntentIDFromClientSecret(submission.ClientSecret)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	snapshot, err := s.bags.Get(c.Request.Context(), session)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load bag"})
		return
	}

	order, err := s.checkout.Materialize(c.Request.Context(), &submission.OrderForm, snapshot, intentID)
	if err != nil {
		var invalid *checkout.FormInvalidError
		var vanished *checkout.ProductVanishedError
		switch {
		case errors.As(err, &invalid):
			c.JSON(http.StatusBadRequest, gin.H{
				"error":  "There was an error with your form. Please double check your details",
				"fields": invalid.Fields,
			})
		case errors.As(err, &vanished):
			c.JSON(http.StatusConflict, gin.H{
				"error":      vanishedMessage,
				"product_id": vanished.ProductID,
				"redirect":   "/api/v1/bag",
			})
		case errors.Is(err, pricing.ErrEmptyBag):
			c.JSON(http.StatusConflict, gin.H{"error": "There are no items in your bag currently"})
		default:
			s.logger.Error("Failed to materialize order", zap.String("intent_id", intentID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create order"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"order":    order,
		"redirect": "/api/v1/checkout-success/" + order.OrderNumber,
	})
}

// checkoutSuccess is safe to revisit: the profile attach is an idempotent
// upsert and clearing an absent bag is a no-op.
func (s *Server) checkoutSuccess(c *gin.Context) {
	orderNumber := c.Param("order_number")

	order, err := s.checkout.OrderByNumber(c.Request.Context(), orderNumber)
	if err != nil {
		if errors.Is(err, checkout.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load order"})
		return
	}

	if actor := actorID(c); actor != "" {
		prof, err := s.profiles.GetOrCreate(c.Request.Context(), actor)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load profile"})
			return
		}
		order, err = s.checkout.AttachProfile(c.Request.Context(), order, prof.ID)
		if err != nil {
			if errors.Is(err, checkout.ErrProfileMismatch) {
				c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to attach profile"})
			return
		}
	}

	if session := sessionID(c); session != "" {
		if err := s.checkout.ClearBag(c.Request.Context(), session); err != nil {
			s.logger.Warn("Failed to clear bag after checkout",
				zap.String("session", session), zap.Error(err))
		}
	}

	if s.notifier != nil {
		s.notifier.OrderPlaced(&notify.OrderPlaced{
			OrderNumber: order.OrderNumber,
			Email:       order.Email,
			GrandTotal:  order.GrandTotal.StringFixed(2),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Your order was successfully placed!",
		"order":   order,
	})
}
