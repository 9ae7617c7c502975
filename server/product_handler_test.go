package server

import (
	"net/http"
	"testing"

	"github.com/example/storefront/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func adminHeaders() map[string]string {
	return map[string]string{roleHeader: "admin"}
}

func TestListProducts(t *testing.T) {
	h := newTestServer()
	h.addProduct("1", "First Edition", "30.00")
	h.addProduct("2", "Paperback", "8.00")

	w := h.do(http.MethodGet, "/api/v1/products", nil, nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), decodeBody(w)["total"])
}

func TestListProductsEmptySearchRejected(t *testing.T) {
	h := newTestServer()

	w := h.do(http.MethodGet, "/api/v1/products?q=", nil, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "No search criteria entered", decodeBody(w)["error"])
}

func TestGetProductNotFound(t *testing.T) {
	h := newTestServer()

	w := h.do(http.MethodGet, "/api/v1/products/missing", nil, nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateProductRequiresAdmin(t *testing.T) {
	h := newTestServer()

	w := h.do(http.MethodPost, "/api/v1/products", map[string]interface{}{
		"name":  "Paperback",
		"price": "8.00",
	}, nil)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, h.catalog.products)
}

func TestCreateProductGenericForm(t *testing.T) {
	h := newTestServer()

	w := h.do(http.MethodPost, "/api/v1/products", map[string]interface{}{
		"sku":   "pb-001",
		"name":  "Paperback",
		"price": "8.00",
	}, adminHeaders())

	require.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, h.catalog.products, 1)
	for _, p := range h.catalog.products {
		assert.Equal(t, "Paperback", p.Name)
		assert.Equal(t, "8.00", p.Price.StringFixed(2))
		assert.NotEmpty(t, p.ID)
	}
}

func TestCreateProductBookFormValidation(t *testing.T) {
	h := newTestServer()
	h.catalog.categories = []models.Category{{ID: 1, Name: "books"}}

	w := h.do(http.MethodPost, "/api/v1/products?category=books", map[string]interface{}{
		"name":  "Untitled",
		"price": "12.00",
	}, adminHeaders())

	require.Equal(t, http.StatusBadRequest, w.Code)
	fields, ok := decodeBody(w)["fields"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, fields, "author")
}

func TestCreateProductBookFormStoresDetails(t *testing.T) {
	h := newTestServer()
	h.catalog.categories = []models.Category{{ID: 1, Name: "books"}}

	w := h.do(http.MethodPost, "/api/v1/products?category=books", map[string]interface{}{
		"name":   "Collected Stories",
		"price":  "12.00",
		"author": "M. Writer",
	}, adminHeaders())

	require.Equal(t, http.StatusCreated, w.Code)
	for _, p := range h.catalog.products {
		require.NotNil(t, p.CategoryID)
		assert.Equal(t, uint(1), *p.CategoryID)
		assert.Contains(t, p.Details, "M. Writer")
	}
}

func TestCreateProductUnknownCategory(t *testing.T) {
	h := newTestServer()

	w := h.do(http.MethodPost, "/api/v1/products?category=gadgets", map[string]interface{}{
		"name":  "Widget",
		"price": "5.00",
	}, adminHeaders())

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, h.catalog.products)
}

func TestUpdateProductUsesStoredCategoryForm(t *testing.T) {
	h := newTestServer()
	category := models.Category{ID: 1, Name: "books"}
	h.catalog.categories = []models.Category{category}
	h.catalog.products["p1"] = &models.Product{
		ID:         "p1",
		Name:       "Old Title",
		CategoryID: &category.ID,
		Category:   &category,
	}

	// missing author fails the book form even though the client sent none
	w := h.do(http.MethodPut, "/api/v1/products/p1", map[string]interface{}{
		"name":  "New Title",
		"price": "15.00",
	}, adminHeaders())

	require.Equal(t, http.StatusBadRequest, w.Code)
	fields, ok := decodeBody(w)["fields"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, fields, "author")
	assert.Equal(t, "Old Title", h.catalog.products["p1"].Name)
}

func TestDeleteProducts(t *testing.T) {
	h := newTestServer()
	h.addProduct("1", "First Edition", "30.00")
	h.addProduct("2", "Paperback", "8.00")

	w := h.do(http.MethodDelete, "/api/v1/products", map[string]interface{}{
		"ids": []string{"1", "2", "ghost"},
	}, adminHeaders())

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(w)
	assert.Equal(t, float64(2), body["deleted"])
	assert.Equal(t, "Deleted 2 item(s)", body["message"])
	assert.Empty(t, h.catalog.products)
}
