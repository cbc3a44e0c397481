package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/AnshRaj112/pinvent-backend/internal/services"
)

const maxImageUpload = 10 << 20

type ProductRequest struct {
	Name        string `json:"name"`
	SKU         string `json:"sku"`
	Category    string `json:"category"`
	Quantity    string `json:"quantity"`
	Price       string `json:"price"`
	Description string `json:"description"`
}

func (p ProductRequest) input() services.ProductInput {
	return services.ProductInput{
		Name:        p.Name,
		SKU:         p.SKU,
		Category:    p.Category,
		Quantity:    p.Quantity,
		Price:       p.Price,
		Description: p.Description,
	}
}

type ProductHandler struct {
	products *services.ProductService
	log      *zap.Logger
}

func NewProductHandler(products *services.ProductService, log *zap.Logger) *ProductHandler {
	return &ProductHandler{products: products, log: log}
}

// Create handles POST /api/products
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	req, upload, ok := h.readProduct(w, r)
	if !ok {
		return
	}

	defer closeUpload(upload)

	product, err := h.products.Create(r.Context(), user.ID, req.input(), upload)
	if err != nil {
		writeError(w, h.log, err, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusCreated, product)
}

// List handles GET /api/products
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	products, err := h.products.List(r.Context(), user.ID)
	if err != nil {
		writeError(w, h.log, err, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

// Get handles GET /api/products/{id}
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	product, err := h.products.Get(r.Context(), user.ID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.log, err, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// Delete handles DELETE /api/products/{id} and echoes the removed product.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	product, err := h.products.Delete(r.Context(), user.ID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.log, err, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// Update handles PATCH /api/products/{id}
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	req, upload, ok := h.readProduct(w, r)
	if !ok {
		return
	}

	defer closeUpload(upload)

	product, err := h.products.Update(r.Context(), user.ID, chi.URLParam(r, "id"), req.input(), upload)
	if err != nil {
		writeError(w, h.log, err, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// readProduct accepts either a JSON body or a multipart form with an
// optional "image" file part.
func (h *ProductHandler) readProduct(w http.ResponseWriter, r *http.Request) (ProductRequest, *services.Upload, bool) {
	var req ProductRequest
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return req, nil, decodeJSON(w, r, &req)
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxImageUpload)
	if err := r.ParseMultipartForm(maxImageUpload); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Message: "Invalid form data",
			Code:    string(services.KindValidation),
		})
		return req, nil, false
	}

	req = ProductRequest{
		Name:        r.FormValue("name"),
		SKU:         r.FormValue("sku"),
		Category:    r.FormValue("category"),
		Quantity:    r.FormValue("quantity"),
		Price:       r.FormValue("price"),
		Description: r.FormValue("description"),
	}

	file, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return req, nil, true
	}
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Message: "Invalid image upload",
			Code:    string(services.KindValidation),
		})
		return req, nil, false
	}

	return req, &services.Upload{
		File:        file,
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
	}, true
}

func closeUpload(u *services.Upload) {
	if u == nil {
		return
	}
	if c, ok := u.File.(io.Closer); ok {
		_ = c.Close()
	}
}
