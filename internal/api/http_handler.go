package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"pos-terminal-service/internal/auth"
	"pos-terminal-service/internal/domain"
	"pos-terminal-service/internal/pos"
	"pos-terminal-service/internal/store"
)

// Deps bundles the stores and services the HTTP layer depends on.
type Deps struct {
	Catalog      store.CatalogStorer
	Transactions store.TransactionStorer
	Inventory    store.InventoryStorer
	Users        store.UserStorer
	Settings     store.SettingsStorer
	Cart         *pos.Cart
	Recorder     *pos.Recorder
	Auth         *auth.Service
}

// HTTPHandler holds dependencies for HTTP handlers.
type HTTPHandler struct {
	catalog      store.CatalogStorer
	transactions store.TransactionStorer
	inventory    store.InventoryStorer
	users        store.UserStorer
	settings     store.SettingsStorer
	cart         *pos.Cart
	recorder     *pos.Recorder
	auth         *auth.Service
	validate     *validator.Validate
}

// NewHTTPHandler creates a new HTTPHandler with dependencies.
func NewHTTPHandler(d Deps) *HTTPHandler {
	return &HTTPHandler{
		catalog:      d.Catalog,
		transactions: d.Transactions,
		inventory:    d.Inventory,
		users:        d.Users,
		settings:     d.Settings,
		cart:         d.Cart,
		recorder:     d.Recorder,
		auth:         d.Auth,
		validate:     validator.New(),
	}
}

// --- Helpers ---

// ErrorResponse defines the structure for JSON error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, ErrorResponse{Error: message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil { // Avoid writing empty body for 204 No Content
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			log.Printf("ERROR: Failed to encode JSON response: %v", err)
			http.Error(w, `{"error": "Internal server error during JSON encoding"}`, http.StatusInternalServerError)
		}
	}
}

// actorFromRequest builds the audit-log attribution from the authenticated
// operator's claims.
func actorFromRequest(r *http.Request) store.Actor {
	if claims, ok := auth.ClaimsFromContext(r.Context()); ok {
		return store.Actor{ID: claims.UserID, Name: claims.Username}
	}
	return store.Actor{ID: "system", Name: "System"}
}

// --- Product Handlers ---

// ProductCreateInput defines the expected input for creating a product.
type ProductCreateInput struct {
	Name        string  `json:"name" validate:"required,max=255"`
	SKU         string  `json:"sku" validate:"required,max=100"`
	Price       float64 `json:"price" validate:"required,gte=0"`
	Cost        float64 `json:"cost" validate:"gte=0"`
	Stock       int     `json:"stock" validate:"gte=0"`
	Category    string  `json:"category" validate:"required,max=255"`
	Barcode     *string `json:"barcode" validate:"omitempty,max=64"`
	Description *string `json:"description" validate:"omitempty"`
	ImageURL    *string `json:"image_url" validate:"omitempty,url,max=2048"`
}

func (h *HTTPHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var input ProductCreateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	defer r.Body.Close()

	if err := h.validate.Struct(input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	created, err := h.catalog.AddProduct(r.Context(), store.NewProduct{
		Name:        input.Name,
		SKU:         input.SKU,
		Price:       decimal.NewFromFloat(input.Price),
		Cost:        decimal.NewFromFloat(input.Cost),
		Stock:       input.Stock,
		Category:    input.Category,
		Barcode:     input.Barcode,
		Description: input.Description,
		ImageURL:    input.ImageURL,
	}, actorFromRequest(r))
	if err != nil {
		log.Printf("ERROR: AddProduct store operation failed: %v", err)
		if errors.Is(err, store.ErrProductSKUExists) {
			respondWithError(w, http.StatusConflict, store.ErrProductSKUExists.Error())
		} else {
			respondWithError(w, http.StatusInternalServerError, "Failed to create product")
		}
		return
	}

	respondWithJSON(w, http.StatusCreated, created)
}

func (h *HTTPHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	qParams := r.URL.Query()

	var (
		products []domain.Product
		err      error
	)
	switch {
	case qParams.Get("q") != "":
		products, err = h.catalog.SearchProducts(r.Context(), qParams.Get("q"))
	case qParams.Get("category") != "":
		products, err = h.catalog.GetProductsByCategory(r.Context(), qParams.Get("category"))
	default:
		products, err = h.catalog.ListProducts(r.Context())
	}
	if err != nil {
		log.Printf("ERROR: ListProducts store operation failed: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to retrieve products")
		return
	}

	respondWithJSON(w, http.StatusOK, products)
}

func (h *HTTPHandler) GetProductByID(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")

	product, err := h.catalog.GetProductByID(r.Context(), productID)
	if err != nil {
		if errors.Is(err, store.ErrProductNotFound) {
			respondWithError(w, http.StatusNotFound, store.ErrProductNotFound.Error())
		} else {
			log.Printf("ERROR: GetProductByID store operation for ID %s failed: %v", productID, err)
			respondWithError(w, http.StatusInternalServerError, "Failed to retrieve product")
		}
		return
	}
	respondWithJSON(w, http.StatusOK, product)
}

// ProductUpdateInput defines the expected input for a partial product
// update. Stock is absent on purpose: stock changes go through the stock
// adjustment endpoint so they always land in the audit log.
type ProductUpdateInput struct {
	Name        *string  `json:"name" validate:"omitempty,max=255"`
	SKU         *string  `json:"sku" validate:"omitempty,max=100"`
	Price       *float64 `json:"price" validate:"omitempty,gte=0"`
	Cost        *float64 `json:"cost" validate:"omitempty,gte=0"`
	Category    *string  `json:"category" validate:"omitempty,max=255"`
	Barcode     *string  `json:"barcode" validate:"omitempty,max=64"`
	Description *string  `json:"description" validate:"omitempty"`
	ImageURL    *string  `json:"image_url" validate:"omitempty,url,max=2048"`
}

func (h *HTTPHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")

	var input ProductUpdateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	defer r.Body.Close()

	if err := h.validate.Struct(input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	updates := store.ProductUpdate{
		Name:        input.Name,
		SKU:         input.SKU,
		Category:    input.Category,
		Barcode:     input.Barcode,
		Description: input.Description,
		ImageURL:    input.ImageURL,
	}
	if input.Price != nil {
		price := decimal.NewFromFloat(*input.Price)
		updates.Price = &price
	}
	if input.Cost != nil {
		cost := decimal.NewFromFloat(*input.Cost)
		updates.Cost = &cost
	}

	updated, err := h.catalog.UpdateProduct(r.Context(), productID, updates)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrProductNotFound):
			respondWithError(w, http.StatusNotFound, store.ErrProductNotFound.Error())
		case errors.Is(err, store.ErrProductSKUExists):
			respondWithError(w, http.StatusConflict, store.ErrProductSKUExists.Error())
		default:
			log.Printf("ERROR: UpdateProduct store operation for ID %s failed: %v", productID, err)
			respondWithError(w, http.StatusInternalServerError, "Failed to update product")
		}
		return
	}

	respondWithJSON(w, http.StatusOK, updated)
}

func (h *HTTPHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")

	if err := h.catalog.DeleteProduct(r.Context(), productID); err != nil {
		if errors.Is(err, store.ErrProductNotFound) {
			respondWithError(w, http.StatusNotFound, store.ErrProductNotFound.Error())
		} else {
			log.Printf("ERROR: DeleteProduct store operation for ID %s failed: %v", productID, err)
			respondWithError(w, http.StatusInternalServerError, "Failed to delete product")
		}
		return
	}

	respondWithJSON(w, http.StatusNoContent, nil)
}

// StockAdjustInput defines the expected input for a manual stock mutation.
// For stock_in/stock_out the quantity is a delta; for adjustment it is the
// absolute stock level to set.
type StockAdjustInput struct {
	Type     string `json:"type" validate:"required,oneof=stock_in stock_out adjustment"`
	Quantity int    `json:"quantity" validate:"gte=0"`
	Reason   string `json:"reason" validate:"max=255"`
}

func (h *HTTPHandler) AdjustStock(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")

	var input StockAdjustInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	defer r.Body.Close()

	if err := h.validate.Struct(input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	updated, err := h.catalog.AdjustStock(r.Context(), productID,
		domain.InventoryLogType(input.Type), input.Quantity, input.Reason, actorFromRequest(r))
	if err != nil {
		switch {
		case errors.Is(err, store.ErrProductNotFound):
			respondWithError(w, http.StatusNotFound, store.ErrProductNotFound.Error())
		case errors.Is(err, store.ErrInsufficientStock):
			respondWithError(w, http.StatusConflict, "Not enough stock available")
		default:
			log.Printf("ERROR: AdjustStock store operation for ID %s failed: %v", productID, err)
			respondWithError(w, http.StatusInternalServerError, "Failed to adjust stock")
		}
		return
	}

	respondWithJSON(w, http.StatusOK, updated)
}

// --- Category Handlers ---

// CategoryCreateInput defines the expected input for creating a category.
type CategoryCreateInput struct {
	Name        string  `json:"name" validate:"required,max=255"`
	Description *string `json:"description" validate:"omitempty"`
}

func (h *HTTPHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var input CategoryCreateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	defer r.Body.Close()

	if err := h.validate.Struct(input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	created, err := h.catalog.AddCategory(r.Context(), input.Name, input.Description)
	if err != nil {
		if errors.Is(err, store.ErrCategoryNameExists) {
			respondWithError(w, http.StatusConflict, store.ErrCategoryNameExists.Error())
		} else {
			log.Printf("ERROR: AddCategory store operation failed: %v", err)
			respondWithError(w, http.StatusInternalServerError, "Failed to create category")
		}
		return
	}

	respondWithJSON(w, http.StatusCreated, created)
}

func (h *HTTPHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.ListCategories(r.Context())
	if err != nil {
		log.Printf("ERROR: ListCategories store operation failed: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to retrieve categories")
		return
	}
	respondWithJSON(w, http.StatusOK, categories)
}

// --- Route Registration ---

// RegisterRoutes sets up the HTTP routes for the service. Each group lists
// every role permitted on it; the role set is flat, so admin appears
// explicitly wherever admin access is intended.
func (h *HTTPHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", h.Login)

		r.Group(func(r chi.Router) {
			r.Use(h.auth.RequireAuth)
			r.Post("/auth/logout", h.Logout)

			// Catalog reads: every operator browses products at the register.
			r.Group(func(r chi.Router) {
				r.Use(auth.RequireRole(domain.RoleAdmin, domain.RoleManager, domain.RoleCashier))
				r.Get("/products", h.ListProducts)
				r.Get("/products/{productId}", h.GetProductByID)
				r.Get("/categories", h.ListCategories)
			})

			// Inventory management, history, and analytics.
			r.Group(func(r chi.Router) {
				r.Use(auth.RequireRole(domain.RoleAdmin, domain.RoleManager))
				r.Post("/products", h.CreateProduct)
				r.Put("/products/{productId}", h.UpdateProduct)
				r.Delete("/products/{productId}", h.DeleteProduct)
				r.Post("/products/{productId}/stock", h.AdjustStock)
				r.Post("/categories", h.CreateCategory)
				r.Get("/transactions", h.ListTransactions)
				r.Get("/transactions/export", h.ExportTransactions)
				r.Get("/transactions/{transactionId}", h.GetTransactionByID)
				r.Get("/inventory/logs", h.ListInventoryLogs)
				r.Get("/reports/dashboard", h.DashboardReport)
				r.Get("/reports/sales", h.SalesReport)
			})

			// The register itself.
			r.Group(func(r chi.Router) {
				r.Use(auth.RequireRole(domain.RoleAdmin, domain.RoleCashier))
				r.Get("/cart", h.GetCart)
				r.Post("/cart", h.AddToCart)
				r.Put("/cart/{productId}", h.UpdateCartQuantity)
				r.Put("/cart/{productId}/discount", h.SetCartItemDiscount)
				r.Delete("/cart/{productId}", h.RemoveFromCart)
				r.Delete("/cart", h.ClearCart)
				r.Post("/checkout", h.Checkout)
			})

			// Administration.
			r.Group(func(r chi.Router) {
				r.Use(auth.RequireRole(domain.RoleAdmin))
				r.Get("/users", h.ListUsers)
				r.Post("/users", h.CreateUser)
				r.Put("/users/{userId}", h.UpdateUser)
				r.Delete("/users/{userId}", h.DeleteUser)
				r.Put("/users/{userId}/password", h.ChangePassword)
				r.Get("/settings", h.GetSettings)
				r.Put("/settings", h.UpdateSettings)
			})
		})
	})
}
