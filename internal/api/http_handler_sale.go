package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"pos-terminal-service/internal/auth"
	"pos-terminal-service/internal/domain"
	"pos-terminal-service/internal/pos"
	"pos-terminal-service/internal/report"
	"pos-terminal-service/internal/store"
)

// --- Cart Handlers ---

// CartView is the running state of the register's cart.
type CartView struct {
	Items      []domain.CartItem `json:"items"`
	TotalItems int               `json:"total_items"`
	Subtotal   decimal.Decimal   `json:"subtotal"`
	Tax        decimal.Decimal   `json:"tax"`
	Total      decimal.Decimal   `json:"total"`
}

func (h *HTTPHandler) cartView() CartView {
	subtotal := h.cart.Subtotal()
	total := h.cart.Total()
	return CartView{
		Items:      h.cart.Items(),
		TotalItems: h.cart.TotalItems(),
		Subtotal:   subtotal,
		Tax:        total.Sub(subtotal),
		Total:      total,
	}
}

func (h *HTTPHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.cartView())
}

// CartAddInput defines the expected input for adding a product to the cart.
type CartAddInput struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gte=0"` // 0 means default of 1
}

func (h *HTTPHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	var input CartAddInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	defer r.Body.Close()

	if err := h.validate.Struct(input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	product, err := h.catalog.GetProductByID(r.Context(), input.ProductID)
	if err != nil {
		if errors.Is(err, store.ErrProductNotFound) {
			respondWithError(w, http.StatusNotFound, store.ErrProductNotFound.Error())
		} else {
			log.Printf("ERROR: AddToCart product lookup failed: %v", err)
			respondWithError(w, http.StatusInternalServerError, "Failed to look up product")
		}
		return
	}

	// The cart itself does not validate stock; the register pre-checks
	// availability here and checkout re-validates everything anyway.
	if product.Stock <= 0 {
		respondWithError(w, http.StatusConflict, "Product is out of stock")
		return
	}

	h.cart.Add(*product, input.Quantity)
	respondWithJSON(w, http.StatusOK, h.cartView())
}

// CartQuantityInput defines the expected input for overwriting a line
// item's quantity. Zero removes the line.
type CartQuantityInput struct {
	Quantity int `json:"quantity" validate:"gte=0"`
}

func (h *HTTPHandler) UpdateCartQuantity(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")

	var input CartQuantityInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	defer r.Body.Close()

	if err := h.validate.Struct(input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	if input.Quantity > 0 {
		product, err := h.catalog.GetProductByID(r.Context(), productID)
		if err != nil {
			if errors.Is(err, store.ErrProductNotFound) {
				respondWithError(w, http.StatusNotFound, store.ErrProductNotFound.Error())
			} else {
				log.Printf("ERROR: UpdateCartQuantity product lookup failed: %v", err)
				respondWithError(w, http.StatusInternalServerError, "Failed to look up product")
			}
			return
		}
		if input.Quantity > product.Stock {
			respondWithError(w, http.StatusConflict,
				fmt.Sprintf("Only %d items available in stock", product.Stock))
			return
		}
	}

	h.cart.SetQuantity(productID, input.Quantity)
	respondWithJSON(w, http.StatusOK, h.cartView())
}

// CartDiscountInput defines the per-item discount percentage input.
type CartDiscountInput struct {
	Discount float64 `json:"discount" validate:"gte=0,lte=100"`
}

func (h *HTTPHandler) SetCartItemDiscount(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")

	var input CartDiscountInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	defer r.Body.Close()

	if err := h.validate.Struct(input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	if err := h.cart.SetItemDiscount(productID, decimal.NewFromFloat(input.Discount)); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, h.cartView())
}

func (h *HTTPHandler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	h.cart.Remove(chi.URLParam(r, "productId"))
	respondWithJSON(w, http.StatusOK, h.cartView())
}

func (h *HTTPHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	h.cart.Clear()
	respondWithJSON(w, http.StatusNoContent, nil)
}

// --- Checkout Handler ---

// CheckoutInput defines the expected input for finalizing the sale.
type CheckoutInput struct {
	PaymentMethod string  `json:"payment_method" validate:"required,oneof=cash card digital"`
	Discount      float64 `json:"discount" validate:"gte=0"`
	CashReceived  float64 `json:"cash_received" validate:"gte=0"`
}

// CheckoutResponse is the recorded transaction plus the change due.
type CheckoutResponse struct {
	Transaction domain.Transaction `json:"transaction"`
	ChangeDue   decimal.Decimal    `json:"change_due"`
}

func (h *HTTPHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var input CheckoutInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	defer r.Body.Close()

	if err := h.validate.Struct(input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	result, err := h.recorder.Checkout(r.Context(), pos.CheckoutRequest{
		Items:         h.cart.Items(),
		PaymentMethod: domain.PaymentMethod(input.PaymentMethod),
		CashierID:     claims.UserID,
		CashierName:   claims.Username,
		OrderDiscount: decimal.NewFromFloat(input.Discount),
		CashReceived:  decimal.NewFromFloat(input.CashReceived),
	})
	if err != nil {
		switch {
		case errors.Is(err, pos.ErrEmptyCart):
			respondWithError(w, http.StatusBadRequest, "Cart is empty")
		case errors.Is(err, pos.ErrInsufficientCash):
			respondWithError(w, http.StatusBadRequest, "Insufficient cash received")
		case errors.Is(err, store.ErrInsufficientStock):
			respondWithError(w, http.StatusConflict, "Not enough stock to complete the sale")
		case errors.Is(err, store.ErrProductNotFound):
			respondWithError(w, http.StatusConflict, "A product in the cart is no longer available")
		default:
			log.Printf("ERROR: Checkout failed: %v", err)
			respondWithError(w, http.StatusInternalServerError, "Failed to complete checkout")
		}
		return
	}

	h.cart.Clear()
	respondWithJSON(w, http.StatusCreated, CheckoutResponse{
		Transaction: result.Transaction,
		ChangeDue:   result.ChangeDue,
	})
}

// --- Transaction Handlers ---

func (h *HTTPHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 0 {
			respondWithError(w, http.StatusBadRequest, "Invalid limit format")
			return
		}
		limit = parsed
	}

	transactions, err := h.transactions.GetTransactions(r.Context(), limit)
	if err != nil {
		log.Printf("ERROR: GetTransactions store operation failed: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to retrieve transactions")
		return
	}
	respondWithJSON(w, http.StatusOK, transactions)
}

func (h *HTTPHandler) GetTransactionByID(w http.ResponseWriter, r *http.Request) {
	transactionID := chi.URLParam(r, "transactionId")

	tx, err := h.transactions.GetTransactionByID(r.Context(), transactionID)
	if err != nil {
		if errors.Is(err, store.ErrTransactionNotFound) {
			respondWithError(w, http.StatusNotFound, store.ErrTransactionNotFound.Error())
		} else {
			log.Printf("ERROR: GetTransactionByID store operation for ID %s failed: %v", transactionID, err)
			respondWithError(w, http.StatusInternalServerError, "Failed to retrieve transaction")
		}
		return
	}
	respondWithJSON(w, http.StatusOK, tx)
}

func (h *HTTPHandler) ExportTransactions(w http.ResponseWriter, r *http.Request) {
	transactions, err := h.transactions.GetTransactions(r.Context(), 0)
	if err != nil {
		log.Printf("ERROR: ExportTransactions store operation failed: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to retrieve transactions")
		return
	}

	filename := "transactions_" + time.Now().UTC().Format("2006-01-02") + ".csv"
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	if err := report.WriteTransactionsCSV(w, transactions); err != nil {
		log.Printf("ERROR: Writing transaction CSV failed: %v", err)
	}
}

// --- Inventory Log Handler ---

func (h *HTTPHandler) ListInventoryLogs(w http.ResponseWriter, r *http.Request) {
	productID := r.URL.Query().Get("product_id")
	respondWithJSON(w, http.StatusOK, h.inventory.GetInventoryLogs(r.Context(), productID))
}

// --- Report Handlers ---

func (h *HTTPHandler) DashboardReport(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ListProducts(r.Context())
	if err != nil {
		log.Printf("ERROR: DashboardReport product listing failed: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to compute dashboard stats")
		return
	}
	transactions, err := h.transactions.GetTransactions(r.Context(), 0)
	if err != nil {
		log.Printf("ERROR: DashboardReport transaction listing failed: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to compute dashboard stats")
		return
	}
	settings, err := h.settings.GetSettings(r.Context())
	if err != nil {
		log.Printf("ERROR: DashboardReport settings lookup failed: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to compute dashboard stats")
		return
	}

	respondWithJSON(w, http.StatusOK, report.Dashboard(products, transactions, settings.LowStockThreshold))
}

func (h *HTTPHandler) SalesReport(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = time.Now().UTC().Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", date); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid date format, expected yyyy-mm-dd")
		return
	}

	transactions, err := h.transactions.GetTransactions(r.Context(), 0)
	if err != nil {
		log.Printf("ERROR: SalesReport transaction listing failed: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to compute sales report")
		return
	}
	respondWithJSON(w, http.StatusOK, report.Daily(transactions, date))
}
