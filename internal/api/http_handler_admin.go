package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"pos-terminal-service/internal/auth"
	"pos-terminal-service/internal/domain"
	"pos-terminal-service/internal/store"
)

// --- Auth Handlers ---

// LoginInput defines the expected login credentials.
type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the session token and the operator it belongs to.
type LoginResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

func (h *HTTPHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input LoginInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	defer r.Body.Close()

	if err := h.validate.Struct(input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	user, token, err := h.auth.Login(r.Context(), input.Username, input.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			respondWithError(w, http.StatusUnauthorized, "Invalid username or password")
		} else {
			log.Printf("ERROR: Login failed: %v", err)
			respondWithError(w, http.StatusInternalServerError, "Failed to log in")
		}
		return
	}

	respondWithJSON(w, http.StatusOK, LoginResponse{Token: token, User: *user})
}

// Logout exists for client symmetry. Sessions are stateless bearer tokens,
// so the server has nothing to invalidate; the client discards its token.
func (h *HTTPHandler) Logout(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusNoContent, nil)
}

// --- User Handlers ---

// UserCreateInput defines the expected input for creating an operator.
type UserCreateInput struct {
	Username string `json:"username" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Role     string `json:"role" validate:"required,oneof=admin manager cashier"`
	Password string `json:"password" validate:"required,min=6"`
}

func (h *HTTPHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var input UserCreateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	defer r.Body.Close()

	if err := h.validate.Struct(input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		log.Printf("ERROR: Password hashing failed: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to create user")
		return
	}

	created, err := h.users.AddUser(r.Context(), domain.User{
		Username:     input.Username,
		Email:        input.Email,
		Role:         domain.Role(input.Role),
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, store.ErrUsernameExists) {
			respondWithError(w, http.StatusConflict, store.ErrUsernameExists.Error())
		} else {
			log.Printf("ERROR: AddUser store operation failed: %v", err)
			respondWithError(w, http.StatusInternalServerError, "Failed to create user")
		}
		return
	}

	respondWithJSON(w, http.StatusCreated, created)
}

func (h *HTTPHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListUsers(r.Context())
	if err != nil {
		log.Printf("ERROR: ListUsers store operation failed: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to retrieve users")
		return
	}
	respondWithJSON(w, http.StatusOK, users)
}

// UserUpdateInput defines the expected input for a partial user update.
type UserUpdateInput struct {
	Username *string `json:"username" validate:"omitempty,max=100"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Role     *string `json:"role" validate:"omitempty,oneof=admin manager cashier"`
}

func (h *HTTPHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	var input UserUpdateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	defer r.Body.Close()

	if err := h.validate.Struct(input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	updates := store.UserUpdate{Username: input.Username, Email: input.Email}
	if input.Role != nil {
		role := domain.Role(*input.Role)
		updates.Role = &role
	}

	updated, err := h.users.UpdateUser(r.Context(), userID, updates)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrUserNotFound):
			respondWithError(w, http.StatusNotFound, store.ErrUserNotFound.Error())
		case errors.Is(err, store.ErrUsernameExists):
			respondWithError(w, http.StatusConflict, store.ErrUsernameExists.Error())
		default:
			log.Printf("ERROR: UpdateUser store operation for ID %s failed: %v", userID, err)
			respondWithError(w, http.StatusInternalServerError, "Failed to update user")
		}
		return
	}

	respondWithJSON(w, http.StatusOK, updated)
}

func (h *HTTPHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	if err := h.users.DeleteUser(r.Context(), userID); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			respondWithError(w, http.StatusNotFound, store.ErrUserNotFound.Error())
		} else {
			log.Printf("ERROR: DeleteUser store operation for ID %s failed: %v", userID, err)
			respondWithError(w, http.StatusInternalServerError, "Failed to delete user")
		}
		return
	}

	respondWithJSON(w, http.StatusNoContent, nil)
}

// PasswordChangeInput defines the expected input for a password change.
type PasswordChangeInput struct {
	Password string `json:"password" validate:"required,min=6"`
}

func (h *HTTPHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	var input PasswordChangeInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	defer r.Body.Close()

	if err := h.validate.Struct(input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		log.Printf("ERROR: Password hashing failed: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to change password")
		return
	}

	if err := h.users.SetPassword(r.Context(), userID, hash); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			respondWithError(w, http.StatusNotFound, store.ErrUserNotFound.Error())
		} else {
			log.Printf("ERROR: SetPassword store operation for ID %s failed: %v", userID, err)
			respondWithError(w, http.StatusInternalServerError, "Failed to change password")
		}
		return
	}

	respondWithJSON(w, http.StatusNoContent, nil)
}

// --- Settings Handlers ---

func (h *HTTPHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settings.GetSettings(r.Context())
	if err != nil {
		log.Printf("ERROR: GetSettings store operation failed: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to retrieve settings")
		return
	}
	respondWithJSON(w, http.StatusOK, settings)
}

// SettingsInput defines the full settings document; PUT replaces it.
type SettingsInput struct {
	StoreName         string  `json:"store_name" validate:"required,max=255"`
	Address           string  `json:"address" validate:"max=500"`
	Phone             string  `json:"phone" validate:"max=50"`
	Email             string  `json:"email" validate:"omitempty,email"`
	TaxRate           float64 `json:"tax_rate" validate:"gte=0,lte=1"`
	Currency          string  `json:"currency" validate:"required,len=3"`
	ReceiptHeader     string  `json:"receipt_header" validate:"max=500"`
	ReceiptFooter     string  `json:"receipt_footer" validate:"max=500"`
	LowStockThreshold int     `json:"low_stock_threshold" validate:"gte=0"`
}

func (h *HTTPHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var input SettingsInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	defer r.Body.Close()

	if err := h.validate.Struct(input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	updated, err := h.settings.UpdateSettings(r.Context(), domain.Settings{
		StoreName:         input.StoreName,
		Address:           input.Address,
		Phone:             input.Phone,
		Email:             input.Email,
		TaxRate:           decimal.NewFromFloat(input.TaxRate),
		Currency:          input.Currency,
		ReceiptHeader:     input.ReceiptHeader,
		ReceiptFooter:     input.ReceiptFooter,
		LowStockThreshold: input.LowStockThreshold,
	})
	if err != nil {
		log.Printf("ERROR: UpdateSettings store operation failed: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to update settings")
		return
	}

	respondWithJSON(w, http.StatusOK, updated)
}
