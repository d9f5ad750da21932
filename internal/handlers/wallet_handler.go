package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/orientanurag/upnext-mvp/internal/services"
)

type WalletHandler struct {
	wallets   *services.WalletService
	validator *services.ValidationHelper
}

func NewWalletHandler(wallets *services.WalletService) *WalletHandler {
	return &WalletHandler{
		wallets:   wallets,
		validator: services.NewValidationHelper(),
	}
}

// AddFunds tops up a wallet
// @Summary Add funds
// @Description Credit a user's wallet, creating it on first top-up
// @Tags wallet
// @Accept json
// @Produce json
// @Param request body object{userId=string,amount=int64} true "Top-up request"
// @Success 200 {object} models.Wallet
// @Failure 400 {object} services.ErrorResponse
// @Router /wallet/funds [post]
func (h *WalletHandler) AddFunds(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"userId" validate:"required"`
		Amount int64  `json:"amount" validate:"required,gt=0"`
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1_048_576)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		services.SendErrorResponse(w, "Invalid request body", http.StatusBadRequest, nil)
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		services.SendErrorResponse(w, "Request body must only contain a single JSON object", http.StatusBadRequest, nil)
		return
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		services.SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	wallet, err := h.wallets.AddFunds(r.Context(), req.UserID, req.Amount)
	if err != nil {
		services.SendErrorResponse(w, err.Error(), services.StatusForError(err), nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(wallet)
}

// GetBalance reads a user's balance
// @Summary Wallet balance
// @Description Current balance for a user; unknown users read as zero
// @Tags wallet
// @Produce json
// @Param userId query string true "User ID"
// @Success 200 {object} object{userId=string,balance=int64}
// @Router /wallet/balance [get]
func (h *WalletHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		services.SendErrorResponse(w, "userId query parameter required", http.StatusBadRequest, nil)
		return
	}

	balance, err := h.wallets.Balance(r.Context(), userID)
	if err != nil {
		services.SendErrorResponse(w, "Failed to fetch balance", http.StatusInternalServerError, nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"userId":  userID,
		"balance": balance,
	})
}

// GetTransactions lists a wallet's ledger entries
// @Summary Wallet history
// @Description Ledger entries for a user's wallet, newest first
// @Tags wallet
// @Produce json
// @Param userId query string true "User ID"
// @Param limit query int false "Maximum results (default 50)"
// @Success 200 {object} object{transactions=[]models.WalletTransaction,count=int}
// @Failure 404 {object} services.ErrorResponse "No wallet for user"
// @Router /wallet/transactions [get]
func (h *WalletHandler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		services.SendErrorResponse(w, "userId query parameter required", http.StatusBadRequest, nil)
		return
	}
	limit := 50
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 && parsed <= 200 {
			limit = parsed
		}
	}

	transactions, err := h.wallets.Transactions(r.Context(), userID, limit)
	if err != nil {
		services.SendErrorResponse(w, "No wallet found for user", services.StatusForError(err), nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"transactions": transactions,
		"count":        len(transactions),
	})
}
