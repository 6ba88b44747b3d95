package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/username/dompetku/backend/src/database"
	"github.com/username/dompetku/backend/src/logger"
	"github.com/username/dompetku/backend/src/model"
)

type DeleteAccountRequest struct {
	Password string `json:"password"`
}

func (h *UserHandler) DeleteAccountHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		sendJSONError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	var req DeleteAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := model.GetUserByID(database.DB, userID)
	if err != nil {
		logger.L.Error("Failed to get user for account deletion", "userID", userID, "error", err)
		sendJSONError(w, "Failed to retrieve user information", http.StatusInternalServerError)
		return
	}

	// Only local accounts can confirm with a password.
	if user.AuthProvider == "local" {
		if err := user.CheckPassword(req.Password); err != nil {
			logger.L.Warn("Password mismatch for account deletion", "userID", userID)
			sendJSONError(w, "Incorrect password. Account deletion failed.", http.StatusForbidden)
			return
		}
	}

	if err := model.DeleteUser(database.DB, userID); err != nil {
		logger.L.Error("Failed to delete user account", "userID", userID, "error", err)
		sendJSONError(w, "Failed to delete account", http.StatusInternalServerError)
		return
	}

	if user.AvatarKey != "" {
		if err := h.avatarStore.Delete(user.AvatarKey); err != nil {
			logger.L.Warn("Failed to delete avatar blob for deleted account", "userID", userID, "error", err)
		}
	}

	h.reportService.InvalidateUserCache(userID)

	logger.L.Info("Account deleted successfully", "userID", userID)
	w.WriteHeader(http.StatusNoContent)
}

// HandleCheckUserData reports whether the user has any stored data. The
// frontend uses it to decide between a welcome screen and the dashboard.
func (h *UserHandler) HandleCheckUserData(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		sendJSONError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	var transactionCount, budgetCount, goalCount, debtCount int
	row := database.DB.QueryRow(`
		SELECT
			(SELECT COUNT(*) FROM transactions WHERE user_id = ?),
			(SELECT COUNT(*) FROM budgets WHERE user_id = ?),
			(SELECT COUNT(*) FROM goals WHERE user_id = ?),
			(SELECT COUNT(*) FROM debts WHERE user_id = ?)`,
		userID, userID, userID, userID,
	)
	if err := row.Scan(&transactionCount, &budgetCount, &goalCount, &debtCount); err != nil {
		logger.L.Error("Failed to count user data", "userID", userID, "error", err)
		sendJSONError(w, "Failed to check user data", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"has_data":          transactionCount+budgetCount+goalCount+debtCount > 0,
		"transaction_count": transactionCount,
		"budget_count":      budgetCount,
		"goal_count":        goalCount,
		"debt_count":        debtCount,
	})
}
