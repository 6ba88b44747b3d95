package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/google/uuid"
	"github.com/username/dompetku/backend/src/config"
	"github.com/username/dompetku/backend/src/database"
	"github.com/username/dompetku/backend/src/logger"
	"github.com/username/dompetku/backend/src/model"
	"github.com/username/dompetku/backend/src/security/validation"
)

// HandleUploadAvatar accepts a multipart form with an "avatar" image, checks
// the content by magic bytes and swaps it in for the user's previous avatar.
func (h *UserHandler) HandleUploadAvatar(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		sendJSONError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, config.Cfg.MaxUploadSizeBytes)
	if err := r.ParseMultipartForm(config.Cfg.MaxUploadSizeBytes); err != nil {
		sendJSONError(w, "Uploaded file is too large", http.StatusRequestEntityTooLarge)
		return
	}

	file, _, err := r.FormFile("avatar")
	if err != nil {
		sendJSONError(w, "Missing avatar file in form data", http.StatusBadRequest)
		return
	}
	defer file.Close()

	contentType, err := validation.ValidateAvatarContentByMagicBytes(file)
	if err != nil {
		logger.L.Warn("Avatar upload rejected by content validation", "userID", userID, "error", err)
		sendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	user, err := model.GetUserByID(database.DB, userID)
	if err != nil {
		logger.L.Error("Failed to get user for avatar upload", "userID", userID, "error", err)
		sendJSONError(w, "User not found", http.StatusNotFound)
		return
	}

	ext := "png"
	if contentType == "image/jpeg" {
		ext = "jpg"
	} else if contentType == "image/webp" {
		ext = "webp"
	}
	newKey := fmt.Sprintf("%s.%s", uuid.New().String(), ext)

	if err := h.avatarStore.Put(newKey, file); err != nil {
		logger.L.Error("Failed to store avatar blob", "userID", userID, "error", err)
		sendJSONError(w, "Failed to store avatar", http.StatusInternalServerError)
		return
	}

	oldKey := user.AvatarKey
	if err := user.UpdateAvatarKey(database.DB, newKey); err != nil {
		logger.L.Error("Failed to update avatar key in DB", "userID", userID, "error", err)
		if delErr := h.avatarStore.Delete(newKey); delErr != nil {
			logger.L.Warn("Failed to clean up orphaned avatar blob", "key", newKey, "error", delErr)
		}
		sendJSONError(w, "Failed to update avatar", http.StatusInternalServerError)
		return
	}

	if oldKey != "" && oldKey != newKey {
		if err := h.avatarStore.Delete(oldKey); err != nil {
			logger.L.Warn("Failed to delete previous avatar blob", "key", oldKey, "error", err)
		}
	}

	logger.L.Info("Avatar updated", "userID", userID, "contentType", contentType)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"avatar_key": newKey})
}

func (h *UserHandler) HandleGetAvatar(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		sendJSONError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	user, err := model.GetUserByID(database.DB, userID)
	if err != nil {
		sendJSONError(w, "User not found", http.StatusNotFound)
		return
	}
	if user.AvatarKey == "" {
		sendJSONError(w, "No avatar set", http.StatusNotFound)
		return
	}

	blob, err := h.avatarStore.Get(user.AvatarKey)
	if err != nil {
		if os.IsNotExist(err) {
			sendJSONError(w, "Avatar not found", http.StatusNotFound)
			return
		}
		logger.L.Error("Failed to read avatar blob", "userID", userID, "error", err)
		sendJSONError(w, "Failed to read avatar", http.StatusInternalServerError)
		return
	}
	defer blob.Close()

	w.Header().Set("Cache-Control", "private, max-age=300")
	if _, err := io.Copy(w, blob); err != nil {
		logger.L.Warn("Failed to stream avatar to client", "userID", userID, "error", err)
	}
}
