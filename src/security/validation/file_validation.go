package validation

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/username/dompetku/backend/src/logger"
)

// allowedAvatarContentTypes is the set of image types accepted for avatar uploads.
var allowedAvatarContentTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/webp": true,
}

// ValidateAvatarContentByMagicBytes checks the actual file content signature
// (magic bytes) to make sure an avatar upload really is an image, regardless
// of the client-declared Content-Type. It returns the detected type and
// resets the read pointer for the caller.
func ValidateAvatarContentByMagicBytes(file io.ReadSeeker) (string, error) {
	if file == nil {
		return "", fmt.Errorf("file is nil")
	}

	buffer := make([]byte, 512)
	n, err := file.Read(buffer)
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read file for content type checking: %w", err)
	}

	// Reset the read pointer so the caller can store the whole file.
	if _, seekErr := file.Seek(0, io.SeekStart); seekErr != nil {
		return "", fmt.Errorf("failed to reset file read pointer: %w", seekErr)
	}

	if n == 0 {
		return "", fmt.Errorf("file is empty")
	}

	detectedContentType := http.DetectContentType(buffer[:n])
	detectedContentType = strings.ToLower(strings.Split(detectedContentType, ";")[0])

	if !allowedAvatarContentTypes[detectedContentType] {
		logger.L.Warn("Disallowed avatar content type", "detectedContentType", detectedContentType)
		return detectedContentType, fmt.Errorf("detected file content type '%s' is not an allowed image format", detectedContentType)
	}

	return detectedContentType, nil
}
