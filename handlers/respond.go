package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/pocketbase/pocketbase/core"
)

// respondError writes a JSON error body with the given status.
func respondError(e *core.RequestEvent, status int, message string) error {
	return e.JSON(status, map[string]any{"error": message})
}

// respondOK writes a 200 JSON response.
func respondOK(e *core.RequestEvent, payload any) error {
	return e.JSON(http.StatusOK, payload)
}

// sanitizeFilename removes characters that are unsafe for filenames.
func sanitizeFilename(s string) string {
	s = strings.ReplaceAll(s, " ", "-")
	s = strings.ReplaceAll(s, "/", "-")
	s = strings.ReplaceAll(s, "\\", "-")
	s = strings.ReplaceAll(s, ":", "-")
	return s
}

// writeFile streams generated bytes as a file. Disposition "inline" opens
// the document in the browser (used for print mode); anything else forces
// a download.
func writeFile(e *core.RequestEvent, contentType, filename, disposition string, data []byte) error {
	if disposition != "inline" {
		disposition = "attachment"
	}
	e.Response.Header().Set("Content-Type", contentType)
	e.Response.Header().Set("Content-Disposition", fmt.Sprintf(`%s; filename="%s"`, disposition, sanitizeFilename(filename)))
	_, err := e.Response.Write(data)
	return err
}
