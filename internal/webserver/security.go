package webserver

import (
	"fmt"
	"mime/multipart"
	"strings"
)

// ValidateUpload rejects uploads the pipeline should never see: empty or
// traversal filenames and files over the configured size cap. Content is not
// inspected; the service accepts any file type.
func ValidateUpload(header *multipart.FileHeader, maxBytes int64) error {
	name := strings.TrimSpace(header.Filename)
	if name == "" {
		return fmt.Errorf("filename cannot be empty")
	}
	if strings.Contains(name, "..") || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("invalid filename %q: contains path characters", name)
	}
	if header.Size > maxBytes {
		return fmt.Errorf("file %q too large: %d bytes (max %d)", name, header.Size, maxBytes)
	}
	return nil
}

// SanitizeFilename strips characters that would be unsafe to echo back in
// results or logs. An empty result falls back to "upload".
func SanitizeFilename(filename string) string {
	replacer := strings.NewReplacer(
		"/", "", `\`, "", "..", "", ":", "",
		"*", "", "?", "", "<", "", ">", "", "|", "",
	)
	filename = strings.TrimSpace(replacer.Replace(filename))
	if filename == "" {
		return "upload"
	}
	return filename
}
