package constants

import (
	"path/filepath"
	"strings"
)

type FileKind int

const (
	FileUnknown FileKind = iota
	FileDocument
	FileImage
)

// DetectFileKind classifies an uploaded enrollment attachment by extension.
// Query strings on stored URLs are ignored.
func DetectFileKind(name string) FileKind {
	if i := strings.IndexAny(name, "?#"); i >= 0 {
		name = name[:i]
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf", ".doc", ".docx":
		return FileDocument
	case ".png", ".jpg", ".jpeg", ".webp":
		return FileImage
	default:
		return FileUnknown
	}
}
