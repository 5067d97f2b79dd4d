package domain

import (
	"path/filepath"
	"strings"
)

// imageExtensions lists the file types ingested as single-page images.
var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".bmp":  true,
	".gif":  true,
}

// IsImageFile reports whether name has a supported image extension.
func IsImageFile(name string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(name))]
}

// IsPDFFile reports whether name has a .pdf extension.
func IsPDFFile(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".pdf")
}

// IsSupportedFile reports whether name can be ingested.
func IsSupportedFile(name string) bool {
	return IsPDFFile(name) || IsImageFile(name)
}

// ValidateCollectionName rejects names that cannot be used as a directory name.
func ValidateCollectionName(name string) error {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || filepath.Base(name) != name {
		return &invalidNameError{name: name}
	}
	return nil
}

type invalidNameError struct {
	name string
}

func (e *invalidNameError) Error() string {
	return "invalid input: invalid collection name " + `"` + e.name + `"`
}

func (e *invalidNameError) Is(target error) bool {
	return target == ErrInvalidInput
}
