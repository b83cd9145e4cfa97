package enums

import "fmt"

// FileType is the coarse media kind recorded for an uploaded file.
type FileType string

const (
	FileTypeImage    FileType = "image"
	FileTypeDocument FileType = "document"
)

var validFileTypes = []FileType{
	FileTypeImage,
	FileTypeDocument,
}

// String implements fmt.Stringer.
func (f FileType) String() string {
	return string(f)
}

// IsValid reports whether the value is a known FileType.
func (f FileType) IsValid() bool {
	for _, candidate := range validFileTypes {
		if candidate == f {
			return true
		}
	}
	return false
}

// ParseFileType converts raw input into a FileType.
func ParseFileType(value string) (FileType, error) {
	for _, candidate := range validFileTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid file type %q", value)
}
