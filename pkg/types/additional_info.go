package types

import (
	"encoding/json"
	"strings"
)

// uploadPathMarker identifies values that point at an uploaded file.
const uploadPathMarker = "/uploads/"

// FileReference points at a customer-uploaded file.
type FileReference struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// AdditionalInfoValue is either plain text or a reference to an uploaded
// file. The upload portal historically submitted file references as the
// composite string "label (url)"; that form is still accepted on input
// but is stored structured.
type AdditionalInfoValue struct {
	Text string
	File *FileReference
}

// AdditionalInfo is the opaque key/value blob customers submit with an offer.
type AdditionalInfo map[string]AdditionalInfoValue

// IsFile reports whether the value references an uploaded file.
func (v AdditionalInfoValue) IsFile() bool {
	return v.File != nil
}

// String returns the display form of the value.
func (v AdditionalInfoValue) String() string {
	if v.File != nil {
		return v.File.Label
	}
	return v.Text
}

// MarshalJSON emits plain strings verbatim and file references structured.
func (v AdditionalInfoValue) MarshalJSON() ([]byte, error) {
	if v.File != nil {
		return json.Marshal(v.File)
	}
	return json.Marshal(v.Text)
}

// UnmarshalJSON accepts a structured {label, url} object, a bare string,
// or the legacy composite "label (url)" string.
func (v *AdditionalInfoValue) UnmarshalJSON(data []byte) error {
	var ref FileReference
	if err := json.Unmarshal(data, &ref); err == nil && ref.URL != "" {
		v.File = &ref
		v.Text = ""
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*v = ParseAdditionalInfoValue(raw)
	return nil
}

// ParseAdditionalInfoValue interprets a raw submitted string. A value
// containing the upload-path marker becomes a file reference; the
// composite "label (url)" form is split on its parentheses, otherwise
// the whole value serves as both label and URL.
func ParseAdditionalInfoValue(raw string) AdditionalInfoValue {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || !strings.Contains(trimmed, uploadPathMarker) {
		return AdditionalInfoValue{Text: raw}
	}

	open := strings.LastIndex(trimmed, "(")
	close := strings.LastIndex(trimmed, ")")
	if open >= 0 && close > open {
		label := strings.TrimSpace(trimmed[:open])
		url := strings.TrimSpace(trimmed[open+1 : close])
		if label == "" {
			label = baseName(url)
		}
		return AdditionalInfoValue{File: &FileReference{Label: label, URL: url}}
	}

	return AdditionalInfoValue{File: &FileReference{Label: baseName(trimmed), URL: trimmed}}
}

func baseName(url string) string {
	if idx := strings.LastIndex(url, "/"); idx >= 0 && idx+1 < len(url) {
		return url[idx+1:]
	}
	return url
}
