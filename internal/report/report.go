// Package report models the extraction report document.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// ClassString is one extracted string occurrence from a class entry.
type ClassString struct {
	Text             string `json:"text"`
	Context          string `json:"context"`
	Filename         string `json:"filename"`
	Method           string `json:"method"`
	ActualCaller     string `json:"actual_caller"`
	CalledMethod     string `json:"called_method,omitempty"`
	CallType         string `json:"call_type,omitempty"`
	TranslationKey   string `json:"translation_key"`
	InstructionIndex int    `json:"instruction_index"`
}

// Document is the extraction report: class strings plus the non-class text
// resources classified for translators.
type Document struct {
	PropertiesFiles map[string]map[string]string `json:"properties_files"`
	JSONFiles       map[string]any               `json:"json_files"`
	ClassStrings    map[string][]ClassString     `json:"class_strings"`
	OtherTextFiles  map[string]string            `json:"other_text_files"`
}

// NewDocument returns an empty report with all sections allocated.
func NewDocument() *Document {
	return &Document{
		PropertiesFiles: make(map[string]map[string]string),
		JSONFiles:       make(map[string]any),
		ClassStrings:    make(map[string][]ClassString),
		OtherTextFiles:  make(map[string]string),
	}
}

// AddProperties parses a .properties payload into key=value pairs.
func (d *Document) AddProperties(name string, data []byte) {
	d.PropertiesFiles[name] = ParseProperties(data)
}

// AddJSON stores a parsed .json payload, or the raw text if it fails to
// parse.
func (d *Document) AddJSON(name string, data []byte) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		d.OtherTextFiles[name] = string(data)
		return
	}
	d.JSONFiles[name] = v
}

// AddText stores an opaque text resource verbatim.
func (d *Document) AddText(name string, data []byte) {
	d.OtherTextFiles[name] = string(data)
}

// Write serializes the report as indented JSON.
func (d *Document) Write(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("report: create %s: %w", path, err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("report: encode %s: %w", path, err)
	}
	return nil
}

// ParseProperties reads Java .properties key=value lines. Comments (# or !)
// and blank lines are dropped; ':' works as a separator like '='.
func ParseProperties(data []byte) map[string]string {
	out := make(map[string]string)
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "!") {
			continue
		}
		sep := strings.IndexAny(line, "=:")
		if sep < 0 {
			continue
		}
		key := strings.TrimSpace(line[:sep])
		val := strings.TrimSpace(line[sep+1:])
		if key != "" {
			out[key] = val
		}
	}
	return out
}
