// Package translate loads externally supplied translation records and
// resolves them by key or by original text.
package translate

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
)

// Record is one externally produced translation. Consumed read-only.
type Record struct {
	Original       string `json:"original"`
	Translation    string `json:"translation"`
	TranslationKey string `json:"translation_key,omitempty"`
	Context        string `json:"context,omitempty"`
}

// SourceError reports a translations source that could not be loaded as a
// whole. The run proceeds with zero translations; this is a warning, not an
// abort.
type SourceError struct {
	Path string
	Err  error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("translate: source %s: %v", e.Path, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

// Store indexes translation records by key and by original text.
type Store struct {
	byKey  map[string]Record
	byText map[string]string
	count  int
}

// Match is a resolved translation. ByKey distinguishes exact key matches from
// the global text fallback for the replacement statistics.
type Match struct {
	Translation string
	ByKey       bool
}

// NewStore builds a store from records, skipping records without both an
// original and a translation. The first record for a given original text wins.
func NewStore(records []Record) *Store {
	s := &Store{
		byKey:  make(map[string]Record),
		byText: make(map[string]string),
	}
	for _, r := range records {
		if r.Original == "" || r.Translation == "" {
			continue
		}
		s.count++
		if r.TranslationKey != "" {
			s.byKey[r.TranslationKey] = r
		}
		if _, seen := s.byText[r.Original]; !seen {
			s.byText[r.Original] = r.Translation
		}
	}
	return s
}

// Load reads a translations source that is either a JSON array of records or
// newline-delimited JSON records. A whole-document parse is attempted first;
// on failure each line is parsed individually and bad lines are skipped with
// a warning. A missing or wholly unparseable file yields an empty, usable
// store alongside a SourceError.
func Load(path string, logger *zap.Logger) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return NewStore(nil), &SourceError{Path: path, Err: err}
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err == nil {
		return NewStore(records), nil
	}

	var loaded int
	for n, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var r Record
		if err := json.Unmarshal([]byte(line), &r); err != nil {
			logger.Warn("skipping unparseable translation line",
				zap.String("path", path),
				zap.Int("line", n+1),
				zap.Error(err))
			continue
		}
		records = append(records, r)
		loaded++
	}

	if loaded == 0 {
		return NewStore(nil), &SourceError{Path: path, Err: fmt.Errorf("no parseable records")}
	}
	return NewStore(records), nil
}

// Len returns the number of loaded records.
func (s *Store) Len() int { return s.count }

// Lookup resolves a translation for one string occurrence. An exact key match
// is accepted only when the matched record's stored original equals the live
// string, which keeps stale or foreign keys from misapplying. Otherwise the
// original text is matched against the whole corpus, unconditional on
// context: a literal recurring verbatim in unrelated places receives the same
// translation everywhere. That global substitution is intentional and is the
// square-one limitation of this matching design.
func (s *Store) Lookup(key, original string) (Match, bool) {
	if r, ok := s.byKey[key]; ok && r.Original == original {
		return Match{Translation: r.Translation, ByKey: true}, true
	}
	if t, ok := s.byText[original]; ok {
		return Match{Translation: t, ByKey: false}, true
	}
	return Match{}, false
}
