package analyze

import (
	"fmt"
	"unicode/utf16"
)

// HashText computes the 32-bit rolling content hash used in translation keys:
// acc = (acc << 5) - acc + c over UTF-16 code units, truncated to int32 each
// step, absolute value at the end. Matches Java's String.hashCode shape, so
// keys minted by earlier extractions keep matching.
//
// The result is int64 because abs(math.MinInt32) does not fit in int32
// ("polygenelubricants" hashes to exactly that).
func HashText(s string) int64 {
	var acc int32
	for _, c := range utf16.Encode([]rune(s)) {
		acc = acc<<5 - acc + int32(c)
	}
	v := int64(acc)
	if v < 0 {
		v = -v
	}
	return v
}

// Key builds the deterministic identifier for one string occurrence:
// <containerEntryName>:<contextOrCaller>:<position>:<hash32(text)>.
// Extraction and rewriting must derive byte-identical keys for the same
// occurrence or key matching silently degrades to text matching.
func Key(entryName, contextOrCaller string, position int, text string) string {
	return fmt.Sprintf("%s:%s:%d:%d", entryName, contextOrCaller, position, HashText(text))
}
