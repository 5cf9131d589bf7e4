package fields

import (
	"strings"
	"unicode"
)

// ShouldExclude reports whether a raw field key is hidden from discovery and
// from booking descriptive data. Excluded are internal fields (leading
// underscore), the exact key "id", and identifier fields ending in "Id" or
// "ID". The suffix check is case-sensitive so that "paid" survives while
// "roomId" and "propertyID" do not.
func ShouldExclude(fieldKey string) bool {
	if strings.HasPrefix(fieldKey, "_") || fieldKey == "id" {
		return true
	}
	return strings.HasSuffix(fieldKey, "Id") || strings.HasSuffix(fieldKey, "ID")
}

// DisplayName converts a camelCase field key into a human-readable name:
// "roomTypeName" becomes "Room Type Name".
func DisplayName(fieldKey string) string {
	var b strings.Builder
	runes := []rune(fieldKey)
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) && unicode.IsLower(runes[i-1]) {
			b.WriteRune(' ')
		}
		b.WriteRune(r)
	}

	words := strings.Fields(b.String())
	for i, w := range words {
		wr := []rune(w)
		words[i] = string(unicode.ToUpper(wr[0])) + strings.ToLower(string(wr[1:]))
	}
	return strings.Join(words, " ")
}

// TruncateSample clips a sample value to the stored maximum. Truncation is
// graceful: an over-long value is stored clipped, never dropped.
func TruncateSample(value string) string {
	runes := []rune(value)
	if len(runes) <= SampleMaxLen {
		return value
	}
	return string(runes[:SampleMaxLen])
}
