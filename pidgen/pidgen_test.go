package pidgen

import (
	"strings"
	"testing"
	"unicode"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCharset = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

func TestGenerate_LengthAndCharset(t *testing.T) {
	gen := NewRandomGenerator(23, testCharset)

	for i := 0; i < 100; i++ {
		token := gen.Generate()
		require.Len(t, token, 23)
		for _, r := range token {
			require.True(t, strings.ContainsRune(testCharset, r),
				"token %q enthält Zeichen außerhalb des Zeichensatzes", token)
		}
	}
}

func TestGenerate_FirstCharIsLetter(t *testing.T) {
	gen := NewRandomGenerator(23, testCharset)

	for i := 0; i < 100; i++ {
		token := gen.Generate()
		require.True(t, unicode.IsLetter(rune(token[0])),
			"token %q beginnt nicht mit einem Buchstaben", token)
	}
}

func TestGenerate_TokensDiffer(t *testing.T) {
	gen := NewRandomGenerator(23, testCharset)

	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		seen[gen.Generate()] = true
	}
	assert.Greater(t, len(seen), 1)
}

func TestGenerate_DigitsOnlyCharsetFallsBack(t *testing.T) {
	// Ohne Buchstaben im Zeichensatz gibt es keine Buchstaben-Vorgabe
	// für das erste Zeichen.
	gen := NewRandomGenerator(5, "0123456789")
	token := gen.Generate()
	assert.Len(t, token, 5)
}
