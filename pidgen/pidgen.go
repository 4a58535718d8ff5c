// Package pidgen erzeugt zufällige pid-v3-Tokens im historischen Format:
// konfigurierbare Länge und Zeichensatz, erstes Zeichen immer ein Buchstabe.
package pidgen

import (
	"crypto/rand"
	"math/big"
	"unicode"
)

// Generator liefert Kandidaten-Tokens für pid v3. Die Eindeutigkeitsprüfung
// gegen den Bestand übernimmt die Resolution Engine, nicht der Generator.
type Generator interface {
	Generate() string
}

// RandomGenerator erzeugt Tokens aus einem festen Zeichensatz.
type RandomGenerator struct {
	length  int
	charset []rune
	letters []rune
}

// NewRandomGenerator erstellt einen Generator für Länge und Zeichensatz aus
// der Konfiguration.
func NewRandomGenerator(length int, charset string) *RandomGenerator {
	runes := []rune(charset)
	var letters []rune
	for _, r := range runes {
		if unicode.IsLetter(r) {
			letters = append(letters, r)
		}
	}
	if len(letters) == 0 {
		letters = runes
	}
	return &RandomGenerator{length: length, charset: runes, letters: letters}
}

// Generate erzeugt ein neues Token. Kollisionen mit registrierten Tokens sind
// nicht ausgeschlossen; der Aufrufer prüft und generiert ggf. erneut.
func (g *RandomGenerator) Generate() string {
	out := make([]rune, g.length)
	out[0] = g.letters[randIndex(len(g.letters))]
	for i := 1; i < g.length; i++ {
		out[i] = g.charset[randIndex(len(g.charset))]
	}
	return string(out)
}

func randIndex(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		// crypto/rand liefert auf allen unterstützten Plattformen Entropie;
		// ein Fehler hier ist nicht sinnvoll behandelbar.
		panic(err)
	}
	return int(v.Int64())
}
