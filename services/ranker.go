package services

import (
	"sort"

	"pid-keeper/models"
)

// Schwellwerte für die Best-Match-Auswahl. Heuristisch; pro Einsatzkorpus
// über die Konfiguration nachjustierbar.
const (
	DefaultBestMinRatio     = 0.9
	DefaultRunnerUpMaxRatio = 0.6
)

// MatchCandidate koppelt einen gefundenen Datensatz mit seiner
// Ähnlichkeitsrate gegen das aktuelle Bundle. Nur innerhalb eines
// Resolution-Aufrufs gültig.
type MatchCandidate struct {
	Ratio  float64               `json:"ratio"`
	Index  int                   `json:"index"`
	Record models.DocumentRecord `json:"-"`
}

// Ranking ist die absteigend nach Ratio sortierte Kandidatenliste.
type Ranking []MatchCandidate

// similarityRatio berechnet 2*LCS/(len(a)+len(b)) über die Runen beider
// Strings. Symmetrisch und deterministisch; identische Eingaben ergeben 1.0,
// disjunkte Eingaben gehen gegen 0.
func similarityRatio(a, b string) float64 {
	if a == b {
		return 1.0
	}
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 && len(rb) == 0 {
		return 1.0
	}
	if len(ra) == 0 || len(rb) == 0 {
		return 0.0
	}

	// LCS mit zwei Zeilen statt voller Matrix
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for i := 1; i <= len(ra); i++ {
		for j := 1; j <= len(rb); j++ {
			if ra[i-1] == rb[j-1] {
				curr[j] = prev[j-1] + 1
			} else if prev[j] >= curr[j-1] {
				curr[j] = prev[j]
			} else {
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}
	lcs := prev[len(rb)]
	return 2.0 * float64(lcs) / float64(len(ra)+len(rb))
}

// RankCandidates bewertet jeden Kandidaten gegen die deterministische
// Serialisierung der Bundle-Attribute und sortiert absteigend nach Ratio.
// Bei gleicher Ratio gewinnt der früher gelieferte Kandidat (stabile
// Sortierung über den ursprünglichen Index).
func RankCandidates(bundle models.AttributeBundle, candidates []models.DocumentRecord) Ranking {
	reference := bundle.ComparableString()

	ranking := make(Ranking, 0, len(candidates))
	for i, c := range candidates {
		ranking = append(ranking, MatchCandidate{
			Ratio:  similarityRatio(reference, c.Attributes().ComparableString()),
			Index:  i,
			Record: c,
		})
	}
	sort.SliceStable(ranking, func(i, j int) bool {
		return ranking[i].Ratio > ranking[j].Ratio
	})
	return ranking
}

// BestMatch wählt den Spitzenkandidaten genau dann aus, wenn er über
// bestMin liegt UND der Zweitplatzierte unter runnerUpMax bleibt (bei nur
// einem Kandidaten zählt der Zweite als 0). Alles andere gilt als mehrdeutig
// und liefert keinen Best Match, obwohl das Ranking erhalten bleibt.
func (r Ranking) BestMatch(bestMin, runnerUpMax float64) *models.DocumentRecord {
	if len(r) == 0 {
		return nil
	}
	first := r[0].Ratio
	second := 0.0
	if len(r) > 1 {
		second = r[1].Ratio
	}
	if first > bestMin && second < runnerUpMax {
		rec := r[0].Record
		return &rec
	}
	return nil
}
