package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pid-keeper/models"
)

func TestSimilarityRatio_IdenticalInputs(t *testing.T) {
	s := "v3=abc|v2=S0001-37652020000100001|"
	assert.Equal(t, 1.0, similarityRatio(s, s))
}

func TestSimilarityRatio_DisjointInputs(t *testing.T) {
	ratio := similarityRatio("aaaaaaaaaa", "bbbbbbbbbb")
	assert.Equal(t, 0.0, ratio)
}

func TestSimilarityRatio_Symmetric(t *testing.T) {
	a := "the quick brown fox"
	b := "the slow brown dog"
	assert.Equal(t, similarityRatio(a, b), similarityRatio(b, a))
}

func TestSimilarityRatio_EmptyInputs(t *testing.T) {
	assert.Equal(t, 1.0, similarityRatio("", ""))
	assert.Equal(t, 0.0, similarityRatio("abc", ""))
}

func makeRecord(v3, v2, title string) models.DocumentRecord {
	return models.DocumentRecord{
		RecID: "rec-" + v3,
		V3:    v3,
		V2:    v2,
		ArticleTitles: models.TextsAndLang{
			{Lang: "en", Text: title},
		},
	}
}

func TestRankCandidates_Deterministic(t *testing.T) {
	bundle := models.AttributeBundle{
		V2:            "S0001-37652020000100001",
		ArticleTitles: models.TextsAndLang{{Lang: "en", Text: "Adrenal insufficiency and glucocorticoid use"}},
	}
	candidates := []models.DocumentRecord{
		makeRecord("aaa", "S0001-37652020000100001", "Adrenal insufficiency and glucocorticoid use"),
		makeRecord("bbb", "S9999-88882019000200002", "Something entirely different about botany"),
	}

	first := RankCandidates(bundle, candidates)
	for i := 0; i < 10; i++ {
		again := RankCandidates(bundle, candidates)
		require.Equal(t, first, again)
	}
}

func TestRankCandidates_OrderedByRatioDescending(t *testing.T) {
	bundle := models.AttributeBundle{
		V2:            "S0001-37652020000100001",
		ArticleTitles: models.TextsAndLang{{Lang: "en", Text: "Adrenal insufficiency and glucocorticoid use"}},
	}
	candidates := []models.DocumentRecord{
		makeRecord("aaa", "S9999-88882019000200002", "Something entirely different about botany"),
		makeRecord("bbb", "S0001-37652020000100001", "Adrenal insufficiency and glucocorticoid use"),
	}

	ranking := RankCandidates(bundle, candidates)
	require.Len(t, ranking, 2)
	assert.Greater(t, ranking[0].Ratio, ranking[1].Ratio)
	assert.Equal(t, "bbb", ranking[0].Record.V3)
}

func TestRankCandidates_TieKeepsOriginalOrder(t *testing.T) {
	bundle := models.AttributeBundle{
		V2: "S0001-37652020000100001",
	}
	// Zwei identische Kandidaten ergeben identische Ratios; der zuerst
	// gelieferte muss vorne bleiben.
	candidates := []models.DocumentRecord{
		makeRecord("first", "S0001-37652020000100001", "Same title"),
		makeRecord("second", "S0001-37652020000100001", "Same title"),
	}
	candidates[1].V3 = candidates[0].V3
	candidates[1].RecID = "rec-second"

	ranking := RankCandidates(bundle, candidates)
	require.Len(t, ranking, 2)
	assert.Equal(t, ranking[0].Ratio, ranking[1].Ratio)
	assert.Equal(t, 0, ranking[0].Index)
	assert.Equal(t, 1, ranking[1].Index)
}

func TestBestMatch_Thresholds(t *testing.T) {
	rec1 := makeRecord("top", "S0001-37652020000100001", "t")
	rec2 := makeRecord("second", "S0002-37652020000100002", "t")

	testCases := []struct {
		name       string
		ratios     []float64
		expectBest bool
	}{
		{"confident winner, weak runner-up", []float64{0.95, 0.55}, true},
		{"confident winner, strong runner-up is ambiguous", []float64{0.95, 0.65}, false},
		{"weak winner", []float64{0.85, 0.2}, false},
		{"single confident candidate", []float64{0.95}, true},
		{"single weak candidate", []float64{0.85}, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ranking := Ranking{{Ratio: tc.ratios[0], Index: 0, Record: rec1}}
			if len(tc.ratios) > 1 {
				ranking = append(ranking, MatchCandidate{Ratio: tc.ratios[1], Index: 1, Record: rec2})
			}

			best := ranking.BestMatch(DefaultBestMinRatio, DefaultRunnerUpMaxRatio)
			if tc.expectBest {
				require.NotNil(t, best)
				assert.Equal(t, "top", best.V3)
			} else {
				assert.Nil(t, best)
			}
		})
	}
}

func TestBestMatch_EmptyRanking(t *testing.T) {
	assert.Nil(t, Ranking{}.BestMatch(DefaultBestMinRatio, DefaultRunnerUpMaxRatio))
}
