package services

import (
	"strings"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"pid-keeper/models"
)

// AttributeNormalizer baut aus rohen Eingabefeldern ein kanonisches
// AttributeBundle: Whitespace getrimmt, Unicode NFC-normalisiert, Ligaturen
// aufgelöst, leere Listenelemente entfernt. Keine Seiteneffekte, keine Fehler.
type AttributeNormalizer struct{}

// NewAttributeNormalizer erstellt einen Normalizer.
func NewAttributeNormalizer() *AttributeNormalizer {
	return &AttributeNormalizer{}
}

// ligatures ersetzt gängige typografische Ligaturen, die aus PDF-Extraktion
// und Altdaten stammen.
var ligatures = strings.NewReplacer(
	"ﬁ", "fi",
	"ﬂ", "fl",
	"ﬀ", "ff",
	"ﬃ", "ffi",
	"ﬄ", "ffl",
	"ﬆ", "st",
	"œ", "oe",
	"æ", "ae",
)

func normalizeText(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	s = ligatures.Replace(s)
	t := transform.Chain(norm.NFC)
	normalized, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return normalized
}

// Normalize liefert das kanonisierte Bundle. Leere Werte bleiben als leere
// Sentinels ihres Feldtyps erhalten.
func (n *AttributeNormalizer) Normalize(raw models.AttributeBundle) models.AttributeBundle {
	b := models.AttributeBundle{
		V3:                  strings.TrimSpace(raw.V3),
		V2:                  strings.TrimSpace(raw.V2),
		Aop:                 strings.TrimSpace(raw.Aop),
		IDProvidedByJournal: strings.TrimSpace(raw.IDProvidedByJournal),
		PubYear:             strings.TrimSpace(raw.PubYear),
		Collab:              normalizeText(raw.Collab),
		Volume:              strings.TrimSpace(raw.Volume),
		Number:              strings.TrimSpace(raw.Number),
		Suppl:               strings.TrimSpace(raw.Suppl),
		Elocation:           strings.TrimSpace(raw.Elocation),
		Fpage:               strings.TrimSpace(raw.Fpage),
		FpageSeq:            strings.TrimSpace(raw.FpageSeq),
		Lpage:               strings.TrimSpace(raw.Lpage),
		EpubDate:            strings.TrimSpace(raw.EpubDate),
	}

	for _, pid := range raw.OtherPids {
		if v := strings.TrimSpace(pid); v != "" {
			b.OtherPids = append(b.OtherPids, v)
		}
	}
	for _, f := range raw.Filenames {
		if v := strings.TrimSpace(f); v != "" {
			b.Filenames = append(b.Filenames, v)
		}
	}
	for _, issn := range raw.ISSNs {
		issn.Value = strings.TrimSpace(issn.Value)
		issn.Type = strings.TrimSpace(issn.Type)
		if issn.Value != "" {
			b.ISSNs = append(b.ISSNs, issn)
		}
	}
	for _, doi := range raw.DOIsWithLang {
		doi.Value = strings.TrimSpace(doi.Value)
		doi.Lang = strings.TrimSpace(doi.Lang)
		if doi.Value != "" {
			b.DOIsWithLang = append(b.DOIsWithLang, doi)
		}
	}
	for _, a := range raw.Authors {
		a.Surname = normalizeText(a.Surname)
		a.GivenNames = normalizeText(a.GivenNames)
		a.ORCID = strings.TrimSpace(a.ORCID)
		if a.Surname != "" || a.ORCID != "" {
			b.Authors = append(b.Authors, a)
		}
	}
	for _, t := range raw.ArticleTitles {
		t.Text = normalizeText(t.Text)
		t.Lang = strings.TrimSpace(t.Lang)
		if t.Text != "" {
			b.ArticleTitles = append(b.ArticleTitles, t)
		}
	}
	for _, r := range raw.RelatedArticles {
		r.RefID = strings.TrimSpace(r.RefID)
		r.DOI = strings.TrimSpace(r.DOI)
		r.RelatedType = strings.TrimSpace(r.RelatedType)
		if r.RefID != "" || r.DOI != "" {
			b.RelatedArticles = append(b.RelatedArticles, r)
		}
	}

	return b
}

// ContentFields liefert, welche Felder nach der Normalisierung Inhalt tragen.
func (n *AttributeNormalizer) ContentFields(b models.AttributeBundle) map[string]bool {
	out := map[string]bool{}
	set := func(name string, has bool) {
		if has {
			out[name] = true
		}
	}
	set("v3", b.V3 != "")
	set("v2", b.V2 != "")
	set("aop", b.Aop != "")
	set("id_provided_by_journal", b.IDProvidedByJournal != "")
	set("other_pids", len(b.OtherPids) > 0)
	set("issns", len(b.ISSNs) > 0)
	set("pub_year", b.PubYear != "")
	set("doi_with_lang", len(b.DOIsWithLang) > 0)
	set("authors", len(b.Authors) > 0)
	set("collab", b.Collab != "")
	set("article_titles", len(b.ArticleTitles) > 0)
	set("volume", b.Volume != "")
	set("number", b.Number != "")
	set("suppl", b.Suppl != "")
	set("elocation", b.Elocation != "")
	set("fpage", b.Fpage != "")
	set("fpage_seq", b.FpageSeq != "")
	set("lpage", b.Lpage != "")
	set("epub_date", b.EpubDate != "")
	set("filenames", len(b.Filenames) > 0)
	set("related_articles", len(b.RelatedArticles) > 0)
	return out
}
