package models

import (
	"fmt"
	"strings"
)

// AttributeBundle ist der transiente, vom Aufrufer gelieferte Satz von
// Dokumentattributen. Leere Werte bleiben als leere Sentinels erhalten;
// das Bundle wird nie selbst persistiert, sondern vor dem Speichern per
// MergeBundle auf einen DocumentRecord übertragen.
type AttributeBundle struct {
	V3                  string          `json:"v3,omitempty"`
	V2                  string          `json:"v2,omitempty"`
	Aop                 string          `json:"aop,omitempty"`
	IDProvidedByJournal string          `json:"id_provided_by_journal,omitempty"`
	OtherPids           Strings         `json:"other_pids,omitempty"`
	ISSNs               ISSNs           `json:"issns,omitempty"`
	PubYear             string          `json:"pub_year,omitempty"`
	DOIsWithLang        DOIs            `json:"doi_with_lang,omitempty"`
	Authors             Authors         `json:"authors,omitempty"`
	Collab              string          `json:"collab,omitempty"`
	ArticleTitles       TextsAndLang    `json:"article_titles,omitempty"`
	Volume              string          `json:"volume,omitempty"`
	Number              string          `json:"number,omitempty"`
	Suppl               string          `json:"suppl,omitempty"`
	Elocation           string          `json:"elocation,omitempty"`
	Fpage               string          `json:"fpage,omitempty"`
	FpageSeq            string          `json:"fpage_seq,omitempty"`
	Lpage               string          `json:"lpage,omitempty"`
	EpubDate            string          `json:"epub_date,omitempty"`
	Filenames           Strings         `json:"filenames,omitempty"`
	RelatedArticles     RelatedArticles `json:"related_articles,omitempty"`
}

// HasAnyID meldet, ob mindestens ein identifizierender Schlüssel vorhanden ist.
func (b AttributeBundle) HasAnyID() bool {
	return b.V2 != "" || b.V3 != "" || b.Aop != "" ||
		len(b.OtherPids) > 0 || len(b.DOIsWithLang) > 0
}

// HasRelaxedFields meldet, ob Felder für einen Relaxed-Match vorhanden sind
// (Autoren, Collab, Titel oder verwandte Artikel).
func (b AttributeBundle) HasRelaxedFields() bool {
	return len(b.Authors) > 0 || b.Collab != "" ||
		len(b.ArticleTitles) > 0 || len(b.RelatedArticles) > 0
}

// ComparableString serialisiert die Attribute deterministisch in fester
// Feldreihenfolge. Zwei Bundles mit identischem Inhalt liefern exakt
// denselben String; darauf stützt sich der Similarity-Ranker.
func (b AttributeBundle) ComparableString() string {
	var sb strings.Builder

	field := func(name, value string) {
		sb.WriteString(name)
		sb.WriteString("=")
		sb.WriteString(value)
		sb.WriteString("|")
	}

	field("v3", b.V3)
	field("id_provided_by_journal", b.IDProvidedByJournal)
	field("v2", b.V2)
	field("aop", b.Aop)
	field("other_pids", strings.Join(b.OtherPids, ","))

	issns := make([]string, 0, len(b.ISSNs))
	for _, i := range b.ISSNs {
		issns = append(issns, fmt.Sprintf("%s:%s", i.Type, i.Value))
	}
	field("issns", strings.Join(issns, ","))
	field("pub_year", b.PubYear)

	dois := make([]string, 0, len(b.DOIsWithLang))
	for _, d := range b.DOIsWithLang {
		dois = append(dois, fmt.Sprintf("%s:%s", d.Lang, d.Value))
	}
	field("doi_with_lang", strings.Join(dois, ","))

	authors := make([]string, 0, len(b.Authors))
	for _, a := range b.Authors {
		authors = append(authors, fmt.Sprintf("%s;%s;%s", a.Surname, a.GivenNames, a.ORCID))
	}
	field("authors", strings.Join(authors, ","))
	field("collab", b.Collab)

	titles := make([]string, 0, len(b.ArticleTitles))
	for _, t := range b.ArticleTitles {
		titles = append(titles, fmt.Sprintf("%s:%s", t.Lang, t.Text))
	}
	field("article_titles", strings.Join(titles, ","))

	field("volume", b.Volume)
	field("number", b.Number)
	field("suppl", b.Suppl)
	field("elocation", b.Elocation)
	field("fpage", b.Fpage)
	field("fpage_seq", b.FpageSeq)
	field("lpage", b.Lpage)
	field("epub_date", b.EpubDate)
	field("filenames", strings.Join(b.Filenames, ","))

	related := make([]string, 0, len(b.RelatedArticles))
	for _, r := range b.RelatedArticles {
		related = append(related, fmt.Sprintf("%s;%s;%s", r.RefID, r.DOI, r.RelatedType))
	}
	field("related_articles", strings.Join(related, ","))

	return sb.String()
}

// MergeBundle überträgt alle Bundle-Felder auf eine Kopie des bestehenden
// Datensatzes. RecID und Created bleiben unangetastet; v3 und v2 sind stabile
// Identifier und werden nur von einem Datensatz übernommen, der noch keinen
// Wert trägt — ein Update überschreibt sie nie. Reine Funktion, damit das
// Update-Verhalten ohne Datenbank testbar ist.
func MergeBundle(existing DocumentRecord, b AttributeBundle) DocumentRecord {
	merged := existing

	if merged.V3 == "" {
		merged.V3 = b.V3
	}
	if merged.V2 == "" {
		merged.V2 = b.V2
	}
	merged.Aop = b.Aop
	merged.IDProvidedByJournal = b.IDProvidedByJournal
	merged.OtherPids = b.OtherPids
	merged.ISSNs = b.ISSNs
	merged.PubYear = b.PubYear
	merged.DOIsWithLang = b.DOIsWithLang
	merged.Authors = b.Authors
	merged.Collab = b.Collab
	merged.ArticleTitles = b.ArticleTitles
	merged.Volume = b.Volume
	merged.Number = b.Number
	merged.Suppl = b.Suppl
	merged.Elocation = b.Elocation
	merged.Fpage = b.Fpage
	merged.FpageSeq = b.FpageSeq
	merged.Lpage = b.Lpage
	merged.EpubDate = b.EpubDate
	merged.Filenames = b.Filenames
	merged.RelatedArticles = b.RelatedArticles

	return merged
}
