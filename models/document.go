package models

import (
	"time"

	"gorm.io/datatypes"
)

// ISSN-Typen wie sie im Altbestand vorkommen.
const (
	ISSNTypeEpub = "epub"
	ISSNTypePpub = "ppub"
	ISSNTypeLink = "l"
	ISSNTypeID   = "id"
)

// ISSN ist ein ISSN-Wert samt Typ (epub, ppub, l, id).
type ISSN struct {
	Value string `json:"value"`
	Type  string `json:"type,omitempty"`
}

// DOI trägt einen DOI-Wert pro Sprache inklusive Vergabe- und Registrierungsstatus.
type DOI struct {
	Lang               string `json:"lang,omitempty"`
	Value              string `json:"value"`
	CreationStatus     string `json:"creation_status,omitempty"`     // auto_assigned, assigned_by_editor, UNK
	RegistrationStatus string `json:"registration_status,omitempty"` // registered, not_registered, UNK
}

// Author identifiziert einen Autor über Nachname, Vornamen und ORCID.
type Author struct {
	Surname    string `json:"surname"`
	GivenNames string `json:"given_names,omitempty"`
	ORCID      string `json:"orcid,omitempty"`
}

// TextAndLang ist ein sprachgebundener Text, z.B. ein Artikeltitel.
type TextAndLang struct {
	Lang string `json:"lang,omitempty"`
	Text string `json:"text"`
}

// RelatedArticle verknüpft ein Dokument mit einem verwandten Artikel
// (Korrektur, Addendum, Retraction usw.).
type RelatedArticle struct {
	RefID       string `json:"ref_id,omitempty"`
	DOI         string `json:"doi,omitempty"`
	RelatedType string `json:"related_type,omitempty"`
}

// DocumentRecord ist der kanonische persistierte Dokumentdatensatz.
// v3 und v2 sind global eindeutig; die Unique-Indizes der Datenbank sind
// der letzte Schiedsrichter bei konkurrierenden Registrierungen.
type DocumentRecord struct {
	RecID string `json:"rec_id" gorm:"column:rec_id;primaryKey;size:32"`

	// Identifier
	V3                  string  `json:"v3" gorm:"column:v3;size:23;uniqueIndex;not null"`
	V2                  string  `json:"v2" gorm:"column:v2;size:23;uniqueIndex;not null"`
	Aop                 string  `json:"aop,omitempty" gorm:"column:aop;size:23;index"`
	IDProvidedByJournal string  `json:"id_provided_by_journal,omitempty" gorm:"column:id_provided_by_journal;index"`
	OtherPids           Strings `json:"other_pids,omitempty" gorm:"column:other_pids;type:jsonb;serializer:json"`

	// Bibliografische Daten, die das Dokument identifizieren
	ISSNs         ISSNs        `json:"issns,omitempty" gorm:"column:issns;type:jsonb;serializer:json"`
	PubYear       string       `json:"pub_year,omitempty" gorm:"index"`
	DOIsWithLang  DOIs         `json:"doi_with_lang,omitempty" gorm:"column:doi_with_lang;type:jsonb;serializer:json"`
	Authors       Authors      `json:"authors,omitempty" gorm:"column:authors;type:jsonb;serializer:json"`
	Collab        string       `json:"collab,omitempty"`
	ArticleTitles TextsAndLang `json:"article_titles,omitempty" gorm:"column:article_titles;type:jsonb;serializer:json"`

	// Bibliografische Koordinaten
	Volume    string `json:"volume,omitempty" gorm:"index"`
	Number    string `json:"number,omitempty" gorm:"index"`
	Suppl     string `json:"suppl,omitempty"`
	Elocation string `json:"elocation,omitempty"`
	Fpage     string `json:"fpage,omitempty"`
	FpageSeq  string `json:"fpage_seq,omitempty"`
	Lpage     string `json:"lpage,omitempty"`

	RelatedArticles RelatedArticles `json:"related_articles,omitempty" gorm:"column:related_articles;type:jsonb;serializer:json"`

	// Verarbeitungsdaten
	EpubDate  string         `json:"epub_date,omitempty"`
	Filenames Strings        `json:"filenames,omitempty" gorm:"column:filenames;type:jsonb;serializer:json"`
	ExtraInfo datatypes.JSON `json:"extra_info,omitempty" gorm:"type:jsonb"`

	// Zeitstempel dieses Datensatzes, werden ausschließlich vom Store gesetzt
	Created time.Time `json:"created"`
	Updated time.Time `json:"updated"`
}

// Benannte Slice-Typen, damit der gorm-JSON-Serializer greift.
type (
	Strings         []string
	ISSNs           []ISSN
	DOIs            []DOI
	Authors         []Author
	TextsAndLang    []TextAndLang
	RelatedArticles []RelatedArticle
)

// TableName gibt den expliziten Tabellennamen für GORM an.
func (DocumentRecord) TableName() string {
	return "pid_documents"
}

// Attributes liefert die vergleichbaren Attribute des Datensatzes als Bundle.
// RecID und Zeitstempel gehören nicht dazu.
func (d *DocumentRecord) Attributes() AttributeBundle {
	return AttributeBundle{
		V3:                  d.V3,
		V2:                  d.V2,
		Aop:                 d.Aop,
		IDProvidedByJournal: d.IDProvidedByJournal,
		OtherPids:           d.OtherPids,
		ISSNs:               d.ISSNs,
		PubYear:             d.PubYear,
		DOIsWithLang:        d.DOIsWithLang,
		Authors:             d.Authors,
		Collab:              d.Collab,
		ArticleTitles:       d.ArticleTitles,
		Volume:              d.Volume,
		Number:              d.Number,
		Suppl:               d.Suppl,
		Elocation:           d.Elocation,
		Fpage:               d.Fpage,
		FpageSeq:            d.FpageSeq,
		Lpage:               d.Lpage,
		EpubDate:            d.EpubDate,
		Filenames:           d.Filenames,
		RelatedArticles:     d.RelatedArticles,
	}
}
