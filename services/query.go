package services

import (
	"pid-keeper/models"
	"pid-keeper/storage"
)

// Die Altbestände haben v2- und aop-Werte historisch uneinheitlich abgelegt:
// ein gelieferter Wert kann in einer anderen Identifier-Spalte stehen als
// erwartet. Deshalb wird jeder gelieferte Identifier kreuzweise gegen jedes
// Identifier-Feld geprüft. Die Paare sind bewusst als feste Tabelle
// aufgezählt statt als Ad-hoc-Verzweigungen.
type identityAlias struct {
	supplied func(models.AttributeBundle) string
	stored   string
}

var identityAliases = []identityAlias{
	{func(b models.AttributeBundle) string { return b.V3 }, storage.FieldV3},
	{func(b models.AttributeBundle) string { return b.V2 }, storage.FieldV2},
	{func(b models.AttributeBundle) string { return b.Aop }, storage.FieldV2},
	{func(b models.AttributeBundle) string { return b.Aop }, storage.FieldAop},
	{func(b models.AttributeBundle) string { return b.V2 }, storage.FieldAop},
	{func(b models.AttributeBundle) string { return b.V2 }, storage.FieldOtherPids},
	{func(b models.AttributeBundle) string { return b.V3 }, storage.FieldOtherPids},
	{func(b models.AttributeBundle) string { return b.Aop }, storage.FieldOtherPids},
}

// BuildIdentityPredicate baut die Identity-Suche: ein OR über alle
// Identifier-Felder inklusive Kreuz-Aliasing und DOIs. Liefert
// ErrInsufficientArguments, wenn kein Identifier vorhanden ist.
func BuildIdentityPredicate(b models.AttributeBundle) (storage.Predicate, error) {
	if !b.HasAnyID() {
		return storage.Predicate{}, ErrInsufficientArguments
	}

	var p storage.Predicate
	for _, alias := range identityAliases {
		if v := alias.supplied(b); v != "" {
			p.Disjuncts = append(p.Disjuncts, storage.Condition{Field: alias.stored, Value: v})
		}
	}
	for _, pid := range b.OtherPids {
		p.Disjuncts = append(p.Disjuncts, storage.Condition{Field: storage.FieldOtherPids, Value: pid})
	}
	for _, doi := range b.DOIsWithLang {
		p.Disjuncts = append(p.Disjuncts, storage.Condition{
			Field: storage.FieldDOI,
			Value: map[string]string{"value": doi.Value},
		})
	}
	return p, nil
}

// BuildRelaxedPredicate baut die Relaxed-Suche: ein OR über Autoren, Collab,
// Titel und verwandte Artikel, geschnitten mit einem OR über die ISSNs des
// Bundles. Ohne mindestens eine gemeinsame ISSN ist ein Relaxed-Match nicht
// vertretbar; fehlen ISSNs oder alle Relaxed-Felder, liefert die Funktion
// ErrInsufficientArguments.
func BuildRelaxedPredicate(b models.AttributeBundle) (storage.Predicate, error) {
	if !b.HasRelaxedFields() || len(b.ISSNs) == 0 {
		return storage.Predicate{}, ErrInsufficientArguments
	}

	var p storage.Predicate
	for _, a := range b.Authors {
		match := map[string]string{"surname": a.Surname}
		if a.GivenNames != "" {
			match["given_names"] = a.GivenNames
		}
		p.Disjuncts = append(p.Disjuncts, storage.Condition{Field: storage.FieldAuthor, Value: match})
	}
	if b.Collab != "" {
		p.Disjuncts = append(p.Disjuncts, storage.Condition{Field: storage.FieldCollab, Value: b.Collab})
	}
	for _, t := range b.ArticleTitles {
		p.Disjuncts = append(p.Disjuncts, storage.Condition{
			Field: storage.FieldTitle,
			Value: map[string]string{"text": t.Text},
		})
	}
	for _, r := range b.RelatedArticles {
		match := map[string]string{}
		if r.DOI != "" {
			match["doi"] = r.DOI
		} else {
			match["ref_id"] = r.RefID
		}
		p.Disjuncts = append(p.Disjuncts, storage.Condition{Field: storage.FieldRelated, Value: match})
	}

	for _, issn := range b.ISSNs {
		p.Context = append(p.Context, storage.Condition{
			Field: storage.FieldISSN,
			Value: map[string]string{"value": issn.Value},
		})
	}
	return p, nil
}
