package storage

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Feldnamen, auf die eine Condition zielen kann. Die Übersetzung in SQL
// hängt davon ab, ob das Feld eine Spalte oder eine jsonb-Liste ist.
const (
	FieldV3        = "v3"
	FieldV2        = "v2"
	FieldAop       = "aop"
	FieldOtherPids = "other_pids"
	FieldDOI       = "doi_with_lang"
	FieldISSN      = "issns"
	FieldAuthor    = "authors"
	FieldCollab    = "collab"
	FieldTitle     = "article_titles"
	FieldRelated   = "related_articles"
	FieldFilename  = "filenames"
)

// Condition ist ein einzelnes Suchkriterium: Feld und zu matchender Wert.
// Für Spaltenfelder ist Value ein String (Gleichheit), für jsonb-Listen ein
// Objekt bzw. String, der per Containment gematcht wird.
type Condition struct {
	Field string
	Value any
}

// Predicate ist das opake Suchprädikat, das der Query Builder erzeugt und
// der Store ausführt. Disjuncts werden mit OR verknüpft; Context wird
// (ebenfalls OR-verknüpft) per AND dagegen geschnitten. Ein leerer Context
// entfällt.
type Predicate struct {
	Disjuncts []Condition
	Context   []Condition
}

// IsEmpty meldet, ob das Prädikat keine Kriterien trägt.
func (p Predicate) IsEmpty() bool {
	return len(p.Disjuncts) == 0
}

// jsonbArrayFields sind als jsonb gespeicherte String-Listen.
var jsonbArrayFields = map[string]bool{
	FieldOtherPids: true,
	FieldFilename:  true,
}

// jsonbObjectFields sind als jsonb gespeicherte Listen von Objekten.
var jsonbObjectFields = map[string]bool{
	FieldDOI:     true,
	FieldISSN:    true,
	FieldAuthor:  true,
	FieldTitle:   true,
	FieldRelated: true,
}

// translateCondition übersetzt eine Condition in ein SQL-Fragment mit
// genau einem Platzhalter.
func translateCondition(c Condition) (string, any, error) {
	switch {
	case jsonbArrayFields[c.Field]:
		// '["a","b"]'::jsonb enthält den String-Wert
		s, ok := c.Value.(string)
		if !ok {
			return "", nil, fmt.Errorf("field %s expects a string value, got %T", c.Field, c.Value)
		}
		return fmt.Sprintf("jsonb_exists(%s, ?)", c.Field), s, nil
	case jsonbObjectFields[c.Field]:
		// Containment gegen ein einelementiges Array mit dem Teilobjekt
		raw, err := json.Marshal([]any{c.Value})
		if err != nil {
			return "", nil, fmt.Errorf("field %s: %w", c.Field, err)
		}
		return fmt.Sprintf("%s @> ?::jsonb", c.Field), string(raw), nil
	default:
		return fmt.Sprintf("%s = ?", c.Field), c.Value, nil
	}
}

// Translate baut aus dem Prädikat eine WHERE-Klausel samt Argumenten.
func Translate(p Predicate) (string, []any, error) {
	if p.IsEmpty() {
		return "", nil, fmt.Errorf("empty predicate")
	}

	orClause := func(conds []Condition) (string, []any, error) {
		frags := make([]string, 0, len(conds))
		var args []any
		for _, c := range conds {
			frag, arg, err := translateCondition(c)
			if err != nil {
				return "", nil, err
			}
			frags = append(frags, frag)
			args = append(args, arg)
		}
		return "(" + strings.Join(frags, " OR ") + ")", args, nil
	}

	clause, args, err := orClause(p.Disjuncts)
	if err != nil {
		return "", nil, err
	}
	if len(p.Context) > 0 {
		ctxClause, ctxArgs, err := orClause(p.Context)
		if err != nil {
			return "", nil, err
		}
		clause = clause + " AND " + ctxClause
		args = append(args, ctxArgs...)
	}
	return clause, args, nil
}
