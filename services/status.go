package services

import (
	"net/http"

	"pid-keeper/models"
)

// Status ist die geschlossene Ergebnis-Taxonomie der Resolution Engine.
// Jeder Engine-Aufruf endet in genau einem dieser Codes; Fehler verlassen
// die Engine nie als unbehandelte Panics.
type Status string

const (
	StatusCreated          Status = "CREATED"
	StatusOK               Status = "OK"
	StatusBadRequest       Status = "BAD_REQUEST"
	StatusMethodNotAllowed Status = "METHOD_NOT_ALLOWED"
	StatusForbidden        Status = "FORBIDDEN"
	StatusNotFound         Status = "NOT_FOUND"
	StatusSeeOther         Status = "SEE_OTHER"
	StatusInternalError    Status = "INTERNAL_SERVER_ERROR"
)

// HTTPStatus bildet den Ergebniscode auf den HTTP-Statuscode ab.
func (s Status) HTTPStatus() int {
	switch s {
	case StatusCreated:
		return http.StatusCreated
	case StatusOK:
		return http.StatusOK
	case StatusBadRequest:
		return http.StatusBadRequest
	case StatusMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case StatusForbidden:
		return http.StatusForbidden
	case StatusNotFound:
		return http.StatusNotFound
	case StatusSeeOther:
		return http.StatusSeeOther
	default:
		return http.StatusInternalServerError
	}
}

// Outcome ist das transiente Ergebnis eines Resolution-Aufrufs: Statuscode,
// Meldung, gefundene Kandidaten samt Ranking und ggf. der betroffene bzw.
// gespeicherte Datensatz. Wird pro Request erzeugt und nicht persistiert.
type Outcome struct {
	Status     Status                  `json:"code"`
	Message    string                  `json:"msg,omitempty"`
	Document   *models.DocumentRecord  `json:"document,omitempty"`
	Results    []models.DocumentRecord `json:"results,omitempty"`
	Ranking    Ranking                 `json:"ranking,omitempty"`
	BestResult *models.DocumentRecord  `json:"best_result,omitempty"`
}

// AssembleResponse bildet ein Outcome auf HTTP-Statuscode und Payload ab.
// Reine Funktion ohne Fehlerfälle.
func AssembleResponse(out Outcome) (int, map[string]any) {
	payload := map[string]any{
		"code": string(out.Status),
	}
	if out.Message != "" {
		payload["msg"] = out.Message
	}
	if out.Document != nil {
		payload["document"] = out.Document
	}
	if len(out.Results) > 0 {
		payload["results"] = out.Results
	}
	if len(out.Ranking) > 0 {
		payload["ranking"] = out.Ranking
	}
	if out.BestResult != nil {
		payload["best_result"] = out.BestResult
	}
	return out.Status.HTTPStatus(), payload
}
