package services

import "errors"

// Fehlerarten der Resolution Engine. Alle werden an der Engine-Grenze in
// Outcomes mit Statuscode übersetzt.
var (
	// ErrInsufficientArguments: zu wenige identifizierende Daten für eine
	// Suche. Wird lokal durch den Fallback Identity- → Relaxed-Suche
	// behandelt und erst als BAD_REQUEST gemeldet, wenn beide scheitern.
	ErrInsufficientArguments = errors.New(
		"unable to search document: no ID, no authors, no article titles and no related articles provided")

	// ErrMissingRequiredV3: Registrierung oder Update ohne pid v3.
	ErrMissingRequiredV3 = errors.New(
		"document requires a pid v3; provide a pid v3")

	// ErrV3AlreadyRegistered: das gelieferte v3 gehört bereits zu einem
	// anderen Datensatz.
	ErrV3AlreadyRegistered = errors.New(
		"pid v3 is already registered; provide a new pid v3")
)
