package services

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// DuplicateLister liefert Identifier-Werte, die in mehr als einem Datensatz
// vorkommen. Implementiert vom storage.Store.
type DuplicateLister interface {
	DuplicateIdentifiers(ctx context.Context) ([]string, error)
}

// IntegrityAuditor prüft den Bestand periodisch auf v2/aop-Werte, die über
// mehrere Datensätze gestreut sind. Solche Altlasten verletzen nicht die
// Unique-Indizes (die greifen nur pro Spalte), deuten aber auf Dubletten hin,
// die manuell zusammengeführt werden müssen. Rein lesend.
type IntegrityAuditor struct {
	Store  DuplicateLister
	Logger *zap.Logger
	Gauge  prometheus.Gauge
}

// NewIntegrityAuditor erstellt einen Auditor. Gauge darf nil sein.
func NewIntegrityAuditor(store DuplicateLister, logger *zap.Logger, gauge prometheus.Gauge) *IntegrityAuditor {
	return &IntegrityAuditor{Store: store, Logger: logger, Gauge: gauge}
}

// Run führt einen Audit-Lauf aus und meldet die Anzahl auffälliger Werte.
func (a *IntegrityAuditor) Run(ctx context.Context) (int, error) {
	values, err := a.Store.DuplicateIdentifiers(ctx)
	if err != nil {
		a.Logger.Error("Integritäts-Audit fehlgeschlagen", zap.Error(err))
		return 0, err
	}

	for _, v := range values {
		a.Logger.Warn("Identifier in mehreren Datensätzen gefunden", zap.String("identifier", v))
	}
	if a.Gauge != nil {
		a.Gauge.Set(float64(len(values)))
	}
	a.Logger.Info("Integritäts-Audit abgeschlossen", zap.Int("suspect_identifiers", len(values)))
	return len(values), nil
}
