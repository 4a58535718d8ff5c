package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"pid-keeper/config"
	"pid-keeper/models"
	"pid-keeper/pidgen"
	"pid-keeper/storage"
)

// DocumentStore ist der Persistenz-Kontrakt, den die Engine konsumiert.
// Implementiert von storage.Store; in Tests durch einen In-Memory-Fake
// ersetzt. Der Store muss Unique-Indizes auf v3 und v2 durchsetzen und
// Verletzungen als storage.ErrNotUnique melden.
type DocumentStore interface {
	Save(ctx context.Context, doc *models.DocumentRecord) error
	FindByPredicate(ctx context.Context, p storage.Predicate, page, perPage int) ([]models.DocumentRecord, error)
	FindByID(ctx context.Context, recID string) (*models.DocumentRecord, error)
	FindByV3(ctx context.Context, v3 string) (*models.DocumentRecord, error)
}

// ResolutionEngine entscheidet, ob ein geliefertes Attribut-Bundle ein neues
// Dokument, ein Update eines bestehenden oder ein Konflikt ist. Zustandslos
// über Requests hinweg; beliebig viele Aufrufe dürfen parallel laufen. Die
// Ähnlichkeitssuche ist eine Prüfung, kein Lock: bei konkurrierenden
// Registrierungen desselben Dokuments entscheidet der Unique-Index des
// Stores, welcher Save gewinnt.
type ResolutionEngine struct {
	Config     *config.Config
	Store      DocumentStore
	Generator  pidgen.Generator
	Normalizer *AttributeNormalizer
	Logger     *zap.Logger
}

// NewResolutionEngine erstellt eine Engine mit allen Kollaborateuren.
func NewResolutionEngine(cfg *config.Config, store DocumentStore, gen pidgen.Generator, logger *zap.Logger) *ResolutionEngine {
	return &ResolutionEngine{
		Config:     cfg,
		Store:      store,
		Generator:  gen,
		Normalizer: NewAttributeNormalizer(),
		Logger:     logger,
	}
}

// thresholds liefert die konfigurierten Schwellwerte unverändert, auch eine
// explizite 0 (strengste Einstellung). Die Defaults kommen ausschließlich aus
// den envconfig-Tags; nur ohne Konfiguration greifen die Paketkonstanten.
func (e *ResolutionEngine) thresholds() (float64, float64) {
	if e.Config == nil {
		return DefaultBestMinRatio, DefaultRunnerUpMaxRatio
	}
	return e.Config.BestMinRatio, e.Config.RunnerUpMaxRatio
}

// SearchDocument sucht das Dokument zum Bundle: zuerst über die Identifier,
// bei unzureichenden Argumenten über den Relaxed-Match. Scheitern beide
// Strategien an fehlenden Daten, ist das Ergebnis BAD_REQUEST.
func (e *ResolutionEngine) SearchDocument(ctx context.Context, bundle models.AttributeBundle) Outcome {
	bundle = e.Normalizer.Normalize(bundle)

	pred, err := BuildIdentityPredicate(bundle)
	if errors.Is(err, ErrInsufficientArguments) {
		pred, err = BuildRelaxedPredicate(bundle)
	}
	if err != nil {
		return Outcome{Status: StatusBadRequest, Message: err.Error()}
	}

	results, err := e.Store.FindByPredicate(ctx, pred, 1, 0)
	if err != nil {
		e.Logger.Error("Dokumentsuche fehlgeschlagen", zap.Error(err))
		return Outcome{Status: StatusInternalError, Message: err.Error()}
	}

	ranking := RankCandidates(bundle, results)
	bestMin, runnerUpMax := e.thresholds()
	return Outcome{
		Status:     StatusOK,
		Results:    results,
		Ranking:    ranking,
		BestResult: ranking.BestMatch(bestMin, runnerUpMax),
	}
}

// CheckDocument beantwortet, ob das Dokument registriert ist: NOT_FOUND ohne
// Treffer, OK bei genau einem Treffer mit Best Match, SEE_OTHER wenn die
// Zuordnung mehrdeutig bleibt und ein Mensch entscheiden muss.
func (e *ResolutionEngine) CheckDocument(ctx context.Context, bundle models.AttributeBundle) Outcome {
	out := e.SearchDocument(ctx, bundle)
	if out.Status != StatusOK {
		return out
	}

	if len(out.Results) == 0 {
		out.Status = StatusNotFound
		out.Message = "document is not registered"
		return out
	}
	if out.BestResult != nil && len(out.Results) == 1 {
		out.Status = StatusOK
		out.Message = "document is registered"
		out.Document = out.BestResult
		return out
	}
	out.Status = StatusSeeOther
	out.Message = ambiguityMessage(len(out.Results))
	return out
}

// ambiguityMessage benennt, woran die eindeutige Zuordnung gescheitert ist:
// ein einzelner Kandidat unterhalb der Schwelle oder mehrere Kandidaten.
func ambiguityMessage(n int) string {
	if n == 1 {
		return "document is similar to one registered document, but not similar enough to be the same"
	}
	return fmt.Sprintf("document is similar to %d registered documents", n)
}

// RegisterNewDocument legt einen neuen Datensatz an, wenn das Dokument als
// unregistriert gilt. Jeder Treffer der Suche blockiert die Registrierung,
// auch ein schwacher: ein Match auf Identifier- oder Relaxed-Feldern heißt,
// das Dokument existiert vermutlich schon.
func (e *ResolutionEngine) RegisterNewDocument(ctx context.Context, bundle models.AttributeBundle) Outcome {
	bundle = e.Normalizer.Normalize(bundle)

	if bundle.V3 == "" {
		return Outcome{Status: StatusBadRequest, Message: ErrMissingRequiredV3.Error()}
	}
	registered, err := e.Store.FindByV3(ctx, bundle.V3)
	if err != nil {
		e.Logger.Error("v3-Prüfung fehlgeschlagen", zap.Error(err))
		return Outcome{Status: StatusInternalError, Message: err.Error()}
	}
	if registered != nil {
		return Outcome{Status: StatusBadRequest, Message: ErrV3AlreadyRegistered.Error()}
	}

	out := e.SearchDocument(ctx, bundle)
	if out.Status != StatusOK {
		return out
	}
	if len(out.Results) > 0 {
		out.Status = StatusMethodNotAllowed
		out.Message = "not allowed to register document as new because it is already registered"
		return out
	}

	doc := models.MergeBundle(models.DocumentRecord{RecID: newRecID()}, bundle)
	return e.save(ctx, out, doc, StatusCreated, "created")
}

// UpdateExistingDocument überschreibt die veränderlichen Felder des
// Datensatzes mit dem Bundle. Ein v3, das bereits einem anderen Datensatz
// gehört, ist hier erwartbar und erlaubt; ein fehlendes v3 nicht. Die
// Update-Erlaubnis ist eine explizite Entscheidung: ohne eindeutigen Best
// Match gegen den Zieldatensatz wird nicht überschrieben, damit eine
// wiederverwendete interne ID keinen fremden Datensatz zerstört.
func (e *ResolutionEngine) UpdateExistingDocument(ctx context.Context, bundle models.AttributeBundle, recID string) Outcome {
	bundle = e.Normalizer.Normalize(bundle)

	if bundle.V3 == "" {
		return Outcome{Status: StatusBadRequest, Message: ErrMissingRequiredV3.Error()}
	}

	existing, err := e.Store.FindByID(ctx, recID)
	if err != nil {
		e.Logger.Error("Lookup des Zieldatensatzes fehlgeschlagen",
			zap.String("rec_id", recID), zap.Error(err))
		return Outcome{Status: StatusInternalError, Message: err.Error()}
	}
	if existing == nil {
		return Outcome{
			Status:  StatusMethodNotAllowed,
			Message: fmt.Sprintf("not allowed to update document %s because it is not registered", recID),
		}
	}

	ranking := RankCandidates(bundle, []models.DocumentRecord{*existing})
	bestMin, runnerUpMax := e.thresholds()
	best := ranking.BestMatch(bestMin, runnerUpMax)
	out := Outcome{
		Results:    []models.DocumentRecord{*existing},
		Ranking:    ranking,
		BestResult: best,
	}
	if best == nil {
		out.Status = StatusForbidden
		out.Message = fmt.Sprintf("not allowed to update document %s because it is not similar enough", recID)
		return out
	}

	merged := models.MergeBundle(*existing, bundle)
	return e.save(ctx, out, merged, StatusOK, "updated")
}

// Manage ist die zusammengesetzte Operation für Ingestion-Pipelines, die
// nicht wissen, ob das Dokument schon existiert: registrieren, wenn nichts
// gefunden wurde (auf Wunsch mit generiertem v3), aktualisieren bei genau
// einem eindeutigen Treffer, sonst SEE_OTHER zur manuellen Klärung.
func (e *ResolutionEngine) Manage(ctx context.Context, bundle models.AttributeBundle, generateV3 bool) Outcome {
	out := e.SearchDocument(ctx, bundle)
	if out.Status != StatusOK {
		return out
	}

	if len(out.Results) == 0 {
		if bundle.V3 == "" && generateV3 {
			v3, err := e.UnregisteredV3(ctx)
			if err != nil {
				e.Logger.Error("v3-Generierung fehlgeschlagen", zap.Error(err))
				return Outcome{Status: StatusInternalError, Message: err.Error()}
			}
			bundle.V3 = v3
		}
		return e.RegisterNewDocument(ctx, bundle)
	}

	if out.BestResult != nil && len(out.Results) == 1 {
		return e.UpdateExistingDocument(ctx, bundle, out.BestResult.RecID)
	}

	out.Status = StatusSeeOther
	out.Message = ambiguityMessage(len(out.Results))
	return out
}

// UnregisteredV3 generiert so lange neue Tokens, bis eines nicht registriert
// ist. Bewusst unbegrenzt: die Kollisionswahrscheinlichkeit eines gut
// dimensionierten Tokens ist astronomisch klein, eine Kollision bedeutet
// schlicht erneut nachschlagen.
func (e *ResolutionEngine) UnregisteredV3(ctx context.Context) (string, error) {
	for {
		v3 := e.Generator.Generate()
		doc, err := e.Store.FindByV3(ctx, v3)
		if err != nil {
			return "", err
		}
		if doc == nil {
			return v3, nil
		}
	}
}

// save persistiert und übersetzt Speicherfehler in die Ergebnis-Taxonomie:
// Unique-Verletzung (verlorenes Rennen) als BAD_REQUEST ohne automatischen
// Retry, alles Unerwartete als INTERNAL_SERVER_ERROR.
func (e *ResolutionEngine) save(ctx context.Context, out Outcome, doc models.DocumentRecord, success Status, msg string) Outcome {
	if err := e.Store.Save(ctx, &doc); err != nil {
		if errors.Is(err, storage.ErrNotUnique) {
			out.Status = StatusBadRequest
			out.Message = err.Error()
			return out
		}
		e.Logger.Error("Speichern des Dokuments fehlgeschlagen",
			zap.String("v3", doc.V3), zap.Error(err))
		out.Status = StatusInternalError
		out.Message = err.Error()
		return out
	}
	out.Status = success
	out.Message = msg
	out.Document = &doc
	return out
}

// newRecID erzeugt die interne 32-stellige Datensatz-ID.
func newRecID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
