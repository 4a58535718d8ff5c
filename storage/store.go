package storage

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"pid-keeper/models"
)

// ErrNotUnique signalisiert eine Verletzung der Unique-Indizes auf v3/v2.
// Tritt bei konkurrierenden Registrierungen desselben Dokuments auf; der
// Verlierer des Rennens bekommt diesen Fehler und darf nicht automatisch
// erneut speichern.
var ErrNotUnique = errors.New("document violates v3/v2 uniqueness")

// DefaultPageSize ist die Seitengröße, wenn der Aufrufer keine angibt.
const DefaultPageSize = 50

// Store ist das Persistenz-Gateway über GORM/PostgreSQL. Die Unique-Indizes
// auf v3 und v2 sind die letzte Verteidigungslinie gegen doppelte
// Registrierung; die Engine verlässt sich darauf.
type Store struct {
	db       *gorm.DB
	log      *zap.Logger
	pageSize int
}

// NewStore erstellt einen Store. pageSize <= 0 fällt auf DefaultPageSize zurück.
func NewStore(db *gorm.DB, log *zap.Logger, pageSize int) *Store {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Store{db: db, log: log, pageSize: pageSize}
}

// AutoMigrate legt Tabelle und Indizes an.
func (s *Store) AutoMigrate() error {
	return s.db.AutoMigrate(&models.DocumentRecord{})
}

// Save persistiert den Datensatz. Updated wird bei jedem Aufruf gesetzt,
// Created nur beim ersten. Unique-Verletzungen werden als ErrNotUnique
// gemeldet.
func (s *Store) Save(ctx context.Context, doc *models.DocumentRecord) error {
	now := time.Now().UTC()
	doc.Updated = now
	if doc.Created.IsZero() {
		doc.Created = now
	}

	if err := s.db.WithContext(ctx).Save(doc).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			s.log.Warn("Unique-Verletzung beim Speichern",
				zap.String("v3", doc.V3), zap.String("v2", doc.V2))
			return ErrNotUnique
		}
		return err
	}
	return nil
}

// FindByPredicate führt das übersetzte Prädikat aus. Sortierung: zuletzt
// aktualisierte Datensätze zuerst. page beginnt bei 1.
func (s *Store) FindByPredicate(ctx context.Context, p Predicate, page, perPage int) ([]models.DocumentRecord, error) {
	clause, args, err := Translate(p)
	if err != nil {
		return nil, err
	}
	if perPage <= 0 {
		perPage = s.pageSize
	}
	if page <= 0 {
		page = 1
	}

	var docs []models.DocumentRecord
	err = s.db.WithContext(ctx).
		Where(clause, args...).
		Order("updated desc").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&docs).Error
	if err != nil {
		return nil, err
	}
	return docs, nil
}

// FindByID holt den Datensatz zur internen ID; (nil, nil) wenn nicht vorhanden.
func (s *Store) FindByID(ctx context.Context, recID string) (*models.DocumentRecord, error) {
	var doc models.DocumentRecord
	err := s.db.WithContext(ctx).First(&doc, "rec_id = ?", recID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// FindByV3 holt den Datensatz zum pid v3; (nil, nil) wenn nicht vorhanden.
func (s *Store) FindByV3(ctx context.Context, v3 string) (*models.DocumentRecord, error) {
	var doc models.DocumentRecord
	err := s.db.WithContext(ctx).First(&doc, "v3 = ?", v3).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// ListDocuments liefert eine Seite aller Datensätze, zuletzt aktualisierte zuerst.
func (s *Store) ListDocuments(ctx context.Context, page, perPage int) ([]models.DocumentRecord, error) {
	if perPage <= 0 {
		perPage = s.pageSize
	}
	if page <= 0 {
		page = 1
	}
	var docs []models.DocumentRecord
	err := s.db.WithContext(ctx).
		Order("updated desc").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&docs).Error
	return docs, err
}

// DuplicateIdentifiers listet v2/aop-Werte, die in mehr als einem Datensatz
// als Identifier auftauchen. Read-only, wird vom Integritäts-Audit genutzt.
func (s *Store) DuplicateIdentifiers(ctx context.Context) ([]string, error) {
	var values []string
	err := s.db.WithContext(ctx).Raw(`
		SELECT id FROM (
			SELECT v2 AS id FROM pid_documents WHERE v2 <> ''
			UNION ALL
			SELECT aop AS id FROM pid_documents WHERE aop <> ''
		) ids
		GROUP BY id HAVING COUNT(*) > 1`).Scan(&values).Error
	return values, err
}
