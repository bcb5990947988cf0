package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/noah-isme/mikoro-portal/internal/models"
	"github.com/noah-isme/mikoro-portal/internal/observability"
)

// DefaultSnapshotKey is the storage key of the portal snapshot.
const DefaultSnapshotKey = "mi-koro-db"

const snapshotSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["students", "teachers", "attendance", "violations", "achievements", "grades", "announcements", "passwords"],
  "properties": {
    "students":      {"type": "array", "items": {"type": "object"}},
    "teachers":      {"type": "array", "items": {"type": "object"}},
    "attendance":    {"type": "array", "items": {"type": "object"}},
    "violations":    {"type": "array", "items": {"type": "object"}},
    "achievements":  {"type": "array", "items": {"type": "object"}},
    "grades":        {"type": "array", "items": {"type": "object"}},
    "announcements": {"type": "array", "items": {"type": "object"}},
    "passwords":     {"type": "array", "items": {"type": "object"}}
  }
}`

var compiledSnapshotSchema = jsonschema.MustCompileString("snapshot.schema.json", snapshotSchema)

// SnapshotRepository is the whole-snapshot data store.
//
// Writes replace the stored document unconditionally. There is no
// optimistic-concurrency check, so two processes sharing one backend lose
// updates: the last Save wins.
type SnapshotRepository interface {
	EnsureSeeded(ctx context.Context) error
	Load(ctx context.Context) (models.Snapshot, error)
	Save(ctx context.Context, snapshot models.Snapshot) error
}

type snapshotRepository struct {
	store  KeyValueStore
	key    string
	logger zerolog.Logger
}

// NewSnapshotRepository builds the data store over the given backend. A nil
// backend yields a store that never touches storage and always serves the fixture.
func NewSnapshotRepository(store KeyValueStore, key string, logger zerolog.Logger) SnapshotRepository {
	if key == "" {
		key = DefaultSnapshotKey
	}
	return &snapshotRepository{
		store:  store,
		key:    key,
		logger: logger.With().Str("component", "snapshot_repository").Logger(),
	}
}

func (r *snapshotRepository) EnsureSeeded(ctx context.Context) error {
	if r.store == nil {
		return nil
	}

	_, found, err := r.store.Get(ctx, r.key)
	if err != nil {
		return err
	}
	if found {
		return nil
	}

	r.logger.Info().Str("key", r.key).Msg("seeding empty snapshot store")
	return r.write(ctx, models.Fixture())
}

func (r *snapshotRepository) Load(ctx context.Context) (models.Snapshot, error) {
	if r.store == nil {
		observability.SnapshotLoads().WithLabelValues("unavailable").Inc()
		return models.Fixture(), nil
	}

	raw, found, err := r.store.Get(ctx, r.key)
	if err != nil {
		return models.Snapshot{}, err
	}

	if !found || len(raw) == 0 {
		fixture := models.Fixture()
		if err := r.write(ctx, fixture); err != nil {
			return models.Snapshot{}, err
		}
		observability.SnapshotLoads().WithLabelValues("seeded").Inc()
		return fixture, nil
	}

	snapshot, decodeErr := decodeSnapshot(raw)
	if decodeErr != nil {
		// Recovery discards every record held in the corrupt document.
		r.logger.Warn().Err(decodeErr).Str("key", r.key).Int("discarded_bytes", len(raw)).Msg("corrupt snapshot replaced with fixture")
		fixture := models.Fixture()
		if err := r.write(ctx, fixture); err != nil {
			return models.Snapshot{}, err
		}
		observability.SnapshotResets().Inc()
		observability.SnapshotLoads().WithLabelValues("reset").Inc()
		return fixture, nil
	}

	observability.SnapshotLoads().WithLabelValues("hit").Inc()
	return snapshot, nil
}

func (r *snapshotRepository) Save(ctx context.Context, snapshot models.Snapshot) error {
	if r.store == nil {
		return nil
	}
	if err := r.write(ctx, snapshot); err != nil {
		return err
	}
	observability.SnapshotSaves().Inc()
	return nil
}

func (r *snapshotRepository) write(ctx context.Context, snapshot models.Snapshot) error {
	payload, err := json.Marshal(snapshot.Normalize())
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return r.store.Set(ctx, r.key, payload)
}

func decodeSnapshot(raw []byte) (models.Snapshot, error) {
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()

	var document interface{}
	if err := decoder.Decode(&document); err != nil {
		return models.Snapshot{}, fmt.Errorf("parse snapshot: %w", err)
	}
	if err := compiledSnapshotSchema.Validate(document); err != nil {
		return models.Snapshot{}, fmt.Errorf("validate snapshot: %w", err)
	}

	var snapshot models.Snapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return models.Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return snapshot.Normalize(), nil
}
