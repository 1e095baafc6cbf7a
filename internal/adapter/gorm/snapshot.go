package gorm

import (
	"context"
	"encoding/gob"
	"io"
	"log/slog"

	"github.com/bornholm/weekplan/internal/core/port"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const snapshotVersion = 1

type snapshotHeader struct {
	Version int
}

// snapshotRecord holds exactly one non nil entry
type snapshotRecord struct {
	Goal     *Goal
	Task     *Task
	Activity *Activity
	Comment  *Comment
}

const snapshotBatchSize = 100

// GenerateSnapshot implements [port.Snapshotable].
func (s *Store) GenerateSnapshot(ctx context.Context) (io.ReadCloser, error) {
	db, err := s.getDatabase(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	r, w := io.Pipe()

	go func() {
		defer w.Close()

		encoder := gob.NewEncoder(w)

		if err := encoder.Encode(snapshotHeader{Version: snapshotVersion}); err != nil {
			w.CloseWithError(errors.WithStack(err))
			return
		}

		db := db.WithContext(ctx)

		// Goals first, tasks reference them
		err := encodeRows(db, encoder, func(g *Goal) snapshotRecord { return snapshotRecord{Goal: g} })
		if err == nil {
			err = encodeRows(db, encoder, func(t *Task) snapshotRecord { return snapshotRecord{Task: t} })
		}
		if err == nil {
			err = encodeRows(db, encoder, func(a *Activity) snapshotRecord { return snapshotRecord{Activity: a} })
		}
		if err == nil {
			err = encodeRows(db, encoder, func(c *Comment) snapshotRecord { return snapshotRecord{Comment: c} })
		}
		if err != nil {
			w.CloseWithError(errors.WithStack(err))
			return
		}
	}()

	return r, nil
}

func encodeRows[T any](db *gorm.DB, encoder *gob.Encoder, toRecord func(row *T) snapshotRecord) error {
	var rows []*T

	err := db.Model(new(T)).FindInBatches(&rows, snapshotBatchSize, func(tx *gorm.DB, batch int) error {
		for _, r := range rows {
			if err := encoder.Encode(toRecord(r)); err != nil {
				return errors.WithStack(err)
			}
		}

		return nil
	}).Error
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}

// RestoreSnapshot implements [port.Snapshotable].
func (s *Store) RestoreSnapshot(ctx context.Context, r io.Reader) error {
	decoder := gob.NewDecoder(r)

	var header snapshotHeader
	if err := decoder.Decode(&header); err != nil {
		return errors.Wrap(err, "could not decode snapshot header")
	}

	if header.Version != snapshotVersion {
		return errors.Errorf("unsupported snapshot version '%d'", header.Version)
	}

	slog.DebugContext(ctx, "restoring snapshot")
	defer slog.DebugContext(ctx, "snapshot restored")

	// The decoder cannot be rewound, so the restore is never retried
	err := s.withRetry(ctx, true, func(ctx context.Context, db *gorm.DB) error {
		upsert := func(row any) error {
			return db.Omit(clause.Associations).Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				UpdateAll: true,
			}).Create(row).Error
		}

		for {
			var record snapshotRecord
			if err := decoder.Decode(&record); err != nil {
				if errors.Is(err, io.EOF) {
					return nil
				}

				return errors.WithStack(err)
			}

			var row any
			switch {
			case record.Goal != nil:
				row = record.Goal
			case record.Task != nil:
				row = record.Task
			case record.Activity != nil:
				row = record.Activity
			case record.Comment != nil:
				row = record.Comment
			default:
				continue
			}

			if err := upsert(row); err != nil {
				return errors.WithStack(err)
			}
		}
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}

var _ port.Snapshotable = &Store{}
