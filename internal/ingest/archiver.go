package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/propscan/propscan/internal/domain"
)

// Archiver writes a JSON snapshot of each refreshed (book, game_date) record
// set to object storage. Snapshots are a backup convenience: a failed write
// never fails the refresh that produced it.
type Archiver struct {
	blob   domain.BlobWriter
	prefix string
}

// NewArchiver creates an Archiver writing under the given key prefix.
func NewArchiver(blob domain.BlobWriter, prefix string) *Archiver {
	return &Archiver{blob: blob, prefix: prefix}
}

// SnapshotKey builds the object key for one snapshot:
// prefix/book/YYYY/MM/book_props_YYYY-MM-DD.json.
func (a *Archiver) SnapshotKey(book domain.Book, gameDate string) (string, error) {
	t, err := time.Parse(domain.GameDateLayout, gameDate)
	if err != nil {
		return "", domain.ErrInvalidDate
	}
	key := fmt.Sprintf("%s/%s/%s/%s_props_%s.json",
		book, t.Format("2006"), t.Format("01"), book, gameDate)
	if a.prefix != "" {
		key = a.prefix + "/" + key
	}
	return key, nil
}

// Snapshot marshals the records and uploads them under the snapshot key.
func (a *Archiver) Snapshot(ctx context.Context, book domain.Book, gameDate string, records []domain.PropRecord) error {
	key, err := a.SnapshotKey(book, gameDate)
	if err != nil {
		return fmt.Errorf("ingest: snapshot key for %s/%s: %w", book, gameDate, err)
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("ingest: marshal snapshot %s: %w", key, err)
	}

	if err := a.blob.Put(ctx, key, bytes.NewReader(data), "application/json"); err != nil {
		return fmt.Errorf("ingest: upload snapshot %s: %w", key, err)
	}
	return nil
}
