// Package store persists normalized schemas so they can be listed and
// fetched again without the source project.
//
// Two backends implement [Store]:
//   - [FileStore]: one JSON file per record, for the CLI and single-node servers
//   - [MongoStore]: a MongoDB collection, for shared deployments
//
// Records are addressed by a UUIDv4 assigned on [New].
//
//	rec := store.New("SupabaseClient.from", result.ProjectHash, result.Schema)
//	if err := st.Put(ctx, rec); err != nil {
//	    return err
//	}
package store

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/typeshape/pkg/errors"
	"github.com/matzehuels/typeshape/pkg/schema"
)

// Record is a stored schema.
type Record struct {
	ID          string       `json:"id"`
	Declaration string       `json:"declaration"`
	ProjectHash string       `json:"project_hash"`
	Schema      *schema.Node `json:"schema"`
	CreatedAt   time.Time    `json:"created_at"`
}

// New creates a record with a fresh ID.
func New(declaration, projectHash string, n *schema.Node) *Record {
	return &Record{
		ID:          uuid.NewString(),
		Declaration: declaration,
		ProjectHash: projectHash,
		Schema:      n,
		CreatedAt:   time.Now().UTC(),
	}
}

// ListOptions filters [Store.List].
type ListOptions struct {
	// Declaration restricts results to one declaration path.
	Declaration string

	// Limit caps the number of records. Zero means no limit.
	Limit int
}

// Store is the interface for record storage backends.
type Store interface {
	// Put creates or replaces a record. A record without an ID gets one.
	Put(ctx context.Context, rec *Record) error

	// Get returns the record with id, or an ErrCodeRecordNotFound error.
	Get(ctx context.Context, id string) (*Record, error)

	// List returns records newest first.
	List(ctx context.Context, opts ListOptions) ([]*Record, error)

	// Delete removes a record, or returns an ErrCodeRecordNotFound error.
	Delete(ctx context.Context, id string) error

	// Close releases backend resources.
	Close() error
}

func prepare(rec *Record) error {
	if rec == nil {
		return errors.New(errors.ErrCodeInvalidInput, "record is required")
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if err := errors.ValidateRecordID(rec.ID); err != nil {
		return err
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	return nil
}

func notFound(id string) error {
	return errors.New(errors.ErrCodeRecordNotFound, "no schema record %q", id)
}

// sortAndLimit orders records newest first (ties by ID) and applies the limit.
func sortAndLimit(recs []*Record, limit int) []*Record {
	sort.Slice(recs, func(i, j int) bool {
		if !recs[i].CreatedAt.Equal(recs[j].CreatedAt) {
			return recs[i].CreatedAt.After(recs[j].CreatedAt)
		}
		return recs[i].ID < recs[j].ID
	})
	if limit > 0 && len(recs) > limit {
		recs = recs[:limit]
	}
	return recs
}
