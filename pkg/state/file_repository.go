package state

import (
	"context"
	"os"

	"github.com/bft-labs/appstate/pkg/durable"
)

// FileRepository implements Repository using a single JSON file.
type FileRepository struct {
	path   string
	writer *durable.Writer
}

// NewFileRepository creates a FileRepository for path. A nil writer gets the
// durable package defaults.
func NewFileRepository(path string, writer *durable.Writer) *FileRepository {
	if writer == nil {
		writer = durable.NewWriter()
	}
	return &FileRepository{path: path, writer: writer}
}

// Load reads and decodes the state file.
// Returns a zero state and nil error if no state file exists.
func (r *FileRepository) Load(ctx context.Context) (Persisted, error) {
	if err := ctx.Err(); err != nil {
		return Persisted{}, err
	}

	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Persisted{}, nil
		}
		return Persisted{}, err
	}
	return Decode(data)
}

// Save persists p atomically: temp file, fsync, rename, directory fsync.
func (r *FileRepository) Save(ctx context.Context, p Persisted) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.writer.WriteFile(r.path, Encode(p), 0o600)
}

// Path returns the full path to the state file.
func (r *FileRepository) Path() string {
	return r.path
}
