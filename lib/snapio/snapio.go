/*package snapio contains functions for reading the binary grid and particle
files of an AMR snapshot. Only requested fields are ever transferred into
memory: unrequested fluid fields are skipped with relative seeks, and particle
records are deinterleaved column by column.

A Reader is not safe for concurrent use.
*/
package snapio

import (
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/phil-mansfield/boxio/lib/amr"
)

// File is the subset of *os.File that Reader needs.
type File interface {
	io.Reader
	io.Seeker
	io.Closer
}

// Opener opens a file for reading.
type Opener func(fileName string) (File, error)

// Reader reads fluid and particle fields from the files described by a
// Dataset.
type Reader struct {
	ds *amr.Dataset
	open Opener
	log *zap.SugaredLogger
	buf *Buffer
}

// Option configures a Reader.
type Option func(*Reader)

// WithLogger sets the logger used for debug output.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(rd *Reader) { rd.log = log }
}

// WithOpener replaces os.Open as the way files are opened. Tests use this to
// count bytes and seeks.
func WithOpener(open Opener) Option {
	return func(rd *Reader) { rd.open = open }
}

// NewReader creates a Reader for the given dataset.
func NewReader(ds *amr.Dataset, opts ...Option) *Reader {
	rd := &Reader{
		ds: ds, open: openOS, log: zap.NewNop().Sugar(), buf: &Buffer{ },
	}
	for _, opt := range opts { opt(rd) }
	return rd
}

func openOS(fileName string) (File, error) { return os.Open(fileName) }
