package snapio

import (
	"bytes"
	"encoding/binary"
	"io"
	"io/fs"
	"sort"

	"github.com/pkg/errors"
)

// FakeFile is an in-memory File that records how it was used. See the File
// interface for documentation of its I/O methods.
type FakeFile struct {
	rd *bytes.Reader
	fs *FakeFS
	name string
}

// FakeFS is a set of in-memory files which can be opened by a Reader through
// its Opener. It counts opens, seeks and bytes read per file so tests can
// check that unrequested data was skipped.
type FakeFS struct {
	files map[string][]byte
	Opens, Seeks, BytesRead map[string]int
	// Closed is the number of files that have been closed.
	Closed int
}

// Type assertion
var _ File = &FakeFile{ }

// NewFakeFS creates an empty FakeFS.
func NewFakeFS() *FakeFS {
	return &FakeFS{
		files: map[string][]byte{ },
		Opens: map[string]int{ }, Seeks: map[string]int{ },
		BytesRead: map[string]int{ },
	}
}

// Add adds a file containing the binary encoding of each array in x, written
// back to back in the given byte order.
func (fsys *FakeFS) Add(
	name string, order binary.ByteOrder, x ...interface{},
) {
	fsys.files[name] = arrayToBytes(order, x...)
}

// AddBytes adds a file with the given contents.
func (fsys *FakeFS) AddBytes(name string, b []byte) { fsys.files[name] = b }

// Names returns the sorted names of every file.
func (fsys *FakeFS) Names() []string {
	names := []string{ }
	for name := range fsys.files { names = append(names, name) }
	sort.Strings(names)
	return names
}

// Open implements Opener. Missing files return an error that wraps
// fs.ErrNotExist.
func (fsys *FakeFS) Open(name string) (File, error) {
	b, ok := fsys.files[name]
	if !ok {
		return nil, errors.Wrapf(fs.ErrNotExist, "open %s", name)
	}
	fsys.Opens[name]++
	return &FakeFile{ bytes.NewReader(b), fsys, name }, nil
}

// TotalBytesRead returns the number of bytes read across every file.
func (fsys *FakeFS) TotalBytesRead() int {
	n := 0
	for _, m := range fsys.BytesRead { n += m }
	return n
}

// TotalOpens returns the number of opens across every file.
func (fsys *FakeFS) TotalOpens() int {
	n := 0
	for _, m := range fsys.Opens { n += m }
	return n
}

func (f *FakeFile) Read(p []byte) (int, error) {
	n, err := f.rd.Read(p)
	f.fs.BytesRead[f.name] += n
	return n, err
}

func (f *FakeFile) Seek(offset int64, whence int) (int64, error) {
	if !(offset == 0 && whence == io.SeekCurrent) { f.fs.Seeks[f.name]++ }
	return f.rd.Seek(offset, whence)
}

func (f *FakeFile) Close() error {
	f.fs.Closed++
	return nil
}

func arrayToBytes(order binary.ByteOrder, x ...interface{}) []byte {
	buf := &bytes.Buffer{ }
	for i := range x {
		err := binary.Write(buf, order, x[i])
		if err != nil { panic(err.Error()) }
	}
	return buf.Bytes()
}
