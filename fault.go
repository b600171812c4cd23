package mregion

import (
	"bytes"
	"io"
	"runtime"
	"runtime/debug"

	"github.com/pkg/errors"
)

// addressFault is the runtime error raised for a memory fault while
// debug.SetPanicOnFault is on.
type addressFault interface {
	runtime.Error
	Addr() uintptr
}

// guard runs fn and turns a memory fault inside the region into a Fault
// error. Faults elsewhere are re-raised as panics.
func (r *Region) guard(op string, fn func()) (err error) {
	base := r.Base()
	end := base + uintptr(r.Len())

	prev := debug.SetPanicOnFault(true)
	defer func() {
		debug.SetPanicOnFault(prev)
		v := recover()
		if v == nil {
			return
		}
		fault, ok := v.(addressFault)
		if !ok || fault.Addr() < base || fault.Addr() >= end {
			// A fault outside the region comes back as a panic instead of the
			// runtime's fatal fault; there is no way to re-raise the latter.
			panic(v)
		}
		err = WrapError(Fault, op, errors.Errorf("fault at %#x (offset %d)", fault.Addr(), fault.Addr()-base))
	}()
	fn()
	return nil
}

// ReadAt implements io.ReaderAt over the first Size bytes of the region.
// Faults, e.g. from NoAccess pages or a truncated backing file, return a
// Fault error instead of crashing the process.
func (r *Region) ReadAt(p []byte, off int64) (n int, err error) {
	const op = "read"
	if err := r.checkActive(op); err != nil {
		return 0, err
	}
	if off < 0 {
		return 0, invalidf(op, "negative offset %d", off)
	}
	if off >= int64(r.size) {
		return 0, io.EOF
	}
	if err := r.guard(op, func() { n = copy(p, r.data[off:r.size]) }); err != nil {
		return 0, err
	}
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// WriteAt implements io.WriterAt over the first Size bytes of the region.
// Writing to pages without write access returns a Fault error.
func (r *Region) WriteAt(p []byte, off int64) (n int, err error) {
	const op = "write"
	if err := r.checkActive(op); err != nil {
		return 0, err
	}
	if off < 0 || off > int64(r.size) {
		return 0, invalidf(op, "offset %d outside region of %d bytes", off, r.size)
	}
	if err := r.guard(op, func() { n = copy(r.data[off:r.size], p) }); err != nil {
		return 0, err
	}
	if n < len(p) {
		return n, io.ErrShortWrite
	}
	return n, nil
}

// Reader reads a region sequentially, converting faults into errors. Reads
// after the region is unmapped fail with NotActive.
type Reader struct {
	region *Region
	reader *bytes.Reader
}

// NewReader returns a Reader over r's first Size bytes.
func NewReader(r *Region) *Reader {
	return &Reader{region: r, reader: bytes.NewReader(r.Bytes())}
}

// Len returns the number of unread bytes.
func (f *Reader) Len() int {
	return f.reader.Len()
}

// Size returns the length of the underlying region.
func (f *Reader) Size() int64 {
	return f.reader.Size()
}

func (f *Reader) Read(b []byte) (n int, err error) {
	if err := f.region.checkActive("read"); err != nil {
		return 0, err
	}
	if fault := f.region.guard("read", func() { n, err = f.reader.Read(b) }); fault != nil {
		return 0, fault
	}
	return n, err
}

func (f *Reader) ReadAt(b []byte, off int64) (n int, err error) {
	if err := f.region.checkActive("read"); err != nil {
		return 0, err
	}
	if fault := f.region.guard("read", func() { n, err = f.reader.ReadAt(b, off) }); fault != nil {
		return 0, fault
	}
	return n, err
}

func (f *Reader) Seek(offset int64, whence int) (int64, error) {
	return f.reader.Seek(offset, whence)
}

func (f *Reader) WriteTo(w io.Writer) (n int64, err error) {
	if err := f.region.checkActive("read"); err != nil {
		return 0, err
	}
	if fault := f.region.guard("read", func() { n, err = f.reader.WriteTo(w) }); fault != nil {
		return n, fault
	}
	return n, err
}
