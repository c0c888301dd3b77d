package fileinfo

import (
	"io"
	"io/ioutil"
	"os"
)

// ReadAtCloser is a random-access read source that can also be closed;
// *os.File satisfies it directly.
type ReadAtCloser interface {
	io.ReaderAt
	io.Closer
}

// OpenFile opens path for random-access file-info scanning (the header
// scan reads it forward through an io.SectionReader, the footer scan reads
// it backward through a ReverseLineReader), returning it along with its
// size and modification time. The caller must Close it when done.
func OpenFile(path string) (rac ReadAtCloser, size int64, modTime int64, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, 0, err
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, 0, err
	}
	return f, st.Size(), st.ModTime().Unix(), nil
}

// sizedReaderAt converts an arbitrary read stream into a ReadAtCloser and
// reports its size, spooling it into an anonymous temp file when it isn't
// already random-access. Grounded on the teacher's cmd/soc/store.go
// sizedReaderAt/sponge pair, needed for the same reason there: a caller may
// hand the parser a plain streaming io.ReadCloser (piped from a transport
// that hasn't landed the file on disk), and the footer's reverse scan still
// needs random access.
//
// On success the caller is no longer responsible for closing rc: it has
// either been closed already, or returned as the ReadAtCloser itself.
func sizedReaderAt(rc io.ReadCloser) (ReadAtCloser, int64, error) {
	if rac, ok := rc.(ReadAtCloser); ok {
		if st, ok := rc.(interface{ Stat() (os.FileInfo, error) }); ok {
			if info, err := st.Stat(); err == nil {
				return rac, info.Size(), nil
			}
		}
	}

	f, err := sponge(rc)
	if err != nil {
		return nil, 0, err
	}
	if cerr := rc.Close(); cerr != nil {
		return nil, 0, cerr
	}
	st, err := f.Stat()
	if err != nil {
		return nil, 0, err
	}
	return f, st.Size(), nil
}

// sponge copies all data from r into a new temporary file to support
// random access, then unlinks it: the data only exists as long as the
// returned file stays open.
func sponge(r io.Reader) (_ *os.File, rerr error) {
	tmp, err := ioutil.TempFile("", "gcodeinfo")
	if err != nil {
		return nil, err
	}
	defer func() {
		if rerr != nil {
			os.Remove(tmp.Name())
			tmp.Close()
		}
	}()
	if _, err := io.Copy(tmp, r); err != nil {
		return nil, err
	}
	os.Remove(tmp.Name())
	return tmp, nil
}
