package dumps

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"io"
	"os"
	"unicode/utf8"

	"pvcreek/internal/platform/logger"
	perr "pvcreek/internal/platform/errors"
)

const (
	maxLineSize  = 4 * 1024 * 1024
	sampleRawMax = 512 // max bytes of a line to log for the sample
)

var gzipMagic = []byte{0x1f, 0x8b}

// LineReader streams text lines from a gzip or plain dump
// It satisfies stream.Source[string]
type LineReader struct {
	name    string
	r       io.ReadCloser
	gz      *gzip.Reader
	sc      *bufio.Scanner
	err     error
	lines   int
	bytes   int64
	sampled bool // logs exactly one sample line per file
}

// NewLineReader wraps r; name only labels logs and errors
// r is closed by Close, and also when construction fails
func NewLineReader(name string, r io.ReadCloser) (*LineReader, error) {
	br := bufio.NewReaderSize(r, 64*1024)
	rd := &LineReader{name: name, r: r}

	var src io.Reader = br
	head, err := br.Peek(len(gzipMagic))
	if err != nil && !errors.Is(err, io.EOF) {
		_ = r.Close()
		return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "dumps: read %s", name)
	}
	if bytes.Equal(head, gzipMagic) {
		gz, err := gzip.NewReader(br)
		if err != nil {
			_ = r.Close()
			return nil, perr.Wrapf(err, perr.ErrorCodeMalformed, "dumps: %s is not a valid gzip stream", name)
		}
		rd.gz = gz
		src = gz
	}

	sc := bufio.NewScanner(src)
	sc.Buffer(make([]byte, 64*1024), maxLineSize)
	sc.Split(scanLF)
	rd.sc = sc
	return rd, nil
}

// OpenFile streams a local dump
func OpenFile(path string) (*LineReader, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, perr.NotFoundf("dumps: %s does not exist", path)
		}
		return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "dumps: open %s", path)
	}
	return NewLineReader(path, f)
}

// Open fetches name with f and streams it
func Open(ctx context.Context, f Fetcher, name string) (*LineReader, error) {
	rc, err := f.Fetch(ctx, name)
	if err != nil {
		return nil, err
	}
	return NewLineReader(name, rc)
}

// Next returns the next line without its trailing \n; io.EOF when done
func (rd *LineReader) Next() (string, error) {
	if rd.err != nil {
		return "", rd.err
	}
	if !rd.sc.Scan() {
		if err := rd.sc.Err(); err != nil {
			rd.err = perr.Wrapf(err, perr.ErrorCodeMalformed, "dumps: read %s after %d lines", rd.name, rd.lines)
			return "", rd.err
		}
		rd.err = io.EOF
		return "", io.EOF
	}
	b := rd.sc.Bytes()
	rd.lines++
	rd.bytes += int64(len(b) + 1)
	if !utf8.Valid(b) {
		rd.err = perr.Newf(perr.ErrorCodeMalformed, "dumps: %s line %d is not valid UTF-8", rd.name, rd.lines)
		return "", rd.err
	}
	line := string(b)

	if !rd.sampled {
		rd.sampled = true
		logger.Named("dumps").Debug().
			Str("file", rd.name).
			Int("line_bytes", len(b)).
			Str("sample_raw", truncateUTF8(b, sampleRawMax)).
			Msg("dumps: sample line")
	}
	return line, nil
}

// Close closes the decompressor and the underlying reader
func (rd *LineReader) Close() error {
	var first error
	if rd.gz != nil {
		if err := rd.gz.Close(); err != nil {
			first = err
		}
	}
	if rd.r != nil {
		if err := rd.r.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Stats returns the number of lines read and uncompressed bytes consumed so far
func (rd *LineReader) Stats() (lines int, bytes int64) {
	return rd.lines, rd.bytes
}

// scanLF splits on \n only, so a \r before it stays part of the line
func scanLF(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

// truncateUTF8 cuts b to at most max bytes on a rune boundary and marks the cut
func truncateUTF8(b []byte, max int) string {
	if max <= 0 || len(b) <= max {
		return string(b)
	}
	i := max
	for i > 0 && !utf8.RuneStart(b[i]) {
		i--
	}
	if i <= 0 {
		i = max
	}
	return string(b[:i]) + "..."
}
