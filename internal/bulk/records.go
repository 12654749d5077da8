package bulk

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
)

// readBufferSize fits typical benchmark rows without growing the buffer.
const readBufferSize = 256 * 1024

// recordReader splits CSV input into raw records without parsing fields.
// A newline inside a quoted field does not end a record. Records are returned
// byte for byte, so quoting and NULL semantics stay with the server's COPY
// parser.
type recordReader struct {
	r       *bufio.Reader
	records int64
}

func newRecordReader(r io.Reader) *recordReader {
	return &recordReader{r: bufio.NewReaderSize(r, readBufferSize)}
}

// appendNext appends the next record, newline-terminated, to dst.
// It returns io.EOF when no records remain.
func (rr *recordReader) appendNext(dst *bytes.Buffer) error {
	inQuotes := false
	started := false

	for {
		chunk, err := rr.r.ReadSlice('\n')
		if len(chunk) > 0 {
			started = true
			dst.Write(chunk)
			for _, b := range chunk {
				if b == '"' {
					inQuotes = !inQuotes
				}
			}
		}

		switch {
		case err == nil:
			if !inQuotes {
				rr.records++
				return nil
			}
		case errors.Is(err, bufio.ErrBufferFull):
			// long record, keep reading
		case errors.Is(err, io.EOF):
			if !started {
				return io.EOF
			}
			if inQuotes {
				return fmt.Errorf("record %d: unterminated quoted field at end of file", rr.records+1)
			}
			dst.WriteByte('\n')
			rr.records++
			return nil
		default:
			return err
		}
	}
}
