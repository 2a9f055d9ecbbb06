package summarizer

import (
	"fmt"
	"io"
	"os"
	"unicode/utf8"
)

// spillFile holds the input text on disk so tokenization can stream it in
// fixed windows instead of holding the whole document plus its sentence list
// in memory at once.
type spillFile struct {
	file *os.File
	// carry holds the bytes of a multi-byte character cut off by the
	// previous window edge.
	carry []byte
}

// ingest writes the text to a temp file and returns a windowed reader over
// it. The caller must Close the spill on every exit path.
func (s *Summarizer) ingest(text string) (*spillFile, error) {
	file, err := os.CreateTemp("", "newsfuse-summarize-*.txt")
	if err != nil {
		return nil, fmt.Errorf("create spill file: %w", err)
	}

	if _, err := file.WriteString(text); err != nil {
		file.Close()
		os.Remove(file.Name())
		return nil, fmt.Errorf("write spill file: %w", err)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		file.Close()
		os.Remove(file.Name())
		return nil, fmt.Errorf("rewind spill file: %w", err)
	}

	s.logger.Debug("input spilled to disk",
		"bytes", len(text),
		"path", file.Name(),
	)
	return &spillFile{file: file}, nil
}

// Next reads the next window into buf. A multi-byte character straddling the
// window edge is held back and prepended to the following window, so every
// returned chunk is valid UTF-8. done is true once the file is exhausted;
// the final window may be returned together with done.
func (sp *spillFile) Next(buf []byte) (chunk string, done bool, err error) {
	n, err := io.ReadFull(sp.file, buf)
	switch err {
	case nil:
		data := append(sp.carry, buf[:n]...)
		complete, partial := splitPartialRune(data)
		sp.carry = append([]byte(nil), partial...)
		return string(complete), false, nil
	case io.EOF:
		chunk = string(sp.carry)
		sp.carry = nil
		return chunk, true, nil
	case io.ErrUnexpectedEOF:
		data := append(sp.carry, buf[:n]...)
		sp.carry = nil
		return string(data), true, nil
	default:
		return "", false, fmt.Errorf("read spill window: %w", err)
	}
}

// splitPartialRune cuts an incomplete trailing UTF-8 sequence off data. At
// most utf8.UTFMax-1 bytes end up in partial.
func splitPartialRune(data []byte) (complete, partial []byte) {
	for back := 1; back < utf8.UTFMax && back <= len(data); back++ {
		b := data[len(data)-back]
		if !utf8.RuneStart(b) {
			continue
		}
		if leadRuneLen(b) > back {
			return data[:len(data)-back], data[len(data)-back:]
		}
		break
	}
	return data, nil
}

// leadRuneLen returns the sequence length a UTF-8 lead byte announces.
func leadRuneLen(b byte) int {
	switch {
	case b&0xE0 == 0xC0:
		return 2
	case b&0xF0 == 0xE0:
		return 3
	case b&0xF8 == 0xF0:
		return 4
	default:
		return 1
	}
}

// Close releases the temp file and removes it from disk.
func (sp *spillFile) Close() error {
	name := sp.file.Name()
	closeErr := sp.file.Close()
	if err := os.Remove(name); err != nil && closeErr == nil {
		closeErr = err
	}
	return closeErr
}
