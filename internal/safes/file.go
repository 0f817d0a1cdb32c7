package safes

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hamed0406/safewarmer/internal/domain"
)

const fileHeader = "safe"

// File reads a cached safe list: a header line, then one safe per line.
type File struct {
	Path string
}

func (f *File) Load(_ context.Context) ([]domain.Safe, error) {
	fh, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("open safes file: %w", err)
	}
	defer fh.Close()
	return ReadList(fh)
}

// ReadList parses the cache file format. Blank lines are skipped; quoted
// values are kept byte for byte, surrounding whitespace included.
func ReadList(r io.Reader) ([]domain.Safe, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	var out []domain.Safe
	header := true
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read safes file: %w", err)
		}
		if header {
			header = false
			continue
		}
		if len(rec) == 0 || rec[0] == "" {
			continue
		}
		out = append(out, domain.Safe(rec[0]))
	}
	return out, nil
}

// WriteFile stores safes with a header line and every field quoted.
func WriteFile(path string, safes []domain.Safe) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create safes dir: %w", err)
		}
	}
	tmp := path + ".tmp"
	fh, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create safes file: %w", err)
	}
	if err := WriteList(fh, safes); err != nil {
		fh.Close()
		os.Remove(tmp)
		return err
	}
	if err := fh.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close safes file: %w", err)
	}
	return os.Rename(tmp, path)
}

// WriteList writes the cache file format. encoding/csv only quotes when
// needed, so quoting is done here.
func WriteList(w io.Writer, safes []domain.Safe) error {
	var b strings.Builder
	b.WriteString(quote(fileHeader))
	b.WriteByte('\n')
	for _, s := range safes {
		b.WriteString(quote(string(s)))
		b.WriteByte('\n')
	}
	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("write safes file: %w", err)
	}
	return nil
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
