package dedupe

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/hdnguyen/secondhand-scout/internal/core"
)

var csvHeader = []string{"name", "price", "link", "observed_at"}

// The store is opened in spreadsheet tools on Windows; the BOM keeps
// Vietnamese names and prices readable there.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVStore is the primary durable store: a human-readable, append-only CSV
// file with one row per item. Every Append flushes and syncs one full row,
// so a crash can tear at most the row being written; Load skips a torn or
// malformed row without touching earlier records.
type CSVStore struct {
	path   string
	file   *os.File
	writer *csv.Writer
}

func NewCSVStore(path string) (*CSVStore, error) {
	if path == "" {
		return nil, fmt.Errorf("csv store path is required")
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}
	return &CSVStore{path: path}, nil
}

func (s *CSVStore) Load(ctx context.Context) (map[string]struct{}, []core.Item, error) {
	_ = ctx
	seen := map[string]struct{}{}

	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return seen, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}
	defer f.Close()

	br := bufio.NewReader(f)
	if prefix, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(prefix, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	r := csv.NewReader(br)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var items []core.Item
	first := true
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Tolerate a torn row; rows before it are intact.
			continue
		}
		if first {
			first = false
			if len(record) > 0 && record[0] == csvHeader[0] {
				continue
			}
		}
		if len(record) < len(csvHeader) {
			continue
		}
		item := core.Item{
			Name:  record[0],
			Price: record[1],
			URL:   record[2],
		}
		if item.URL == "" {
			continue
		}
		if ts, err := time.Parse(time.RFC3339, record[3]); err == nil {
			item.ObservedAt = ts
		}
		if _, dup := seen[item.URL]; dup {
			continue
		}
		seen[item.URL] = struct{}{}
		items = append(items, item)
	}
	return seen, items, nil
}

func (s *CSVStore) Append(ctx context.Context, item core.Item) error {
	_ = ctx
	if item.URL == "" {
		return fmt.Errorf("item url is required")
	}
	if s.writer == nil {
		if err := s.open(); err != nil {
			return err
		}
	}

	record := []string{item.Name, item.Price, item.URL, item.ObservedAt.UTC().Format(time.RFC3339)}
	if err := s.writer.Write(record); err != nil {
		return fmt.Errorf("append store record: %w", err)
	}
	s.writer.Flush()
	if err := s.writer.Error(); err != nil {
		return fmt.Errorf("flush store record: %w", err)
	}
	if err := s.file.Sync(); err != nil {
		return fmt.Errorf("sync store: %w", err)
	}
	return nil
}

func (s *CSVStore) Close() error {
	if s.file == nil {
		return nil
	}
	if s.writer != nil {
		s.writer.Flush()
	}
	err := s.file.Close()
	s.file = nil
	s.writer = nil
	return err
}

func (s *CSVStore) open() error {
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open store for append: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return fmt.Errorf("stat store: %w", err)
	}
	if info.Size() > 0 {
		// A crash mid-write can leave a torn final row without its newline
		// terminator. Close that line off before appending, or the next
		// record would concatenate onto the torn tail and be lost to Load.
		last := make([]byte, 1)
		if _, err := f.ReadAt(last, info.Size()-1); err != nil {
			f.Close()
			return fmt.Errorf("read store tail: %w", err)
		}
		if last[0] != '\n' {
			if _, err := f.Write([]byte("\n")); err != nil {
				f.Close()
				return fmt.Errorf("terminate torn store row: %w", err)
			}
		}
	}
	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if _, err := f.Write(utf8BOM); err != nil {
			f.Close()
			return fmt.Errorf("write store header: %w", err)
		}
		if err := w.Write(csvHeader); err != nil {
			f.Close()
			return fmt.Errorf("write store header: %w", err)
		}
		w.Flush()
		if err := w.Error(); err != nil {
			f.Close()
			return fmt.Errorf("write store header: %w", err)
		}
	}
	s.file = f
	s.writer = w
	return nil
}
