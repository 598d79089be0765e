package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"executive-analytics/models"
	"executive-analytics/utils"
)

// ErrDatasetMissing is returned when a dataset's source file does not exist.
var ErrDatasetMissing = errors.New("dataset file missing")

const utf8BOM = "\ufeff"

// ReadCSV reads a header row followed by data rows. Header names are trimmed
// and a leading byte order mark is dropped. Cells past the header width are
// ignored and short rows simply lack the trailing columns.
func ReadCSV(r io.Reader) ([]models.RawRow, []string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("csv: read header: %w", err)
	}
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, utf8BOM)
		}
		header[i] = strings.TrimSpace(h)
	}

	var rows []models.RawRow
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return rows, header, fmt.Errorf("csv: read row %d: %w", len(rows)+1, err)
		}
		row := make(models.RawRow, len(header))
		for i, cell := range rec {
			if i >= len(header) {
				break
			}
			if header[i] != "" {
				row[header[i]] = cell
			}
		}
		rows = append(rows, row)
	}
	return rows, header, nil
}

// Loader reads the four source CSV files from a data directory.
type Loader struct {
	dir    string
	files  map[models.Dataset]string
	logger *utils.Logger
}

// NewLoader creates a Loader. files maps each dataset to its file name
// relative to dir.
func NewLoader(dir string, files map[models.Dataset]string, logger *utils.Logger) *Loader {
	return &Loader{dir: dir, files: files, logger: logger}
}

// Path returns the file path of a dataset.
func (l *Loader) Path(d models.Dataset) string {
	return filepath.Join(l.dir, l.files[d])
}

// Load reads one dataset. A missing file yields an error wrapping
// ErrDatasetMissing.
func (l *Loader) Load(d models.Dataset) ([]models.RawRow, error) {
	if _, ok := l.files[d]; !ok {
		return nil, fmt.Errorf("%s: no file configured: %w", d, ErrDatasetMissing)
	}
	path := l.Path(d)
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), ErrDatasetMissing)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: open: %w", d, err)
	}
	defer f.Close()

	rows, header, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", d, err)
	}
	if missing := models.SchemaFor(d).MissingColumns(header); len(missing) > 0 {
		l.logger.Warn("[loader] %s: missing columns %s", d, strings.Join(missing, ", "))
	}
	l.logger.Info("[loader] %s: %d rows from %s", d, len(rows), filepath.Base(path))
	return rows, nil
}

// LoadAll reads every dataset concurrently. A dataset that fails to load is
// left out of the rows map and its error is recorded instead.
func (l *Loader) LoadAll() (map[models.Dataset][]models.RawRow, map[models.Dataset]error) {
	var (
		mu   sync.Mutex
		rows = make(map[models.Dataset][]models.RawRow, len(models.Datasets))
		errs = make(map[models.Dataset]error)
	)

	pool := utils.NewWorkerPool(len(models.Datasets), 0)
	for _, d := range models.Datasets {
		pool.Submit(func() {
			data, err := l.Load(d)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				l.logger.Warn("[loader] %v", err)
				errs[d] = err
				return
			}
			rows[d] = data
		})
	}
	pool.Wait()
	return rows, errs
}
