package trajectory

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/verte-zerg/pursuit/internal/model"
)

// Header is the column row written at the top of every record file.
var Header = []string{"Timestamp", "X", "Y", "Event"}

// Save writes the record for a trial. The file appears atomically: either
// the complete record is visible under its final name or nothing changes.
func (d *Dir) Save(rec Record, participant, trial int) (string, error) {
	if rec.Empty() {
		return "", ErrEmptyRecord
	}
	if err := os.MkdirAll(d.path, 0o755); err != nil {
		return "", fmt.Errorf("%w: %w", ErrStorageWrite, err)
	}
	path := d.RecordPath(participant, trial)
	if err := writeRecord(path, rec); err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrStorageWrite, path, err)
	}
	return path, nil
}

// Load reads the record stored for a trial.
func (d *Dir) Load(participant, trial int) (Record, []error, error) {
	return Load(d.RecordPath(participant, trial))
}

func writeRecord(path string, rec Record) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(path), "record-*.csv")
	if err != nil {
		return err
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if err := Encode(tmpFile, rec); err != nil {
		return err
	}
	// CreateTemp opens with 0600; records are shared like any other data file.
	if err := tmpFile.Chmod(0o644); err != nil {
		return err
	}
	if err := tmpFile.Close(); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

// Encode writes the header and one row per sample.
func Encode(w io.Writer, rec Record) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(Header); err != nil {
		return err
	}
	row := make([]string, len(Header))
	for _, s := range rec.Samples {
		row[0] = strconv.FormatFloat(s.Timestamp, 'g', -1, 64)
		row[1] = strconv.Itoa(s.X)
		row[2] = strconv.Itoa(s.Y)
		row[3] = strconv.Itoa(s.Event)
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// Load reads a record file. Malformed rows and an unexpected header are
// returned as warnings; the load only fails when the file is missing,
// unreadable, or has no valid rows left.
func Load(path string) (Record, []error, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Record{}, nil, fmt.Errorf("%w: %s", ErrRecordNotFound, path)
		}
		return Record{}, nil, fmt.Errorf("failed to open record: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			// Best-effort close of a read-only file.
			_ = cerr
		}
	}()
	rec, warnings, err := Decode(f)
	if err != nil {
		return Record{}, warnings, fmt.Errorf("%s: %w", path, err)
	}
	return rec, warnings, nil
}

// Decode parses record rows from r.
func Decode(r io.Reader) (Record, []error, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	var warnings []error
	header, err := reader.Read()
	var perr *csv.ParseError
	switch {
	case err == nil:
	case errors.Is(err, io.EOF):
		return Record{}, nil, ErrInvalidRecord
	case errors.As(err, &perr):
		warnings = append(warnings, &HeaderMismatchError{Got: header, Err: err})
	default:
		return Record{}, nil, fmt.Errorf("failed to read header: %w", err)
	}
	if err == nil && !headerMatches(header) {
		warnings = append(warnings, &HeaderMismatchError{Got: header})
	}

	var rec Record
	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if errors.As(err, &perr) {
				warnings = append(warnings, &MalformedRowError{Line: perr.Line, Fields: fields, Err: perr.Err})
				continue
			}
			return Record{}, warnings, fmt.Errorf("failed to read record: %w", err)
		}
		line, _ := reader.FieldPos(0)
		sample, err := parseRow(fields)
		if err != nil {
			warnings = append(warnings, &MalformedRowError{Line: line, Fields: fields, Err: err})
			continue
		}
		rec.Append(sample)
	}
	if rec.Empty() {
		return Record{}, warnings, ErrInvalidRecord
	}
	return rec, warnings, nil
}

func headerMatches(header []string) bool {
	if len(header) != len(Header) {
		return false
	}
	for i := range Header {
		if header[i] != Header[i] {
			return false
		}
	}
	return true
}

func parseRow(fields []string) (model.Sample, error) {
	if len(fields) < len(Header) {
		return model.Sample{}, fmt.Errorf("expected %d fields, got %d", len(Header), len(fields))
	}
	ts, err := strconv.ParseFloat(strings.TrimSpace(fields[0]), 64)
	if err != nil {
		return model.Sample{}, fmt.Errorf("timestamp: %w", err)
	}
	if math.IsNaN(ts) || math.IsInf(ts, 0) {
		return model.Sample{}, fmt.Errorf("timestamp is not finite")
	}
	x, err := strconv.Atoi(strings.TrimSpace(fields[1]))
	if err != nil {
		return model.Sample{}, fmt.Errorf("x: %w", err)
	}
	y, err := strconv.Atoi(strings.TrimSpace(fields[2]))
	if err != nil {
		return model.Sample{}, fmt.Errorf("y: %w", err)
	}
	event, err := strconv.Atoi(strings.TrimSpace(fields[3]))
	if err != nil {
		return model.Sample{}, fmt.Errorf("event: %w", err)
	}
	if event != 0 && event != 1 {
		return model.Sample{}, fmt.Errorf("event must be 0 or 1, got %d", event)
	}
	return model.Sample{Timestamp: ts, X: x, Y: y, Event: event}, nil
}
