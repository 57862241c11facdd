package trajectory

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
)

const (
	filePrefix = "SHSA"
	fileExt    = ".csv"
)

var fileNamePattern = regexp.MustCompile(`^SHSA_(\d+)_(\d+)\.csv$`)

// Ref identifies one stored trial.
type Ref struct {
	Participant int
	Trial       int
}

// FileName builds the deterministic record name for a trial.
func FileName(participant, trial int) string {
	return fmt.Sprintf("%s_%d_%d%s", filePrefix, participant, trial, fileExt)
}

// ParseFileName extracts the trial reference from a record name.
func ParseFileName(name string) (Ref, bool) {
	m := fileNamePattern.FindStringSubmatch(name)
	if m == nil {
		return Ref{}, false
	}
	participant, err := strconv.Atoi(m[1])
	if err != nil {
		return Ref{}, false
	}
	trial, err := strconv.Atoi(m[2])
	if err != nil {
		return Ref{}, false
	}
	return Ref{Participant: participant, Trial: trial}, true
}

// Dir is a directory of trajectory records.
type Dir struct {
	path string
}

// NewDir returns a record directory rooted at path.
func NewDir(path string) *Dir {
	return &Dir{path: path}
}

// Path returns the directory path.
func (d *Dir) Path() string {
	return d.path
}

// RecordPath returns the file path for a trial.
func (d *Dir) RecordPath(participant, trial int) string {
	return filepath.Join(d.path, FileName(participant, trial))
}

// Ensure creates the directory if needed.
func (d *Dir) Ensure() error {
	if err := os.MkdirAll(d.path, 0o755); err != nil {
		return fmt.Errorf("failed to create record directory: %w", err)
	}
	return nil
}

// List returns every stored trial, sorted by participant then trial.
// A missing directory yields no refs.
func (d *Dir) List() ([]Ref, error) {
	entries, err := os.ReadDir(d.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read record directory: %w", err)
	}
	refs := make([]Ref, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ref, ok := ParseFileName(entry.Name())
		if !ok {
			continue
		}
		refs = append(refs, ref)
	}
	sort.Slice(refs, func(i, j int) bool {
		if refs[i].Participant == refs[j].Participant {
			return refs[i].Trial < refs[j].Trial
		}
		return refs[i].Participant < refs[j].Participant
	})
	return refs, nil
}

// NextParticipantID returns one more than the highest stored participant,
// or 1 when nothing is stored.
func (d *Dir) NextParticipantID() (int, error) {
	refs, err := d.List()
	if err != nil {
		return 0, err
	}
	highest := 0
	for _, ref := range refs {
		if ref.Participant > highest {
			highest = ref.Participant
		}
	}
	return highest + 1, nil
}
