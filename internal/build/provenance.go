package build

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"

	"github.com/campusmetrics/ipeds-cli/internal/validate"
)

// InputFile identifies one raw input by path and content checksum.
type InputFile struct {
	Path   string `json:"path"`
	SHA256 string `json:"sha256"`
}

// Provenance is the immutable audit record of one pipeline run. A new
// record supersedes the prior one; it is never edited in place after
// the run finishes. Consumers must treat Complete as authoritative: a
// false flag means the output set cannot be trusted.
type Provenance struct {
	RunID       string           `json:"run_id"`
	BuildTS     time.Time        `json:"build_ts"`
	Inputs      []InputFile      `json:"inputs,omitempty"`
	LongRows    int              `json:"long_rows"`
	LatestRows  int              `json:"latest_rows"`
	SummaryRows int              `json:"summary_rows"`
	YearRange   []int            `json:"year_range,omitempty"`
	Outputs     []string         `json:"outputs"`
	Validation  validate.Summary `json:"validation"`
	Complete    bool             `json:"complete"`
}

// WriteProvenance persists the record as indented JSON via a temp file
// and rename.
func WriteProvenance(path string, p *Provenance) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return eris.Wrap(err, "build: marshal provenance")
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrapf(err, "build: create provenance dir for %s", path)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return eris.Wrapf(err, "build: write provenance %s", path)
	}
	if err := os.Rename(tmp, path); err != nil {
		return eris.Wrapf(err, "build: finalize provenance %s", path)
	}
	return nil
}

// ReadProvenance loads a provenance record.
func ReadProvenance(path string) (*Provenance, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "build: read provenance %s", path)
	}
	var p Provenance
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, eris.Wrapf(err, "build: parse provenance %s", path)
	}
	return &p, nil
}

// ChecksumFile returns the file's SHA-256 as an InputFile entry.
func ChecksumFile(path string) (InputFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return InputFile{}, eris.Wrapf(err, "build: open input %s", path)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return InputFile{}, eris.Wrapf(err, "build: checksum input %s", path)
	}
	return InputFile{Path: path, SHA256: hex.EncodeToString(h.Sum(nil))}, nil
}
