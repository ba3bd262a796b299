package service

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/spetersoncode/reltime/internal/duration"
	apperrors "github.com/spetersoncode/reltime/internal/errors"
	"github.com/spetersoncode/reltime/internal/models"
)

// BoardFile is the YAML document used by import and export.
type BoardFile struct {
	Timestamps []BoardEntry `yaml:"timestamps"`
}

// BoardEntry is one timestamp in a BoardFile or an API request. Empty
// attributes take the service defaults.
type BoardEntry struct {
	Name      string `yaml:"name" json:"name"`
	Datetime  string `yaml:"datetime" json:"datetime"`
	Format    string `yaml:"format,omitempty" json:"format,omitempty"`
	Tense     string `yaml:"tense,omitempty" json:"tense,omitempty"`
	Precision string `yaml:"precision,omitempty" json:"precision,omitempty"`
	Threshold string `yaml:"threshold,omitempty" json:"threshold,omitempty"`
	Style     string `yaml:"style,omitempty" json:"style,omitempty"`
}

// ImportResult counts what an import changed.
type ImportResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
}

func entryFor(ts *models.Timestamp) BoardEntry {
	return BoardEntry{
		Name:      ts.Name,
		Datetime:  ts.Datetime,
		Format:    string(ts.Format),
		Tense:     string(ts.Tense),
		Precision: ts.Precision.String(),
		Threshold: ts.Threshold.String(),
		Style:     string(ts.Style),
	}
}

// Input parses the entry's text attributes.
func (e BoardEntry) Input() (AddInput, error) {
	in := AddInput{Name: e.Name, Datetime: e.Datetime}
	var err error
	if e.Format != "" {
		if in.Format, err = models.ParseFormat(e.Format); err != nil {
			return in, err
		}
	}
	if e.Tense != "" {
		if in.Tense, err = models.ParseTense(e.Tense); err != nil {
			return in, err
		}
	}
	if e.Style != "" {
		if in.Style, err = models.ParseStyle(e.Style); err != nil {
			return in, err
		}
	}
	if e.Precision != "" {
		unit, err := duration.ParseUnit(e.Precision)
		if err != nil {
			return in, err
		}
		in.Precision = &unit
	}
	if e.Threshold != "" {
		if err := in.Threshold.UnmarshalText([]byte(e.Threshold)); err != nil {
			return in, err
		}
	}
	return in, nil
}

// Import reads a BoardFile and creates or updates every entry. Every entry is
// validated before anything is written.
func (s *BoardService) Import(r io.Reader) (ImportResult, error) {
	var file BoardFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return ImportResult{}, apperrors.Wrap(err, apperrors.KindInvalidArgs, "invalid board file")
	}

	seen := make(map[string]bool, len(file.Timestamps))
	var problems []error
	var inputs []AddInput
	for i, entry := range file.Timestamps {
		in, err := entry.Input()
		if err == nil {
			_, err = s.build(in)
		}
		if err == nil && seen[entry.Name] {
			err = fmt.Errorf("duplicate name %q", entry.Name)
		}
		if err != nil {
			problems = append(problems, fmt.Errorf("entry %d (%s): %w", i+1, entry.Name, err))
			continue
		}
		seen[entry.Name] = true
		inputs = append(inputs, in)
	}
	if len(problems) > 0 {
		return ImportResult{}, apperrors.Wrap(errors.Join(problems...), apperrors.KindInvalidArgs,
			"board file has %d invalid entries", len(problems))
	}

	var result ImportResult
	for _, in := range inputs {
		ts, _ := s.build(in)
		created, err := s.repo.Upsert(ts)
		if err != nil {
			return result, repoError(err, in.Name)
		}
		if created {
			result.Created++
		} else {
			result.Updated++
		}
	}
	return result, nil
}

// Export writes every stored timestamp as a BoardFile.
func (s *BoardService) Export(w io.Writer) error {
	list, err := s.List()
	if err != nil {
		return err
	}
	file := BoardFile{Timestamps: make([]BoardEntry, 0, len(list))}
	for _, ts := range list {
		file.Timestamps = append(file.Timestamps, entryFor(ts))
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(file); err != nil {
		return apperrors.WrapInternal(err, "failed to write board file")
	}
	return enc.Close()
}
