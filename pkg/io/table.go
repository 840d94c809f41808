package io

import (
	"encoding/csv"
	stderrors "errors"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/matzehuels/clonetree/pkg/errors"
	"github.com/matzehuels/clonetree/pkg/mutation"
)

const (
	// DefaultMinAAF is the AAF a mutation must exceed to count as present.
	DefaultMinAAF = 0.04

	// DefaultMinRobustSize is the member count from which a group is robust.
	DefaultMinRobustSize = 4

	tableMetaColumns = 2 // chrom, pos
)

// TableOptions controls how mutation rows are grouped.
type TableOptions struct {
	// MinAAF is the presence threshold. Zero selects DefaultMinAAF.
	MinAAF float64
	// MinRobustSize is the robustness threshold. Zero selects
	// DefaultMinRobustSize.
	MinRobustSize int
}

func (o TableOptions) withDefaults() TableOptions {
	if o.MinAAF == 0 {
		o.MinAAF = DefaultMinAAF
	}
	if o.MinRobustSize == 0 {
		o.MinRobustSize = DefaultMinRobustSize
	}
	return o
}

// ReadTable reads a tab-separated mutation table and groups its rows by
// presence tag.
//
// The first line is a header "#chrom, pos, <sample>..." and every other
// line holds one mutation's per-sample AAF. Groups are returned in
// descending tag order; mutations present in no sample are dropped.
func ReadTable(r io.Reader, opts TableOptions) (*mutation.Set, error) {
	opts = opts.withDefaults()

	cr := csv.NewReader(r)
	cr.Comma = '\t'

	header, err := cr.Read()
	if err != nil {
		if stderrors.Is(err, io.EOF) {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "mutation table is empty")
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read table header")
	}
	if len(header) <= tableMetaColumns || !strings.HasPrefix(header[0], "#") {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "table header must be '#chrom<TAB>pos<TAB><sample>...'")
	}
	names := slices.Clone(header[tableMetaColumns:])
	n := len(names)

	rows := make(map[string][][]float64)
	for {
		rec, err := cr.Read()
		if stderrors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read table")
		}
		line, _ := cr.FieldPos(0)
		aafs := make([]float64, n)
		present := make([]int, 0, n)
		for i, field := range rec[tableMetaColumns:] {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidAAF, err, "line %d, sample %s", line, names[i])
			}
			if v < 0 || v > 1 {
				return nil, errors.New(errors.ErrCodeInvalidAAF, "line %d, sample %s: AAF %v outside [0, 1]", line, names[i], v)
			}
			aafs[i] = v
			if v > opts.MinAAF {
				present = append(present, i)
			}
		}
		if len(present) == 0 {
			continue
		}
		tag := mutation.TagFromSamples(present, n)
		local := make([]float64, len(present))
		for j, id := range present {
			local[j] = aafs[id]
		}
		rows[tag] = append(rows[tag], local)
	}

	tags := make([]string, 0, len(rows))
	for tag := range rows {
		tags = append(tags, tag)
	}
	slices.Sort(tags)
	slices.Reverse(tags)

	set := &mutation.Set{SampleNames: names}
	for _, tag := range tags {
		c := mutation.Summarize(rows[tag])
		set.Groups = append(set.Groups, mutation.NewGroup(tag, c.Size >= opts.MinRobustSize, c))
	}
	if err := set.Validate(); err != nil {
		return nil, err
	}
	return set, nil
}

// ImportTable reads a mutation table from the file at path.
func ImportTable(path string, opts TableOptions) (*mutation.Set, error) {
	f, err := open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadTable(f, opts)
}
