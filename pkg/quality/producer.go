package quality

import (
	"fmt"
	"sort"

	"cadenceqa/internal/models"
)

// IndexProducer reports the cadence indices, relative to r.Start, at which
// a source fires. Interval tables, timestamped events, indicator series and
// timeline rows all sit behind this one interface so the assembler does not
// care which address space a source lives in.
type IndexProducer interface {
	Indices(r models.CadenceRange) ([]int, error)
}

// IntervalProducer fires inside every anomaly interval of one type.
type IntervalProducer struct {
	Type      models.AnomalyType
	Anomalies []models.AnomalyInterval
}

// Indices implements IndexProducer. Intervals are clipped to r.
func (p IntervalProducer) Indices(r models.CadenceRange) ([]int, error) {
	var indices []int
	for _, a := range p.Anomalies {
		if a.Type != p.Type {
			continue
		}
		if a.End < a.Start {
			return nil, fmt.Errorf("%w: %s anomaly ends at %d before it starts at %d",
				models.ErrContract, a.Type, a.End, a.Start)
		}
		for c := max(a.Start, r.Start); c <= r.End && a.Covers(c); c++ {
			indices = append(indices, r.Index(c))
		}
	}
	return indices, nil
}

// MjdProducer fires at the cadence of every event. A mapped cadence outside
// the requested range is a contract violation.
type MjdProducer struct {
	Mapper MjdCadenceMapper
	Series []models.MjdEventSeries
}

// Indices implements IndexProducer.
func (p MjdProducer) Indices(r models.CadenceRange) ([]int, error) {
	var indices []int
	for _, s := range p.Series {
		if len(s.Events) == 0 {
			continue
		}
		if p.Mapper == nil {
			return nil, fmt.Errorf("%w: %d events in %q but no MJD mapper", models.ErrContract, len(s.Events), s.Name)
		}
		for _, e := range s.Events {
			cadence, err := p.Mapper.MjdToCadence(e.Mjd)
			if err != nil {
				return nil, fmt.Errorf("mapping event in %q: %w", s.Name, err)
			}
			if !r.Contains(cadence) {
				return nil, fmt.Errorf("%w: event at MJD %v in %q maps to cadence %d outside %s",
					models.ErrContract, e.Mjd, s.Name, cadence, r)
			}
			indices = append(indices, r.Index(cadence))
		}
	}
	return indices, nil
}

// SeriesProducer fires wherever an indicator series has an ungapped sample.
// A nil series never fires.
type SeriesProducer struct {
	Series *models.IntSeries
}

// Indices implements IndexProducer. The series must be aligned to r.
func (p SeriesProducer) Indices(r models.CadenceRange) ([]int, error) {
	if p.Series == nil {
		return nil, nil
	}
	if err := p.Series.Validate(); err != nil {
		return nil, err
	}
	if p.Series.Len() != r.Length() || p.Series.Start != r.Start {
		return nil, fmt.Errorf("%w: series covers %s but the range is %s",
			models.ErrContract, p.Series.Range(), r)
	}
	var indices []int
	for i, gap := range p.Series.Gaps {
		if !gap {
			indices = append(indices, i)
		}
	}
	return indices, nil
}

// TimelineProducer fires where Fires returns true for a timeline row.
type TimelineProducer struct {
	Timeline *models.CadenceTimeline
	Fires    func(t *models.CadenceTimeline, i int) bool
}

// Indices implements IndexProducer. The timeline must be as long as r.
func (p TimelineProducer) Indices(r models.CadenceRange) ([]int, error) {
	if p.Timeline.Len() != r.Length() {
		return nil, fmt.Errorf("%w: timeline has %d cadences, range %s has %d",
			models.ErrContract, p.Timeline.Len(), r, r.Length())
	}
	var indices []int
	for i := 0; i < r.Length(); i++ {
		if p.Fires(p.Timeline, i) {
			indices = append(indices, i)
		}
	}
	return indices, nil
}

// Timeline predicates used by the default registry.
func notFinePoint(t *models.CadenceTimeline, i int) bool { return !t.FinePoint[i] }
func momentumDump(t *models.CadenceTimeline, i int) bool { return t.MomentumDump[i] }
func electronics(t *models.CadenceTimeline, i int) bool  { return t.ElectronicsAnomaly(i) }

// RollingBandProducer fires where any row band of the table has the
// artifact bit set. A nil table never fires.
type RollingBandProducer struct {
	Table models.RollingBandFlagTable
}

// Indices implements IndexProducer.
func (p RollingBandProducer) Indices(r models.CadenceRange) ([]int, error) {
	if len(p.Table) == 0 {
		return nil, nil
	}
	// Map iteration order is random; walk keys in a fixed order so error
	// messages are reproducible.
	keys := make([]models.RollingBandKey, 0, len(p.Table))
	for k := range p.Table {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.Module != b.Module {
			return a.Module < b.Module
		}
		if a.Output != b.Output {
			return a.Output < b.Output
		}
		if a.Row != b.Row {
			return a.Row < b.Row
		}
		return a.PulseDuration < b.PulseDuration
	})

	fired := make([]bool, r.Length())
	for _, k := range keys {
		flags := p.Table[k]
		if len(flags) != r.Length() {
			return nil, fmt.Errorf("%w: rolling band %s has %d cadences, want %d",
				models.ErrContract, k, len(flags), r.Length())
		}
		for i, b := range flags {
			if b&RollingBandMask != 0 {
				fired[i] = true
			}
		}
	}
	var indices []int
	for i, f := range fired {
		if f {
			indices = append(indices, i)
		}
	}
	return indices, nil
}

// LongCadenceProducer evaluates Inner over the long cadences covering a
// short cadence range and projects the result back: a short cadence fires
// when the long cadence containing it fires.
type LongCadenceProducer struct {
	Inner     IndexProducer
	Converter CadenceConverter
	// LongRange is the long cadence window Inner is aligned to.
	LongRange models.CadenceRange
}

// Indices implements IndexProducer.
func (p LongCadenceProducer) Indices(r models.CadenceRange) ([]int, error) {
	longIndices, err := p.Inner.Indices(p.LongRange)
	if err != nil {
		return nil, err
	}
	if len(longIndices) == 0 {
		return nil, nil
	}
	fired := make(map[int]bool, len(longIndices))
	for _, li := range longIndices {
		fired[p.LongRange.Start+li] = true
	}
	var indices []int
	for c := r.Start; c <= r.End; c++ {
		lc := p.Converter.ShortToLong(c)
		if !p.LongRange.Contains(lc) {
			return nil, fmt.Errorf("%w: short cadence %d maps to long cadence %d outside %s",
				models.ErrContract, c, lc, p.LongRange)
		}
		if fired[lc] {
			indices = append(indices, r.Index(c))
		}
	}
	return indices, nil
}
