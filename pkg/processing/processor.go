// Package processing lays out the cadence data of many targets in parallel.
//
// Each target goes through the same pipeline:
// 1. Assembling the per-cadence quality flags
// 2. Selecting the reference cadence
// 3. Filtering the DVA correction
// 4. Building the aperture mask image
// 5. Resizing the calibrated series onto the target's cadence range
// 6. Summarising the result
package processing

import (
	"fmt"
	"log"
	"math"
	"sync"
	"sync/atomic"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"cadenceqa/internal/models"
	"cadenceqa/pkg/aperture"
	"cadenceqa/pkg/dva"
	"cadenceqa/pkg/interpolation"
	"cadenceqa/pkg/quality"
	"cadenceqa/pkg/refcadence"
	"cadenceqa/pkg/series"
	"cadenceqa/pkg/visualization"
)

// Params holds the processing configuration.
type Params struct {
	// NumCores is how many targets are processed at once.
	NumCores int

	// IgnoreZeroCrossings lets reaction wheel zero crossings through the
	// reference cadence selection.
	IgnoreZeroCrossings bool

	// K2 drops the electronics anomaly bit from the reference cadence mask
	// and uses the K2 aperture pixel mask.
	K2 bool

	// PixelMask is ANDed into the aperture mask image. Zero keeps every bit.
	PixelMask int32

	// FillFluxGaps interpolates across gapped flux cadences instead of
	// writing the fill value.
	FillFluxGaps bool

	// Fill values for gapped float and double outputs and for gapped times.
	FloatFill  float32
	DoubleFill float64
	TimeFill   float64

	// SaveMasks writes the aperture mask and quality strip of every target
	// to MaskDir.
	SaveMasks bool
	MaskDir   string

	// Verbose logs per-target progress.
	Verbose bool
}

// DefaultParams fills gaps with NaN and keeps every mask bit.
func DefaultParams() *Params {
	return &Params{
		NumCores:   1,
		FloatFill:  float32(math.NaN()),
		DoubleFill: math.NaN(),
		TimeFill:   math.NaN(),
	}
}

// Summary holds the per-target statistics logged after processing.
type Summary struct {
	Cadences        int
	FlaggedCadences int
	GappedCadences  int
	OptimalPixels   int

	// FlaggedFraction is the fraction of cadences with any bit but DataGap.
	FlaggedFraction float64

	// DVA statistics over the samples that survive filtering.
	DvaRowMean      float64
	DvaRowStdDev    float64
	DvaColumnMean   float64
	DvaColumnStdDev float64

	// Flux extremes over cadences that do not hold the fill value, NaN
	// without flux.
	FluxMin float64
	FluxMax float64
}

// Result is the laid out cadence data of one target. Every per-cadence
// slice has one entry per cadence of Range.
type Result struct {
	KeplerID int
	Range    models.CadenceRange

	Flags         []quality.Flag
	QualityColumn []int32

	ReferenceCadence int
	// LongReferenceCadence is the long cadence picked from the long cadence
	// timeline when short cadence flags come from long cadence data, and -1
	// otherwise.
	LongReferenceCadence int

	ApertureMask [][]int32

	// DvaRow and DvaColumn are nil when the target has no DVA correction.
	DvaRow    []float32
	DvaColumn []float32

	Flux           []float32
	RowCentroid    []float64
	ColumnCentroid []float64

	// Timestamps are the gap filled mid-cadence MJDs. Bkjd and
	// TimeCorrection need a barycentric correction as well.
	Timestamps     []float64
	Bkjd           []float64
	TimeCorrection []float32

	// BarycentricStart and BarycentricEnd extrapolate the correction to the
	// start of the first and the end of the last cadence.
	BarycentricStart float32
	BarycentricEnd   float32

	Crowding    float32
	HasCrowding bool

	RollingBandFlags models.RollingBandFlagTable

	Summary Summary
}

// Processor runs targets through the pipeline.
type Processor struct {
	params *Params
}

// NewProcessor creates a processor. A nil params uses DefaultParams.
func NewProcessor(params *Params) *Processor {
	if params == nil {
		params = DefaultParams()
	}
	return &Processor{params: params}
}

// ProcessTarget lays out a single target. Any error aborts the target;
// there is no partial result.
func (p *Processor) ProcessTarget(target *models.Target) (*Result, error) {
	res := &Result{KeplerID: target.KeplerID, Range: target.Range}

	mapper, err := p.mapperFor(target)
	if err != nil {
		return nil, err
	}

	// Step 1: quality flags
	in, err := p.assemblerInputs(target, mapper)
	if err != nil {
		return nil, err
	}
	res.Flags, err = quality.Assemble(in)
	if err != nil {
		return nil, fmt.Errorf("assembling quality flags: %w", err)
	}
	res.QualityColumn = quality.Column(res.Flags)
	res.RollingBandFlags = quality.ExportRollingBandFlags(in.RollingBands)

	// Step 2: reference cadence
	window := target.ReferenceRange()
	res.ReferenceCadence, err = refcadence.Select(refcadence.Request{
		FirstCadence:   target.Range.Start,
		TargetStart:    window.Start,
		TargetEnd:      window.End,
		Timeline:       target.Timeline,
		Flags:          res.Flags,
		Disqualifying:  refcadence.QualityMask(p.params.IgnoreZeroCrossings, p.params.K2),
		RowCentroid:    target.RowCentroid,
		ColumnCentroid: target.ColumnCentroid,
	})
	if err != nil {
		return nil, fmt.Errorf("selecting reference cadence: %w", err)
	}
	res.LongReferenceCadence = -1
	if target.LongCadence != nil {
		if res.LongReferenceCadence, err = p.longReferenceCadence(target, window); err != nil {
			return nil, fmt.Errorf("selecting long reference cadence: %w", err)
		}
	}

	// Step 3: DVA
	var filtered *models.TargetDva
	if target.Dva != nil {
		f, err := dva.Filter(*target.Dva, res.Flags)
		if err != nil {
			return nil, fmt.Errorf("filtering DVA: %w", err)
		}
		filtered = &f
		res.DvaRow, res.DvaColumn = dva.FillGaps(f, p.params.FloatFill)
	}

	// Step 4: aperture mask
	res.ApertureMask = aperture.Assemble(aperture.InputsFor(&target.Aperture))
	if mask := p.pixelMask(); mask != 0 {
		res.ApertureMask = aperture.ApplyPixelMask(res.ApertureMask, mask)
	}

	// Step 5: calibrated series
	if err := p.layoutSeries(target, mapper, res); err != nil {
		return nil, err
	}

	// Step 6: summary
	res.Summary = summarise(res, filtered, p.params.FloatFill)

	if p.params.SaveMasks {
		if err := visualization.SaveTarget(p.params.MaskDir, target.KeplerID, res.ApertureMask, res.Flags); err != nil {
			log.Printf("Warning: failed to save masks for target %d: %v", target.KeplerID, err)
		}
	}
	return res, nil
}

func (p *Processor) pixelMask() int32 {
	if p.params.K2 {
		return aperture.K2Mask
	}
	return p.params.PixelMask
}

// mapperFor builds an MJD mapper from the pixel logs. Targets without pixel
// logs get no mapper, which is fine as long as they have no MJD events.
func (p *Processor) mapperFor(target *models.Target) (*quality.TableMapper, error) {
	if len(target.PixelLogs) == 0 {
		return nil, nil
	}
	m, err := quality.NewTableMapper(target.PixelLogs)
	if err != nil {
		return nil, fmt.Errorf("target %d pixel logs: %w", target.KeplerID, err)
	}
	return m, nil
}

func (p *Processor) assemblerInputs(target *models.Target, mapper *quality.TableMapper) (*quality.Inputs, error) {
	in := &quality.Inputs{
		Range:                       target.Range,
		Timeline:                    target.Timeline,
		Anomalies:                   target.Anomalies,
		CosmicRays:                  target.CosmicRays,
		CollateralCosmicRays:        target.CollateralCosmicRays,
		PdcOutliers:                 target.PdcOutliers,
		Discontinuities:             target.Discontinuities,
		PaArgabrightening:           target.PaArgabrightening,
		ZeroCrossings:               target.ZeroCrossings,
		ThrusterFire:                target.ThrusterFire,
		PossibleThrusterFire:        target.PossibleThrusterFire,
		RollingBands:                models.RollingBandTableOf(target.RollingBands),
		OptimalApertureRollingBands: models.RollingBandTableOf(target.OptimalApertureRollingBands),
	}
	// A nil *TableMapper stored in the interface would not compare equal
	// to nil.
	if mapper != nil {
		in.Mapper = mapper
	}
	if lc := target.LongCadence; lc != nil {
		if lc.ShortPerLong <= 0 {
			return nil, fmt.Errorf("%w: target %d has %d short cadences per long cadence",
				models.ErrContract, target.KeplerID, lc.ShortPerLong)
		}
		in.ShortCadenceUsesLongCadence = true
		in.LongCadenceTimeline = lc.Timeline
		in.Converter = lc
	}
	return in, nil
}

// longReferenceCadence selects over the long cadence timeline using long
// cadence flags built from the timeline and the long cadence indicator
// series.
func (p *Processor) longReferenceCadence(target *models.Target, window models.CadenceRange) (int, error) {
	lc := target.LongCadence
	lcRange := lc.Timeline.Range()
	flags, err := quality.Assemble(&quality.Inputs{
		Range:                lcRange,
		Timeline:             lc.Timeline,
		PaArgabrightening:    target.PaArgabrightening,
		ZeroCrossings:        target.ZeroCrossings,
		ThrusterFire:         target.ThrusterFire,
		PossibleThrusterFire: target.PossibleThrusterFire,
	})
	if err != nil {
		return 0, err
	}
	return refcadence.Select(refcadence.Request{
		FirstCadence:  lcRange.Start,
		TargetStart:   lc.ShortToLong(window.Start),
		TargetEnd:     lc.ShortToLong(window.End),
		Timeline:      lc.Timeline,
		Flags:         flags,
		Disqualifying: refcadence.QualityMask(p.params.IgnoreZeroCrossings, p.params.K2),
	})
}

func (p *Processor) layoutSeries(target *models.Target, mapper *quality.TableMapper, res *Result) error {
	r := target.Range
	var err error

	if target.Flux != nil {
		flux := target.Flux
		if p.params.FillFluxGaps {
			flux, err = interpolation.FillSeries(flux)
			if err != nil {
				return fmt.Errorf("filling flux gaps: %w", err)
			}
		}
		var m quality.MjdCadenceMapper
		if mapper != nil {
			m = mapper
		}
		values, err := series.CorrectedUnfilledFlux(m, target.Filled, target.PdcOutliers, flux, p.params.FloatFill)
		if err != nil {
			return fmt.Errorf("restoring flux: %w", err)
		}
		for i, gap := range flux.Gaps {
			if gap {
				values[i] = p.params.FloatFill
			}
		}
		if res.Flux, err = series.Resize(r, flux.Range(), values, p.params.FloatFill); err != nil {
			return fmt.Errorf("resizing flux: %w", err)
		}
	}

	if res.RowCentroid, err = resizeDouble(r, target.RowCentroid, p.params.DoubleFill); err != nil {
		return fmt.Errorf("resizing row centroid: %w", err)
	}
	if res.ColumnCentroid, err = resizeDouble(r, target.ColumnCentroid, p.params.DoubleFill); err != nil {
		return fmt.Errorf("resizing column centroid: %w", err)
	}

	if tl := target.Timeline; len(tl.MidMjd) > 0 {
		if res.Timestamps, err = interpolation.FillTimestamps(tl.MidMjd, tl.Gaps); err != nil {
			return fmt.Errorf("filling timestamps: %w", err)
		}
		if bc := target.BarycentricCorrection; bc != nil {
			corr, err := alignFloat(r, bc)
			if err != nil {
				return fmt.Errorf("aligning barycentric correction: %w", err)
			}
			if res.Bkjd, err = series.BkjdTimes(res.Timestamps, tl.Gaps, corr, p.params.TimeFill); err != nil {
				return err
			}
			if res.TimeCorrection, err = series.TimeCorrectionSeconds(corr, p.params.FloatFill); err != nil {
				return err
			}
			if res.BarycentricStart, err = series.StartValue(corr, nil); err != nil {
				return fmt.Errorf("barycentric correction at start: %w", err)
			}
			if res.BarycentricEnd, err = series.EndValue(corr, nil); err != nil {
				return fmt.Errorf("barycentric correction at end: %w", err)
			}
		}
	}

	if res.Crowding, res.HasCrowding, err = series.UniqueValue(target.Crowding); err != nil {
		return fmt.Errorf("crowding metric: %w", err)
	}
	return nil
}

func resizeDouble(r models.CadenceRange, s *models.DoubleSeries, fill float64) ([]float64, error) {
	if s == nil {
		return nil, nil
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	values := append([]float64(nil), s.Values...)
	for i, gap := range s.Gaps {
		if gap {
			values[i] = fill
		}
	}
	return series.Resize(r, s.Range(), values, fill)
}

// alignFloat resizes s onto r. Cadences outside s come back gapped.
func alignFloat(r models.CadenceRange, s *models.FloatSeries) (*models.FloatSeries, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	values, err := series.ResizeSeries(r, s, 0)
	if err != nil {
		return nil, err
	}
	gaps, err := series.Resize(r, s.Range(), boolsToInts(s.Gaps), 1)
	if err != nil {
		return nil, err
	}
	out := &models.FloatSeries{Start: r.Start, Values: values, Gaps: make([]bool, len(gaps))}
	for i, g := range gaps {
		out.Gaps[i] = g != 0
	}
	return out, nil
}

func boolsToInts(b []bool) []int32 {
	out := make([]int32, len(b))
	for i, v := range b {
		if v {
			out[i] = 1
		}
	}
	return out
}

func summarise(res *Result, filtered *models.TargetDva, fill float32) Summary {
	s := Summary{
		Cadences: len(res.Flags),
		FluxMin:  math.NaN(),
		FluxMax:  math.NaN(),
	}
	s.GappedCadences = quality.Count(res.Flags, quality.DataGap)
	s.FlaggedCadences = quality.Count(res.Flags, ^quality.DataGap)
	s.OptimalPixels = aperture.Count(res.ApertureMask, aperture.OptimalAperture)
	if s.Cadences > 0 {
		s.FlaggedFraction = float64(s.FlaggedCadences) / float64(s.Cadences)
	}

	if filtered != nil {
		s.DvaRowMean, s.DvaRowStdDev = meanStdDev(&filtered.Row)
		s.DvaColumnMean, s.DvaColumnStdDev = meanStdDev(&filtered.Column)
	}

	var flux []float64
	for _, v := range res.Flux {
		if v != fill && !math.IsNaN(float64(v)) && !math.IsInf(float64(v), 0) {
			flux = append(flux, float64(v))
		}
	}
	if len(flux) > 0 {
		s.FluxMin = floats.Min(flux)
		s.FluxMax = floats.Max(flux)
	}
	return s
}

func meanStdDev(s *models.FloatSeries) (float64, float64) {
	var values []float64
	for i, v := range s.Values {
		if !s.Gaps[i] {
			values = append(values, float64(v))
		}
	}
	if len(values) < 2 {
		return math.NaN(), math.NaN()
	}
	return stat.MeanStdDev(values, nil)
}

// ProcessAll processes targets on NumCores goroutines. Results come back in
// the order of targets. The first failing target aborts the batch and its
// error is returned without any results.
func (p *Processor) ProcessAll(targets []models.Target) ([]*Result, error) {
	numCores := p.params.NumCores
	if numCores < 1 {
		numCores = 1
	}

	type processingResult struct {
		idx    int
		result *Result
		err    error
	}

	jobs := make(chan int, len(targets))
	for i := range targets {
		jobs <- i
	}
	close(jobs)

	// Buffered so workers never block once the collector has given up.
	resultChan := make(chan processingResult, len(targets))
	var failed atomic.Bool
	var wg sync.WaitGroup
	for c := 0; c < numCores; c++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if failed.Load() {
					return
				}
				res, err := p.ProcessTarget(&targets[i])
				if err != nil {
					failed.Store(true)
					err = fmt.Errorf("target %d: %w", targets[i].KeplerID, err)
				}
				resultChan <- processingResult{idx: i, result: res, err: err}
			}
		}()
	}
	go func() {
		wg.Wait()
		close(resultChan)
	}()

	results := make([]*Result, len(targets))
	completed := 0
	for res := range resultChan {
		if res.err != nil {
			return nil, res.err
		}
		results[res.idx] = res.result
		completed++
		if p.params.Verbose {
			r := res.result
			log.Printf("Processed target %d (%d/%d, %.1f%%): reference cadence %d, %d of %d cadences flagged",
				r.KeplerID, completed, len(targets), float64(completed)/float64(len(targets))*100,
				r.ReferenceCadence, r.Summary.FlaggedCadences, r.Summary.Cadences)
		}
	}
	return results, nil
}
