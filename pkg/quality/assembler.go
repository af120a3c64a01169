package quality

import (
	"fmt"

	"cadenceqa/internal/models"
)

// Inputs gathers every source of one target's quality word. Nil or empty
// sources are valid and contribute no bits.
type Inputs struct {
	Range    models.CadenceRange
	Timeline *models.CadenceTimeline
	Mapper   MjdCadenceMapper

	Anomalies            []models.AnomalyInterval
	CosmicRays           []models.MjdEventSeries
	CollateralCosmicRays []models.MjdEventSeries
	PdcOutliers          *models.MjdEventSeries

	Discontinuities      *models.IntSeries
	PaArgabrightening    *models.IntSeries
	ZeroCrossings        *models.IntSeries
	ThrusterFire         *models.IntSeries
	PossibleThrusterFire *models.IntSeries

	RollingBands models.RollingBandFlagTable
	// OptimalApertureRollingBands is optional; nil means the target has no
	// optimal aperture table and the bit never fires.
	OptimalApertureRollingBands models.RollingBandFlagTable

	// ShortCadenceUsesLongCadence switches the spacecraft timeline detectors
	// and the long-cadence indicator series to long cadence space. The
	// indicator series are then aligned to LongCadenceTimeline.
	ShortCadenceUsesLongCadence bool
	LongCadenceTimeline         *models.CadenceTimeline
	Converter                   CadenceConverter
}

// Detector is one registry entry: the bit it owns and where it fires.
type Detector struct {
	Flag     Flag
	Name     string
	Producer IndexProducer
}

var anomalyFlags = []struct {
	anomaly models.AnomalyType
	flag    Flag
}{
	{models.AttitudeTweak, AttitudeTweak},
	{models.SafeMode, SafeMode},
	{models.CoarsePoint, CoarsePoint},
	{models.EarthPoint, EarthPoint},
	{models.Argabrightening, Argabrightening},
	{models.Exclude, ManualExclude},
}

// Detectors builds the registry for in. The data gap bit is not a detector;
// Assemble owns it because it starts set and is cleared rather than set.
func Detectors(in *Inputs) ([]Detector, error) {
	var detectors []Detector

	for _, af := range anomalyFlags {
		detectors = append(detectors, Detector{
			Flag:     af.flag,
			Name:     af.anomaly.String(),
			Producer: IntervalProducer{Type: af.anomaly, Anomalies: in.Anomalies},
		})
	}

	var outliers []models.MjdEventSeries
	if in.PdcOutliers != nil {
		outliers = []models.MjdEventSeries{*in.PdcOutliers}
	}
	detectors = append(detectors,
		Detector{CosmicRay, "cosmic ray", MjdProducer{Mapper: in.Mapper, Series: in.CosmicRays}},
		Detector{CollateralCosmicRay, "collateral cosmic ray", MjdProducer{Mapper: in.Mapper, Series: in.CollateralCosmicRays}},
		Detector{Outlier, "pdc outlier", MjdProducer{Mapper: in.Mapper, Series: outliers}},
		Detector{Discontinuity, "discontinuity", SeriesProducer{Series: in.Discontinuities}},
		Detector{RollingBandOnApertureRow, "rolling band", RollingBandProducer{Table: in.RollingBands}},
		Detector{RollingBandOnOptimalApertureRow, "optimal aperture rolling band", RollingBandProducer{Table: in.OptimalApertureRollingBands}},
	)

	// Sources that live on the spacecraft timeline or on long cadence
	// indicator series.
	spacecraft := []Detector{
		{Desaturation, "momentum dump", TimelineProducer{Fires: momentumDump}},
		{NotFinePoint, "not fine point", TimelineProducer{Fires: notFinePoint}},
		{DetectorElectronicsAnomaly, "detector electronics anomaly", TimelineProducer{Fires: electronics}},
		{PaArgabrightening, "pa argabrightening", SeriesProducer{Series: in.PaArgabrightening}},
		{ReactionWheelZeroCrossing, "reaction wheel zero crossing", SeriesProducer{Series: in.ZeroCrossings}},
		{ThrusterFire, "thruster fire", SeriesProducer{Series: in.ThrusterFire}},
		{PossibleThrusterFire, "possible thruster fire", SeriesProducer{Series: in.PossibleThrusterFire}},
	}

	timeline := in.Timeline
	if in.ShortCadenceUsesLongCadence {
		if in.LongCadenceTimeline == nil || in.Converter == nil {
			return nil, fmt.Errorf("%w: short cadence from long cadence needs a long cadence timeline and converter",
				models.ErrContract)
		}
		if err := in.LongCadenceTimeline.Validate(); err != nil {
			return nil, fmt.Errorf("long cadence timeline: %w", err)
		}
		if err := in.LongCadenceTimeline.CheckContiguous(); err != nil {
			return nil, fmt.Errorf("long cadence timeline: %w", err)
		}
		timeline = in.LongCadenceTimeline
	}
	for _, d := range spacecraft {
		if tp, ok := d.Producer.(TimelineProducer); ok {
			tp.Timeline = timeline
			d.Producer = tp
		}
		if in.ShortCadenceUsesLongCadence {
			d.Producer = LongCadenceProducer{
				Inner:     d.Producer,
				Converter: in.Converter,
				LongRange: in.LongCadenceTimeline.Range(),
			}
		}
		detectors = append(detectors, d)
	}

	return detectors, nil
}

// Assemble computes the quality word of every cadence in in.Range.
//
// Every entry starts as DataGap; the bit is cleared where the timeline has
// data. Every detector then ORs its bit in at each index it fires on. The
// result does not depend on detector order.
func Assemble(in *Inputs) ([]Flag, error) {
	if err := in.Range.Validate(); err != nil {
		return nil, err
	}
	if in.Timeline == nil {
		return nil, fmt.Errorf("%w: no cadence timeline", models.ErrContract)
	}
	if err := in.Timeline.Validate(); err != nil {
		return nil, err
	}
	if err := in.Timeline.CheckContiguous(); err != nil {
		return nil, err
	}
	n := in.Range.Length()
	if in.Timeline.Len() != n || in.Timeline.CadenceNumbers[0] != in.Range.Start {
		return nil, fmt.Errorf("%w: timeline covers %s, want %s",
			models.ErrContract, in.Timeline.Range(), in.Range)
	}

	flags := make([]Flag, n)
	for i := range flags {
		flags[i] = DataGap
		if !in.Timeline.Gaps[i] {
			flags[i] &^= DataGap
		}
	}

	detectors, err := Detectors(in)
	if err != nil {
		return nil, err
	}
	for _, d := range detectors {
		indices, err := d.Producer.Indices(in.Range)
		if err != nil {
			return nil, fmt.Errorf("%s detector: %w", d.Name, err)
		}
		for _, i := range indices {
			flags[i] |= d.Flag
		}
	}
	return flags, nil
}
