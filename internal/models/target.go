package models

// RollingBandEntry is the list form of one RollingBandFlagTable row, used
// where a struct key is awkward (YAML documents).
type RollingBandEntry struct {
	Key   RollingBandKey `yaml:"key"`
	Flags []byte         `yaml:"flags"`
}

// RollingBandTableOf converts entries into a table. A nil slice stays nil so
// that an absent optional table remains distinguishable from an empty one.
func RollingBandTableOf(entries []RollingBandEntry) RollingBandFlagTable {
	if entries == nil {
		return nil
	}
	table := make(RollingBandFlagTable, len(entries))
	for _, e := range entries {
		table[e.Key] = e.Flags
	}
	return table
}

// Target bundles every input needed to lay out one target's cadence data.
type Target struct {
	KeplerID int `yaml:"keplerId"`

	// Range is the target's cadence window; Timeline must cover it exactly.
	Range    CadenceRange     `yaml:"range"`
	Timeline *CadenceTimeline `yaml:"timeline"`

	// ReferenceWindow is the sub-window the reference cadence is centred
	// on. A zero value means Range.
	ReferenceWindow CadenceRange `yaml:"referenceWindow"`

	PixelLogs []PixelLog `yaml:"pixelLogs"`

	Anomalies            []AnomalyInterval `yaml:"anomalies"`
	CosmicRays           []MjdEventSeries  `yaml:"cosmicRays"`
	CollateralCosmicRays []MjdEventSeries  `yaml:"collateralCosmicRays"`
	PdcOutliers          *MjdEventSeries   `yaml:"pdcOutliers"`

	Discontinuities      *IntSeries `yaml:"discontinuities"`
	PaArgabrightening    *IntSeries `yaml:"paArgabrightening"`
	ZeroCrossings        *IntSeries `yaml:"zeroCrossings"`
	ThrusterFire         *IntSeries `yaml:"thrusterFire"`
	PossibleThrusterFire *IntSeries `yaml:"possibleThrusterFire"`

	RollingBands                []RollingBandEntry `yaml:"rollingBands"`
	OptimalApertureRollingBands []RollingBandEntry `yaml:"optimalApertureRollingBands"`

	Aperture TargetAperture `yaml:"aperture"`

	Dva            *TargetDva    `yaml:"dva"`
	RowCentroid    *DoubleSeries `yaml:"rowCentroid"`
	ColumnCentroid *DoubleSeries `yaml:"columnCentroid"`

	// Flux is a calibrated series laid out onto Range in the output. Filled
	// marks the cadences whose flux was filled upstream.
	Flux   *FloatSeries `yaml:"flux"`
	Filled *IntSeries   `yaml:"filled"`

	// BarycentricCorrection is in days at mid cadence.
	BarycentricCorrection *FloatSeries `yaml:"barycentricCorrection"`

	// Crowding should hold one value on every valid cadence.
	Crowding *FloatSeries `yaml:"crowding"`

	// LongCadence is set for short cadence targets whose spacecraft flags
	// come from the long cadence timeline.
	LongCadence *LongCadenceLink `yaml:"longCadence"`
}

// LongCadenceLink ties a short cadence target to a long cadence timeline.
// Short cadence ShortOrigin is the first short cadence of long cadence
// LongOrigin, and every long cadence spans ShortPerLong short cadences.
type LongCadenceLink struct {
	Timeline     *CadenceTimeline `yaml:"timeline"`
	ShortOrigin  int              `yaml:"shortOrigin"`
	LongOrigin   int              `yaml:"longOrigin"`
	ShortPerLong int              `yaml:"shortPerLong"`
}

// ShortToLong returns the long cadence containing shortCadence.
func (l *LongCadenceLink) ShortToLong(shortCadence int) int {
	d := shortCadence - l.ShortOrigin
	q := d / l.ShortPerLong
	if d%l.ShortPerLong < 0 {
		q--
	}
	return l.LongOrigin + q
}

// ReferenceRange returns ReferenceWindow, or Range when it is unset.
func (t *Target) ReferenceRange() CadenceRange {
	if t.ReferenceWindow == (CadenceRange{}) {
		return t.Range
	}
	return t.ReferenceWindow
}
