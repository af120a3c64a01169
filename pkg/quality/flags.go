// Package quality assembles the per-cadence data quality word from the
// independent anomaly and event sources of a target.
//
// Each bit of the word is owned by exactly one detector. Detectors are
// registered as (flag, producer) pairs; a producer only reports the cadence
// indices it fires on, so every source can be tested on its own.
package quality

import (
	"math/bits"
	"strconv"
	"strings"
)

// Flag is a set of quality bits. The numeric layout is the archival one and
// must never be reordered.
type Flag uint32

const (
	AttitudeTweak                   Flag = 1 << 0
	SafeMode                        Flag = 1 << 1
	CoarsePoint                     Flag = 1 << 2
	EarthPoint                      Flag = 1 << 3
	ReactionWheelZeroCrossing       Flag = 1 << 4
	Desaturation                    Flag = 1 << 5
	Argabrightening                 Flag = 1 << 6
	CosmicRay                       Flag = 1 << 7
	ManualExclude                   Flag = 1 << 8
	Discontinuity                   Flag = 1 << 9
	Outlier                         Flag = 1 << 10
	CollateralCosmicRay             Flag = 1 << 11
	Straylight                      Flag = 1 << 12
	PaArgabrightening               Flag = 1 << 13
	DetectorElectronicsAnomaly      Flag = 1 << 14
	NotFinePoint                    Flag = 1 << 15
	DataGap                         Flag = 1 << 16
	RollingBandOnApertureRow        Flag = 1 << 17
	RollingBandOnOptimalApertureRow Flag = 1 << 18
	PossibleThrusterFire            Flag = 1 << 19
	ThrusterFire                    Flag = 1 << 20
)

// Rolling band flag bytes carry the artifact in the low bit and a scene
// dependent marker in the next one.
const (
	RollingBandMask               byte = 1 << 0
	RollingBandMaskSceneDependent byte = 1 << 1
)

var flagNames = [...]string{
	"AttitudeTweak",
	"SafeMode",
	"CoarsePoint",
	"EarthPoint",
	"ReactionWheelZeroCrossing",
	"Desaturation",
	"Argabrightening",
	"CosmicRay",
	"ManualExclude",
	"Discontinuity",
	"Outlier",
	"CollateralCosmicRay",
	"Straylight",
	"PaArgabrightening",
	"DetectorElectronicsAnomaly",
	"NotFinePoint",
	"DataGap",
	"RollingBandOnApertureRow",
	"RollingBandOnOptimalApertureRow",
	"PossibleThrusterFire",
	"ThrusterFire",
}

// Has reports whether any bit of mask is set in f.
func (f Flag) Has(mask Flag) bool {
	return f&mask != 0
}

// String lists the set bits joined by '|', lowest bit first.
func (f Flag) String() string {
	if f == 0 {
		return "0"
	}
	var names []string
	for rest := f; rest != 0; {
		bit := bits.TrailingZeros32(uint32(rest))
		rest &^= 1 << bit
		if bit < len(flagNames) {
			names = append(names, flagNames[bit])
		} else {
			names = append(names, "Bit"+strconv.Itoa(bit))
		}
	}
	return strings.Join(names, "|")
}

// Column converts the assembled flags into the 32-bit archival column, one
// word per cadence in cadence order.
func Column(flags []Flag) []int32 {
	col := make([]int32, len(flags))
	for i, f := range flags {
		col[i] = int32(f)
	}
	return col
}

// Count returns how many cadences have any bit of mask set.
func Count(flags []Flag, mask Flag) int {
	n := 0
	for _, f := range flags {
		if f.Has(mask) {
			n++
		}
	}
	return n
}
