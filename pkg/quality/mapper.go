package quality

import (
	"fmt"
	"sort"

	"cadenceqa/internal/models"
)

// MjdCadenceMapper maps the mid-cadence MJD of an event back to the cadence
// it was taken in. Implementations must be deterministic and total over the
// timestamps they are asked about.
type MjdCadenceMapper interface {
	MjdToCadence(mjd float64) (int, error)
}

// CadenceConverter maps a short cadence number onto the long cadence that
// contains it.
type CadenceConverter interface {
	ShortToLong(shortCadence int) int
}

// CadenceConverterFunc adapts a plain function to CadenceConverter.
type CadenceConverterFunc func(shortCadence int) int

// ShortToLong calls f.
func (f CadenceConverterFunc) ShortToLong(shortCadence int) int {
	return f(shortCadence)
}

// TableMapper is an exact lookup built from a pixel log table.
type TableMapper struct {
	byMjd     map[float64]int
	byCadence map[int]models.PixelLog
}

// NewTableMapper validates the logs and indexes them by mid MJD and cadence.
// Logs are sorted by cadence first; between distinct cadences every time
// stamp must strictly increase, and repeated cadences must agree on the mid
// time.
func NewTableMapper(logs []models.PixelLog) (*TableMapper, error) {
	sorted := append([]models.PixelLog(nil), logs...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Cadence < sorted[j].Cadence
	})

	for i := 1; i < len(sorted); i++ {
		prev, cur := sorted[i-1], sorted[i]
		if prev.Cadence == cur.Cadence {
			if prev.MidMjd != cur.MidMjd {
				return nil, fmt.Errorf("%w: cadence %d has mid MJD %v and %v",
					models.ErrContract, cur.Cadence, prev.MidMjd, cur.MidMjd)
			}
			continue
		}
		if prev.MidMjd >= cur.MidMjd || prev.StartMjd >= cur.StartMjd || prev.EndMjd >= cur.EndMjd {
			return nil, fmt.Errorf("%w: time goes backwards or does not change between cadence %d and %d",
				models.ErrContract, prev.Cadence, cur.Cadence)
		}
	}

	m := &TableMapper{
		byMjd:     make(map[float64]int, len(sorted)),
		byCadence: make(map[int]models.PixelLog, len(sorted)),
	}
	for _, log := range sorted {
		m.byMjd[log.MidMjd] = log.Cadence
		m.byCadence[log.Cadence] = log
	}
	return m, nil
}

// MjdToCadence returns the cadence whose mid time is exactly mjd.
func (m *TableMapper) MjdToCadence(mjd float64) (int, error) {
	cadence, ok := m.byMjd[mjd]
	if !ok {
		return 0, fmt.Errorf("%w: mid MJD %v does not exist", models.ErrContract, mjd)
	}
	return cadence, nil
}

// CadenceToMjd returns the mid MJD of cadence.
func (m *TableMapper) CadenceToMjd(cadence int) (float64, error) {
	log, ok := m.byCadence[cadence]
	if !ok {
		return 0, fmt.Errorf("%w: cadence %d does not exist", models.ErrContract, cadence)
	}
	return log.MidMjd, nil
}

// HasCadence reports whether the table knows cadence.
func (m *TableMapper) HasCadence(cadence int) bool {
	_, ok := m.byCadence[cadence]
	return ok
}
