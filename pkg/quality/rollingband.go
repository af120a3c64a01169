package quality

import "cadenceqa/internal/models"

// ExportRollingBandFlags keeps only the artifact and scene dependent bits of
// every row band, which is all the archive product carries.
func ExportRollingBandFlags(table models.RollingBandFlagTable) models.RollingBandFlagTable {
	if table == nil {
		return nil
	}
	const keep = RollingBandMask | RollingBandMaskSceneDependent
	out := make(models.RollingBandFlagTable, len(table))
	for k, flags := range table {
		export := make([]byte, len(flags))
		for i, b := range flags {
			export[i] = b & keep
		}
		out[k] = export
	}
	return out
}
