package core

// DefaultMaxUnits is the largest fan-out (coordinator included) a run
// accepts unless configured otherwise.
const DefaultMaxUnits = 16

// ValidateTopology checks the total number of execution units before any
// partitioning happens. Unit 0 is the coordinator, so a usable topology
// has at least two units.
func ValidateTopology(units, maxUnits int) error {
	if units < 2 {
		return ConfigErrorf("at least 2 units are required (1 coordinator, 1 worker), got %d", units)
	}
	if maxUnits > 0 && units > maxUnits {
		return ConfigErrorf("maximum %d units allowed, got %d", maxUnits, units)
	}
	return nil
}
