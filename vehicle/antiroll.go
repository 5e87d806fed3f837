package vehicle

// ContactEpsilon is the compression above which a wheel counts as recently
// grounded for anti-roll purposes.
const ContactEpsilon = -0.0001

// AntiRollPair couples the two wheels of an axle.
type AntiRollPair struct {
	Left      Corner
	Right     Corner
	Stiffness float64 // N/m
}

// ComputeAntiRollForces returns the opposing forces for the two wheels of a
// pair, to be applied along the chassis up axis.
func ComputeAntiRollForces(compressionA, compressionB, stiffness float64) (forceA, forceB float64) {
	force := (compressionA - compressionB) * stiffness
	return -force, force
}

// HasRecentContact is a heuristic gate: the last known compression is not
// meaningfully extended. It is not a true contact flag; an airborne wheel
// keeps its last compression.
func HasRecentContact(lastCompression float64) bool {
	return lastCompression > ContactEpsilon
}
