package conflict

// Config holds the four independently switchable detectors' buffers, all
// explicit per spec §4.4's table (the 119s section buffer is kept
// verbatim per spec §9's open question, not rounded to 120).
type Config struct {
	DetectSectionOverlap   bool
	DetectPlatformConflict bool
	DetectHeadOn           bool
	DetectTimingViolation  bool

	SectionBufferSeconds  float64
	PlatformBufferSeconds float64
	HeadOnBufferSeconds   float64

	TimingMinRatio    float64 // travel time below this fraction of graph-minimum is a violation
	MinDwellSeconds   float64
}

// DefaultConfig returns the spec's default buffers (§4.4 table).
func DefaultConfig() Config {
	return Config{
		DetectSectionOverlap:   true,
		DetectPlatformConflict: true,
		DetectHeadOn:           true,
		DetectTimingViolation:  true,
		SectionBufferSeconds:   119,
		PlatformBufferSeconds:  300,
		HeadOnBufferSeconds:    600,
		TimingMinRatio:         0.8,
		MinDwellSeconds:        60,
	}
}

// Stats tracks running counts across Detector.DetectAll calls.
type Stats struct {
	CountsByKind map[Kind]int
	TotalPairsExamined int
	DetectCalls int
}

func newStats() Stats {
	return Stats{CountsByKind: make(map[Kind]int)}
}
