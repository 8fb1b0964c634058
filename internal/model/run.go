package model

// RunKind distinguishes the two invocation shapes.
type RunKind int

const (
	// RunSingle downloads one user-supplied video to an explicit file.
	RunSingle RunKind = iota

	// RunBatch harvests videos for every artist of a search file.
	RunBatch
)

func (k RunKind) String() string {
	if k == RunBatch {
		return "mass"
	}
	return "single"
}

// RunConfig is the validated, immutable description of one invocation.
//
// Build it with config.NewSingleRun or config.NewBatchRun rather than by hand;
// those constructors perform the checks that turn bad input into ConfigError
// before any network activity.
type RunConfig struct {
	Kind      RunKind
	AudioOnly bool

	// Batch only.
	SearchFile         string
	DestDir            string
	QuotaPerArtist     int
	MaxDurationSeconds int
	ScanWindow         int

	// Single only.
	VideoURL string
	DestFile string
}

// Mode returns the download mode shared by all items of the run.
func (r RunConfig) Mode() Mode {
	return ModeFor(r.AudioOnly)
}
