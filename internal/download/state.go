package download

// State is the stage a run is in.
//
// Runs move forward only: Init, Loading, Harvesting, Downloading,
// Normalizing, then Done or FailedFatal. Harvesting covers the per-artist
// Scraping, Filtering and Selecting stages, which run concurrently across
// artists. Single runs go from Init straight to Downloading and skip
// Normalizing.
type State int32

const (
	StateInit State = iota
	StateLoading
	StateHarvesting
	StateDownloading
	StateNormalizing
	StateDone
	StateFailedFatal
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateLoading:
		return "loading"
	case StateHarvesting:
		return "harvesting"
	case StateDownloading:
		return "downloading"
	case StateNormalizing:
		return "normalizing"
	case StateDone:
		return "done"
	case StateFailedFatal:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the run has finished.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailedFatal
}
