package domain

// CaptionResult is the terminal outcome for one image. Exactly one result
// exists per asset that entered the orchestrator.
type CaptionResult struct {
	Filename string
	Caption  string
	Attempts int
	Err      error
}

// Succeeded reports whether the image ended in the succeeded state.
func (r CaptionResult) Succeeded() bool {
	return r.Err == nil
}

// ManifestRow is one line of the captions.csv manifest.
type ManifestRow struct {
	Caption   string
	ImageFile string
}
