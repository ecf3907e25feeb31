package runner

// FileOutcome is the result of processing one file.
type FileOutcome struct {
	// Path is the absolute path of the file.
	Path string

	// Changed reports whether the task found or made a change.
	Changed bool

	// Output is text the task produced for the file, if any.
	Output string

	// Error is set if the file could not be processed.
	Error error
}

// Stats captures aggregate information about a run.
type Stats struct {
	FilesDiscovered int
	FilesProcessed  int
	FilesChanged    int
	FilesErrored    int
}

// Result is the outcome of a run, in discovery order.
type Result struct {
	Files []FileOutcome
	Stats Stats
}

// Errors returns the per-file errors in file order.
func (r *Result) Errors() []error {
	var errs []error
	for _, f := range r.Files {
		if f.Error != nil {
			errs = append(errs, f.Error)
		}
	}
	return errs
}

func (r *Result) accumulate(outcome FileOutcome) {
	r.Files = append(r.Files, outcome)
	if outcome.Error != nil {
		r.Stats.FilesErrored++
		return
	}
	r.Stats.FilesProcessed++
	if outcome.Changed {
		r.Stats.FilesChanged++
	}
}
