package model

// Outcome classifies what happened to a single file during a run.
type Outcome int

const (
	// Skipped indicates the file was excluded by a voter and produced no output.
	Skipped Outcome = iota
	// Copied indicates the file was copied to the target byte for byte.
	Copied
	// Transformed indicates the file was rewritten by the transformer chain.
	Transformed
	// Failed indicates processing the file raised an error.
	Failed
)

// String returns the lower-case outcome label used in logs and summaries.
func (o Outcome) String() string {
	switch o {
	case Skipped:
		return "skipped"
	case Copied:
		return "copied"
	case Transformed:
		return "transformed"
	case Failed:
		return "failed"
	}

	return "unknown"
}

// PipelineResult is the per-file outcome of a run. Failures carry their
// cause; successful results carry the (possibly relocated) target path.
type PipelineResult struct {
	Source  Path
	Target  Path
	Outcome Outcome
	Err     error
}
