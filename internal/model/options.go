package model

// RunOptions is the configuration surface of a single transformation run.
//
// Voters are predicates over relative paths. SourceRelocation moves
// transformed classes to the path implied by their final binary name.
// Threads greater than one enables the parallel walk.
type RunOptions struct {
	ClassInclusionVoter Voter
	TransformationVoter Voter
	ResourceVoter       Voter
	SourceRelocation    bool
	Threads             int
}

// DefaultRunOptions returns the documented defaults: every voter admits
// everything, relocation is on, and processing is sequential.
func DefaultRunOptions() RunOptions {
	return RunOptions{
		ClassInclusionVoter: AcceptAll,
		TransformationVoter: AcceptAll,
		ResourceVoter:       AcceptAll,
		SourceRelocation:    true,
		Threads:             1,
	}
}

// Normalize fills zero values in with the defaults.
func (o RunOptions) Normalize() RunOptions {
	if o.ClassInclusionVoter == nil {
		o.ClassInclusionVoter = AcceptAll
	}

	if o.TransformationVoter == nil {
		o.TransformationVoter = AcceptAll
	}

	if o.ResourceVoter == nil {
		o.ResourceVoter = AcceptAll
	}

	if o.Threads < 1 {
		o.Threads = 1
	}

	return o
}
