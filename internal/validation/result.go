package validation

// Result contains the overall validation result.
type Result struct {
	AreShotsLongEnough    bool
	AreShotsClean         bool
	AreSubShotsCovering   bool
	IsSelectionBounded    bool
	IsSelectionUnique     bool
	IsSingleCandidateKept bool
	AreThumbnailsWritten  bool

	// Details
	ShotMessage      string
	CleanMessage     string
	SubShotMessage   string
	SelectionMessage string
	UniqueMessage    string
	CandidateMessage string
	ThumbnailMessage string
}

// ValidationStep represents a single validation check.
type ValidationStep struct {
	Name    string
	Passed  bool
	Details string
}

// IsValid returns true if all validation checks passed.
func (r *Result) IsValid() bool {
	return r.AreShotsLongEnough &&
		r.AreShotsClean &&
		r.AreSubShotsCovering &&
		r.IsSelectionBounded &&
		r.IsSelectionUnique &&
		r.IsSingleCandidateKept &&
		r.AreThumbnailsWritten
}

// GetValidationSteps returns all validation steps with results.
func (r *Result) GetValidationSteps() []ValidationStep {
	return []ValidationStep{
		{Name: "Shot length", Passed: r.AreShotsLongEnough, Details: r.ShotMessage},
		{Name: "Shot frames", Passed: r.AreShotsClean, Details: r.CleanMessage},
		{Name: "Sub-shot coverage", Passed: r.AreSubShotsCovering, Details: r.SubShotMessage},
		{Name: "Selection size", Passed: r.IsSelectionBounded, Details: r.SelectionMessage},
		{Name: "Selection frames", Passed: r.IsSelectionUnique, Details: r.UniqueMessage},
		{Name: "Single candidate", Passed: r.IsSingleCandidateKept, Details: r.CandidateMessage},
		{Name: "Thumbnails", Passed: r.AreThumbnailsWritten, Details: r.ThumbnailMessage},
	}
}

// GetFailures returns descriptions of failed validation checks.
func (r *Result) GetFailures() []string {
	var failures []string
	for _, step := range r.GetValidationSteps() {
		if !step.Passed {
			failures = append(failures, step.Name+": "+step.Details)
		}
	}
	return failures
}
