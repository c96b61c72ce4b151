package release

// StepID identifies one stage of the release pipeline.
type StepID string

// Pipeline steps, in execution order.
const (
	StepSwitchPrimary StepID = "switch-primary"
	StepRevision      StepID = "revision"
	StepTempDir       StepID = "tempdir"
	StepBuild         StepID = "build"
	StepSwitchRelease StepID = "switch-release"
	StepCopy          StepID = "copy"
	StepStage         StepID = "stage"
	StepCommit        StepID = "commit"
)

// Steps lists every pipeline step in execution order.
var Steps = []StepID{
	StepSwitchPrimary,
	StepRevision,
	StepTempDir,
	StepBuild,
	StepSwitchRelease,
	StepCopy,
	StepStage,
	StepCommit,
}

// StepResult is the outcome of a single step. Err is nil on success.
type StepResult struct {
	Step StepID
	Err  error
}

// OK reports whether the step succeeded.
func (r StepResult) OK() bool {
	return r.Err == nil
}

// Result describes a pipeline run, complete or not.
type Result struct {
	// Revision is the primary branch commit that was built, once known.
	Revision string

	// TempDir is where the build output was written. It no longer exists
	// once Run returns.
	TempDir string

	// Completed lists the steps that succeeded, in order.
	Completed []StepID

	// Copied and Staged are the build output paths, relative to the working copy.
	Copied []string
	Staged []string

	// Failure is the step that stopped the pipeline, or nil on success.
	Failure *StepResult
}

// Succeeded reports whether every step ran.
func (r *Result) Succeeded() bool {
	return r.Failure == nil && len(r.Completed) == len(Steps)
}
