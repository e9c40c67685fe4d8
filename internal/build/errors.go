package build

import "fmt"

// Stage names a pipeline step.
type Stage string

// Pipeline stages.
const (
	StageConfig     Stage = "config"
	StageManifest   Stage = "manifest"
	StageReconcile  Stage = "reconcile"
	StageFont       Stage = "font"
	StageRender     Stage = "render"
	StageWrite      Stage = "write"
	StageStylesheet Stage = "stylesheet"
	StageHistory    Stage = "history"
)

// Error is a fatal pipeline failure.
type Error struct {
	Stage Stage
	Path  string
	Err   error
}

func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s: %v", e.Stage, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func stageErr(stage Stage, path string, err error) *Error {
	return &Error{Stage: stage, Path: path, Err: err}
}
