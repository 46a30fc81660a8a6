package diag

import (
	"context"
	"fmt"
	"strings"

	"github.com/stellarr-r/strategy-launcher/internal/logger"
)

// TotalPhases is the number of numbered pipeline phases.
const TotalPhases = 4

// Pipeline phases in execution order.
const (
	PhaseSelfUpdate = iota + 1
	PhaseProvision
	PhaseArtifact
	PhaseLaunch
)

// delimiter frames fatal blocks so they stand apart from phase output.
const delimiter = "============================================================"

// Phase announces a numbered pipeline phase so the user can tell which
// step a later message belongs to.
func Phase(ctx context.Context, number int, title string) {
	logger.Infof(ctx, "[%d/%d] %s", number, TotalPhases, title)
}

// Failure pairs a fatal error with remedy text for the user.
type Failure struct {
	// Stage is the human name of the step that failed.
	Stage string
	// Cause is the underlying error.
	Cause error
	// Remedies are actionable next steps, one per line.
	Remedies []string
}

// NewFailure builds a Failure for the named stage.
func NewFailure(stage string, cause error, remedies ...string) *Failure {
	return &Failure{
		Stage:    stage,
		Cause:    cause,
		Remedies: remedies,
	}
}

// Error satisfies the error interface so a Failure travels up to the CLI
// layer, which turns any error into exit code 1.
func (f *Failure) Error() string {
	return fmt.Sprintf("%s: %v", f.Stage, f.Cause)
}

// Unwrap exposes the cause to errors.Is and errors.As.
func (f *Failure) Unwrap() error {
	return f.Cause
}

// ReportFatal renders the delimited error block for a fatal condition.
// The block is emitted exactly once, at the point the pipeline gives up.
func (f *Failure) ReportFatal(ctx context.Context) {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(delimiter)
	b.WriteString("\nFATAL: ")
	b.WriteString(f.Stage)
	b.WriteString("\nCause: ")
	b.WriteString(f.Cause.Error())

	if len(f.Remedies) > 0 {
		b.WriteString("\nWhat to try:")

		for _, remedy := range f.Remedies {
			b.WriteString("\n  - ")
			b.WriteString(remedy)
		}
	}

	b.WriteString("\n")
	b.WriteString(delimiter)

	logger.Error(ctx, b.String())
}

// ReportSuccess renders the final summary naming the data directory.
func ReportSuccess(ctx context.Context, dataDir string) {
	logger.Infof(ctx, "Launch sequence completed, application data lives in %s", dataDir)
}
