package reporter

// Reporter receives pipeline events. Implementations must be safe for use
// from the goroutine driving the pipeline; stage progress may arrive from
// worker callbacks and is serialized by the caller.
type Reporter interface {
	Hardware(summary HardwareSummary)
	Initialization(summary InitializationSummary)
	StageStarted(info StageInfo)
	StageProgress(update StageProgress)
	StageComplete(outcome StageOutcome)
	SelectionResult(summary SelectionSummary)
	ValidationComplete(summary ValidationSummary)
	ExtractionComplete(outcome ExtractionOutcome)
	Warning(message string)
	Error(err ReporterError)
	OperationComplete(message string)
	BatchStarted(info BatchStartInfo)
	FileProgress(context FileProgressContext)
	BatchComplete(summary BatchSummary)
	Verbose(message string)
}

// NullReporter discards all events.
type NullReporter struct{}

func (NullReporter) Hardware(HardwareSummary)             {}
func (NullReporter) Initialization(InitializationSummary) {}
func (NullReporter) StageStarted(StageInfo)               {}
func (NullReporter) StageProgress(StageProgress)          {}
func (NullReporter) StageComplete(StageOutcome)           {}
func (NullReporter) SelectionResult(SelectionSummary)     {}
func (NullReporter) ValidationComplete(ValidationSummary) {}
func (NullReporter) ExtractionComplete(ExtractionOutcome) {}
func (NullReporter) Warning(string)                       {}
func (NullReporter) Error(ReporterError)                  {}
func (NullReporter) OperationComplete(string)             {}
func (NullReporter) BatchStarted(BatchStartInfo)          {}
func (NullReporter) FileProgress(FileProgressContext)     {}
func (NullReporter) BatchComplete(BatchSummary)           {}
func (NullReporter) Verbose(string)                       {}

// Percent returns done/total as a percentage, 0 when total is 0.
func Percent(done, total int) float32 {
	if total <= 0 {
		return 0
	}
	return float32(done) * 100 / float32(total)
}
