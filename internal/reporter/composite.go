package reporter

// CompositeReporter fans out events to multiple reporters.
type CompositeReporter struct {
	reporters []Reporter
}

// NewCompositeReporter creates a composite reporter.
func NewCompositeReporter(reporters ...Reporter) *CompositeReporter {
	return &CompositeReporter{reporters: reporters}
}

func (c *CompositeReporter) each(fn func(Reporter)) {
	for _, r := range c.reporters {
		fn(r)
	}
}

func (c *CompositeReporter) Hardware(summary HardwareSummary) {
	c.each(func(r Reporter) { r.Hardware(summary) })
}

func (c *CompositeReporter) Initialization(summary InitializationSummary) {
	c.each(func(r Reporter) { r.Initialization(summary) })
}

func (c *CompositeReporter) StageStarted(info StageInfo) {
	c.each(func(r Reporter) { r.StageStarted(info) })
}

func (c *CompositeReporter) StageProgress(update StageProgress) {
	c.each(func(r Reporter) { r.StageProgress(update) })
}

func (c *CompositeReporter) StageComplete(outcome StageOutcome) {
	c.each(func(r Reporter) { r.StageComplete(outcome) })
}

func (c *CompositeReporter) SelectionResult(summary SelectionSummary) {
	c.each(func(r Reporter) { r.SelectionResult(summary) })
}

func (c *CompositeReporter) ValidationComplete(summary ValidationSummary) {
	c.each(func(r Reporter) { r.ValidationComplete(summary) })
}

func (c *CompositeReporter) ExtractionComplete(outcome ExtractionOutcome) {
	c.each(func(r Reporter) { r.ExtractionComplete(outcome) })
}

func (c *CompositeReporter) Warning(message string) {
	c.each(func(r Reporter) { r.Warning(message) })
}

func (c *CompositeReporter) Error(err ReporterError) {
	c.each(func(r Reporter) { r.Error(err) })
}

func (c *CompositeReporter) OperationComplete(message string) {
	c.each(func(r Reporter) { r.OperationComplete(message) })
}

func (c *CompositeReporter) BatchStarted(info BatchStartInfo) {
	c.each(func(r Reporter) { r.BatchStarted(info) })
}

func (c *CompositeReporter) FileProgress(context FileProgressContext) {
	c.each(func(r Reporter) { r.FileProgress(context) })
}

func (c *CompositeReporter) BatchComplete(summary BatchSummary) {
	c.each(func(r Reporter) { r.BatchComplete(summary) })
}

func (c *CompositeReporter) Verbose(message string) {
	c.each(func(r Reporter) { r.Verbose(message) })
}
