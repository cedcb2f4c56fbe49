package summarizer

import "fmt"

// SummarizationError reports a summary that could not be obtained or did not
// have the expected shape.
type SummarizationError struct {
	Reason string
	Err    error
}

func (e *SummarizationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("summarization failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("summarization failed: %s", e.Reason)
}

func (e *SummarizationError) Unwrap() error {
	return e.Err
}
