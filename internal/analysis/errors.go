package analysis

import "fmt"

type Stage string

const (
	StageReceived    Stage = "received"
	StageExtracting  Stage = "extracting"
	StageClassifying Stage = "classifying"
	StageVerifying   Stage = "verifying"
	StagePersisting  Stage = "persisting"
	StageCompleted   Stage = "completed"
)

// ValidationError reports bad or missing caller input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// FetchError reports an unreachable remote resource or a non-2xx response
// during extraction.
type FetchError struct {
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("failed to fetch %s: status %d", e.URL, e.Status)
	}
	return fmt.Sprintf("failed to fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ExtractionEmptyError reports an article page that yielded no heading or
// paragraph text after trimming.
type ExtractionEmptyError struct {
	URL string
}

func (e *ExtractionEmptyError) Error() string {
	return fmt.Sprintf("no readable article text extracted from %s", e.URL)
}

// UpstreamError reports an inference-service failure or a response that
// violates the structured-output contract.
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("inference service error (status %d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("inference service error: %s", e.Message)
}

// EmptyResponseError reports an inference call that returned no content.
type EmptyResponseError struct{}

func (e *EmptyResponseError) Error() string {
	return "inference service returned an empty response"
}

// StageError tags a fatal pipeline failure with the stage that produced it.
// Only the extracting and classifying stages can surface one.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("analysis failed at %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
