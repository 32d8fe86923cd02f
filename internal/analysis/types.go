package analysis

import "fmt"

type InputType string

const (
	InputImage InputType = "image"
	InputText  InputType = "text"
	InputURL   InputType = "url"
)

type TextOrigin string

const (
	OriginUser     TextOrigin = "user"
	OriginLiveFeed TextOrigin = "live-feed"
)

// Request carries exactly one of the three supported inputs. Use the
// constructors below rather than building the struct by hand.
type Request struct {
	Type       InputType
	ImageURL   string
	Text       string
	TextOrigin TextOrigin
	ArticleURL string
}

func NewImageRequest(sourceURL string) Request {
	return Request{Type: InputImage, ImageURL: sourceURL}
}

func NewTextRequest(body string, origin TextOrigin) Request {
	return Request{Type: InputText, Text: body, TextOrigin: origin}
}

func NewArticleURLRequest(articleURL string) Request {
	return Request{Type: InputURL, ArticleURL: articleURL}
}

// InputValue returns the raw user-supplied value, used as the history
// record's display value.
func (r Request) InputValue() string {
	switch r.Type {
	case InputImage:
		return r.ImageURL
	case InputURL:
		return r.ArticleURL
	default:
		return r.Text
	}
}

type ContentKind string

const (
	KindImage ContentKind = "image"
	KindText  ContentKind = "text"
)

// ExtractedContent is the normalized output of the extraction stage. For
// KindImage the payload is a base64 data URI, never the remote URL, so the
// classifier never depends on the third-party host being reachable.
type ExtractedContent struct {
	Kind    ContentKind
	Payload string
}

// ClassificationResult is the parsed verdict from the inference service.
type ClassificationResult struct {
	IsLikelyFake     bool     `json:"isLikelyFake" bson:"isLikelyFake"`
	Confidence       int      `json:"confidence" bson:"confidence"`
	Analysis         string   `json:"analysis" bson:"analysis"`
	ExtractedText    string   `json:"extractedText,omitempty" bson:"extractedText,omitempty"`
	MainClaims       []string `json:"mainClaims" bson:"mainClaims"`
	Bias             string   `json:"bias" bson:"bias"`
	Tone             string   `json:"tone" bson:"tone"`
	LogicalFallacies []string `json:"logicalFallacies" bson:"logicalFallacies"`
	Sensationalism   string   `json:"sensationalism" bson:"sensationalism"`
	SearchQuery      string   `json:"-" bson:"-"`
}

// Validate enforces the upstream contract. An out-of-range confidence is a
// contract violation and fails the classifying stage, it is never clamped.
func (c ClassificationResult) Validate() error {
	if c.Confidence < 0 || c.Confidence > 100 {
		return &UpstreamError{Message: fmt.Sprintf("confidence %d outside [0,100]", c.Confidence)}
	}
	return nil
}

type SourceCitation struct {
	Title   string `json:"title" bson:"title"`
	URL     string `json:"url" bson:"url"`
	Snippet string `json:"snippet" bson:"snippet"`
}

// Result is the durable unit produced by one successful pipeline run.
// Immutable after creation; ID doubles as the feedback join key and the
// history lookup key.
type Result struct {
	ID            int64                `json:"id" bson:"id"`
	Verdict       ClassificationResult `json:"verdict" bson:"verdict"`
	Sources       []SourceCitation     `json:"sources" bson:"sources"`
	ExtractedText string               `json:"extractedText,omitempty" bson:"extractedText,omitempty"`
}

// HistoryEntry is one past analysis owned by a user account. Entries are
// appended or bulk-cleared, never mutated in place.
type HistoryEntry struct {
	ID         int64     `json:"id" bson:"id"`
	InputType  InputType `json:"inputType" bson:"inputType"`
	InputValue string    `json:"inputValue" bson:"inputValue"`
	Result     Result    `json:"result" bson:"result"`
}

// Actor identifies the caller of a pipeline run. Authentication itself
// happens upstream; the orchestrator only needs to know whether a history
// append is possible and wanted.
type Actor struct {
	Authenticated bool
	UserID        string
	UserEmail     string
	SaveHistory   bool
}
