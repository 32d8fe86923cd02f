package classify

import (
	"errors"
	"strings"
	"testing"

	"github.com/factlens/backend/internal/analysis"
)

const validResponse = `{
	"isLikelyFake": true,
	"confidence": 97,
	"analysis": "The claim contradicts established lunar geology.",
	"mainClaims": ["The moon is made of cheese."],
	"bias": "none",
	"tone": "sensational",
	"logicalFallacies": ["appeal to authority"],
	"sensationalism": "high",
	"searchQuery": "moon composition scientific evidence"
}`

func TestParseClassificationValid(t *testing.T) {
	result, err := parseClassification(validResponse)
	if err != nil {
		t.Fatalf("parseClassification returned error: %v", err)
	}

	if !result.IsLikelyFake {
		t.Error("IsLikelyFake = false, want true")
	}
	if result.Confidence != 97 {
		t.Errorf("Confidence = %d, want 97", result.Confidence)
	}
	if result.SearchQuery != "moon composition scientific evidence" {
		t.Errorf("SearchQuery = %q", result.SearchQuery)
	}
	if len(result.MainClaims) != 1 {
		t.Errorf("MainClaims = %d entries, want 1", len(result.MainClaims))
	}
}

func TestParseClassificationStripsCodeFence(t *testing.T) {
	fenced := "```json\n" + validResponse + "\n```"

	result, err := parseClassification(fenced)
	if err != nil {
		t.Fatalf("parseClassification returned error: %v", err)
	}
	if result.Confidence != 97 {
		t.Errorf("Confidence = %d, want 97", result.Confidence)
	}
}

func TestParseClassificationContractViolations(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"not json", "the news looks fake to me"},
		{"missing isLikelyFake", `{"confidence": 50}`},
		{"missing confidence", `{"isLikelyFake": false}`},
		{"confidence above range", `{"isLikelyFake": true, "confidence": 150}`},
		{"confidence below range", `{"isLikelyFake": true, "confidence": -1}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := parseClassification(tc.raw)

			var upstreamErr *analysis.UpstreamError
			if !errors.As(err, &upstreamErr) {
				t.Fatalf("expected UpstreamError, got %v", err)
			}
		})
	}
}

func TestParseClassificationEmpty(t *testing.T) {
	_, err := parseClassification("   ")

	var emptyErr *analysis.EmptyResponseError
	if !errors.As(err, &emptyErr) {
		t.Fatalf("expected EmptyResponseError, got %v", err)
	}
}

func TestPromptContractPerKind(t *testing.T) {
	textSystem, textPrefix, ok := PromptFor(analysis.KindText)
	if !ok {
		t.Fatal("no prompt for text kind")
	}
	imageSystem, imagePrefix, ok := PromptFor(analysis.KindImage)
	if !ok {
		t.Fatal("no prompt for image kind")
	}

	if textSystem == imageSystem {
		t.Error("text and image prompts must differ")
	}
	if !strings.Contains(imageSystem, "Extract all text from the image") {
		t.Error("image prompt must instruct OCR extraction")
	}
	for name, system := range map[string]string{"text": textSystem, "image": imageSystem} {
		if !strings.Contains(system, "searchQuery") {
			t.Errorf("%s prompt must request a search query", name)
		}
		if !strings.Contains(system, "DO NOT include sources") {
			t.Errorf("%s prompt must forbid fabricated sources", name)
		}
	}
	if textPrefix == "" || imagePrefix == "" {
		t.Error("user prefixes must be non-empty")
	}
}

func TestPromptForUnknownKind(t *testing.T) {
	_, _, ok := PromptFor(analysis.ContentKind("video"))
	if ok {
		t.Error("unknown content kind must not resolve to a prompt")
	}
}

func TestBuildMessagesTextEmbedsPayload(t *testing.T) {
	messages, err := buildMessages(analysis.ExtractedContent{Kind: analysis.KindText, Payload: "headline text"})
	if err != nil {
		t.Fatalf("buildMessages returned error: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("messages = %d, want 2", len(messages))
	}
	if !strings.Contains(messages[1].Content, "headline text") {
		t.Errorf("user message must embed the payload, got %q", messages[1].Content)
	}
}

func TestBuildMessagesImageUsesImagePart(t *testing.T) {
	dataURI := "data:image/png;base64,AAAA"

	messages, err := buildMessages(analysis.ExtractedContent{Kind: analysis.KindImage, Payload: dataURI})
	if err != nil {
		t.Fatalf("buildMessages returned error: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("messages = %d, want 2", len(messages))
	}

	parts := messages[1].MultiContent
	if len(parts) != 2 {
		t.Fatalf("multi-content parts = %d, want 2", len(parts))
	}
	if parts[1].ImageURL == nil || parts[1].ImageURL.URL != dataURI {
		t.Error("image part must carry the data URI")
	}
}

func TestStripCodeFence(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{`{"a":1}`, `{"a":1}`},
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{\"a\":1}\n```", `{"a":1}`},
	}

	for _, tc := range cases {
		if got := stripCodeFence(tc.in); got != tc.want {
			t.Errorf("stripCodeFence(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
