package quiz

import "testing"

func TestParseQuestionsWrappedObject(t *testing.T) {
	raw := `{"questions": [
		{"title": "A shrimp's heart is in its head.", "isFake": false, "explanation": "True: it sits in the cephalothorax."},
		{"title": "Goldfish have a three-second memory.", "isFake": true, "explanation": "Goldfish remember for months."}
	]}`

	questions, err := parseQuestions(raw)
	if err != nil {
		t.Fatalf("parseQuestions returned error: %v", err)
	}
	if len(questions) != 2 {
		t.Fatalf("questions = %d, want 2", len(questions))
	}
	if !questions[1].IsFake {
		t.Error("second question should be fake")
	}
}

func TestParseQuestionsBareArray(t *testing.T) {
	raw := `[{"title": "Statement", "isFake": true, "explanation": "Because."}]`

	questions, err := parseQuestions(raw)
	if err != nil {
		t.Fatalf("parseQuestions returned error: %v", err)
	}
	if len(questions) != 1 {
		t.Fatalf("questions = %d, want 1", len(questions))
	}
}

func TestParseQuestionsInvalid(t *testing.T) {
	cases := []string{
		`{"questions": []}`,
		`{}`,
		`not json`,
	}

	for _, raw := range cases {
		if _, err := parseQuestions(raw); err == nil {
			t.Errorf("parseQuestions(%q) should fail", raw)
		}
	}
}

func TestPickTopicsDistinct(t *testing.T) {
	g := NewGenerator(Config{Model: "test"})

	topics := g.pickTopics(3)
	if len(topics) != 3 {
		t.Fatalf("topics = %d, want 3", len(topics))
	}

	seen := map[string]bool{}
	for _, topic := range topics {
		if seen[topic] {
			t.Errorf("duplicate topic %q", topic)
		}
		seen[topic] = true
	}
}
