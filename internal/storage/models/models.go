package models

import (
	"time"

	"github.com/factlens/backend/internal/analysis"
)

// FeedbackRecord lives in its own collection with a lifecycle independent of
// history entries: it may reference an analysis whose history entry has been
// cleared.
type FeedbackRecord struct {
	AnalysisID int64     `json:"analysisId" bson:"analysisId"`
	UserID     string    `json:"userId" bson:"userId"`
	UserEmail  string    `json:"userEmail" bson:"userEmail"`
	Feedback   string    `json:"feedback" bson:"feedback"`
	CreatedAt  time.Time `json:"createdAt" bson:"createdAt"`
}

const (
	FeedbackHelpful   = "helpful"
	FeedbackUnhelpful = "unhelpful"
)

// FeedbackWithAnalysis is a feedback record joined best-effort against the
// submitting user's history. Analysis is nil when the referenced entry no
// longer exists.
type FeedbackWithAnalysis struct {
	FeedbackRecord `bson:",inline"`
	Analysis       *analysis.HistoryEntry `json:"analysis,omitempty" bson:"analysis,omitempty"`
}

// UserDocument is the per-user document holding the append-only analysis
// history and the quiz counters.
type UserDocument struct {
	Email                      string                  `json:"email" bson:"email"`
	History                    []analysis.HistoryEntry `json:"history" bson:"history"`
	TotalCorrectQuizAnswers    int                     `json:"totalCorrectQuizAnswers" bson:"totalCorrectQuizAnswers"`
	TotalQuizQuestionsAnswered int                     `json:"totalQuizQuestionsAnswered" bson:"totalQuizQuestionsAnswered"`
}
