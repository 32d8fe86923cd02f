package analysis

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/factlens/backend/internal/metrics"
	"github.com/factlens/backend/pkg/logger"
)

// Extractor normalizes one raw input into analyzable content.
type Extractor interface {
	Extract(ctx context.Context, req Request) (ExtractedContent, error)
}

// Classifier produces a verdict for extracted content. Production and test
// implementations are interchangeable behind this interface.
type Classifier interface {
	Classify(ctx context.Context, content ExtractedContent) (ClassificationResult, error)
}

// SourceFinder looks up corroborating sources for a search query. It never
// returns an error: source verification is an enhancement, and any failure
// degrades to an empty slice.
type SourceFinder interface {
	FindSources(ctx context.Context, query string) []SourceCitation
}

// HistoryStore is the narrow append contract the orchestrator holds against
// the document store.
type HistoryStore interface {
	AppendHistory(ctx context.Context, userEmail string, entry HistoryEntry) error
}

// Orchestrator sequences extraction, classification, verification and
// persistence for one request. Stages run strictly sequentially; there is no
// retry at any stage and no cancellation once extraction has begun.
type Orchestrator struct {
	extractor  Extractor
	classifier Classifier
	finder     SourceFinder
	store      HistoryStore
	lastID     atomic.Int64
}

func NewOrchestrator(extractor Extractor, classifier Classifier, finder SourceFinder, store HistoryStore) *Orchestrator {
	return &Orchestrator{
		extractor:  extractor,
		classifier: classifier,
		finder:     finder,
		store:      store,
	}
}

// Run executes the pipeline for one request. It fails only on extraction or
// classification errors, tagged with the failing stage. Verification and
// persistence failures degrade: the caller still receives a completed result.
func (o *Orchestrator) Run(ctx context.Context, req Request, actor Actor) (*Result, error) {
	started := time.Now()
	runID := uuid.New().String()

	logger.Info("Analysis started",
		zap.String("run_id", runID),
		zap.String("input_type", string(req.Type)),
	)

	content, err := o.extractor.Extract(ctx, req)
	if err != nil {
		metrics.StageFailures.WithLabelValues(string(StageExtracting)).Inc()
		metrics.AnalysisTotal.WithLabelValues(string(req.Type), "failed").Inc()
		logger.Error("Extraction failed", zap.String("run_id", runID), zap.Error(err))
		return nil, &StageError{Stage: StageExtracting, Err: err}
	}

	verdict, err := o.classifier.Classify(ctx, content)
	if err == nil {
		err = verdict.Validate()
	}
	if err != nil {
		metrics.StageFailures.WithLabelValues(string(StageClassifying)).Inc()
		metrics.AnalysisTotal.WithLabelValues(string(req.Type), "failed").Inc()
		logger.Error("Classification failed", zap.String("run_id", runID), zap.Error(err))
		return nil, &StageError{Stage: StageClassifying, Err: err}
	}

	// Never fatal: a verdict without sources is a valid, distinguishable
	// outcome, not a failure.
	sources := []SourceCitation{}
	if verdict.SearchQuery != "" {
		sources = append(sources, o.finder.FindSources(ctx, verdict.SearchQuery)...)
	}
	metrics.SourcesFound.Observe(float64(len(sources)))

	id := o.nextID()

	result := &Result{
		ID:            id,
		Verdict:       stripQuery(verdict),
		Sources:       sources,
		ExtractedText: extractedText(content, verdict),
	}

	o.persist(ctx, runID, req, content, actor, result)

	metrics.AnalysisDuration.WithLabelValues(string(req.Type)).Observe(time.Since(started).Seconds())
	metrics.AnalysisTotal.WithLabelValues(string(req.Type), "completed").Inc()

	logger.Info("Analysis completed",
		zap.String("run_id", runID),
		zap.Int64("analysis_id", id),
		zap.Bool("likely_fake", result.Verdict.IsLikelyFake),
		zap.Int("confidence", result.Verdict.Confidence),
		zap.Int("sources", len(sources)),
		zap.Duration("elapsed", time.Since(started)),
	)

	return result, nil
}

// nextID derives the analysis id from wall-clock millis, bumping past the
// previous id so two back-to-back runs never collide.
func (o *Orchestrator) nextID() int64 {
	for {
		last := o.lastID.Load()
		id := time.Now().UnixMilli()
		if id <= last {
			id = last + 1
		}
		if o.lastID.CompareAndSwap(last, id) {
			return id
		}
	}
}

// persist appends the result to the actor's history. Failures are logged and
// swallowed: losing a save is less harmful than losing a computed answer the
// caller is waiting on.
func (o *Orchestrator) persist(ctx context.Context, runID string, req Request, content ExtractedContent, actor Actor, result *Result) {
	if !actor.SaveHistory || !actor.Authenticated || actor.UserEmail == "" {
		return
	}
	if req.Type == InputText && req.TextOrigin == OriginLiveFeed {
		return
	}

	entry := HistoryEntry{
		ID:         result.ID,
		InputType:  historyInputType(req.Type),
		InputValue: historyInputValue(req, content),
		Result:     *result,
	}

	if err := o.store.AppendHistory(ctx, actor.UserEmail, entry); err != nil {
		metrics.PersistenceFailures.Inc()
		logger.Warn("History append failed, result returned without save",
			zap.String("run_id", runID),
			zap.Int64("analysis_id", result.ID),
			zap.Error(err),
		)
	}
}

// Article URLs are stored as text analyses: by the time the pipeline reaches
// persistence the page has already been reduced to text.
func historyInputType(t InputType) InputType {
	if t == InputImage {
		return InputImage
	}
	return InputText
}

// The stored value must be re-runnable under the stored type: an article URL
// entry keeps the extracted article text, not the URL string.
func historyInputValue(req Request, content ExtractedContent) string {
	if req.Type == InputURL {
		return content.Payload
	}
	return req.InputValue()
}

func stripQuery(verdict ClassificationResult) ClassificationResult {
	verdict.SearchQuery = ""
	return verdict
}

// For image inputs the readable text comes from the model's OCR pass; for
// text and article inputs it is the analyzed text itself.
func extractedText(content ExtractedContent, verdict ClassificationResult) string {
	if content.Kind == KindImage {
		return verdict.ExtractedText
	}
	return content.Payload
}
