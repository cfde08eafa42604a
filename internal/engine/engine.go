// SPDX-License-Identifier: Apache-2.0

// Package engine is the entry point of structure detection and session
// extraction: it detects the language, classifies the structure, runs the
// matching strategy and validates the result.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/academyplan/academyplan-mcp/internal/config"
	"github.com/academyplan/academyplan-mcp/internal/logger"
	"github.com/academyplan/academyplan-mcp/internal/schedule"
	"github.com/academyplan/academyplan-mcp/internal/schedule/fields"
	"github.com/academyplan/academyplan-mcp/internal/schedule/language"
	"github.com/academyplan/academyplan-mcp/internal/schedule/patterns"
	"github.com/academyplan/academyplan-mcp/internal/schedule/strategies"
	"github.com/academyplan/academyplan-mcp/internal/schedule/structure"
	"github.com/academyplan/academyplan-mcp/internal/schedule/validate"
)

// ErrEmptyDocument is returned when a document has no text to extract from.
var ErrEmptyDocument = errors.New("document text is empty")

// headerLines bounds the document header scanned for academy information
// when no structural marker ends it earlier.
const headerLines = 20

type Engine struct {
	lib        *patterns.Library
	detector   *language.Detector
	classifier *structure.Classifier
	extractor  *fields.Extractor
	validator  *validate.Validator
	strategies []schedule.Strategy
	log        *logger.Logger
	now        func() time.Time

	alternativeOnShortfall bool
}

// Option customizes an Engine.
type Option func(*Engine)

// WithLibrary replaces the embedded pattern library.
func WithLibrary(lib *patterns.Library) Option {
	return func(e *Engine) { e.lib = lib }
}

// WithStrategies replaces the registered strategies. The first strategy
// registered for a pattern handles it.
func WithStrategies(s ...schedule.Strategy) Option {
	return func(e *Engine) { e.strategies = s }
}

// WithClock sets the time source used for ExtractedAt and default base dates.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New creates an Engine from the engine section of the configuration.
func New(cfg config.EngineConfig, log *logger.Logger, opts ...Option) (*Engine, error) {
	if log == nil {
		log = logger.Nop()
	}
	e := &Engine{
		log:                    log,
		now:                    time.Now,
		validator:              validate.New(cfg.ReviewThreshold),
		alternativeOnShortfall: cfg.AlternativeOnShortfall,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.lib == nil {
		e.lib = patterns.Default()
	}
	if e.strategies == nil {
		e.strategies = strategies.All(e.lib)
	}

	detector, err := language.NewDetector(e.lib, cfg.LanguageCacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating language detector: %w", err)
	}
	e.detector = detector
	e.classifier = structure.NewClassifier(e.lib)
	e.extractor = fields.New(e.lib)
	return e, nil
}

// Detector exposes the language detector, e.g. to purge its cache.
func (e *Engine) Detector() *language.Detector {
	return e.detector
}

// RegisteredStrategies returns the names of all registered strategies.
func (e *Engine) RegisteredStrategies() []string {
	names := make([]string, len(e.strategies))
	for i, s := range e.strategies {
		names[i] = s.Name()
	}
	return names
}

// Analyze runs language detection and structure classification only.
func (e *Engine) Analyze(text string) (schedule.Detection, schedule.StructureAnalysis) {
	text = strings.ToValidUTF8(text, "�")
	det := e.detector.Detect(text)
	return det, e.classifier.Classify(text, det)
}

// Extract turns a document into a validated week tree. Only an empty
// document is an error; anything else produces at least the fallback plan.
func (e *Engine) Extract(ctx context.Context, doc schedule.Document) (*schedule.Result, error) {
	text, err := e.prepare(ctx, doc)
	if err != nil {
		return nil, err
	}
	start := e.now()
	log := e.log.With("document", doc.ID, "plan", doc.Plan.ID)
	log.Info("extraction started", "chars", utf8.RuneCountInString(text))

	det := e.detector.Detect(text)
	analysis := e.classifier.Classify(text, det)
	log.Info("structure classified",
		"language", det.Language,
		"pattern", analysis.Pattern,
		"weeks", len(analysis.Weeks),
		"days", len(analysis.Days),
		"sessions", len(analysis.Sessions),
	)

	strategy, err := e.selectStrategy(analysis.Pattern)
	if err != nil {
		return nil, err
	}
	result, err := e.run(ctx, doc, text, det, analysis, strategy)
	if err != nil {
		log.Error("extraction failed", "strategy", strategy.Name(), "error", err)
		return nil, err
	}

	if e.alternativeOnShortfall && result.Validation.WeekShortfall {
		log.Warn("week shortfall, trying alternative strategies",
			"weeks", result.TotalWeeks,
			"expected", analysis.ExpectedWeeks,
		)
		alt, err := e.alternative(ctx, doc, text, det, analysis)
		switch {
		case err != nil:
			log.Warn("alternative extraction failed", "error", err)
		case alt != nil && alt.Validation.OverallConfidence > result.Validation.OverallConfidence:
			log.Info("alternative extraction preferred", "strategy", alt.Strategy)
			result = alt
		}
	}

	log.Info("extraction finished",
		"strategy", result.Strategy,
		"weeks", result.TotalWeeks,
		"sessions", result.TotalSessions,
		"confidence", result.Validation.OverallConfidence,
		"elapsed", e.now().Sub(start),
	)
	return result, nil
}

// ExtractAlternative re-runs extraction with every strategy that has evidence
// in the document other than the classified one, and returns the
// best-scoring result. When no other strategy has evidence, the classified
// strategy's result is returned.
func (e *Engine) ExtractAlternative(ctx context.Context, doc schedule.Document) (*schedule.Result, error) {
	text, err := e.prepare(ctx, doc)
	if err != nil {
		return nil, err
	}
	det := e.detector.Detect(text)
	analysis := e.classifier.Classify(text, det)
	result, err := e.alternative(ctx, doc, text, det, analysis)
	if err != nil {
		return nil, err
	}
	if result != nil {
		return result, nil
	}

	e.log.Info("no alternative strategy has evidence, using classified strategy",
		"document", doc.ID,
		"pattern", analysis.Pattern,
	)
	strategy, err := e.selectStrategy(analysis.Pattern)
	if err != nil {
		return nil, err
	}
	return e.run(ctx, doc, text, det, analysis, strategy)
}

func (e *Engine) alternative(ctx context.Context, doc schedule.Document, text string, det schedule.Detection, analysis schedule.StructureAnalysis) (*schedule.Result, error) {
	var best *schedule.Result
	for _, p := range schedule.Patterns {
		if p == analysis.Pattern || !hasEvidence(p, analysis) {
			continue
		}
		strategy, err := e.selectStrategy(p)
		if err != nil || strategy.Pattern() != p {
			continue
		}
		alt := analysis
		alt.Pattern = p
		alt.Certainty = schedule.CertaintyFor(p)
		alt.Confidence = structure.CertaintyScore(alt.Certainty) / 25
		res, err := e.run(ctx, doc, text, det, alt, strategy)
		if err != nil {
			return nil, err
		}
		e.log.Debug("alternative scored", "strategy", strategy.Name(), "confidence", res.Validation.OverallConfidence)
		if best == nil || res.Validation.OverallConfidence > best.Validation.OverallConfidence {
			best = res
		}
	}
	return best, nil
}

// hasEvidence reports whether the analysis found the markers a pattern's
// strategy needs. The terminal fallback never counts as an alternative.
func hasEvidence(p schedule.OrganizationPattern, a schedule.StructureAnalysis) bool {
	switch p {
	case schedule.PatternWeeklyWithDays:
		return len(a.Weeks) > 0 && len(a.Days) > 0
	case schedule.PatternWeeklyOnly:
		return len(a.Weeks) > 0
	case schedule.PatternDailyOnly:
		return len(a.Days) > 0
	case schedule.PatternSessionBased:
		return len(a.Sessions) > 0
	default:
		return false
	}
}

func (e *Engine) prepare(ctx context.Context, doc schedule.Document) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	text := doc.Text
	if !utf8.ValidString(text) {
		e.log.Warn("repairing invalid UTF-8", "document", doc.ID)
		text = strings.ToValidUTF8(text, "�")
	}
	if strings.TrimSpace(text) == "" {
		e.log.Error("rejecting document", "document", doc.ID, "plan", doc.Plan.ID, "error", ErrEmptyDocument)
		return "", fmt.Errorf("document %q: %w", doc.ID, ErrEmptyDocument)
	}
	return text, nil
}

// selectStrategy returns the first registered strategy for p, falling back to
// the unstructured strategy.
func (e *Engine) selectStrategy(p schedule.OrganizationPattern) (schedule.Strategy, error) {
	var fallback schedule.Strategy
	for _, s := range e.strategies {
		if s.Pattern() == p {
			return s, nil
		}
		if fallback == nil && s.Pattern() == schedule.PatternUnstructured {
			fallback = s
		}
	}
	if fallback != nil {
		e.log.Warn("no strategy registered for pattern, using fallback", "pattern", p)
		return fallback, nil
	}
	return nil, fmt.Errorf("no strategy registered for pattern %q and no unstructured fallback", p)
}

func (e *Engine) run(ctx context.Context, doc schedule.Document, text string, det schedule.Detection, analysis schedule.StructureAnalysis, strategy schedule.Strategy) (*schedule.Result, error) {
	now := e.now()
	base := doc.BaseDate
	if base.IsZero() {
		base = now
	}
	academy := e.extractor.Academy(header(text, analysis), text, doc.Plan)
	src := doc
	src.Text = text

	weeks, err := strategy.Extract(ctx, schedule.Request{
		Document: src,
		Analysis: analysis,
		Academy:  academy,
		BaseDate: base,
	})
	if err != nil {
		return nil, fmt.Errorf("strategy %q failed: %w", strategy.Name(), err)
	}

	report := e.validator.Score(weeks, analysis)
	validate.Annotate(weeks, report)

	return &schedule.Result{
		AcademyInfo:         academy,
		Sessions:            weeks,
		StructureAnalysis:   analysis,
		Language:            det,
		TotalWeeks:          len(weeks),
		TotalSessions:       schedule.CountSessions(weeks),
		OrganizationPattern: strategy.Pattern(),
		Strategy:            strategy.Name(),
		ExtractedAt:         now.UTC().Format(time.RFC3339),
		SourceDocument:      doc.ID,
		SourcePlan:          doc.Plan.ID,
		Validation:          report,
	}, nil
}

// header returns the text above the first structural marker.
func header(text string, a schedule.StructureAnalysis) string {
	end := headerLines
	for _, w := range a.Weeks {
		end = min(end, w.Line)
	}
	for _, d := range a.Days {
		end = min(end, d.Line)
	}
	for _, s := range a.Sessions {
		end = min(end, s.Line)
	}
	lines := strings.Split(text, "\n")
	end = min(end, len(lines))
	return strings.Join(lines[:end], "\n")
}
