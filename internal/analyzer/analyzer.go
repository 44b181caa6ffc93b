// Package analyzer turns protocol payloads into TVL statistics, overall and per chain.
package analyzer

import (
	"fmt"
	"io"
	"sort"

	"github.com/sirupsen/logrus"
	"github.com/yourorg/defi-tvl-analyzer/internal/aggregate"
	"github.com/yourorg/defi-tvl-analyzer/internal/model"
	"github.com/yourorg/defi-tvl-analyzer/internal/validation"
)

// Analyzer computes TVL statistics. It holds no mutable state and is safe
// for concurrent use.
type Analyzer struct {
	log logrus.FieldLogger
}

// Option configures an Analyzer
type Option func(*Analyzer)

// WithLogger sets the logger used for data hygiene reports
func WithLogger(log logrus.FieldLogger) Option {
	return func(a *Analyzer) {
		if log != nil {
			a.log = log
		}
	}
}

// New creates an Analyzer. Without WithLogger nothing is logged.
func New(opts ...Option) *Analyzer {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	a := &Analyzer{log: discard}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// AnalyzeProtocol summarizes the overall TVL series of rec and every chain series.
// Any series without valid points fails the whole analysis.
func (a *Analyzer) AnalyzeProtocol(rec model.ProtocolRecord) (model.ProtocolAnalysis, error) {
	overall, err := a.summarize(aggregate.ProtocolSubject(rec.Name), rec.TVL)
	if err != nil {
		return model.ProtocolAnalysis{}, err
	}

	result := model.AnalysisResult{Overall: overall}

	if len(rec.ChainTVLs) > 0 {
		chains := make([]string, 0, len(rec.ChainTVLs))
		for chain := range rec.ChainTVLs {
			chains = append(chains, chain)
		}
		sort.Strings(chains)

		result.PerChain = make(map[string]model.StatSummary, len(chains))
		for _, chain := range chains {
			summary, err := a.summarize(aggregate.ChainSubject(chain), rec.ChainTVLs[chain])
			if err != nil {
				return model.ProtocolAnalysis{}, fmt.Errorf("protocol %q: %w", rec.Name, err)
			}
			result.PerChain[chain] = summary
		}
	}

	a.log.WithFields(logrus.Fields{
		"protocol":    rec.Name,
		"chains":      len(result.PerChain),
		"current_tvl": overall.CurrentTVL,
	}).Debug("Protocol TVL analyzed")

	return model.ProtocolAnalysis{
		Info:        BuildInfo(rec),
		TVLAnalysis: result,
	}, nil
}

// AnalyzeChainSeries summarizes a single, already isolated chain series.
func (a *Analyzer) AnalyzeChainSeries(raw []model.RawPoint) (model.StatSummary, error) {
	return a.summarize(aggregate.ChainSubject(""), raw)
}

// AnalyzeChainTVL wraps AnalyzeChainSeries in an AnalysisResult without a per-chain breakdown.
func (a *Analyzer) AnalyzeChainTVL(raw []model.RawPoint) (model.AnalysisResult, error) {
	summary, err := a.AnalyzeChainSeries(raw)
	if err != nil {
		return model.AnalysisResult{}, err
	}
	return model.AnalysisResult{Overall: summary}, nil
}

// summarize cleans raw and computes its statistics
func (a *Analyzer) summarize(subject aggregate.Subject, raw []model.RawPoint) (model.StatSummary, error) {
	report := validation.Inspect(raw)
	if report.Dropped > 0 {
		a.log.WithFields(logrus.Fields{
			"scope":   subject.Scope,
			"name":    subject.Name,
			"dropped": report.Dropped,
			"kept":    len(report.Series),
		}).Debug("Dropped malformed TVL points")
	}

	return aggregate.Summarize(subject, report.Series)
}
