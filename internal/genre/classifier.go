// Package genre classifies books into a closed genre taxonomy by fusing a
// keyword rule stage with an optional pre-trained model stage.
package genre

import (
	"log/slog"
	"sort"

	"github.com/bookdex/bookdex-server/internal/config"
	"github.com/bookdex/bookdex-server/internal/domain"
)

// Result is one classification outcome.
type Result struct {
	Primary   domain.GenreScore
	Secondary []domain.GenreScore
	All       []domain.GenreScore // full distribution, descending, sums to 1
	Source    domain.ClassifierSource
	Degraded  bool // model artifact unavailable, rules only
}

// Classifier fuses rule and model stages. It is immutable after
// construction and safe for concurrent use.
type Classifier struct {
	cfg      config.GenreConfig
	model    *Model
	degraded bool
	rules    map[string]*ruleSet
	log      *slog.Logger
}

// NewClassifier builds a classifier from configuration. A configured but
// unloadable model artifact degrades to rules-only instead of failing;
// the degradation is logged once here and flagged on every result.
func NewClassifier(cfg config.GenreConfig, log *slog.Logger) *Classifier {
	c := &Classifier{
		cfg: cfg,
		rules: map[string]*ruleSet{
			"en": newRuleSet("en"),
			"fr": newRuleSet("fr"),
		},
		log: log,
	}

	if cfg.ModelPath == "" {
		c.degraded = true
		return c
	}

	model, err := LoadModel(cfg.ModelPath)
	if err != nil {
		c.degraded = true
		log.Warn("genre model unavailable, classifying with rules only",
			slog.String("path", cfg.ModelPath),
			slog.String("error", err.Error()))
		return c
	}
	c.model = model
	return c
}

// Degraded reports whether the model stage is unavailable.
func (c *Classifier) Degraded() bool {
	return c.degraded
}

// Classify produces the fused genre distribution for one book. language
// selects the rule lexicon ("en" or "fr").
func (c *Classifier) Classify(title, text string, subjects []string, language string) Result {
	rules, ok := c.rules[language]
	if !ok {
		rules = c.rules["en"]
	}
	ruleScores := rules.scores(title, text, subjects)

	var modelScores map[string]float64
	if c.model != nil {
		modelScores = c.model.Predict(text)
	}

	fused := make(map[string]float64, len(Genres))
	var total float64
	for _, g := range Genres {
		s := c.cfg.RuleWeight * ruleScores[g]
		if modelScores != nil {
			s += c.cfg.ModelWeight * modelScores[g]
		}
		if s > 0 {
			fused[g] = s
			total += s
		}
	}

	res := Result{
		Source:   domain.SourceFused,
		Degraded: c.degraded,
	}
	if c.model == nil {
		res.Source = domain.SourceRule
	}

	if total == 0 {
		res.Primary = domain.GenreScore{Genre: Unknown, Confidence: 0}
		return res
	}

	res.All = make([]domain.GenreScore, 0, len(fused))
	for g, s := range fused {
		res.All = append(res.All, domain.GenreScore{Genre: g, Confidence: s / total})
	}
	sort.Slice(res.All, func(i, j int) bool {
		if res.All[i].Confidence != res.All[j].Confidence {
			return res.All[i].Confidence > res.All[j].Confidence
		}
		return res.All[i].Genre < res.All[j].Genre
	})

	res.Primary = res.All[0]
	for _, gs := range res.All[1:] {
		if len(res.Secondary) == c.cfg.MaxSecondary {
			break
		}
		if gs.Confidence < c.cfg.ConfidenceThreshold {
			break
		}
		res.Secondary = append(res.Secondary, gs)
	}

	return res
}
