// Package classify suggests categories for uncategorized transactions.
package classify

import (
	"math"
	"sort"
	"strings"

	"github.com/jbrukh/bayesian"
	"github.com/sirupsen/logrus"

	"cashburn/internal/model"
)

var log = logrus.WithField("component", "classify")

// scoreMargin is the top-two log-score gap a bayesian guess must clear.
// Below it the suggestion is withheld rather than risked wrong.
const scoreMargin = 10.0

// Classifier suggests categories for payees. Exact payee rules answer
// first; the trained model only fills in behind them.
type Classifier struct {
	rules map[string]string // case-folded normalized payee -> category
	model *bayesian.Classifier
}

// Train builds a classifier from the ledger's already-categorized standard
// transactions plus the stored payee rules. With fewer than two observed
// categories the model stays nil and only rules answer.
func Train(txns []model.Transaction, rules map[string]string) *Classifier {
	c := &Classifier{rules: rules}

	byCategory := make(map[string][][]string)
	for _, t := range txns {
		if t.Kind != model.KindStandard || t.Category == "" || t.Payee == "" {
			continue
		}
		byCategory[t.Category] = append(byCategory[t.Category], features(t.Payee))
	}
	if len(byCategory) < 2 {
		log.WithField("categories", len(byCategory)).Debug("too few categories to train on")
		return c
	}

	classes := make([]bayesian.Class, 0, len(byCategory))
	for name := range byCategory {
		classes = append(classes, bayesian.Class(name))
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i] < classes[j] })

	m := bayesian.NewClassifier(classes...)
	for name, docs := range byCategory {
		for _, words := range docs {
			m.Learn(words, bayesian.Class(name))
		}
	}
	c.model = m
	return c
}

// Suggest returns a category for the payee, or "" when nothing confident
// is known.
func (c *Classifier) Suggest(payee string) string {
	key := strings.ToLower(model.NormalizePayee(payee))
	if cat, ok := c.rules[key]; ok {
		return cat
	}
	if c.model == nil {
		return ""
	}

	words := features(payee)
	if len(words) == 0 {
		return ""
	}

	scores, best, _ := c.model.LogScores(words)
	top, second := math.Inf(-1), math.Inf(-1)
	for _, s := range scores {
		if s > top {
			second = top
			top = s
		} else if s > second {
			second = s
		}
	}
	if top-second <= scoreMargin {
		return ""
	}
	return string(c.model.Classes[best])
}

// Apply fills Category on uncategorized standard transactions in place and
// reports how many were filled.
func (c *Classifier) Apply(txns []model.Transaction) int {
	filled := 0
	for i := range txns {
		if txns[i].Kind != model.KindStandard || txns[i].Category != "" {
			continue
		}
		if cat := c.Suggest(txns[i].Payee); cat != "" {
			txns[i].Category = cat
			filled++
		}
	}
	return filled
}

func features(payee string) []string {
	return strings.Fields(strings.ToLower(payee))
}
