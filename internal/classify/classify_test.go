package classify

import (
	"testing"

	"cashburn/internal/model"
)

func ctxn(payee, category string) model.Transaction {
	return model.Transaction{
		Payee:    payee,
		Category: category,
		Kind:     model.KindStandard,
	}
}

func trainedClassifier() *Classifier {
	return Train([]model.Transaction{
		ctxn("Whole Foods Market", "Groceries"),
		ctxn("Whole Foods Market", "Groceries"),
		ctxn("Trader Joes", "Groceries"),
		ctxn("Shell Gas Station", "Fuel"),
		ctxn("Shell Gas Station", "Fuel"),
		ctxn("Chevron Fuel Stop", "Fuel"),
	}, nil)
}

func TestSuggestConfident(t *testing.T) {
	c := trainedClassifier()

	if got := c.Suggest("WHOLE FOODS"); got != "Groceries" {
		t.Errorf("Suggest(WHOLE FOODS) = %q, want Groceries", got)
	}
	if got := c.Suggest("Shell Station"); got != "Fuel" {
		t.Errorf("Suggest(Shell Station) = %q, want Fuel", got)
	}
}

func TestSuggestUnknownPayee(t *testing.T) {
	c := trainedClassifier()

	// Every word unseen scores both classes identically; no margin, no guess.
	if got := c.Suggest("Mystery Place"); got != "" {
		t.Errorf("Suggest(Mystery Place) = %q, want no suggestion", got)
	}
	if got := c.Suggest(""); got != "" {
		t.Errorf("Suggest of empty payee = %q, want no suggestion", got)
	}
}

func TestSuggestAmbiguous(t *testing.T) {
	c := Train([]model.Transaction{
		ctxn("Corner Market", "Groceries"),
		ctxn("Corner Station", "Fuel"),
	}, nil)

	if got := c.Suggest("Corner"); got != "" {
		t.Errorf("Suggest(Corner) = %q, want no suggestion on a tie", got)
	}
}

func TestTrainTooFewCategories(t *testing.T) {
	c := Train([]model.Transaction{
		ctxn("Whole Foods Market", "Groceries"),
		ctxn("Trader Joes", "Groceries"),
	}, nil)

	if got := c.Suggest("Whole Foods"); got != "" {
		t.Errorf("Suggest with one category = %q, want no suggestion", got)
	}
}

func TestTrainIgnoresNonStandard(t *testing.T) {
	txns := []model.Transaction{
		ctxn("Whole Foods Market", "Groceries"),
		{Payee: "Transfer to Savings", Category: "Fuel", Kind: model.KindTransfer},
	}

	c := Train(txns, nil)
	if c.model != nil {
		t.Error("transfer rows counted toward training classes")
	}
}

func TestRuleOverridesModel(t *testing.T) {
	rules := map[string]string{"shell gas station": "Travel"}
	c := Train([]model.Transaction{
		ctxn("Whole Foods Market", "Groceries"),
		ctxn("Shell Gas Station", "Fuel"),
	}, rules)

	if got := c.Suggest("Shell  Gas Station "); got != "Travel" {
		t.Errorf("Suggest = %q, want rule category Travel", got)
	}
}

func TestApply(t *testing.T) {
	c := trainedClassifier()

	txns := []model.Transaction{
		ctxn("Whole Foods", ""),
		ctxn("Mystery Place", ""),
		ctxn("Shell Gas", "Fuel"),
		{Payee: "Whole Foods Transfer", Kind: model.KindTransfer},
	}

	filled := c.Apply(txns)
	if filled != 1 {
		t.Fatalf("filled = %d, want 1", filled)
	}
	if txns[0].Category != "Groceries" {
		t.Errorf("txns[0].Category = %q, want Groceries", txns[0].Category)
	}
	if txns[1].Category != "" {
		t.Errorf("txns[1].Category = %q, want still empty", txns[1].Category)
	}
	if txns[3].Category != "" {
		t.Errorf("transfer row got categorized to %q", txns[3].Category)
	}
}
