package classify

import (
	"strings"

	"github.com/codexcapeusman-ui/Devia-Backend/internal/agent/model"
)

// Result is the outcome of classifying one prompt.
type Result struct {
	Intent     model.Intent
	Operation  model.Operation
	Confidence float64
}

// intentKeywords maps each intent to its vocabulary. Matching is on whole
// words of the normalised prompt, so "charger" does not hit "charge".
var intentKeywords = map[model.Intent][]string{
	model.IntentInvoice:  {"invoice", "invoices", "bill", "billing", "charge"},
	model.IntentQuote:    {"quote", "quotes", "quotation", "estimate", "devis"},
	model.IntentCustomer: {"customer", "customers", "client", "clients", "contact"},
	model.IntentJob:      {"job", "jobs", "appointment", "meeting", "visit"},
	model.IntentExpense:  {"expense", "expenses", "cost", "spending", "receipt"},
}

// operationVerbs maps CRUD operations to their trigger verbs. Scanned in
// declaration order; the first operation with a hit wins.
var operationVerbs = []struct {
	op    model.Operation
	words []string
}{
	{model.OperationGet, []string{"show", "list", "get", "display", "view", "see", "retrieve", "find"}},
	{model.OperationCreate, []string{"create", "add", "new", "schedule", "book", "record", "make", "generate"}},
	{model.OperationUpdate, []string{"update", "change", "modify", "edit"}},
	{model.OperationDelete, []string{"delete", "remove", "cancel"}},
}

// resetPhrases end the current conversation when present. Bare "cancel" and
// "stop" are deliberately excluded: "cancel" is the delete verb.
var resetPhrases = []string{"never mind", "start over", "forget it", "reset"}

const (
	baseConfidence = 0.55
	perHitWeight   = 0.15
	verbWeight     = 0.15
	maxCountedHits = 3
)

// Classify scores the prompt against every intent vocabulary and returns the
// winning intent, the detected CRUD operation and a confidence in [0,1].
// The result is a pure function of the text: identical input always yields
// identical output. Zero keyword hits across all intents yields
// (Unknown, Unknown, 0.0).
func Classify(text string) Result {
	norm := normalise(text)

	best := model.IntentUnknown
	bestHits := 0
	for _, intent := range model.Intents {
		hits := 0
		for _, kw := range intentKeywords[intent] {
			if containsPhrase(norm, kw) {
				hits++
			}
		}
		if hits > bestHits {
			bestHits = hits
			best = intent
		}
	}

	op := detectOperation(norm)

	if bestHits == 0 {
		return Result{Intent: model.IntentUnknown, Operation: model.OperationUnknown, Confidence: 0}
	}

	counted := bestHits
	if counted > maxCountedHits {
		counted = maxCountedHits
	}
	conf := baseConfidence + perHitWeight*float64(counted)
	if op != model.OperationUnknown {
		conf += verbWeight
	}
	if conf > 1 {
		conf = 1
	}

	return Result{Intent: best, Operation: op, Confidence: conf}
}

// IsResetCommand reports whether the prompt asks to abandon the conversation.
func IsResetCommand(text string) bool {
	norm := normalise(text)
	for _, p := range resetPhrases {
		if containsPhrase(norm, p) {
			return true
		}
	}
	return false
}

func detectOperation(norm string) model.Operation {
	for _, group := range operationVerbs {
		for _, w := range group.words {
			if containsPhrase(norm, w) {
				return group.op
			}
		}
	}
	return model.OperationUnknown
}

// normalise lowercases the text and replaces punctuation with spaces so
// keyword lookups can match on whole words.
func normalise(text string) string {
	var b strings.Builder
	b.Grow(len(text) + 2)
	b.WriteByte(' ')
	for _, r := range strings.ToLower(text) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}
	b.WriteByte(' ')
	return b.String()
}

func containsPhrase(norm, phrase string) bool {
	return strings.Contains(norm, " "+phrase+" ")
}
