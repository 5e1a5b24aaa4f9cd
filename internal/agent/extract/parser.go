package extract

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/codexcapeusman-ui/Devia-Backend/internal/agent/model"
	logx "github.com/codexcapeusman-ui/Devia-Backend/pkg/logger"
)

// basic safety limits to avoid pathological model outputs
const (
	maxContentLen = 64 * 1024 // 64KB
	maxFieldLen   = 4 * 1024  // 4KB per string value
	maxItems      = 50        // maximum entries in an items/services array
)

// amountFields are coerced to float64; string values go through the tolerant
// amount parser so "€1.234,56" from the model still lands as a number.
var amountFields = map[string]bool{
	"total_amount":     true,
	"estimated_total":  true,
	"amount":           true,
	"subtotal":         true,
	"tax_rate":         true,
	"tax_amount":       true,
	"vat_rate":         true,
	"vat_amount":       true,
	"discount_percent": true,
	"discount_amount":  true,
	"duration":         true,
}

// ParseLLMFields turns a model completion into Fields for the given intent.
// The completion is expected to be a JSON object, possibly wrapped in
// markdown fences or surrounded by prose. Unknown keys are dropped, values
// are validated per field, and a single bad value never fails the call.
func ParseLLMFields(content string, intent model.Intent) (model.Fields, error) {
	if len(content) > maxContentLen {
		logx.Warn().
			Str("component", "llm_field_parser").
			Int("max_len", maxContentLen).
			Int("orig_len", len(content)).
			Msg("content truncated due to size limit")
		content = content[:maxContentLen]
	}

	raw, err := extractJSONObject(content)
	if err != nil {
		return nil, err
	}

	var m map[string]any
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil, fmt.Errorf("unmarshal extraction response: %w", err)
	}

	spec := model.SpecFor(intent)
	allowed := make(map[string]bool, len(spec.Required)+len(spec.Optional))
	for _, f := range spec.Required {
		allowed[f] = true
	}
	for _, f := range spec.Optional {
		allowed[f] = true
	}

	fields := model.Fields{}
	for k, v := range m {
		if !allowed[k] {
			continue
		}
		cv, ok := sanitizeValue(k, v)
		if !ok {
			logx.Debug().
				Str("component", "llm_field_parser").
				Str("field", k).
				Msg("dropping invalid field value")
			continue
		}
		fields[k] = cv
	}
	return fields, nil
}

// extractJSONObject strips markdown fences and surrounding prose and returns
// the outermost {...} object.
func extractJSONObject(content string) (string, error) {
	s := strings.TrimSpace(content)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return "", fmt.Errorf("no json object in extraction response")
	}
	return s[start : end+1], nil
}

func sanitizeValue(field string, v any) (any, bool) {
	switch t := v.(type) {
	case nil:
		return nil, false
	case string:
		if len(t) > maxFieldLen || !utf8.ValidString(t) {
			return nil, false
		}
		t = strings.TrimSpace(t)
		if amountFields[field] {
			f, err := parseAmount(t)
			if err != nil {
				return nil, false
			}
			return f, true
		}
		return t, true
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) || t < 0 {
			return nil, false
		}
		return t, true
	case []any:
		if len(t) > maxItems {
			t = t[:maxItems]
		}
		out := make([]any, 0, len(t))
		for _, el := range t {
			em, ok := el.(map[string]any)
			if !ok {
				continue
			}
			out = append(out, em)
		}
		if len(out) == 0 {
			return nil, false
		}
		return out, true
	case map[string]any:
		if len(t) == 0 {
			return nil, false
		}
		return t, true
	case bool:
		return t, true
	}
	return nil, false
}
