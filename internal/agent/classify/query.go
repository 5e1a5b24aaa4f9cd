package classify

import (
	"regexp"
	"strings"
)

// idPhrases mark a prompt as targeting a single entity rather than a
// collection.
var idPhrases = []string{
	"by id", "with id", "id:",
	"invoice id", "client id", "customer id", "quote id", "job id", "expense id", "meeting id",
}

var (
	// 24-hex ObjectId and canonical UUID forms count as ids on their own.
	objectIDPattern = regexp.MustCompile(`(?i)\b[a-f0-9]{24}\b`)
	uuidPattern     = regexp.MustCompile(`(?i)\b[a-f0-9]{8}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{12}\b`)
	// "id: INV-123", "id INV-123", "#INV-123". The token is taken verbatim;
	// downstream stores use varying id schemes, so no format validation here.
	labelledIDPattern = regexp.MustCompile(`(?i)\bid[:\s]+([A-Za-z0-9][A-Za-z0-9_-]*)`)
	hashIDPattern     = regexp.MustCompile(`#([A-Za-z0-9][A-Za-z0-9_-]*)`)
)

// IsSpecificQuery reports whether the prompt asks for a single entity by id
// instead of a collection.
func IsSpecificQuery(text string) bool {
	lower := strings.ToLower(text)
	for _, p := range idPhrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return objectIDPattern.MatchString(text) || uuidPattern.MatchString(text)
}

// ExtractID pulls the id token out of a specific-entity prompt. It returns ""
// when no id-looking token is present, in which case the orchestrator asks
// for one.
func ExtractID(text string) string {
	if m := objectIDPattern.FindString(text); m != "" {
		return m
	}
	if m := uuidPattern.FindString(text); m != "" {
		return m
	}
	if m := labelledIDPattern.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	if m := hashIDPattern.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return ""
}
