package extract

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/codexcapeusman-ui/Devia-Backend/internal/agent/model"
)

// Extraction is the best-effort result of one extraction pass. Fields that
// could not be found are simply absent; Invalid names fields whose value was
// present but malformed (for example an unparseable amount) so the caller can
// ask for a correction without failing the turn.
type Extraction struct {
	Fields  model.Fields
	Invalid []string
}

// TextExtractor pulls structured fields out of free text for a target intent.
// Implementations must never fail the turn on partial matches.
type TextExtractor interface {
	Extract(ctx context.Context, text string, intent model.Intent) (Extraction, error)
}

// HeuristicExtractor is the pure pattern-rule implementation. It has no
// external dependencies and is always available.
type HeuristicExtractor struct {
	// now is swappable so tests of relative dates stay deterministic.
	now func() time.Time
}

func NewHeuristicExtractor() *HeuristicExtractor {
	return &HeuristicExtractor{now: func() time.Time { return time.Now().UTC() }}
}

var _ TextExtractor = (*HeuristicExtractor)(nil)

var (
	emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)

	// "€60", "$1,200.50", "500 eur"
	moneySymbolPattern = regexp.MustCompile(`[€$£]\s*([0-9][0-9.,]*)`)
	moneySuffixPattern = regexp.MustCompile(`(?i)([0-9][0-9.,]*)\s*(?:€|£|\$|(?:eur|euros?|usd|dollars?|gbp|pounds?)\b)`)

	// "40 hours at €60/hour", "3 hrs @ $120 per hour"
	hoursAtRatePattern = regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?)\s*(?:hours?|hrs?)\s*(?:at|@)\s*[€$£]?\s*(\d+(?:[.,]\d+)?)`)
	// description preceding the hours clause, e.g. "for website development 40 hours at"
	workDescPattern = regexp.MustCompile(`(?i)(?:for|of)\s+([a-z][a-z\s-]*?)\s*,?\s*\d+(?:[.,]\d+)?\s*(?:hours?|hrs?)\s*(?:at|@)`)

	durationPattern = regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?)\s*(?:hours?|hrs?)\b`)
	timeOfDay       = regexp.MustCompile(`\b([01]?\d|2[0-3]):([0-5]\d)\b`)
	vatRatePattern  = regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?)\s*%\s*(?:vat|tax)|(?:vat|tax)(?:\s+rate)?\s*(?:of|at|is)?\s*(\d+(?:[.,]\d+)?)\s*%`)

	isoDatePattern   = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)
	slashDatePattern = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(\d{4})\b`)

	phonePattern = regexp.MustCompile(`(?:\+?\d{1,3}[\s.-]?)?(?:\(\d{1,4}\)[\s.-]?)?\d{2,4}(?:[\s.-]?\d{2,4}){2,4}`)

	// "for John Doe", "to ABC Company" — capitalised runs only, so lowercase
	// phrases like "for website development" do not register as names.
	personNamePattern = regexp.MustCompile(`\b(?:for|to|named|called)\s+((?:[A-Z][A-Za-z'&.-]*)(?:\s+[A-Z][A-Za-z'&.-]*){0,4})`)
	companyPattern    = regexp.MustCompile(`\bat\s+((?:[A-Z][A-Za-z'&.-]*)(?:\s+[A-Z][A-Za-z'&.-]*){0,4})`)

	addressPattern = regexp.MustCompile(`(?i)\baddress(?:\s+is)?[:\s]+([^.;\n]+)`)
	streetPattern  = regexp.MustCompile(`\b\d{1,5}\s+[A-Z][A-Za-z]*(?:\s+[A-Z][A-Za-z]*)*\s+(?:Street|St|Avenue|Ave|Road|Rd|Boulevard|Blvd|Lane|Ln|Drive|Dr)\b[^.;\n]*`)

	jobTitlePattern = regexp.MustCompile(`(?i)\b(?:schedule|book)\s+(?:a|an)?\s*([a-z][a-z\s-]{2,}?)\s+(?:for|on|at|with|next|tomorrow|today)\b`)

	expenseDescPattern = regexp.MustCompile(`(?i)\b(?:expense|spent|paid|bought)\s+(?:on\s+|for\s+)?([a-z][^,.;€$£\n]{2,60})`)
	vendorPattern      = regexp.MustCompile(`\b(?:from|at)\s+((?:[A-Z][A-Za-z'&.-]*)(?:\s+[A-Z][A-Za-z'&.-]*){0,3})`)
)

var expenseCategories = []struct {
	name  string
	words []string
}{
	{"travel", []string{"travel", "flight", "hotel", "taxi", "train", "uber"}},
	{"meals", []string{"meal", "meals", "lunch", "dinner", "restaurant", "coffee"}},
	{"fuel", []string{"fuel", "gas", "petrol", "diesel"}},
	{"office", []string{"office", "supplies", "stationery", "paper"}},
	{"software", []string{"software", "subscription", "license", "saas"}},
	{"materials", []string{"material", "materials", "equipment", "hardware", "tools"}},
}

// Extract applies the per-intent pattern rules. It never returns an error;
// the error in the signature exists for the TextExtractor contract.
func (e *HeuristicExtractor) Extract(_ context.Context, text string, intent model.Intent) (Extraction, error) {
	out := Extraction{Fields: model.Fields{}}

	switch intent {
	case model.IntentInvoice:
		e.extractBilling(text, &out, "customer_name", "customer_email", "items", "total_amount", "due_date")
	case model.IntentQuote:
		e.extractBilling(text, &out, "customer_name", "customer_email", "services", "estimated_total", "valid_until")
	case model.IntentCustomer:
		e.extractCustomer(text, &out)
	case model.IntentJob:
		e.extractJob(text, &out)
	case model.IntentExpense:
		e.extractExpense(text, &out)
	}

	return out, nil
}

// extractBilling covers invoices and quotes, which share their shape and
// differ only in field names.
func (e *HeuristicExtractor) extractBilling(text string, out *Extraction, nameField, emailField, itemsField, totalField, dateField string) {
	if email := emailPattern.FindString(text); email != "" {
		out.Fields[emailField] = email
	}
	if name := firstCustomerName(text); name != "" {
		out.Fields[nameField] = name
	}

	// Line items: "N hours at €X" beats the plain "<desc> €X" fallback.
	if m := hoursAtRatePattern.FindStringSubmatch(text); m != nil {
		qty, qerr := parseAmount(m[1])
		rate, rerr := parseAmount(m[2])
		if qerr == nil && rerr == nil {
			desc := "services"
			if dm := workDescPattern.FindStringSubmatch(text); dm != nil {
				desc = strings.TrimSpace(dm[1])
			}
			out.Fields[itemsField] = []any{lineItem(desc, qty, rate)}
			out.Fields[totalField] = qty * rate
		} else {
			out.Invalid = append(out.Invalid, itemsField)
		}
	} else if loc := moneySymbolPattern.FindStringSubmatchIndex(text); loc != nil {
		raw := text[loc[2]:loc[3]]
		amount, err := parseAmount(raw)
		if err != nil {
			out.Invalid = append(out.Invalid, totalField)
		} else {
			desc := descriptionBefore(text, loc[0])
			if desc == "" {
				desc = "services"
			}
			out.Fields[itemsField] = []any{lineItem(desc, 1, amount)}
			out.Fields[totalField] = amount
		}
	}

	if _, ok := out.Fields[totalField]; !ok {
		if amount, found, bad := singleAmount(text); bad {
			out.Invalid = append(out.Invalid, totalField)
		} else if found {
			out.Fields[totalField] = amount
		}
	}

	if rate, ok := vatRate(text); ok {
		out.Fields["tax_rate"] = rate
	}
	if d := firstDate(text, e.now()); d != "" {
		out.Fields[dateField] = d
	}
}

func (e *HeuristicExtractor) extractCustomer(text string, out *Extraction) {
	if email := emailPattern.FindString(text); email != "" {
		out.Fields["email"] = email
	}
	if name := firstCustomerName(text); name != "" {
		out.Fields["name"] = name
	}
	if company := companyName(text); company != "" {
		out.Fields["company"] = company
	}
	if addr := address(text); addr != "" {
		out.Fields["address"] = addr
	}
	if phone := phoneNumber(text); phone != "" {
		out.Fields["phone"] = phone
	}
}

func (e *HeuristicExtractor) extractJob(text string, out *Extraction) {
	if m := jobTitlePattern.FindStringSubmatch(text); m != nil {
		out.Fields["title"] = strings.TrimSpace(m[1])
	}
	if name := firstCustomerName(text); name != "" {
		out.Fields["customer_name"] = name
	}
	if email := emailPattern.FindString(text); email != "" {
		out.Fields["customer_email"] = email
	}
	if d := firstDate(text, e.now()); d != "" {
		out.Fields["scheduled_date"] = d
	}
	if m := timeOfDay.FindString(text); m != "" {
		out.Fields["scheduled_time"] = m
	}
	if m := durationPattern.FindStringSubmatch(text); m != nil {
		if v, err := parseAmount(m[1]); err == nil {
			out.Fields["duration"] = v
		} else {
			out.Invalid = append(out.Invalid, "duration")
		}
	}
}

func (e *HeuristicExtractor) extractExpense(text string, out *Extraction) {
	if amount, found, bad := singleAmount(text); bad {
		out.Invalid = append(out.Invalid, "amount")
	} else if found {
		out.Fields["amount"] = amount
	}
	if d := firstDate(text, e.now()); d != "" {
		out.Fields["date"] = d
	}
	if m := expenseDescPattern.FindStringSubmatch(text); m != nil {
		out.Fields["description"] = strings.TrimSpace(m[1])
	} else if loc := moneySymbolPattern.FindStringIndex(text); loc != nil {
		if desc := descriptionBefore(text, loc[0]); desc != "" {
			out.Fields["description"] = desc
		}
	}
	if cat := expenseCategory(text); cat != "" {
		out.Fields["category"] = cat
	}
	if m := vendorPattern.FindStringSubmatch(text); m != nil {
		out.Fields["vendor"] = strings.TrimSpace(m[1])
	}
	if rate, ok := vatRate(text); ok {
		out.Fields["vat_rate"] = rate
	}
}

// ---- shared helpers ----

func lineItem(description string, quantity, unitPrice float64) map[string]any {
	return map[string]any{
		"description": description,
		"quantity":    quantity,
		"unit_price":  unitPrice,
		"total":       quantity * unitPrice,
	}
}

// descriptionBefore takes the text preceding an amount and keeps only the
// phrase after the last delimiter, e.g. "Email is a@b.com, website
// maintenance €500" yields "website maintenance".
func descriptionBefore(text string, amountStart int) string {
	seg := text[:amountStart]
	for _, d := range []string{",", ".", ";", ":", " for ", " of ", " is "} {
		if p := strings.LastIndex(seg, d); p >= 0 {
			seg = seg[p+len(d):]
		}
	}
	seg = strings.TrimSpace(seg)
	if seg == "" || !strings.ContainsFunc(seg, isLetter) {
		return ""
	}
	return seg
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func firstCustomerName(text string) string {
	if m := personNamePattern.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

func companyName(text string) string {
	if m := companyPattern.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

func address(text string) string {
	if m := addressPattern.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := streetPattern.FindString(text); m != "" {
		return strings.TrimSpace(m)
	}
	return ""
}

// phoneNumber scans with date substrings blanked out first, since ISO dates
// also look like digit groups.
func phoneNumber(text string) string {
	scrubbed := isoDatePattern.ReplaceAllString(text, "")
	scrubbed = slashDatePattern.ReplaceAllString(scrubbed, "")
	for _, cand := range phonePattern.FindAllString(scrubbed, -1) {
		digits := 0
		for _, r := range cand {
			if r >= '0' && r <= '9' {
				digits++
			}
		}
		if digits >= 9 {
			return strings.TrimSpace(cand)
		}
	}
	return ""
}

// singleAmount returns the first monetary amount in the text. found is false
// when no amount is present; bad is true when an amount-looking token failed
// to parse.
func singleAmount(text string) (amount float64, found, bad bool) {
	var raw string
	if m := moneySymbolPattern.FindStringSubmatch(text); m != nil {
		raw = m[1]
	} else if m := moneySuffixPattern.FindStringSubmatch(text); m != nil {
		raw = m[1]
	}
	if raw == "" {
		return 0, false, false
	}
	v, err := parseAmount(raw)
	if err != nil {
		return 0, false, true
	}
	return v, true, false
}

func vatRate(text string) (float64, bool) {
	m := vatRatePattern.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	raw := m[1]
	if raw == "" {
		raw = m[2]
	}
	v, err := parseAmount(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func expenseCategory(text string) string {
	lower := strings.ToLower(text)
	for _, cat := range expenseCategories {
		for _, w := range cat.words {
			if strings.Contains(lower, w) {
				return cat.name
			}
		}
	}
	return ""
}

// firstDate returns the first date mention as an ISO date string. Slash dates
// are read day-first (the original system is European).
func firstDate(text string, now time.Time) string {
	if m := isoDatePattern.FindString(text); m != "" {
		return m
	}
	if m := slashDatePattern.FindStringSubmatch(text); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		if month >= 1 && month <= 12 && day >= 1 && day <= 31 {
			return fmt.Sprintf("%04d-%02d-%02d", year, month, day)
		}
	}
	lower := strings.ToLower(text)
	if strings.Contains(lower, "tomorrow") {
		return now.AddDate(0, 0, 1).Format("2006-01-02")
	}
	if strings.Contains(lower, "today") {
		return now.Format("2006-01-02")
	}
	return ""
}

// parseAmount parses a numeric string tolerant of currency symbols and both
// European and US thousands/decimal separators.
func parseAmount(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	s = strings.Trim(s, "€$£")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}

	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")
	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			// 1.234,56 — dots group thousands, the comma is the decimal mark
			s = strings.ReplaceAll(s, ".", "")
			i := strings.LastIndexByte(s, ',')
			s = strings.ReplaceAll(s[:i], ",", "") + "." + s[i+1:]
		} else {
			// 1,234.56
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		if thousandsGroups.MatchString(s) {
			s = strings.ReplaceAll(s, ",", "")
		} else if strings.Count(s, ",") == 1 {
			s = strings.Replace(s, ",", ".", 1)
		} else {
			return 0, fmt.Errorf("ambiguous separators in %q", raw)
		}
	}

	s = strings.TrimSuffix(s, ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", raw, err)
	}
	return v, nil
}

var thousandsGroups = regexp.MustCompile(`^\d{1,3}(?:,\d{3})+$`)
