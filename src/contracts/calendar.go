package contracts

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// MonthCode is one of the 12 futures delivery month letters.
type MonthCode string

const (
	MonthCodeF MonthCode = "F" // January
	MonthCodeG MonthCode = "G" // February
	MonthCodeH MonthCode = "H" // March
	MonthCodeJ MonthCode = "J" // April
	MonthCodeK MonthCode = "K" // May
	MonthCodeM MonthCode = "M" // June
	MonthCodeN MonthCode = "N" // July
	MonthCodeQ MonthCode = "Q" // August
	MonthCodeU MonthCode = "U" // September
	MonthCodeV MonthCode = "V" // October
	MonthCodeX MonthCode = "X" // November
	MonthCodeZ MonthCode = "Z" // December
)

var monthByCode = map[MonthCode]time.Month{
	MonthCodeF: time.January,
	MonthCodeG: time.February,
	MonthCodeH: time.March,
	MonthCodeJ: time.April,
	MonthCodeK: time.May,
	MonthCodeM: time.June,
	MonthCodeN: time.July,
	MonthCodeQ: time.August,
	MonthCodeU: time.September,
	MonthCodeV: time.October,
	MonthCodeX: time.November,
	MonthCodeZ: time.December,
}

var codeByMonth = map[time.Month]MonthCode{
	time.January:   MonthCodeF,
	time.February:  MonthCodeG,
	time.March:     MonthCodeH,
	time.April:     MonthCodeJ,
	time.May:       MonthCodeK,
	time.June:      MonthCodeM,
	time.July:      MonthCodeN,
	time.August:    MonthCodeQ,
	time.September: MonthCodeU,
	time.October:   MonthCodeV,
	time.November:  MonthCodeX,
	time.December:  MonthCodeZ,
}

var monthByAbbrev = map[string]time.Month{
	"JAN": time.January,
	"FEB": time.February,
	"MAR": time.March,
	"APR": time.April,
	"MAY": time.May,
	"JUN": time.June,
	"JUL": time.July,
	"AUG": time.August,
	"SEP": time.September,
	"OCT": time.October,
	"NOV": time.November,
	"DEC": time.December,
}

// equityIndexRoots are the futures roots that settle on the third Friday of
// the contract month. Everything else falls back to the last calendar day.
var equityIndexRoots = map[string]bool{
	"ES":  true,
	"NQ":  true,
	"YM":  true,
	"RTY": true,
	"MES": true,
	"MNQ": true,
	"MYM": true,
	"M2K": true,
}

var (
	contractSymbolRe = regexp.MustCompile(`^([A-Z]{1,4})([FGHJKMNQUVXZ])(\d{2,4})$`)
	monthLabelRe     = regexp.MustCompile(`^([A-Z]{3})(\d{2})$`)
	codeLabelRe      = regexp.MustCompile(`^([FGHJKMNQUVXZ])(\d{2,4})$`)
)

// ContractSymbol is the decomposed form of a futures contract symbol such as
// ESH25: root, delivery month code and year as written (2 or 4 digits).
type ContractSymbol struct {
	Base string
	Code MonthCode
	Year int
}

// ParseContractSymbol splits a contract symbol into root, month code and year.
// Symbols come from free-form broker imports, so a mismatch reports ok=false
// instead of an error; callers must treat it as "unparseable", not fatal.
func ParseContractSymbol(symbol string) (ContractSymbol, bool) {
	m := contractSymbolRe.FindStringSubmatch(strings.ToUpper(strings.TrimSpace(symbol)))
	if m == nil {
		return ContractSymbol{}, false
	}
	year, err := strconv.Atoi(m[3])
	if err != nil {
		return ContractSymbol{}, false
	}
	return ContractSymbol{Base: m[1], Code: MonthCode(m[2]), Year: year}, true
}

// FormatContractSymbol builds the canonical symbol: root, month code, then the
// last two digits of the year.
func FormatContractSymbol(base string, code MonthCode, year int) string {
	return fmt.Sprintf("%s%s%02d", strings.ToUpper(base), code, year%100)
}

// Month resolves a month code to its calendar month. The ok result is false
// for codes outside the 12-letter alphabet.
func Month(code MonthCode) (time.Month, bool) {
	m, ok := monthByCode[code]
	return m, ok
}

// Code returns the delivery month letter for a calendar month.
func Code(month time.Month) MonthCode {
	return codeByMonth[month]
}

// MonthName returns the calendar month name for a code, or the code text
// unchanged when it is not a known month letter.
func MonthName(code MonthCode) string {
	m, ok := monthByCode[code]
	if !ok {
		return string(code)
	}
	return m.String()
}

// ThirdFriday returns the third Friday of the given month: the first Friday
// ((Friday-weekday+7) mod 7 days after the 1st) plus two weeks.
func ThirdFriday(year int, month time.Month) time.Time {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	offset := (int(time.Friday) - int(first.Weekday()) + 7) % 7
	return first.AddDate(0, 0, offset+14)
}

// IsEquityIndexRoot reports whether the root symbol settles on third Fridays.
func IsEquityIndexRoot(symbol string) bool {
	return equityIndexRoots[strings.ToUpper(strings.TrimSpace(symbol))]
}

// ExpirationDate resolves a contract month label to an expiration date in
// YYYY-MM-DD form. The label is either a three letter month plus two digit
// year ("MAR25") or a month code plus year ("H25"). Equity index roots expire
// on the third Friday of the month; everything else on the last calendar day.
// Unparseable labels report ok=false.
func ExpirationDate(label, symbol string) (string, bool) {
	month, year, ok := resolveMonthLabel(label)
	if !ok {
		return "", false
	}

	var expiry time.Time
	if IsEquityIndexRoot(symbol) {
		expiry = ThirdFriday(year, month)
	} else {
		// Day zero of the next month is the last day of this one.
		expiry = time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC)
	}
	return expiry.Format("2006-01-02"), true
}

// MonthFromLabel resolves a contract month label ("MAR25" or "H25") to its
// calendar month and 4-digit year. Unparseable labels report ok=false.
func MonthFromLabel(label string) (time.Month, int, bool) {
	return resolveMonthLabel(label)
}

func resolveMonthLabel(label string) (time.Month, int, bool) {
	label = strings.ToUpper(strings.TrimSpace(label))

	if m := monthLabelRe.FindStringSubmatch(label); m != nil {
		month, ok := monthByAbbrev[m[1]]
		if !ok {
			return 0, 0, false
		}
		yy, err := strconv.Atoi(m[2])
		if err != nil {
			return 0, 0, false
		}
		return month, normalizeYear(yy), true
	}

	if m := codeLabelRe.FindStringSubmatch(label); m != nil {
		month, ok := monthByCode[MonthCode(m[1])]
		if !ok {
			return 0, 0, false
		}
		yy, err := strconv.Atoi(m[2])
		if err != nil {
			return 0, 0, false
		}
		return month, normalizeYear(yy), true
	}

	return 0, 0, false
}

// normalizeYear maps two digit years into the 2000s and keeps four digit
// years as written.
func normalizeYear(year int) int {
	if year < 100 {
		return 2000 + year
	}
	return year
}
