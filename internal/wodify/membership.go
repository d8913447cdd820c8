package wodify

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"wodify-retention-import/internal/csvx"
)

// Membership column contract.
const (
	colMembership      = "Membership"
	colCommitmentTotal = "Commitment Total"
	colAutorenew       = "Membership Autorenew"
	colExpirationDate  = "Expiration Date"
)

// Membership names embed a location prefix from a small fixed vocabulary.
// "UNUMAI" is a spelling variant seen in older exports.
var locationVocabulary = []struct {
	prefix string
	tag    string
}{
	{"UNU MAI", "UNU MAI"},
	{"UNUMAI", "UNU MAI"},
	{"BERARIEI", "BERARIEI"},
}

var numericToken = regexp.MustCompile(`\d+(?:\.\d+)?`)

var whitespaceRun = regexp.MustCompile(`\s+`)

// ResolveMemberships reduces the billing export to one canonical
// membership per client. A client with several rows (successive plans)
// keeps the one with the highest monthly revenue; on equal revenue the
// later expiration wins, so the result never depends on row order.
func ResolveMemberships(csvText string) map[string]MembershipInfo {
	memberships := make(map[string]MembershipInfo)

	for _, record := range csvx.Parse(csvText) {
		id := record[colClientID]
		if id == "" {
			continue
		}

		name := record[colMembership]
		expires, _ := ParseDate(record[colExpirationDate])

		info := MembershipInfo{
			Expires:        expires,
			MonthlyRevenue: monthlyRevenue(name, record[colCommitmentTotal]),
			AutoRenew:      record[colAutorenew] == "Auto Renew",
			Location:       extractLocation(name),
			Type:           cleanTypeLabel(name),
			HasPT:          hasPersonalTraining(name),
		}

		existing, ok := memberships[id]
		if !ok || betterMembership(info, existing) {
			memberships[id] = info
		}
	}
	return memberships
}

// betterMembership reports whether candidate should replace current:
// highest revenue wins, ties broken by latest expiration.
func betterMembership(candidate, current MembershipInfo) bool {
	if candidate.MonthlyRevenue != current.MonthlyRevenue {
		return candidate.MonthlyRevenue > current.MonthlyRevenue
	}
	return candidate.Expires.After(current.Expires)
}

// monthlyRevenue extracts the price embedded in the membership name
// ("CrossFit Unlimited 350/12 weeks" -> 350), skipping tokens that are
// week counts, and falls back to the Commitment Total field. Names on a
// 12-week commitment are normalized to a monthly figure.
func monthlyRevenue(name, commitmentTotal string) float64 {
	value := 0.0
	found := false

	for _, loc := range numericToken.FindAllStringIndex(name, -1) {
		rest := strings.TrimLeft(name[loc[1]:], " ")
		if strings.HasPrefix(strings.ToLower(rest), "week") {
			continue
		}
		if parsed, err := strconv.ParseFloat(name[loc[0]:loc[1]], 64); err == nil {
			value = parsed
			found = true
			break
		}
	}

	if !found {
		cleaned := strings.ReplaceAll(commitmentTotal, ",", "")
		if parsed, err := strconv.ParseFloat(cleaned, 64); err == nil {
			value = parsed
		}
	}

	if strings.Contains(strings.ToLower(name), "12 weeks") {
		value = math.Round(value / 3)
	}
	return value
}

func extractLocation(name string) string {
	upper := strings.ToUpper(strings.TrimSpace(name))
	for _, loc := range locationVocabulary {
		if strings.HasPrefix(upper, loc.prefix) {
			return loc.tag
		}
	}
	return "Unknown"
}

// cleanTypeLabel strips the location prefix and collapses whitespace to
// produce the membership-type label.
func cleanTypeLabel(name string) string {
	label := strings.TrimSpace(name)
	upper := strings.ToUpper(label)
	for _, loc := range locationVocabulary {
		if strings.HasPrefix(upper, loc.prefix) {
			label = strings.TrimSpace(label[len(loc.prefix):])
			break
		}
	}
	label = whitespaceRun.ReplaceAllString(label, " ")
	if label == "" {
		return "Unknown"
	}
	return label
}

func hasPersonalTraining(name string) bool {
	lower := strings.ToLower(name)
	return strings.Contains(lower, "pt") || strings.Contains(lower, "personal")
}
