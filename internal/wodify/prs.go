package wodify

import "wodify-retention-import/internal/csvx"

// PR log column contract.
const (
	colResultDate = "Result Date"
	colPRDetails  = "Personal Record Details"
	colComponent  = "Component"
	colResult     = "Result"
)

// ResolvePRs keeps the most recent personal record per client. The export
// logs every result; only rows carrying the record-details marker are
// genuine PRs. An empty csvText is a valid configuration and yields an
// empty map.
func ResolvePRs(csvText string) map[string]PRInfo {
	prs := make(map[string]PRInfo)

	for _, record := range csvx.Parse(csvText) {
		id := record[colClientID]
		if id == "" || record[colPRDetails] == "" {
			continue
		}

		date, ok := ParseDate(record[colResultDate])
		if !ok {
			continue
		}

		if existing, seen := prs[id]; !seen || date.After(existing.Date) {
			prs[id] = PRInfo{
				Date:     date,
				Exercise: record[colComponent],
				Result:   record[colResult],
			}
		}
	}
	return prs
}
