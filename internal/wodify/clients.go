package wodify

import "wodify-retention-import/internal/csvx"

// Roster column contract.
const (
	colClientID   = "Client ID"
	colClientName = "Client Name"
	colClientFlag = "Client Active"
	colEmail      = "Email"
	colPhone      = "Phone Number"
	colLastSignIn = "Last Class Sign In: Day"
)

// ParseClients builds the client identity table from the roster export.
// Rows without a client id are dropped; everything else is best-effort.
func ParseClients(csvText string) map[string]ClientIdentity {
	clients := make(map[string]ClientIdentity)

	for _, record := range csvx.Parse(csvText) {
		id := record[colClientID]
		if id == "" {
			continue
		}

		name := record[colClientName]
		if name == "" {
			name = "Unknown"
		}

		hint, _ := ParseDate(record[colLastSignIn])

		clients[id] = ClientIdentity{
			ID:            id,
			Name:          name,
			Active:        record[colClientFlag] == "Active",
			Email:         record[colEmail],
			Phone:         record[colPhone],
			LastVisitHint: hint,
		}
	}
	return clients
}
