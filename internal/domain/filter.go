package domain

// ClientTypeNone is the sentinel client-type filter that selects records
// whose typeclient is empty or missing. It is different from an unset filter.
const ClientTypeNone = "null"

// FilterState is the ephemeral UI filter input of a list view.
// Empty fields mean "not filtered".
type FilterState struct {
	SearchTerm string `json:"searchTerm,omitempty"`
	ClientType string `json:"selectedClientType,omitempty"`
	Status     string `json:"selectedStatus,omitempty"`
	StartDate  string `json:"startDate,omitempty"`
	EndDate    string `json:"endDate,omitempty"`
}

// Notice is a user-visible, non-fatal message attached to a view response,
// e.g. a collection that could not be fetched.
type Notice struct {
	Source  string `json:"source"`
	Message string `json:"message"`
}
