package types

import "time"

// NameSource records where a resolved agent name came from.
type NameSource string

const (
	NameFromActivity   NameSource = "from-activity"
	NameFromSummary    NameSource = "from-summary"
	NameManualOverride NameSource = "manual-override"
)

// AgentIdentity maps a numeric agent account id to a display name.
// Exactly one identity exists per id within a cache snapshot.
type AgentIdentity struct {
	ID         int64      `json:"id"`
	Name       string     `json:"name"`
	Source     NameSource `json:"source"`
	CustomerID int64      `json:"customerId,omitempty"`
}

// DepartmentIdentity maps a numeric department id to its display name.
type DepartmentIdentity struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// LookupStats are the diagnostic counters of an identity cache snapshot.
type LookupStats struct {
	Agents            int       `json:"agents"`
	NamedAgents       int       `json:"namedAgents"`
	FallbackAgents    int       `json:"fallbackAgents"`
	Departments       int       `json:"departments"`
	MonthlyActivities int       `json:"monthlyActivities"`
	MonthlySummaries  int       `json:"monthlySummaries"`
	LastBuilt         time.Time `json:"lastBuilt"`
	Truncated         bool      `json:"truncated"`
	Ready             bool      `json:"ready"`
}
