package types

import "time"

// Call direction codes as reported by the CloudCall reporting API.
const (
	DirectionOutbound = 0
	DirectionInbound  = 1
)

// OutcomeConnected is the agent outcome code for a connected call.
// Other outcome codes exist (missed, voicemail, ...) and are tolerated
// but never counted as connected calls.
const OutcomeConnected = 1

// Reach filter values for the summary query.
const (
	ReachExternal = 0
	ReachInternal = 1
	ReachAll      = 2
)

// DateRange is an inclusive [From, To] timestamp range.
type DateRange struct {
	From time.Time
	To   time.Time
}

// Contains reports whether t falls inside the range, both ends inclusive.
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.From) && !t.After(r.To)
}

// ActivityRecord is one itemized call event. The agent identifier arrives
// as text in AccountNumber and may be absent. Immutable once fetched.
type ActivityRecord struct {
	ID                int64     `json:"id"`
	SessionID         string    `json:"sessionId,omitempty"`
	ContactName       string    `json:"contactName,omitempty"`
	CompanyName       string    `json:"companyName,omitempty"`
	ContactNumber     string    `json:"contactNumber,omitempty"`
	IsInternalCall    bool      `json:"isInternalCall"`
	AccountName       string    `json:"accountName,omitempty"`
	AccountNumber     string    `json:"accountNumber,omitempty"`
	DepartmentName    string    `json:"departmentName,omitempty"`
	DepartmentID      int64     `json:"departmentId,omitempty"`
	CallDirectionID   int       `json:"callDirectionId"`
	CallOutcomeID     int       `json:"callAgentOutcomeId"`
	TotalDuration     int64     `json:"totalDuration"`
	RingDuration      int64     `json:"ringDuration"`
	TalkTime          int64     `json:"talkTime"`
	HoldTime          int64     `json:"holdTime"`
	CustomerID        int64     `json:"customerId"`
	OccurredAt        time.Time `json:"occurredAt"`
	CampaignID        int64     `json:"campaignId"`
	CampaignName      string    `json:"campaignName,omitempty"`
	RecordingAvail    bool      `json:"callRecordingAvailable"`
	InCallDuration    int64     `json:"inCallDuration"`
}

// ActivityEnvelope is the paged response wrapper for the activity query.
type ActivityEnvelope struct {
	Page       int              `json:"page"`
	Take       int              `json:"take,omitempty"`
	TotalCount int              `json:"totalCount"`
	Data       []ActivityRecord `json:"data"`
}

// SummaryRecord is one pre-aggregated rollup per agent for a queried
// range. Durations are milliseconds. Immutable once fetched.
type SummaryRecord struct {
	CustomerID               int64 `json:"customerId"`
	DepartmentID             int64 `json:"departmentId"`
	AccountID                int64 `json:"accountId"`
	InboundConnectedCount    int   `json:"inboundConnectedCount"`
	InboundUnconnectedCount  int   `json:"inboundUnconnectedCount"`
	OutboundConnectedCount   int   `json:"outboundConnectedCount"`
	OutboundCount            int   `json:"outboundCount"`
	ConnectedCount           int   `json:"connectedCount"`
	InboundInCallDuration    int64 `json:"inboundInCallDuration"`
	OutboundInCallDuration   int64 `json:"outboundInCallDuration"`
	InboundTotalDuration     int64 `json:"inboundTotalDuration"`
	OutboundTotalDuration    int64 `json:"outboundTotalDuration"`
	InboundConnectedTotalMs  int64 `json:"inboundConnectedTotalDuration"`
	OutboundConnectedTotalMs int64 `json:"outboundConnectedTotalDuration"`
}

// SummaryEnvelope is the response wrapper for the summary query.
type SummaryEnvelope struct {
	Page  int             `json:"page"`
	Count int             `json:"count"`
	Data  []SummaryRecord `json:"data"`
}

// ActivityQuery holds the query parameters for the activity endpoint.
type ActivityQuery struct {
	From time.Time
	To   time.Time
	Take int
	Page int
}

// SummaryQuery holds the query parameters for the summary endpoint.
type SummaryQuery struct {
	From  time.Time
	To    time.Time
	Reach int
}
