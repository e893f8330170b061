package types

import "time"

// AgentWindowStats is the per-agent aggregate for one time window.
// Talk time stays in milliseconds end to end; formatting is the
// presentation layer's concern.
type AgentWindowStats struct {
	AgentID        int64  `json:"agentId"`
	AgentName      string `json:"agentName"`
	TalkTimeMs     int64  `json:"talkTimeMs"`
	OutboundCalls  int    `json:"outboundCalls"`
	InboundCalls   int    `json:"inboundCalls"`
	DepartmentID   int64  `json:"departmentId,omitempty"`
	DepartmentName string `json:"departmentName,omitempty"`
}

// WindowSnapshot is an aggregated result set archived per window kind.
// Window/BuiltAt form the archive table key.
type WindowSnapshot struct {
	Window  string             `json:"window" dynamodbav:"Window"`
	BuiltAt string             `json:"builtAt" dynamodbav:"BuiltAt"`
	Agents  []AgentWindowStats `json:"agents" dynamodbav:"Agents"`
}

// NewWindowSnapshot stamps an aggregate with its window kind and build time.
func NewWindowSnapshot(window string, builtAt time.Time, agents []AgentWindowStats) WindowSnapshot {
	return WindowSnapshot{
		Window:  window,
		BuiltAt: builtAt.UTC().Format(time.RFC3339),
		Agents:  agents,
	}
}
