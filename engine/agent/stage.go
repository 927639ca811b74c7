package agent

import "fmt"

// SalesStage tracks where the conversation sits in the sales funnel.
type SalesStage string

const (
	StageGreeting          SalesStage = "greeting"
	StageDiscovery         SalesStage = "discovery"
	StagePresentation      SalesStage = "presentation"
	StageObjectionHandling SalesStage = "objection_handling"
	StageNegotiation       SalesStage = "negotiation"
	StageClosing           SalesStage = "closing"
	StageFollowUp          SalesStage = "follow_up"
)

var validStages = map[SalesStage]bool{
	StageGreeting:          true,
	StageDiscovery:         true,
	StagePresentation:      true,
	StageObjectionHandling: true,
	StageNegotiation:       true,
	StageClosing:           true,
	StageFollowUp:          true,
}

// ParseStage validates a stage name.
func ParseStage(s string) (SalesStage, error) {
	st := SalesStage(s)
	if !validStages[st] {
		return "", fmt.Errorf("invalid sales stage: %q", s)
	}
	return st, nil
}
