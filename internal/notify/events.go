package notify

// PlanReadyEvent is sent when plan generation completes successfully.
type PlanReadyEvent struct {
	ProjectID       string
	RequirementID   string
	RequirementText string
	PlanID          string
}

// PlanFailedEvent is sent when plan generation fails or times out.
type PlanFailedEvent struct {
	ProjectID       string
	RequirementID   string
	RequirementText string
	Reason          string
}

// ImplementationStartedEvent is sent when an implementation run is accepted
// by the agent service.
type ImplementationStartedEvent struct {
	ProjectID       string
	RequirementID   string
	RequirementText string
	PlanID          string
	AgentRunID      string
}

// ImplementationCompletedEvent is sent when an implementation run finishes
// with a pull request.
type ImplementationCompletedEvent struct {
	ProjectID       string
	RequirementID   string
	RequirementText string
	PlanID          string
	PRURL           string
}

// ImplementationFailedEvent is sent when an implementation run fails or
// times out.
type ImplementationFailedEvent struct {
	ProjectID       string
	RequirementID   string
	RequirementText string
	PlanID          string
	Reason          string
}
