package codegen

import (
	"fmt"

	"github.com/planMaster/backend/internal/model"
)

// BuildPlanPrompt produces the plan-generation prompt for a requirement. The
// prompt is an opaque string as far as the rest of the system is concerned.
func BuildPlanPrompt(project *model.Project, req *model.Requirement) string {
	return fmt.Sprintf(`Create a detailed implementation plan for the following requirement.

Repository: %s (%s, default branch %s)
Project: %s
Requirement: %s

Please provide a comprehensive plan including:
1. Analysis of the current codebase
2. Required changes and new files
3. Step-by-step implementation approach
4. Testing strategy
5. Deployment considerations`,
		project.Repository.FullName,
		project.Repository.URL,
		project.Repository.DefaultBranch,
		project.Name,
		req.Text,
	)
}

// BuildImplementationPrompt produces the implementation prompt for an
// approved (possibly user-edited) plan.
func BuildImplementationPrompt(project *model.Project, planContent string) string {
	return fmt.Sprintf(`Implement the following plan in repository %s (default branch %s):

%s

Please:
1. Analyze the current codebase
2. Implement the required changes
3. Create a pull request with the changes
4. Ensure all tests pass

Make sure to create a pull request when the implementation is complete.`,
		project.Repository.FullName,
		project.Repository.DefaultBranch,
		planContent,
	)
}
