package app

import (
	"time"

	"github.com/hylla/phaseboard/internal/domain"
)

var demoMembers = []domain.Member{
	{ID: "u1", Name: "Alex"},
	{ID: "u2", Name: "Sam"},
	{ID: "u3", Name: "Taylor"},
	{ID: "u4", Name: "Riley"},
	{ID: "u5", Name: "Jordan"},
}

type demoTask struct {
	stage domain.StageKey
	title string
	body  string
	label domain.Label
}

var demoTasks = []demoTask{
	{domain.StageURS, "Gather user requirements", "Interview stakeholders and capture user needs.", domain.LabelCreation},
	{domain.StageURS, "Draft URS document", "Structure URS with functional and non-functional needs.", domain.LabelVerification},
	{domain.StageFRS, "Define system features", "Translate URS into detailed functional specs.", domain.LabelExecution},
	{domain.StageFRS, "FRS review meeting", "Walkthrough of FRS with engineering and QA.", domain.LabelSignoff},
	{domain.StageDQ, "Design qualification plan", "Prepare DQ test cases and acceptance criteria.", domain.LabelVerification},
	{domain.StageDQ, "Architecture diagram", "Document components, interfaces, and data flows.", domain.LabelExecution},
	{domain.StageIQ, "Installation checklist", "List all installation prerequisites and steps.", domain.LabelExecution},
	{domain.StageIQ, "Environment validation", "Validate installed components and versions.", domain.LabelVerification},
	{domain.StagePQ, "Performance baselining", "Establish baseline metrics for throughput/latency.", domain.LabelExecution},
	{domain.StagePQ, "Load test suite", "Configure and run load tests for peak conditions.", domain.LabelVerification},
	{domain.StageOQ, "Operational procedures", "Draft runbooks, SOPs, and escalation paths.", domain.LabelExecution},
	{domain.StageOQ, "OQ signoff", "Approve operational readiness checklist.", domain.LabelSignoff},
	{domain.StageExecution, "Implement module A", "Code and unit test core business logic.", domain.LabelExecution},
	{domain.StageExecution, "Integrate API", "Wire up third-party API and handle errors.", domain.LabelExecution},
	{domain.StageSignoff, "Stakeholder approval", "Get final acceptance from business owners.", domain.LabelSignoff},
	{domain.StageSignoff, "Compliance review", "Ensure documentation and audits are complete.", domain.LabelSignoff},
	{domain.StageVerification, "UAT test cycle", "Execute UAT scripts and collect feedback.", domain.LabelVerification},
	{domain.StageVerification, "Bug triage", "Review and prioritize findings from UAT.", domain.LabelVerification},
	{domain.StageCompleted, "Release notes published", "Publish release notes and deployment summary.", domain.LabelCompleted},
	{domain.StageCompleted, "Project retrospective", "Hold retro and capture action items.", domain.LabelCompleted},
}

func demoProjectInput() CreateProjectInput {
	due := time.Date(2027, time.September, 3, 0, 0, 0, 0, time.UTC)
	return CreateProjectInput{
		Title:       "Autoclave",
		DueAt:       &due,
		ProgressPct: 75,
		Members:     append([]domain.Member(nil), demoMembers...),
	}
}

// demoTaskInputs derives counters and assignees from the task index so the
// seeded board looks varied but is reproducible.
func demoTaskInputs(project domain.Project) []CreateTaskInput {
	due := time.Date(2025, time.September, 3, 0, 0, 0, 0, time.UTC)
	out := make([]CreateTaskInput, 0, len(demoTasks))
	for i, dt := range demoTasks {
		assignees := make([]domain.Member, 0, 3)
		for j := range 3 {
			assignees = append(assignees, demoMembers[(i+j*2)%len(demoMembers)])
		}
		taskDue := due
		out = append(out, CreateTaskInput{
			ProjectID:     project.ID,
			Stage:         string(dt.stage),
			Title:         dt.title,
			Body:          dt.body,
			DueAt:         &taskDue,
			Warnings:      boolToInt(i%4 == 3),
			Comments:      (i * 3) % 5,
			Attachments:   i % 3,
			Assignees:     assignees,
			Label:         string(dt.label),
			LabelDaysLeft: (i*7 + 3) % 30,
		})
	}
	return out
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
