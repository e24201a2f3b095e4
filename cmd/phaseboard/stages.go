package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/hylla/phaseboard/internal/board"
	"github.com/hylla/phaseboard/internal/config"
	"github.com/hylla/phaseboard/internal/domain"
)

// newStagesCommand prints which board column each stored stage value lands in.
func newStagesCommand(opts *rootOptions, stdout io.Writer) *cobra.Command {
	var policy string
	cmd := &cobra.Command{
		Use:   "stages",
		Short: "List board columns and how legacy stage values map onto them",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			if policy == "" {
				res, err := resolveRuntimePaths(opts)
				if err != nil {
					return err
				}
				cfg, err := loadConfig(res, config.Default(res.dbPath))
				if err != nil {
					return err
				}
				policy = string(cfg.Board.CompletedPolicy)
			}
			switch config.CompletedPolicy(policy) {
			case config.CompletedPolicyHash, config.CompletedPolicyRandom:
			default:
				return fmt.Errorf("invalid completed policy %q", policy)
			}
			_, err := fmt.Fprintln(stdout, renderStageTable(config.CompletedPolicy(policy)))
			return err
		},
	}
	cmd.Flags().StringVar(&policy, "completed-policy", "", "placement for Completed tasks: hash or random (default from config)")
	return cmd
}

// stageRows lists every known stage with its target column, icon and label id.
func stageRows(policy config.CompletedPolicy) [][]string {
	grouper := board.NewGrouper(board.StableCompletedPlacement)
	rows := make([][]string, 0, 10)
	for _, stage := range domain.BoardStages() {
		icon := board.IconFor(stage)
		rows = append(rows, []string{string(stage), string(stage), icon.Glyph + " " + icon.Name, board.HeaderID(stage)})
	}
	for _, stage := range []domain.StageKey{domain.StageExecution, domain.StageSignoff, domain.StageVerification} {
		target, _ := grouper.Target(domain.Task{Stage: stage})
		rows = append(rows, []string{string(stage), string(target), "", ""})
	}
	completed := "IQ or OQ by id hash"
	if policy == config.CompletedPolicyRandom {
		completed = "IQ or OQ at random"
	}
	rows = append(rows, []string{string(domain.StageCompleted), completed, "", ""})
	return rows
}

// renderStageTable renders stageRows as a bordered table.
func renderStageTable(policy config.CompletedPolicy) string {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("230"))
	aliasStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	boardCount := len(domain.BoardStages())
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("62"))).
		Headers("Stage", "Column", "Icon", "Label ID").
		Rows(stageRows(policy)...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle.Padding(0, 1)
			case row >= boardCount:
				return aliasStyle.Padding(0, 1)
			default:
				return lipgloss.NewStyle().Padding(0, 1)
			}
		})
	return t.String()
}
