package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"

	"competition-service/internal/domain"
	"competition-service/internal/draw"
	"github.com/spf13/cobra"
)

// NewSimulateCmd repeats a draw over a candidate file and reports how often
// each candidate won against its first-round probability.
func NewSimulateCmd() *cobra.Command {
	var (
		candidatesPath string
		winners        int
		trials         int
	)
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run repeated draws and print empirical win rates",
		RunE: func(cmd *cobra.Command, args []string) error {
			candidates, err := readCandidates(candidatesPath)
			if err != nil {
				return err
			}
			return simulate(cmd.OutOrStdout(), draw.NewEngine(), candidates, winners, trials)
		},
	}
	cmd.Flags().StringVar(&candidatesPath, "candidates", "", "JSON file holding an array of candidates")
	cmd.Flags().IntVar(&winners, "winners", 1, "winners per draw")
	cmd.Flags().IntVar(&trials, "trials", 10000, "number of draws to run")
	_ = cmd.MarkFlagRequired("candidates")
	return cmd
}

func readCandidates(path string) ([]domain.Candidate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var candidates []domain.Candidate
	if err := json.Unmarshal(data, &candidates); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return candidates, nil
}

type simulationRow struct {
	id       string
	name     string
	weight   float64
	expected float64
	wins     int
}

func simulate(out io.Writer, engine *draw.Engine, candidates []domain.Candidate, winners, trials int) error {
	if trials <= 0 {
		return fmt.Errorf("trials must be positive: %w", domain.ErrInvalidInput)
	}
	if len(candidates) == 0 {
		return fmt.Errorf("no candidates: %w", domain.ErrInvalidInput)
	}

	expected := draw.Probabilities(candidates)
	rows := make([]simulationRow, len(candidates))
	index := make(map[string]int, len(candidates))
	for i, c := range candidates {
		rows[i] = simulationRow{id: c.SubmissionID, name: c.ParticipantName, weight: c.Weight, expected: expected[i]}
		index[c.SubmissionID] = i
	}

	for i := 0; i < trials; i++ {
		picked, err := engine.SelectMultipleWinners(candidates, winners)
		if err != nil {
			return err
		}
		for _, w := range picked {
			rows[index[w.SubmissionID]].wins++
		}
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].wins > rows[j].wins })

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "SUBMISSION\tNAME\tWEIGHT\tFIRST-ROUND %%\tWIN RATE %%\n")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%.2f\t%.2f\t%.2f\n", r.id, r.name, r.weight, r.expected, 100*float64(r.wins)/float64(trials))
	}
	fmt.Fprintf(tw, "\n%d trials, %d winners per draw\n", trials, winners)
	return tw.Flush()
}
