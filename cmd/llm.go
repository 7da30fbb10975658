package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kevinraymond/homeschool/internal/llm"
	"github.com/kevinraymond/homeschool/internal/store"
)

const timeLayout = "2006-01-02 15:04:05"

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect recorded AI requests, usage and cost",
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent AI requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		var opts store.QueryOpts
		opts.Limit, _ = cmd.Flags().GetInt("limit")
		opts.Purpose, _ = cmd.Flags().GetString("purpose")
		opts.Student, _ = cmd.Flags().GetString("student")

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		events, err := e.store.EventRepo().QueryLLMEvents(cmd.Context(), opts)
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}
		writeEventList(cmd.OutOrStdout(), events)
		return nil
	},
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show the prompt and reply of one AI request",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid event id %q", args[0])
		}

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		ev, err := e.store.EventRepo().GetLLMEvent(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("get event: %w", err)
		}
		if ev == nil {
			return fmt.Errorf("event %d not found", id)
		}
		writeEvent(cmd.OutOrStdout(), ev)
		return nil
	},
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize token usage and estimated cost",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		ctx := cmd.Context()
		events := e.store.EventRepo()
		byPurpose, err := events.LLMUsageByPurpose(ctx)
		if err != nil {
			return fmt.Errorf("usage by purpose: %w", err)
		}
		byModel, err := events.LLMUsageByModel(ctx)
		if err != nil {
			return fmt.Errorf("usage by model: %w", err)
		}
		byStudent, err := events.LLMUsageByStudent(ctx)
		if err != nil {
			return fmt.Errorf("usage by student: %w", err)
		}

		w := cmd.OutOrStdout()
		if len(byPurpose) == 0 {
			fmt.Fprintln(w, "No AI usage recorded yet.")
			return nil
		}
		writePurposeUsage(w, byPurpose)
		if len(byModel) > 0 {
			fmt.Fprintln(w)
			writeModelCost(w, byModel)
		}
		if len(byStudent) > 0 {
			fmt.Fprintln(w)
			writeStudentUsage(w, byStudent)
		}
		return nil
	},
}

func rule(w io.Writer, n int) {
	fmt.Fprintln(w, strings.Repeat("─", n))
}

func writeEventList(w io.Writer, events []store.LLMRequestEvent) {
	if len(events) == 0 {
		fmt.Fprintln(w, "No AI requests recorded.")
		return
	}
	fmt.Fprintf(w, "%-5s  %-19s  %-14s  %-10s  %-28s  %6s  %6s  %7s  %s\n",
		"ID", "Time", "Purpose", "Student", "Model", "In", "Out", "Ms", "OK")
	rule(w, 112)
	for _, ev := range events {
		ok := "✓"
		if !ev.Success {
			ok = "✗"
		}
		student := ev.StudentID
		if student == "" {
			student = "-"
		}
		fmt.Fprintf(w, "%-5d  %-19s  %-14s  %-10s  %-28s  %6d  %6d  %7d  %s\n",
			ev.ID, ev.Timestamp.Local().Format(timeLayout), ev.Purpose, truncate(student, 10),
			truncate(ev.Model, 28), ev.InputTokens, ev.OutputTokens, ev.LatencyMs, ok)
	}
}

func writeEvent(w io.Writer, ev *store.LLMRequestEvent) {
	fields := [][2]string{
		{"ID", strconv.Itoa(ev.ID)},
		{"Time", ev.Timestamp.Local().Format(timeLayout)},
		{"Provider", ev.Provider},
		{"Model", ev.Model},
		{"Purpose", ev.Purpose},
		{"Student", ev.StudentID},
		{"Tokens", fmt.Sprintf("%d in / %d out", ev.InputTokens, ev.OutputTokens)},
		{"Latency", fmt.Sprintf("%dms", ev.LatencyMs)},
		{"Success", strconv.FormatBool(ev.Success)},
		{"Error", ev.ErrorMessage},
	}
	for _, f := range fields {
		if f[1] != "" {
			fmt.Fprintf(w, "%-10s %s\n", f[0]+":", f[1])
		}
	}

	for _, part := range []struct{ title, body string }{
		{"REQUEST", ev.RequestBody},
		{"RESPONSE", ev.ResponseBody},
	} {
		fmt.Fprintln(w)
		rule(w, 60)
		fmt.Fprintln(w, part.title)
		rule(w, 60)
		if part.body == "" {
			fmt.Fprintln(w, "(not captured)")
		} else {
			fmt.Fprintln(w, part.body)
		}
	}
}

func writePurposeUsage(w io.Writer, usage []store.PurposeUsage) {
	fmt.Fprintln(w, "Usage by purpose")
	rule(w, 72)
	fmt.Fprintf(w, "%-16s  %6s  %10s  %10s  %10s  %8s\n", "Purpose", "Calls", "Input", "Output", "Total", "Avg ms")
	rule(w, 72)
	var total store.PurposeUsage
	for _, u := range usage {
		fmt.Fprintf(w, "%-16s  %6d  %10d  %10d  %10d  %8d\n",
			u.Purpose, u.Calls, u.InputTokens, u.OutputTokens, u.InputTokens+u.OutputTokens, u.AvgLatencyMs)
		total.Calls += u.Calls
		total.InputTokens += u.InputTokens
		total.OutputTokens += u.OutputTokens
	}
	rule(w, 72)
	fmt.Fprintf(w, "%-16s  %6d  %10d  %10d  %10d\n",
		"TOTAL", total.Calls, total.InputTokens, total.OutputTokens, total.InputTokens+total.OutputTokens)
}

// writeModelCost prices each model from the llm pricing table. Models
// without a price are listed and make the total partial.
func writeModelCost(w io.Writer, usage []store.ModelUsage) {
	fmt.Fprintln(w, "Estimated cost (USD)")
	rule(w, 72)
	fmt.Fprintf(w, "%-32s  %6s  %10s  %10s  %10s\n", "Model", "Calls", "Input", "Output", "Cost")
	rule(w, 72)

	var sum float64
	var unpriced []string
	for _, u := range usage {
		cost := "?"
		if price := llm.LookupCost(u.Model); price != nil {
			c := price.Cost(u.InputTokens, u.OutputTokens)
			sum += c
			cost = formatCost(c)
		} else {
			unpriced = append(unpriced, u.Model)
		}
		fmt.Fprintf(w, "%-32s  %6d  %10d  %10d  %10s\n",
			truncate(u.Model, 32), u.Calls, u.InputTokens, u.OutputTokens, cost)
	}
	rule(w, 72)

	label := "TOTAL"
	if len(unpriced) > 0 {
		label = "TOTAL (partial)"
	}
	fmt.Fprintf(w, "%-32s  %6s  %10s  %10s  %10s\n", label, "", "", "", formatCost(sum))
	if len(unpriced) > 0 {
		fmt.Fprintf(w, "\nNo pricing for: %s\n", strings.Join(unpriced, ", "))
	}
}

// writeStudentUsage folds per-model rows into one line per student. A "+"
// after the cost means some of that student's models have no price.
func writeStudentUsage(w io.Writer, usage []store.StudentUsage) {
	type totals struct {
		calls, tokens int
		cost          float64
		partial       bool
	}
	var order []string
	byID := make(map[string]*totals)
	for _, u := range usage {
		t := byID[u.StudentID]
		if t == nil {
			t = &totals{}
			byID[u.StudentID] = t
			order = append(order, u.StudentID)
		}
		t.calls += u.Calls
		t.tokens += u.InputTokens + u.OutputTokens
		if price := llm.LookupCost(u.Model); price != nil {
			t.cost += price.Cost(u.InputTokens, u.OutputTokens)
		} else {
			t.partial = true
		}
	}

	fmt.Fprintln(w, "Usage by student")
	rule(w, 72)
	fmt.Fprintf(w, "%-36s  %6s  %10s  %10s\n", "Student", "Calls", "Tokens", "Cost")
	rule(w, 72)
	for _, id := range order {
		t := byID[id]
		cost := formatCost(t.cost)
		if t.partial {
			cost += "+"
		}
		fmt.Fprintf(w, "%-36s  %6d  %10d  %10s\n", truncate(id, 36), t.calls, t.tokens, cost)
	}
}

func truncate(s string, limit int) string {
	if r := []rune(s); len(r) > limit {
		return string(r[:limit])
	}
	return s
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of requests to show")
	llmListCmd.Flags().StringP("purpose", "p", "", "Only this purpose (tutor-hint, tutor-feedback, tutor-explain, problem-gen)")
	llmListCmd.Flags().String("student", "", "Only requests made for this student ID")

	llmCmd.AddCommand(llmListCmd, llmViewCmd, llmStatsCmd)
}
