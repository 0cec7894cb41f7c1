package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"interview-coach/internal/domain"
	"interview-coach/internal/dto"
	"interview-coach/internal/validation"

	"github.com/spf13/cobra"
)

func newMigrateCmd(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the SQL schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEnv(cmd, open, true, func(*Env) error {
				fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("Migrations applied"))
				return nil
			})
		},
	}
}

func newUsersCmd(open Opener) *cobra.Command {
	users := &cobra.Command{
		Use:   "users",
		Short: "List, delete and reset registered users",
	}

	var asJSON bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List users with their latest interview score",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEnv(cmd, open, false, func(env *Env) error {
				views, err := env.Admin.ListUsers(cmd.Context())
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, views)
				}
				fmt.Fprint(cmd.OutOrStdout(), renderUsers(views))
				return nil
			})
		},
	}
	list.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")

	del := &cobra.Command{
		Use:   "delete <email>",
		Short: "Delete a user and their interview history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			email := domain.NormalizeEmail(args[0])
			return withEnv(cmd, open, false, func(env *Env) error {
				if err := env.Admin.DeleteUser(cmd.Context(), email); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("Deleted "+email))
				return nil
			})
		},
	}

	var password string
	passwd := &cobra.Command{
		Use:   "passwd <email>",
		Short: "Set a new password for a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			email := domain.NormalizeEmail(args[0])
			if errs := validation.NewValidator().ValidatePassword("password", password); len(errs) > 0 {
				return errs
			}
			return withEnv(cmd, open, false, func(env *Env) error {
				if err := env.Admin.ResetPassword(cmd.Context(), email, password); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("Password updated for "+email))
				return nil
			})
		},
	}
	passwd.Flags().StringVar(&password, "password", "", "the new password")
	_ = passwd.MarkFlagRequired("password")

	users.AddCommand(list, del, passwd)
	return users
}

func newHistoryCmd(open Opener) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "history <email>",
		Short: "Show a user's archived interviews, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			email := domain.NormalizeEmail(args[0])
			return withEnv(cmd, open, false, func(env *Env) error {
				records, err := env.Histories.ListByEmail(cmd.Context(), email)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, records)
				}
				fmt.Fprint(cmd.OutOrStdout(), renderHistory(email, records))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func renderUsers(views []dto.AdminUserView) string {
	if len(views) == 0 {
		return mutedStyle.Render("No registered users") + "\n"
	}
	rows := make([][]string, 0, len(views))
	for _, v := range views {
		score := mutedStyle.Render("N/A")
		if v.LatestScore != nil {
			score = scoreStyle(*v.LatestScore).Render(strconv.Itoa(*v.LatestScore))
		}
		last := mutedStyle.Render("never")
		if v.LastInterview != nil {
			last = v.LastInterview.Format("2006-01-02 15:04")
		}
		rows = append(rows, []string{v.Name, v.Email, strconv.Itoa(v.Interviews), score, last})
	}
	return titleStyle.Render(fmt.Sprintf("%d users", len(views))) + "\n" +
		renderTable([]string{"NAME", "EMAIL", "INTERVIEWS", "SCORE", "LAST INTERVIEW"}, rows)
}

func renderHistory(email string, records []domain.InterviewRecord) string {
	if len(records) == 0 {
		return mutedStyle.Render("No interviews for "+email) + "\n"
	}
	rows := make([][]string, 0, len(records))
	for i := range records {
		rec := &records[i]
		score := domain.ComputeScore(rec)
		coding := "-"
		if rec.CodingChallenge != nil {
			coding = rec.CodingChallenge.Problem.Title
		}
		rows = append(rows, []string{
			rec.Date.Format("2006-01-02 15:04"),
			scoreStyle(score).Render(strconv.Itoa(score)),
			strconv.Itoa(len(rec.InterviewData)),
			coding,
			summarize(rec.FinalReport.OverallSummary, 60),
		})
	}
	return titleStyle.Render(email) + "\n" +
		renderTable([]string{"DATE", "SCORE", "ANSWERS", "CODING", "SUMMARY"}, rows)
}

func summarize(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}
