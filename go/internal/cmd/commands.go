package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/vitacoin/vitacoin-go/go/clients/vitacoin_client"
	"github.com/vitacoin/vitacoin-go/go/internal/channel"
	"github.com/vitacoin/vitacoin-go/go/internal/models"
	"github.com/vitacoin/vitacoin-go/go/internal/reconcile"
)

type appBuilder func() (*app, error)

func newRegisterCmd(build appBuilder) *cobra.Command {
	var name, email string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := build()
			if err != nil {
				return err
			}

			password, err := readPassword("Password: ")
			if err != nil {
				return err
			}

			identity, err := a.session.Register(name, email, password)
			if err != nil {
				return err
			}

			fmt.Printf("Welcome, %s! You start with %d coins.\n", identity.Name, identity.Coins)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("email")

	return cmd
}

func newLoginCmd(build appBuilder) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and persist the session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := build()
			if err != nil {
				return err
			}

			password, err := readPassword("Password: ")
			if err != nil {
				return err
			}

			identity, err := a.session.Authenticate(email, password)
			if err != nil {
				return err
			}

			fmt.Printf("Logged in as %s (%d coins)\n", identity.Name, identity.Coins)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.MarkFlagRequired("email")

	return cmd
}

func newLogoutCmd(build appBuilder) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Discard the persisted session",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := build()
			if err != nil {
				return err
			}

			a.session.Terminate()
			fmt.Println("Logged out")
			return nil
		},
	}
}

func newMeCmd(build appBuilder) *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the signed-in account",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := build()
			if err != nil {
				return err
			}

			identity, err := a.requireSession()
			if err != nil {
				return err
			}

			fmt.Printf("%s <%s>\n", identity.Name, identity.Email)
			fmt.Printf("Coins: %d\n", identity.Coins)
			if len(identity.Badges) > 0 {
				fmt.Printf("Badges: %s\n", strings.Join(identity.Badges, ", "))
			}
			if identity.IsAdmin() {
				fmt.Println("Role: admin")
			}
			return nil
		},
	}
}

func newDailyCmd(build appBuilder) *cobra.Command {
	return &cobra.Command{
		Use:   "daily",
		Short: "Claim the daily reward",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := build()
			if err != nil {
				return err
			}
			if _, err := a.requireSession(); err != nil {
				return err
			}

			// outcome reporting happens through the notification sink
			if _, err := a.actions.ClaimDaily(); err != nil {
				return err
			}
			return nil
		},
	}
}

func newTasksCmd(build appBuilder) *cobra.Command {
	var category, difficulty string
	var completed bool

	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List available tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := build()
			if err != nil {
				return err
			}
			if _, err := a.requireSession(); err != nil {
				return err
			}

			if completed {
				completions, err := a.session.Client().CompletedTasks()
				if err != nil {
					return err
				}
				for _, c := range completions {
					fmt.Printf("%s  task %s  +%d coins\n",
						c.CompletedAt.Format("2006-01-02 15:04"), c.TaskID, c.CoinsEarned)
				}
				return nil
			}

			tasks, err := a.session.Client().ListTasks(vitacoin_client.TaskFilters{
				Category:   models.TaskCategory(category),
				Difficulty: models.TaskDifficulty(difficulty),
			})
			if err != nil {
				return err
			}

			printTasks(tasks)
			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "filter by category (daily, weekly, achievement, special)")
	cmd.Flags().StringVar(&difficulty, "difficulty", "", "filter by difficulty (easy, medium, hard)")
	cmd.Flags().BoolVar(&completed, "completed", false, "show completion history instead")

	return cmd
}

func printTasks(tasks []models.Task) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tCATEGORY\tREWARD\tSTATUS")
	for _, t := range tasks {
		status := t.Progress
		if t.Completed {
			status = "done"
		} else if t.Claimable {
			status = "claimable"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", t.ID, t.Title, t.Category, t.CoinsReward, status)
	}
	w.Flush()
}

func newClaimCmd(build appBuilder) *cobra.Command {
	return &cobra.Command{
		Use:   "claim <task-id>",
		Short: "Claim a task reward",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := build()
			if err != nil {
				return err
			}
			if _, err := a.requireSession(); err != nil {
				return err
			}

			if _, err := a.actions.ClaimTask(args[0]); err != nil {
				return err
			}
			return nil
		},
	}
}

func newActivityCmd(build appBuilder) *cobra.Command {
	return &cobra.Command{
		Use:   "activity <type>",
		Short: "Record an activity event (e.g. click)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := build()
			if err != nil {
				return err
			}
			if _, err := a.requireSession(); err != nil {
				return err
			}

			return a.actions.RecordActivity(args[0])
		},
	}
}

func newLeaderboardCmd(build appBuilder) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Show the coin leaderboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := build()
			if err != nil {
				return err
			}
			if _, err := a.requireSession(); err != nil {
				return err
			}

			if limit == 0 {
				limit = a.config.LeaderboardLimit
			}
			entries, err := a.actions.RefreshLeaderboard(limit)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "RANK\tNAME\tCOINS")
			for _, e := range entries {
				fmt.Fprintf(w, "%d\t%s\t%d\n", e.Rank, e.Name, e.Coins)
			}
			w.Flush()
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "number of entries to show")

	return cmd
}

func newTransactionsCmd(build appBuilder) *cobra.Command {
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "transactions",
		Short: "Show the coin ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := build()
			if err != nil {
				return err
			}
			if _, err := a.requireSession(); err != nil {
				return err
			}

			if limit == 0 {
				limit = a.config.TransactionsPageSize
			}
			transactions, err := a.session.Client().Transactions(limit, offset)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "WHEN\tAMOUNT\tDESCRIPTION")
			for _, t := range transactions {
				amount := t.Amount
				if t.Type == models.TransactionDebit {
					amount = -amount
				}
				fmt.Fprintf(w, "%s\t%+d\t%s\n",
					t.CreatedAt.Format("2006-01-02 15:04"), amount, t.Description)
			}
			w.Flush()
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "page size")
	cmd.Flags().IntVar(&offset, "offset", 0, "page offset")

	return cmd
}

func newWatchCmd(build appBuilder) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Stream live balance and leaderboard updates",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := build()
			if err != nil {
				return err
			}
			identity, err := a.requireSession()
			if err != nil {
				return err
			}

			ch, err := channel.Dial(a.config.APIBaseURL, identity.ID, channel.DefaultConfig(), nil)
			if err != nil {
				return err
			}
			defer ch.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			log.Info().Str("user_id", identity.ID).Msg("watching for push events")
			fmt.Println("Watching for updates (ctrl-c to stop)...")

			reconcile.New(a.session, a.state, a.sink).Run(ctx, ch.Events())
			return nil
		},
	}
}
