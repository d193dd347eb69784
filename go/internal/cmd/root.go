package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vitacoin/vitacoin-go/go/clients/vitacoin_client"
	"github.com/vitacoin/vitacoin-go/go/internal/clientconfig"
	"github.com/vitacoin/vitacoin-go/go/internal/models"
	"github.com/vitacoin/vitacoin-go/go/internal/notify"
	"github.com/vitacoin/vitacoin-go/go/internal/reconcile"
	"github.com/vitacoin/vitacoin-go/go/internal/session"
	"github.com/vitacoin/vitacoin-go/go/internal/tokenstore"
)

// app bundles the wired client stack for one command invocation. The session
// is an explicit dependency handed to whatever needs it, never a global.
type app struct {
	config  clientconfig.Config
	session *session.Store
	state   *reconcile.ViewState
	actions *reconcile.Actions
	feed    *notify.Feed
	sink    notify.Sink
}

func buildApp(configPath, apiURL string) (*app, error) {
	var config clientconfig.Config
	if configPath != "" {
		loaded, err := clientconfig.LoadFile(configPath)
		if err != nil {
			return nil, err
		}
		config = loaded
	} else {
		config = clientconfig.NewConfigFromEnv()
	}
	if apiURL != "" {
		config.APIBaseURL = apiURL
	}

	tokens, err := tokenstore.NewStore(config.TokenDir)
	if err != nil {
		return nil, err
	}

	sess := session.NewStore(vitacoin_client.NewVitacoinClient(config.APIBaseURL), tokens)
	state := reconcile.NewViewState()
	feed := notify.NewFeed(32)

	// every notification is printed as it happens
	sink := notify.Multi{feed, notify.FuncSink(printNotification)}

	return &app{
		config:  config,
		session: sess,
		state:   state,
		actions: reconcile.NewActions(sess, state, sink),
		feed:    feed,
		sink:    sink,
	}, nil
}

// requireSession resumes the persisted session or fails with a login hint.
func (a *app) requireSession() (*models.Identity, error) {
	identity, err := a.session.Resume()
	if err != nil {
		return nil, fmt.Errorf("not logged in (run 'vitacoin login'): %w", err)
	}
	return identity, nil
}

func printNotification(n notify.Notification) {
	switch n.Kind {
	case notify.KindError:
		fmt.Fprintf(os.Stderr, "! %s\n", n.Message)
	default:
		fmt.Printf("* %s\n", n.Message)
	}
}

func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(password), nil
}

func newRootCmd() *cobra.Command {
	var configPath, apiURL string
	var verbose bool

	root := &cobra.Command{
		Use:           "vitacoin",
		Short:         "Client for the Vitacoin rewards platform",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")
	root.PersistentFlags().StringVar(&apiURL, "api-url", "", "backend base URL (overrides config)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	build := func() (*app, error) { return buildApp(configPath, apiURL) }

	root.AddCommand(
		newRegisterCmd(build),
		newLoginCmd(build),
		newLogoutCmd(build),
		newMeCmd(build),
		newDailyCmd(build),
		newTasksCmd(build),
		newClaimCmd(build),
		newActivityCmd(build),
		newLeaderboardCmd(build),
		newTransactionsCmd(build),
		newWatchCmd(build),
	)

	return root
}
