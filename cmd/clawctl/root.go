package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/openclusterclaw/clawctl/api"
	"github.com/openclusterclaw/clawctl/configs"
	"github.com/openclusterclaw/clawctl/credentials"
	"github.com/openclusterclaw/clawctl/instances"
	"github.com/openclusterclaw/clawctl/internal/config"
	"github.com/openclusterclaw/clawctl/otp"
	"github.com/openclusterclaw/clawctl/projects"
	"github.com/openclusterclaw/clawctl/session"
	"github.com/openclusterclaw/clawctl/tenants"
)

// console bundles everything the command tree needs: the session layer and
// the typed resource clients, all riding the same request pipeline.
type console struct {
	cfg       config.Config
	tokens    *session.TokenManager
	guard     *session.Guard
	apiClient *api.Client
	instances *instances.Client
	tenants   *tenants.Client
	projects  *projects.Client
	configs   *configs.Client
	otp       *otp.Client
}

func newConsole(cfg config.Config) (*console, error) {
	repo, err := credentials.NewFileRepo(cfg.GetHomeDir())
	if err != nil {
		return nil, fmt.Errorf("open credential store: %w", err)
	}
	tokens, err := session.NewTokenManager(repo)
	if err != nil {
		return nil, err
	}
	apiClient, err := api.New(cfg, tokens)
	if err != nil {
		return nil, err
	}
	apiClient.Pipeline().SetExpiredFunc(func() {
		fmt.Fprintln(os.Stderr, "Session expired. Run 'clawctl login' to sign in again.")
	})

	c := &console{
		cfg:       cfg,
		tokens:    tokens,
		guard:     session.NewGuard(tokens),
		apiClient: apiClient,
	}
	if c.instances, err = instances.NewClient(apiClient); err != nil {
		return nil, err
	}
	if c.tenants, err = tenants.NewClient(apiClient); err != nil {
		return nil, err
	}
	if c.projects, err = projects.NewClient(apiClient); err != nil {
		return nil, err
	}
	if c.configs, err = configs.NewClient(apiClient); err != nil {
		return nil, err
	}
	if c.otp, err = otp.NewClient(apiClient); err != nil {
		return nil, err
	}
	return c, nil
}

// requireSession is the route guard for protected command trees: the command
// path plays the role of the protected location, carried on the error so the
// login hint can name it.
func (c *console) requireSession(cmd *cobra.Command, _ []string) error {
	if err := c.guard.Check(cmd.CommandPath()); err != nil {
		return fmt.Errorf("%w\nRun 'clawctl login' first", err)
	}
	return nil
}

func (c *console) printJSON(v interface{}) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}

func newRootCommand(cfg config.Config) (*cobra.Command, error) {
	setupLogging(cfg.GetLogLevel())

	c, err := newConsole(cfg)
	if err != nil {
		return nil, err
	}

	root := &cobra.Command{
		Use:           "clawctl",
		Short:         "Admin console for the Open Cluster Claw control plane",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetHelpTemplate(banner(cfg.GetAppName()) + root.HelpTemplate())

	root.AddCommand(c.newLoginCommand())
	root.AddCommand(c.newLogoutCommand())
	root.AddCommand(c.newWhoamiCommand())
	root.AddCommand(c.newOTPCommand())
	root.AddCommand(c.newInstanceCommand())
	root.AddCommand(c.newTenantCommand())
	root.AddCommand(c.newProjectCommand())
	root.AddCommand(c.newTemplateCommand())
	return root, nil
}

func setupLogging(level string) {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		parsed = zerolog.WarnLevel
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(parsed)
}

func banner(appname string) string {
	fig := figure.NewFigure(appname, "cybermedium", true)
	return fig.String() + "\n"
}
