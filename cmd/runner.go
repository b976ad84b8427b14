package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/ytlinks/internal/client"
	"github.com/desertthunder/ytlinks/internal/services"
	"github.com/desertthunder/ytlinks/internal/shared"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config      *shared.Config
	configPath  string
	api         *client.APIClient
	httpClient  *http.Client
	logger      *log.Logger
	output      io.Writer
	input       io.Reader
	sessionPath string
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config      *shared.Config
	ConfigPath  string
	API         *client.APIClient
	HTTPClient  *http.Client
	Logger      *log.Logger
	Output      io.Writer
	Input       io.Reader
	SessionPath string // Defaults to client.session_path, then ~/.ytlinks/session.json
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Input == nil {
		opts.Input = os.Stdin
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.API == nil {
		opts.API = client.NewAPIClient(opts.Config.Client.APIURL, opts.HTTPClient)
	}
	if opts.SessionPath == "" {
		opts.SessionPath = opts.Config.Client.SessionPath
	}

	return &Runner{
		config:      opts.Config,
		configPath:  opts.ConfigPath,
		api:         opts.API,
		httpClient:  opts.HTTPClient,
		logger:      opts.Logger,
		output:      opts.Output,
		input:       opts.Input,
		sessionPath: opts.SessionPath,
	}
}

// SetLogger replaces the logger, e.g. to keep log lines off the TUI.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, serveCommand, workerCommand, usersCommand, linksCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

func (r *Runner) resolveSessionPath() (string, error) {
	if r.sessionPath != "" {
		return r.sessionPath, nil
	}
	return client.DefaultSessionPath()
}

// session loads the saved session and attaches its token to the API client.
func (r *Runner) session() (*client.Session, error) {
	path, err := r.resolveSessionPath()
	if err != nil {
		return nil, err
	}

	s, err := client.LoadSession(path)
	if err != nil {
		if errors.Is(err, shared.ErrNoSession) {
			return nil, fmt.Errorf("%w: run `ytlinks users login <email>` first", shared.ErrNotAuthenticated)
		}
		return nil, err
	}
	r.api.SetToken(s.Token)
	return s, nil
}

func (r *Runner) saveSession(s *client.Session) error {
	path, err := r.resolveSessionPath()
	if err != nil {
		return err
	}
	return client.SaveSession(path, s)
}

// sender returns the local webhook client, or nil when no webhook URL is configured.
func (r *Runner) sender() services.Sender {
	if r.config.Webhook.TranscriptURL == "" && r.config.Webhook.ChatURL == "" {
		return nil
	}
	return services.NewWebhookClientFromConfig(r.config.Webhook)
}

func parseID(raw string) (int64, error) {
	if raw == "" {
		return 0, fmt.Errorf("%w: link id", shared.ErrMissingArgument)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: link id %q", shared.ErrInvalidArgument, raw)
	}
	return id, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
