// Package cli implements the databag and decrypt-data-bag commands.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jessevdk/go-flags"
	"github.com/sirupsen/logrus"

	"github.com/lovincyrus/databag/internal/crypto"
	"github.com/lovincyrus/databag/internal/databag"
	"github.com/lovincyrus/databag/internal/secret"
	"github.com/lovincyrus/databag/internal/store"
)

// GlobalOptions apply to every command.
type GlobalOptions struct {
	Verbose   bool   `short:"v" long:"verbose" description:"Log each decryption stage"`
	LogFormat string `long:"log-format" choice:"text" choice:"json" description:"Log format (default: $DATABAG_LOG_FORMAT or text)"`
	HistoryDB string `long:"history-db" value-name:"PATH" description:"Record runs in this sqlite database (default: $DATABAG_HISTORY_DB)"`
}

// Command is the databag command set.
type Command struct {
	GlobalOptions

	Decrypt DecryptCommand `command:"decrypt" alias:"d" description:"Decrypt an encrypted data bag item"`
	Encrypt EncryptCommand `command:"encrypt" alias:"e" description:"Encrypt a plain data bag item"`
	History HistoryCommand `command:"history" description:"Show recorded runs"`
}

// promptSecret reads a secret interactively; replaced in tests.
var promptSecret = readTerminalSecret

// app carries what every command needs besides its own flags.
type app struct {
	cfg    Config
	global *GlobalOptions

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	readSecret func(prompt io.Writer) ([]byte, error)

	log *logrus.Logger
}

func newApp(global *GlobalOptions, stdin io.Reader, stdout, stderr io.Writer) (*app, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	return &app{
		cfg:        cfg,
		global:     global,
		stdin:      stdin,
		stdout:     stdout,
		stderr:     stderr,
		readSecret: promptSecret,
	}, nil
}

func (a *app) logger() *logrus.Logger {
	if a.log == nil {
		format := a.cfg.LogFormat
		if a.global.LogFormat != "" {
			format = a.global.LogFormat
		}
		a.log = newLogger(a.stderr, a.cfg.LogLevel, format, a.global.Verbose)
	}
	return a.log
}

func (a *app) historyPath() string {
	if a.global.HistoryDB != "" {
		return a.global.HistoryDB
	}
	return a.cfg.HistoryDB
}

// loadSecret resolves the secret source: the terminal when prompt is set,
// otherwise the first non-empty path of arg, flag and configured default.
func (a *app) loadSecret(prompt bool, paths ...string) (*secret.Key, error) {
	if prompt {
		b, err := a.readSecret(a.stderr)
		if err != nil {
			return nil, err
		}
		defer crypto.Zero(b)
		return secret.Load(secret.Inline(b))
	}

	path := a.cfg.SecretFile
	for _, p := range paths {
		if p != "" {
			path = p
			break
		}
	}
	if path == "" {
		path = DefaultSecretFile
	}
	a.logger().WithField("path", path).Debug("loading secret")
	return secret.Load(secret.File(path))
}

// record writes a history row when a history database is configured.
// Failing to record is logged, not fatal.
func (a *app) record(entry store.HistoryEntry) {
	path := a.historyPath()
	if path == "" {
		return
	}
	log := a.logger().WithField("history", path)

	db, err := store.Open(path)
	if err != nil {
		log.WithError(err).Warn("could not open history database")
		return
	}
	defer db.Close()

	if err := db.LogDecrypt(entry); err != nil {
		log.WithError(err).Warn("could not record history")
	}
}

func formatVersions(vs []databag.Version) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = v.String()
	}
	return strings.Join(parts, ",")
}

func outcome(err error) string {
	if err == nil {
		return store.OutcomeOK
	}
	return errorKind(err)
}

// finish turns a parse or command error into an exit status.
func (a *app) finish(parser *flags.Parser, err error) int {
	if err == nil {
		return 0
	}

	var ferr *flags.Error
	if errors.As(err, &ferr) {
		if ferr.Type == flags.ErrHelp {
			fmt.Fprintln(a.stdout, ferr.Message)
			return 0
		}
		fmt.Fprintf(a.stderr, "%s\n\n", ferr.Message)
		parser.WriteHelp(a.stderr)
		return 1
	}

	fmt.Fprintf(a.stderr, "Error (%s): %v\n", errorKind(err), err)
	return 1
}

// Main runs the databag command set and returns the exit status.
func Main(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var cmd Command
	a, err := newApp(&cmd.GlobalOptions, stdin, stdout, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	cmd.Decrypt.app = a
	cmd.Encrypt.app = a
	cmd.History.app = a

	parser := flags.NewParser(&cmd, flags.HelpFlag|flags.PassDoubleDash)
	parser.Name = "databag"

	_, err = parser.ParseArgs(args)
	return a.finish(parser, err)
}

// DecryptMain runs decrypt-data-bag: ENCRYPTED OUTPUT [SECRET].
func DecryptMain(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var (
		cmd    DecryptCommand
		global GlobalOptions
	)
	a, err := newApp(&global, stdin, stdout, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	cmd.app = a

	parser := flags.NewParser(&cmd, flags.HelpFlag|flags.PassDoubleDash)
	parser.Name = "decrypt-data-bag"
	if _, err := parser.AddGroup("Global Options", "", &global); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	// The parser only runs Execute for subcommands; this one is the top level.
	rest, err := parser.ParseArgs(args)
	if err == nil {
		err = cmd.Execute(rest)
	}
	return a.finish(parser, err)
}

// Run is the entry point for cmd/ main packages.
func Run(entry func([]string, io.Reader, io.Writer, io.Writer) int) {
	os.Exit(entry(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}
