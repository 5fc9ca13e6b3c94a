// Licensed under the Apache License, Version 2.0 (the "License"); you may not
// use this file except in compliance with the License. You may obtain a copy of
// the License at
//
//  http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
// License for the specific language governing permissions and limitations under
// the License.

// Package cmd implements the couchdb2 command line tool.
package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/go-couchdb2/couchdb2"
	"github.com/go-couchdb2/couchdb2/cmd/couchdb2/config"
	"github.com/go-couchdb2/couchdb2/cmd/couchdb2/errors"
	"github.com/go-couchdb2/couchdb2/cmd/couchdb2/log"
	"github.com/go-couchdb2/couchdb2/cmd/couchdb2/output"
)

type root struct {
	confFile       string
	passwordPrompt bool
	debug          bool
	verbose        bool
	silent         bool

	retryCount   int
	retryDelay   string
	retryTimeout string

	retryDelayParsed   time.Duration
	retryTimeoutParsed time.Duration

	log  log.Logger
	conf *config.Config
	cmd  *cobra.Command
	fmt  *output.Formatter

	srv *couchdb2.Server
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute(ctx context.Context) {
	lg := log.New()
	root := rootCmd(lg)
	os.Exit(root.execute(ctx))
}

func (r *root) execute(ctx context.Context) int {
	err := r.cmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	r.log.Error(err.Error())
	return extractExitCode(err)
}

func extractExitCode(err error) int {
	if code := errors.InspectErrorCode(err); code != 0 {
		return code
	}
	// Any unhandled errors are assumed to be from Cobra, so return a usage
	// error
	return errors.ErrUsage
}

func rootCmd(lg log.Logger) *root {
	r := &root{
		log:  lg,
		conf: config.New(),
		fmt:  output.New(),
	}
	r.cmd = &cobra.Command{
		Use:               "couchdb2",
		Short:             "couchdb2 is a command line interface to CouchDB v2.x",
		Long:              `This tool interacts with the HTTP API of a CouchDB v2.x server`,
		PersistentPreRunE: r.init,
		SilenceErrors:     true,
		SilenceUsage:      true,
	}

	pf := r.cmd.PersistentFlags()
	r.fmt.ConfigFlags(pf)
	pf.StringVar(&r.confFile, "settings", "", "Path to a settings file, merged over ~/.couchdb2 and ./settings.json")
	pf.StringP("server", "S", "", "CouchDB server URL, including port number")
	pf.StringP("database", "d", "", "Database to operate on")
	pf.StringP("username", "u", "", "CouchDB username")
	pf.StringP("password", "p", "", "CouchDB password")
	pf.BoolVarP(&r.passwordPrompt, "password-prompt", "q", false, "Prompt for the CouchDB password")
	pf.String("ca-file", "", "Path of a CA certificate PEM file or directory, to verify the server certificate")
	pf.Bool("no-session", false, "Send credentials with each request instead of establishing a session")
	pf.Duration("timeout", 0, "Time limit for each request")
	pf.BoolVarP(&r.verbose, "verbose", "v", false, "Print progress messages")
	pf.BoolVarP(&r.silent, "silent", "s", false, "Print no messages, not even progress")
	pf.BoolVar(&r.debug, "debug", false, "Enable debug output")
	pf.IntVar(&r.retryCount, "retry", 0, "In case of transient error, retry up to this many times. A negative value retries forever.")
	pf.StringVar(&r.retryDelay, "retry-delay", "", "Delay between retry attempts. Disables the default exponential backoff algorithm.")
	pf.StringVar(&r.retryTimeout, "retry-timeout", "", "When used with --retry, no more retries will be attempted after this timeout.")

	r.cmd.AddCommand(versionCmd(r))
	r.cmd.AddCommand(listCmd(r))
	r.cmd.AddCommand(createCmd(r))
	r.cmd.AddCommand(destroyCmd(r))
	r.cmd.AddCommand(infoCmd(r))
	r.cmd.AddCommand(compactCmd(r))
	r.cmd.AddCommand(viewCleanupCmd(r))
	r.cmd.AddCommand(securityCmd(r))
	r.cmd.AddCommand(getCmd(r))
	r.cmd.AddCommand(putCmd(r))
	r.cmd.AddCommand(deleteCmd(r))
	r.cmd.AddCommand(attachCmd(r))
	r.cmd.AddCommand(detachCmd(r))
	r.cmd.AddCommand(getAttachmentCmd(r))
	r.cmd.AddCommand(designsCmd(r))
	r.cmd.AddCommand(designCmd(r))
	r.cmd.AddCommand(viewCmd(r))
	r.cmd.AddCommand(dumpCmd(r))
	r.cmd.AddCommand(undumpCmd(r))

	return r
}

func parseDuration(val string) (time.Duration, error) {
	if val == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, errors.Code(errors.ErrUsage, err)
	}
	if d < 0 {
		return 0, errors.Code(errors.ErrUsage, "negative timeout not permitted")
	}
	return d, nil
}

func (r *root) init(cmd *cobra.Command, _ []string) error {
	r.log.SetOut(cmd.OutOrStdout())
	r.log.SetErr(cmd.ErrOrStderr())
	r.log.SetDebug(r.debug)
	r.log.SetVerbose(r.verbose)
	r.log.SetSilent(r.silent)

	r.log.Debug("Debug mode enabled")

	var err error
	r.retryDelayParsed, err = parseDuration(r.retryDelay)
	if err != nil {
		return err
	}
	r.retryTimeoutParsed, err = parseDuration(r.retryTimeout)
	if err != nil {
		return err
	}

	if err := r.conf.BindFlags(cmd.Flags()); err != nil {
		return err
	}
	if err := r.conf.Read(r.confFile, r.log); err != nil {
		return err
	}

	if r.passwordPrompt {
		password, err := promptPassword(r.conf.Username())
		if err != nil {
			return err
		}
		r.conf.SetPassword(password)
	}
	return nil
}

func promptPassword(username string) (string, error) {
	fmt.Fprintf(os.Stderr, "Password for %s: ", username)
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", errors.WithCode(err, errors.ErrNoInput)
	}
	return string(password), nil
}

// server returns a connection to the configured server, establishing it on
// the first call.
func (r *root) server() (*couchdb2.Server, error) {
	if r.srv != nil {
		return r.srv, nil
	}
	opts := []couchdb2.Option{
		couchdb2.WithHTTPClient(&http.Client{Timeout: r.conf.Timeout()}),
	}
	if ca := r.conf.CAFile(); ca != "" {
		opts = append(opts, couchdb2.WithCAFile(ca))
	}
	if username := r.conf.Username(); username != "" {
		if r.conf.NoSession() {
			opts = append(opts, couchdb2.WithBasicAuth(username, r.conf.Password()))
		} else {
			opts = append(opts, couchdb2.WithSession(username, r.conf.Password()))
		}
	}
	srv, err := couchdb2.New(r.conf.Server(), opts...)
	if err != nil {
		return nil, err
	}
	r.log.Debugf("server: %s", srv.DSN())
	r.srv = srv
	return srv, nil
}

// db returns a handle for the configured database. No existence check is
// performed.
func (r *root) db() (*couchdb2.Database, error) {
	srv, err := r.server()
	if err != nil {
		return nil, err
	}
	name := r.conf.Database()
	if name == "" {
		return nil, errors.Code(errors.ErrUsage, "no database specified")
	}
	return srv.DB(name), nil
}

func (r *root) retry(fn func() error) error {
	if r.retryCount == 0 {
		return fn()
	}
	var bo backoff.BackOff
	switch {
	case r.retryDelayParsed == 0 && r.retryDelay != "": // Disables retry delay
		bo = &backoff.ZeroBackOff{}
	case r.retryDelayParsed != 0:
		bo = backoff.NewConstantBackOff(r.retryDelayParsed)
	default:
		bo = backoff.NewExponentialBackOff()
	}
	if r.retryCount >= 0 {
		// WithMaxRetries really means WithMaxTries, so +1
		bo = backoff.WithMaxRetries(bo, uint64(r.retryCount+1))
	}
	if r.retryTimeoutParsed > 0 {
		ctx, cancel := context.WithTimeout(context.Background(), r.retryTimeoutParsed)
		defer cancel()
		bo = backoff.WithContext(bo, ctx)
	}
	var count int
	var err error
	return backoff.Retry(func() error {
		if count > 0 {
			msg := fmt.Sprintf("Warning: Transient problem: %s.", err)
			switch nbo := bo.NextBackOff(); nbo {
			case backoff.Stop, 0:
			default:
				msg += fmt.Sprintf(" Will retry in %s.", fmtDuration(nbo))
			}
			if remain := r.retryCount - count; remain > 0 {
				msg += fmt.Sprintf(" %d retries left.", remain)
			}
			r.log.Error(msg)
		}
		count++
		err = fn()
		return err
	}, bo)
}

// nolint:gomnd
func fmtDuration(dur time.Duration) string {
	s := dur.Seconds()
	if s < 60 {
		return fmt.Sprintf("%0.2fs", s)
	}
	m := int(s / 60)
	s -= float64(m) * 60
	if m < 60 {
		return fmt.Sprintf("%dm%ds", m, int(s))
	}
	h := m / 60
	m -= h * 60
	return fmt.Sprintf("%dh%dm", h, m)
}

// progress returns a Progress callback that reports running counts of a dump
// or restore through the logger.
func (r *root) progress(verb string) couchdb2.Progress {
	return func(docs, atts int) {
		r.log.Progressf("%s %d documents, %d attachments", verb, docs, atts)
	}
}
