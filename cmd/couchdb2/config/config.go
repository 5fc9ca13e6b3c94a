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

// Package config handles program configuration.
package config

import (
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/go-couchdb2/couchdb2/cmd/couchdb2/errors"
	"github.com/go-couchdb2/couchdb2/cmd/couchdb2/log"
)

// Default settings file locations, in increasing order of precedence.
const (
	homeSettingsFile = "~/.couchdb2"
	cwdSettingsFile  = "settings.json"
)

// Config holds the effective program settings, merged from the default
// settings files, an explicit settings file, environment variables, and
// command line flags, in increasing order of precedence.
type Config struct {
	v   *viper.Viper
	log log.Logger
}

// New returns a Config populated only with defaults. Call Read to merge the
// settings sources.
func New() *Config {
	v := viper.New()
	v.SetConfigType("json")
	v.SetDefault("server", "http://localhost:5984/")
	v.SetDefault("database", "")
	v.SetDefault("username", "")
	v.SetDefault("password", "")
	v.SetDefault("ca_file", "")
	v.SetDefault("no_session", false)
	v.SetDefault("timeout", time.Duration(0))
	return &Config{v: v}
}

// BindFlags gives the named flags the highest precedence. Each flag overrides
// the corresponding settings key only when it was set on the command line.
func (c *Config) BindFlags(fs *pflag.FlagSet) error {
	for key, flag := range map[string]string{
		"server":     "server",
		"database":   "database",
		"username":   "username",
		"password":   "password",
		"ca_file":    "ca-file",
		"no_session": "no-session",
		"timeout":    "timeout",
	} {
		if f := fs.Lookup(flag); f != nil {
			if err := c.v.BindPFlag(key, f); err != nil {
				return err
			}
		}
	}
	return nil
}

// Read merges the settings sources into c. The default settings files,
// ~/.couchdb2 and ./settings.json, are merged first, when they exist; then
// the explicitly named file, which must exist when named; then the
// environment.
func (c *Config) Read(filename string, lg log.Logger) error {
	c.log = lg
	for _, name := range []string{homeSettingsFile, cwdSettingsFile} {
		if err := c.mergeFile(resolveHome(name), false); err != nil {
			return err
		}
	}
	if filename != "" {
		if err := c.mergeFile(resolveHome(filename), true); err != nil {
			return err
		}
	}
	// The primary environment form is COUCHDB2_<KEY>; the COUCHDB_<KEY> and
	// bare forms are accepted for the connection settings.
	for key, vars := range map[string][]string{
		"server":     {"COUCHDB2_SERVER", "COUCHDB_SERVER", "SERVER"},
		"database":   {"COUCHDB2_DATABASE", "COUCHDB_DATABASE", "DATABASE"},
		"username":   {"COUCHDB2_USERNAME", "COUCHDB_USERNAME", "USERNAME"},
		"password":   {"COUCHDB2_PASSWORD", "COUCHDB_PASSWORD", "PASSWORD"},
		"ca_file":    {"COUCHDB2_CA_FILE", "COUCHDB_CA_FILE"},
		"no_session": {"COUCHDB2_NO_SESSION", "COUCHDB_NO_SESSION"},
		"timeout":    {"COUCHDB2_TIMEOUT", "COUCHDB_TIMEOUT"},
	} {
		if err := c.v.BindEnv(append([]string{key}, vars...)...); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) mergeFile(filename string, required bool) error {
	f, err := os.Open(filename)
	if err != nil {
		if os.IsNotExist(err) && !required {
			c.log.Debugf("no settings file %q", filename)
			return nil
		}
		return errors.WithCode(err, errors.ErrNoInput)
	}
	defer f.Close()
	if err := c.v.MergeConfig(f); err != nil {
		return errors.WithCode(err, errors.ErrData)
	}
	c.log.Debugf("merged settings file %q", filename)
	return nil
}

func resolveHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	usr, _ := user.Current()
	return filepath.Join(usr.HomeDir, path[2:])
}

// Server returns the server URL.
func (c *Config) Server() string {
	return c.v.GetString("server")
}

// Database returns the default database name, which may be empty.
func (c *Config) Database() string {
	return c.v.GetString("database")
}

// Username returns the username to authenticate with, which may be empty.
func (c *Config) Username() string {
	return c.v.GetString("username")
}

// Password returns the password to authenticate with, which may be empty.
func (c *Config) Password() string {
	return c.v.GetString("password")
}

// SetPassword overrides the configured password. Used when the password is
// read interactively.
func (c *Config) SetPassword(password string) {
	c.v.Set("password", password)
}

// CAFile returns the path of a CA certificate PEM file or directory, which
// may be empty.
func (c *Config) CAFile() string {
	return c.v.GetString("ca_file")
}

// NoSession reports whether to send credentials with every request instead of
// establishing a server-side session.
func (c *Config) NoSession() bool {
	return c.v.GetBool("no_session")
}

// Timeout returns the request timeout. Zero means no timeout.
func (c *Config) Timeout() time.Duration {
	return c.v.GetDuration("timeout")
}
