// Package config loads the configuration of a daggerok Context from files, maps and
// the environment.
package config

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/jrivets/log4g"
	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/mohae/deepcopy"
	"github.com/pkg/errors"
)

// Config holds the settings applied to a Context before it is initialized.
type Config struct {
	// SearchScopes contains the package paths searched for components
	SearchScopes []string `json:"searchScopes" mapstructure:"searchScopes"`

	// ComponentMarker is the marker of component types
	ComponentMarker string `json:"componentMarker" mapstructure:"componentMarker"`

	// InjectMarker is the marker of inject constructors
	InjectMarker string `json:"injectMarker" mapstructure:"injectMarker"`

	FailOnInjectNullRef          bool `json:"failOnInjectNullRef" mapstructure:"failOnInjectNullRef"`
	FailOnBeanCreationError      bool `json:"failOnBeanCreationError" mapstructure:"failOnBeanCreationError"`
	FailOnUnknownDiscoveryErrors bool `json:"failOnUnknownDiscoveryErrors" mapstructure:"failOnUnknownDiscoveryErrors"`
}

const (
	// DefaultComponentMarker matches daggerok.Singleton
	DefaultComponentMarker = "singleton"
	// DefaultInjectMarker matches daggerok.Inject
	DefaultInjectMarker = "inject"
)

var configLog = log4g.GetLogger("daggerok.config")

// GetDefaultConfig returns the configuration with default markers, no search scopes
// and every failure policy disabled.
func GetDefaultConfig() *Config {
	c := new(Config)
	c.ComponentMarker = DefaultComponentMarker
	c.InjectMarker = DefaultInjectMarker
	return c
}

// Apply overrides c's properties by non-default values from other. The failure
// policies can only be switched on.
func (c *Config) Apply(other *Config) {
	if other == nil {
		return
	}
	if len(other.SearchScopes) != 0 {
		c.SearchScopes = deepcopy.Copy(other.SearchScopes).([]string)
	}
	if other.ComponentMarker != "" {
		c.ComponentMarker = other.ComponentMarker
	}
	if other.InjectMarker != "" {
		c.InjectMarker = other.InjectMarker
	}
	c.FailOnInjectNullRef = c.FailOnInjectNullRef || other.FailOnInjectNullRef
	c.FailOnBeanCreationError = c.FailOnBeanCreationError || other.FailOnBeanCreationError
	c.FailOnUnknownDiscoveryErrors = c.FailOnUnknownDiscoveryErrors || other.FailOnUnknownDiscoveryErrors
}

// Validate checks the markers are set.
func (c *Config) Validate() error {
	if c.ComponentMarker == "" {
		return errors.New("invalid config; componentMarker must be non-empty")
	}
	if c.InjectMarker == "" {
		return errors.New("invalid config; injectMarker must be non-empty")
	}
	return nil
}

// FromMap decodes a configuration from generic values, for example a section of a
// larger configuration file.
//
// Input is weakly typed: "true" decodes to a bool and a comma separated string decodes
// to a list of search scopes.
func FromMap(params map[string]any) (*Config, error) {
	c := &Config{}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToSliceHookFunc(","),
		WeaklyTypedInput: true,
		Result:           c,
	})
	if err != nil {
		return nil, errors.Wrap(err, "could not create config decoder")
	}

	if err := dec.Decode(params); err != nil {
		return nil, errors.Wrapf(err, "unable to decode params=%v", params)
	}

	c.SearchScopes = trimScopes(c.SearchScopes)
	return c, nil
}

// ReadFromFile reads a JSON configuration file. It returns nil and no error if filename
// is empty or the file does not exist.
func ReadFromFile(filename string) (*Config, error) {
	if filename == "" {
		return nil, nil
	}

	if _, err := os.Stat(filename); os.IsNotExist(err) {
		configLog.Warn("There is no file ", filename, " for reading daggerok config, will use default configuration.")
		return nil, nil
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "could not read data from config file %s", filename)
	}

	c := &Config{}
	if err := json.Unmarshal(data, c); err != nil {
		return nil, errors.Wrapf(err, "could not unmarshal json data from config file %s", filename)
	}

	configLog.Info("Configuration read from ", filename)
	return c, nil
}

// Environment variable suffixes read by FromEnv.
const (
	EnvSearchScopes                 = "SEARCH_SCOPES"
	EnvComponentMarker              = "COMPONENT_MARKER"
	EnvInjectMarker                 = "INJECT_MARKER"
	EnvFailOnInjectNullRef          = "FAIL_ON_INJECT_NULL_REF"
	EnvFailOnBeanCreationError      = "FAIL_ON_BEAN_CREATION_ERROR"
	EnvFailOnUnknownDiscoveryErrors = "FAIL_ON_UNKNOWN_DISCOVERY_ERRORS"
)

// FromEnv reads a configuration from environment variables named prefix + "_" + suffix,
// for example DAGGEROK_SEARCH_SCOPES. Variables from the given .env files are loaded
// first; files that do not exist are skipped. Variables already set in the environment
// are not overridden by the files.
func FromEnv(prefix string, envFiles ...string) (*Config, error) {
	for _, f := range envFiles {
		if _, err := os.Stat(f); os.IsNotExist(err) {
			configLog.Debug("No env file ", f)
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return nil, errors.Wrapf(err, "could not load env file %s", f)
		}
	}

	fields := map[string]string{
		EnvSearchScopes:                 "searchScopes",
		EnvComponentMarker:              "componentMarker",
		EnvInjectMarker:                 "injectMarker",
		EnvFailOnInjectNullRef:          "failOnInjectNullRef",
		EnvFailOnBeanCreationError:      "failOnBeanCreationError",
		EnvFailOnUnknownDiscoveryErrors: "failOnUnknownDiscoveryErrors",
	}

	params := make(map[string]any)
	for suffix, field := range fields {
		if v, ok := os.LookupEnv(envName(prefix, suffix)); ok {
			params[field] = v
		}
	}

	c, err := FromMap(params)
	if err != nil {
		return nil, errors.Wrapf(err, "could not read config from %s_* environment", prefix)
	}
	return c, nil
}

func envName(prefix, suffix string) string {
	if prefix == "" {
		return suffix
	}
	return strings.ToUpper(prefix) + "_" + suffix
}

func trimScopes(scopes []string) []string {
	if len(scopes) == 0 {
		return scopes
	}

	res := make([]string, 0, len(scopes))
	for _, s := range scopes {
		res = append(res, strings.TrimSpace(s))
	}
	return res
}
