// Package config assembles the run configuration from flags, environment,
// .env and config files, and prompts for whatever is still missing.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Keys understood by Load.
const (
	KeyAPIKey     = "api_key"
	KeyChannel    = "channel"
	KeyResultsDir = "results_dir"
	KeyPageSize   = "page_size"
	KeyNoPause    = "no_pause"
	KeyExitStatus = "exit_status"
	KeyLogLevel   = "log_level"
	KeyTimezone   = "timezone"
)

const envPrefix = "YTCC"

// Config is the immutable input of one run.
type Config struct {
	APIKey     string
	ChannelID  string
	ResultsDir string
	PageSize   int
	Pause      bool
	ExitStatus bool
	LogLevel   string
	Location   *time.Location
}

// Flag names bound to the keys above.
var flagKeys = map[string]string{
	"api-key":     KeyAPIKey,
	"channel":     KeyChannel,
	"results-dir": KeyResultsDir,
	"page-size":   KeyPageSize,
	"no-pause":    KeyNoPause,
	"exit-status": KeyExitStatus,
	"log-level":   KeyLogLevel,
	"timezone":    KeyTimezone,
}

// RegisterFlags adds the configuration flags to flags.
func RegisterFlags(flags *pflag.FlagSet) {
	flags.String("api-key", "", "YouTube Data API key (env YTCC_API_KEY or YOUTUBE_API_KEY)")
	flags.String("channel", "", "channel id to report on")
	flags.String("results-dir", "Results", "directory reports are written to")
	flags.Int("page-size", 50, "playlist page size (1-50)")
	flags.Bool("no-pause", false, "exit without waiting for a key press")
	flags.Bool("exit-status", false, "exit with status 1 when the run fails")
	flags.String("log-level", "warn", "diagnostic log level (debug, info, warn, error)")
	flags.String("timezone", "", "IANA zone for publish timestamps (default local)")
}

// NewViper returns a viper instance with defaults, environment bindings and
// flags bound. flags may be nil.
func NewViper(flags *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetDefault(KeyResultsDir, "Results")
	v.SetDefault(KeyPageSize, 50)
	v.SetDefault(KeyLogLevel, "warn")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv(KeyAPIKey, envPrefix+"_API_KEY", "YOUTUBE_API_KEY"); err != nil {
		return nil, err
	}

	if flags != nil {
		for name, key := range flagKeys {
			f := flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("unable to bind flag %s: %w", name, err)
			}
		}
	}
	return v, nil
}

// ReadFiles loads .env from the working directory into the environment and
// reads the config file. An explicit configFile must exist; otherwise
// ytcc.yaml is looked up in . and $HOME/.config/ytcc and may be absent.
func ReadFiles(v *viper.Viper, configFile string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("unable to read .env: %w", err)
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("unable to read config file: %w", err)
		}
		return nil
	}

	v.SetConfigName("ytcc")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "ytcc"))
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("unable to read config file: %w", err)
		}
	}
	return nil
}

// Load builds a Config from v.
func Load(v *viper.Viper) (Config, error) {
	loc := time.Local
	if tz := v.GetString(KeyTimezone); tz != "" {
		l, err := time.LoadLocation(tz)
		if err != nil {
			return Config{}, fmt.Errorf("invalid timezone %q: %w", tz, err)
		}
		loc = l
	}

	return Config{
		APIKey:     v.GetString(KeyAPIKey),
		ChannelID:  v.GetString(KeyChannel),
		ResultsDir: v.GetString(KeyResultsDir),
		PageSize:   v.GetInt(KeyPageSize),
		Pause:      !v.GetBool(KeyNoPause),
		ExitStatus: v.GetBool(KeyExitStatus),
		LogLevel:   v.GetString(KeyLogLevel),
		Location:   loc,
	}, nil
}

// Prompt asks on out for the API key and then the channel id, reading each
// answer as one line of in. Values already set are not asked for. Answers
// are taken as typed.
func (c Config) Prompt(in io.Reader, out io.Writer) (Config, error) {
	r := bufio.NewReader(in)

	if c.APIKey == "" {
		key, err := ask(r, out, "API Key : ")
		if err != nil {
			return c, err
		}
		c.APIKey = key
	}
	if c.ChannelID == "" {
		id, err := ask(r, out, "Channel ID : ")
		if err != nil {
			return c, err
		}
		c.ChannelID = id
	}
	return c, nil
}

func ask(r *bufio.Reader, out io.Writer, prompt string) (string, error) {
	fmt.Fprint(out, prompt)
	line, err := r.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("unable to read input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
