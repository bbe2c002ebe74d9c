// Package config loads the run configuration from a JSON file located via
// the OCP_ENV/CONFIG_PATH environment convention.
package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/jiangshenghai57/protolinc-go/internal/dateaxis"
	"github.com/jiangshenghai57/protolinc-go/internal/engineerr"
)

// RunConfig is the typed decoding of config.json (§6 of the engine's
// configuration surface). be_assumptions/other_assumptions are deliberately
// absent: an AssumptionSet is a live object graph of rate providers, built
// programmatically by the HTTP caller, not serialized here.
type RunConfig struct {
	StateDimension  int    `json:"state_dimension"`
	TimeStep        string `json:"time_step"`
	YearsToSimulate int    `json:"years_to_simulate"`
	NumCPUs         int    `json:"num_cpus"`
	UseMulticore    bool   `json:"use_multicore"`
	MaxAge          int    `json:"max_age"`
	LogPath         string `json:"log_path"`
	LogFile         string `json:"log_file"`

	// Extra holds any additional keys present in the file but not named
	// above, normalized by convertTypes, so a forward-compatible config
	// file doesn't fail to load.
	Extra map[string]interface{} `json:"-"`
}

// Granularity maps TimeStep onto a dateaxis.Granularity.
func (c RunConfig) Granularity() (dateaxis.Granularity, error) {
	switch c.TimeStep {
	case "monthly", "":
		return dateaxis.Monthly, nil
	case "quarterly":
		return dateaxis.Quarterly, nil
	case "yearly":
		return dateaxis.Yearly, nil
	default:
		return 0, fmt.Errorf("%w: unknown time_step %q", engineerr.ErrInvalidConfiguration, c.TimeStep)
	}
}

// convertTypes normalizes decoded JSON values so unexpected numeric/string
// shapes in Extra don't propagate as untyped interface{} nil garbage.
func convertTypes(val interface{}) interface{} {
	switch v := val.(type) {
	case map[string]interface{}:
		m := make(map[string]interface{})
		for key, value := range v {
			m[key] = convertTypes(value)
		}
		return m
	case []interface{}:
		arr := make([]interface{}, len(v))
		for i, elem := range v {
			arr[i] = convertTypes(elem)
		}
		return arr
	case float64, int, string, bool:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}

// ReadConfig locates config.json via OCP_ENV/CONFIG_PATH (falling back to
// ./config.json when OCP_ENV is unset) and decodes it into a RunConfig.
func ReadConfig() (RunConfig, error) {
	ocpEnv := os.Getenv("OCP_ENV")
	configPath := os.Getenv("CONFIG_PATH")

	configPathFile := "./config.json"
	if ocpEnv != "" {
		configPathFile = configPath + "config.json"
	}

	log.Println("Reading in config from:", configPathFile)
	file, err := os.Open(configPathFile)
	if err != nil {
		return RunConfig{}, fmt.Errorf("opening config file: %w", err)
	}
	defer file.Close()

	var raw map[string]interface{}
	decoder := json.NewDecoder(file)
	if err := decoder.Decode(&raw); err != nil {
		return RunConfig{}, fmt.Errorf("decoding config file: %w", err)
	}
	raw = convertTypes(raw).(map[string]interface{})

	body, err := json.Marshal(raw)
	if err != nil {
		return RunConfig{}, fmt.Errorf("re-marshaling normalized config: %w", err)
	}
	var cfg RunConfig
	if err := json.Unmarshal(body, &cfg); err != nil {
		return RunConfig{}, fmt.Errorf("unmarshaling typed config: %w", err)
	}
	cfg.Extra = raw

	if cfg.StateDimension <= 0 {
		return RunConfig{}, fmt.Errorf("%w: state_dimension must be positive", engineerr.ErrInvalidConfiguration)
	}
	if cfg.YearsToSimulate <= 0 {
		return RunConfig{}, fmt.Errorf("%w: years_to_simulate must be positive", engineerr.ErrInvalidConfiguration)
	}
	if cfg.MaxAge <= 0 {
		return RunConfig{}, fmt.Errorf("%w: max_age must be positive", engineerr.ErrInvalidConfiguration)
	}
	return cfg, nil
}
