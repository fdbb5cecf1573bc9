package nasc

import (
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/toutaio/toutago-nasc-registry/store"
	"gopkg.in/yaml.v3"
)

const (
	// LookupFirst satisfies a request without qualifier with the first
	// component of the requested type, in insertion order.
	LookupFirst = "first"

	// LookupExact satisfies a request without qualifier only with the
	// component registered without qualifier.
	LookupExact = "exact"

	// DefaultInjectTag is the struct tag read by AutoWire.
	DefaultInjectTag = "inject"

	// DefaultLoggerName is the log4g logger name used by a container.
	DefaultLoggerName = "nasc"
)

// Config struct defines the container settings
type Config struct {
	// DefaultLookup defines how a request without qualifier is matched when
	// several components of the type exist: LookupFirst or LookupExact
	DefaultLookup string `mapstructure:"defaultLookup" validate:"oneof=first exact"`

	// StickyFailures keeps the in-progress mark of a component whose
	// construction failed. Subsequent requests of the component report a
	// CyclicDependencyError then. By default the mark is released and the
	// construction is retried on the next request.
	StickyFailures bool `mapstructure:"stickyFailures"`

	// LoggerName contains the log4g logger name
	LoggerName string `mapstructure:"loggerName" validate:"required"`

	// InjectTag contains the struct tag name used for field injection
	InjectTag string `mapstructure:"injectTag" validate:"required,excludesall= :"`
}

// DefaultConfig returns the default container settings
func DefaultConfig() *Config {
	return &Config{
		DefaultLookup: LookupFirst,
		LoggerName:    DefaultLoggerName,
		InjectTag:     DefaultInjectTag,
	}
}

// Apply overrides c's properties by non-default values from cfg
func (c *Config) Apply(cfg *Config) {
	if cfg == nil {
		return
	}
	if len(cfg.DefaultLookup) > 0 {
		c.DefaultLookup = cfg.DefaultLookup
	}
	if cfg.StickyFailures {
		c.StickyFailures = true
	}
	if len(cfg.LoggerName) > 0 {
		c.LoggerName = cfg.LoggerName
	}
	if len(cfg.InjectTag) > 0 {
		c.InjectTag = cfg.InjectTag
	}
}

var validate = validator.New()

// Validate checks the settings are consistent
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return errors.Wrapf(err, "could not validate container config")
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldErrorMessage(fe))
	}
	return errors.New("invalid container config: " + strings.Join(msgs, "; "))
}

func fieldErrorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " must be non-empty"
	case "oneof":
		return fe.Field() + " must be one of: " + fe.Param() + ", got " + fe.Value().(string)
	case "excludesall":
		return fe.Field() + " must not contain spaces or colons"
	}
	return fe.Field() + " is invalid"
}

func (c *Config) match() store.Match {
	if c.DefaultLookup == LookupExact {
		return store.MatchExact
	}
	return store.MatchFirst
}

// DecodeConfig builds the settings from a generic map, for example from a
// section of an application config. Missing keys keep their default values.
func DecodeConfig(raw map[string]interface{}) (*Config, error) {
	cfg := DefaultConfig()
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           cfg,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "could not create config decoder")
	}
	if err := dec.Decode(raw); err != nil {
		return nil, errors.Wrapf(err, "could not decode container config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfig reads the YAML file filename and decodes the container settings
// from its top-level key section. An empty section means the whole document
// holds the settings. A missing section returns the default settings.
func LoadConfig(filename, section string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "could not read config file %s", filename)
	}

	var doc map[string]interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrapf(err, "could not unmarshal yaml data from config file %s", filename)
	}

	raw := doc
	if section != "" {
		v, ok := doc[section]
		if !ok || v == nil {
			return DefaultConfig(), nil
		}
		raw, ok = v.(map[string]interface{})
		if !ok {
			return nil, errors.Errorf("section %q of %s must be a mapping, got %T", section, filename, v)
		}
	}
	return DecodeConfig(raw)
}
