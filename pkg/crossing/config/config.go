package config

import (
	"fmt"
	"io"
	"io/ioutil"
	"strings"

	"github.com/ghodss/yaml"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

// GoalMode selects how the goal state is encoded.
type GoalMode string

const (
	// GoalSimultaneous requires one time step at which every item is on
	// the destination bank.
	GoalSimultaneous GoalMode = "simultaneous"
	// GoalEventual requires each item to reach the destination bank at
	// some time step, not necessarily the same one.
	GoalEventual GoalMode = "eventual"
)

const (
	DefaultForwardLabel = "forward"
	DefaultReturnLabel  = "return"
	DefaultCardinality  = "totalizer"
)

// Config holds the parameters of one puzzle instance. Item p (1-based)
// crosses in Durations[p-1] time units.
type Config struct {
	Durations   []int     `json:"durations" validate:"required,min=1,dive,min=1"`
	Capacity    int       `json:"capacity" validate:"min=0"`
	Horizon     int       `json:"horizon" validate:"min=1"`
	Directions  [2]string `json:"directions" validate:"dive,required"`
	Goal        GoalMode  `json:"goal" validate:"oneof=simultaneous eventual"`
	Cardinality string    `json:"cardinality" validate:"oneof=totalizer seqcounter sortnet"`
}

// Items returns P, the number of items to ferry.
func (c Config) Items() int {
	return len(c.Durations)
}

// WithDefaults returns a copy of c with unset optional fields filled in.
func (c Config) WithDefaults() Config {
	if c.Directions[0] == "" && c.Directions[1] == "" {
		c.Directions = [2]string{DefaultForwardLabel, DefaultReturnLabel}
	}
	if c.Goal == "" {
		c.Goal = GoalSimultaneous
	}
	if c.Cardinality == "" {
		c.Cardinality = DefaultCardinality
	}
	c.Durations = append(make([]int, 0, len(c.Durations)), c.Durations...)
	return c
}

// InvalidConfiguration lists every parameter that failed validation.
type InvalidConfiguration struct {
	Violations []string
}

func (e *InvalidConfiguration) Error() string {
	const msg = "invalid configuration"
	if len(e.Violations) == 0 {
		return msg
	}
	return fmt.Sprintf("%s: %s", msg, strings.Join(e.Violations, "; "))
}

var validate = validator.New()

// Validate checks c without applying defaults. The returned error, if
// any, is an *InvalidConfiguration.
func (c Config) Validate() error {
	invalid := &InvalidConfiguration{}
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return errors.Wrap(err, "validating configuration")
		}
		for _, fe := range verrs {
			invalid.Violations = append(invalid.Violations, describe(fe))
		}
	}
	if c.Directions[0] != "" && c.Directions[0] == c.Directions[1] {
		invalid.Violations = append(invalid.Violations, fmt.Sprintf("directions: labels must differ, both are %q", c.Directions[0]))
	}
	if len(invalid.Violations) > 0 {
		return invalid
	}
	return nil
}

func describe(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), "Config.")
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s: required", field)
	case "min":
		return fmt.Sprintf("%s: must be at least %s, got %v", field, fe.Param(), fe.Value())
	case "oneof":
		return fmt.Sprintf("%s: must be one of [%s], got %q", field, fe.Param(), fe.Value())
	default:
		return fmt.Sprintf("%s: failed %q", field, fe.Tag())
	}
}

// Load decodes a YAML (or JSON) document, applies defaults and validates
// the result.
func Load(r io.Reader) (Config, error) {
	data, err := ioutil.ReadAll(r)
	if err != nil {
		return Config{}, errors.Wrap(err, "reading configuration")
	}
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, errors.Wrap(err, "decoding configuration")
	}
	c = c.WithDefaults()
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}
