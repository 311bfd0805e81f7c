package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

func validateStruct(c *Config) error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	// Report the first failure in a readable form
	e := verrs[0]
	field := strings.TrimPrefix(e.Namespace(), "Config.")
	switch e.Tag() {
	case "required":
		return fmt.Errorf("%s: field is required", field)
	case "min":
		return fmt.Errorf("%s: must have at least %s entries", field, e.Param())
	case "gt":
		return fmt.Errorf("%s: must be greater than %s", field, e.Param())
	case "gte":
		return fmt.Errorf("%s: must be at least %s", field, e.Param())
	case "oneof":
		return fmt.Errorf("%s: must be one of [%s], got %v", field, e.Param(), e.Value())
	default:
		return fmt.Errorf("%s: validation failed (%s)", field, e.Tag())
	}
}

// checker collects cross-field failures instead of stopping at the first.
type checker struct {
	name   string
	errors []error
}

func newChecker(name string) *checker {
	return &checker{name: name}
}

func (c *checker) custom(field string, fn func() error) *checker {
	if err := fn(); err != nil {
		c.errors = append(c.errors, fmt.Errorf("%s.%s: %w", c.name, field, err))
	}
	return c
}

func (c *checker) when(cond bool, fn func(*checker)) *checker {
	if cond {
		fn(c)
	}
	return c
}

// scheme requires a transport URL understood by the socket libraries.
func (c *checker) scheme(field, addr string) *checker {
	for _, s := range []string{"tcp://", "ipc://", "inproc://", "ws://"} {
		if strings.HasPrefix(addr, s) {
			return c
		}
	}
	c.errors = append(c.errors, fmt.Errorf("%s.%s: unsupported address %q", c.name, field, addr))
	return c
}

func (c *checker) err() error {
	return errors.Join(c.errors...)
}
