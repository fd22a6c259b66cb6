package appctx

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// bundleIDPattern matches reverse-DNS application identifiers such as com.example.app.
var bundleIDPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9-]*(\.[A-Za-z0-9][A-Za-z0-9-]*)+$`)

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("toml"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	// registration only fails on an empty tag or nil func
	_ = v.RegisterValidation("bundleid", func(fl validator.FieldLevel) bool {
		return bundleIDPattern.MatchString(fl.Field().String())
	})
	return v
}

// Validate checks a decoded configuration for structural and semantic errors.
func Validate(cfg *Config) error {
	if err := newValidator().Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, describe(fe))
			}
			return fmt.Errorf("invalid %s: %s", ConfigFile, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid %s: %w", ConfigFile, err)
	}

	labels := make(map[string]bool, len(cfg.Windows))
	for _, w := range cfg.Windows {
		if labels[w.Label] {
			return fmt.Errorf("invalid %s: duplicate window label %q", ConfigFile, w.Label)
		}
		labels[w.Label] = true

		if w.MaxWidth > 0 && w.MaxWidth < w.MinWidth {
			return fmt.Errorf("invalid %s: window %q max_width %d is below min_width %d", ConfigFile, w.Label, w.MaxWidth, w.MinWidth)
		}
		if w.MaxHeight > 0 && w.MaxHeight < w.MinHeight {
			return fmt.Errorf("invalid %s: window %q max_height %d is below min_height %d", ConfigFile, w.Label, w.MaxHeight, w.MinHeight)
		}
		if w.Width < w.MinWidth || w.Height < w.MinHeight {
			return fmt.Errorf("invalid %s: window %q size %dx%d is below its minimum %dx%d", ConfigFile, w.Label, w.Width, w.Height, w.MinWidth, w.MinHeight)
		}
	}

	return nil
}

func describe(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), "Config.")
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "bundleid":
		return fmt.Sprintf("%s %q is not a reverse-DNS identifier", field, fe.Value())
	case "hexcolor":
		return fmt.Sprintf("%s %q is not a hex colour", field, fe.Value())
	case "hostname_port":
		return fmt.Sprintf("%s %q is not a host:port address", field, fe.Value())
	default:
		return fmt.Sprintf("%s fails %s=%s", field, fe.Tag(), fe.Param())
	}
}
