// Package customcal — loader.go reads seed definitions from YAML files.
package customcal

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// seedFile is the layout of the definitions file:
//
//	calendars:
//	  - slug: harptos
//	    name: Calendar of Harptos
//	    epoch_date: "2000-01-01"
//	    months:
//	      - {name: Hammer, days: 30}
//	    weekdays:
//	      - {short: "1st", full: First-day}
type seedFile struct {
	Calendars []Input `yaml:"calendars"`
}

// LoadFile reads seed definitions from a YAML file. Unknown keys are errors.
// Every entry is validated and all problems are reported together.
func LoadFile(path string) ([]Input, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading definitions file: %w", err)
	}
	inputs, err := decodeSeed(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return inputs, nil
}

func decodeSeed(data []byte) ([]Input, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var f seedFile
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return nil, err
	}
	var errs error
	seen := make(map[string]bool, len(f.Calendars))
	for i, in := range f.Calendars {
		if seen[in.Slug] {
			errs = multierr.Append(errs, fmt.Errorf("calendar %q is defined twice", in.Slug))
			continue
		}
		seen[in.Slug] = true
		if err := in.Sanitized().Validate(); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("calendars[%d] (%q): %w", i, in.Slug, err))
		}
	}
	if errs != nil {
		return nil, errs
	}
	return f.Calendars, nil
}
