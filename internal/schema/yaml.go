package schema

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/forgo/crmfixtures/internal/record"
)

// yamlFile is the on-disk layout of a schema overlay.
type yamlFile struct {
	Types []yamlType `yaml:"types"`
}

type yamlType struct {
	Name      string      `yaml:"name"`
	KeyPrefix string      `yaml:"keyPrefix"`
	Fields    []yamlField `yaml:"fields"`
}

type yamlField struct {
	Name     string   `yaml:"name"`
	Kind     string   `yaml:"kind"`
	Required bool     `yaml:"required"`
	Policy   string   `yaml:"policy"`
	Default  any      `yaml:"default"`
	Format   string   `yaml:"format"`
	Prefix   string   `yaml:"prefix"`
	RefType  string   `yaml:"refType"`
	Options  []string `yaml:"options"`
	Derive   *struct {
		Via    string `yaml:"via"`
		Source string `yaml:"source"`
	} `yaml:"derive"`
}

var policies = map[string]record.DefaultPolicy{
	"":          record.PolicyNone,
	"none":      record.PolicyNone,
	"fixed":     record.PolicyFixed,
	"generated": record.PolicyGenerated,
	"related":   record.PolicyRelated,
}

var formats = map[string]record.Format{
	"":          record.FormatToken,
	"token":     record.FormatToken,
	"email":     record.FormatEmail,
	"phone":     record.FormatPhone,
	"firstname": record.FormatFirstName,
	"street":    record.FormatStreet,
	"city":      record.FormatCity,
	"company":   record.FormatCompany,
}

// DecodeYAML registers every type described by the YAML document in r.
//
//	types:
//	  - name: Invoice__c
//	    keyPrefix: a0B
//	    fields:
//	      - {name: Account__c, kind: reference, refType: Account, required: true, policy: related}
//	      - {name: Status__c, kind: enum, options: [Draft, Sent], policy: fixed, default: Draft}
func DecodeYAML(r *Registry, in io.Reader) error {
	var doc yamlFile
	dec := yaml.NewDecoder(in)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("decoding schema overlay: %w", err)
	}

	for _, yt := range doc.Types {
		fields := make([]record.FieldDefinition, 0, len(yt.Fields))
		for _, yf := range yt.Fields {
			f, err := yf.definition()
			if err != nil {
				return fmt.Errorf("%s.%s: %w", yt.Name, yf.Name, err)
			}
			fields = append(fields, f)
		}

		var opts []record.TypeOption
		if yt.KeyPrefix != "" {
			opts = append(opts, record.WithKeyPrefix(yt.KeyPrefix))
		}
		if _, err := r.Register(yt.Name, fields, opts...); err != nil {
			return err
		}
	}
	return nil
}

// LoadYAMLFile applies the overlay at path.
func LoadYAMLFile(r *Registry, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening schema overlay: %w", err)
	}
	defer f.Close()
	return DecodeYAML(r, f)
}

func (yf yamlField) definition() (record.FieldDefinition, error) {
	kind := record.KindString
	if yf.Kind != "" {
		k, ok := record.ParseKind(yf.Kind)
		if !ok {
			return record.FieldDefinition{}, fmt.Errorf("%w: unknown kind %q", record.ErrInvalidType, yf.Kind)
		}
		kind = k
	}
	policy, ok := policies[yf.Policy]
	if !ok {
		return record.FieldDefinition{}, fmt.Errorf("%w: unknown policy %q", record.ErrInvalidType, yf.Policy)
	}
	format, ok := formats[yf.Format]
	if !ok {
		return record.FieldDefinition{}, fmt.Errorf("%w: unknown format %q", record.ErrInvalidType, yf.Format)
	}

	f := record.FieldDefinition{
		Name:     yf.Name,
		Kind:     kind,
		Required: yf.Required,
		Policy:   policy,
		Default:  yf.Default,
		Format:   format,
		Prefix:   yf.Prefix,
		RefType:  yf.RefType,
		Options:  yf.Options,
	}
	if kind == record.KindDate {
		if raw, ok := yf.Default.(string); ok {
			d, err := parseDate(raw)
			if err != nil {
				return record.FieldDefinition{}, fmt.Errorf("%w: default %q is not a date", record.ErrInvalidValue, raw)
			}
			f.Default = d
		}
	}
	if yf.Derive != nil {
		f.Derive = &record.Derivation{Via: yf.Derive.Via, Source: yf.Derive.Source}
	}
	return f, nil
}

// parseDate accepts plain dates and RFC 3339 timestamps. yaml.v3 leaves
// unquoted timestamps as strings when decoding into any.
func parseDate(s string) (time.Time, error) {
	if d, err := time.Parse(time.DateOnly, s); err == nil {
		return d, nil
	}
	return time.Parse(time.RFC3339, s)
}
