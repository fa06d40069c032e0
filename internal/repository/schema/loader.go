// Package schema loads record type descriptions from YAML files into a registry.
//
//	types:
//	  - name: User
//	    index: users
//	    properties:
//	      - {name: firstName, type: string}
//	      - {name: tags, type: collection, ref: Tag}
package schema

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/restql/internal/domain"
	domschema "github.com/kailas-cloud/restql/internal/domain/schema"
)

var validate = validator.New()

// Load reads every file matching the glob patterns and registers their types.
// References may cross files. A pattern matching nothing is an error.
func Load(patterns ...string) (*domschema.Registry, error) {
	var docs []namedDocument
	for _, pattern := range patterns {
		files, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("bad schema pattern %q: %w", pattern, err)
		}
		if len(files) == 0 {
			return nil, fmt.Errorf("%w: no schema files match %q", domain.ErrInvalidSchema, pattern)
		}
		slices.Sort(files)
		for _, f := range files {
			data, err := os.ReadFile(filepath.Clean(f))
			if err != nil {
				return nil, fmt.Errorf("read schema %s: %w", f, err)
			}
			doc, err := decode(data)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", f, err)
			}
			docs = append(docs, namedDocument{source: f, doc: doc})
		}
	}
	return build(docs)
}

// Parse registers the types of a single YAML document.
func Parse(data []byte) (*domschema.Registry, error) {
	doc, err := decode(data)
	if err != nil {
		return nil, err
	}
	return build([]namedDocument{{source: "<inline>", doc: doc}})
}

type namedDocument struct {
	source string
	doc    document
}

func decode(data []byte) (document, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return document{}, fmt.Errorf("%w: parse yaml: %w", domain.ErrInvalidSchema, err)
	}
	if err := validate.Struct(&doc); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return document{}, fmt.Errorf("%w: %s", domain.ErrInvalidSchema, describe(verrs))
		}
		return document{}, fmt.Errorf("%w: %w", domain.ErrInvalidSchema, err)
	}
	return doc, nil
}

func describe(verrs validator.ValidationErrors) string {
	parts := make([]string, len(verrs))
	for i, fe := range verrs {
		parts[i] = fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag())
	}
	return strings.Join(parts, "; ")
}

// build creates every type first so properties can reference any of them.
func build(docs []namedDocument) (*domschema.Registry, error) {
	types := make(map[string]*domschema.Type)
	var order []*domschema.Type
	for _, nd := range docs {
		for _, row := range nd.doc.Types {
			key := strings.ToLower(row.Name)
			if _, dup := types[key]; dup {
				return nil, fmt.Errorf("%w: %s: type %q declared twice", domain.ErrInvalidSchema, nd.source, row.Name)
			}
			t := domschema.NewType(row.Name)
			if row.Index != "" {
				t.WithIndex(row.Index)
			}
			types[key] = t
			order = append(order, t)
		}
	}

	for _, nd := range docs {
		for _, row := range nd.doc.Types {
			t := types[strings.ToLower(row.Name)]
			for _, p := range row.Properties {
				prop, err := property(p, types)
				if err != nil {
					return nil, fmt.Errorf("%w: %s: type %s: %w", domain.ErrInvalidSchema, nd.source, row.Name, err)
				}
				t.Add(prop)
			}
		}
	}

	reg := domschema.NewRegistry()
	if err := reg.Register(order...); err != nil {
		return nil, err
	}
	return reg, nil
}

func property(row propertyRow, types map[string]*domschema.Type) (domschema.Property, error) {
	kind := domschema.Kind(row.Type)
	var opts []domschema.PropertyOption
	if row.Keyword != "" {
		opts = append(opts, domschema.WithKeyword(row.Keyword))
	}
	if !kind.IsNested() {
		if row.Ref != "" {
			return domschema.Property{}, fmt.Errorf("%s property %q cannot have a ref", kind, row.Name)
		}
		return domschema.NewProperty(row.Name, kind, nil, opts...), nil
	}
	if row.Ref == "" {
		return domschema.Property{}, fmt.Errorf("%s property %q requires a ref", kind, row.Name)
	}
	elem, ok := types[strings.ToLower(row.Ref)]
	if !ok {
		return domschema.Property{}, fmt.Errorf("property %q references unknown type %q", row.Name, row.Ref)
	}
	return domschema.NewProperty(row.Name, kind, elem, opts...), nil
}
