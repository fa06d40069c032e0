package schema

// document is one schema YAML file.
type document struct {
	Types []typeRow `yaml:"types" validate:"required,min=1,dive"`
}

type typeRow struct {
	Name       string        `yaml:"name" validate:"required"`
	Index      string        `yaml:"index"`
	Properties []propertyRow `yaml:"properties" validate:"required,min=1,dive"`
}

type propertyRow struct {
	Name    string `yaml:"name" validate:"required"`
	Type    string `yaml:"type" validate:"required,oneof=string number enum bool time object collection"`
	Ref     string `yaml:"ref"`
	Keyword string `yaml:"keyword"`
}
