package onboarding

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// TemplateFile is the on-disk seed format for template definitions
type TemplateFile struct {
	Templates []TemplateRequest `yaml:"templates"`
}

// ParseTemplateFile decodes a YAML seed payload and validates every template in it
func ParseTemplateFile(data []byte) ([]TemplateRequest, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("template file is empty")
	}
	var file TemplateFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to decode template file: %w", err)
	}
	if len(file.Templates) == 0 {
		return nil, fmt.Errorf("template file defines no templates")
	}
	for i := range file.Templates {
		if err := ValidateTemplateRequest(&file.Templates[i]); err != nil {
			return nil, fmt.Errorf("template %d (%s): %w", i+1, file.Templates[i].TemplateCode, err)
		}
	}
	return file.Templates, nil
}

// LoadTemplateFile reads and parses a YAML seed file
func LoadTemplateFile(path string) ([]TemplateRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	templates, err := ParseTemplateFile(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return templates, nil
}
