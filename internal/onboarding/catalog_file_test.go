package onboarding

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const seedYAML = `
templates:
  - template_code: ENG-ONBOARD
    template_name: Engineering onboarding
    employment_type: full_time
    country_code: GB
    target_completion_days: 14
    document_dispatch: ON_START
    is_default: true
    steps:
      - step_number: 1
        step_code: PERSONAL
        step_name: Personal information
        category: REQUIRED_ONBOARDING
        due_by_days: 1
      - step_number: 2
        step_code: LAPTOP
        step_name: Laptop setup
        category: IT_SETUP
        assigned_to: system
        due_by_days: 3
        depends_on_step_code: PERSONAL
        checklist_items:
          - item_order: 1
            item_name: Collect laptop
            item_type: TASK
  - template_code: CONTRACTOR
    template_name: Contractor onboarding
    employment_type: contractor
    steps:
      - step_code: NDA
        step_name: Sign NDA
        category: COMPLIANCE
`

func TestParseTemplateFile(t *testing.T) {
	templates, err := ParseTemplateFile([]byte(seedYAML))
	require.NoError(t, err)
	require.Len(t, templates, 2)

	eng := templates[0]
	assert.Equal(t, "ENG-ONBOARD", eng.TemplateCode)
	assert.Equal(t, "GB", *eng.CountryCode)
	assert.Equal(t, 14, *eng.TargetCompletionDays)
	assert.Equal(t, DispatchOnStart, eng.DocumentDispatch)
	assert.True(t, eng.IsDefault)
	require.Len(t, eng.Steps, 2)
	assert.Equal(t, AssigneeSystem, eng.Steps[1].AssignedTo)
	assert.Equal(t, "PERSONAL", eng.Steps[1].DependsOnStepCode)
	assert.Equal(t, ItemTask, eng.Steps[1].ChecklistItems[0].ItemType)

	assert.Nil(t, templates[1].TargetCompletionDays)
}

func TestParseTemplateFileRejectsInvalidContent(t *testing.T) {
	_, err := ParseTemplateFile([]byte("  \n"))
	assert.Error(t, err)

	_, err = ParseTemplateFile([]byte("templates: []"))
	assert.Error(t, err)

	_, err = ParseTemplateFile([]byte("templates: [\"unterminated"))
	assert.Error(t, err)

	cyclic := `
templates:
  - template_code: LOOP
    template_name: Loop
    steps:
      - {step_code: A, step_name: A, category: TRAINING, depends_on_step_code: B}
      - {step_code: B, step_name: B, category: TRAINING, depends_on_step_code: A}
`
	_, err = ParseTemplateFile([]byte(cyclic))
	assert.ErrorIs(t, err, ErrDependencyCycle)
}

func TestLoadTemplateFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "templates.yaml")
	require.NoError(t, os.WriteFile(path, []byte(seedYAML), 0o600))

	templates, err := LoadTemplateFile(path)
	require.NoError(t, err)
	assert.Len(t, templates, 2)

	_, err = LoadTemplateFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
