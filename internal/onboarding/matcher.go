package onboarding

import (
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Matches reports whether every non-nil targeting filter equals the employee's value
func (t *Template) Matches(p *EmployeeProfile) bool {
	if t.EmploymentType != nil && !strings.EqualFold(*t.EmploymentType, p.EmploymentType) {
		return false
	}
	if t.DepartmentID != nil && !sameID(t.DepartmentID, p.DepartmentID) {
		return false
	}
	if t.CountryCode != nil && !strings.EqualFold(*t.CountryCode, p.CountryCode) {
		return false
	}
	if t.PositionID != nil && !sameID(t.PositionID, p.PositionID) {
		return false
	}
	return true
}

func sameID(a, b *uuid.UUID) bool {
	return a != nil && b != nil && *a == *b
}

// SelectTemplate picks the most specific active matching template for an employee.
// With no match it falls back to the active default template.
func SelectTemplate(candidates []Template, profile *EmployeeProfile) (*Template, error) {
	var matches []*Template
	var fallback *Template
	for i := range candidates {
		t := &candidates[i]
		if !t.IsActive || t.OrganizationID != profile.OrganizationID {
			continue
		}
		if t.Matches(profile) {
			matches = append(matches, t)
		}
		if t.IsDefault && (fallback == nil || ranksBefore(t, fallback)) {
			fallback = t
		}
	}

	if len(matches) > 0 {
		sort.SliceStable(matches, func(i, j int) bool {
			return ranksBefore(matches[i], matches[j])
		})
		return matches[0], nil
	}
	if fallback != nil {
		return fallback, nil
	}
	return nil, preconditionf(CodeNoTemplateFound, "no suitable onboarding template found for employee %s", profile.ID)
}

// ranksBefore orders by specificity, then default flag, then age, then code
func ranksBefore(a, b *Template) bool {
	if sa, sb := a.Specificity(), b.Specificity(); sa != sb {
		return sa > sb
	}
	if a.IsDefault != b.IsDefault {
		return a.IsDefault
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.TemplateCode < b.TemplateCode
}
