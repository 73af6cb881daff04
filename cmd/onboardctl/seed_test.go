package main

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"peoplehub/hr-portal/hr-portal-backend/internal/onboarding"
)

type MockCreator struct {
	mock.Mock
}

func (m *MockCreator) CreateTemplate(ctx context.Context, organizationID uuid.UUID, actor *uuid.UUID, req *onboarding.TemplateRequest) (*onboarding.Template, error) {
	args := m.Called(ctx, organizationID, req.TemplateCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*onboarding.Template), args.Error(1)
}

func TestSeedTemplatesSkipsExistingCodes(t *testing.T) {
	ctx := context.Background()
	org := uuid.New()
	creator := new(MockCreator)

	creator.On("CreateTemplate", ctx, org, "ENG").Return(&onboarding.Template{ID: uuid.New(), TemplateCode: "ENG"}, nil)
	creator.On("CreateTemplate", ctx, org, "SALES").Return(nil, &onboarding.Error{Code: onboarding.CodeDuplicateTemplateCode})

	var out bytes.Buffer
	created, skipped, err := seedTemplates(ctx, creator, org, []onboarding.TemplateRequest{
		{TemplateCode: "ENG"},
		{TemplateCode: "SALES"},
	}, &out)

	require.NoError(t, err)
	assert.Equal(t, 1, created)
	assert.Equal(t, 1, skipped)
	assert.Contains(t, out.String(), "skip   SALES")
}

func TestSeedTemplatesStopsOnFailure(t *testing.T) {
	ctx := context.Background()
	org := uuid.New()
	creator := new(MockCreator)

	creator.On("CreateTemplate", ctx, org, "ENG").Return(nil, errors.New("connection reset"))

	_, _, err := seedTemplates(ctx, creator, org, []onboarding.TemplateRequest{
		{TemplateCode: "ENG"},
		{TemplateCode: "SALES"},
	}, &bytes.Buffer{})

	assert.ErrorContains(t, err, "failed to seed ENG")
	creator.AssertNumberOfCalls(t, "CreateTemplate", 1)
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := newRootCommand()
	for _, name := range []string{"migrate", "seed", "sweep", "export"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, cmd.Name())
	}
}
