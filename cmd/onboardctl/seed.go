package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"peoplehub/hr-portal/hr-portal-backend/internal/app"
	"peoplehub/hr-portal/hr-portal-backend/internal/onboarding"
)

type templateCreator interface {
	CreateTemplate(ctx context.Context, organizationID uuid.UUID, actor *uuid.UUID, req *onboarding.TemplateRequest) (*onboarding.Template, error)
}

func newSeedCommand() *cobra.Command {
	var (
		orgID string
		file  string
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load onboarding templates from a YAML file into an organization",
		RunE: func(cmd *cobra.Command, _ []string) error {
			org, err := uuid.Parse(orgID)
			if err != nil {
				return fmt.Errorf("invalid --org: %w", err)
			}
			templates, err := onboarding.LoadTemplateFile(file)
			if err != nil {
				return err
			}

			return withApp(cmd.Context(), func(a *app.App) error {
				created, skipped, err := seedTemplates(cmd.Context(), a.Onboarding, org, templates, cmd.OutOrStdout())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "seeded %d templates, %d already present\n", created, skipped)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&orgID, "org", "", "organization id")
	cmd.Flags().StringVarP(&file, "file", "f", "templates.yaml", "YAML template file")
	_ = cmd.MarkFlagRequired("org")
	return cmd
}

// seedTemplates creates each template, skipping codes the organization already has
func seedTemplates(ctx context.Context, creator templateCreator, org uuid.UUID, templates []onboarding.TemplateRequest, out io.Writer) (int, int, error) {
	created, skipped := 0, 0
	for i := range templates {
		req := &templates[i]
		tpl, err := creator.CreateTemplate(ctx, org, nil, req)
		if errors.Is(err, onboarding.ErrDuplicateTemplateCode) {
			fmt.Fprintf(out, "skip   %s (exists)\n", req.TemplateCode)
			skipped++
			continue
		}
		if err != nil {
			return created, skipped, fmt.Errorf("failed to seed %s: %w", req.TemplateCode, err)
		}
		fmt.Fprintf(out, "create %s %s (%d steps)\n", tpl.TemplateCode, tpl.ID, len(tpl.Steps))
		created++
	}
	return created, skipped, nil
}
