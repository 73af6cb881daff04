package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"peoplehub/hr-portal/hr-portal-backend/internal/app"
	"peoplehub/hr-portal/hr-portal-backend/internal/onboarding"
	"peoplehub/hr-portal/hr-portal-backend/pkg/export"
	"peoplehub/hr-portal/hr-portal-backend/pkg/storage"
)

func newExportCommand() *cobra.Command {
	var (
		orgID  string
		format string
		status string
		out    string
		upload bool
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export an organization's onboarding progress as xlsx or csv",
		RunE: func(cmd *cobra.Command, _ []string) error {
			org, err := uuid.Parse(orgID)
			if err != nil {
				return fmt.Errorf("invalid --org: %w", err)
			}
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			var filter *onboarding.OverallStatus
			if status != "" {
				s := onboarding.OverallStatus(status)
				filter = &s
			}

			return withApp(cmd.Context(), func(a *app.App) error {
				table, err := a.Onboarding.ProgressTable(cmd.Context(), org, filter)
				if err != nil {
					return err
				}
				var buf bytes.Buffer
				if err := export.Write(&buf, f, table); err != nil {
					return err
				}

				if upload {
					return uploadExport(cmd, a, org, f, &buf)
				}
				return writeExport(cmd.OutOrStdout(), out, &buf)
			})
		},
	}
	cmd.Flags().StringVar(&orgID, "org", "", "organization id")
	cmd.Flags().StringVar(&format, "format", "xlsx", "xlsx or csv")
	cmd.Flags().StringVar(&status, "status", "", "only export progress in this overall status")
	cmd.Flags().StringVarP(&out, "out", "o", "-", "output file, - for stdout")
	cmd.Flags().BoolVar(&upload, "upload", false, "upload to the export bucket and print a presigned URL")
	_ = cmd.MarkFlagRequired("org")
	return cmd
}

func writeExport(stdout io.Writer, path string, buf *bytes.Buffer) error {
	if path == "-" {
		_, err := buf.WriteTo(stdout)
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	fmt.Fprintf(stdout, "wrote %s\n", path)
	return nil
}

func uploadExport(cmd *cobra.Command, a *app.App, org uuid.UUID, f export.Format, buf *bytes.Buffer) error {
	aws := a.Config.AWS
	if aws.ExportBucket == "" {
		return fmt.Errorf("no export bucket configured")
	}
	client, err := storage.NewS3Client(cmd.Context(), storage.S3Config{
		Region:          aws.Region,
		Endpoint:        aws.Endpoint,
		AccessKeyID:     aws.AccessKeyID,
		SecretAccessKey: aws.SecretAccessKey,
		UsePathStyle:    aws.UsePathStyle,
	})
	if err != nil {
		return err
	}

	key := storage.ExportKey(org.String(), time.Now(), f.Extension())
	if err := client.Upload(cmd.Context(), aws.ExportBucket, key, buf, f.ContentType()); err != nil {
		return err
	}
	url, err := client.GetPresignedURL(cmd.Context(), aws.ExportBucket, key, aws.PresignExpiry)
	if err != nil {
		return err
	}

	a.Logger.Info("Onboarding export uploaded",
		zap.String("bucket", aws.ExportBucket),
		zap.String("key", key))
	fmt.Fprintln(cmd.OutOrStdout(), url)
	return nil
}
