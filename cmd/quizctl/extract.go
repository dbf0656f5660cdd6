package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"smartstudy/internal/domain"
	"smartstudy/internal/service"

	"github.com/spf13/cobra"
)

var extractCmd = &cobra.Command{
	Use:   "extract FILE...",
	Short: "Extract and print the text of documents",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, _, err := loadServices(cmd)
		if err != nil {
			return err
		}
		defer services.Close()
		if services.Extraction == nil {
			return domain.NewExtractionError("text extraction is not configured", nil)
		}
		return runExtract(cmd.Context(), services.Extraction, args, cmd.OutOrStdout())
	},
}

func runExtract(ctx context.Context, extraction service.ExtractionService, paths []string, stdout io.Writer) error {
	files := make([]domain.UploadedFile, 0, len(paths))
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", p, err)
		}
		defer f.Close()
		files = append(files, domain.UploadedFile{Name: filepath.Base(p), Content: f})
	}

	text, err := extraction.Extract(ctx, files)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(stdout, text)
	return err
}
