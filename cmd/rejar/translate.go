package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"rejar/internal/archive"
	"rejar/internal/translate"
)

var (
	translateJar  string
	translateOut  string
	translatePath string
)

var translateCmd = &cobra.Command{
	Use:   "translate",
	Short: "Rewrite translated strings into a JAR",
	Long: `Loads translation records (a JSON array or JSON Lines), rewrites every
matched string constant across the archive's class files, and repacks the
result. An unreadable translations source degrades to a run with zero
replacements rather than failing.`,
	RunE: runTranslate,
}

func init() {
	translateCmd.Flags().StringVar(&translateJar, "jar", "", "path to the input JAR")
	translateCmd.Flags().StringVar(&translateOut, "out", "", "path for the rewritten JAR")
	translateCmd.Flags().StringVar(&translatePath, "translations", "", "path to the translations source")
	_ = translateCmd.MarkFlagRequired("jar")
	_ = translateCmd.MarkFlagRequired("out")
	_ = translateCmd.MarkFlagRequired("translations")
}

func runTranslate(cmd *cobra.Command, args []string) error {
	store, err := translate.Load(translatePath, logger)
	if err != nil {
		var srcErr *translate.SourceError
		if !errors.As(err, &srcErr) {
			return err
		}
		logger.Warn("proceeding with zero translations", zap.Error(err))
	}
	logger.Info("translations loaded",
		zap.String("source", translatePath),
		zap.Int("records", store.Len()))

	p := &archive.Pipeline{Logger: logger}
	stats, err := p.Translate(translateJar, translateOut, store)
	if err != nil {
		return fmt.Errorf("translate: %w", err)
	}

	logger.Info("translation complete",
		zap.String("jar", translateJar),
		zap.String("out", translateOut),
		zap.Int("files_processed", stats.FilesProcessed),
		zap.Int("files_modified", stats.FilesModified),
		zap.Int("total_replacements", stats.TotalReplacements),
		zap.Int("key_based_replacements", stats.KeyBasedReplacements),
		zap.Int("fallback_replacements", stats.FallbackReplacements))
	return nil
}
