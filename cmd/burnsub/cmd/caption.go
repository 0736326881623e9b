package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/burnsub/burnsub/pkg/caption"
	"github.com/burnsub/burnsub/pkg/logger"
	"github.com/burnsub/burnsub/pkg/pipeline"
	"github.com/burnsub/burnsub/pkg/session"
)

var captionCmd = &cobra.Command{
	Use:   "caption [video file]",
	Short: "Caption a local video file",
	Long: `Transcribe a video's audio track and burn the resulting captions back
into it in one shot.

By default the captioned video is written next to the input with a
".captioned" suffix. Use --srt-only to stop after subtitle generation.`,
	Args: cobra.ExactArgs(1),
	RunE: runCaption,
}

func init() {
	captionCmd.Flags().StringP("output", "o", "", "output file path")
	captionCmd.Flags().String("font-size", "", "caption font size (16-48)")
	captionCmd.Flags().String("font-color", "", "caption font color (hex RRGGBB)")
	captionCmd.Flags().Bool("srt-only", false, "write the subtitle file and skip the burn step")
	rootCmd.AddCommand(captionCmd)
}

func runCaption(cmd *cobra.Command, args []string) error {
	videoPath := args[0]
	log := logger.WithComponent("caption")

	if _, err := os.Stat(videoPath); err != nil {
		return fmt.Errorf("cannot read input file: %w", err)
	}

	outputPath, _ := cmd.Flags().GetString("output")
	fontSize, _ := cmd.Flags().GetString("font-size")
	fontColor, _ := cmd.Flags().GetString("font-color")
	srtOnly, _ := cmd.Flags().GetBool("srt-only")

	pipe, err := buildPipeline(cfg)
	if err != nil {
		return err
	}

	// The pipeline works against a workspace directory; for one-shot use
	// that is a temp dir torn down when done.
	workDir, err := os.MkdirTemp("", "burnsub-")
	if err != nil {
		return fmt.Errorf("failed to create working directory: %w", err)
	}
	defer func() {
		_ = os.RemoveAll(workDir)
	}()

	base := strings.TrimSuffix(filepath.Base(videoPath), filepath.Ext(videoPath))
	ws := &session.Workspace{ID: base, Dir: workDir}

	ctx := context.Background()

	subtitlePath, err := pipe.ExtractAndTranscribe(ctx, videoPath, ws)
	if err != nil {
		return fmt.Errorf("transcription failed: %w", err)
	}

	if srtOnly {
		dest := outputPath
		if dest == "" {
			dest = filepath.Join(filepath.Dir(videoPath), base+".srt")
		}
		if err := copyFile(subtitlePath, dest); err != nil {
			return fmt.Errorf("failed to write subtitle file: %w", err)
		}
		fmt.Printf("Subtitles written to %s\n", dest)
		return nil
	}

	styleInput := caption.StyleInput{FontSize: fontSize, FontColor: fontColor}
	burnedPath, err := pipe.Burn(ctx, videoPath, subtitlePath, styleInput, ws, pipeline.DefaultOutputName)
	if err != nil {
		return fmt.Errorf("caption burn failed: %w", err)
	}

	dest := outputPath
	if dest == "" {
		dest = filepath.Join(filepath.Dir(videoPath), base+".captioned"+filepath.Ext(videoPath))
	}
	if err := os.Rename(burnedPath, dest); err != nil {
		// Rename fails across filesystems; fall back to a copy
		if copyErr := copyFile(burnedPath, dest); copyErr != nil {
			return fmt.Errorf("failed to write output file: %w", copyErr)
		}
	}

	log.Info().Str("output", dest).Msg("Captioned video written")
	fmt.Printf("Captioned video written to %s\n", dest)
	return nil
}

// copyFile copies src to dst, replacing dst if it exists
func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o644)
}
