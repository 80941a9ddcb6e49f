package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/autocaps/renderd/internal/subtitle"
)

var captionsCmd = &cobra.Command{
	Use:   "captions [segments_file]",
	Short: "Build a caption file from timed segments",
	Long: `Build a subtitle file from a JSON array of timed segments, or restyle
an existing .srt file with one of the known templates.

Known templates produce the styled ASS dialect; unknown template names
fall back to plain SRT output.

Examples:
  renderd captions segments.json --template karaoke
  renderd captions existing.srt --template glowy -o styled.ass`,
	Args: cobra.ExactArgs(1),
	RunE: runCaptions,
}

func init() {
	rootCmd.AddCommand(captionsCmd)

	captionsCmd.Flags().
		StringP("template", "t", "minimal", "Visual template identifier")
	captionsCmd.Flags().
		StringP("output", "o", "", "Output file path")
}

func runCaptions(cmd *cobra.Command, args []string) error {
	inputPath := args[0]
	templateID, _ := cmd.Flags().GetString("template")
	outputPath, _ := cmd.Flags().GetString("output")

	var segments []subtitle.Segment
	if strings.EqualFold(filepath.Ext(inputPath), ".srt") {
		parsed, err := subtitle.ParseSRTFile(inputPath)
		if err != nil {
			return fmt.Errorf("parse SRT input: %w", err)
		}
		segments = parsed
	} else {
		data, err := os.ReadFile(inputPath)
		if err != nil {
			return fmt.Errorf("read segments file: %w", err)
		}
		if err := json.Unmarshal(data, &segments); err != nil {
			return fmt.Errorf("parse segments JSON: %w", err)
		}
	}

	file := subtitle.BuildFile(templateID, subtitle.SanitizeSegments(segments))

	if outputPath == "" {
		base := strings.TrimSuffix(inputPath, filepath.Ext(inputPath))
		outputPath = base + "." + string(file.Format)
	}

	if err := os.WriteFile(outputPath, []byte(file.Content), 0644); err != nil {
		return fmt.Errorf("write caption file: %w", err)
	}

	absOutput, _ := filepath.Abs(outputPath)
	fmt.Printf("Caption file written: %s\n", absOutput)
	fmt.Printf("  Format: %s\n", file.Format)
	fmt.Printf("  Segments: %d\n", len(segments))

	return nil
}
