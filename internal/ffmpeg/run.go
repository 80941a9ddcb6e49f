package ffmpeg

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"

	"github.com/autocaps/renderd/internal/logging"
)

// Run invokes the encoder with the given argument list and waits for it to
// exit. The diagnostic stream is consumed and logged while waiting so the
// process never blocks on a full pipe. A non-zero exit is an error.
func Run(ctx context.Context, logger *logging.Logger, args []string) error {
	bin, err := FFmpegPath()
	if err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, bin, args...)
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("attach ffmpeg stderr: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start ffmpeg: %w", err)
	}

	scanner := bufio.NewScanner(stderr)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		logger.Debugw("ffmpeg", "line", scanner.Text())
	}

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg exited: %w", err)
	}
	return nil
}
