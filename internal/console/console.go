package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
)

const prompt = "> "

// Run shows the screen, then reads commands from in until EOF, /quit or ctx
// is done, writing each result to out.
func Run(ctx context.Context, engine *Engine, in io.Reader, out io.Writer) error {
	slog.Info("console started")
	defer slog.Info("console stopped")

	fmt.Fprintln(out, engine.Screen())
	fmt.Fprint(out, prompt)

	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-readErr:
			if err != nil {
				return fmt.Errorf("reading input: %w", err)
			}
			return nil
		case line := <-lines:
			text, err := engine.Handle(ctx, line)
			if text != "" {
				fmt.Fprintln(out, text)
			}
			if errors.Is(err, ErrQuit) {
				return nil
			}
			fmt.Fprint(out, prompt)
		}
	}
}
