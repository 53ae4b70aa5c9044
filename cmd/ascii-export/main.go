// Command ascii-export converts a video into a character-art clip from
// the command line, without the HTTP server. It drives the same export
// pipeline the server uses, or plays the source as live ASCII directly
// in the terminal with -play.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"ascii-theater/internal/ascii"
	"ascii-theater/internal/encoder"
	"ascii-theater/internal/export"
	"ascii-theater/internal/grid"
	"ascii-theater/internal/preview"
	"ascii-theater/internal/tier"
	"ascii-theater/internal/video"

	"golang.org/x/term"
)

func main() {
	var (
		input     = flag.String("input", "", "Path to the source video (required)")
		format    = flag.String("format", "mp4", "Output format: mp4, gif, or mov")
		tierName  = flag.String("tier", "free", "Policy tier: free or premium")
		palette   = flag.String("palette", "classic", "Glyph palette name")
		scheme    = flag.String("scheme", "mono", "Color scheme name")
		charPixel = flag.Float64("char-pixel", 10, "Character cell size in pixels")
		contrast  = flag.Float64("contrast", 1, "Contrast multiplier")
		viewport  = flag.Int("viewport", 720, "Viewport height in pixels")
		out       = flag.String("out", "", "Output file (default: <input>-ascii.<format>)")
		play      = flag.Bool("play", false, "Play the source as ASCII in the terminal instead of exporting")
		quiet     = flag.Bool("quiet", false, "Suppress progress output")
	)
	flag.Parse()

	if *input == "" {
		fmt.Fprintln(os.Stderr, "Usage: ascii-export -input VIDEO [options]")
		flag.PrintDefaults()
		os.Exit(2)
	}
	if *quiet {
		// Level is read lazily from the environment on first log call.
		os.Setenv("LOG_LEVEL", "error")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	video.InitVips()
	defer video.ShutdownVips()

	src, err := video.Open(ctx, *input)
	if err != nil {
		fatal("Cannot open %s: %v", *input, err)
	}

	policy := tier.ForEntitlement(tier.Entitlement(*tierName))
	style := ascii.Options{
		Palette:  ascii.PaletteByName(*palette),
		Scheme:   ascii.SchemeByName(*scheme),
		Contrast: *contrast,
	}

	if *play {
		if err := playTerminal(ctx, src, style, policy.ClampCharPixel(*charPixel)); err != nil {
			fatal("Playback failed: %v", err)
		}
		return
	}

	if err := runExport(ctx, src, policy, style, *format, *charPixel, *viewport, *out, *quiet); err != nil {
		fatal("Export failed: %v", err)
	}
}

func runExport(ctx context.Context, src *video.Source, policy tier.Config, style ascii.Options, format string, charPixel float64, viewport int, out string, quiet bool) error {
	workDir, err := os.MkdirTemp("", "ascii-export-*")
	if err != nil {
		return fmt.Errorf("cannot create scratch directory: %w", err)
	}
	defer os.RemoveAll(workDir)

	o := export.New(encoder.NewFFmpeg(workDir))
	o.SetDisplayDelay(0)

	opts := export.Options{
		Format:         encoder.ParseFormat(format),
		Tier:           policy,
		Palette:        style.Palette,
		Scheme:         style.Scheme,
		CharPixel:      charPixel,
		Contrast:       style.Contrast,
		ViewportHeight: viewport,
	}

	var final export.Job
	for job := range o.Run(ctx, src, opts) {
		if job.Status == export.StatusDone || job.Status == export.StatusError {
			final = job
		}
		if !quiet && job.Status != export.StatusIdle {
			fmt.Fprintf(os.Stderr, "\r%-12s %3.0f%%  %s", job.Status, job.Progress*100, job.Message)
		}
	}
	if !quiet {
		fmt.Fprintln(os.Stderr)
	}

	if final.Status != export.StatusDone {
		return fmt.Errorf("%s", final.Message)
	}

	if out == "" {
		base := src.Path()
		out = base[:len(base)-len(filepath.Ext(base))] + "-ascii." + string(opts.Format)
	}
	if err := os.WriteFile(out, final.Artifact.Data, 0644); err != nil {
		return fmt.Errorf("cannot write artifact: %w", err)
	}
	fmt.Printf("%s (%d frames, %d bytes)\n", out, final.Frames, len(final.Artifact.Data))
	return nil
}

// playTerminal renders the source live into the current terminal. Space
// toggles pause, q quits. Requires a real TTY.
func playTerminal(ctx context.Context, src *video.Source, style ascii.Options, charPixel float64) error {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return fmt.Errorf("-play requires an interactive terminal")
	}

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("cannot enter raw mode: %w", err)
	}
	defer term.Restore(fd, oldState)

	// Playback runs at the fixed preview rate; the policy only bounds the
	// character size.
	stream, err := src.OpenStream(ctx, preview.DefaultFPS)
	if err != nil {
		return err
	}
	defer stream.Close()

	keys := make(chan byte, 8)
	go func() {
		buf := make([]byte, 1)
		for {
			if _, err := os.Stdin.Read(buf); err != nil {
				return
			}
			keys <- buf[0]
		}
	}()

	surface := ascii.NewSurface()
	info := src.Info()
	ticker := time.NewTicker(preview.TickInterval(preview.DefaultFPS))
	defer ticker.Stop()

	// Clear screen and hide the cursor for the duration of playback.
	fmt.Print("\x1b[2J\x1b[?25l")
	defer fmt.Print("\x1b[?25h\x1b[2J\x1b[H")

	for {
		select {
		case <-ctx.Done():
			return nil
		case key := <-keys:
			switch key {
			case 'q', 3: // q or Ctrl-C
				return nil
			case ' ':
				if stream.Playing() {
					stream.Pause()
				} else {
					stream.Play()
				}
			}
		case <-ticker.C:
			if !stream.Playing() {
				continue
			}
			img, err := stream.Next()
			if err == io.EOF {
				return nil
			}
			if err != nil {
				continue
			}

			cols, rows, err := term.GetSize(fd)
			if err != nil || cols < 1 || rows < 1 {
				cols, rows = 80, 24
			}
			geom := fitTerminal(info, cols, rows, charPixel)
			frame, err := surface.Rasterize(img, geom, style)
			if err != nil {
				continue
			}
			drawFrame(frame)
		}
	}
}

// fitTerminal resolves grid geometry against the source, then shrinks it
// to the terminal's character cells.
func fitTerminal(info video.Info, cols, rows int, charPixel float64) grid.Geometry {
	geom := grid.Resolve(info.Width, info.Height, rows*int(charPixel), charPixel)
	if geom.Columns > cols {
		geom.Columns = cols
	}
	if geom.Rows > rows-1 {
		geom.Rows = rows - 1
	}
	if geom.Columns < 1 {
		geom.Columns = 1
	}
	if geom.Rows < 1 {
		geom.Rows = 1
	}
	return geom
}

func drawFrame(frame *ascii.Frame) {
	// Home the cursor rather than clearing to avoid flicker. Raw mode
	// needs explicit carriage returns.
	fmt.Print("\x1b[H")
	for _, line := range frame.Lines() {
		fmt.Print(line + "\r\n")
	}
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
