package export

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"
	"time"

	"ascii-theater/internal/ascii"
	"ascii-theater/internal/encoder"
	"ascii-theater/internal/grid"
	"ascii-theater/internal/logging"
	"ascii-theater/internal/metrics"
	"ascii-theater/internal/render"
	"ascii-theater/internal/tier"
	"ascii-theater/internal/video"

	"github.com/google/uuid"
)

// defaultDisplayDelay is how long a terminal status stays visible before
// the job resets to idle.
const defaultDisplayDelay = 2500 * time.Millisecond

// FrameSource supplies probed metadata and frame-accurate extraction.
// *video.Source satisfies it; tests substitute doubles.
type FrameSource interface {
	Info() video.Info
	FrameAt(ctx context.Context, ts float64) (image.Image, error)
}

// Options are the per-job parameters.
type Options struct {
	Format    encoder.Format
	Tier      tier.Config
	Palette   ascii.Palette
	Scheme    ascii.Scheme
	CharPixel float64
	Contrast  float64

	// ViewportHeight sizes the export grid. Zero falls back to the
	// source height.
	ViewportHeight int
}

// Orchestrator executes export jobs against an externally owned encoder
// handle. It holds no global state; the encoder is passed in so tests can
// substitute doubles. One job may run at a time; callers enforce
// exclusivity.
type Orchestrator struct {
	enc          encoder.Encoder
	surface      *ascii.Surface
	canvas       *render.Canvas
	displayDelay time.Duration
}

// New creates an Orchestrator around the given encoder handle.
func New(enc encoder.Encoder) *Orchestrator {
	return &Orchestrator{
		enc:          enc,
		surface:      ascii.NewSurface(),
		canvas:       render.NewCanvas(),
		displayDelay: defaultDisplayDelay,
	}
}

// SetDisplayDelay overrides the terminal-status display window. Tests set
// it to zero.
func (o *Orchestrator) SetDisplayDelay(d time.Duration) {
	o.displayDelay = d
}

// Run executes one export job. Status snapshots stream on the returned
// channel, ending with done or error, then an idle reset after the display
// window, after which the channel closes. Cleanup of the encoder file
// store always runs, whatever the outcome.
func (o *Orchestrator) Run(ctx context.Context, src FrameSource, opts Options) <-chan Job {
	updates := make(chan Job, 64)

	go func() {
		defer close(updates)

		job := Job{
			ID:     uuid.NewString(),
			Status: StatusIdle,
			Format: opts.Format,
		}
		plannedFrames := 0

		// Cleanup runs regardless of outcome: every input file that may
		// have been created, plus the output if one was produced.
		defer func() {
			o.cleanup(plannedFrames, opts.Format)
		}()

		err := o.run(ctx, src, opts, &job, &plannedFrames, updates)
		if err != nil {
			job.Status = StatusError
			job.Progress = 0
			job.Message = failureMessage(err)
			job.Artifact = nil
			metrics.ExportsTotal.WithLabelValues(string(opts.Format), "error").Inc()
			logging.Error("Export %s failed: %v", job.ID, err)
			publish(updates, job)
		} else {
			metrics.ExportsTotal.WithLabelValues(string(opts.Format), "done").Inc()
			logging.Info("Export %s complete: %s (%d bytes)", job.ID, job.Artifact.Name, len(job.Artifact.Data))
		}

		// Terminal display window, then back to idle.
		if o.displayDelay > 0 {
			select {
			case <-time.After(o.displayDelay):
			case <-ctx.Done():
			}
		}
		job.Status = StatusIdle
		job.Progress = 0
		job.Message = ""
		job.Artifact = nil
		publish(updates, job)
	}()

	return updates
}

func (o *Orchestrator) run(ctx context.Context, src FrameSource, opts Options, job *Job, plannedFrames *int, updates chan Job) error {
	// initializing: acquire the external encoder.
	phaseStart := time.Now()
	job.Status = StatusInitializing
	job.Message = "preparing encoder"
	publish(updates, *job)

	if err := o.enc.Load(ctx); err != nil {
		return errors.Join(ErrEncoderUnavailable, err)
	}
	job.Progress = progressInitDone
	publish(updates, *job)
	metrics.ExportPhaseDuration.WithLabelValues("initializing").Observe(time.Since(phaseStart).Seconds())

	// sampling: seek, rasterize, render, submit.
	phaseStart = time.Now()
	info := src.Info()
	total := int(math.Ceil(info.Duration * float64(opts.Tier.FrameRate)))
	if total > opts.Tier.MaxFrames {
		total = opts.Tier.MaxFrames
		job.Message = fmt.Sprintf("long source: export truncated to %d frames", total)
	} else {
		job.Message = fmt.Sprintf("sampling %d frames", total)
	}
	*plannedFrames = total

	job.Status = StatusSampling
	publish(updates, *job)

	charPixel := opts.Tier.ClampCharPixel(opts.CharPixel)
	viewport := opts.ViewportHeight
	if viewport <= 0 {
		viewport = info.Height
	}
	geom := grid.Resolve(info.Width, info.Height, viewport, charPixel)
	rasterOpts := ascii.Options{Palette: opts.Palette, Scheme: opts.Scheme, Contrast: opts.Contrast}

	step := 0.0
	if total > 1 {
		step = info.Duration / float64(total-1)
	}

	submitted := 0
	for i := 0; i < total; i++ {
		frame, err := src.FrameAt(ctx, step*float64(i))
		if err != nil {
			// A single bad instant does not abort the job.
			logging.Warn("Skipping instant %d: %v", i, err)
			metrics.ExportFramesSkipped.Inc()
			continue
		}

		rasterStart := time.Now()
		asciiFrame, err := o.surface.Rasterize(frame, geom, rasterOpts)
		if err != nil {
			logging.Warn("Skipping instant %d: rasterization yielded nothing: %v", i, err)
			metrics.ExportFramesSkipped.Inc()
			continue
		}
		metrics.RasterizeDuration.Observe(time.Since(rasterStart).Seconds())
		metrics.FramesRasterized.WithLabelValues("export").Inc()

		still, err := o.canvas.EncodePNG(asciiFrame, opts.Tier.WatermarkText)
		if err != nil {
			return &FrameError{Index: i + 1, Err: err}
		}
		if err := o.enc.WriteInputFile(encoder.InputFileName(submitted), still); err != nil {
			return &FrameError{Index: i + 1, Err: err}
		}
		submitted++
		job.Frames = submitted
		metrics.ExportFramesSampled.Inc()

		job.Progress = progressInitDone + (progressSamplingDone-progressInitDone)*float64(i+1)/float64(total)
		publish(updates, *job)
	}

	if submitted == 0 {
		return ErrNoFramesCaptured
	}
	metrics.ExportPhaseDuration.WithLabelValues("sampling").Observe(time.Since(phaseStart).Seconds())

	// encoding: one external encoder run over the submitted sequence.
	phaseStart = time.Now()
	job.Status = StatusEncoding
	job.Progress = progressSamplingDone
	job.Message = fmt.Sprintf("encoding %d frames to %s", submitted, opts.Format)
	publish(updates, *job)

	if err := o.enc.Execute(ctx, opts.Format.Args(opts.Tier.FrameRate)); err != nil {
		return errors.Join(ErrEncodingFailed, err)
	}
	job.Progress = progressEncodingDone
	publish(updates, *job)
	metrics.ExportPhaseDuration.WithLabelValues("encoding").Observe(time.Since(phaseStart).Seconds())

	// delivering: read back and package the artifact.
	phaseStart = time.Now()
	job.Status = StatusDelivering
	job.Message = "packaging artifact"
	publish(updates, *job)

	data, err := o.enc.ReadOutputFile(opts.Format.OutputName())
	if err != nil {
		return errors.Join(ErrDeliveryFailed, err)
	}
	if len(data) == 0 {
		return errors.Join(ErrDeliveryFailed, errors.New("encoder produced an empty artifact"))
	}

	job.Status = StatusDone
	job.Progress = 1
	job.Message = fmt.Sprintf("export ready: %s", opts.Format.OutputName())
	job.Artifact = &Artifact{
		Name: opts.Format.OutputName(),
		MIME: opts.Format.MIME(),
		Data: data,
	}
	publish(updates, *job)
	metrics.ExportPhaseDuration.WithLabelValues("delivering").Observe(time.Since(phaseStart).Seconds())

	return nil
}

// cleanup deletes every input file that may have been created and the
// output artifact. Deletes are best-effort; the encoder ignores missing
// files.
func (o *Orchestrator) cleanup(plannedFrames int, format encoder.Format) {
	for i := 0; i < plannedFrames; i++ {
		if err := o.enc.DeleteInputFile(encoder.InputFileName(i)); err != nil {
			logging.Debug("Cleanup: could not delete %s: %v", encoder.InputFileName(i), err)
		}
	}
	if err := o.enc.DeleteInputFile(format.OutputName()); err != nil {
		logging.Debug("Cleanup: could not delete %s: %v", format.OutputName(), err)
	}
}

// publish sends a snapshot without ever blocking the pipeline: when the
// buffer is full the oldest update is dropped in favor of the newest.
func publish(updates chan Job, snap Job) {
	select {
	case updates <- snap:
	default:
		select {
		case <-updates:
		default:
		}
		select {
		case updates <- snap:
		default:
		}
	}
}

// failureMessage maps a job error to the most specific human-readable
// description available.
func failureMessage(err error) string {
	var fe *FrameError
	switch {
	case errors.Is(err, ErrEncoderUnavailable):
		if errors.Is(err, encoder.ErrEnvironmentIncompatible) {
			return "the encoder cannot run in this environment; check that ffmpeg is installed and executable"
		}
		return "the encoder failed to initialize; try again"
	case errors.As(err, &fe):
		return fmt.Sprintf("could not process frame %d; the export was aborted", fe.Index)
	case errors.Is(err, ErrNoFramesCaptured):
		return "no frames could be captured from the source video"
	case errors.Is(err, ErrEncodingFailed):
		if errors.Is(err, encoder.ErrMemoryExhausted) {
			return "encoding ran out of memory; try a shorter clip or a larger character size"
		}
		if errors.Is(err, encoder.ErrEnvironmentIncompatible) {
			return "the encoder cannot run in this environment; check that ffmpeg is installed and executable"
		}
		return fmt.Sprintf("encoding failed: %v", err)
	case errors.Is(err, ErrDeliveryFailed):
		return "the encoded file could not be retrieved"
	default:
		return fmt.Sprintf("export failed: %v", err)
	}
}
