package video

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"

	"ascii-theater/internal/logging"
)

// Info describes a probed source video.
type Info struct {
	Duration float64 `json:"duration"`
	Width    int     `json:"width"`
	Height   int     `json:"height"`
	Codec    string  `json:"codec"`
}

type probeOutput struct {
	Streams []struct {
		CodecType string `json:"codec_type"`
		CodecName string `json:"codec_name"`
		Width     int    `json:"width"`
		Height    int    `json:"height"`
		Duration  string `json:"duration"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// Probe reads stream metadata with ffprobe.
func Probe(ctx context.Context, path string) (*Info, error) {
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffprobe error: %w - %s", err, stderr.String())
	}

	info, err := parseProbeOutput(stdout.Bytes())
	if err != nil {
		return nil, err
	}

	if info.Width == 0 || info.Height == 0 {
		logging.Warn("Probe found no video stream dimensions in %s", path)
	}

	logging.Debug("Probed %s: %.2fs %dx%d codec=%s", path, info.Duration, info.Width, info.Height, info.Codec)
	return info, nil
}

func parseProbeOutput(data []byte) (*Info, error) {
	var out probeOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	info := &Info{}
	if d, err := strconv.ParseFloat(out.Format.Duration, 64); err == nil {
		info.Duration = d
	}

	for _, s := range out.Streams {
		if s.CodecType != "video" {
			continue
		}
		info.Width = s.Width
		info.Height = s.Height
		info.Codec = s.CodecName
		if info.Duration == 0 {
			if d, err := strconv.ParseFloat(s.Duration, 64); err == nil {
				info.Duration = d
			}
		}
		break
	}

	return info, nil
}
