package video

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"io"
	"os"
	"os/exec"
	"sync"

	"github.com/rs/zerolog/log"
)

// Output describes the stream to record.
type Output struct {
	Path          string // extension optional; added from the chosen codec
	Width, Height int
	FPS           int
}

// Recorder accepts frames in order and finalizes the container on Close.
type Recorder interface {
	WriteFrame(img *image.RGBA) error
	Close() error
	// Abort stops the encoder and removes the partial file.
	Abort()
	Path() string
	Codec() Codec
}

// CheckFunc checks that an encoder can actually be initialized.
type CheckFunc func(ctx context.Context, binary string, c Codec) error

var ErrNoCodec = errors.New("no usable video encoder")

// FFmpegEncoder records frames by streaming raw RGBA into an ffmpeg process.
type FFmpegEncoder struct {
	Binary  string
	Codecs  []Codec
	Quality int
	Check   CheckFunc
}

func NewFFmpegEncoder(quality int) *FFmpegEncoder {
	return &FFmpegEncoder{
		Binary:  "ffmpeg",
		Codecs:  DefaultCodecs,
		Quality: quality,
		Check:   CheckEncoder,
	}
}

// Open walks the codec preference list and starts the first encoder that
// passes its check and starts successfully. If every codec fails, the joined errors are returned.
func (e *FFmpegEncoder) Open(ctx context.Context, out Output) (Recorder, error) {
	candidates := Candidates(e.Codecs, out.Path)
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w for %s", ErrNoCodec, out.Path)
	}

	var failures []error
	for _, c := range candidates {
		if e.Check != nil {
			if err := e.Check(ctx, e.Binary, c); err != nil {
				log.Debug().Err(err).Str("codec", c.Name).Msg("encoder check failed")
				failures = append(failures, fmt.Errorf("%s: %w", c.Name, err))
				continue
			}
		}
		rec, err := e.start(ctx, out, c)
		if err != nil {
			log.Debug().Err(err).Str("codec", c.Name).Msg("encoder start failed")
			failures = append(failures, fmt.Errorf("%s: %w", c.Name, err))
			continue
		}
		if len(failures) > 0 {
			log.Warn().Str("codec", c.Name).Int("skipped", len(failures)).Msg("fell back to a less preferred encoder")
		}
		return rec, nil
	}
	return nil, fmt.Errorf("%w: %w", ErrNoCodec, errors.Join(failures...))
}

func (e *FFmpegEncoder) start(ctx context.Context, out Output, c Codec) (*FFmpegRecorder, error) {
	path := OutputPath(out.Path, c)
	args := e.buildFFmpegArgs(out, path, c)

	cmd := exec.CommandContext(ctx, e.Binary, args...)
	stderr := &lockedBuffer{}
	cmd.Stdout = stderr
	cmd.Stderr = stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe error: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("ffmpeg start error: %w", err)
	}

	return &FFmpegRecorder{
		cmd:    cmd,
		stdin:  stdin,
		stderr: stderr,
		path:   path,
		codec:  c,
		width:  out.Width,
		height: out.Height,
	}, nil
}

func (e *FFmpegEncoder) buildFFmpegArgs(out Output, path string, c Codec) []string {
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-f", "rawvideo",
		"-pixel_format", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", out.Width, out.Height),
		"-framerate", fmt.Sprintf("%d", out.FPS),
		"-i", "-",
		"-an",
		"-c:v", c.Name,
		"-pix_fmt", "yuv420p",
		"-r", fmt.Sprintf("%d", out.FPS),
	}
	args = append(args, qualityArgs(c, e.Quality)...)
	if c.Ext == "mp4" {
		args = append(args, "-movflags", "+faststart")
	}
	args = append(args, path)
	return args
}

// CheckEncoder encodes one tiny synthetic frame with c and discards it.
func CheckEncoder(ctx context.Context, binary string, c Codec) error {
	cmd := exec.CommandContext(ctx, binary,
		"-hide_banner", "-loglevel", "error",
		"-f", "lavfi", "-i", "color=c=black:s=64x64:d=0.1",
		"-frames:v", "1",
		"-c:v", c.Name,
		"-pix_fmt", "yuv420p",
		"-f", "null", "-",
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("check: %w, output: %s", err, bytes.TrimSpace(out))
	}
	return nil
}

// FFmpegRecorder is a running ffmpeg process fed through stdin.
type FFmpegRecorder struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stderr *lockedBuffer
	path   string
	codec  Codec
	width  int
	height int
	frames int
}

func (r *FFmpegRecorder) Path() string { return r.path }

func (r *FFmpegRecorder) Codec() Codec { return r.codec }

func (r *FFmpegRecorder) WriteFrame(img *image.RGBA) error {
	b := img.Bounds()
	if b.Dx() != r.width || b.Dy() != r.height {
		return fmt.Errorf("frame %d is %dx%d, want %dx%d", r.frames, b.Dx(), b.Dy(), r.width, r.height)
	}
	if err := writeRawRGBA(r.stdin, img); err != nil {
		return fmt.Errorf("write raw error: %w, output: %s", err, r.stderr.String())
	}
	r.frames++
	return nil
}

// Close flushes the stream and waits for ffmpeg to finalize the container.
func (r *FFmpegRecorder) Close() error {
	if err := r.stdin.Close(); err != nil {
		return fmt.Errorf("close stdin: %w", err)
	}
	if err := r.cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg wait error: %v, output: %s", err, r.stderr.String())
	}
	return nil
}

func (r *FFmpegRecorder) Abort() {
	r.stdin.Close()
	if r.cmd.Process != nil {
		r.cmd.Process.Kill()
	}
	r.cmd.Wait()
	os.Remove(r.path)
}

func writeRawRGBA(w io.Writer, img *image.RGBA) error {
	bounds := img.Bounds()
	rgba := img
	if rgba.Stride != bounds.Dx()*4 || rgba.Rect.Min.X != 0 || rgba.Rect.Min.Y != 0 {
		rgba = image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	}
	_, err := w.Write(rgba.Pix)
	return err
}

// lockedBuffer collects ffmpeg output. exec copies into it from its own
// goroutine while write errors read it.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
