package video

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Codec is one entry of the encoder preference list.
type Codec struct {
	Name string // ffmpeg encoder name
	Ext  string // container extension without the dot
}

// DefaultCodecs lists encoders from most to least preferred.
var DefaultCodecs = []Codec{
	{Name: "h264_videotoolbox", Ext: "mp4"},
	{Name: "h264_nvenc", Ext: "mp4"},
	{Name: "libx264", Ext: "mp4"},
	{Name: "libvpx-vp9", Ext: "webm"},
	{Name: "mpeg4", Ext: "mp4"},
}

// DefaultQuality returns the quality used when none is configured.
func DefaultQuality(c Codec) int {
	switch c.Name {
	case "h264_videotoolbox":
		return 75 // Хорошее качество для VideoToolbox
	case "h264_nvenc":
		return 28 // Эквивалент CRF для NVENC
	case "libvpx-vp9":
		return 32
	case "mpeg4":
		return 4
	default:
		return 23 // Стандартный CRF для x264
	}
}

func qualityArgs(c Codec, quality int) []string {
	if quality <= 0 {
		quality = DefaultQuality(c)
	}
	switch c.Name {
	case "h264_videotoolbox":
		// VideoToolbox часто не поддерживает -q:v напрямую на всех версиях. Используем битрейт.
		return []string{"-b:v", fmt.Sprintf("%dk", quality*100)}
	case "h264_nvenc":
		return []string{"-cq", fmt.Sprintf("%d", quality)}
	case "libvpx-vp9":
		return []string{"-crf", fmt.Sprintf("%d", quality), "-b:v", "0", "-deadline", "realtime", "-row-mt", "1"}
	case "mpeg4":
		return []string{"-q:v", fmt.Sprintf("%d", quality)}
	default: // libx264
		return []string{"-crf", fmt.Sprintf("%d", quality), "-preset", "medium"}
	}
}

// Candidates returns the codecs usable for path. A path with an extension
// keeps only codecs of that container; a bare path keeps all of them.
func Candidates(codecs []Codec, path string) []Codec {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if ext == "" {
		return codecs
	}
	var out []Codec
	for _, c := range codecs {
		if c.Ext == ext {
			out = append(out, c)
		}
	}
	return out
}

// OutputPath appends the codec's extension when path has none.
func OutputPath(path string, c Codec) string {
	if filepath.Ext(path) != "" {
		return path
	}
	return path + "." + c.Ext
}

// Prefer moves the codec called name to the front of the list. Unknown names
// are added with the mp4 container.
func Prefer(codecs []Codec, name string) []Codec {
	if name == "" {
		return codecs
	}
	first := Codec{Name: name, Ext: "mp4"}
	out := make([]Codec, 0, len(codecs)+1)
	for _, c := range codecs {
		if c.Name == name {
			first = c
			continue
		}
		out = append(out, c)
	}
	return append([]Codec{first}, out...)
}
