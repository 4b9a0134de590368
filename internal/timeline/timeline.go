// Package timeline stores the transition trace of an export run as YAML.
package timeline

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ivlev/typing2video/internal/typing"
)

const Version = "1.0"

// Timeline is every state transition of one run, stamped with virtual time.
type Timeline struct {
	Version string   `yaml:"version"`
	FPS     int      `yaml:"fps"`
	Seed    int64    `yaml:"seed"`
	Strings []string `yaml:"strings"`
	Events  []Event  `yaml:"events"`
}

// Event is one accepted transition.
type Event struct {
	Frame       int    `yaml:"frame"`   // frame on which the new state is first shown
	TimeMs      int64  `yaml:"time_ms"` // virtual time of the transition
	Phase       string `yaml:"phase"`
	StringIndex int    `yaml:"string_index"`
	CharIndex   int    `yaml:"char_index"`
	Text        string `yaml:"text"`
	Selected    bool   `yaml:"selected,omitempty"`
}

func New(fps int, seed int64, strs []string) *Timeline {
	return &Timeline{
		Version: Version,
		FPS:     fps,
		Seed:    seed,
		Strings: append([]string(nil), strs...),
	}
}

// Record appends s as reached at virtual time at. A nil Timeline ignores the call.
func (t *Timeline) Record(frame int, at time.Duration, s typing.State) {
	if t == nil {
		return
	}
	t.Events = append(t.Events, Event{
		Frame:       frame,
		TimeMs:      at.Milliseconds(),
		Phase:       s.Phase.String(),
		StringIndex: s.StringIndex,
		CharIndex:   s.CharIndex,
		Text:        s.Text,
		Selected:    s.IsTextSelected(),
	})
}

// Duration is the virtual time of the last event.
func (t *Timeline) Duration() time.Duration {
	if t == nil || len(t.Events) == 0 {
		return 0
	}
	return time.Duration(t.Events[len(t.Events)-1].TimeMs) * time.Millisecond
}

func Write(t *Timeline, path string) error {
	data, err := yaml.Marshal(t)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func Read(path string) (*Timeline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var t Timeline
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, err
	}
	return &t, nil
}
