package style

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/graphrender/pkg/errors"
)

// Profile is a validated profile render bundle.
type Profile struct {
	ID        string
	Version   int
	Checksum  string
	RenderCSS string
}

// ReadProfileFile reads a profile bundle from a JSON or YAML file.
func ReadProfileFile(path string) (Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Profile{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "profile bundle not found: %s", path)
		}
		return Profile{}, fmt.Errorf("read %s: %w", path, err)
	}
	return ParseProfile(data)
}

// ParseProfile decodes and validates a profile bundle. JSON is accepted as
// a subset of YAML. profileId, profileVersion, checksum and a non-blank
// renderCss are required.
func ParseProfile(data []byte) (Profile, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Profile{}, errors.Wrap(errors.ErrCodeInvalidProfile, err, "decode profile bundle")
	}
	if raw == nil {
		return Profile{}, errors.New(errors.ErrCodeInvalidProfile, "profile bundle is empty")
	}

	for _, field := range []string{"profileId", "profileVersion", "checksum", "renderCss"} {
		if _, ok := raw[field]; !ok {
			return Profile{}, errors.New(errors.ErrCodeInvalidProfile, "profile bundle is missing required field %q", field)
		}
	}

	version, err := toInt(raw["profileVersion"])
	if err != nil {
		return Profile{}, errors.Wrap(errors.ErrCodeInvalidProfile, err, "profile bundle field %q", "profileVersion")
	}
	p := Profile{
		ID:        fmt.Sprint(raw["profileId"]),
		Version:   version,
		Checksum:  fmt.Sprint(raw["checksum"]),
		RenderCSS: fmt.Sprint(raw["renderCss"]),
	}
	if raw["renderCss"] == nil || strings.TrimSpace(p.RenderCSS) == "" {
		return Profile{}, errors.New(errors.ErrCodeInvalidProfile, "profile bundle field %q must not be empty", "renderCss")
	}
	return p, nil
}

// ThemeOptions returns options selecting the profile's CSS, always embedded.
func (p Profile) ThemeOptions() ThemeOptions {
	css := p.RenderCSS
	return ThemeOptions{CSS: &css, Embed: true}
}

func toInt(v any) (int, error) {
	switch t := v.(type) {
	case int:
		return t, nil
	case float64:
		if t != math.Trunc(t) {
			return 0, fmt.Errorf("not an integer: %v", t)
		}
		return int(t), nil
	case string:
		return strconv.Atoi(strings.TrimSpace(t))
	}
	return 0, fmt.Errorf("not an integer: %v", v)
}
