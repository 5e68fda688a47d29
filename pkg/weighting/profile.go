package weighting

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/natefinch/atomic"
	"github.com/tailscale/hujson"

	"github.com/m4ra-routing/m4ra/pkg/cache"
)

// Fixed motorcar penalty defaults used by the orchestrator.
const (
	DefaultTrafficLightPenalty = 16.0
	DefaultTurnPenalty         = 1.0
)

var ErrProfileTemplateMismatch = errors.New("penalty profile document does not have the expected structure")

// BuildMotorcarProfile applies the two motorcar penalty overrides to the
// collaborator's default configuration document. The document is patched
// by schema path (/penalties/motorcar/...), every untouched byte survives
// unchanged. Fails with ErrProfileTemplateMismatch when either field is
// absent.
func BuildMotorcarProfile(defaultDoc []byte, trafficLightPenalty, turnPenalty float64) ([]byte, error) {
	doc, err := hujson.Parse(defaultDoc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProfileTemplateMismatch, err)
	}

	patch := fmt.Sprintf(`[
		{"op": "replace", "path": "/penalties/motorcar/traffic_lights", "value": %s},
		{"op": "replace", "path": "/penalties/motorcar/turn", "value": %s}
	]`, formatPenalty(trafficLightPenalty), formatPenalty(turnPenalty))

	if err := doc.Patch([]byte(patch)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProfileTemplateMismatch, err)
	}
	return doc.Pack(), nil
}

// EnsureProfile makes sure the patched penalty configuration exists in the
// city's cache directory and returns its path. First writer wins; later
// calls reuse the existing file. The collaborator's temp default document
// is removed after patching.
func EnsureProfile(cfg *cache.Config, city string, w Weighter, trafficLightPenalty, turnPenalty float64) (string, error) {
	dir, err := cfg.EnsureCityDir(city)
	if err != nil {
		return "", err
	}
	path := cfg.ProfilePath(city)
	if _, statErr := os.Stat(path); statErr == nil {
		return path, nil
	}

	tempPath, err := w.WriteDefaultProfile(dir)
	if err != nil {
		return "", fmt.Errorf("writing default penalty profile: %w", err)
	}
	defer os.Remove(tempPath)

	defaultDoc, err := os.ReadFile(tempPath)
	if err != nil {
		return "", fmt.Errorf("reading default penalty profile: %w", err)
	}
	patched, err := BuildMotorcarProfile(defaultDoc, trafficLightPenalty, turnPenalty)
	if err != nil {
		return "", err
	}
	if err := atomic.WriteFile(path, bytes.NewReader(patched)); err != nil {
		return "", fmt.Errorf("writing penalty profile %s: %w", path, err)
	}
	return path, nil
}

func formatPenalty(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
