package weighting

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m4ra-routing/m4ra/pkg/cache"
)

const testDefaultDoc = `{
    // vehicle speeds in km/h
    "profiles": {
        "foot": {"speed": 5},
        "bicycle": {"speed": 15},
        "motorcar": {"speed": 40}
    },
    "penalties": {
        "motorcar": {
            "traffic_lights": 8,
            "turn": 7.5,
            "restrictions": true
        }
    }
}
`

func TestBuildMotorcarProfilePatchesOnlyTwoValues(t *testing.T) {
	patched, err := BuildMotorcarProfile([]byte(testDefaultDoc), 16, 1)
	require.NoError(t, err)

	assert.Contains(t, string(patched), `"traffic_lights": 16`)
	assert.Contains(t, string(patched), `"turn": 1`)

	// patching the two values back must restore the document
	// byte-identically, proving nothing else was rewritten
	restored, err := BuildMotorcarProfile(patched, 8, 7.5)
	require.NoError(t, err)
	assert.Equal(t, testDefaultDoc, string(restored))
}

func TestBuildMotorcarProfileTemplateMismatch(t *testing.T) {
	cases := []string{
		`{"profiles": {"motorcar": {"speed": 40}}}`,                // no penalties block
		`{"penalties": {"bicycle": {"traffic_lights": 1}}}`,        // no motorcar block
		`{"penalties": {"motorcar": {"traffic_lights": 8}}}`,       // no turn field
		`{"penalties": {"motorcar": {"turn": 7.5}}}`,               // no traffic_lights field
		`not a structured document`,
	}
	for _, doc := range cases {
		_, err := BuildMotorcarProfile([]byte(doc), 16, 1)
		if !errors.Is(err, ErrProfileTemplateMismatch) {
			t.Errorf("doc %q: expected ErrProfileTemplateMismatch, got %v", doc, err)
		}
	}
}

func TestEnsureProfileFirstWriterWins(t *testing.T) {
	cfg := cache.NewConfigWithRoot(t.TempDir())
	spy := newSpyWeighter()

	path, err := EnsureProfile(cfg, "paris", spy, 16, 1)
	require.NoError(t, err)
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	// a later call must reuse the existing file, even with different
	// penalty arguments
	again, err := EnsureProfile(cfg, "paris", spy, 99, 99)
	require.NoError(t, err)
	assert.Equal(t, path, again)
	second, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestEnsureProfileRemovesTempDocument(t *testing.T) {
	cfg := cache.NewConfigWithRoot(t.TempDir())
	spy := newSpyWeighter()

	_, err := EnsureProfile(cfg, "paris", spy, 16, 1)
	require.NoError(t, err)

	entries, err := os.ReadDir(cfg.CityDir("paris"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, cache.ProfileFileName, entries[0].Name())
}
