package task

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paperl/serverinit/internal/errors"
)

func keysOf(defs []Definition) []string {
	keys := make([]string, len(defs))
	for i, d := range defs {
		keys[i] = d.Key
	}
	return keys
}

func TestDefaultsFor(t *testing.T) {
	tests := []struct {
		name string
		ctx  Context
		want []string
	}{
		{
			name: "root gets the broadest set",
			ctx:  ContextRoot,
			want: []string{"os", "ssh", "zsh", "conda"},
		},
		{
			name: "existing user drops os",
			ctx:  ContextUser,
			want: []string{"ssh", "zsh", "conda"},
		},
		{
			name: "local is narrowest",
			ctx:  ContextLocal,
			want: []string{"zsh", "conda"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := keysOf(OrderFromIndices(DefaultsFor(tt.ctx)))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseKeysOrderIndependence(t *testing.T) {
	// Selection order never matters; execution order follows the registry.
	inputs := []string{"git,os,ssh", "ssh,git,os", "os,ssh,git"}
	for _, input := range inputs {
		indices, err := ParseKeys(input)
		require.NoError(t, err, input)
		assert.Equal(t, []string{"os", "ssh", "git"}, keysOf(OrderFromIndices(indices)), input)
	}
}

func TestParseKeysRejectsUnknownTokensBatched(t *testing.T) {
	_, err := ParseKeys("git,bogus,os,nope")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrValidate))
	// Every invalid token is named, not just the first.
	assert.Contains(t, err.Error(), "bogus")
	assert.Contains(t, err.Error(), "nope")
}

func TestParseKeysTolerantOfWhitespaceAndCase(t *testing.T) {
	indices, err := ParseKeys(" GIT , os ,")
	require.NoError(t, err)
	assert.Equal(t, []string{"os", "git"}, keysOf(OrderFromIndices(indices)))
}

func TestOrderFromIndicesCollapsesDuplicates(t *testing.T) {
	gitIdx, ok := IndexByKey("git")
	require.True(t, ok)
	osIdx, ok := IndexByKey("os")
	require.True(t, ok)

	ordered := OrderFromIndices([]int{gitIdx, osIdx, gitIdx, gitIdx})
	assert.Equal(t, []string{"os", "git"}, keysOf(ordered))
}

func TestOrderFromIndicesIgnoresOutOfRange(t *testing.T) {
	ordered := OrderFromIndices([]int{-1, 99})
	assert.Empty(t, ordered)
}

func TestShouldSkip(t *testing.T) {
	tests := []struct {
		key  string
		ctx  Context
		want bool
	}{
		{"os", ContextUser, true},
		{"ssh", ContextLocal, true},
		{"os", ContextRoot, false},
		{"ssh", ContextRoot, false},
		{"ssh", ContextUser, false},
		{"zsh", ContextLocal, false},
		{"conda", ContextUser, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ShouldSkip(tt.key, tt.ctx), "%s under %s", tt.key, tt.ctx)
	}
}

func TestParseContext(t *testing.T) {
	for _, valid := range []string{"root", "user", "local"} {
		ctx, err := ParseContext(valid)
		assert.NoError(t, err)
		assert.Equal(t, Context(valid), ctx)
	}

	_, err := ParseContext("cloud")
	assert.True(t, errors.IsCode(err, errors.ErrValidate))
}

func TestRegistryOrderIsCanonical(t *testing.T) {
	assert.Equal(t, []string{"os", "ssh", "zsh", "conda", "git"}, Keys())
}
