package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wyattjouan/stagehand/pkg/domain"
)

func TestPatchApply(t *testing.T) {
	opts := domain.DefaultOptions()

	theme := "dark"
	rate := 30 // same as the default, must not count as a change
	turbo := true

	next, changed := domain.Patch{Theme: &theme, FrameRate: &rate, Turbo: &turbo}.Apply(opts)

	assert.Equal(t, "dark", next.Theme)
	assert.Equal(t, 30, next.FrameRate)
	assert.True(t, next.Turbo)

	assert.NotNil(t, changed.Theme)
	assert.Nil(t, changed.FrameRate, "setting a field to its current value is not a change")
	assert.NotNil(t, changed.Turbo)

	// Source snapshot untouched.
	assert.Equal(t, "light", opts.Theme)
}

func TestPatchIsZero(t *testing.T) {
	assert.True(t, domain.Patch{}.IsZero())

	theme := "dark"
	assert.False(t, domain.Patch{Theme: &theme}.IsZero())
}

func TestPatchApply_EmptyPatch(t *testing.T) {
	opts := domain.DefaultOptions()
	next, changed := domain.Patch{}.Apply(opts)
	assert.Equal(t, opts, next)
	assert.True(t, changed.IsZero())
}
