package persona

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveBuiltin(t *testing.T) {
	p := Resolve("blacktide", "", "", "", "", "sea1abc")

	assert.Equal(t, "Captain Blacktide", p.Alias)
	assert.Equal(t, ArchetypeAggressive, p.Archetype)
	assert.NotEmpty(t, p.Icon)
	assert.NotEmpty(t, p.Prompt)
}

func TestResolveConfigOverridesBuiltin(t *testing.T) {
	p := Resolve("Siren", "Madame Siren", "", "defensive", "Sing softly.", "sea1abc")

	assert.Equal(t, "Madame Siren", p.Alias)
	assert.Equal(t, ArchetypeDefensive, p.Archetype)
	assert.Equal(t, "Sing softly.", p.Prompt)
	assert.Equal(t, "🧜", p.Icon, "unset fields still come from the builtin")
}

func TestResolveUnknownNameGetsStableArchetype(t *testing.T) {
	first := Resolve("greybeard", "", "", "", "", "sea1xyz")
	second := Resolve("greybeard", "", "", "", "", "sea1xyz")

	require.Equal(t, first.Archetype, second.Archetype)
	assert.Contains(t, []string{ArchetypeAggressive, ArchetypeCunning, ArchetypeDefensive}, first.Archetype)
	assert.Equal(t, "greybeard", first.Alias, "alias falls back to the name")
	assert.NotEmpty(t, first.Prompt, "archetype prompt fills the gap")
}

func TestResolveEmptyAddressDefaultsDefensive(t *testing.T) {
	p := Resolve("greybeard", "", "", "", "", "")
	assert.Equal(t, ArchetypeDefensive, p.Archetype)
}
