package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()
	assert.Len(t, r.Commands(), len(BuiltinCommands()))
}

func TestResolve_CanonicalAndAlias(t *testing.T) {
	r := DefaultRegistry()

	cmd, ok := r.Resolve("luck")
	require.True(t, ok)
	assert.Equal(t, HandlerLuck, cmd.Handler)

	for _, alias := range []string{"fortune", "today", "l"} {
		cmd, ok := r.Resolve(alias)
		require.True(t, ok, alias)
		assert.Equal(t, "luck", cmd.Name)
	}

	cmd, ok = r.Resolve("q")
	require.True(t, ok)
	assert.Equal(t, HandlerQuit, cmd.Handler)
}

func TestResolve_NotFound(t *testing.T) {
	_, ok := DefaultRegistry().Resolve("north")
	assert.False(t, ok)
}

func TestCommands_Sorted(t *testing.T) {
	cmds := DefaultRegistry().Commands()
	for i := 1; i < len(cmds); i++ {
		assert.Less(t, cmds[i-1].Name, cmds[i].Name)
	}
}

func TestLoginRequirements(t *testing.T) {
	r := DefaultRegistry()
	for _, name := range []string{"luck", "bind", "unbind", "logout"} {
		cmd, _ := r.Resolve(name)
		assert.True(t, cmd.RequiresLogin, name)
	}
	for _, name := range []string{"register", "login", "help", "quit"} {
		cmd, _ := r.Resolve(name)
		assert.False(t, cmd.RequiresLogin, name)
	}
}

func TestNewRegistry_Collisions(t *testing.T) {
	_, err := NewRegistry([]Command{{Name: "a"}, {Name: "a"}})
	assert.Error(t, err)

	_, err = NewRegistry([]Command{{Name: "a", Aliases: []string{"b"}}, {Name: "b"}})
	assert.Error(t, err)

	_, err = NewRegistry([]Command{{Name: "a", Aliases: []string{"x"}}, {Name: "b", Aliases: []string{"x"}}})
	assert.Error(t, err)

	_, err = NewRegistry([]Command{{Name: "a"}, {Name: "b", Aliases: []string{"a"}}})
	assert.Error(t, err)
}

// Property: every alias of every builtin resolves to its canonical command.
func TestPropertyAliasesResolve(t *testing.T) {
	r := DefaultRegistry()
	cmds := BuiltinCommands()
	rapid.Check(t, func(t *rapid.T) {
		cmd := rapid.SampledFrom(cmds).Draw(t, "cmd")
		names := append([]string{cmd.Name}, cmd.Aliases...)
		name := rapid.SampledFrom(names).Draw(t, "name")
		got, ok := r.Resolve(name)
		if !ok || got.Name != cmd.Name {
			t.Fatalf("Resolve(%q) = %v, %v; want %q", name, got, ok, cmd.Name)
		}
	})
}
