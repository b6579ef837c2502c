package calendar

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keyxmakerx/almanac/internal/apperror"
	"github.com/keyxmakerx/almanac/internal/timezone"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	r, err := NewRegistry(RegistryConfig{})
	require.NoError(t, err)
	return r
}

func TestRegistry_Builtins(t *testing.T) {
	r := newTestRegistry(t)
	assert.Equal(t, []string{"gregorian", "hijri"}, r.List())

	g, err := r.Resolve("gregorian")
	require.NoError(t, err)
	assert.Equal(t, GregorianName, g.Name())

	_, err = r.Resolve("julian")
	assert.True(t, apperror.Is(err, apperror.TypeUnsupportedCalendar))
	assert.Equal(t, 404, apperror.SafeCode(err))

	assert.True(t, IsBuiltin("hijri"))
	assert.False(t, IsBuiltin("tenday"))
}

func TestRegistry_PassesConfiguration(t *testing.T) {
	res, err := timezone.NewLocationResolver(timezone.Named("Asia/Tehran"))
	require.NoError(t, err)
	r, err := NewRegistry(RegistryConfig{Resolver: res, GregorianStartingWeekday: 1})
	require.NoError(t, err)

	g, err := r.Resolve(GregorianName)
	require.NoError(t, err)
	assert.Equal(t, 1, g.StartingWeekday())
	assert.Same(t, res, g.Resolver())
	assert.Same(t, res, r.Resolver())

	h, err := r.Resolve(HijriName)
	require.NoError(t, err)
	assert.Equal(t, 6, h.StartingWeekday())

	_, err = NewRegistry(RegistryConfig{GregorianStartingWeekday: 9})
	assert.Error(t, err)
}

func TestRegistry_CustomLifecycle(t *testing.T) {
	r := newTestRegistry(t)
	c := mustCustom(t)

	require.NoError(t, r.Register(c))
	assert.Equal(t, []string{"gregorian", "hijri", "tenday"}, r.List())

	err := r.Register(c)
	assert.True(t, apperror.Is(err, apperror.TypeConflict))

	cfg := testCustomConfig()
	cfg.MaxYear = 99
	updated, err := NewCustom(cfg)
	require.NoError(t, err)
	require.NoError(t, r.Replace(updated))

	got, err := r.Resolve("tenday")
	require.NoError(t, err)
	assert.Equal(t, 99, got.MaxYear())

	require.NoError(t, r.Unregister("tenday"))
	_, err = r.Resolve("tenday")
	assert.True(t, apperror.Is(err, apperror.TypeUnsupportedCalendar))

	err = r.Unregister("tenday")
	assert.True(t, apperror.Is(err, apperror.TypeUnsupportedCalendar))
}

func TestRegistry_BuiltinsAreProtected(t *testing.T) {
	r := newTestRegistry(t)

	err := r.Unregister(GregorianName)
	assert.True(t, apperror.Is(err, apperror.TypeConflict))

	cfg := testCustomConfig()
	cfg.Name = HijriName
	impostor, err := NewCustom(cfg)
	require.NoError(t, err)
	assert.True(t, apperror.Is(r.Replace(impostor), apperror.TypeConflict))
	assert.True(t, apperror.Is(r.Register(impostor), apperror.TypeConflict))
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	r := newTestRegistry(t)
	c := mustCustom(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = r.Replace(c)
				_ = r.Unregister(c.Name())
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_, err := r.Resolve(GregorianName)
				assert.NoError(t, err)
				_ = r.List()
			}
		}()
	}
	wg.Wait()
}
