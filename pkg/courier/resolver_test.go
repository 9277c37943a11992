package courier_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deshship/courier/pkg/courier"
	"github.com/deshship/courier/pkg/courier/mock"
)

func TestResolver_Resolve(t *testing.T) {
	registry := courier.NewRegistry()
	registry.Register(mock.New("pathao"))
	resolver := courier.NewResolver(registry)

	c, err := resolver.Resolve("pathao")
	require.NoError(t, err)
	assert.Equal(t, "pathao", c.Name())

	_, err = resolver.Resolve("unknown")
	assert.ErrorIs(t, err, courier.ErrNotRegistered)
}

func TestResolver_FindByCapabilities(t *testing.T) {
	registry := courier.NewRegistry()
	registry.Register(mock.New("pathao", mock.WithCapabilities(
		courier.CapShipmentCreate, courier.CapTrackingRealtime,
	)))
	registry.Register(mock.New("steadfast", mock.WithCapabilities(
		courier.CapTrackingRealtime,
	)))
	registry.Register(mock.New("redx", mock.WithCapabilities(
		courier.CapCodTracking,
	)))
	resolver := courier.NewResolver(registry)

	// Single requirement, multiple matches, registration order preserved
	matches, err := resolver.FindByCapabilities(courier.CapTrackingRealtime)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "pathao", matches[0].Name())
	assert.Equal(t, "steadfast", matches[1].Name())

	// Conjunction of requirements
	matches, err = resolver.FindByCapabilities(courier.CapShipmentCreate, courier.CapTrackingRealtime)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "pathao", matches[0].Name())

	// No matches is not an error
	matches, err = resolver.FindByCapabilities(courier.CapStoreList)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestResolver_Default(t *testing.T) {
	registry := courier.NewRegistry()
	resolver := courier.NewResolver(registry)

	c, err := resolver.Default()
	require.NoError(t, err)
	assert.Nil(t, c)

	registry.Register(mock.New("pathao"))
	registry.Register(mock.New("steadfast"))

	c, err = resolver.Default()
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, "pathao", c.Name())
}

func TestResolver_All(t *testing.T) {
	registry := courier.NewRegistry()
	registry.Register(mock.New("pathao"))
	registry.Register(mock.New("steadfast"))
	resolver := courier.NewResolver(registry)

	all, err := resolver.All()
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
