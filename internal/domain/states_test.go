package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStateNames(t *testing.T) {
	names := StateNames()
	assert.Len(t, names, 56)
	assert.Equal(t, "alabama", names[0])
	assert.Equal(t, "wyoming", names[len(names)-1])
	assert.Contains(t, names, "district of columbia")
	assert.Contains(t, names, "northern mariana islands")

	names[0] = "mutated"
	assert.True(t, IsState("alabama"), "reference set is immutable")
}

func TestIsState(t *testing.T) {
	assert.True(t, IsState("new york"))
	assert.True(t, IsState("virgin islands"))
	assert.False(t, IsState("New York"), "names are compared lowercase")
	assert.False(t, IsState("united states"))
	assert.False(t, IsState("northeast"))
	assert.False(t, IsState(""))
}
