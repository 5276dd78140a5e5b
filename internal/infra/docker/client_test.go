package docker

import (
	"testing"

	"github.com/docker/go-connections/nat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPortMappings(t *testing.T) {
	exposed, bindings, err := portMappings(map[int]int{8545: 18545}, "127.0.0.1")
	require.NoError(t, err)

	port := nat.Port("8545/tcp")
	assert.Contains(t, exposed, port)
	assert.Equal(t, []nat.PortBinding{{HostIP: "127.0.0.1", HostPort: "18545"}}, bindings[port])
}

func TestPortMappings_Empty(t *testing.T) {
	exposed, bindings, err := portMappings(nil, "")
	require.NoError(t, err)
	assert.Empty(t, exposed)
	assert.Empty(t, bindings)
}
