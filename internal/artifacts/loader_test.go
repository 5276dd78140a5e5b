package artifacts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoader_LoadHardhatArtifact(t *testing.T) {
	loader := NewLoader("testdata")

	artifact, err := loader.Load(ContractNameRaffle)
	require.NoError(t, err)

	assert.Equal(t, ContractNameRaffle, artifact.Name)
	assert.NotEmpty(t, artifact.Bytecode)
	assert.Len(t, artifact.ABI.Constructor.Inputs, 6)
	assert.Contains(t, artifact.ABI.Methods, "enterRaffle")
	assert.Contains(t, artifact.RawABI, "getEntranceFee")
}

func TestLoader_LoadFoundryArtifact(t *testing.T) {
	loader := NewLoader("testdata")

	artifact, err := loader.Load(ContractNameVRFCoordinatorV2Mock)
	require.NoError(t, err)

	assert.Len(t, artifact.ABI.Constructor.Inputs, 2)
	assert.Contains(t, artifact.ABI.Events, "SubscriptionCreated")
	assert.Equal(t, byte(0x60), artifact.Bytecode[0])
}

func TestLoader_Missing(t *testing.T) {
	loader := NewLoader(t.TempDir())

	_, err := loader.Load(ContractNameRaffle)
	require.ErrorIs(t, err, ErrArtifactNotFound)
}

func TestLoader_RejectsUnknownContract(t *testing.T) {
	loader := NewLoader("testdata")

	_, err := loader.Load("Lottery")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not deployable")
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr string
	}{
		{
			name: "string bytecode",
			data: `{"abi": [], "bytecode": "0x6080"}`,
		},
		{
			name: "object bytecode",
			data: `{"abi": [], "bytecode": {"object": "0x6080"}}`,
		},
		{
			name:    "empty bytecode",
			data:    `{"abi": [], "bytecode": "0x"}`,
			wantErr: "empty bytecode",
		},
		{
			name:    "missing abi",
			data:    `{"bytecode": "0x6080"}`,
			wantErr: "has no abi",
		},
		{
			name:    "missing bytecode",
			data:    `{"abi": []}`,
			wantErr: "missing bytecode",
		},
		{
			name:    "not json",
			data:    `abi`,
			wantErr: "failed to parse artifact",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			artifact, err := Parse(ContractNameRaffle, []byte(tc.data))
			if tc.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, []byte{0x60, 0x80}, artifact.Bytecode)
		})
	}
}
