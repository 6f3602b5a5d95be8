package relay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMachineID(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{input: "123-ABC"},
		{input: "000-ZZZ"},
		{input: "", wantErr: true},
		{input: "123-abc", wantErr: true},
		{input: "12-ABC", wantErr: true},
		{input: "1234-ABC", wantErr: true},
		{input: "123-AB", wantErr: true},
		{input: "123_ABC", wantErr: true},
		{input: "ABC-123", wantErr: true},
		{input: "123-ABC ", wantErr: true},
		{input: "123-ABC\n", wantErr: true},
		{input: "１２３-ABC", wantErr: true},
		{input: "123-ÄBC", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			id, err := ParseMachineID(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidFormat)
				assert.Empty(t, id)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.input, id.String())
		})
	}
}
