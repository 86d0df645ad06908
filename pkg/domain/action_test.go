package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAction_Codec(t *testing.T) {
	tests := []struct {
		name    string
		action  Action
		payload string
	}{
		{"Go Root", Action{Kind: ActionGo, Target: Root}, "g/"},
		{"Go Nested", Action{Kind: ActionGo, Target: NewPath("server", "tags")}, "g/server/tags"},
		{"Update", Action{Kind: ActionUpdateAt, Target: NewPath("age")}, "u/age"},
		{"Add", Action{Kind: ActionAddTo, Target: NewPath("tags")}, "a/tags"},
		{"Remove Escaped", Action{Kind: ActionRemoveFrom, Target: NewPath("a/b")}, "r/a~1b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, err := tt.action.Encode()
			require.NoError(t, err)
			assert.Equal(t, tt.payload, payload)

			decoded, err := DecodeAction(payload)
			require.NoError(t, err)
			assert.Equal(t, tt.action.Kind, decoded.Kind)
			assert.True(t, tt.action.Target.Equal(decoded.Target))
		})
	}
}

func TestAction_PayloadLimit(t *testing.T) {
	fits := Action{Kind: ActionGo, Target: NewPath(strings.Repeat("k", MaxPayloadBytes-2))}
	payload, err := fits.Encode()
	require.NoError(t, err)
	assert.Len(t, payload, MaxPayloadBytes)

	tooLong := Action{Kind: ActionGo, Target: NewPath(strings.Repeat("k", MaxPayloadBytes-1))}
	_, err = tooLong.Encode()
	assert.ErrorIs(t, err, ErrPayloadTooLong)
}

func TestDecodeAction_Rejects(t *testing.T) {
	for _, in := range []string{"", "g", "x/age", "gage", "u/a//b"} {
		t.Run(in, func(t *testing.T) {
			_, err := DecodeAction(in)
			assert.ErrorIs(t, err, ErrMalformedAction)
		})
	}
}

func TestPendingMutation_ReturnAddress(t *testing.T) {
	target := NewPath("server", "port")
	assert.Equal(t, "/server", PendingMutation{Kind: MutationReplace, Target: target}.ReturnAddress().String())
	assert.Equal(t, "/server/port", PendingMutation{Kind: MutationAppend, Target: target}.ReturnAddress().String())
	assert.Equal(t, "/server/port", PendingMutation{Kind: MutationRemove, Target: target}.ReturnAddress().String())
}
