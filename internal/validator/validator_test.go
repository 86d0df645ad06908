package validator

import (
	"strings"
	"testing"

	"github.com/aretw0/tgadmin/internal/testutils"
	"github.com/aretw0/tgadmin/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateDocument(t *testing.T) {
	long := strings.Repeat("k", domain.MaxPayloadBytes)

	tests := []struct {
		name string
		doc  string
		want []string
	}{
		{
			name: "clean",
			doc:  `{"server": {"port": 80}, "tags": ["a", "b"], "empty": []}`,
		},
		{
			name: "key too long for a button",
			doc:  `{"server": {"` + long + `": 1, "port": 80}}`,
			want: []string{"warning /server/" + long + ": address does not fit"},
		},
		{
			name: "hidden subtree is not descended",
			doc:  `{"` + long + `": {"x": [1, "a"]}}`,
			want: []string{"warning /" + long + ": address does not fit"},
		},
		{
			name: "mixed element kinds",
			doc:  `{"ports": [80, "443"]}`,
			want: []string{"warning /ports: elements mix number and string, only number values"},
		},
		{
			name: "container elements",
			doc:  `{"users": [{"name": "a"}]}`,
			want: []string{"warning /users: elements are objects"},
		},
		{
			name: "scalar root",
			doc:  `42`,
			want: []string{"error /: document root is a number"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := testutils.MustParse(t, domain.FormatJSON, tt.doc)
			issues := ValidateDocument(root)
			require.Len(t, issues, len(tt.want))
			for i, want := range tt.want {
				assert.True(t, strings.HasPrefix(issues[i].String(), want), "got %q", issues[i])
			}
		})
	}
}

func TestValidateTree(t *testing.T) {
	mixed := testutils.MustParse(t, domain.FormatYAML, "ports: [80, '443']\n")
	assert.NoError(t, ValidateTree(mixed, false))
	assert.ErrorContains(t, ValidateTree(mixed, true), "/ports")

	scalar := testutils.MustParse(t, domain.FormatJSON, `"just text"`)
	assert.ErrorContains(t, ValidateTree(scalar, false), "document root is a string")
}
