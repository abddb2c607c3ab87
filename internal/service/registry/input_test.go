package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvanschaik/fishtracker-backend/internal/domain"
)

func ptrString(s string) *string  { return &s }
func ptrFloat(f float64) *float64 { return &f }

func TestRegisterFishInput_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		input      RegisterFishInput
		wantFields []string
	}{
		{
			name:  "name only is valid",
			input: RegisterFishInput{Name: "Clownfish"},
		},
		{
			name: "all optional fields set",
			input: RegisterFishInput{
				Name:      "Clownfish",
				Family:    ptrString("Pomacentridae"),
				MinSizeCm: ptrFloat(7),
				MaxSizeCm: ptrFloat(11),
				WaterType: ptrString("saltwater"),
			},
		},
		{
			name:       "empty name",
			input:      RegisterFishInput{},
			wantFields: []string{"name"},
		},
		{
			name:       "whitespace name",
			input:      RegisterFishInput{Name: "  \t "},
			wantFields: []string{"name"},
		},
		{
			name:       "negative min size",
			input:      RegisterFishInput{Name: "Clownfish", MinSizeCm: ptrFloat(-1)},
			wantFields: []string{"min_size_cm"},
		},
		{
			name:       "negative max size",
			input:      RegisterFishInput{Name: "Clownfish", MaxSizeCm: ptrFloat(-0.5)},
			wantFields: []string{"max_size_cm"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := tc.input.Validate()
			if len(tc.wantFields) == 0 {
				require.NoError(t, err)
				return
			}

			var ve *domain.ValidationError
			require.ErrorAs(t, err, &ve)
			require.Len(t, ve.Errors, len(tc.wantFields))
			for i, field := range tc.wantFields {
				assert.Equal(t, field, ve.Errors[i].Field)
			}
		})
	}
}

func TestFilterNonEmpty(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"a", "b"}, filterNonEmpty([]string{"a", "", "  ", "b"}))
	assert.Empty(t, filterNonEmpty(nil))
	assert.Empty(t, filterNonEmpty([]string{"", "\t"}))
}

func TestFilterNonEmptyBlobs(t *testing.T) {
	t.Parallel()

	assert.Equal(t, [][]byte{{0x01}}, filterNonEmptyBlobs([][]byte{nil, {}, {0x01}}))
	assert.Empty(t, filterNonEmptyBlobs(nil))
}
