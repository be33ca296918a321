package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSize(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    uint64
		wantErr error
	}{
		{name: "plain bytes", input: "100000", want: 100000},
		{name: "large plain bytes", input: "70000000", want: 70000000},
		{name: "zero", input: "0", want: 0},
		{name: "whitespace", input: "  42  ", want: 42},
		{name: "byte suffix", input: "512B", want: 512},
		{name: "kilobytes", input: "100K", want: 100 * KiB},
		{name: "megabytes lower", input: "30mb", want: 30 * MiB},
		{name: "gibibytes", input: "2GiB", want: 2 * GiB},
		{name: "decimal", input: "1.5K", want: 1536},
		{name: "terabytes", input: "1T", want: TiB},
		{name: "empty", input: "", wantErr: ErrInvalidSize},
		{name: "negative", input: "-5", wantErr: ErrNegativeSize},
		{name: "garbage", input: "lots", wantErr: ErrInvalidSize},
		{name: "unknown unit", input: "5P", wantErr: ErrInvalidSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSize(tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatSize(t *testing.T) {
	assert.Equal(t, "0 B", FormatSize(0))
	assert.Equal(t, "1.0 KiB", FormatSize(1024))
	assert.Equal(t, "1.5 MiB", FormatSize(1536*1024))
}

func TestFormatExact(t *testing.T) {
	assert.Equal(t, "48,381,165", FormatExact(48381165))
	assert.Equal(t, "0", FormatExact(0))
}
