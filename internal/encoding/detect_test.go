package encoding_test

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/finco/internal/encoding"
)

func TestDecode(t *testing.T) {
	type testCase struct {
		name        string
		input       []byte
		want        string
		wantCharset string
	}

	tests := []testCase{
		{
			name:        "UTF8Passthrough",
			input:       []byte("Date,Merchant\n2023-10-25,Café ₹\n"),
			want:        "Date,Merchant\n2023-10-25,Café ₹\n",
			wantCharset: encoding.UTF8,
		},
		{
			name:        "UTF8BOMStripped",
			input:       append([]byte{0xEF, 0xBB, 0xBF}, []byte("Date,Merchant\n")...),
			want:        "Date,Merchant\n",
			wantCharset: encoding.UTF8BOM,
		},
		{
			// "Café" in Windows-1252: é = 0xE9. Short inputs may be detected as any
			// Latin charset that maps é the same way, so the name is not checked.
			name:  "Windows1252",
			input: []byte{'C', 'a', 'f', 0xE9, ',', '1', '2', '0', '\n'},
			want:  "Café,120\n",
		},
		{
			name:        "UTF16LE",
			input:       []byte{0xFF, 0xFE, 'D', 0x00, 'a', 0x00, 't', 0x00, 'e', 0x00},
			want:        "Date",
			wantCharset: encoding.UTF16LE,
		},
		{
			name:        "UTF16BE",
			input:       []byte{0xFE, 0xFF, 0x00, 'O', 0x00, 'k'},
			want:        "Ok",
			wantCharset: encoding.UTF16BE,
		},
		{
			name:        "Empty",
			input:       nil,
			want:        "",
			wantCharset: encoding.UTF8,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := encoding.Decode(bytes.NewReader(tt.input))
			require.NoError(t, err)

			got, err := io.ReadAll(r)
			require.NoError(t, err)

			assert.Equal(t, tt.want, string(got))
			if tt.wantCharset != "" {
				assert.Equal(t, tt.wantCharset, r.Charset)
			}
		})
	}
}

func TestDecode_RuneAcrossPeekWindow(t *testing.T) {
	// 4095 ASCII bytes followed by a 3-byte rune straddles the 4096-byte peek.
	input := strings.Repeat("a", 4095) + "₹"

	r, err := encoding.Decode(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, encoding.UTF8, r.Charset)

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, input, string(got))
}

func TestNewExcelWriter(t *testing.T) {
	var buf bytes.Buffer

	w := encoding.NewExcelWriter(&buf)
	_, err := w.Write([]byte("₹450"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	assert.Equal(t, append([]byte{0xEF, 0xBB, 0xBF}, []byte("₹450")...), buf.Bytes())
}
