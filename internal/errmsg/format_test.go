package errmsg

import (
	"errors"
	"testing"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		op       Op
		err      error
		expected string
	}{
		{
			name:     "nil error returns empty string",
			op:       OpHistoryRecord,
			err:      nil,
			expected: "",
		},
		{
			name:     "config operation",
			op:       OpConfigLoad,
			err:      errors.New("toml: unexpected EOF"),
			expected: "Failed to load configuration: toml: unexpected EOF",
		},
		{
			name:     "transcode operation",
			op:       OpTranscode,
			err:      errors.New("exit status 1"),
			expected: "Failed to convert to FLAC: exit status 1",
		},
		{
			name:     "cookies operation",
			op:       OpCookiesDelete,
			err:      errors.New("permission denied"),
			expected: "Failed to delete cookies file: permission denied",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Format(tt.op, tt.err)
			if result != tt.expected {
				t.Errorf("Format(%q, %v) = %q, want %q", tt.op, tt.err, result, tt.expected)
			}
		})
	}
}

func TestFormatWith(t *testing.T) {
	tests := []struct {
		name     string
		op       Op
		context  string
		err      error
		expected string
	}{
		{
			name:     "nil error returns empty string",
			op:       OpInspectTags,
			context:  "song.m4a",
			err:      nil,
			expected: "",
		},
		{
			name:     "empty context falls back to Format",
			op:       OpInspectScan,
			context:  "",
			err:      errors.New("not a directory"),
			expected: "Failed to scan directory: not a directory",
		},
		{
			name:     "includes context",
			op:       OpCookiesRead,
			context:  "cookies.txt",
			err:      errors.New("no such file"),
			expected: "Failed to read cookies file 'cookies.txt': no such file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FormatWith(tt.op, tt.context, tt.err)
			if result != tt.expected {
				t.Errorf("FormatWith(%q, %q, %v) = %q, want %q", tt.op, tt.context, tt.err, result, tt.expected)
			}
		})
	}
}
