package naming

import "testing"

func TestExtensionForType(t *testing.T) {
	tests := []struct {
		contentType string
		fallback    string
		want        string
	}{
		{"image/png", "", ".png"},
		{"IMAGE/JPEG; charset=binary", "", ".jpg"},
		{"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "", ".xlsx"},
		{"application/vnd.openxmlformats-officedocument.presentationml.presentation", "", ".pptx"},
		{"text/plain; charset=utf-8", "", ".txt"},
		{"application/x-unknown", "dat", ".dat"},
		{"", "", ""},
	}

	for _, tt := range tests {
		if got := ExtensionForType(tt.contentType, tt.fallback); got != tt.want {
			t.Fatalf("ExtensionForType(%q, %q) = %q, want %q", tt.contentType, tt.fallback, got, tt.want)
		}
	}
}
