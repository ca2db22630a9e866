package http11

import "testing"

func TestParseMethod(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Method
	}{
		{"GET", "GET", MethodGET},
		{"POST", "POST", MethodPOST},
		{"PUT", "PUT", MethodPUT},
		{"DELETE", "DELETE", MethodDELETE},
		{"HEAD", "HEAD", MethodHEAD},
		{"PATCH", "PATCH", MethodPATCH},
		{"OPTIONS", "OPTIONS", MethodOPTIONS},
		{"lowercase get", "get", MethodUnknown},
		{"empty", "", MethodUnknown},
		{"partial", "GE", MethodUnknown},
		{"unsupported CONNECT", "CONNECT", MethodUnknown},
		{"unsupported TRACE", "TRACE", MethodUnknown},
		{"garbage same length as POST", "WOST", MethodUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseMethod([]byte(tt.input))
			if got != tt.expected {
				t.Errorf("ParseMethod(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestMethodStringRoundTrip(t *testing.T) {
	for _, m := range []Method{MethodGET, MethodPOST, MethodPUT, MethodDELETE, MethodHEAD, MethodPATCH, MethodOPTIONS} {
		s := m.String()
		if ParseMethod([]byte(s)) != m {
			t.Errorf("round trip failed for %v: String() = %q, ParseMethod back = %v", m, s, ParseMethod([]byte(s)))
		}
		if !m.IsValid() {
			t.Errorf("%v.IsValid() = false, want true", m)
		}
	}
}

func TestMethodUnknownIsInvalid(t *testing.T) {
	if MethodUnknown.IsValid() {
		t.Error("MethodUnknown.IsValid() = true, want false")
	}
	if MethodUnknown.String() != "" {
		t.Errorf("MethodUnknown.String() = %q, want empty", MethodUnknown.String())
	}
}
