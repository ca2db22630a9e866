package http11

// Method is the closed set of HTTP methods this engine admits. Routing beyond
// these seven is out of scope; CONNECT and TRACE are deliberately absent.
type Method uint8

const (
	MethodUnknown Method = iota
	MethodGET
	MethodPOST
	MethodPUT
	MethodDELETE
	MethodHEAD
	MethodPATCH
	MethodOPTIONS
)

var methodStrings = [...]string{
	MethodUnknown: "",
	MethodGET:     "GET",
	MethodPOST:    "POST",
	MethodPUT:     "PUT",
	MethodDELETE:  "DELETE",
	MethodHEAD:    "HEAD",
	MethodPATCH:   "PATCH",
	MethodOPTIONS: "OPTIONS",
}

// String returns the canonical wire representation, or "" for MethodUnknown.
func (m Method) String() string {
	if int(m) < len(methodStrings) {
		return methodStrings[m]
	}
	return ""
}

// ParseMethod converts a request-line method token into a Method, using
// length-first byte comparisons to avoid a map lookup on the hot path.
func ParseMethod(b []byte) Method {
	switch len(b) {
	case 3:
		if b[0] == 'G' && b[1] == 'E' && b[2] == 'T' {
			return MethodGET
		}
		if b[0] == 'P' && b[1] == 'U' && b[2] == 'T' {
			return MethodPUT
		}
	case 4:
		if b[0] == 'P' && b[1] == 'O' && b[2] == 'S' && b[3] == 'T' {
			return MethodPOST
		}
		if b[0] == 'H' && b[1] == 'E' && b[2] == 'A' && b[3] == 'D' {
			return MethodHEAD
		}
	case 5:
		if b[0] == 'P' && b[1] == 'A' && b[2] == 'T' && b[3] == 'C' && b[4] == 'H' {
			return MethodPATCH
		}
	case 6:
		if b[0] == 'D' && b[1] == 'E' && b[2] == 'L' && b[3] == 'E' && b[4] == 'T' && b[5] == 'E' {
			return MethodDELETE
		}
	case 7:
		if b[0] == 'O' && b[1] == 'P' && b[2] == 'T' && b[3] == 'I' && b[4] == 'O' && b[5] == 'N' && b[6] == 'S' {
			return MethodOPTIONS
		}
	}
	return MethodUnknown
}

// IsValid reports whether m is one of the seven supported methods.
func (m Method) IsValid() bool {
	return m >= MethodGET && m <= MethodOPTIONS
}
