package collector

import "strings"

// Severity values outside the vendor vocabulary. Unrecognized strings
// map to codeMappingFailed so schema drift in the BMC surfaces as a
// loud sentinel instead of a false-healthy reading.
const (
	codeUnknown       float64 = 5
	codeMappingFailed float64 = 500
)

// statusCodes is the frozen vendor-vocabulary table, built once at
// process start and never mutated. Keys are lowercase.
var statusCodes = map[string]float64{
	"off":           0,
	"on":            1,
	"ok":            0,
	"operable":      0,
	"enabled":       0,
	"good":          0,
	"goodinuse":     0,
	"critical":      1,
	"degraded":      1,
	"error":         1,
	"warning":       2,
	"unknown":       5,
	"null":          5,
	"none":          5,
	"absent":        6,
	"presentunused": 7,
	"get_failed":    99,
	"emptydata":     100,
}

// MapStatus normalizes a free-form status string to its severity code.
// Total over all inputs: absent or empty values map to codeUnknown and
// anything outside the table maps to codeMappingFailed.
func MapStatus(status string) float64 {
	if status == "" || status == missingValue {
		return codeUnknown
	}
	if code, ok := statusCodes[strings.ToLower(status)]; ok {
		return code
	}
	return codeMappingFailed
}
