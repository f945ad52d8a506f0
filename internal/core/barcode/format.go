// Package barcode runs the multi-pass UPC/EAN decode: candidate grid, rendering, oracle calls and check digit validation
package barcode

import "strings"

// Format is the symbology implied by a code's length
type Format string

// formats by digit count
const (
	FormatEAN8    Format = "EAN-8"
	FormatUPCA    Format = "UPC-A"
	FormatEAN13   Format = "EAN-13"
	FormatEAN14   Format = "EAN-14"
	FormatUnknown Format = "Unknown"
)

// Outcome classifies a single decode attempt
type Outcome string

// attempt outcomes
const (
	OutcomeOK       Outcome = "OK"
	OutcomeNotFound Outcome = "NotFound"
	OutcomeChecksum Outcome = "Checksum"
	OutcomeFormat   Outcome = "Format"
	OutcomeError    Outcome = "Error"
)

// Normalized is a canonical code; Raw is the trimmed oracle output
type Normalized struct {
	Code         string `json:"code"`
	Raw          string `json:"raw"`
	Format       Format `json:"format"`
	NormalizedAs string `json:"normalized_as,omitempty"`
	CheckDigitOK bool   `json:"check_digit_ok"`
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// CheckDigit computes the GS1 mod 10 check digit for body (the code without its last digit)
// Weights alternate 3,1 starting at the rightmost body digit, which covers UPC-A, EAN-8, EAN-13 and EAN-14
func CheckDigit(body string) (int, bool) {
	if !allDigits(body) {
		return 0, false
	}
	sum := 0
	for i := len(body) - 1; i >= 0; i-- {
		d := int(body[i] - '0')
		if (len(body)-1-i)%2 == 0 {
			d *= 3
		}
		sum += d
	}
	return (10 - sum%10) % 10, true
}

// IsValidUPCEAN validates the check digit for 8, 12, 13 and 14 digit codes
// Other digit-only lengths pass; Classify rejects them as FormatUnknown first
func IsValidUPCEAN(code string) bool {
	if !allDigits(code) {
		return false
	}
	switch len(code) {
	case 8, 12, 13, 14:
		want, _ := CheckDigit(code[:len(code)-1])
		return int(code[len(code)-1]-'0') == want
	}
	return true
}

// FormatForLength maps a digit count to its symbology
func FormatForLength(n int) Format {
	switch n {
	case 8:
		return FormatEAN8
	case 12:
		return FormatUPCA
	case 13:
		return FormatEAN13
	case 14:
		return FormatEAN14
	}
	return FormatUnknown
}

// NormalizeUPCCode canonicalizes raw; a 13 digit code with a leading zero is the EAN-13 encoding of a UPC-A
func NormalizeUPCCode(raw string) Normalized {
	code := strings.TrimSpace(raw)
	if !allDigits(code) {
		return Normalized{Code: code, Raw: code, Format: FormatUnknown}
	}
	if len(code) == 13 && code[0] == '0' {
		upc := code[1:]
		n := Normalized{Code: upc, Raw: code, Format: FormatUPCA, CheckDigitOK: IsValidUPCEAN(upc)}
		if upc != code {
			n.NormalizedAs = upc
		}
		return n
	}
	return Normalized{
		Code:         code,
		Raw:          code,
		Format:       FormatForLength(len(code)),
		CheckDigitOK: IsValidUPCEAN(code),
	}
}

// Classify turns oracle output into an attempt outcome
func Classify(code string) (Outcome, Normalized) {
	if strings.TrimSpace(code) == "" {
		return OutcomeNotFound, Normalized{Format: FormatUnknown}
	}
	n := NormalizeUPCCode(code)
	switch {
	case n.Format == FormatUnknown:
		return OutcomeFormat, n
	case !n.CheckDigitOK:
		return OutcomeChecksum, n
	}
	return OutcomeOK, n
}
