package oracle

import (
	"platewise/internal/core/barcode"
	"platewise/internal/platform/config"
)

// oracle modes
const (
	ModeLocal = "local"
	ModeHTTP  = "http"
)

// FromConfig builds the oracle named by CORE_ORACLE_MODE and returns the mode
func FromConfig(cfg config.Conf) (barcode.Oracle, string, error) {
	c := cfg.Prefix("CORE_ORACLE_")
	mode := c.MayEnum("MODE", ModeLocal, ModeLocal, ModeHTTP)
	if mode == ModeLocal {
		return NewLocal(), mode, nil
	}
	h, err := NewHTTP(HTTPOptions{
		URL:     c.MayString("URL", ""),
		Token:   c.MayString("TOKEN", ""),
		Timeout: c.MayDuration("TIMEOUT", defaultTimeout),
		Retries: c.MayInt("RETRIES", 0),
	})
	if err != nil {
		return nil, mode, err
	}
	return h, mode, nil
}
