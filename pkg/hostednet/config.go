package hostednet

import (
	"fmt"
	"unicode/utf8"
)

// WPA2 limits.
const (
	MaxSSIDLen       = 32
	MinPassphraseLen = 8
	MaxPassphraseLen = 63
)

// NetworkConfig describes the hosted network to start.
type NetworkConfig struct {
	// SSID of the network. Empty means the subsystem default is used; the
	// effective value is readable through Controller.Config after Start.
	SSID string

	// Passphrase for legacy clients. Empty means the subsystem default.
	Passphrase string

	// AutoAccept accepts every join request without consulting the Prompt.
	AutoAccept bool
}

// Validate checks the SSID and passphrase against WPA2 limits.
func (c NetworkConfig) Validate() error {
	if len(c.SSID) > MaxSSIDLen {
		return fmt.Errorf("%w: ssid longer than %d bytes", ErrInvalidConfig, MaxSSIDLen)
	}
	if c.Passphrase != "" {
		n := utf8.RuneCountInString(c.Passphrase)
		if n < MinPassphraseLen || n > MaxPassphraseLen {
			return fmt.Errorf("%w: passphrase must be %d to %d characters",
				ErrInvalidConfig, MinPassphraseLen, MaxPassphraseLen)
		}
	}
	return nil
}
