package config

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownLogFormat     = errors.New("unknown log_format (must be 'plain' or 'json')")
	ErrEmptyKeystoreDir     = errors.New("keystore_dir can't be empty")
	ErrInvalidAddressPrefix = errors.New("address_prefix must be 1 to 8 upper-case letters")
	ErrIncompleteTLS        = errors.New("tls_cert_file and tls_key_file must be set together")
)

// ErrInSection is returned if validate basic does not pass for any underlying config service.
type ErrInSection struct {
	Err     error
	Section string
}

func (e ErrInSection) Error() string {
	return fmt.Sprintf("error in [%s] section: %s", e.Section, e.Err.Error())
}

func (e ErrInSection) Unwrap() error {
	return e.Err
}
