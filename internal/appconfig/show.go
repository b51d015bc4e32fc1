package appconfig

import (
	"fmt"
	"io"

	"github.com/k0kubun/pp"
)

// ShowConfig prints the configuration with the access token masked.
func ShowConfig(out io.Writer, cfg Config) {
	if cfg.ConfigPath == "" {
		fmt.Fprintln(out, "No config file loaded (using defaults and environment).")
	} else {
		fmt.Fprintf(out, "Config file: %s\n\n", cfg.ConfigPath)
	}

	fmt.Fprintln(out, "Current configuration:")
	_, _ = pp.Fprintln(out, cfg.Masked())
	fmt.Fprintf(out, "Listen address: %s\n", cfg.Addr())
	fmt.Fprintf(out, "Graph timeout:  %s\n", cfg.Timeout())
}
