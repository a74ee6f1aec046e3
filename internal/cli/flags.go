package cli

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/pflag"
)

// levelFlag is a pflag.Value that sets the logger's level while the command
// line is parsed.
type levelFlag struct {
	lv *slog.LevelVar
}

var _ pflag.Value = (*levelFlag)(nil)

func (f *levelFlag) String() string {
	if f.lv == nil {
		return slog.LevelInfo.String()
	}
	return f.lv.Level().String()
}

func (f *levelFlag) Set(s string) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(strings.TrimSpace(s)))); err != nil {
		return fmt.Errorf("invalid log level %q (valid: debug, info, warn, error)", s)
	}
	if f.lv != nil {
		f.lv.Set(level)
	}
	return nil
}

func (f *levelFlag) Type() string { return "level" }
