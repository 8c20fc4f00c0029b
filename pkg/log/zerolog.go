package log

import (
	"github.com/rs/zerolog"

	"github.com/YuminosukeSato/diagnosis/pkg/errors"
)

// InstallZerologWarnings routes library warnings (errors.Warn) to zl.
// Warnings that implement zerolog.LogObjectMarshaler are embedded as
// structured fields.
func InstallZerologWarnings(zl zerolog.Logger) {
	errors.SetZerologWarnFunc(func(w error) {
		ev := zl.Warn()
		if m, ok := w.(zerolog.LogObjectMarshaler); ok {
			ev = ev.EmbedObject(m)
		}
		ev.Msg(w.Error())
	})
}

// UninstallZerologWarnings restores the default warning handler.
func UninstallZerologWarnings() {
	errors.SetZerologWarnFunc(nil)
}
