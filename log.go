package inview

import (
	"sync/atomic"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var (
	// ErrUnresolvedElement is logged when a tracker's element resolver yields
	// no element before anything was attached.
	ErrUnresolvedElement = errors.New("inview: no element to observe")

	// ErrUnsupportedHost is logged when the host cannot observe intersections.
	ErrUnsupportedHost = errors.New("inview: intersection observation not supported")
)

var pkgLogger atomic.Pointer[zap.Logger]

func init() {
	pkgLogger.Store(zap.NewNop())
}

// SetLogger installs the logger diagnostics are written to. A nil logger
// silences them.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	pkgLogger.Store(l)
}

func logger() *zap.Logger {
	return pkgLogger.Load()
}
