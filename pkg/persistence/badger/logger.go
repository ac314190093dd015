package badger

import (
	badgerdb "github.com/dgraph-io/badger/v3"
	"go.uber.org/zap"
)

// storeLogger routes badger's internal logging into the service logger,
// tagged with the database directory.
type storeLogger struct {
	sugar *zap.SugaredLogger
}

var _ badgerdb.Logger = (*storeLogger)(nil)

func newStoreLogger(l *zap.Logger, dir string) *storeLogger {
	return &storeLogger{sugar: l.With(zap.String("component", "badger"), zap.String("dir", dir)).Sugar()}
}

func (s *storeLogger) Errorf(format string, args ...any) {
	s.sugar.Errorf(format, args...)
}

func (s *storeLogger) Warningf(format string, args ...any) {
	s.sugar.Warnf(format, args...)
}

// Infof is demoted; badger reports compactions and table flushes at info.
func (s *storeLogger) Infof(format string, args ...any) {
	s.sugar.Debugf(format, args...)
}

func (s *storeLogger) Debugf(format string, args ...any) {
	s.sugar.Debugf(format, args...)
}
