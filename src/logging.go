package src

// Logger is the logging facade handed to the components and the bench
// runner. *zap.SugaredLogger satisfies it.
type Logger interface {
	Debugf(template string, args ...any)
	Infof(template string, args ...any)
	Warnf(template string, args ...any)
	Errorf(template string, args ...any)
	Error(args ...any)
	Sync() error
}
