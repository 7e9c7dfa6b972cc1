package logsvc

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/trezcool/madrasahub/core"
)

// ZapLogger is a core.Logger on a zap SugaredLogger.
type ZapLogger struct {
	sugar *zap.SugaredLogger
}

var _ core.Logger = (*ZapLogger)(nil)

// NewZapLogger builds a development logger, or a JSON production logger for mode "prod".
func NewZapLogger(mode string) (*ZapLogger, error) {
	var cfg zap.Config
	switch strings.ToLower(mode) {
	case "prod", "production":
		cfg = zap.NewProductionConfig()
	default:
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	zl, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, err
	}
	return &ZapLogger{sugar: zl.Sugar()}, nil
}

func NewZapLoggerFrom(zl *zap.Logger) *ZapLogger {
	return &ZapLogger{sugar: zl.Sugar()}
}

func (l *ZapLogger) Sync() {
	_ = l.sugar.Sync()
}

func (l *ZapLogger) Debug(msg string, args ...interface{}) { l.sugar.Debugw(msg, keysAndValues(args)...) }
func (l *ZapLogger) Info(msg string, args ...interface{})  { l.sugar.Infow(msg, keysAndValues(args)...) }
func (l *ZapLogger) Warn(msg string, args ...interface{})  { l.sugar.Warnw(msg, keysAndValues(args)...) }
func (l *ZapLogger) Error(msg string, args ...interface{}) { l.sugar.Errorw(msg, keysAndValues(args)...) }
func (l *ZapLogger) Fatal(msg string, args ...interface{}) { l.sugar.Fatalw(msg, keysAndValues(args)...) }

// keysAndValues turns core.Logger args (errors, maps, Persons or key/value pairs) into
// zap key/value pairs.
func keysAndValues(args []interface{}) []interface{} {
	kv := make([]interface{}, 0, len(args)*2)
	for i := 0; i < len(args); i++ {
		switch arg := args[i].(type) {
		case error:
			kv = append(kv, "error", fmt.Sprintf("%+v", arg))
		case map[string]interface{}:
			for k, v := range arg {
				kv = append(kv, k, v)
			}
		case core.Person:
			kv = append(kv, "person", arg.ID)
		case string:
			if i+1 < len(args) {
				kv = append(kv, arg, args[i+1])
				i++
			} else {
				kv = append(kv, "extra", arg)
			}
		default:
			kv = append(kv, fmt.Sprintf("arg%d", i), arg)
		}
	}
	return kv
}
