package logsvc

import (
	"io"

	"github.com/rs/zerolog"

	"github.com/trezcool/darasa/core"
)

// ZerologLogger is the console logger used in DEV|TEST mode.
type ZerologLogger struct {
	log zerolog.Logger
}

var _ core.Logger = (*ZerologLogger)(nil)

func NewZerologLogger(out io.Writer, conf *core.Config) *ZerologLogger {
	zl := zerolog.New(zerolog.ConsoleWriter{Out: out}).
		With().
		Timestamp().
		Str("app", conf.AppName).
		Str("env", conf.Env).
		Logger()
	if !conf.Debug {
		zl = zl.Level(zerolog.InfoLevel)
	}
	return &ZerologLogger{log: zl}
}

func (l ZerologLogger) emit(evt *zerolog.Event, msg string, args []interface{}) {
	for _, arg := range args {
		switch v := arg.(type) {
		case error:
			evt = evt.Err(v)
		case Identity:
			evt = evt.Str("sid", v.SID).Str("role", string(v.Sess.Role))
			if v.Sess.OrganizationScope != "" {
				evt = evt.Str("org", v.Sess.OrganizationScope)
			}
		case map[string]interface{}:
			evt = evt.Fields(v)
		default:
			evt = evt.Interface("ctx", v)
		}
	}
	evt.Msg(msg)
}

func (l ZerologLogger) Debug(msg string, args ...interface{}) { l.emit(l.log.Debug(), msg, args) }
func (l ZerologLogger) Info(msg string, args ...interface{})  { l.emit(l.log.Info(), msg, args) }
func (l ZerologLogger) Warn(msg string, args ...interface{})  { l.emit(l.log.Warn(), msg, args) }
func (l ZerologLogger) Error(msg string, args ...interface{}) { l.emit(l.log.Error(), msg, args) }
func (l ZerologLogger) Fatal(msg string, args ...interface{}) { l.emit(l.log.Fatal(), msg, args) }
