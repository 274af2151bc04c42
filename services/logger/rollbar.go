package logsvc

import (
	"log"

	"github.com/pkg/errors"
	"github.com/rollbar/rollbar-go"
	rollbarerrors "github.com/rollbar/rollbar-go/errors"

	"github.com/trezcool/aula/core"
	"github.com/trezcool/aula/core/auth"
)

// RollbarLogger reports entries at or above its level to Rollbar and echoes them to std.
type RollbarLogger struct {
	std     *log.Logger
	level   int
	project string
}

var _ core.Logger = (*RollbarLogger)(nil)

func NewRollbarLogger(std *log.Logger, conf *core.Config) *RollbarLogger {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(rollbarerrors.StackTracer)
	rollbar.SetEnabled(conf.RollbarToken != "" && !conf.Debug)
	return &RollbarLogger{std: std, level: ParseLevel(conf.LogLevel), project: conf.Roble.ProjectID}
}

func (l RollbarLogger) Enable(enabled bool) {
	rollbar.SetEnabled(enabled)
}

// Close waits for pending rollbar items to be sent.
func (l RollbarLogger) Close() {
	rollbar.Wait()
}

// prepare turns args into rollbar.Log arguments.
// expected fmt: msg | error, map[string]interface{}, auth.AuthUser
//
// Every map argument is merged into one custom data map, together with the project id and,
// for a backend error, its operation and status.
func (l RollbarLogger) prepare(msg string, args []interface{}) []interface{} {
	var usrSet bool
	custom := map[string]interface{}{"project": l.project}
	out := make([]interface{}, 0, len(args)+2)
	out = append(out, msg)

	for _, arg := range args {
		switch val := arg.(type) {
		case auth.AuthUser:
			if !usrSet { // only the first user is reported
				rollbar.SetPerson(val.UserID(), val.Name, val.Email)
				usrSet = true
			}
		case map[string]interface{}:
			for k, v := range val {
				custom[k] = v
			}
		case error:
			var herr *core.HTTPError
			if errors.As(val, &herr) {
				custom["op"] = herr.Op
				custom["status"] = herr.Status
			}
			out = append(out, val)
		default:
			out = append(out, arg)
		}
	}
	if !usrSet {
		rollbar.ClearPerson()
	}
	return append(out, custom)
}

func (l RollbarLogger) log(level int, report func(...interface{}), label, msg string, args []interface{}) {
	if level < l.level {
		return
	}
	report(l.prepare(msg, args)...)
	printTo(l.std, label, msg, args)
}

func (l RollbarLogger) Debug(msg string, args ...interface{}) {
	l.log(LevelDebug, rollbar.Debug, "DEBUG", msg, args)
}

func (l RollbarLogger) Info(msg string, args ...interface{}) {
	l.log(LevelInfo, rollbar.Info, "INFO", msg, args)
}

func (l RollbarLogger) Warn(msg string, args ...interface{}) {
	l.log(LevelWarn, rollbar.Warning, "WARN", msg, args)
}

func (l RollbarLogger) Error(msg string, args ...interface{}) {
	l.log(LevelError, rollbar.Error, "ERROR", msg, args)
}

func (l RollbarLogger) Fatal(msg string, args ...interface{}) {
	rollbar.Critical(l.prepare(msg, args)...)
	printTo(l.std, "FATAL", msg, args)
	rollbar.Wait()
	l.std.Fatal(msg)
}
