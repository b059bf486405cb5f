package logger

import (
	"encoding/json"
	"log/slog"
	"reflect"
	"slices"
	"strings"

	"github.com/sss-org/sss-engine/types"
)

/*
Log attribute key values. Generally shouldn't be used directly, use
appropriate "attribute constructor function" instead.

Only define names here if they are common for multiple modules, module
specific names should be defined in the module.
*/
const (
	ModuleKey  = "module"
	ErrorKey   = "err"
	DataKey    = "data"
	MintKey    = "mint"
	CommandKey = "command"
	KindKey    = "kind"
)

/*
Error adds error to the log

	if err:= f(); err != nil {
		log.Error("calling f", logger.Error(err))
	}
*/
func Error(err error) slog.Attr {
	return slog.Any(ErrorKey, err)
}

/*
Data adds additional data field to the message.

slog.GroupValue shouldn't be used as the data - in the ECS formatter all
groups will end up under the same key possibly causing problems with index!

Use of anonymous types is discouraged too.
*/
func Data(d any) slog.Attr {
	return slog.Any(DataKey, d)
}

// Mint is the token the logging call is about.
func Mint(id types.Identity) slog.Attr {
	return slog.String(MintKey, id.String())
}

// Command adds the type of the command being executed.
func Command(cmdType string) slog.Attr {
	return slog.String(CommandKey, cmdType)
}

// Kind adds the error kind of the rejected command.
func Kind(kind types.ErrorKind) slog.Attr {
	return slog.String(KindKey, string(kind))
}

// Identity logs an identity under custom key, ie logger.Identity("caller", cmd.Caller).
func Identity(key string, id types.Identity) slog.Attr {
	return slog.String(key, id.String())
}

// attrFormatter is the signature of slog.HandlerOptions.ReplaceAttr.
type attrFormatter = func(groups []string, a slog.Attr) slog.Attr

// composeAttrFmt chains the non-nil formatters, nil when there is none.
func composeAttrFmt(formatters ...attrFormatter) attrFormatter {
	formatters = slices.DeleteFunc(formatters, func(f attrFormatter) bool { return f == nil })
	switch len(formatters) {
	case 0:
		return nil
	case 1:
		return formatters[0]
	}
	return func(groups []string, a slog.Attr) slog.Attr {
		for _, f := range formatters {
			a = f(groups, a)
		}
		return a
	}
}

// formatTimeAttr returns formatter for the record time, "none" drops the time from the output.
func formatTimeAttr(layout string) attrFormatter {
	if layout == "" {
		return nil
	}
	return func(groups []string, a slog.Attr) slog.Attr {
		if a.Key != slog.TimeKey {
			return a
		}
		if layout == "none" {
			return slog.Attr{}
		}
		if t := a.Value.Time(); !t.IsZero() {
			a.Value = slog.StringValue(t.Format(layout))
		}
		return a
	}
}

func formatDataAttrAsJSON(groups []string, a slog.Attr) slog.Attr {
	if a.Key != DataKey || a.Value.Kind() != slog.KindAny {
		return a
	}
	if b, err := json.Marshal(a.Value.Any()); err == nil {
		a.Value = slog.StringValue(string(b))
	}
	return a
}

// formatAttrECS renames the well known attributes to their Elastic Common Schema fields.
func formatAttrECS(groups []string, a slog.Attr) slog.Attr {
	switch a.Key {
	case slog.MessageKey:
		return slog.String("message", a.Value.String())
	case ErrorKey:
		return slog.Group("error", slog.Any("message", a.Value.Any()))
	case DataKey:
		// data of different types must not share a field in the index
		return slog.Group(DataKey, slog.Any(dataName(a.Value), a.Value))
	case slog.SourceKey:
		src, ok := a.Value.Any().(*slog.Source)
		if !ok {
			return a
		}
		trimSource(src)
		file := slog.Group("file", slog.String("name", src.File), slog.Int("line", src.Line))
		return slog.Group("log", slog.Group("origin", slog.String("function", src.Function), file))
	}
	return a
}

// formatAttrConsole renames top level attributes to the keys zerolog's ConsoleWriter renders in columns.
func formatAttrConsole(groups []string, a slog.Attr) slog.Attr {
	if len(groups) > 0 {
		return a
	}
	switch a.Key {
	case slog.MessageKey:
		a.Key = zerologMessageKey
	case ErrorKey:
		a.Key = zerologErrorKey
	case slog.LevelKey:
		a.Value = slog.StringValue(strings.ToLower(a.Value.String()))
	}
	return a
}

// dataName is the type name of the value, ie "*types.Proposal" becomes "types_Proposal".
func dataName(v slog.Value) string {
	if k := v.Kind(); k != slog.KindAny && k != slog.KindLogValuer {
		return k.String()
	}
	name := strings.TrimLeft(reflect.TypeOf(v.Any()).String(), "*")
	return strings.ReplaceAll(name, ".", "_")
}

// trimSource removes the package path from the function name of the log call site.
func trimSource(src *slog.Source) {
	fn := src.Function[strings.LastIndexByte(src.Function, '/')+1:]
	if _, name, ok := strings.Cut(fn, "."); ok {
		fn = name
	}
	src.Function = fn
}
