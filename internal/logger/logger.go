package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Options はロガーの出力レベルと形式を指定する。
type Options struct {
	Level  string // debug, info, warn, error
	Format string // json, text
}

// Setup は構造化ログ出力のslog.Loggerを生成して返す。
// Formatが"text"の場合はテキスト形式、それ以外はJSON形式で出力する。
func Setup(w io.Writer, opts Options) *slog.Logger {
	handlerOpts := &slog.HandlerOptions{
		Level: ParseLevel(opts.Level),
	}
	if strings.EqualFold(opts.Format, "text") {
		return slog.New(slog.NewTextHandler(w, handlerOpts))
	}
	return slog.New(slog.NewJSONHandler(w, handlerOpts))
}

// SetupDefault はロガーを生成してグローバルロガーとして設定し、生成したロガーを返す。
// wがnilの場合はos.Stdoutに出力する。
func SetupDefault(w io.Writer, opts Options) *slog.Logger {
	if w == nil {
		w = os.Stdout
	}
	logger := Setup(w, opts)
	slog.SetDefault(logger)
	return logger
}

// ParseLevel はレベル文字列をslog.Levelに変換する。不明な値はInfoとして扱う。
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
