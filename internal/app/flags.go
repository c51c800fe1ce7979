package app

import (
	"fmt"
	"io"

	flag "github.com/spf13/pflag"
)

// Flags はコマンドラインフラグの値を保持する。
// 空文字列は未指定を表し、設定ファイルと環境変数の値を維持する。
type Flags struct {
	ConfigPath string
	Port       string
	SeedFile   string
}

// ParseFlags はサブコマンド以降の引数からフラグを解析する。
func ParseFlags(cmd Command, args []string, stderr io.Writer) (Flags, error) {
	var f Flags
	fs := flag.NewFlagSet(string(cmd), flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, `Usage: postgraph [serve|healthcheck] [options]

Options:
`)
		fs.PrintDefaults()
	}

	fs.StringVarP(&f.ConfigPath, "config", "c", "", "YAML設定ファイルのパス")
	fs.StringVarP(&f.Port, "port", "p", "", "待ち受けポート（SERVER_PORTより優先）")
	fs.StringVar(&f.SeedFile, "seed", "", "起動時に投入するシードファイルのパス（SEED_FILEより優先）")

	if err := fs.Parse(args); err != nil {
		return Flags{}, err
	}
	return f, nil
}
