package app

// Command はアプリケーションの起動モードを表す。
type Command string

const (
	// CommandServe はAPIサーバーモードで起動することを示す。
	CommandServe Command = "serve"
	// CommandHealthcheck はヘルスチェックを実行することを示す。
	// distroless環境でのDockerヘルスチェック用。
	CommandHealthcheck Command = "healthcheck"
)

// ParseCommand はコマンドライン引数からサブコマンドを解析し、残りの引数と共に返す。
// 引数が空またはフラグから始まる場合はCommandServeとして全引数をフラグとして扱う。
// サポート外のサブコマンドもCommandServeとみなす。
func ParseCommand(args []string) (Command, []string) {
	if len(args) == 0 {
		return CommandServe, nil
	}

	switch args[0] {
	case "serve":
		return CommandServe, args[1:]
	case "healthcheck":
		return CommandHealthcheck, args[1:]
	default:
		if len(args[0]) > 0 && args[0][0] == '-' {
			return CommandServe, args
		}
		return CommandServe, args[1:]
	}
}
