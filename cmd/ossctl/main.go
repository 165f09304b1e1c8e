// ossctl 是对象存储上传下载的命令行工具。
package main

import (
	"fmt"
	"os"

	"ossbridge/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
