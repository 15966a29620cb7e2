package cmd

import (
	"embed"
	"fmt"
	"os"

	"github.com/haierkeys/simple-note-service/internal/app"

	"github.com/spf13/cobra"
)

var (
	// frontendFiles 内嵌的前端页面
	frontendFiles embed.FS
	// configDefault 内嵌的默认配置，配置文件不存在时写出
	configDefault string
)

var rootCmd = &cobra.Command{
	Use:          "simple-note-service",
	Short:        app.Name + ": a small JSON API for notes with tags",
	Version:      app.Version,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// Execute runs the root command; efs holds the UI, c the default config
// Execute 执行根命令，efs 为内嵌的前端文件，c 为内嵌的默认配置
func Execute(efs embed.FS, c string) {
	frontendFiles = efs
	configDefault = c
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
