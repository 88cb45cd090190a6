package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ccp-p/caption-sentencer/pkg/models"
)

// defaultConfigPath config init 未指定路径时写入的文件
const defaultConfigPath = "captionproc.yaml"

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "配置文件工具",
	}

	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigShowCommand(ctx))
	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "生成默认配置文件，格式由扩展名决定",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				target = defaultConfigPath
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("配置文件已存在: %s (使用 --overwrite 覆盖)", target)
				} else if !os.IsNotExist(err) {
					return fmt.Errorf("检查配置文件失败: %w", err)
				}
			}

			if err := models.NewDefaultConfig().SaveToFile(target); err != nil {
				return fmt.Errorf("写入配置文件失败: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "已生成配置文件: %s\n", filepath.Clean(target))
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "配置文件路径 (.json/.yaml/.toml)")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "覆盖已存在的配置文件")
	return cmd
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "显示生效的配置",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if asJSON {
				return ctx.config.PrintConfig(cmd.OutOrStdout())
			}
			data, err := yaml.Marshal(ctx.config)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "以JSON格式输出")
	return cmd
}
