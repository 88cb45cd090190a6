package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/ccp-p/caption-sentencer/pkg/models"
	"github.com/ccp-p/caption-sentencer/pkg/utils"
)

// commandContext 所有子命令共享的全局参数与配置
type commandContext struct {
	configPath string
	logLevel   string
	logFile    string
	logFormat  string

	config *models.Config
}

func (c *commandContext) bindFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.StringVarP(&c.configPath, "config", "c", "", "配置文件路径 (.json/.yaml/.toml)")
	flags.StringVar(&c.logLevel, "log-level", "", "日志级别 (VERBOSE, INFO, WARN, ERROR)")
	flags.StringVar(&c.logFile, "log-file", "", "日志文件路径")
	flags.StringVar(&c.logFormat, "log-format", "", "日志格式 (text, json)")
}

// load 加载配置并初始化日志，命令行参数优先于配置文件
func (c *commandContext) load() error {
	config := models.NewDefaultConfig()
	if c.configPath != "" {
		if err := config.LoadFromFile(c.configPath); err != nil {
			return fmt.Errorf("加载配置文件 %s 失败: %w", c.configPath, err)
		}
	}

	if c.logLevel != "" {
		config.LogLevel = c.logLevel
	}
	if c.logFile != "" {
		config.LogFile = c.logFile
	}
	if c.logFormat != "" {
		config.LogFormat = c.logFormat
	}
	if err := config.Validate(); err != nil {
		return err
	}

	if err := utils.InitLoggerWithFormat(config.LogLevel, config.LogFile, config.LogFormat); err != nil {
		return fmt.Errorf("初始化日志失败: %w", err)
	}

	c.config = config
	return nil
}

// applyOverrides 将命令行上显式设置的参数写入配置，验证失败时配置保持不变
func (c *commandContext) applyOverrides(updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	return c.config.Update(updates)
}

func skipConfigLoad(cmd *cobra.Command) bool {
	for current := cmd; current != nil; current = current.Parent() {
		if current.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

// isTerminal 判断输出是否为终端，非终端时不显示进度条
func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func splitMarkers(value string) []string {
	var markers []string
	for _, m := range strings.Split(value, ",") {
		if m = strings.TrimSpace(m); m != "" {
			markers = append(markers, m)
		}
	}
	return markers
}
