package main

import (
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/ccp-p/caption-sentencer/internal/controller"
	"github.com/ccp-p/caption-sentencer/pkg/utils"
)

// watchLockFile 防止多个监控进程处理同一个输入文件夹
const watchLockFile = ".captionproc.lock"

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var pipeline pipelineFlags
	var input string
	var archive string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "监控输入文件夹，新字幕文件出现时自动处理",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			updates := pipeline.updates(cmd)
			if cmd.Flags().Changed("input") {
				updates["input_folder"] = input
			}
			if cmd.Flags().Changed("archive") {
				updates["archive_folder"] = archive
			}
			if err := ctx.applyOverrides(updates); err != nil {
				return err
			}

			config := ctx.config
			if err := utils.EnsureDirExists(config.InputFolder); err != nil {
				return fmt.Errorf("创建输入文件夹失败: %w", err)
			}

			lockPath := filepath.Join(config.InputFolder, watchLockFile)
			lock := flock.New(lockPath)
			ok, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("获取锁失败: %w", err)
			}
			if !ok {
				return fmt.Errorf("已有监控进程在处理 %s (锁文件 %s)", config.InputFolder, lockPath)
			}
			defer lock.Unlock()

			out := cmd.OutOrStdout()
			pc := controller.NewProcessorController(cmd.Context(), config, false)
			pc.Out = out
			pc.HandleSignals()
			defer pc.Cleanup()

			fmt.Fprintf(out, "监控文件夹: %s\n", config.InputFolder)
			if err := pc.StartWatchMode(); err != nil {
				return err
			}
			pc.PrintSummary()
			return nil
		},
	}

	pipeline.bind(cmd)
	cmd.Flags().StringVarP(&input, "input", "i", "", "监控的输入文件夹")
	cmd.Flags().StringVar(&archive, "archive", "", "处理完成后移动输入文件的文件夹")
	return cmd
}
