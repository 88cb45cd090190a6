package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ccp-p/caption-sentencer/internal/controller"
	"github.com/ccp-p/caption-sentencer/pkg/utils"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var pipeline pipelineFlags
	var force bool
	var workers int
	var noProgress bool

	cmd := &cobra.Command{
		Use:   "run [文件或目录...]",
		Short: "处理字幕文件，未指定路径时处理配置中的输入文件夹",
		RunE: func(cmd *cobra.Command, args []string) error {
			updates := pipeline.updates(cmd)
			if cmd.Flags().Changed("workers") {
				updates["max_workers"] = workers
			}
			if err := ctx.applyOverrides(updates); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			showProgress := ctx.config.ShowProgress && !noProgress && isTerminal(out)
			pc := controller.NewProcessorController(cmd.Context(), ctx.config, showProgress)
			pc.Out = out
			pc.HandleSignals()
			defer pc.Cleanup()

			if len(args) == 0 {
				args = []string{ctx.config.InputFolder}
			}

			var files []string
			var failed int
			for _, arg := range args {
				if utils.CheckDirExists(arg) {
					results, err := pc.ProcessFolder(arg, force)
					if err != nil {
						return err
					}
					failed += countFailed(results)
					continue
				}
				if _, err := os.Stat(arg); err != nil {
					return fmt.Errorf("无法访问 %s: %w", arg, err)
				}
				files = append(files, arg)
			}
			failed += countFailed(pc.ProcessFiles(files))

			pc.PrintSummary()
			if failed > 0 {
				return fmt.Errorf("%d 个文件处理失败", failed)
			}
			return nil
		},
	}

	pipeline.bind(cmd)
	cmd.Flags().BoolVarP(&force, "force", "f", false, "重新处理已处理过的文件")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "并发处理的文件数")
	cmd.Flags().BoolVar(&noProgress, "no-progress", false, "不显示进度条")
	return cmd
}

func countFailed(results []controller.FileResult) int {
	failed := 0
	for _, r := range results {
		if !r.Success() {
			failed++
		}
	}
	return failed
}
