package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ccp-p/caption-sentencer/internal/ui"
	"github.com/ccp-p/caption-sentencer/pkg/export"
	"github.com/ccp-p/caption-sentencer/pkg/models"
	"github.com/ccp-p/caption-sentencer/pkg/processor"
)

func newShowCommand(ctx *commandContext) *cobra.Command {
	var pipeline pipelineFlags
	var stage string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <文件>",
		Short: "显示单个字幕文件的分句结果，不写任何文件",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ctx.applyOverrides(pipeline.updates(cmd)); err != nil {
				return err
			}

			p := processor.NewCaptionProcessor(ctx.config)
			output, format, err := p.Sentences(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			var sentences []models.FinalSentence
			switch stage {
			case "sentences":
				sentences = output.Sentences
			case "candidates":
				for _, c := range output.Candidates {
					sentences = append(sentences, models.FinalSentence(c))
				}
			default:
				return fmt.Errorf("未知的阶段: %s (可选 sentences, candidates)", stage)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				doc := export.NewJSONExporter("").GenerateJSONContent(sentences, filepath.Base(args[0]))
				encoder := json.NewEncoder(out)
				encoder.SetEscapeHTML(false)
				encoder.SetIndent("", "  ")
				return encoder.Encode(doc)
			}

			fmt.Fprintf(out, "%s (%s): %d 个块, %d 个候选, %d 个句子, 跳过 %d 个事件\n",
				filepath.Base(args[0]), format,
				len(output.Blocks), len(output.Candidates), len(output.Sentences), len(output.Diagnostics))
			for _, diag := range output.Diagnostics {
				fmt.Fprintf(out, "  %v\n", diag)
			}
			ui.RenderSentences(out, sentences)
			return nil
		},
	}

	pipeline.bind(cmd)
	cmd.Flags().StringVar(&stage, "stage", "sentences", "显示的阶段 (sentences, candidates)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "以JSON格式输出")
	return cmd
}
