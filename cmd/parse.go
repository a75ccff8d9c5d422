package main

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/k-negishi/voice-calendar-scheduler/internal/logging"
	"github.com/k-negishi/voice-calendar-scheduler/internal/nlu"
)

// newParseCmd 発話をEventDraftのJSONに変換して表示するデバッグ用コマンド（認証情報は不要）
func newParseCmd() *cobra.Command {
	var (
		timezone string
		now      string
		logLevel string
	)

	cmd := &cobra.Command{
		Use:   "parse <text>",
		Short: "発話を解析してEventDraftのJSONを表示する",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loc, err := time.LoadLocation(timezone)
			if err != nil {
				return errors.Wrapf(err, "タイムゾーン %s の読み込みに失敗しました", timezone)
			}

			at := time.Now().In(loc)
			if now != "" {
				at, err = time.Parse(time.RFC3339, now)
				if err != nil {
					return errors.Wrap(err, "--now はRFC3339形式で指定してください")
				}
			}

			logger := logging.NewWithWriter(cmd.ErrOrStderr(), logLevel, false)
			draft := nlu.NewParser(loc, logger).Parse(strings.Join(args, " "), at)

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetEscapeHTML(false)
			enc.SetIndent("", "  ")
			return enc.Encode(draft)
		},
	}

	cmd.Flags().StringVar(&timezone, "timezone", "Asia/Shanghai", "解析に使うタイムゾーン")
	cmd.Flags().StringVar(&now, "now", "", "基準時刻 (RFC3339)。省略時は現在時刻")
	cmd.Flags().StringVar(&logLevel, "log-level", "WARN", "ログレベル")
	return cmd
}
