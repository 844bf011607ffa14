/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/schedulr/apiserver/config"
	"github.com/schedulr/apiserver/internal/logging"
	"github.com/schedulr/apiserver/internal/mq"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Inspect task completion notifications",
}

var notifyTailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Subscribe to the completion topic and log each message",
	Long: `Subscribes to NOTIFY_TOPIC on the configured NOTIFY_BACKEND and logs
every completion message until interrupted. Only the pubsub and rabbitmq
backends support subscribing.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()
		logger := logging.New(cfg.Env, cfg.LogLevel)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		queue, err := mq.Open(ctx, cfg)
		if err != nil {
			return err
		}
		if queue == nil {
			return errors.New("notifications are disabled; set NOTIFY_BACKEND")
		}
		defer queue.Close()

		logger.WithField("topic", cfg.Notify.Topic).Info("tailing completion notifications")
		err = queue.Subscribe(ctx, cfg.Notify.Topic, func(ctx context.Context, msg mq.Message) error {
			logger.WithFields(logrus.Fields{
				"message_id": msg.ID,
				"subject":    msg.Attributes[mq.AttrSubject],
			}).Info(string(msg.Data))
			return nil
		})
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(notifyCmd)
	notifyCmd.AddCommand(notifyTailCmd)
}
