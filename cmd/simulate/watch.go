package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"book-discovery-be/pkg/events"
	pktNats "book-discovery-be/pkg/nats"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print survey and recommendation events as they are published",
	RunE: func(cmd *cobra.Command, args []string) error {
		sub, err := pktNats.NewSubscriber(natsURL)
		if err != nil {
			return err
		}
		defer sub.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		err = sub.Subscribe(ctx, "events.>", "", func(ctx context.Context, event events.Event) error {
			data, err := json.MarshalIndent(event.Payload(), "  ", "  ")
			if err != nil {
				return err
			}
			color.Cyan("[%s] %s", event.Timestamp().Format("15:04:05"), event.EventType())
			fmt.Printf("  %s\n", data)
			return nil
		})
		if err != nil {
			return err
		}

		color.Green("Watching events on %s (Ctrl+C to stop)", natsURL)
		<-ctx.Done()
		return nil
	},
}
