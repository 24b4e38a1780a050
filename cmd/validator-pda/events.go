package main

import (
	"context"
	"fmt"
	"time"

	"github.com/brojonat/validator-pda/service/deposit"
	"github.com/brojonat/validator-pda/service/nats"
	"github.com/urfave/cli/v2"
)

// depositEventsCommand streams the events published by pda-fund-address.
func depositEventsCommand(d deps) *cli.Command {
	return &cli.Command{
		Name:      "deposit-events",
		Usage:     "Stream deposit events published to NATS JetStream",
		ArgsUsage: "[VALIDATOR_ADDRESS]",
		Description: `Streams events published after successful pda-fund-address runs, for one
validator or for all of them. Runs until --limit events arrive or --timeout elapses.

Example:
  validator-pda --nats-url nats://localhost:4222 deposit-events --limit 1 FjYEr2UCeFzNfAKiFrbhG34Zv8LxbmfHYAFhAfc7SLQL`,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "Stop after this many events (0 means no limit)",
			},
			&cli.StringFlag{
				Name:  "durable",
				Usage: "Durable consumer name (survives restarts)",
			},
		},
		Action: func(c *cli.Context) error {
			var validator string
			if c.NArg() > 0 {
				identity, err := deposit.ParseIdentity(c.Args().First())
				if err != nil {
					return err
				}
				validator = identity.String()
			}
			limit := c.Int("limit")
			if limit < 0 {
				return fmt.Errorf("--limit must not be negative")
			}

			return withSession(c, d, func(ctx context.Context, s *session) error {
				if s.cfg.NATSURL == "" {
					return fmt.Errorf("deposit-events requires --nats-url or NATS_URL")
				}

				sub, err := d.newSubscriber(s.cfg.NATSURL, s.logger)
				if err != nil {
					return err
				}
				defer sub.Close()

				received := 0
				err = sub.Subscribe(ctx, nats.SubscribeOptions{
					Validator: validator,
					Durable:   c.String("durable"),
				}, func(event *nats.DepositEvent) error {
					received++
					if err := s.out.print(eventResult{event}); err != nil {
						return err
					}
					if limit > 0 && received >= limit {
						return nats.ErrStopSubscription
					}
					return nil
				})

				s.logger.DebugContext(ctx, "deposit event stream ended", "received", received)
				return err
			})
		},
	}
}

type eventResult struct {
	*nats.DepositEvent
}

func (r eventResult) text() []string {
	return []string{
		fmt.Sprintf("Deposit %s", r.Signature),
		fmt.Sprintf("  Network:   %s", r.Network),
		fmt.Sprintf("  Validator: %s", r.Validator),
		fmt.Sprintf("  PDA:       %s", r.DepositAddress),
		fmt.Sprintf("  From:      %s", r.FromAddress),
		fmt.Sprintf("  Amount:    %d lamports (%s SOL)", r.Lamports, deposit.FormatSOL(r.Lamports)),
		fmt.Sprintf("  Published: %s", r.PublishedAt.Format(time.RFC3339)),
	}
}
