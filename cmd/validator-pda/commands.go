package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/brojonat/validator-pda/service/deposit"
	"github.com/brojonat/validator-pda/service/funding"
	"github.com/brojonat/validator-pda/service/gossip"
	"github.com/brojonat/validator-pda/service/nats"
	"github.com/gagliardetto/solana-go"
	"github.com/urfave/cli/v2"
)

func pdaAddressCommand(d deps) *cli.Command {
	return &cli.Command{
		Name:            "pda-address",
		Usage:           "Derive and print the deposit PDA for a validator",
		ArgsUsage:       "VALIDATOR_ADDRESS",
		SkipFlagParsing: true,
		Action: func(c *cli.Context) error {
			identity, err := identityArg(c)
			if err != nil {
				return err
			}

			return withSession(c, d, func(ctx context.Context, s *session) error {
				addr, err := s.derive(identity)
				if err != nil {
					return err
				}
				return s.out.print(newAddressResult(identity, addr, s))
			})
		},
	}
}

func pdaBalanceCommand(d deps) *cli.Command {
	return &cli.Command{
		Name:            "pda-balance",
		Usage:           "Show the balance of a validator's deposit PDA",
		ArgsUsage:       "VALIDATOR_ADDRESS",
		SkipFlagParsing: true,
		Action: func(c *cli.Context) error {
			identity, err := identityArg(c)
			if err != nil {
				return err
			}

			return withSession(c, d, func(ctx context.Context, s *session) error {
				addr, err := s.derive(identity)
				if err != nil {
					return err
				}

				lamports, err := s.solana.BalanceLamports(ctx, addr.Address)
				if err != nil {
					return fmt.Errorf("failed to get balance: %w", err)
				}

				return s.out.print(balanceResult{
					addressResult: newAddressResult(identity, addr, s),
					Lamports:      lamports,
					SOL:           deposit.FormatSOL(lamports),
				})
			})
		},
	}
}

func pdaFundAddressCommand(d deps) *cli.Command {
	return &cli.Command{
		Name:            "pda-fund-address",
		Usage:           "Transfer SOL from a keypair to a validator's deposit PDA if the validator is in gossip",
		ArgsUsage:       "VALIDATOR_ADDRESS KEYPAIR_PATH AMOUNT_SOL",
		// Arguments are positional only, so "-1" reaches amount validation.
		SkipFlagParsing: true,
		Action: func(c *cli.Context) error {
			identity, err := identityArg(c)
			if err != nil {
				return err
			}
			if c.NArg() < 3 {
				return fmt.Errorf("pda-fund-address requires VALIDATOR_ADDRESS KEYPAIR_PATH AMOUNT_SOL")
			}

			amount, err := deposit.ParseAmount(c.Args().Get(2))
			if err != nil {
				return err
			}
			if _, err := amount.Lamports(); err != nil {
				return err
			}

			signer, err := d.loadKeypair(c.Args().Get(1))
			if err != nil {
				return err
			}

			return withSession(c, d, func(ctx context.Context, s *session) error {
				return fundAddress(ctx, s, d, funding.FundRequest{
					Identity: identity,
					Signer:   signer,
					Amount:   amount,
				})
			})
		},
	}
}

func fundAddress(ctx context.Context, s *session, d deps, req funding.FundRequest) error {
	var publisher nats.Publisher
	if s.cfg.NATSURL != "" {
		p, err := d.newPublisher(ctx, s.cfg.NATSURL, s.logger, s.metrics)
		if err != nil {
			s.logger.WarnContext(ctx, "deposit events disabled", "error", err)
		} else {
			publisher = p
			defer publisher.Close()
		}
	}

	wf, err := funding.New(funding.Config{
		Logger:     s.logger,
		Solana:     s.solana,
		Gate:       gossip.NewGate(s.solana, s.logger, s.metrics),
		Derivation: s.derivation,
		Metrics:    s.metrics,
		Publisher:  publisher,
		Network:    s.cfg.Network,
	})
	if err != nil {
		return err
	}

	receipt, err := wf.Fund(ctx, req)
	if err != nil {
		var cancelled *funding.CancelledError
		if errors.As(err, &cancelled) && s.out.json {
			if printErr := s.out.print(cancelledResult{
				Validator: req.Identity.String(),
				Status:    "cancelled",
				Reason:    cancelled.Decision.Reason,
			}); printErr != nil {
				return printErr
			}
		}
		return err
	}

	return s.out.print(fundResult{
		addressResult: newAddressResult(req.Identity, deposit.Address{
			Address: receipt.Destination,
			Bump:    receipt.Bump,
		}, s),
		From:      receipt.Source.String(),
		Lamports:  receipt.Lamports,
		SOL:       deposit.FormatSOL(receipt.Lamports),
		Signature: receipt.Signature.String(),
		Status:    "submitted",
	})
}

// identityArg validates the first positional argument before anything
// touches the network.
func identityArg(c *cli.Context) (solana.PublicKey, error) {
	if c.NArg() < 1 {
		return solana.PublicKey{}, fmt.Errorf("please provide operation name and validator address as parameters")
	}
	raw := c.Args().First()
	if strings.TrimSpace(raw) == "" {
		return solana.PublicKey{}, fmt.Errorf("validator address parameter cannot be empty")
	}
	return deposit.ParseIdentity(raw)
}

type addressResult struct {
	Validator string `json:"validator"`
	PDA       string `json:"pda"`
	Bump      uint8  `json:"bump"`
	ProgramID string `json:"program_id"`
}

func newAddressResult(identity solana.PublicKey, addr deposit.Address, s *session) addressResult {
	return addressResult{
		Validator: identity.String(),
		PDA:       addr.Address.String(),
		Bump:      addr.Bump,
		ProgramID: s.derivation.ProgramID.String(),
	}
}

func (r addressResult) text() []string {
	return []string{
		fmt.Sprintf("Validator pubkey %s", r.Validator),
		fmt.Sprintf("PDA Address: %s", r.PDA),
	}
}

type balanceResult struct {
	addressResult
	Lamports uint64 `json:"lamports"`
	SOL      string `json:"sol"`
}

func (r balanceResult) text() []string {
	return append(r.addressResult.text(),
		fmt.Sprintf("PDA Balance: %d lamports (%s SOL)", r.Lamports, r.SOL),
	)
}

type fundResult struct {
	addressResult
	From      string `json:"from"`
	Lamports  uint64 `json:"lamports"`
	SOL       string `json:"sol"`
	Signature string `json:"signature"`
	Status    string `json:"status"`
}

func (r fundResult) text() []string {
	return append(r.addressResult.text(),
		fmt.Sprintf("Transferred: %d lamports (%s SOL) from %s", r.Lamports, r.SOL, r.From),
		fmt.Sprintf("Transaction signature: %s", r.Signature),
	)
}

type cancelledResult struct {
	Validator string `json:"validator"`
	Status    string `json:"status"`
	Reason    string `json:"reason"`
}

func (r cancelledResult) text() []string {
	return []string{fmt.Sprintf("Funding cancelled: %s", r.Reason)}
}
