package funding

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/brojonat/validator-pda/service/deposit"
	"github.com/brojonat/validator-pda/service/metrics"
	"github.com/brojonat/validator-pda/service/nats"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	solanarpc "github.com/gagliardetto/solana-go/rpc"
)

// Workflow funds validator deposit PDAs. Funding only happens for
// validators the liveness gate reports as present in gossip.
type Workflow struct {
	log        *slog.Logger
	solana     SolanaClient
	gate       LivenessGate
	derivation deposit.DerivationConfig
	metrics    *metrics.Metrics
	publisher  nats.Publisher
	network    string
}

type FundRequest struct {
	Identity solana.PublicKey
	Signer   solana.PrivateKey
	Amount   deposit.Amount
}

// Receipt describes a submitted deposit transfer.
type Receipt struct {
	Signature   solana.Signature
	Source      solana.PublicKey
	Destination solana.PublicKey
	Bump        uint8
	Lamports    uint64
}

func New(cfg Config) (*Workflow, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Workflow{
		log:        cfg.Logger,
		solana:     cfg.Solana,
		gate:       cfg.Gate,
		derivation: cfg.Derivation,
		metrics:    cfg.Metrics,
		publisher:  cfg.Publisher,
		network:    cfg.Network,
	}, nil
}

// Fund transfers req.Amount from the signer to the validator's deposit PDA.
// Nothing touches the network beyond the liveness probe unless the gate
// returns Proceed, and at most one transaction is submitted.
func (w *Workflow) Fund(ctx context.Context, req FundRequest) (*Receipt, error) {
	if len(req.Signer) == 0 {
		return nil, ErrSignerRequired
	}
	if !req.Signer.IsValid() {
		return nil, ErrSignerInvalid
	}

	receipt, err := w.fund(ctx, req)

	if w.metrics != nil {
		w.metrics.RecordFundingAttempt(w.network, outcome(err))
		if err == nil {
			w.metrics.RecordFundingLamports(w.network, receipt.Lamports)
		}
	}
	if err != nil {
		return nil, err
	}

	w.publish(ctx, receipt, req.Identity)
	return receipt, nil
}

func (w *Workflow) fund(ctx context.Context, req FundRequest) (*Receipt, error) {
	decision := w.gate.Check(ctx, req.Identity)
	if !decision.Proceed() {
		return nil, &CancelledError{Decision: decision}
	}

	lamports, err := req.Amount.Lamports()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAmount, err)
	}

	pda, err := w.derivation.Derive(req.Identity)
	if w.metrics != nil {
		w.metrics.RecordDerivation(err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to derive deposit address: %w", err)
	}

	sender := req.Signer
	source := sender.PublicKey()

	recentBlockhash, err := w.solana.GetLatestBlockhash(ctx, solanarpc.CommitmentFinalized)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get latest blockhash: %w", ErrClient, err)
	}
	if recentBlockhash == nil || recentBlockhash.Value == nil {
		return nil, fmt.Errorf("%w: empty latest blockhash response", ErrClient)
	}

	ix := system.NewTransferInstruction(lamports, source, pda.Address).Build()

	tx, err := solana.NewTransaction(
		[]solana.Instruction{ix},
		recentBlockhash.Value.Blockhash,
		solana.TransactionPayer(source),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build transaction: %w", err)
	}

	_, err = tx.Sign(
		func(key solana.PublicKey) *solana.PrivateKey {
			if key.Equals(source) {
				return &sender
			}
			return nil
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}

	w.log.InfoContext(ctx, "submitting deposit transfer",
		"validator", req.Identity.String(),
		"pda", pda.Address.String(),
		"from", source.String(),
		"lamports", lamports,
	)

	maxRetries := SubmitMaxRetries
	sig, err := w.solana.SendTransactionWithOpts(ctx, tx, solanarpc.TransactionOpts{
		SkipPreflight: false,
		MaxRetries:    &maxRetries,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSubmissionFailed, err)
	}

	w.log.InfoContext(ctx, "deposit transfer submitted",
		"validator", req.Identity.String(),
		"signature", sig.String(),
	)

	return &Receipt{
		Signature:   sig,
		Source:      source,
		Destination: pda.Address,
		Bump:        pda.Bump,
		Lamports:    lamports,
	}, nil
}

func (w *Workflow) publish(ctx context.Context, r *Receipt, identity solana.PublicKey) {
	if w.publisher == nil {
		return
	}
	event := &nats.DepositEvent{
		Signature:      r.Signature.String(),
		Network:        w.network,
		Validator:      identity.String(),
		DepositAddress: r.Destination.String(),
		FromAddress:    r.Source.String(),
		ProgramID:      w.derivation.ProgramID.String(),
		Lamports:       r.Lamports,
		Bump:           r.Bump,
		SubmittedAt:    time.Now().UTC(),
	}
	if err := w.publisher.PublishDeposit(ctx, event); err != nil {
		w.log.WarnContext(ctx, "failed to publish deposit event",
			"signature", event.Signature,
			"error", err,
		)
	}
}
