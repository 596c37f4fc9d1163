package core

import (
	"context"
	"fmt"
	"path/filepath"
	"time"
	"unicode/utf8"

	"github.com/axiomesh/axiom-kit/log"
	"github.com/axiomesh/axiom-kit/storage/leveldb"
	"github.com/axiomesh/governance/repo"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

// Governance owns the proposal lifecycle. Every mutating method is one
// all-or-nothing store update.
type Governance struct {
	Ctx      context.Context
	Store    *Store
	Logger   logrus.FieldLogger
	Clock    Clock
	Balances BalanceSource
	Config   *repo.Config

	votes      VoteLedger
	tokens     TokenLedger
	settlement DepositSettlement
}

func NewGovernance(ctx context.Context, config *repo.Config) (*Governance, error) {
	logger := log.New()
	logger.SetLevel(log.ParseLevel(config.Log.Level))

	db, err := leveldb.New(filepath.Join(config.RepoRoot, repo.StorageDirName))
	if err != nil {
		return nil, err
	}
	store := NewStore(db)

	var balances BalanceSource
	switch config.Token.Source {
	case repo.TokenSourceEthereum:
		balances, err = DialERC20Balances(ctx, config.DialUrl, config.Token.RetryLimit, config.Token.RetryInterval)
		if err != nil {
			_ = store.Close()
			return nil, err
		}
	default:
		balances = &LocalBalances{Store: store}
	}

	return &Governance{
		Ctx:      ctx,
		Store:    store,
		Logger:   logger,
		Clock:    systemClock{},
		Balances: balances,
		Config:   config,
	}, nil
}

func (g *Governance) Close() error {
	return g.Store.Close()
}

func (g *Governance) now() int64 {
	return g.Clock.Now().Unix()
}

// rejected logs a failed operation and passes err through.
func (g *Governance) rejected(op string, err error) error {
	if err != nil {
		g.Logger.WithFields(logrus.Fields{"op": op, "kind": KindOf(err)}).WithError(err).Warn("operation rejected")
	}
	return err
}

func requireAuthority(cfg *GovernanceConfig, caller common.Address) error {
	if caller != cfg.Authority {
		return errors.Wrapf(ErrUnauthorized, "caller %s", caller)
	}
	return nil
}

// Initialize creates the governance config. The raw deposit is given in whole
// deposit tokens and scaled by the deposit token decimals.
func (g *Governance) Initialize(authority common.Address, params InitParams) error {
	if err := params.Validate(); err != nil {
		return err
	}
	deposit, err := ScaleAmount(params.ProposalDepositRaw, params.DepositDecimals)
	if err != nil {
		return errors.Wrap(err, "scale proposal deposit")
	}

	return g.Store.Update(func(tx *Txn) error {
		if _, err := tx.Config(); err == nil {
			return ErrAlreadyInitialized
		} else if !errors.Is(err, ErrNotInitialized) {
			return err
		}

		now := g.now()
		cfg := &GovernanceConfig{
			Authority:              authority,
			CommitteeMint:          params.CommitteeMint,
			DepositMint:            params.DepositMint,
			CommitteeDecimals:      params.CommitteeDecimals,
			DepositDecimals:        params.DepositDecimals,
			ProposalDeposit:        deposit,
			VotingPeriod:           params.VotingPeriod,
			ParticipationThreshold: params.ParticipationThreshold,
			ApprovalThreshold:      params.ApprovalThreshold,
			VetoThreshold:          params.VetoThreshold,
			FeeRate:                params.FeeRate,
			CreatedAt:              now,
			UpdatedAt:              now,
			TestMode:               params.TestMode,
		}
		if err := tx.PutConfig(cfg); err != nil {
			return err
		}

		g.Logger.WithFields(logrus.Fields{
			"authority": authority.Hex(),
			"deposit":   deposit,
			"period":    params.VotingPeriod,
			"test_mode": params.TestMode,
		}).Info("governance initialized")
		return nil
	})
}

// mutateConfig runs fn on the config after checking the caller is the authority.
func (g *Governance) mutateConfig(caller common.Address, fn func(cfg *GovernanceConfig, now int64) error) error {
	err := g.Store.Update(func(tx *Txn) error {
		cfg, err := tx.Config()
		if err != nil {
			return err
		}
		if err := requireAuthority(cfg, caller); err != nil {
			return err
		}
		now := g.now()
		if err := fn(cfg, now); err != nil {
			return err
		}
		cfg.UpdatedAt = now
		return tx.PutConfig(cfg)
	})
	return g.rejected("update_config", err)
}

func (g *Governance) UpdateConfig(caller common.Address, update ConfigUpdateParams) error {
	return g.mutateConfig(caller, func(cfg *GovernanceConfig, now int64) error {
		if err := update.Validate(cfg.TestMode); err != nil {
			return err
		}
		update.ApplyTo(cfg, now)
		g.Logger.WithField("config", fmt.Sprintf("%+v", *cfg)).Info("governance config updated")
		return nil
	})
}

func (g *Governance) AddCommitteeMember(caller, member common.Address) error {
	return g.mutateConfig(caller, func(cfg *GovernanceConfig, _ int64) error {
		slot, err := cfg.Committee.Add(member)
		if err != nil {
			return errors.Wrapf(err, "add %s", member)
		}
		g.Logger.WithFields(logrus.Fields{"member": member.Hex(), "slot": slot}).Info("committee member added")
		return nil
	})
}

func (g *Governance) RemoveCommitteeMember(caller, member common.Address) error {
	return g.mutateConfig(caller, func(cfg *GovernanceConfig, _ int64) error {
		slot, err := cfg.Committee.Remove(member)
		if err != nil {
			return errors.Wrapf(err, "remove %s", member)
		}
		g.Logger.WithFields(logrus.Fields{"member": member.Hex(), "slot": slot}).Info("committee member removed")
		return nil
	})
}

// SetProposalCounter moves the id counter forward; it never goes back.
func (g *Governance) SetProposalCounter(caller common.Address, counter uint64) error {
	return g.mutateConfig(caller, func(cfg *GovernanceConfig, _ int64) error {
		if counter < cfg.ProposalCounter {
			return errors.Wrapf(ErrInvalidCounter, "%d < %d", counter, cfg.ProposalCounter)
		}
		cfg.ProposalCounter = counter
		return nil
	})
}

func (g *Governance) SetTotalVotingPower(caller common.Address, power uint64) error {
	return g.mutateConfig(caller, func(cfg *GovernanceConfig, _ int64) error {
		cfg.TotalVotingPower = power
		return nil
	})
}

// Credit mints test tokens into the local ledger.
func (g *Governance) Credit(caller, mint, owner common.Address, amount uint64) error {
	return g.Store.Update(func(tx *Txn) error {
		cfg, err := tx.Config()
		if err != nil {
			return err
		}
		if err := requireAuthority(cfg, caller); err != nil {
			return err
		}
		if !cfg.TestMode {
			return ErrTestModeOnly
		}
		return g.tokens.Credit(tx, mint, owner, amount)
	})
}

type CreateProposalRequest struct {
	Proposer    common.Address
	Title       string
	Description string
	Type        ProposalType
	Payload     ExecutionPayload
	// CustomDepositRaw is in whole deposit tokens, nil uses the configured deposit
	CustomDepositRaw *uint64
}

// CreateProposal locks the deposit in the vault and opens a new proposal for voting.
func (g *Governance) CreateProposal(req CreateProposalRequest) (uint64, error) {
	if err := ValidateProposalContent(req.Title, req.Description); err != nil {
		return 0, err
	}
	if !req.Type.Valid() {
		return 0, ErrInvalidProposalType
	}

	var id uint64
	err := g.Store.Update(func(tx *Txn) error {
		cfg, err := tx.Config()
		if err != nil {
			return err
		}
		if err := validatePayload(req.Payload, req.Type, cfg.TestMode); err != nil {
			return err
		}

		deposit := cfg.ProposalDeposit
		if req.CustomDepositRaw != nil {
			custom, err := ScaleAmount(*req.CustomDepositRaw, cfg.DepositDecimals)
			if err != nil {
				return errors.Wrap(err, "scale custom deposit")
			}
			if custom < cfg.ProposalDeposit {
				return errors.Wrapf(ErrInsufficientDeposit, "%d below %d", custom, cfg.ProposalDeposit)
			}
			deposit = custom
		}

		now := g.now()
		cfg.ProposalCounter++
		id = cfg.ProposalCounter
		p := &Proposal{
			ID:            id,
			Proposer:      req.Proposer,
			Type:          req.Type,
			Title:         req.Title,
			Description:   req.Description,
			DepositAmount: deposit,
			CreatedAt:     now,
			VotingStart:   now,
			VotingEnd:     now + int64(cfg.VotingPeriod),
			Status:        Pending,
			Payload:       req.Payload,
		}

		if deposit > 0 {
			if err := g.tokens.Transfer(tx, cfg.DepositMint, req.Proposer, VaultAddress, deposit); err != nil {
				return errors.Wrap(err, "lock deposit")
			}
		}
		if err := tx.PutProposal(p); err != nil {
			return err
		}
		if err := tx.PutConfig(cfg); err != nil {
			return err
		}

		g.Logger.WithFields(logrus.Fields{
			"proposal_id": id,
			"proposer":    req.Proposer.Hex(),
			"type":        req.Type,
			"deposit":     deposit,
			"voting_end":  p.VotingEnd,
		}).Info("proposal created")
		return nil
	})
	if err != nil {
		return 0, g.rejected("create_proposal", err)
	}
	return id, nil
}

type CastVoteRequest struct {
	ProposalID uint64
	Voter      common.Address
	VoteType   VoteType
}

// CastVote records the voter's choice weighted by the committee token balance
// the engine reads for the voter at cast time.
func (g *Governance) CastVote(ctx context.Context, req CastVoteRequest) error {
	err := g.Store.Update(func(tx *Txn) error {
		cfg, err := tx.Config()
		if err != nil {
			return err
		}
		if !cfg.Committee.Contains(req.Voter) {
			return errors.Wrapf(ErrNotCommitteeMember, "voter %s", req.Voter)
		}
		p, err := tx.Proposal(req.ProposalID)
		if err != nil {
			return err
		}
		if p.Status != Pending {
			return errors.Wrapf(ErrProposalNotActive, "proposal %d is %s", p.ID, p.Status)
		}
		now := g.now()
		if now > p.VotingEnd {
			return errors.Wrapf(ErrVotingPeriodEnded, "proposal %d", p.ID)
		}

		balance, err := g.committeeBalance(ctx, tx, cfg, req.Voter)
		if err != nil {
			return errors.Wrapf(err, "balance of %s", req.Voter)
		}
		record, err := g.votes.Cast(tx, p.ID, req.Voter, req.VoteType, balance, cfg.CommitteeDecimals, now)
		if err != nil {
			return err
		}

		g.Logger.WithFields(logrus.Fields{
			"proposal_id": p.ID,
			"voter":       req.Voter.Hex(),
			"vote":        record.VoteType,
			"snapshot":    record.BalanceSnapshot,
		}).Info("vote cast")
		return nil
	})
	return g.rejected("cast_vote", err)
}

// committeeBalance reads owner's live committee token holding. The local
// ledger is read through tx so the value is consistent with the update.
func (g *Governance) committeeBalance(ctx context.Context, tx *Txn, cfg *GovernanceConfig, owner common.Address) (uint64, error) {
	if _, ok := g.Balances.(*LocalBalances); ok {
		return g.tokens.BalanceOf(tx, cfg.CommitteeMint, owner), nil
	}
	return g.Balances.BalanceOf(ctx, cfg.CommitteeMint, owner)
}

// RevokeVote withdraws a vote while the proposal is pending and more than
// VoteRevocationWindow seconds remain.
func (g *Governance) RevokeVote(proposalID uint64, voter common.Address) error {
	err := g.Store.Update(func(tx *Txn) error {
		p, err := tx.Proposal(proposalID)
		if err != nil {
			return err
		}
		if p.Status != Pending {
			return errors.Wrapf(ErrProposalNotActive, "proposal %d is %s", p.ID, p.Status)
		}
		now := g.now()
		if now > p.VotingEnd-VoteRevocationWindow {
			return errors.Wrapf(ErrCannotRevokeVote, "proposal %d voting ends at %d", p.ID, p.VotingEnd)
		}
		if _, err := g.votes.Revoke(tx, proposalID, voter, now); err != nil {
			return err
		}

		g.Logger.WithFields(logrus.Fields{"proposal_id": proposalID, "voter": voter.Hex()}).Info("vote revoked")
		return nil
	})
	return g.rejected("revoke_vote", err)
}

type FinalizeResult struct {
	Status           ProposalStatus
	TotalVotingPower uint64
	Stats            VoteStats
	Rates            Rates
	Settlement       *Settlement
}

// Finalize tallies a proposal whose voting window has closed, resolves its
// status and settles the deposit in the same update.
//
// Total voting power uses the live balances in input while each vote is
// weighted by the balance frozen when it was cast, so the two can disagree
// if holdings changed in between.
func (g *Governance) Finalize(proposalID uint64, input FinalizeInput) (*FinalizeResult, error) {
	var result *FinalizeResult
	err := g.Store.Update(func(tx *Txn) error {
		cfg, err := tx.Config()
		if err != nil {
			return err
		}
		p, err := tx.Proposal(proposalID)
		if err != nil {
			return err
		}
		if !p.VotingEnded(g.now()) {
			return errors.Wrapf(ErrVotingPeriodNotEnded, "proposal %d voting ends at %d", p.ID, p.VotingEnd)
		}
		if p.Status != Pending {
			return errors.Wrapf(ErrProposalNotActive, "proposal %d is %s", p.ID, p.Status)
		}

		balances, err := committeeBalances(cfg, input.Balances)
		if err != nil {
			return err
		}
		totalPower, err := TotalVotingPower(balances, cfg.CommitteeDecimals)
		if err != nil {
			return err
		}
		records, err := proposalVotes(tx, p.ID, input.Votes)
		if err != nil {
			return err
		}
		stats, err := TallyVotes(p.ID, records, cfg.CommitteeDecimals)
		if err != nil {
			return err
		}

		p.YesVotes = stats.YesVotes
		p.NoVotes = stats.NoVotes
		p.AbstainVotes = stats.AbstainVotes
		p.VetoVotes = stats.VetoVotes
		p.TotalVotes = stats.TotalVotes
		p.Status = stats.Resolve(totalPower, cfg.Thresholds())

		settlement, err := g.settlement.Settle(tx, cfg.DepositMint, p)
		if err != nil {
			return errors.Wrap(err, "settle deposit")
		}
		if err := tx.PutProposal(p); err != nil {
			return err
		}

		result = &FinalizeResult{
			Status:           p.Status,
			TotalVotingPower: totalPower,
			Stats:            stats,
			Rates:            stats.Rates(totalPower),
			Settlement:       settlement,
		}
		fields := logrus.Fields{
			"proposal_id": p.ID,
			"status":      p.Status,
			"total_power": totalPower,
			"yes":         stats.YesVotes,
			"no":          stats.NoVotes,
			"abstain":     stats.AbstainVotes,
			"veto":        stats.VetoVotes,
		}
		if settlement != nil {
			fields["refund"] = settlement.Refund
			fields["retained"] = settlement.Retained
		}
		g.Logger.WithFields(fields).Info("proposal finalized")
		return nil
	})
	if err != nil {
		return nil, g.rejected("finalize", err)
	}
	return result, nil
}

// Execute marks a passed proposal as carried out. The payload action itself
// is performed outside the engine; only a summary is recorded.
func (g *Governance) Execute(proposalID uint64) error {
	err := g.Store.Update(func(tx *Txn) error {
		p, err := tx.Proposal(proposalID)
		if err != nil {
			return err
		}
		if p.Status != Passed {
			return errors.Wrapf(ErrProposalNotExecutable, "proposal %d is %s", p.ID, p.Status)
		}

		result := fmt.Sprintf("Proposal %d executed at timestamp %d. Type: %s. Action: %s",
			p.ID, g.now(), p.Type, describePayload(p.Payload))
		result = truncateResult(result, MaxResultLength)
		p.Status = Executed
		p.ExecutionResult = &result
		if err := tx.PutProposal(p); err != nil {
			return err
		}

		g.Logger.WithField("proposal_id", p.ID).Info("proposal executed")
		return nil
	})
	return g.rejected("execute", err)
}

// truncateResult cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncateResult(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// Collect assembles finalize input from the engine's own vote index and the
// live balance source, one balance entry per committee slot.
func (g *Governance) Collect(ctx context.Context, proposalID uint64) (*FinalizeInput, error) {
	var (
		cfg     *GovernanceConfig
		records []*VoteRecord
	)
	err := g.Store.View(func(tx *Txn) error {
		var err error
		if cfg, err = tx.Config(); err != nil {
			return err
		}
		if _, err = tx.Proposal(proposalID); err != nil {
			return err
		}
		records, err = g.votes.ReadAll(tx, proposalID)
		return err
	})
	if err != nil {
		return nil, err
	}

	input := &FinalizeInput{Balances: make([][]byte, CommitteeCapacity)}
	for i, member := range cfg.Committee {
		if member == nil {
			continue
		}
		amount, err := g.Balances.BalanceOf(ctx, cfg.CommitteeMint, *member)
		if err != nil {
			return nil, errors.Wrapf(err, "balance of committee slot %d", i)
		}
		data, err := EncodeTokenAccount(&TokenAccount{Mint: cfg.CommitteeMint, Owner: *member, Amount: amount})
		if err != nil {
			return nil, err
		}
		input.Balances[i] = data
	}
	for _, record := range records {
		data, err := EncodeVoteRecord(record)
		if err != nil {
			return nil, err
		}
		input.Votes = append(input.Votes, data)
	}
	return input, nil
}

// VotingPowerReport is the read-only view of a proposal's current tally.
type VotingPowerReport struct {
	ProposalID       uint64
	TotalVotingPower uint64
	Stats            VoteStats
	Rates            Rates
	Timestamp        int64
}

// Query tallies the stored votes of a proposal against live committee power
// without changing anything.
func (g *Governance) Query(ctx context.Context, proposalID uint64) (*VotingPowerReport, error) {
	input, err := g.Collect(ctx, proposalID)
	if err != nil {
		return nil, err
	}

	report := &VotingPowerReport{ProposalID: proposalID, Timestamp: g.now()}
	err = g.Store.View(func(tx *Txn) error {
		cfg, err := tx.Config()
		if err != nil {
			return err
		}
		balances, err := committeeBalances(cfg, input.Balances)
		if err != nil {
			return err
		}
		if report.TotalVotingPower, err = TotalVotingPower(balances, cfg.CommitteeDecimals); err != nil {
			return err
		}
		records, err := g.votes.ReadAll(tx, proposalID)
		if err != nil {
			return err
		}
		if report.Stats, err = TallyVotes(proposalID, records, cfg.CommitteeDecimals); err != nil {
			return err
		}
		report.Rates = report.Stats.Rates(report.TotalVotingPower)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

func (g *Governance) GovernanceConfig() (*GovernanceConfig, error) {
	var cfg *GovernanceConfig
	err := g.Store.View(func(tx *Txn) error {
		var err error
		cfg, err = tx.Config()
		return err
	})
	return cfg, err
}

func (g *Governance) Proposal(id uint64) (*Proposal, error) {
	var p *Proposal
	err := g.Store.View(func(tx *Txn) error {
		var err error
		p, err = tx.Proposal(id)
		return err
	})
	return p, err
}

func (g *Governance) Proposals() ([]*Proposal, error) {
	var proposals []*Proposal
	err := g.Store.View(func(tx *Txn) error {
		var err error
		proposals, err = tx.Proposals()
		return err
	})
	return proposals, err
}

func (g *Governance) Votes(proposalID uint64) ([]*VoteRecord, error) {
	var records []*VoteRecord
	err := g.Store.View(func(tx *Txn) error {
		var err error
		records, err = g.votes.ReadAll(tx, proposalID)
		return err
	})
	return records, err
}

func (g *Governance) TokenBalance(mint, owner common.Address) (uint64, error) {
	var balance uint64
	err := g.Store.View(func(tx *Txn) error {
		balance = g.tokens.BalanceOf(tx, mint, owner)
		return nil
	})
	return balance, err
}
