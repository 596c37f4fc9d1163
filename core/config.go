package core

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

const (
	// BasisPoints is the denominator of every rate and threshold (100% = 10000).
	BasisPoints = 10000

	CommitteeCapacity = 10

	MaxTitleLength       = 100
	MaxDescriptionLength = 800
	MaxResultLength      = 500

	DefaultVotingPeriod           = 14 * 24 * 60 * 60
	DefaultParticipationThreshold = 4000
	DefaultApprovalThreshold      = 5000
	DefaultVetoThreshold          = 3000
	DefaultFeeRate                = 1000
	// DefaultProposalDeposit is 100 tokens of a 6-decimal stable coin
	DefaultProposalDeposit = 100_000_000

	minTestVotingPeriod = 30
	minVotingPeriod     = 24 * 60 * 60
	maxVotingPeriod     = 30 * 24 * 60 * 60
)

// Roster is the fixed committee arena. Removed members leave an empty slot
// that the next addition reuses.
type Roster [CommitteeCapacity]*common.Address

func (r *Roster) Count() int {
	n := 0
	for _, slot := range r {
		if slot != nil {
			n++
		}
	}
	return n
}

func (r *Roster) Contains(member common.Address) bool {
	return r.slotOf(member) >= 0
}

func (r *Roster) slotOf(member common.Address) int {
	for i, slot := range r {
		if slot != nil && *slot == member {
			return i
		}
	}
	return -1
}

// Add places member in the first empty slot.
func (r *Roster) Add(member common.Address) (int, error) {
	if r.Contains(member) {
		return -1, ErrMemberAlreadyExists
	}
	for i, slot := range r {
		if slot == nil {
			m := member
			r[i] = &m
			return i, nil
		}
	}
	return -1, ErrCommitteeFull
}

func (r *Roster) Remove(member common.Address) (int, error) {
	i := r.slotOf(member)
	if i < 0 {
		return -1, ErrMemberNotFound
	}
	r[i] = nil
	return i, nil
}

// Members lists occupied slots in slot order.
func (r *Roster) Members() []common.Address {
	var members []common.Address
	for _, slot := range r {
		if slot != nil {
			members = append(members, *slot)
		}
	}
	return members
}

// GovernanceConfig is the singleton every operation reads.
type GovernanceConfig struct {
	Authority     common.Address
	CommitteeMint common.Address
	DepositMint   common.Address
	// Decimals of the committee token, fixes the voting power unit
	CommitteeDecimals uint8
	DepositDecimals   uint8

	Committee Roster

	ProposalDeposit        uint64
	VotingPeriod           uint64
	ParticipationThreshold uint16
	ApprovalThreshold      uint16
	VetoThreshold          uint16
	FeeRate                uint16

	TotalVotingPower uint64
	ProposalCounter  uint64

	CreatedAt int64
	UpdatedAt int64
	TestMode  bool
}

// CommitteeFee is the share of amount kept by the committee at the configured fee rate.
func (c *GovernanceConfig) CommitteeFee(amount uint64) uint64 {
	return mulDiv(amount, uint64(c.FeeRate), BasisPoints)
}

// ProposerRefund is amount minus the committee fee.
func (c *GovernanceConfig) ProposerRefund(amount uint64) uint64 {
	return amount - c.CommitteeFee(amount)
}

// InitParams are the genesis parameters of the governance system.
type InitParams struct {
	CommitteeMint          common.Address
	DepositMint            common.Address
	CommitteeDecimals      uint8
	DepositDecimals        uint8
	ProposalDepositRaw     uint64
	VotingPeriod           uint64
	ParticipationThreshold uint16
	ApprovalThreshold      uint16
	VetoThreshold          uint16
	FeeRate                uint16
	TestMode               bool
}

// Validate checks the genesis parameters before they are written.
func (p *InitParams) Validate() error {
	if err := ValidateThreshold(p.ParticipationThreshold); err != nil {
		return err
	}
	if err := ValidateThreshold(p.ApprovalThreshold); err != nil {
		return err
	}
	if err := ValidateThreshold(p.VetoThreshold); err != nil {
		return err
	}
	if err := ValidateFeeRate(p.FeeRate); err != nil {
		return err
	}
	if p.CommitteeDecimals > MaxDecimals || p.DepositDecimals > MaxDecimals {
		return ErrMathOverflow
	}
	return ValidateVotingPeriod(p.VotingPeriod, p.TestMode)
}

// ConfigUpdateParams changes only the fields that are set.
type ConfigUpdateParams struct {
	ProposalDeposit        *uint64 `json:",omitempty"`
	VotingPeriod           *uint64 `json:",omitempty"`
	ParticipationThreshold *uint16 `json:",omitempty"`
	ApprovalThreshold      *uint16 `json:",omitempty"`
	VetoThreshold          *uint16 `json:",omitempty"`
	FeeRate                *uint16 `json:",omitempty"`
	TestMode               *bool   `json:",omitempty"`
}

func (u *ConfigUpdateParams) Validate(currentTestMode bool) error {
	for _, threshold := range []*uint16{u.ParticipationThreshold, u.ApprovalThreshold, u.VetoThreshold} {
		if threshold == nil {
			continue
		}
		if err := ValidateThreshold(*threshold); err != nil {
			return err
		}
	}
	if u.FeeRate != nil {
		if err := ValidateFeeRate(*u.FeeRate); err != nil {
			return err
		}
	}
	if u.VotingPeriod != nil {
		testMode := currentTestMode
		if u.TestMode != nil {
			testMode = *u.TestMode
		}
		if err := ValidateVotingPeriod(*u.VotingPeriod, testMode); err != nil {
			return err
		}
	}
	return nil
}

func (u *ConfigUpdateParams) ApplyTo(c *GovernanceConfig, now int64) {
	if u.ProposalDeposit != nil {
		c.ProposalDeposit = *u.ProposalDeposit
	}
	if u.VotingPeriod != nil {
		c.VotingPeriod = *u.VotingPeriod
	}
	if u.ParticipationThreshold != nil {
		c.ParticipationThreshold = *u.ParticipationThreshold
	}
	if u.ApprovalThreshold != nil {
		c.ApprovalThreshold = *u.ApprovalThreshold
	}
	if u.VetoThreshold != nil {
		c.VetoThreshold = *u.VetoThreshold
	}
	if u.FeeRate != nil {
		c.FeeRate = *u.FeeRate
	}
	if u.TestMode != nil {
		c.TestMode = *u.TestMode
	}
	c.UpdatedAt = now
}

func ValidateThreshold(threshold uint16) error {
	if threshold > BasisPoints {
		return ErrInvalidThreshold
	}
	return nil
}

func ValidateFeeRate(rate uint16) error {
	if rate > BasisPoints {
		return ErrInvalidFeeRate
	}
	return nil
}

// ValidateVotingPeriod bounds the period in seconds: test mode allows 30s to
// 30 days, production 1 day to 30 days.
func ValidateVotingPeriod(period uint64, testMode bool) error {
	min := uint64(minVotingPeriod)
	if testMode {
		min = minTestVotingPeriod
	}
	if period < min || period > maxVotingPeriod {
		return ErrInvalidVotingPeriod
	}
	return nil
}

func ValidateProposalContent(title, description string) error {
	if len(title) > MaxTitleLength {
		return ErrInvalidProposalTitle
	}
	if len(description) > MaxDescriptionLength {
		return ErrInvalidProposalDescription
	}
	return nil
}

// ValidateURL accepts https, ipfs and arweave locations.
func ValidateURL(url string) error {
	if strings.HasPrefix(url, "https://") || strings.HasPrefix(url, "ipfs://") || strings.HasPrefix(url, "ar://") {
		return nil
	}
	return ErrInvalidURLFormat
}

// ValidateHash accepts a hex encoded sha256 digest.
func ValidateHash(hash string) error {
	if len(hash) != 64 {
		return ErrInvalidHashFormat
	}
	for _, c := range hash {
		if !('0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F') {
			return ErrInvalidHashFormat
		}
	}
	return nil
}
