package repo

import (
	"time"
)

const (
	TokenSourceLocal    = "local"
	TokenSourceEthereum = "ethereum"
)

type Config struct {
	RepoRoot string  `mapstructure:"-" toml:"-"`
	DialUrl  string  `mapstructure:"dial_url" toml:"dial_url"`
	Log      Log     `mapstructure:"log" toml:"log"`
	Token    Token   `mapstructure:"token" toml:"token"`
	Genesis  Genesis `mapstructure:"genesis" toml:"genesis"`
}

type Log struct {
	Level        string        `mapstructure:"level" toml:"level"`
	Filename     string        `mapstructure:"filename" toml:"filename"`
	ReportCaller bool          `mapstructure:"report_caller" toml:"report_caller"`
	MaxAge       time.Duration `mapstructure:"max_age" toml:"max_age"`
	RotationTime time.Duration `mapstructure:"rotation_time" toml:"rotation_time"`
}

type Token struct {
	// local keeps balances in the governance store, ethereum reads ERC-20
	// balanceOf through dial_url
	Source        string        `mapstructure:"source" toml:"source"`
	CommitteeMint string        `mapstructure:"committee_mint" toml:"committee_mint"`
	DepositMint   string        `mapstructure:"deposit_mint" toml:"deposit_mint"`
	RetryLimit    uint          `mapstructure:"retry_limit" toml:"retry_limit"`
	RetryInterval time.Duration `mapstructure:"retry_interval" toml:"retry_interval"`
}

// Genesis holds the parameters `init` writes into the governance config.
type Genesis struct {
	Authority         string `mapstructure:"authority" toml:"authority"`
	CommitteeDecimals uint8  `mapstructure:"committee_decimals" toml:"committee_decimals"`
	DepositDecimals   uint8  `mapstructure:"deposit_decimals" toml:"deposit_decimals"`
	// whole deposit tokens, scaled by deposit_decimals
	ProposalDepositRaw uint64 `mapstructure:"proposal_deposit_raw" toml:"proposal_deposit_raw"`
	// seconds
	VotingPeriod           uint64 `mapstructure:"voting_period" toml:"voting_period"`
	ParticipationThreshold uint16 `mapstructure:"participation_threshold" toml:"participation_threshold"`
	ApprovalThreshold      uint16 `mapstructure:"approval_threshold" toml:"approval_threshold"`
	VetoThreshold          uint16 `mapstructure:"veto_threshold" toml:"veto_threshold"`
	FeeRate                uint16 `mapstructure:"fee_rate" toml:"fee_rate"`
	TestMode               bool   `mapstructure:"test_mode" toml:"test_mode"`
}

func DefaultConfig(repoRoot string) *Config {
	return &Config{
		RepoRoot: repoRoot,
		DialUrl:  "ws://localhost:9991",
		Log: Log{
			Level:        "info",
			Filename:     "governance.log",
			ReportCaller: false,
			MaxAge:       30 * 24 * time.Hour,
			RotationTime: 24 * time.Hour,
		},
		Token: Token{
			Source:        TokenSourceLocal,
			CommitteeMint: "0x0000000000000000000000000000000000002001",
			DepositMint:   "0x0000000000000000000000000000000000002002",
			RetryLimit:    5,
			RetryInterval: 5 * time.Second,
		},
		Genesis: Genesis{
			Authority:              "0x0000000000000000000000000000000000000000",
			CommitteeDecimals:      9,
			DepositDecimals:        6,
			ProposalDepositRaw:     100,
			VotingPeriod:           14 * 24 * 60 * 60,
			ParticipationThreshold: 4000,
			ApprovalThreshold:      5000,
			VetoThreshold:          3000,
			FeeRate:                1000,
			TestMode:               false,
		},
	}
}
