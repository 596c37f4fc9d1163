package core

import (
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

const (
	maxEvidenceURLs       = 10
	maxEvidenceURLLength  = 500
	maxKindLength         = 100
	maxResolutionLength   = 1000
	maxRuleCategoryLength = 50
	maxRuleDocumentTitle  = 100
)

// ExecutionPayload is the typed action attached to a proposal. It is a closed
// set: SlashPayload, DisputePayload, RuleUpdatePayload and ConfigUpdatePayload.
type ExecutionPayload interface {
	ProposalType() ProposalType
	Validate() error
	isExecutionPayload()
}

type SlashPayload struct {
	Merchant      common.Address
	Product       *common.Address `json:",omitempty"`
	Order         *common.Address `json:",omitempty"`
	ViolationType string
	EvidenceURLs  []string
	SlashAmount   uint64
}

type DecisionKind uint8

const (
	RefundUser DecisionKind = iota
	SupportMerchant
	PartialRefund
	RequireOfflineResolution
)

type ArbitrationDecision struct {
	Kind DecisionKind
	// RefundAmount is only meaningful for PartialRefund
	RefundAmount uint64 `json:",omitempty"`
}

type DisputePayload struct {
	User                common.Address
	Merchant            common.Address
	Order               common.Address
	DisputeType         string
	EvidenceURLs        []string
	RequestedResolution string
	Decision            *ArbitrationDecision `json:",omitempty"`
}

type RuleOperation uint8

const (
	RuleAdd RuleOperation = iota
	RuleModify
	RuleRemove
)

type RuleDocument struct {
	Category string
	Title    string
	URL      string
	Hash     string
}

type RuleUpdatePayload struct {
	Operation     RuleOperation
	DocumentIndex *uint32       `json:",omitempty"`
	Document      *RuleDocument `json:",omitempty"`
}

type ConfigUpdatePayload struct {
	Update ConfigUpdateParams
}

func (*SlashPayload) ProposalType() ProposalType { return SlashMerchant }
func (*DisputePayload) ProposalType() ProposalType { return DisputeArbitration }
func (*RuleUpdatePayload) ProposalType() ProposalType { return RuleUpdate }
func (*ConfigUpdatePayload) ProposalType() ProposalType { return ConfigUpdate }

func (*SlashPayload) isExecutionPayload() {}
func (*DisputePayload) isExecutionPayload() {}
func (*RuleUpdatePayload) isExecutionPayload() {}
func (*ConfigUpdatePayload) isExecutionPayload() {}

func (p *SlashPayload) Validate() error {
	if p.Merchant == (common.Address{}) {
		return errors.Wrap(ErrInvalidExecutionData, "merchant address is required")
	}
	if p.ViolationType == "" || len(p.ViolationType) > maxKindLength {
		return errors.Wrap(ErrInvalidExecutionData, "violation type length")
	}
	if p.SlashAmount == 0 {
		return ErrInvalidSlashAmount
	}
	return validateEvidence(p.EvidenceURLs)
}

func (p *DisputePayload) Validate() error {
	if p.User == (common.Address{}) || p.Merchant == (common.Address{}) || p.User == p.Merchant {
		return ErrInvalidDisputeParties
	}
	if p.DisputeType == "" || len(p.DisputeType) > maxKindLength {
		return errors.Wrap(ErrInvalidExecutionData, "dispute type length")
	}
	if len(p.RequestedResolution) > maxResolutionLength {
		return errors.Wrap(ErrInvalidExecutionData, "requested resolution length")
	}
	return validateEvidence(p.EvidenceURLs)
}

func (p *RuleUpdatePayload) Validate() error {
	switch p.Operation {
	case RuleAdd:
		if p.Document == nil {
			return errors.Wrap(ErrInvalidExecutionData, "rule document is required")
		}
	case RuleModify:
		if p.Document == nil || p.DocumentIndex == nil {
			return errors.Wrap(ErrInvalidExecutionData, "rule document and index are required")
		}
	case RuleRemove:
		if p.DocumentIndex == nil {
			return errors.Wrap(ErrInvalidExecutionData, "rule document index is required")
		}
		return nil
	default:
		return errors.Wrapf(ErrInvalidExecutionData, "unknown rule operation %d", p.Operation)
	}

	doc := p.Document
	if doc.Category == "" || len(doc.Category) > maxRuleCategoryLength {
		return errors.Wrap(ErrInvalidExecutionData, "rule category length")
	}
	if doc.Title == "" || len(doc.Title) > maxRuleDocumentTitle {
		return errors.Wrap(ErrInvalidExecutionData, "rule title length")
	}
	if err := ValidateURL(doc.URL); err != nil {
		return err
	}
	return ValidateHash(doc.Hash)
}

// Validate checks the update against production bounds unless the update
// itself switches the mode. validatePayload checks it against the live mode.
func (p *ConfigUpdatePayload) Validate() error {
	return p.Update.Validate(false)
}

func validateEvidence(urls []string) error {
	if len(urls) > maxEvidenceURLs {
		return ErrTooManyEvidenceURLs
	}
	for _, url := range urls {
		if len(url) > maxEvidenceURLLength {
			return errors.Wrap(ErrInvalidURLFormat, "evidence URL too long")
		}
		if err := ValidateURL(url); err != nil {
			return err
		}
	}
	return nil
}

// validatePayload checks that payload belongs to proposalType and is well formed.
func validatePayload(payload ExecutionPayload, proposalType ProposalType, testMode bool) error {
	if payload == nil {
		return nil
	}
	if payload.ProposalType() != proposalType {
		return errors.Wrapf(ErrInvalidExecutionData, "%s payload on %s proposal", payload.ProposalType(), proposalType)
	}
	if cfg, ok := payload.(*ConfigUpdatePayload); ok {
		return cfg.Update.Validate(testMode)
	}
	return payload.Validate()
}

// describePayload renders the action a payload requests.
func describePayload(payload ExecutionPayload) string {
	switch p := payload.(type) {
	case nil:
		return "no execution data"
	case *SlashPayload:
		return fmt.Sprintf("slash merchant %s by %d for %s", p.Merchant.Hex(), p.SlashAmount, p.ViolationType)
	case *DisputePayload:
		return fmt.Sprintf("arbitrate %s dispute on order %s between %s and %s",
			p.DisputeType, p.Order.Hex(), p.User.Hex(), p.Merchant.Hex())
	case *RuleUpdatePayload:
		switch p.Operation {
		case RuleAdd:
			return fmt.Sprintf("add rule document %q", p.Document.Title)
		case RuleModify:
			return fmt.Sprintf("update rule document #%d", *p.DocumentIndex)
		default:
			return fmt.Sprintf("remove rule document #%d", *p.DocumentIndex)
		}
	case *ConfigUpdatePayload:
		return "update governance config"
	default:
		return "unknown execution data"
	}
}

// payloadEnvelope is the stored form of an ExecutionPayload, exactly one field is set.
type payloadEnvelope struct {
	Slash        *SlashPayload        `json:",omitempty"`
	Dispute      *DisputePayload      `json:",omitempty"`
	RuleUpdate   *RuleUpdatePayload   `json:",omitempty"`
	ConfigUpdate *ConfigUpdatePayload `json:",omitempty"`
}

func wrapPayload(payload ExecutionPayload) *payloadEnvelope {
	switch p := payload.(type) {
	case *SlashPayload:
		return &payloadEnvelope{Slash: p}
	case *DisputePayload:
		return &payloadEnvelope{Dispute: p}
	case *RuleUpdatePayload:
		return &payloadEnvelope{RuleUpdate: p}
	case *ConfigUpdatePayload:
		return &payloadEnvelope{ConfigUpdate: p}
	default:
		return nil
	}
}

func (e *payloadEnvelope) unwrap() ExecutionPayload {
	switch {
	case e == nil:
		return nil
	case e.Slash != nil:
		return e.Slash
	case e.Dispute != nil:
		return e.Dispute
	case e.RuleUpdate != nil:
		return e.RuleUpdate
	case e.ConfigUpdate != nil:
		return e.ConfigUpdate
	default:
		return nil
	}
}

type proposalJSON Proposal

type proposalWithPayload struct {
	*proposalJSON
	Payload *payloadEnvelope `json:",omitempty"`
}

func (p Proposal) MarshalJSON() ([]byte, error) {
	pj := proposalJSON(p)
	return json.Marshal(proposalWithPayload{
		proposalJSON: &pj,
		Payload:      wrapPayload(p.Payload),
	})
}

func (p *Proposal) UnmarshalJSON(data []byte) error {
	aux := proposalWithPayload{proposalJSON: (*proposalJSON)(p)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	p.Payload = aux.Payload.unwrap()
	return nil
}

// DecodePayload parses the JSON form of the payload for proposalType.
func DecodePayload(proposalType ProposalType, data []byte) (ExecutionPayload, error) {
	var payload ExecutionPayload
	switch proposalType {
	case SlashMerchant:
		payload = &SlashPayload{}
	case DisputeArbitration:
		payload = &DisputePayload{}
	case RuleUpdate:
		payload = &RuleUpdatePayload{}
	case ConfigUpdate:
		payload = &ConfigUpdatePayload{}
	default:
		return nil, ErrInvalidProposalType
	}
	if err := json.Unmarshal(data, payload); err != nil {
		return nil, errors.Wrap(ErrInvalidExecutionData, err.Error())
	}
	return payload, nil
}
