package core

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"sort"
	"sync"

	"github.com/axiomesh/axiom-kit/storage"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

var (
	configKey      = []byte("governance/config")
	proposalPrefix = []byte("proposal/")
	votePrefix     = []byte("vote/")
	balancePrefix  = []byte("balance/")
)

func proposalKey(id uint64) []byte {
	return append(append([]byte{}, proposalPrefix...), uint64Bytes(id)...)
}

// voteKey is unique per (proposal, voter); its existence is what forbids a
// second vote.
func voteKey(proposalID uint64, voter common.Address) []byte {
	key := append(append([]byte{}, votePrefix...), uint64Bytes(proposalID)...)
	return append(key, voter.Bytes()...)
}

func votesOfProposalPrefix(proposalID uint64) []byte {
	return append(append([]byte{}, votePrefix...), uint64Bytes(proposalID)...)
}

func balanceKey(mint, owner common.Address) []byte {
	key := append(append([]byte{}, balancePrefix...), mint.Bytes()...)
	return append(key, owner.Bytes()...)
}

func uint64Bytes(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}

// Store is the record store the engine runs on. Writes go through Update,
// which applies all of an operation's changes in one batch or none of them.
type Store struct {
	db    storage.Storage
	mutex sync.RWMutex
}

func NewStore(db storage.Storage) *Store {
	return &Store{db: db}
}

func (s *Store) Close() error {
	return s.db.Close()
}

// View runs fn against a read-only snapshot of committed records.
func (s *Store) View(fn func(tx *Txn) error) error {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return fn(&Txn{db: s.db, readOnly: true})
}

// Update runs fn with exclusive write access. Staged writes are committed
// only if fn returns nil.
func (s *Store) Update(fn func(tx *Txn) error) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	tx := &Txn{db: s.db, pending: make(map[string][]byte)}
	if err := fn(tx); err != nil {
		return err
	}
	tx.commit()
	return nil
}

// Txn is the handle an operation uses to read and stage records.
type Txn struct {
	db       storage.Storage
	pending  map[string][]byte
	readOnly bool
}

func (tx *Txn) get(key []byte) []byte {
	if v, ok := tx.pending[string(key)]; ok {
		return v
	}
	return tx.db.Get(key)
}

func (tx *Txn) has(key []byte) bool {
	if _, ok := tx.pending[string(key)]; ok {
		return true
	}
	return tx.db.Has(key)
}

func (tx *Txn) put(key, value []byte) error {
	if tx.readOnly {
		return errors.New("write in read-only transaction")
	}
	tx.pending[string(key)] = value
	return nil
}

func (tx *Txn) commit() {
	if len(tx.pending) == 0 {
		return
	}
	batch := tx.db.NewBatch()
	for k, v := range tx.pending {
		batch.Put([]byte(k), v)
	}
	batch.Commit()
}

// scan returns committed and staged values under prefix ordered by key.
func (tx *Txn) scan(prefix []byte) [][]byte {
	merged := make(map[string][]byte)
	it := tx.db.Prefix(prefix)
	for it.Next() {
		merged[string(it.Key())] = append([]byte{}, it.Value()...)
	}
	for k, v := range tx.pending {
		if bytes.HasPrefix([]byte(k), prefix) {
			merged[k] = v
		}
	}

	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	values := make([][]byte, 0, len(keys))
	for _, k := range keys {
		values = append(values, merged[k])
	}
	return values
}

func (tx *Txn) getJSON(key []byte, v any) (bool, error) {
	data := tx.get(key)
	if data == nil {
		return false, nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, errors.Wrapf(err, "decode record %q", key)
	}
	return true, nil
}

func (tx *Txn) putJSON(key []byte, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "encode record %q", key)
	}
	return tx.put(key, data)
}

func (tx *Txn) Config() (*GovernanceConfig, error) {
	cfg := &GovernanceConfig{}
	ok, err := tx.getJSON(configKey, cfg)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotInitialized
	}
	return cfg, nil
}

func (tx *Txn) PutConfig(cfg *GovernanceConfig) error {
	return tx.putJSON(configKey, cfg)
}

func (tx *Txn) Proposal(id uint64) (*Proposal, error) {
	p := &Proposal{}
	ok, err := tx.getJSON(proposalKey(id), p)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.Wrapf(ErrProposalNotFound, "proposal %d", id)
	}
	return p, nil
}

func (tx *Txn) PutProposal(p *Proposal) error {
	return tx.putJSON(proposalKey(p.ID), p)
}

func (tx *Txn) Proposals() ([]*Proposal, error) {
	var proposals []*Proposal
	for _, data := range tx.scan(proposalPrefix) {
		p := &Proposal{}
		if err := json.Unmarshal(data, p); err != nil {
			return nil, errors.Wrap(err, "decode proposal")
		}
		proposals = append(proposals, p)
	}
	return proposals, nil
}
