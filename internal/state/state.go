package state

import (
	"bytes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	bolt "go.etcd.io/bbolt"
	"golang.org/x/crypto/chacha20poly1305"
)

const (
	// stateDirPerm is the permission mode for the state directory (~/.appsync/).
	stateDirPerm = fs.FileMode(0o700)

	// stateFilePerm is the permission mode for the state database file.
	stateFilePerm = fs.FileMode(0o600)

	// stateOpenTimeout is the maximum time to wait for the bolt database lock.
	stateOpenTimeout = 5 * time.Second

	// dbFileName is the metadata database inside the state directory.
	dbFileName = "metadata.db"

	// sealedPrefix marks values encrypted with the metadata key. Plain
	// values are JSON objects and always start with '{'.
	sealedPrefix = byte(0x01)
)

var (
	// ErrSealed is returned when an encrypted record is read without a key.
	ErrSealed = errors.New("record is encrypted and no metadata key is configured")

	currentUserKey = []byte("current_user")
)

func appMetaBucket(appID string) []byte {
	return []byte("app:" + appID + ":meta")
}

func appUsersBucket(appID string) []byte {
	return []byte("app:" + appID + ":users")
}

func subscriptionsBucket(realmPath string) []byte {
	return []byte("subs:" + realmPath)
}

// UserState is the persisted lifecycle state of a user.
type UserState string

const (
	UserLoggedIn  UserState = "logged_in"
	UserLoggedOut UserState = "logged_out"
)

// Identity is one provider identity linked to a user.
type Identity struct {
	ID       string `json:"id"`
	Provider string `json:"provider_type"`
}

// UserRecord is the persisted metadata for one identity of an app.
// Removed users are deleted rather than stored with a flag.
type UserRecord struct {
	ID           string          `json:"id"`
	State        UserState       `json:"state"`
	AccessToken  string          `json:"access_token,omitempty"`
	RefreshToken string          `json:"refresh_token,omitempty"`
	DeviceID     string          `json:"device_id,omitempty"`
	Provider     string          `json:"provider"`
	Identities   []Identity      `json:"identities,omitempty"`
	Profile      json.RawMessage `json:"profile,omitempty"`
	CustomData   json.RawMessage `json:"custom_data,omitempty"`
	LastUsed     time.Time       `json:"last_used"`
}

// Subscription is one named query in a subscription set snapshot.
type Subscription struct {
	Name        string    `json:"name"`
	ObjectClass string    `json:"object_class"`
	Query       string    `json:"query"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// SubscriptionSnapshot is one committed version of a subscription set.
type SubscriptionSnapshot struct {
	Version       int64          `json:"version"`
	State         string         `json:"state"`
	ErrorMessage  string         `json:"error_message,omitempty"`
	Subscriptions []Subscription `json:"subscriptions"`
}

// State wraps a bbolt database for all persistent client metadata.
type State struct {
	db   *bolt.DB
	aead cipher.AEAD
}

// Load opens the metadata database inside stateDir, creating it if it
// does not exist. A non-nil key enables encryption at rest.
func Load(stateDir string, key []byte) (*State, error) {
	return LoadAt(filepath.Join(stateDir, dbFileName), key)
}

// LoadAt opens a state database at the given path, creating it if it
// does not exist. Useful for tests that need an isolated database.
func LoadAt(path string, key []byte) (*State, error) {
	s := &State{}

	if key != nil {
		a, err := chacha20poly1305.NewX(key)
		if err != nil {
			return nil, fmt.Errorf("creating metadata cipher: %w", err)
		}

		s.aead = a
	}

	if err := os.MkdirAll(filepath.Dir(path), stateDirPerm); err != nil {
		return nil, fmt.Errorf("creating state directory: %w", err)
	}

	db, err := bolt.Open(path, stateFilePerm, &bolt.Options{Timeout: stateOpenTimeout})
	if err != nil {
		return nil, fmt.Errorf("opening state db: %w", err)
	}

	s.db = db

	return s, nil
}

// Close closes the database.
func (s *State) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *State) Path() string {
	return s.db.Path()
}

// --- Users ---

// SaveUser persists a user record, replacing any previous record with
// the same ID.
func (s *State) SaveUser(appID string, u UserRecord) error {
	data, err := s.seal(u)
	if err != nil {
		return err
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(appUsersBucket(appID))
		if err != nil {
			return err
		}

		return b.Put([]byte(u.ID), data)
	})
}

// GetUser returns a user record by ID, or nil if not found.
func (s *State) GetUser(appID, userID string) (*UserRecord, error) {
	var u *UserRecord

	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(appUsersBucket(appID))
		if b == nil {
			return nil
		}

		v := b.Get([]byte(userID))
		if v == nil {
			return nil
		}

		u = &UserRecord{}

		return s.open(v, u)
	})

	return u, err
}

// DeleteUser removes a user record. The current user pointer is cleared
// when it referenced the removed user.
func (s *State) DeleteUser(appID, userID string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if b := tx.Bucket(appUsersBucket(appID)); b != nil {
			if err := b.Delete([]byte(userID)); err != nil {
				return err
			}
		}

		meta := tx.Bucket(appMetaBucket(appID))
		if meta != nil && string(meta.Get(currentUserKey)) == userID {
			return meta.Delete(currentUserKey)
		}

		return nil
	})
}

// AllUsers returns every stored user of an app, most recently used first.
func (s *State) AllUsers(appID string) ([]UserRecord, error) {
	var users []UserRecord

	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(appUsersBucket(appID))
		if b == nil {
			return nil
		}

		return b.ForEach(func(_, v []byte) error {
			var u UserRecord
			if err := s.open(v, &u); err != nil {
				return err
			}

			users = append(users, u)

			return nil
		})
	})

	sort.SliceStable(users, func(i, j int) bool {
		return users[i].LastUsed.After(users[j].LastUsed)
	})

	return users, err
}

// CurrentUserID returns the ID of the active user, or empty string.
func (s *State) CurrentUserID(appID string) string {
	var id string

	_ = s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(appMetaBucket(appID))
		if b == nil {
			return nil
		}

		if v := b.Get(currentUserKey); v != nil {
			id = string(v)
		}

		return nil
	})

	return id
}

// SetCurrentUserID persists the active user. An empty ID clears it.
func (s *State) SetCurrentUserID(appID, userID string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(appMetaBucket(appID))
		if err != nil {
			return err
		}

		if userID == "" {
			return b.Delete(currentUserKey)
		}

		return b.Put(currentUserKey, []byte(userID))
	})
}

// --- Subscription sets ---

// SaveSubscriptionSet persists a snapshot under its version.
func (s *State) SaveSubscriptionSet(realmPath string, snap SubscriptionSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshaling subscription set: %w", err)
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(subscriptionsBucket(realmPath))
		if err != nil {
			return err
		}

		return b.Put(versionKey(snap.Version), data)
	})
}

// SubscriptionSet returns the snapshot at version, or nil if not found.
func (s *State) SubscriptionSet(realmPath string, version int64) (*SubscriptionSnapshot, error) {
	var snap *SubscriptionSnapshot

	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(subscriptionsBucket(realmPath))
		if b == nil {
			return nil
		}

		v := b.Get(versionKey(version))
		if v == nil {
			return nil
		}

		snap = &SubscriptionSnapshot{}

		return json.Unmarshal(v, snap)
	})

	return snap, err
}

// LatestSubscriptionSet returns the highest committed version, or nil
// when no set has been committed for the realm.
func (s *State) LatestSubscriptionSet(realmPath string) (*SubscriptionSnapshot, error) {
	var snap *SubscriptionSnapshot

	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(subscriptionsBucket(realmPath))
		if b == nil {
			return nil
		}

		_, v := b.Cursor().Last()
		if v == nil {
			return nil
		}

		snap = &SubscriptionSnapshot{}

		return json.Unmarshal(v, snap)
	})

	return snap, err
}

// PruneSubscriptionSets deletes every snapshot older than keepFrom.
func (s *State) PruneSubscriptionSets(realmPath string, keepFrom int64) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(subscriptionsBucket(realmPath))
		if b == nil {
			return nil
		}

		limit := versionKey(keepFrom)

		var stale [][]byte

		c := b.Cursor()
		for k, _ := c.First(); k != nil && bytes.Compare(k, limit) < 0; k, _ = c.Next() {
			stale = append(stale, append([]byte(nil), k...))
		}

		for _, k := range stale {
			if err := b.Delete(k); err != nil {
				return err
			}
		}

		return nil
	})
}

// versionKey encodes a version so that byte order matches numeric order.
func versionKey(v int64) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, uint64(v))

	return k
}

// --- Encryption ---

func (s *State) seal(v any) ([]byte, error) {
	plain, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshaling record: %w", err)
	}

	if s.aead == nil {
		return plain, nil
	}

	nonce := make([]byte, s.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generating nonce: %w", err)
	}

	out := make([]byte, 0, 1+len(nonce)+len(plain)+16)
	out = append(out, sealedPrefix)
	out = append(out, nonce...)

	return s.aead.Seal(out, nonce, plain, nil), nil
}

func (s *State) open(data []byte, v any) error {
	if len(data) == 0 || data[0] != sealedPrefix {
		return json.Unmarshal(data, v)
	}

	if s.aead == nil {
		return ErrSealed
	}

	ns := s.aead.NonceSize()
	if len(data) < 1+ns {
		return fmt.Errorf("decrypting record: truncated value")
	}

	plain, err := s.aead.Open(nil, data[1:1+ns], data[1+ns:], nil)
	if err != nil {
		return fmt.Errorf("decrypting record: %w", err)
	}

	return json.Unmarshal(plain, v)
}
